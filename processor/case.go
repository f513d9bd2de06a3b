package processor

import (
	"fmt"
	"strings"

	"github.com/thisisjab/boolscript/entity"
)

type CaseProcessorConfig struct {
	Name string `yaml:"-"`
	Case string `yaml:"case"`
}

// CaseProcessor upper or lower cases the output text.
type CaseProcessor struct {
	cfg   CaseProcessorConfig
	apply func(string) string
}

func NewCaseProcessor(cfg CaseProcessorConfig) (*CaseProcessor, error) {
	p := &CaseProcessor{cfg: cfg}

	switch cfg.Case {
	case "upper":
		p.apply = strings.ToUpper
	case "lower":
		p.apply = strings.ToLower
	default:
		return nil, fmt.Errorf("invalid case: %q", cfg.Case)
	}

	return p, nil
}

func (p *CaseProcessor) Name() string {
	return p.cfg.Name
}

func (p *CaseProcessor) Process(out entity.Output) (entity.Output, error) {
	out.Text = p.apply(out.Text)
	return out, nil
}
