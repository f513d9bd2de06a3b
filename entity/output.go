package entity

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Output represents a value emitted by a print statement of a program run.
type Output struct {
	ID        uuid.UUID `json:"id"`
	RunID     uuid.UUID `json:"run_id"`
	Program   string    `json:"program"`
	Seq       int       `json:"seq"`
	Value     bool      `json:"value"`
	Text      string    `json:"text"`
	Line      int       `json:"line"`
	Column    int       `json:"column"`
	Timestamp time.Time `json:"timestamp"`
}

// NewOutput creates an output whose text is the plain rendering of value.
func NewOutput(runID uuid.UUID, program string, seq int, value bool, line, column int) Output {
	return Output{
		ID:        uuid.New(),
		RunID:     runID,
		Program:   program,
		Seq:       seq,
		Value:     value,
		Text:      strconv.FormatBool(value),
		Line:      line,
		Column:    column,
		Timestamp: time.Now(),
	}
}
