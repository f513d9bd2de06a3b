package api

import (
	"net/http"

	"github.com/thisisjab/boolscript/engine"
	"github.com/thisisjab/boolscript/fault"
	"github.com/thisisjab/boolscript/source"
)

const maxProgramSize = 64 * 1024

type runRequest struct {
	Name    string `json:"name"`
	Program string `json:"program"`
}

// runProgramHandler executes the program in the request body with a fresh
// environment. Outputs printed before a failing statement are returned along
// with the diagnostic.
func (s *server) runProgramHandler(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if s.returnOnError(w, r, s.readJson(w, r, &req)) {
		return
	}

	if len(req.Program) > maxProgramSize {
		s.returnOnError(w, r, fault.New(fault.BadInputCode, "").WithMetadata(fault.FieldErrorsMetadata{
			"program": []string{"Program is too large."},
		}))
		return
	}

	if req.Name == "" {
		req.Name = "request"
	}

	res, err := s.engine.Run(r.Context(), source.NewString(req.Name, req.Program))
	if err != nil {
		s.handleError(w, r, err, runData(res))
		return
	}

	s.writeJson(w, http.StatusOK, apiResponse{Success: true, Data: runData(res)}, nil) //nolint:errcheck
}

func runData(res engine.Result) map[string]any {
	outputs := make([]map[string]any, len(res.Outputs))
	for i, o := range res.Outputs {
		outputs[i] = map[string]any{
			"seq":    o.Seq,
			"value":  o.Value,
			"text":   o.Text,
			"line":   o.Line,
			"column": o.Column,
		}
	}

	variables := res.Variables
	if variables == nil {
		variables = map[string]bool{}
	}

	return map[string]any{
		"run_id":     res.RunID,
		"statements": res.Statements,
		"outputs":    outputs,
		"variables":  variables,
	}
}
