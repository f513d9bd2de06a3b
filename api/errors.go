package api

import (
	"errors"
	"net/http"

	"github.com/thisisjab/boolscript/fault"
)

// returnOnError writes the response for err, if any, and reports whether it did.
func (s *server) returnOnError(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return false
	}

	s.handleError(w, r, err, nil)
	return true
}

func (s *server) handleError(w http.ResponseWriter, r *http.Request, err error, data map[string]any) {
	var d fault.Diagnostic
	if !errors.As(err, &d) {
		s.internalServerError(w, r, err)
		return
	}

	switch d.Code() {
	case fault.BadInputCode:
		f, _ := d.(fault.Fault)
		if md, ok := f.Metadata().(fault.FieldErrorsMetadata); ok {
			// This is a 422 error since it's related to specific field
			s.writeError(w, r, http.StatusUnprocessableEntity, apiResponse{
				Success: false,
				Message: d.Message(),
				Metadata: map[string]any{
					"fields": md,
				},
			})
		} else {
			// This is a 400 as it's a bad request with no metadata or unknown metadata
			s.writeError(w, r, http.StatusBadRequest, apiResponse{
				Success: false,
				Message: d.Message(),
			})
		}

	case fault.ScanCode, fault.SyntaxCode, fault.UnboundVariableCode:
		line, column := d.Location()
		s.writeError(w, r, http.StatusUnprocessableEntity, apiResponse{
			Success: false,
			Message: fault.Format(err),
			Data:    data,
			Metadata: map[string]any{
				"code":   d.Code(),
				"line":   line,
				"column": column,
			},
		})

	default:
		s.internalServerError(w, r, err)
	}
}

func (s *server) logError(r *http.Request, err error) {
	s.logger.Error("internal server error", "method", r.Method, "path", r.RequestURI, "remote-addr", r.RemoteAddr, "error", err)
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, status int, response apiResponse) {
	s.writeJson(w, status, response, nil) //nolint:errcheck
}

func (s *server) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	s.logError(r, err)
	s.writeError(w, r, http.StatusInternalServerError, apiResponse{Success: false, Message: "Internal server error"})
}
