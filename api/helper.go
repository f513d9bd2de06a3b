package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/thisisjab/boolscript/fault"
)

// maxBodySize leaves room for the JSON envelope around the largest program.
const maxBodySize = 2 * maxProgramSize

type apiResponse struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// readJson decodes a single JSON value from the request body into dst.
// Decoding failures are returned as bad_input faults.
func (s *server) readJson(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fault.New(fault.BadInputCode, "Body must only contain a single JSON value.")
	}

	return nil
}

func decodeError(err error) error {
	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var invalidUnmarshalError *json.InvalidUnmarshalError
	var maxBytesError *http.MaxBytesError

	switch {
	case errors.As(err, &syntaxError):
		return fault.New(fault.BadInputCode, fmt.Sprintf("Body contains badly-formed JSON at character %d.", syntaxError.Offset))

	case errors.Is(err, io.ErrUnexpectedEOF):
		return fault.New(fault.BadInputCode, "Body contains badly-formed JSON.")

	case errors.As(err, &unmarshalTypeError):
		if unmarshalTypeError.Field == "" {
			return fault.New(fault.BadInputCode, fmt.Sprintf("Body contains badly-formed JSON at character %d.", unmarshalTypeError.Offset))
		}
		return fault.New(fault.BadInputCode, "Body contains invalid fields.").WithMetadata(fault.FieldErrorsMetadata{
			unmarshalTypeError.Field: []string{fmt.Sprintf("Expected type %s.", unmarshalTypeError.Type)},
		})

	case errors.Is(err, io.EOF):
		return fault.New(fault.BadInputCode, "Body cannot be empty.")

	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return fault.New(fault.BadInputCode, "Body contains invalid fields.").WithMetadata(fault.FieldErrorsMetadata{
			field: []string{"Key is unknown."},
		})

	case errors.As(err, &maxBytesError):
		return fault.New(fault.BadInputCode, fmt.Sprintf("Body must not be larger than %d bytes.", maxBytesError.Limit))

	case errors.As(err, &invalidUnmarshalError):
		panic(err)

	default:
		return err
	}
}

func (s *server) writeJson(w http.ResponseWriter, status int, data apiResponse, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(js, '\n')) //nolint:errcheck

	return nil
}
