package remote

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/allisson/inspecta/internal/errors"
)

// errorPayload covers the error bodies the API returns: {"message": ...},
// {"error": ...}, {"detail": "..."} and {"detail": [{"loc": [...], "msg": ...}]}.
type errorPayload struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Detail  json.RawMessage `json:"detail"`
}

type fieldError struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func parseError(status int, body []byte) error {
	apiErr := &apperrors.APIError{StatusCode: status}

	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
		parseDetail(apiErr, payload.Detail)
	}

	if apiErr.Message == "" {
		apiErr.Message = strings.ToLower(http.StatusText(status))
	}
	return apiErr
}

func parseDetail(apiErr *apperrors.APIError, detail json.RawMessage) {
	if len(detail) == 0 {
		return
	}

	var text string
	if err := json.Unmarshal(detail, &text); err == nil {
		if apiErr.Message == "" {
			apiErr.Message = text
		}
		return
	}

	var fields []fieldError
	if err := json.Unmarshal(detail, &fields); err != nil {
		return
	}
	for _, f := range fields {
		name := fieldName(f.Loc)
		if apiErr.Fields == nil {
			apiErr.Fields = make(map[string][]string)
		}
		apiErr.Fields[name] = append(apiErr.Fields[name], f.Msg)
		if apiErr.Message == "" {
			apiErr.Message = f.Msg
		}
	}
}

// fieldName uses the last location element, skipping the "body"/"query" prefix.
func fieldName(loc []any) string {
	if len(loc) == 0 {
		return "_"
	}
	return fmt.Sprint(loc[len(loc)-1])
}
