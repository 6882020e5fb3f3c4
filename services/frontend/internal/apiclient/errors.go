package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthorized is returned for every 401 regardless of body; callers
// drop the session and send the user back to the login page.
var ErrUnauthorized = errors.New("unauthorized")

// APIError carries a backend error response normalized to one message.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return e.Detail
}

// normalizeDetail turns a response body into a display message. The backend
// replies {"detail": X} where X is a plain string, a validation array of
// {loc, msg} objects, or some other object; anything else falls back to
// "HTTP Error: <status>".
func normalizeDetail(status int, body []byte) string {
	fallback := fmt.Sprintf("HTTP Error: %d", status)

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return fallback
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var fields []struct {
		Loc []json.RawMessage `json:"loc"`
		Msg string            `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &fields); err == nil {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			name := ""
			if len(f.Loc) > 1 {
				var v any
				if json.Unmarshal(f.Loc[1], &v) == nil {
					name = fmt.Sprintf("%v", v)
				}
			}
			if name != "" {
				parts = append(parts, name+": "+f.Msg)
			} else {
				parts = append(parts, f.Msg)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
		return fallback
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(envelope.Detail, &obj); err == nil {
		var buf bytes.Buffer
		if json.Compact(&buf, envelope.Detail) == nil {
			return buf.String()
		}
	}
	return fallback
}
