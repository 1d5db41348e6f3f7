package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/existflow/ideabox/internal/model"
)

// apiError is the error body written by the sync server
type apiError struct {
	Error string `json:"error"`
}

// statusError maps a non-2xx response onto the model sentinels
func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := string(bytes.TrimSpace(body))
	var parsed apiError
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != "" {
		msg = parsed.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w: %s", op, model.ErrAuthRequired, msg)
	case http.StatusForbidden:
		return fmt.Errorf("%s: %w: %s", op, model.ErrPermissionDenied, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w: %s", op, model.ErrNotFound, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("%s: %w", op, model.NewValidationError("request", msg))
	default:
		return fmt.Errorf("%s: %w: status %d: %s", op, model.ErrRemoteUnavailable, resp.StatusCode, msg)
	}
}

// transportError marks a failed round trip as unavailable
func transportError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, model.ErrRemoteUnavailable, err)
}
