package api

import (
	"fmt"
	"net/http"

	"resty.dev/v3"

	"chirp/internal/core"
)

type apiError struct {
	Message string `json:"error"`
}

// wireError maps a settled request to the error taxonomy. Transport
// failures never carry a usable response; everything else is classified by
// status code.
func wireError(res *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrNetwork, err)
	}

	if !res.IsError() {
		return nil
	}

	msg := res.Status()
	if apiErr, ok := res.Error().(*apiError); ok && apiErr.Message != "" {
		msg = apiErr.Message
	}

	switch res.StatusCode() {
	case http.StatusUnauthorized:
		return core.ErrUnauthorized
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", core.ErrAdminOnly, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", core.ErrNotFound, msg)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", core.ErrValidation, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", core.ErrConflict, msg)
	default:
		return fmt.Errorf("unexpected response: %s", msg)
	}
}
