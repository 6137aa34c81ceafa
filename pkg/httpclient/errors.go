package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/FoodStore/pkg/errors"
)

// errorEnvelope is the failure shape of the {success, message} envelope.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ParseResponseError reads a non-2xx response and translates it into an
// AppError. The body is consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}
	return ErrorFromBody(resp.StatusCode, body, serviceName)
}

// ErrorFromBody maps a status and an already-read body to an error. Bodies
// carrying a message keep it; anything else is reported raw.
func ErrorFromBody(status int, body []byte, serviceName string) error {
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Message != "" {
		return mapDownstreamError(status, env.Code, env.Message, serviceName)
	}
	return fmt.Errorf("%s returned status %d: %s", serviceName, status, string(body))
}

func mapDownstreamError(status int, code, message, serviceName string) error {
	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFoundMessage(message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(message)
	case status == http.StatusConflict:
		return apperrors.Conflict(message)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(message)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(message)
	case status == http.StatusTooManyRequests:
		return apperrors.TooManyRequests(message)
	case status == http.StatusServiceUnavailable:
		return &apperrors.AppError{
			Code:    code,
			Message: message,
			Status:  http.StatusServiceUnavailable,
			Err:     apperrors.ErrServiceUnavail,
		}
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", serviceName, status, code, message)
	default:
		return &apperrors.AppError{Code: code, Message: message, Status: status}
	}
}

// IsClientError reports whether status is a 4xx.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
