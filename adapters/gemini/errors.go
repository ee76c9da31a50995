package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/genai"

	"github.com/Naimurthedang/bondly-main/domain/repositories"
)

var (
	// ErrUnauthorized is returned when the API key is missing, invalid or
	// lacks access to the requested model.
	ErrUnauthorized = repositories.ErrUnauthorized
	// ErrMalformedResponse is returned when a reply does not match its schema.
	ErrMalformedResponse = repositories.ErrMalformedResponse
)

// classifyError maps a gateway failure onto the package sentinels. Errors
// that are not authorization-shaped are returned unchanged.
func classifyError(err error) error {
	if err == nil || errors.Is(err, ErrUnauthorized) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if e, ok := err.(*apierror.APIError); ok {
		err = e.Unwrap()
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusForbidden || apiErr.Code == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
		}
	}

	if isAuthorizationMessage(err.Error()) {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return err
}

// isAuthorizationMessage reports whether msg looks like a rejected or
// unknown API key. A paid-tier model answers "Requested entity was not found"
// when the key belongs to a project without access.
func isAuthorizationMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(msg, "403") ||
		strings.Contains(lower, "permission") ||
		strings.Contains(msg, "Requested entity was not found")
}
