package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-spapi/schema"
)

const (
	ErrorValidationFailed     = schema.ErrorValidationFailed
	ErrorConfigurationMissing = "SPAPI_CONFIGURATION_MISSING"
	ErrorOAuthStateMismatch   = "SPAPI_OAUTH_STATE_MISMATCH"
	ErrorAuthenticationFailed = "SPAPI_AUTHENTICATION_FAILED"
	ErrorTokenEndpointFailed  = "SPAPI_TOKEN_ENDPOINT_FAILED"
	ErrorSchemaMismatch       = schema.ErrorSchemaMismatch
	ErrorInternal             = "SPAPI_INTERNAL_ERROR"
)

// ConfigurationError reports a configuration property an operation needs but
// the Config does not carry.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	if e == nil || strings.TrimSpace(e.Field) == "" {
		return "core: required configuration is missing"
	}
	return fmt.Sprintf("core: %s must be configured", e.Field)
}

// StateMismatchError reports an OAuth redirect whose state differs from the
// state the caller issued.
type StateMismatchError struct{}

func (*StateMismatchError) Error() string {
	return "core: state returned from the consent redirect does not match the original state"
}

// AuthenticationError is returned when the token endpoint answers 401.
type AuthenticationError struct {
	Response *TokenResponse
}

func (e *AuthenticationError) Error() string {
	if e == nil || e.Response == nil {
		return "core: token endpoint rejected the client credentials"
	}
	return fmt.Sprintf("core: token endpoint rejected the %s grant (401)", e.Response.Grant)
}

// HTTPError is returned for any other non-2xx token endpoint response.
type HTTPError struct {
	Response    *TokenResponse
	Description string
}

func (e *HTTPError) Error() string {
	if e == nil || e.Response == nil {
		return "core: token endpoint request failed"
	}
	return fmt.Sprintf("core: token endpoint error (%d): %s", e.Response.StatusCode, e.Description)
}

func (e *HTTPError) StatusCode() int {
	if e == nil || e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

func newConfigurationError(field string) error {
	source := &ConfigurationError{Field: field}
	return goerrors.Wrap(source, goerrors.CategoryBadInput, source.Error()).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorConfigurationMissing).
		WithMetadata(map[string]any{"field": field})
}

func newStateMismatchError() error {
	source := &StateMismatchError{}
	return goerrors.Wrap(source, goerrors.CategoryAuth, source.Error()).
		WithCode(http.StatusUnauthorized).
		WithTextCode(ErrorOAuthStateMismatch)
}

func newAuthenticationError(response *TokenResponse) error {
	source := &AuthenticationError{Response: response}
	return goerrors.Wrap(source, goerrors.CategoryAuth, source.Error()).
		WithCode(http.StatusUnauthorized).
		WithTextCode(ErrorAuthenticationFailed).
		WithMetadata(map[string]any{"grant_type": response.Grant})
}

func newHTTPError(response *TokenResponse, description string) error {
	source := &HTTPError{Response: response, Description: description}
	return goerrors.Wrap(source, goerrors.CategoryExternal, source.Error()).
		WithCode(response.StatusCode).
		WithTextCode(ErrorTokenEndpointFailed).
		WithMetadata(map[string]any{
			"grant_type":  response.Grant,
			"status_code": response.StatusCode,
		})
}

func newTransportError(grant string, err error) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, fmt.Sprintf("core: %s token request failed", grant)).
		WithCode(http.StatusBadGateway).
		WithTextCode(ErrorTokenEndpointFailed).
		WithMetadata(map[string]any{"grant_type": grant})
}

// IsAuthenticationError reports whether err carries an AuthenticationError.
func IsAuthenticationError(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}

// MapError converts any error into a go-errors envelope with an SP-API text
// code, keeping envelopes that are already classified.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureErrorEnvelope(richErr)
	}

	var configErr *ConfigurationError
	var stateErr *StateMismatchError
	var authErr *AuthenticationError
	var httpErr *HTTPError
	var schemaErr *schema.SchemaError
	switch {
	case errors.As(err, &configErr):
		return newMappedError(err, goerrors.CategoryBadInput, ErrorConfigurationMissing)
	case errors.As(err, &stateErr):
		return newMappedError(err, goerrors.CategoryAuth, ErrorOAuthStateMismatch)
	case errors.As(err, &authErr):
		return newMappedError(err, goerrors.CategoryAuth, ErrorAuthenticationFailed)
	case errors.As(err, &httpErr):
		return newMappedError(err, goerrors.CategoryExternal, ErrorTokenEndpointFailed)
	case errors.As(err, &schemaErr):
		return newMappedError(err, goerrors.CategoryBadInput, ErrorSchemaMismatch)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureErrorEnvelope(mapped)
}

func newMappedError(err error, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureErrorEnvelope(
		goerrors.Wrap(err, category, err.Error()).
			WithTextCode(textCode),
	)
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = httpStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryValidation:
		return ErrorValidationFailed
	case goerrors.CategoryBadInput:
		return ErrorConfigurationMissing
	case goerrors.CategoryAuth:
		return ErrorAuthenticationFailed
	case goerrors.CategoryExternal:
		return ErrorTokenEndpointFailed
	default:
		return ErrorInternal
	}
}

func httpStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
