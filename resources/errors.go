package resources

import (
	"fmt"
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-spapi/schema"
	"github.com/goliatone/go-spapi/schemas/common"
)

const (
	ErrorRequestFailed = "SPAPI_REQUEST_FAILED"
	ErrorRateLimited   = "SPAPI_RATE_LIMITED"
	ErrorNotFound      = "SPAPI_NOT_FOUND"
	ErrorUnauthorized  = "SPAPI_UNAUTHORIZED"
)

// ResponseError is returned for every non-2xx Selling Partner API response.
// Errors holds the decoded error list when the body carried one.
type ResponseError struct {
	Operation  string
	StatusCode int
	Errors     []common.Error
	RequestID  string
	RetryAfter time.Duration
	Body       []byte
}

func (e *ResponseError) Error() string {
	if e == nil {
		return "resources: request failed"
	}
	message := fmt.Sprintf("resources: %s failed (%d)", e.Operation, e.StatusCode)
	if summary := (common.ErrorList{Errors: e.Errors}).Summary(); summary != "" {
		message += ": " + summary
	}
	return message
}

func newResponseError(operation string, response *http.Response, body []byte) error {
	source := &ResponseError{
		Operation:  operation,
		StatusCode: response.StatusCode,
		RequestID:  requestID(response.Header),
		RetryAfter: retryAfter(response.StatusCode, response.Header),
		Body:       body,
	}
	if list, err := schema.Decode[common.ErrorList](body); err == nil {
		source.Errors = list.Errors
	}

	category, textCode := goerrors.CategoryExternal, ErrorRequestFailed
	switch response.StatusCode {
	case http.StatusTooManyRequests:
		category, textCode = goerrors.CategoryRateLimit, ErrorRateLimited
	case http.StatusNotFound:
		category, textCode = goerrors.CategoryNotFound, ErrorNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		category, textCode = goerrors.CategoryAuth, ErrorUnauthorized
	}
	metadata := map[string]any{
		"operation":   operation,
		"status_code": response.StatusCode,
	}
	if source.RequestID != "" {
		metadata["request_id"] = source.RequestID
	}
	if source.RetryAfter > 0 {
		metadata["retry_after_seconds"] = int64(source.RetryAfter.Seconds())
	}
	return goerrors.Wrap(source, category, source.Error()).
		WithCode(response.StatusCode).
		WithTextCode(textCode).
		WithMetadata(metadata)
}
