package sqlstore

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorTokensNotFound  = "SPAPI_TOKENS_NOT_FOUND"
	ErrorTokenStoreInput = "SPAPI_TOKEN_STORE_INPUT"
)

func newNotFoundError(accountID string) error {
	return goerrors.New(
		fmt.Sprintf("sqlstore: active tokens not found for account %q", accountID),
		goerrors.CategoryNotFound,
	).
		WithCode(404).
		WithTextCode(ErrorTokensNotFound).
		WithMetadata(map[string]any{"account_id": accountID})
}

func newInputError(field string, message string) error {
	return goerrors.NewValidation("sqlstore: invalid token store input",
		goerrors.FieldError{Field: field, Message: message},
	).WithTextCode(ErrorTokenStoreInput)
}
