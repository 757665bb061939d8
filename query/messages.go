package query

import "strings"

const (
	TypeGetActiveTokens  = "spapi.query.tokens.active"
	TypeTokenHistory     = "spapi.query.tokens.history"
	TypeAuthorizationURL = "spapi.query.authorization_url"
)

type GetActiveTokensMessage struct {
	AccountID string
}

func (GetActiveTokensMessage) Type() string { return TypeGetActiveTokens }

func (m GetActiveTokensMessage) Validate() error {
	if strings.TrimSpace(m.AccountID) == "" {
		return queryValidationError("account_id", "account id is required")
	}
	return nil
}

type TokenHistoryMessage struct {
	AccountID string
	Limit     int
}

func (TokenHistoryMessage) Type() string { return TypeTokenHistory }

func (m TokenHistoryMessage) Validate() error {
	if strings.TrimSpace(m.AccountID) == "" {
		return queryValidationError("account_id", "account id is required")
	}
	if m.Limit < 0 {
		return queryValidationError("limit", "limit must be >= 0")
	}
	return nil
}

// AuthorizationURLMessage asks for a consent URL. An empty State produces a
// URL without a state parameter.
type AuthorizationURLMessage struct {
	State string
}

func (AuthorizationURLMessage) Type() string { return TypeAuthorizationURL }

func (AuthorizationURLMessage) Validate() error { return nil }
