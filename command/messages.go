package command

import (
	"strings"

	"github.com/goliatone/go-spapi/core"
)

const (
	TypeExchangeRedirect          = "spapi.command.tokens.exchange_redirect"
	TypeExchangeAuthorizationCode = "spapi.command.tokens.exchange_authorization_code"
	TypeRefreshTokens             = "spapi.command.tokens.refresh"
	TypeExchangeClientCredentials = "spapi.command.tokens.exchange_client_credentials"
)

// ExchangeRedirectMessage carries the consent redirect callback parameters
// and the state issued when the consent URL was built.
type ExchangeRedirectMessage struct {
	OriginalState string
	Params        map[string]any
}

func (ExchangeRedirectMessage) Type() string { return TypeExchangeRedirect }

func (m ExchangeRedirectMessage) Validate() error {
	if strings.TrimSpace(m.OriginalState) == "" {
		return commandValidationError(core.ParamState, "original state is required")
	}
	if len(m.Params) == 0 {
		return commandValidationError("params", "redirect parameters are required")
	}
	return nil
}

type ExchangeAuthorizationCodeMessage struct {
	Code string
}

func (ExchangeAuthorizationCodeMessage) Type() string { return TypeExchangeAuthorizationCode }

func (m ExchangeAuthorizationCodeMessage) Validate() error {
	if strings.TrimSpace(m.Code) == "" {
		return commandValidationError(core.ParamSPAPIOAuthCode, "authorization code is required")
	}
	return nil
}

type RefreshTokensMessage struct {
	RefreshToken string
}

func (RefreshTokensMessage) Type() string { return TypeRefreshTokens }

func (m RefreshTokensMessage) Validate() error {
	if strings.TrimSpace(m.RefreshToken) == "" {
		return commandValidationError("refresh_token", "refresh token is required")
	}
	return nil
}

type ExchangeClientCredentialsMessage struct {
	Scope string
}

func (ExchangeClientCredentialsMessage) Type() string { return TypeExchangeClientCredentials }

func (m ExchangeClientCredentialsMessage) Validate() error {
	switch strings.TrimSpace(m.Scope) {
	case "":
		return commandValidationError("scope", "scope is required")
	case core.ScopeNotifications, core.ScopeMigration, core.ScopeClientCredentialRotation:
		return nil
	default:
		return commandValidationError("scope", "scope is not a grantless scope")
	}
}
