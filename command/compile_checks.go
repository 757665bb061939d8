package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-spapi/core"
)

var (
	_ gocmd.Commander[ExchangeRedirectMessage]          = (*ExchangeRedirectCommand)(nil)
	_ gocmd.Commander[ExchangeAuthorizationCodeMessage] = (*ExchangeAuthorizationCodeCommand)(nil)
	_ gocmd.Commander[RefreshTokensMessage]             = (*RefreshTokensCommand)(nil)
	_ gocmd.Commander[ExchangeClientCredentialsMessage] = (*ExchangeClientCredentialsCommand)(nil)

	_ TokenExchanger = (*core.TokenManager)(nil)
)
