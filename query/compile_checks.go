package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-spapi/core"
	sqlstore "github.com/goliatone/go-spapi/store/sql"
)

var (
	_ gocmd.Querier[GetActiveTokensMessage, sqlstore.StoredTokens] = (*GetActiveTokensQuery)(nil)
	_ gocmd.Querier[TokenHistoryMessage, []sqlstore.StoredTokens]  = (*TokenHistoryQuery)(nil)
	_ gocmd.Querier[AuthorizationURLMessage, string]               = (*AuthorizationURLQuery)(nil)

	_ TokenReader             = (*sqlstore.TokenStore)(nil)
	_ TokenReader             = (*sqlstore.CachedTokenStore)(nil)
	_ AuthorizationURLBuilder = (*core.TokenManager)(nil)
)
