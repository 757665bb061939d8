package query

import (
	"context"

	sqlstore "github.com/goliatone/go-spapi/store/sql"
)

type TokenReader interface {
	GetActive(ctx context.Context, accountID string) (sqlstore.StoredTokens, error)
	History(ctx context.Context, accountID string, limit int) ([]sqlstore.StoredTokens, error)
}

type AuthorizationURLBuilder interface {
	AuthorizationURL(state string) string
}

type GetActiveTokensQuery struct {
	reader TokenReader
}

func NewGetActiveTokensQuery(reader TokenReader) *GetActiveTokensQuery {
	return &GetActiveTokensQuery{reader: reader}
}

func (q *GetActiveTokensQuery) Query(ctx context.Context, msg GetActiveTokensMessage) (sqlstore.StoredTokens, error) {
	if q == nil || q.reader == nil {
		return sqlstore.StoredTokens{}, queryDependencyError("query: token reader is required")
	}
	if err := msg.Validate(); err != nil {
		return sqlstore.StoredTokens{}, err
	}
	return q.reader.GetActive(ctx, msg.AccountID)
}

type TokenHistoryQuery struct {
	reader TokenReader
}

func NewTokenHistoryQuery(reader TokenReader) *TokenHistoryQuery {
	return &TokenHistoryQuery{reader: reader}
}

func (q *TokenHistoryQuery) Query(ctx context.Context, msg TokenHistoryMessage) ([]sqlstore.StoredTokens, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: token reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return q.reader.History(ctx, msg.AccountID, msg.Limit)
}

type AuthorizationURLQuery struct {
	builder AuthorizationURLBuilder
}

func NewAuthorizationURLQuery(builder AuthorizationURLBuilder) *AuthorizationURLQuery {
	return &AuthorizationURLQuery{builder: builder}
}

func (q *AuthorizationURLQuery) Query(_ context.Context, msg AuthorizationURLMessage) (string, error) {
	if q == nil || q.builder == nil {
		return "", queryDependencyError("query: authorization url builder is required")
	}
	return q.builder.AuthorizationURL(msg.State), nil
}
