package query

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-spapi/core"
	sqlstore "github.com/goliatone/go-spapi/store/sql"
)

type stubTokenReader struct {
	getActiveFn func(ctx context.Context, accountID string) (sqlstore.StoredTokens, error)
	historyFn   func(ctx context.Context, accountID string, limit int) ([]sqlstore.StoredTokens, error)
}

func (s stubTokenReader) GetActive(ctx context.Context, accountID string) (sqlstore.StoredTokens, error) {
	return s.getActiveFn(ctx, accountID)
}

func (s stubTokenReader) History(ctx context.Context, accountID string, limit int) ([]sqlstore.StoredTokens, error) {
	return s.historyFn(ctx, accountID, limit)
}

type stubURLBuilder func(state string) string

func (f stubURLBuilder) AuthorizationURL(state string) string { return f(state) }

func TestGetActiveTokensQuery_QueryDelegates(t *testing.T) {
	expected := sqlstore.StoredTokens{
		ID:        "row_1",
		AccountID: "acct_1",
		Tokens:    core.AuthTokens{AccessToken: "Atza|a"},
		Status:    sqlstore.TokenStatusActive,
	}
	called := false
	reader := stubTokenReader{
		getActiveFn: func(_ context.Context, accountID string) (sqlstore.StoredTokens, error) {
			called = true
			if accountID != "acct_1" {
				t.Fatalf("unexpected account id: %q", accountID)
			}
			return expected, nil
		},
	}

	result, err := NewGetActiveTokensQuery(reader).Query(context.Background(), GetActiveTokensMessage{AccountID: "acct_1"})
	if err != nil {
		t.Fatalf("query active tokens: %v", err)
	}
	if !called {
		t.Fatalf("expected token reader invocation")
	}
	if result.ID != expected.ID || result.Tokens.AccessToken != "Atza|a" {
		t.Fatalf("unexpected active tokens result: %#v", result)
	}
}

func TestGetActiveTokensQuery_PropagatesReaderError(t *testing.T) {
	failure := errors.New("not found")
	reader := stubTokenReader{
		getActiveFn: func(context.Context, string) (sqlstore.StoredTokens, error) {
			return sqlstore.StoredTokens{}, failure
		},
	}
	_, err := NewGetActiveTokensQuery(reader).Query(context.Background(), GetActiveTokensMessage{AccountID: "acct_1"})
	if !errors.Is(err, failure) {
		t.Fatalf("expected reader error, got %v", err)
	}
}

func TestTokenHistoryQuery_QueryDelegates(t *testing.T) {
	reader := stubTokenReader{
		historyFn: func(_ context.Context, accountID string, limit int) ([]sqlstore.StoredTokens, error) {
			if accountID != "acct_1" || limit != 5 {
				t.Fatalf("unexpected history request: %q %d", accountID, limit)
			}
			return []sqlstore.StoredTokens{{ID: "row_2"}, {ID: "row_1"}}, nil
		},
	}

	result, err := NewTokenHistoryQuery(reader).Query(context.Background(), TokenHistoryMessage{AccountID: "acct_1", Limit: 5})
	if err != nil {
		t.Fatalf("query token history: %v", err)
	}
	if len(result) != 2 || result[0].ID != "row_2" {
		t.Fatalf("unexpected history result: %#v", result)
	}
}

func TestAuthorizationURLQuery_QueryDelegates(t *testing.T) {
	builder := stubURLBuilder(func(state string) string {
		return "https://sellercentral.amazon.com/apps/authorize/consent?state=" + state
	})
	result, err := NewAuthorizationURLQuery(builder).Query(context.Background(), AuthorizationURLMessage{State: "st_1"})
	if err != nil {
		t.Fatalf("query authorization url: %v", err)
	}
	if result != "https://sellercentral.amazon.com/apps/authorize/consent?state=st_1" {
		t.Fatalf("unexpected authorization url: %q", result)
	}
}

func TestQueries_ValidateMessages(t *testing.T) {
	reader := stubTokenReader{
		getActiveFn: func(context.Context, string) (sqlstore.StoredTokens, error) {
			t.Fatalf("reader must not be called for invalid messages")
			return sqlstore.StoredTokens{}, nil
		},
		historyFn: func(context.Context, string, int) ([]sqlstore.StoredTokens, error) {
			t.Fatalf("reader must not be called for invalid messages")
			return nil, nil
		},
	}

	_, err := NewGetActiveTokensQuery(reader).Query(context.Background(), GetActiveTokensMessage{})
	assertValidationError(t, err, "account_id")

	_, err = NewTokenHistoryQuery(reader).Query(context.Background(), TokenHistoryMessage{AccountID: "acct", Limit: -1})
	assertValidationError(t, err, "limit")
}

func TestQueries_NilDependenciesReturnRichError(t *testing.T) {
	var active *GetActiveTokensQuery
	if _, err := active.Query(context.Background(), GetActiveTokensMessage{AccountID: "acct"}); err == nil {
		t.Fatalf("expected dependency error")
	}
	_, err := NewAuthorizationURLQuery(nil).Query(context.Background(), AuthorizationURLMessage{})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal || rich.TextCode != core.ErrorInternal {
		t.Fatalf("expected internal dependency error, got %q/%q", rich.Category, rich.TextCode)
	}
}

func assertValidationError(t *testing.T, err error, field string) {
	t.Helper()
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.TextCode != core.ErrorValidationFailed {
		t.Fatalf("expected %q text code, got %q", core.ErrorValidationFailed, rich.TextCode)
	}
	found := false
	for _, fieldErr := range rich.AllValidationErrors() {
		if fieldErr.Field == field {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected validation error for %s, got %#v", field, rich.AllValidationErrors())
	}
}
