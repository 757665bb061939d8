package command

import (
	"context"
	"testing"
	"time"

	gocmd "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-spapi/core"
)

type stubExchanger struct {
	redirectFn          func(ctx context.Context, originalState string, params map[string]any) (core.AuthTokens, error)
	authorizationCodeFn func(ctx context.Context, code string) (core.AuthTokens, error)
	refreshFn           func(ctx context.Context, refreshToken string) (core.AuthTokens, error)
	clientCredentialsFn func(ctx context.Context, scope string) (core.GrantlessToken, error)
}

func (s stubExchanger) ExchangeRedirectForTokens(ctx context.Context, originalState string, params map[string]any) (core.AuthTokens, error) {
	return s.redirectFn(ctx, originalState, params)
}

func (s stubExchanger) ExchangeAuthorizationCode(ctx context.Context, code string) (core.AuthTokens, error) {
	return s.authorizationCodeFn(ctx, code)
}

func (s stubExchanger) ExchangeRefreshToken(ctx context.Context, refreshToken string) (core.AuthTokens, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s stubExchanger) ExchangeClientCredentials(ctx context.Context, scope string) (core.GrantlessToken, error) {
	return s.clientCredentialsFn(ctx, scope)
}

func TestExchangeRedirectCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := core.AuthTokens{AccessToken: "Atza|a", RefreshToken: "Atzr|r", ExpiresAt: 3600}
	called := false
	svc := stubExchanger{
		redirectFn: func(_ context.Context, originalState string, params map[string]any) (core.AuthTokens, error) {
			called = true
			if originalState != "st_1" {
				t.Fatalf("expected original state st_1, got %q", originalState)
			}
			if params[core.ParamSPAPIOAuthCode] != "code_1" {
				t.Fatalf("expected spapi_oauth_code code_1, got %v", params[core.ParamSPAPIOAuthCode])
			}
			return expected, nil
		},
	}

	cmd := NewExchangeRedirectCommand(svc)
	collector := gocmd.NewResult[core.AuthTokens]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, ExchangeRedirectMessage{
		OriginalState: "st_1",
		Params: map[string]any{
			core.ParamState:          "st_1",
			core.ParamSPAPIOAuthCode: "code_1",
		},
	})
	if err != nil {
		t.Fatalf("execute exchange redirect: %v", err)
	}
	if !called {
		t.Fatalf("expected exchanger invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.AccessToken != expected.AccessToken || result.RefreshToken != expected.RefreshToken {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestGrantCommands_DelegateToExchanger(t *testing.T) {
	t.Run("authorization code", func(t *testing.T) {
		svc := stubExchanger{
			authorizationCodeFn: func(_ context.Context, code string) (core.AuthTokens, error) {
				if code != "code_2" {
					t.Fatalf("expected code_2, got %q", code)
				}
				return core.AuthTokens{AccessToken: "Atza|code"}, nil
			},
		}
		collector := gocmd.NewResult[core.AuthTokens]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := NewExchangeAuthorizationCodeCommand(svc).Execute(ctx, ExchangeAuthorizationCodeMessage{Code: "code_2"}); err != nil {
			t.Fatalf("execute authorization code: %v", err)
		}
		stored, ok := collector.Load()
		if !ok || stored.AccessToken != "Atza|code" {
			t.Fatalf("unexpected stored tokens: %#v", stored)
		}
	})

	t.Run("refresh", func(t *testing.T) {
		svc := stubExchanger{
			refreshFn: func(_ context.Context, refreshToken string) (core.AuthTokens, error) {
				if refreshToken != "Atzr|old" {
					t.Fatalf("expected Atzr|old, got %q", refreshToken)
				}
				return core.AuthTokens{AccessToken: "Atza|new", RefreshToken: "Atzr|new"}, nil
			},
		}
		collector := gocmd.NewResult[core.AuthTokens]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := NewRefreshTokensCommand(svc).Execute(ctx, RefreshTokensMessage{RefreshToken: "Atzr|old"}); err != nil {
			t.Fatalf("execute refresh: %v", err)
		}
		stored, ok := collector.Load()
		if !ok || stored.RefreshToken != "Atzr|new" {
			t.Fatalf("unexpected stored tokens: %#v", stored)
		}
	})

	t.Run("client credentials", func(t *testing.T) {
		issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		svc := stubExchanger{
			clientCredentialsFn: func(_ context.Context, scope string) (core.GrantlessToken, error) {
				if scope != core.ScopeNotifications {
					t.Fatalf("expected notifications scope, got %q", scope)
				}
				return core.GrantlessToken{AccessToken: "Atc|g", ExpiresAt: 3600, IssuedAt: issuedAt, Scope: scope}, nil
			},
		}
		collector := gocmd.NewResult[core.GrantlessToken]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := NewExchangeClientCredentialsCommand(svc).Execute(ctx, ExchangeClientCredentialsMessage{Scope: core.ScopeNotifications}); err != nil {
			t.Fatalf("execute client credentials: %v", err)
		}
		stored, ok := collector.Load()
		if !ok || stored.AccessToken != "Atc|g" || !stored.IssuedAt.Equal(issuedAt) {
			t.Fatalf("unexpected stored token: %#v", stored)
		}
	})
}

func TestExecuteWithoutCollectorSucceeds(t *testing.T) {
	svc := stubExchanger{
		refreshFn: func(context.Context, string) (core.AuthTokens, error) {
			return core.AuthTokens{AccessToken: "Atza|x"}, nil
		},
	}
	if err := NewRefreshTokensCommand(svc).Execute(context.Background(), RefreshTokensMessage{RefreshToken: "Atzr|x"}); err != nil {
		t.Fatalf("execute without collector: %v", err)
	}
}

func TestCommands_MapExchangerErrors(t *testing.T) {
	svc := stubExchanger{
		redirectFn: func(context.Context, string, map[string]any) (core.AuthTokens, error) {
			return core.AuthTokens{}, &core.StateMismatchError{}
		},
		refreshFn: func(context.Context, string) (core.AuthTokens, error) {
			return core.AuthTokens{}, &core.AuthenticationError{Response: &core.TokenResponse{Grant: core.GrantRefreshToken, StatusCode: 401}}
		},
	}

	err := NewExchangeRedirectCommand(svc).Execute(context.Background(), ExchangeRedirectMessage{
		OriginalState: "st_1",
		Params:        map[string]any{core.ParamState: "other"},
	})
	assertTextCode(t, err, core.ErrorOAuthStateMismatch)

	err = NewRefreshTokensCommand(svc).Execute(context.Background(), RefreshTokensMessage{RefreshToken: "Atzr|x"})
	assertTextCode(t, err, core.ErrorAuthenticationFailed)
}

func TestCommands_ValidateBeforeDelegating(t *testing.T) {
	svc := stubExchanger{
		authorizationCodeFn: func(context.Context, string) (core.AuthTokens, error) {
			t.Fatalf("exchanger must not be called for invalid messages")
			return core.AuthTokens{}, nil
		},
		clientCredentialsFn: func(context.Context, string) (core.GrantlessToken, error) {
			t.Fatalf("exchanger must not be called for invalid messages")
			return core.GrantlessToken{}, nil
		},
	}

	err := NewExchangeAuthorizationCodeCommand(svc).Execute(context.Background(), ExchangeAuthorizationCodeMessage{Code: " "})
	assertTextCode(t, err, core.ErrorValidationFailed)

	err = NewExchangeClientCredentialsCommand(svc).Execute(context.Background(), ExchangeClientCredentialsMessage{Scope: "sellingpartnerapi::orders"})
	assertTextCode(t, err, core.ErrorValidationFailed)
}

func assertTextCode(t *testing.T, err error, expected string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with text code %s", expected)
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.TextCode != expected {
		t.Fatalf("expected text code %s, got %s", expected, rich.TextCode)
	}
}
