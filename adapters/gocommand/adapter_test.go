package gocommand

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-command"
	spcommand "github.com/goliatone/go-spapi/command"
	"github.com/goliatone/go-spapi/core"
	"github.com/goliatone/go-spapi/query"
	sqlstore "github.com/goliatone/go-spapi/store/sql"
)

type okMessage struct{}

func (okMessage) Type() string { return "spapi.command.ok" }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "" }

type failingMessage struct{}

func (failingMessage) Type() string { return "spapi.command.fail" }

func (failingMessage) Validate() error { return errors.New("invalid payload") }

type dispatchMessage struct {
	ID string
}

func (dispatchMessage) Type() string { return "spapi.command.test" }

func TestValidateMessageContract(t *testing.T) {
	if err := ValidateMessageContract(okMessage{}); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	if err := ValidateMessageContract(invalidMessage{}); err == nil {
		t.Fatalf("expected empty type to fail contract validation")
	}
	if err := ValidateMessageContract(failingMessage{}); err == nil {
		t.Fatalf("expected Validate() failure to bubble")
	}
	if err := ValidateMessageContract(spcommand.RefreshTokensMessage{}); err == nil {
		t.Fatalf("expected empty refresh token to fail validation")
	}
}

func TestRegistryAndDispatchWiring(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())
	executed := 0
	customResolverCalled := 0

	cmd := command.CommandFunc[dispatchMessage](func(context.Context, dispatchMessage) error {
		executed++
		return nil
	})

	subscription, err := RegisterAndSubscribe(adapter, cmd)
	if err != nil {
		t.Fatalf("register and subscribe: %v", err)
	}
	t.Cleanup(func() { subscription.Unsubscribe() })
	if err := adapter.AddResolver("custom", func(any, command.CommandMeta, *command.Registry) error {
		customResolverCalled++
		return nil
	}); err != nil {
		t.Fatalf("add resolver: %v", err)
	}
	if !adapter.HasResolver("custom") {
		t.Fatalf("expected custom resolver to be registered")
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}
	if customResolverCalled == 0 {
		t.Fatalf("expected resolver hook to run during initialization")
	}

	if err := Dispatch(context.Background(), dispatchMessage{ID: "m1"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if executed != 1 {
		t.Fatalf("expected command execution count=1, got %d", executed)
	}
}

type stubExchanger struct {
	refreshed []string
}

func (s *stubExchanger) ExchangeRedirectForTokens(context.Context, string, map[string]any) (core.AuthTokens, error) {
	return core.AuthTokens{}, errors.New("not expected")
}

func (s *stubExchanger) ExchangeAuthorizationCode(context.Context, string) (core.AuthTokens, error) {
	return core.AuthTokens{}, errors.New("not expected")
}

func (s *stubExchanger) ExchangeRefreshToken(_ context.Context, refreshToken string) (core.AuthTokens, error) {
	s.refreshed = append(s.refreshed, refreshToken)
	return core.AuthTokens{AccessToken: "Atza|dispatched", RefreshToken: refreshToken}, nil
}

func (s *stubExchanger) ExchangeClientCredentials(context.Context, string) (core.GrantlessToken, error) {
	return core.GrantlessToken{}, errors.New("not expected")
}

type stubReader struct{}

func (stubReader) GetActive(_ context.Context, accountID string) (sqlstore.StoredTokens, error) {
	return sqlstore.StoredTokens{AccountID: accountID, Tokens: core.AuthTokens{AccessToken: "Atza|stored"}}, nil
}

func (stubReader) History(context.Context, string, int) ([]sqlstore.StoredTokens, error) {
	return nil, nil
}

type stubURLBuilder struct{}

func (stubURLBuilder) AuthorizationURL(state string) string {
	return "https://sellercentral.amazon.com/apps/authorize/consent?state=" + state
}

func TestRegisterTokenHandlers_DispatchesCommandsAndQueries(t *testing.T) {
	adapter := NewRegistryAdapter(nil)
	exchanger := &stubExchanger{}

	subscriptions, err := RegisterTokenHandlers(adapter, TokenHandlers{
		Exchanger:  exchanger,
		Reader:     stubReader{},
		URLBuilder: stubURLBuilder{},
	})
	if err != nil {
		t.Fatalf("register token handlers: %v", err)
	}
	t.Cleanup(func() {
		for _, subscription := range subscriptions {
			subscription.Unsubscribe()
		}
	})
	if len(subscriptions) != 7 {
		t.Fatalf("expected 7 subscriptions, got %d", len(subscriptions))
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	collector := command.NewResult[core.AuthTokens]()
	ctx := command.ContextWithResult(context.Background(), collector)
	if err := Dispatch(ctx, spcommand.RefreshTokensMessage{RefreshToken: "Atzr|old"}); err != nil {
		t.Fatalf("dispatch refresh: %v", err)
	}
	if len(exchanger.refreshed) != 1 || exchanger.refreshed[0] != "Atzr|old" {
		t.Fatalf("expected one refresh with Atzr|old, got %#v", exchanger.refreshed)
	}
	tokens, ok := collector.Load()
	if !ok || tokens.AccessToken != "Atza|dispatched" {
		t.Fatalf("expected dispatched tokens in collector, got %#v", tokens)
	}

	stored, err := Query[query.GetActiveTokensMessage, sqlstore.StoredTokens](context.Background(), query.GetActiveTokensMessage{AccountID: "acct_1"})
	if err != nil {
		t.Fatalf("query active tokens: %v", err)
	}
	if stored.AccountID != "acct_1" || stored.Tokens.AccessToken != "Atza|stored" {
		t.Fatalf("unexpected stored tokens %#v", stored)
	}

	consentURL, err := Query[query.AuthorizationURLMessage, string](context.Background(), query.AuthorizationURLMessage{State: "st"})
	if err != nil {
		t.Fatalf("query authorization url: %v", err)
	}
	if consentURL != "https://sellercentral.amazon.com/apps/authorize/consent?state=st" {
		t.Fatalf("unexpected authorization url %q", consentURL)
	}
}

func TestRegisterTokenHandlers_SkipsMissingDependencies(t *testing.T) {
	subscriptions, err := RegisterTokenHandlers(NewRegistryAdapter(nil), TokenHandlers{URLBuilder: stubURLBuilder{}})
	if err != nil {
		t.Fatalf("register token handlers: %v", err)
	}
	t.Cleanup(func() {
		for _, subscription := range subscriptions {
			subscription.Unsubscribe()
		}
	})
	if len(subscriptions) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(subscriptions))
	}
}

func TestRegisterTokenHandlers_RequiresRegistry(t *testing.T) {
	var adapter *RegistryAdapter
	if _, err := RegisterTokenHandlers(adapter, TokenHandlers{URLBuilder: stubURLBuilder{}}); err == nil {
		t.Fatalf("expected registry error")
	}
}
