package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	spcommand "github.com/goliatone/go-spapi/command"
	"github.com/goliatone/go-spapi/query"
	sqlstore "github.com/goliatone/go-spapi/store/sql"
)

// ValidateMessageContract enforces Type() plus optional Validate() contract.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) RegisterCommand(cmd any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(cmd)
}

func (a *RegistryAdapter) RegisterQuery(qry any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(qry)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a == nil || a.registry == nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.Initialize()
}

func SubscribeCommand[T any](cmd command.Commander[T], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
}

func SubscribeQuery[T any, R any](qry command.Querier[T, R], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeQuery(qry, runnerOpts...)
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	subscription := SubscribeCommand(cmd, runnerOpts...)
	if err := adapter.RegisterCommand(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	subscription := SubscribeQuery(qry, runnerOpts...)
	if err := adapter.RegisterQuery(qry); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

// TokenHandlers lists the dependencies of the token commands and queries.
// Handlers whose dependency is nil are not registered.
type TokenHandlers struct {
	Exchanger  spcommand.TokenExchanger
	Reader     query.TokenReader
	URLBuilder query.AuthorizationURLBuilder
}

// RegisterTokenHandlers registers and subscribes the token commands and
// queries. On failure every subscription made so far is released.
func RegisterTokenHandlers(
	adapter *RegistryAdapter,
	handlers TokenHandlers,
	runnerOpts ...runner.Option,
) ([]commanddispatcher.Subscription, error) {
	var subscriptions []commanddispatcher.Subscription
	release := func() {
		for _, subscription := range subscriptions {
			if subscription != nil {
				subscription.Unsubscribe()
			}
		}
	}
	track := func(subscription commanddispatcher.Subscription, err error) error {
		if err != nil {
			release()
			return err
		}
		subscriptions = append(subscriptions, subscription)
		return nil
	}

	if handlers.Exchanger != nil {
		if err := track(RegisterAndSubscribe[spcommand.ExchangeRedirectMessage](adapter, spcommand.NewExchangeRedirectCommand(handlers.Exchanger), runnerOpts...)); err != nil {
			return nil, err
		}
		if err := track(RegisterAndSubscribe[spcommand.ExchangeAuthorizationCodeMessage](adapter, spcommand.NewExchangeAuthorizationCodeCommand(handlers.Exchanger), runnerOpts...)); err != nil {
			return nil, err
		}
		if err := track(RegisterAndSubscribe[spcommand.RefreshTokensMessage](adapter, spcommand.NewRefreshTokensCommand(handlers.Exchanger), runnerOpts...)); err != nil {
			return nil, err
		}
		if err := track(RegisterAndSubscribe[spcommand.ExchangeClientCredentialsMessage](adapter, spcommand.NewExchangeClientCredentialsCommand(handlers.Exchanger), runnerOpts...)); err != nil {
			return nil, err
		}
	}
	if handlers.Reader != nil {
		if err := track(RegisterAndSubscribeQuery[query.GetActiveTokensMessage, sqlstore.StoredTokens](adapter, query.NewGetActiveTokensQuery(handlers.Reader), runnerOpts...)); err != nil {
			return nil, err
		}
		if err := track(RegisterAndSubscribeQuery[query.TokenHistoryMessage, []sqlstore.StoredTokens](adapter, query.NewTokenHistoryQuery(handlers.Reader), runnerOpts...)); err != nil {
			return nil, err
		}
	}
	if handlers.URLBuilder != nil {
		if err := track(RegisterAndSubscribeQuery[query.AuthorizationURLMessage, string](adapter, query.NewAuthorizationURLQuery(handlers.URLBuilder), runnerOpts...)); err != nil {
			return nil, err
		}
	}
	return subscriptions, nil
}
