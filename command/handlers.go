package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-spapi/core"
)

// TokenExchanger is the grant surface of *core.TokenManager.
type TokenExchanger interface {
	ExchangeRedirectForTokens(ctx context.Context, originalState string, params map[string]any) (core.AuthTokens, error)
	ExchangeAuthorizationCode(ctx context.Context, code string) (core.AuthTokens, error)
	ExchangeRefreshToken(ctx context.Context, refreshToken string) (core.AuthTokens, error)
	ExchangeClientCredentials(ctx context.Context, scope string) (core.GrantlessToken, error)
}

type ExchangeRedirectCommand struct {
	exchanger TokenExchanger
}

func NewExchangeRedirectCommand(exchanger TokenExchanger) *ExchangeRedirectCommand {
	return &ExchangeRedirectCommand{exchanger: exchanger}
}

func (c *ExchangeRedirectCommand) Execute(ctx context.Context, msg ExchangeRedirectMessage) error {
	if c == nil || c.exchanger == nil {
		return commandDependencyError("command: token exchanger is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	tokens, err := c.exchanger.ExchangeRedirectForTokens(ctx, msg.OriginalState, msg.Params)
	if err != nil {
		return core.MapError(err)
	}
	storeResult(ctx, tokens)
	return nil
}

type ExchangeAuthorizationCodeCommand struct {
	exchanger TokenExchanger
}

func NewExchangeAuthorizationCodeCommand(exchanger TokenExchanger) *ExchangeAuthorizationCodeCommand {
	return &ExchangeAuthorizationCodeCommand{exchanger: exchanger}
}

func (c *ExchangeAuthorizationCodeCommand) Execute(ctx context.Context, msg ExchangeAuthorizationCodeMessage) error {
	if c == nil || c.exchanger == nil {
		return commandDependencyError("command: token exchanger is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	tokens, err := c.exchanger.ExchangeAuthorizationCode(ctx, msg.Code)
	if err != nil {
		return core.MapError(err)
	}
	storeResult(ctx, tokens)
	return nil
}

type RefreshTokensCommand struct {
	exchanger TokenExchanger
}

func NewRefreshTokensCommand(exchanger TokenExchanger) *RefreshTokensCommand {
	return &RefreshTokensCommand{exchanger: exchanger}
}

func (c *RefreshTokensCommand) Execute(ctx context.Context, msg RefreshTokensMessage) error {
	if c == nil || c.exchanger == nil {
		return commandDependencyError("command: token exchanger is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	tokens, err := c.exchanger.ExchangeRefreshToken(ctx, msg.RefreshToken)
	if err != nil {
		return core.MapError(err)
	}
	storeResult(ctx, tokens)
	return nil
}

type ExchangeClientCredentialsCommand struct {
	exchanger TokenExchanger
}

func NewExchangeClientCredentialsCommand(exchanger TokenExchanger) *ExchangeClientCredentialsCommand {
	return &ExchangeClientCredentialsCommand{exchanger: exchanger}
}

func (c *ExchangeClientCredentialsCommand) Execute(ctx context.Context, msg ExchangeClientCredentialsMessage) error {
	if c == nil || c.exchanger == nil {
		return commandDependencyError("command: token exchanger is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	token, err := c.exchanger.ExchangeClientCredentials(ctx, msg.Scope)
	if err != nil {
		return core.MapError(err)
	}
	storeResult(ctx, token)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
