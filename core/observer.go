package core

import "context"

// TokenObserver receives token lifecycle events. Every method runs
// synchronously on the goroutine of the TokenManager call that triggered it.
type TokenObserver interface {
	// OnTokensObtained is called after a successful authorization-code or
	// refresh-token grant. A returned error fails the grant call.
	OnTokensObtained(ctx context.Context, tokens AuthTokens) error
	// OnAuthenticationFailure is called once for every 401 from the token
	// endpoint, before the AuthenticationError is returned.
	OnAuthenticationFailure(ctx context.Context, response *TokenResponse)
	// OnResponseReceived is called with every raw response of the grants
	// listed in Config.InspectGrants, before success or failure handling.
	OnResponseReceived(ctx context.Context, response *TokenResponse)
}

type NopTokenObserver struct{}

func (NopTokenObserver) OnTokensObtained(context.Context, AuthTokens) error { return nil }

func (NopTokenObserver) OnAuthenticationFailure(context.Context, *TokenResponse) {}

func (NopTokenObserver) OnResponseReceived(context.Context, *TokenResponse) {}

// TokenObserverFuncs adapts optional functions to TokenObserver. Nil fields
// are skipped.
type TokenObserverFuncs struct {
	TokensObtained        func(ctx context.Context, tokens AuthTokens) error
	AuthenticationFailure func(ctx context.Context, response *TokenResponse)
	ResponseReceived      func(ctx context.Context, response *TokenResponse)
}

func (f TokenObserverFuncs) OnTokensObtained(ctx context.Context, tokens AuthTokens) error {
	if f.TokensObtained == nil {
		return nil
	}
	return f.TokensObtained(ctx, tokens)
}

func (f TokenObserverFuncs) OnAuthenticationFailure(ctx context.Context, response *TokenResponse) {
	if f.AuthenticationFailure != nil {
		f.AuthenticationFailure(ctx, response)
	}
}

func (f TokenObserverFuncs) OnResponseReceived(ctx context.Context, response *TokenResponse) {
	if f.ResponseReceived != nil {
		f.ResponseReceived(ctx, response)
	}
}

// ObserverChain fans events out to observers in order. The first
// OnTokensObtained error stops the chain and is returned.
type ObserverChain []TokenObserver

func (c ObserverChain) OnTokensObtained(ctx context.Context, tokens AuthTokens) error {
	for _, observer := range c {
		if observer == nil {
			continue
		}
		if err := observer.OnTokensObtained(ctx, tokens); err != nil {
			return err
		}
	}
	return nil
}

func (c ObserverChain) OnAuthenticationFailure(ctx context.Context, response *TokenResponse) {
	for _, observer := range c {
		if observer != nil {
			observer.OnAuthenticationFailure(ctx, response)
		}
	}
}

func (c ObserverChain) OnResponseReceived(ctx context.Context, response *TokenResponse) {
	for _, observer := range c {
		if observer != nil {
			observer.OnResponseReceived(ctx, response)
		}
	}
}

func chainObservers(observers []TokenObserver) TokenObserver {
	filtered := make(ObserverChain, 0, len(observers))
	for _, observer := range observers {
		if observer != nil {
			filtered = append(filtered, observer)
		}
	}
	switch len(filtered) {
	case 0:
		return NopTokenObserver{}
	case 1:
		return filtered[0]
	default:
		return filtered
	}
}
