package spapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-spapi/adapters/gocommand"
	spcommand "github.com/goliatone/go-spapi/command"
	"github.com/goliatone/go-spapi/core"
	spquery "github.com/goliatone/go-spapi/query"
	"github.com/goliatone/go-spapi/resources"
	sqlstore "github.com/goliatone/go-spapi/store/sql"
	"github.com/google/uuid"
)

type Commands struct {
	ExchangeRedirect          *spcommand.ExchangeRedirectCommand
	ExchangeAuthorizationCode *spcommand.ExchangeAuthorizationCodeCommand
	RefreshTokens             *spcommand.RefreshTokensCommand
	ExchangeClientCredentials *spcommand.ExchangeClientCredentialsCommand
}

// Queries holds the query handlers. The token queries are nil when the
// facade has no token store.
type Queries struct {
	GetActiveTokens  *spquery.GetActiveTokensQuery
	TokenHistory     *spquery.TokenHistoryQuery
	AuthorizationURL *spquery.AuthorizationURLQuery
}

// Facade bundles a token manager with the optional token store of one
// seller account, the command and query handlers over them and SP-API
// resource clients authenticated with the account's tokens.
type Facade struct {
	manager    *core.TokenManager
	store      sqlstore.TokenRepository
	accountID  string
	newState   func() string
	clientOpts []resources.ClientOption
	commands   Commands
	queries    Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	store       sqlstore.TokenRepository
	accountID   string
	newState    func() string
	managerOpts []core.Option
	clientOpts  []resources.ClientOption
}

// WithTokenStore persists every token pair the manager obtains under
// accountID and seeds resource clients from the stored active pair.
func WithTokenStore(store sqlstore.TokenRepository, accountID string) FacadeOption {
	return func(o *facadeOptions) {
		o.store = store
		o.accountID = strings.TrimSpace(accountID)
	}
}

// WithStateGenerator replaces the random OAuth state used by
// StartAuthorization.
func WithStateGenerator(fn func() string) FacadeOption {
	return func(o *facadeOptions) {
		o.newState = fn
	}
}

func WithManagerOptions(opts ...core.Option) FacadeOption {
	return func(o *facadeOptions) {
		o.managerOpts = append(o.managerOpts, opts...)
	}
}

func WithClientOptions(opts ...resources.ClientOption) FacadeOption {
	return func(o *facadeOptions) {
		o.clientOpts = append(o.clientOpts, opts...)
	}
}

// New builds the token manager for cfg and the facade around it. With a
// token store every obtained pair is saved for the store account under the
// manager's resolved marketplace.
func New(cfg Config, opts ...FacadeOption) (*Facade, error) {
	options := resolveFacadeOptions(opts)
	managerOpts := append([]core.Option(nil), options.managerOpts...)
	var persister *sqlstore.Persister
	if options.store != nil {
		managerOpts = append(managerOpts, core.WithObserver(core.TokenObserverFuncs{
			TokensObtained: func(ctx context.Context, tokens core.AuthTokens) error {
				return persister.OnTokensObtained(ctx, tokens)
			},
		}))
	}
	manager, err := core.NewTokenManager(cfg, managerOpts...)
	if err != nil {
		return nil, err
	}
	if options.store != nil {
		persister, err = sqlstore.NewPersister(options.store, options.accountID, manager.Marketplace().Identifier())
		if err != nil {
			return nil, err
		}
	}
	return newFacade(manager, options)
}

// NewFacade wraps an existing manager. Persisting obtained tokens is left to
// the observers the manager was built with.
func NewFacade(manager *core.TokenManager, opts ...FacadeOption) (*Facade, error) {
	options := resolveFacadeOptions(opts)
	if len(options.managerOpts) > 0 {
		return nil, fmt.Errorf("spapi: manager options require New")
	}
	return newFacade(manager, options)
}

func resolveFacadeOptions(opts []FacadeOption) facadeOptions {
	options := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&options)
	}
	if options.newState == nil {
		options.newState = uuid.NewString
	}
	return options
}

func newFacade(manager *core.TokenManager, options facadeOptions) (*Facade, error) {
	if manager == nil {
		return nil, fmt.Errorf("spapi: token manager is required")
	}
	if options.store != nil && options.accountID == "" {
		return nil, fmt.Errorf("spapi: account id is required with a token store")
	}

	facade := &Facade{
		manager:    manager,
		store:      options.store,
		accountID:  options.accountID,
		newState:   options.newState,
		clientOpts: options.clientOpts,
	}
	facade.commands = Commands{
		ExchangeRedirect:          spcommand.NewExchangeRedirectCommand(manager),
		ExchangeAuthorizationCode: spcommand.NewExchangeAuthorizationCodeCommand(manager),
		RefreshTokens:             spcommand.NewRefreshTokensCommand(manager),
		ExchangeClientCredentials: spcommand.NewExchangeClientCredentialsCommand(manager),
	}
	facade.queries = Queries{
		AuthorizationURL: spquery.NewAuthorizationURLQuery(manager),
	}
	if options.store != nil {
		facade.queries.GetActiveTokens = spquery.NewGetActiveTokensQuery(options.store)
		facade.queries.TokenHistory = spquery.NewTokenHistoryQuery(options.store)
	}
	return facade, nil
}

func (f *Facade) Manager() *core.TokenManager {
	if f == nil {
		return nil
	}
	return f.manager
}

func (f *Facade) Store() sqlstore.TokenRepository {
	if f == nil {
		return nil
	}
	return f.store
}

func (f *Facade) AccountID() string {
	if f == nil {
		return ""
	}
	return f.accountID
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

// StartAuthorization returns the consent URL for a fresh state value. The
// caller keeps the state and passes it back to ExchangeRedirect.
func (f *Facade) StartAuthorization() (authURL string, state string) {
	if f == nil || f.manager == nil {
		return "", ""
	}
	state = f.newState()
	return f.manager.AuthorizationURL(state), state
}

// ExchangeRedirect completes a consent redirect started by StartAuthorization.
func (f *Facade) ExchangeRedirect(ctx context.Context, originalState string, params map[string]any) (core.AuthTokens, error) {
	if f == nil || f.manager == nil {
		return core.AuthTokens{}, fmt.Errorf("spapi: facade is not initialized")
	}
	return f.manager.ExchangeRedirectForTokens(ctx, originalState, params)
}

// ResourceClient returns an SP-API client for the configured marketplace.
// Its tokens come from the stored active pair when a store is set and
// from the configuration otherwise; they are refreshed on demand.
func (f *Facade) ResourceClient(ctx context.Context, opts ...resources.ClientOption) (*resources.Client, error) {
	if f == nil || f.manager == nil {
		return nil, fmt.Errorf("spapi: facade is not initialized")
	}
	tokens, err := f.seedTokens(ctx)
	if err != nil {
		return nil, err
	}
	source := resources.NewRefreshingTokenSource(f.manager, tokens)
	return resources.NewClientFromConfig(f.manager.Config(), source, f.clientOptions(opts)...)
}

// GrantlessClient returns an SP-API client authenticated with
// client_credentials tokens for scope.
func (f *Facade) GrantlessClient(scope string, opts ...resources.ClientOption) (*resources.Client, error) {
	if f == nil || f.manager == nil {
		return nil, fmt.Errorf("spapi: facade is not initialized")
	}
	source := resources.NewGrantlessTokenSource(f.manager, scope)
	return resources.NewClientFromConfig(f.manager.Config(), source, f.clientOptions(opts)...)
}

// clientOptions shares the manager's logger and metrics with resource
// clients; facade and call options are applied after them.
func (f *Facade) clientOptions(opts []resources.ClientOption) []resources.ClientOption {
	clientOpts := []resources.ClientOption{
		resources.WithLogger(f.manager.Logger()),
		resources.WithMetricsRecorder(f.manager.MetricsRecorder()),
	}
	clientOpts = append(clientOpts, f.clientOpts...)
	return append(clientOpts, opts...)
}

func (f *Facade) seedTokens(ctx context.Context) (core.AuthTokens, error) {
	fallback := f.manager.Config().Tokens()
	if f.store == nil {
		return fallback, nil
	}
	stored, err := f.store.GetActive(ctx, f.accountID)
	if err == nil {
		return stored.Tokens, nil
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.TextCode == sqlstore.ErrorTokensNotFound {
		return fallback, nil
	}
	return core.AuthTokens{}, err
}

// Register subscribes the facade's handlers on the command dispatcher and
// adds them to registry when one is given. The returned subscriptions must
// be released by the caller.
func (f *Facade) Register(registry *command.Registry, runnerOpts ...runner.Option) ([]commanddispatcher.Subscription, error) {
	if f == nil || f.manager == nil {
		return nil, fmt.Errorf("spapi: facade is not initialized")
	}
	handlers := gocommand.TokenHandlers{
		Exchanger:  f.manager,
		URLBuilder: f.manager,
	}
	if f.store != nil {
		handlers.Reader = f.store
	}
	return gocommand.RegisterTokenHandlers(gocommand.NewRegistryAdapter(registry), handlers, runnerOpts...)
}
