package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-spapi/core"
	"github.com/uptrace/bun"
)

const defaultHistoryLimit = 50

type TokenStore struct {
	db   *bun.DB
	repo repository.Repository[*tokenRecord]
	now  func() time.Time
}

type TokenStoreOption func(*TokenStore)

// WithClock sets the clock used for created_at and updated_at.
func WithClock(now func() time.Time) TokenStoreOption {
	return func(s *TokenStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewTokenStore(db *bun.DB, opts ...TokenStoreOption) (*TokenStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*tokenRecord](db, tokenHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid token repository wiring: %w", err)
		}
	}
	store := &TokenStore{db: db, repo: repo, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

// Save supersedes the account's active tokens and inserts tokens as the new
// active row in one transaction.
func (s *TokenStore) Save(
	ctx context.Context,
	accountID string,
	marketplaceID string,
	tokens core.AuthTokens,
) (StoredTokens, error) {
	if s == nil || s.repo == nil || s.db == nil {
		return StoredTokens{}, fmt.Errorf("sqlstore: token store is not configured")
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return StoredTokens{}, newInputError("account_id", "account id is required")
	}
	marketplaceID = strings.TrimSpace(marketplaceID)
	if marketplaceID == "" {
		return StoredTokens{}, newInputError("marketplace_id", "marketplace id is required")
	}
	if strings.TrimSpace(tokens.AccessToken) == "" && !tokens.HasRefreshToken() {
		return StoredTokens{}, newInputError("tokens", "an access or refresh token is required")
	}
	now := s.now().UTC()

	var created StoredTokens
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, updateErr := tx.NewUpdate().
			Model((*tokenRecord)(nil)).
			Set("status = ?", string(TokenStatusSuperseded)).
			Set("updated_at = ?", now).
			Where("account_id = ?", accountID).
			Where("status = ?", string(TokenStatusActive)).
			Exec(ctx)
		if updateErr != nil {
			return updateErr
		}

		inserted, createErr := s.repo.CreateTx(ctx, tx, newTokenRecord(accountID, marketplaceID, tokens, now))
		if createErr != nil {
			return createErr
		}
		created = inserted.toDomain()
		return nil
	})
	if err != nil {
		return StoredTokens{}, err
	}
	return created, nil
}

func (s *TokenStore) GetActive(ctx context.Context, accountID string) (StoredTokens, error) {
	if s == nil || s.repo == nil {
		return StoredTokens{}, fmt.Errorf("sqlstore: token store is not configured")
	}
	accountID = strings.TrimSpace(accountID)
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("account_id", "=", accountID),
		repository.SelectBy("status", "=", string(TokenStatusActive)),
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return StoredTokens{}, err
	}
	if len(records) == 0 {
		return StoredTokens{}, newNotFoundError(accountID)
	}
	return records[0].toDomain(), nil
}

// History lists the account's token rows, newest first. A limit of zero or
// less uses the default page size.
func (s *TokenStore) History(ctx context.Context, accountID string, limit int) ([]StoredTokens, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: token store is not configured")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("account_id", "=", strings.TrimSpace(accountID)),
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(limit, 0),
	)
	if err != nil {
		return nil, err
	}
	out := make([]StoredTokens, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

var _ TokenRepository = (*TokenStore)(nil)
