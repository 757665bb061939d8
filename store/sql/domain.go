package sqlstore

import (
	"context"
	"time"

	"github.com/goliatone/go-spapi/core"
	"github.com/google/uuid"
)

type TokenStatus string

const (
	TokenStatusActive     TokenStatus = "active"
	TokenStatusSuperseded TokenStatus = "superseded"
)

// StoredTokens is one persisted token pair. At most one row per account is
// active; every save supersedes the previous one.
type StoredTokens struct {
	ID            string
	AccountID     string
	MarketplaceID string
	Tokens        core.AuthTokens
	Status        TokenStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TokenWriter persists issued tokens for a selling partner account.
type TokenWriter interface {
	Save(ctx context.Context, accountID string, marketplaceID string, tokens core.AuthTokens) (StoredTokens, error)
}

// TokenReader loads persisted tokens for a selling partner account.
type TokenReader interface {
	GetActive(ctx context.Context, accountID string) (StoredTokens, error)
	History(ctx context.Context, accountID string, limit int) ([]StoredTokens, error)
}

type TokenRepository interface {
	TokenWriter
	TokenReader
}

func newTokenRecord(accountID, marketplaceID string, tokens core.AuthTokens, now time.Time) *tokenRecord {
	record := &tokenRecord{
		ID:            uuid.NewString(),
		AccountID:     accountID,
		MarketplaceID: marketplaceID,
		AccessToken:   tokens.AccessToken,
		RefreshToken:  tokens.RefreshToken,
		ExpiresAt:     tokens.ExpiresAt,
		Status:        string(TokenStatusActive),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if !tokens.IssuedAt.IsZero() {
		issuedAt := tokens.IssuedAt.UTC()
		record.IssuedAt = &issuedAt
	}
	return record
}

func (r *tokenRecord) toDomain() StoredTokens {
	if r == nil {
		return StoredTokens{}
	}
	stored := StoredTokens{
		ID:            r.ID,
		AccountID:     r.AccountID,
		MarketplaceID: r.MarketplaceID,
		Tokens: core.AuthTokens{
			AccessToken:  r.AccessToken,
			RefreshToken: r.RefreshToken,
			ExpiresAt:    r.ExpiresAt,
		},
		Status:    TokenStatus(r.Status),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if r.IssuedAt != nil {
		stored.Tokens.IssuedAt = r.IssuedAt.UTC()
	}
	return stored
}
