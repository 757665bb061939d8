package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type tokenRecord struct {
	bun.BaseModel `bun:"table:spapi_tokens,alias:st"`

	ID            string     `bun:"id,pk"`
	AccountID     string     `bun:"account_id,notnull"`
	MarketplaceID string     `bun:"marketplace_id,notnull"`
	AccessToken   string     `bun:"access_token,notnull"`
	RefreshToken  string     `bun:"refresh_token,notnull"`
	ExpiresAt     int64      `bun:"expires_at,notnull"`
	IssuedAt      *time.Time `bun:"issued_at,nullzero"`
	Status        string     `bun:"status,notnull"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
