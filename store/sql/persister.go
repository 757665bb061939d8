package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-spapi/core"
)

// Persister saves every token pair the token manager issues for one selling
// partner account. Authentication failures and raw responses are ignored.
type Persister struct {
	core.NopTokenObserver

	store         TokenWriter
	accountID     string
	marketplaceID string
}

func NewPersister(store TokenWriter, accountID string, marketplaceID string) (*Persister, error) {
	if store == nil {
		return nil, fmt.Errorf("sqlstore: token writer is required")
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, newInputError("account_id", "account id is required")
	}
	return &Persister{
		store:         store,
		accountID:     accountID,
		marketplaceID: strings.TrimSpace(marketplaceID),
	}, nil
}

func (p *Persister) OnTokensObtained(ctx context.Context, tokens core.AuthTokens) error {
	if p == nil || p.store == nil {
		return fmt.Errorf("sqlstore: persister is not configured")
	}
	_, err := p.store.Save(ctx, p.accountID, p.marketplaceID, tokens)
	return err
}

func (p *Persister) AccountID() string {
	if p == nil {
		return ""
	}
	return p.accountID
}

var _ core.TokenObserver = (*Persister)(nil)
