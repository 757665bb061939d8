package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-spapi/core"
)

const activeTokensCacheKeyPrefix = "go-spapi::active_tokens::v1"

// CachedTokenStore serves GetActive through a read-through cache and drops
// the account's entry whenever new tokens are saved.
type CachedTokenStore struct {
	base  TokenRepository
	cache repositorycache.CacheService
}

func NewCachedTokenStore(base TokenRepository, cacheService repositorycache.CacheService) (*CachedTokenStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base token store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: token cache service is required")
	}
	return &CachedTokenStore{base: base, cache: cacheService}, nil
}

// ActiveTokensCacheKey returns go-spapi::active_tokens::v1::<account_id>
// with the account id URL-path escaped.
func ActiveTokensCacheKey(accountID string) (string, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return "", newInputError("account_id", "account id is required")
	}
	return activeTokensCacheKeyPrefix + "::" + url.PathEscape(accountID), nil
}

func (s *CachedTokenStore) GetActive(ctx context.Context, accountID string) (StoredTokens, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return StoredTokens{}, fmt.Errorf("sqlstore: cached token store is not configured")
	}
	cacheKey, err := ActiveTokensCacheKey(accountID)
	if err != nil {
		return StoredTokens{}, err
	}
	return repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (StoredTokens, error) {
		return s.base.GetActive(ctx, strings.TrimSpace(accountID))
	})
}

func (s *CachedTokenStore) Save(
	ctx context.Context,
	accountID string,
	marketplaceID string,
	tokens core.AuthTokens,
) (StoredTokens, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return StoredTokens{}, fmt.Errorf("sqlstore: cached token store is not configured")
	}
	saved, err := s.base.Save(ctx, accountID, marketplaceID, tokens)
	if err != nil {
		return StoredTokens{}, err
	}
	cacheKey, err := ActiveTokensCacheKey(saved.AccountID)
	if err != nil {
		return StoredTokens{}, err
	}
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		return StoredTokens{}, err
	}
	return saved, nil
}

// History is not cached.
func (s *CachedTokenStore) History(ctx context.Context, accountID string, limit int) ([]StoredTokens, error) {
	if s == nil || s.base == nil {
		return nil, fmt.Errorf("sqlstore: cached token store is not configured")
	}
	return s.base.History(ctx, accountID, limit)
}

var _ TokenRepository = (*CachedTokenStore)(nil)
