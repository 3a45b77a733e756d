package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JacobDiB/NutriLink/internal/model"
	"github.com/JacobDiB/NutriLink/internal/provider/fatsecret"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const ProviderFatSecret = "fatsecret"

// FoodSearcher is satisfied by *fatsecret.Client.
type FoodSearcher interface {
	SearchFoods(ctx context.Context, query string) ([]fatsecret.Food, error)
}

type SearchOptions struct {
	// TTL of cached result lists; zero disables the cache.
	TTL time.Duration
	// Refresh skips the cache read but still stores the fresh result.
	Refresh bool
	Now     time.Time
}

type SearchResult struct {
	Query     string           `json:"query"`
	Foods     []fatsecret.Food `json:"foods"`
	Cached    bool             `json:"cached"`
	FetchedAt time.Time        `json:"fetched_at"`
}

type SearchCacheItem struct {
	Provider  string    `json:"provider"`
	Query     string    `json:"query"`
	Results   int       `json:"results"`
	FetchedAt time.Time `json:"fetched_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SearchFoods resolves query through the lookup cache, falling back to the
// searcher. Cached lists keep the provider's ranking.
func SearchFoods(ctx context.Context, db *gorm.DB, searcher FoodSearcher, query string, opts SearchOptions) (SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{}, fatsecret.ErrEmptyQuery
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	if opts.TTL > 0 && !opts.Refresh {
		entry, found, err := lookupSearchCache(db, ProviderFatSecret, query, now)
		if err != nil {
			return SearchResult{}, err
		}
		if found {
			var foods []fatsecret.Food
			if err := json.Unmarshal(entry.Payload, &foods); err != nil {
				slog.Warn("discarding unreadable lookup cache entry", "query", entry.Query, "err", err)
			} else {
				return SearchResult{Query: query, Foods: foods, Cached: true, FetchedAt: entry.FetchedAt}, nil
			}
		}
	}

	foods, err := searcher.SearchFoods(ctx, query)
	if err != nil {
		return SearchResult{}, err
	}
	if opts.TTL > 0 {
		if err := upsertSearchCache(db, ProviderFatSecret, query, foods, now, now.Add(opts.TTL)); err != nil {
			slog.Warn("lookup cache write failed", "query", query, "err", err)
		}
	}
	return SearchResult{Query: query, Foods: foods, FetchedAt: now}, nil
}

func ListSearchCache(db *gorm.DB, query string, limit int) ([]SearchCacheItem, error) {
	if limit <= 0 {
		limit = 100
	}
	q := db.Model(&model.SearchCacheEntry{}).Order("fetched_at DESC").Limit(limit)
	if strings.TrimSpace(query) != "" {
		q = q.Where("query_norm = ?", canonicalQuery(query))
	}
	var rows []model.SearchCacheEntry
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list lookup cache: %w", err)
	}
	out := make([]SearchCacheItem, 0, len(rows))
	for _, r := range rows {
		var foods []json.RawMessage
		if err := json.Unmarshal(r.Payload, &foods); err != nil {
			slog.Warn("unreadable lookup cache entry", "query", r.Query, "err", err)
		}
		out = append(out, SearchCacheItem{
			Provider:  r.Provider,
			Query:     r.Query,
			Results:   len(foods),
			FetchedAt: r.FetchedAt,
			ExpiresAt: r.ExpiresAt,
		})
	}
	return out, nil
}

// PurgeSearchCache deletes every entry (all), the entries of one query, or
// the entries already expired at now.
func PurgeSearchCache(db *gorm.DB, query string, all, expired bool, now time.Time) (int64, error) {
	var res *gorm.DB
	switch {
	case all:
		res = db.Where("1 = 1").Delete(&model.SearchCacheEntry{})
	case strings.TrimSpace(query) != "":
		res = db.Where("query_norm = ?", canonicalQuery(query)).Delete(&model.SearchCacheEntry{})
	case expired:
		var rows []model.SearchCacheEntry
		if err := db.Select("id", "expires_at").Find(&rows).Error; err != nil {
			return 0, fmt.Errorf("scan lookup cache: %w", err)
		}
		ids := make([]uint, 0)
		for _, r := range rows {
			if !now.Before(r.ExpiresAt) {
				ids = append(ids, r.ID)
			}
		}
		if len(ids) == 0 {
			return 0, nil
		}
		res = db.Where("id IN ?", ids).Delete(&model.SearchCacheEntry{})
	default:
		return 0, fmt.Errorf("specify --all, --expired, or --query")
	}
	if res.Error != nil {
		return 0, fmt.Errorf("purge lookup cache: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func lookupSearchCache(db *gorm.DB, provider, query string, now time.Time) (model.SearchCacheEntry, bool, error) {
	var entry model.SearchCacheEntry
	err := db.Where("provider = ? AND query_norm = ?", provider, canonicalQuery(query)).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.SearchCacheEntry{}, false, nil
	}
	if err != nil {
		return model.SearchCacheEntry{}, false, fmt.Errorf("lookup search cache: %w", err)
	}
	if !now.Before(entry.ExpiresAt) {
		return model.SearchCacheEntry{}, false, nil
	}
	return entry, true, nil
}

func upsertSearchCache(db *gorm.DB, provider, query string, foods []fatsecret.Food, fetchedAt, expiresAt time.Time) error {
	if foods == nil {
		foods = []fatsecret.Food{}
	}
	payload, err := json.Marshal(foods)
	if err != nil {
		return fmt.Errorf("marshal search cache payload: %w", err)
	}
	entry := model.SearchCacheEntry{
		Provider:  provider,
		Query:     query,
		QueryNorm: canonicalQuery(query),
		Payload:   datatypes.JSON(payload),
		FetchedAt: fetchedAt,
		ExpiresAt: expiresAt,
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}, {Name: "query_norm"}},
		DoUpdates: clause.AssignmentColumns([]string{"query", "payload", "fetched_at", "expires_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("upsert search cache: %w", err)
	}
	return nil
}

func canonicalQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
