package database

import (
	"context"
	"errors"

	"github.com/delbyte/solana-news-analysis/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 500

// UpsertPrices writes price points, replacing any stored point with the same
// timestamp. All points are committed together.
func (s *Store) UpsertPrices(ctx context.Context, points []models.PricePoint) error {
	points = dedupeByTimestamp(points)
	if len(points) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "timestamp"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "volume", "market_cap"}),
	}).CreateInBatches(points, upsertBatchSize).Error
	if err != nil {
		return &StoreError{Op: "upsert prices", Err: err}
	}
	return nil
}

// dedupeByTimestamp keeps the last point for each timestamp, preserving the
// order in which timestamps first appear.
func dedupeByTimestamp(points []models.PricePoint) []models.PricePoint {
	index := make(map[int64]int, len(points))
	out := make([]models.PricePoint, 0, len(points))
	for _, p := range points {
		if i, ok := index[p.Timestamp]; ok {
			out[i] = p
			continue
		}
		index[p.Timestamp] = len(out)
		out = append(out, p)
	}
	return out
}

// AppendNews inserts a news item with a fresh id and write timestamp.
func (s *Store) AppendNews(ctx context.Context, item *models.NewsItem) error {
	item.ID = 0
	item.CreatedAt = s.now().Unix()
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return &StoreError{Op: "append news", Err: err}
	}
	return nil
}

// AppendNewsBatch inserts every item in one transaction. Items are never
// deduplicated.
func (s *Store) AppendNewsBatch(ctx context.Context, items []models.NewsItem) error {
	if len(items) == 0 {
		return nil
	}
	createdAt := s.now().Unix()
	for i := range items {
		items[i].ID = 0
		items[i].CreatedAt = createdAt
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&items).Error
	})
	if err != nil {
		return &StoreError{Op: "append news", Err: err}
	}
	return nil
}

// AppendAnalysis validates and inserts a new analysis record. Existing
// records for the same range are kept.
func (s *Store) AppendAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	if err := record.Validate(); err != nil {
		return &StoreError{Op: "append analysis", Err: err}
	}
	record.ID = 0
	record.CreatedAt = s.now().Unix()
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return &StoreError{Op: "append analysis", Err: err}
	}
	return nil
}

// PricesInRange returns points with start <= timestamp <= end, oldest first.
func (s *Store) PricesInRange(ctx context.Context, start, end int64) ([]models.PricePoint, error) {
	var points []models.PricePoint
	err := s.db.WithContext(ctx).
		Scopes(between("timestamp", start, end)).
		Find(&points).Error
	if err != nil {
		return nil, &StoreError{Op: "query prices", Err: err}
	}
	return points, nil
}

// NewsInRange returns items with start <= published_at <= end, oldest first.
func (s *Store) NewsInRange(ctx context.Context, start, end int64) ([]models.NewsItem, error) {
	var items []models.NewsItem
	err := s.db.WithContext(ctx).
		Scopes(between("published_at", start, end, "id")).
		Find(&items).Error
	if err != nil {
		return nil, &StoreError{Op: "query news", Err: err}
	}
	return items, nil
}

// CachedAnalysis returns the newest record for exactly [start, end], or
// ErrCacheMiss.
func (s *Store) CachedAnalysis(ctx context.Context, start, end int64) (*models.AnalysisRecord, error) {
	var record models.AnalysisRecord
	err := s.db.WithContext(ctx).
		Scopes(cacheKey(start, end)).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "created_at"}, Desc: true},
			{Column: clause.Column{Name: "id"}, Desc: true},
		}}).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, &StoreError{Op: "cache lookup", Err: err}
	}
	if err := record.Validate(); err != nil {
		return nil, &StoreError{Op: "cache lookup", Err: err}
	}
	return &record, nil
}

// cacheKey is the single place that decides which stored analysis answers a
// range. Granularity is not part of the key.
func cacheKey(start, end int64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: clause.Column{Name: "start_date"}, Value: start}).
			Where(clause.Eq{Column: clause.Column{Name: "end_date"}, Value: end})
	}
}

// between filters column to the inclusive range and orders by it ascending,
// then by each tiebreak column. Scopes run after chained clauses, so every
// ORDER BY term of a range query belongs here.
func between(column string, start, end int64, tiebreak ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		col := clause.Column{Name: column}
		order := clause.OrderBy{Columns: []clause.OrderByColumn{{Column: col}}}
		for _, name := range tiebreak {
			order.Columns = append(order.Columns, clause.OrderByColumn{Column: clause.Column{Name: name}})
		}
		return db.Where(clause.Gte{Column: col, Value: start}).
			Where(clause.Lte{Column: col, Value: end}).
			Order(order)
	}
}
