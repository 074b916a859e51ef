package database

import (
	"fmt"

	"github.com/delbyte/solana-news-analysis/models"
	"gorm.io/gorm"
)

// Migrate creates the three tables and their indexes if they are absent.
// Running it again is a no-op.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.PricePoint{}, &models.NewsItem{}, &models.AnalysisRecord{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return OptimizeIndexes(db)
}

// OptimizeIndexes creates the composite index behind cache lookups.
// Lookups filter on both endpoints and read the newest row first.
func OptimizeIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_analysis_range_recent
		ON analysis (start_date, end_date, created_at DESC)
	`).Error; err != nil {
		return fmt.Errorf("failed to create analysis range index: %w", err)
	}
	return nil
}
