package repository

import (
	"context"

	"Spatialynk-App/internal/domain/model"
)

// AnalyticsRepository 管理者向け集計
type AnalyticsRepository interface {
	CountUsers(ctx context.Context) (int, error)
	CountPOIsByStatus(ctx context.Context, status model.POIStatus) (int, error)
	// GetRecentSearchQueries 新しい順に検索語を返す
	GetRecentSearchQueries(ctx context.Context, limit int) ([]string, error)
	GetPopularPOIs(ctx context.Context, limit int) ([]model.PopularPOI, error)
}
