package repository

import (
	"context"

	"Spatialynk-App/internal/domain/model"
)

// SearchHistoryRepository search_history テーブルへのアクセス
type SearchHistoryRepository interface {
	Create(ctx context.Context, history *model.SearchHistory) error
	GetRecentByUserID(ctx context.Context, userID string, limit int) ([]model.SearchHistory, error)
}
