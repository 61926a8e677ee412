package repository

import (
	"context"

	"Spatialynk-App/internal/domain/model"
)

// SnapshotRepository 直近の検索結果の保存先
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot *model.RecommendationSnapshot) error
	// GetLatestByUserID 有効期限内で最新のスナップショットを返す（無ければ nil, nil）
	GetLatestByUserID(ctx context.Context, userID string) (*model.RecommendationSnapshot, error)
}
