package repository

import (
	"context"

	"Spatialynk-App/internal/domain/model"
)

// UsersRepository users テーブルの参照
type UsersRepository interface {
	GetByUserID(ctx context.Context, userID string) (*model.UserProfile, error)
}
