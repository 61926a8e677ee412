package repository

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"Spatialynk-App/internal/domain/model"
	"Spatialynk-App/internal/domain/repository"
	"Spatialynk-App/internal/infrastructure/database"
)

type SupabaseUsersRepository struct {
	client *database.SupabaseClient
}

func NewSupabaseUsersRepository(client *database.SupabaseClient) repository.UsersRepository {
	return &SupabaseUsersRepository{
		client: client,
	}
}

// GetByUserID 認証ユーザーID（users.auth_id）でプロフィールを取得。見つからなければ nil, nil
func (r *SupabaseUsersRepository) GetByUserID(ctx context.Context, userID string) (*model.UserProfile, error) {
	data, _, err := r.client.GetClient().From("users").
		Select("user_id,auth_id,role,is_active,interests", "", false).
		Eq("auth_id", userID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("ユーザー情報の取得失敗: %w", err)
	}

	var users []model.UserProfile
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("ユーザー情報のJSONアンマーシャル失敗: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}
