package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/supabase-community/postgrest-go"

	"Spatialynk-App/internal/domain/model"
	"Spatialynk-App/internal/domain/repository"
	"Spatialynk-App/internal/infrastructure/database"
)

type SupabaseSearchHistoryRepository struct {
	client *database.SupabaseClient
}

func NewSupabaseSearchHistoryRepository(client *database.SupabaseClient) repository.SearchHistoryRepository {
	return &SupabaseSearchHistoryRepository{
		client: client,
	}
}

// searchHistoryInsert 挿入用の行（id と created_at はDB側で採番）
type searchHistoryInsert struct {
	UserID      string    `json:"user_id"`
	SearchQuery string    `json:"search_query"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r *SupabaseSearchHistoryRepository) Create(ctx context.Context, history *model.SearchHistory) error {
	if history.UserID == "" || history.SearchQuery == "" {
		return fmt.Errorf("検索履歴にはuser_idとsearch_queryが必要です")
	}
	row := searchHistoryInsert{
		UserID:      history.UserID,
		SearchQuery: history.SearchQuery,
		CreatedAt:   history.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	_, _, err := r.client.GetClient().From("search_history").Insert(row, false, "", "minimal", "").Execute()
	if err != nil {
		return fmt.Errorf("検索履歴の作成失敗: %w", err)
	}
	return nil
}

// GetRecentByUserID 新しい順に最大 limit 件
func (r *SupabaseSearchHistoryRepository) GetRecentByUserID(ctx context.Context, userID string, limit int) ([]model.SearchHistory, error) {
	data, _, err := r.client.GetClient().From("search_history").
		Select("*", "", false).
		Eq("user_id", userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("検索履歴の取得失敗: %w", err)
	}

	var histories []model.SearchHistory
	if err := json.Unmarshal(data, &histories); err != nil {
		return nil, fmt.Errorf("検索履歴のJSONアンマーシャル失敗: %w", err)
	}
	return histories, nil
}
