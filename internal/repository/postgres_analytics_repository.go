package repository

import (
	"context"
	"database/sql"
	"fmt"

	"Spatialynk-App/internal/domain/model"
	"Spatialynk-App/internal/domain/repository"
	"Spatialynk-App/internal/infrastructure/database"
)

type PostgresAnalyticsRepository struct {
	client *database.PostgreSQLClient
}

func NewPostgresAnalyticsRepository(client *database.PostgreSQLClient) repository.AnalyticsRepository {
	return &PostgresAnalyticsRepository{
		client: client,
	}
}

func (r *PostgresAnalyticsRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.client.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("ユーザー数の取得失敗: %w", err)
	}
	return count, nil
}

func (r *PostgresAnalyticsRepository) CountPOIsByStatus(ctx context.Context, status model.POIStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM pois WHERE status = $1`
	if err := r.client.DB.QueryRowContext(ctx, query, string(status)).Scan(&count); err != nil {
		return 0, fmt.Errorf("POI数の取得失敗 (status=%s): %w", status, err)
	}
	return count, nil
}

// GetRecentSearchQueries 新しい順に検索語を返す（空の検索語は除外）
func (r *PostgresAnalyticsRepository) GetRecentSearchQueries(ctx context.Context, limit int) ([]string, error) {
	query := `
		SELECT search_query
		FROM search_history
		WHERE search_query IS NOT NULL AND search_query <> ''
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.client.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("検索履歴の取得失敗: %w", err)
	}
	defer rows.Close()

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("検索履歴のスキャン失敗: %w", err)
		}
		queries = append(queries, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("検索履歴の読み取り失敗: %w", err)
	}
	return queries, nil
}

// GetPopularPOIs 承認済みPOIを人気度の降順で返す
func (r *PostgresAnalyticsRepository) GetPopularPOIs(ctx context.Context, limit int) ([]model.PopularPOI, error) {
	query := `
		SELECT name, COALESCE(popularity::float8, 0), category, district
		FROM pois
		WHERE status = $1
		ORDER BY popularity DESC NULLS LAST
		LIMIT $2`

	rows, err := r.client.DB.QueryContext(ctx, query, string(model.POIStatusActive), limit)
	if err != nil {
		return nil, fmt.Errorf("人気POIの取得失敗: %w", err)
	}
	defer rows.Close()

	var pois []model.PopularPOI
	for rows.Next() {
		var (
			poi      model.PopularPOI
			category sql.NullString
			district sql.NullString
		)
		if err := rows.Scan(&poi.Name, &poi.Popularity, &category, &district); err != nil {
			return nil, fmt.Errorf("人気POIのスキャン失敗: %w", err)
		}
		poi.Category = category.String
		poi.District = district.String
		pois = append(pois, poi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("人気POIの読み取り失敗: %w", err)
	}
	return pois, nil
}
