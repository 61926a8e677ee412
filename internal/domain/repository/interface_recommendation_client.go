package repository

import (
	"context"

	"Spatialynk-App/internal/domain/model"
)

// RecommendationClient リモート推薦サービスとの境界
type RecommendationClient interface {
	// GetRecommendations プロンプトに対する多階層の推薦を取得
	GetRecommendations(ctx context.Context, req *model.RecommendationRequest) (*model.RecommendationResponse, error)
	// GetExplanation 推薦結果に埋め込まれていなかった推薦理由を取得
	GetExplanation(ctx context.Context, req *model.ExplainRequest) (*model.Explanation, error)
	// RecordInteraction 操作ログを送信（呼び出し側はエラーをログに残すのみ）
	RecordInteraction(ctx context.Context, req *model.InteractionRequest) (*model.InteractionAck, error)
	RegisterUser(ctx context.Context, req *model.RegisterUserRequest) (*model.RegisterUserResponse, error)
	CheckHealth(ctx context.Context) (*model.HealthStatus, error)
	GetReasonFlags(ctx context.Context, userID, poiID string, level model.Level) (*model.ReasonFlags, error)
}
