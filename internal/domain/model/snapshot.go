package model

import "time"

// RecommendationSnapshot 直近の検索結果の保存用データ
type RecommendationSnapshot struct {
	SnapshotID string                 `json:"snapshot_id"`
	UserID     string                 `json:"user_id"`
	Prompt     string                 `json:"prompt"`
	Response   RecommendationResponse `json:"response"`
	CreatedAt  time.Time              `json:"created_at"`
}

// FirestoreRecommendationSnapshot Firestore保存用の構造体
// レスポンスはJSON文字列で保持する（Firestoreのネスト制限を避けるため）
type FirestoreRecommendationSnapshot struct {
	UserID       string    `firestore:"userId"`
	Prompt       string    `firestore:"prompt"`
	ResponseJSON string    `firestore:"responseJson"`
	CreatedAt    time.Time `firestore:"createdAt"`
	ExpireAt     time.Time `firestore:"expireAt"`
}

// Expired 有効期限切れか
func (f *FirestoreRecommendationSnapshot) Expired(now time.Time) bool {
	return !f.ExpireAt.IsZero() && now.After(f.ExpireAt)
}
