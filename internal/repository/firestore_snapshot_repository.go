package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"Spatialynk-App/internal/domain/model"
	"Spatialynk-App/internal/domain/repository"
	"Spatialynk-App/internal/logging"
)

const snapshotCollection = "recommendationSnapshots"

// FirestoreSnapshotRepository 直近の検索結果をFirestoreに保存するリポジトリ
// expireAt フィールドにFirestoreのTTLポリシーを設定する想定
type FirestoreSnapshotRepository struct {
	client *firestore.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewFirestoreSnapshotRepository 新しいFirestoreSnapshotRepositoryインスタンスを作成
func NewFirestoreSnapshotRepository(client *firestore.Client, ttl time.Duration) repository.SnapshotRepository {
	return &FirestoreSnapshotRepository{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Save スナップショットを保存する。SnapshotID が空なら採番する
func (r *FirestoreSnapshotRepository) Save(ctx context.Context, snapshot *model.RecommendationSnapshot) error {
	if snapshot.SnapshotID == "" {
		snapshot.SnapshotID = fmt.Sprintf("snap_%s", uuid.New().String())
	}
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = r.now().UTC()
	}

	data, err := ToFirestoreSnapshot(snapshot, r.ttl)
	if err != nil {
		return err
	}

	if _, err := r.client.Collection(snapshotCollection).Doc(snapshot.SnapshotID).Set(ctx, data); err != nil {
		return fmt.Errorf("スナップショットの保存に失敗しました: %w", err)
	}
	logging.Debug().Str("snapshot_id", snapshot.SnapshotID).Str("user_id", snapshot.UserID).Dur("ttl", r.ttl).Msg("スナップショットを保存")
	return nil
}

// GetLatestByUserID 有効期限内で最新のスナップショットを返す。無ければ nil, nil
func (r *FirestoreSnapshotRepository) GetLatestByUserID(ctx context.Context, userID string) (*model.RecommendationSnapshot, error) {
	iter := r.client.Collection(snapshotCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("スナップショットの取得に失敗しました: %w", err)
	}

	var data model.FirestoreRecommendationSnapshot
	if err := doc.DataTo(&data); err != nil {
		return nil, fmt.Errorf("データの変換に失敗しました: %w", err)
	}
	// TTLによる削除は即時ではないため読み取り時にも判定する
	if data.Expired(r.now()) {
		return nil, nil
	}
	return FromFirestoreSnapshot(doc.Ref.ID, &data)
}

// ToFirestoreSnapshot レスポンスをJSON文字列にしてFirestore保存用の構造体へ変換
func ToFirestoreSnapshot(snapshot *model.RecommendationSnapshot, ttl time.Duration) (*model.FirestoreRecommendationSnapshot, error) {
	responseJSON, err := json.Marshal(snapshot.Response)
	if err != nil {
		return nil, fmt.Errorf("レスポンスのJSONマーシャル失敗: %w", err)
	}
	return &model.FirestoreRecommendationSnapshot{
		UserID:       snapshot.UserID,
		Prompt:       snapshot.Prompt,
		ResponseJSON: string(responseJSON),
		CreatedAt:    snapshot.CreatedAt,
		ExpireAt:     snapshot.CreatedAt.Add(ttl),
	}, nil
}

// FromFirestoreSnapshot Firestoreのドキュメントからスナップショットを復元
func FromFirestoreSnapshot(id string, data *model.FirestoreRecommendationSnapshot) (*model.RecommendationSnapshot, error) {
	var response model.RecommendationResponse
	if err := json.Unmarshal([]byte(data.ResponseJSON), &response); err != nil {
		return nil, fmt.Errorf("レスポンスのJSONアンマーシャル失敗: %w", err)
	}
	return &model.RecommendationSnapshot{
		SnapshotID: id,
		UserID:     data.UserID,
		Prompt:     data.Prompt,
		Response:   response,
		CreatedAt:  data.CreatedAt,
	}, nil
}
