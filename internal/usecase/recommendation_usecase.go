package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"Spatialynk-App/internal/domain/model"
	"Spatialynk-App/internal/domain/repository"
	"Spatialynk-App/internal/domain/service"
	"Spatialynk-App/internal/logging"
	"Spatialynk-App/internal/metrics"
)

type RecommendationUseCase interface {
	// Search 推薦を取得してストアにコミットする。より新しい検索に追い越された場合は service.ErrStaleResponse
	Search(ctx context.Context, userID, prompt string) (*SearchResult, error)
	// RestoreLatest 保存済みの直近の検索結果をストアに復元する。復元した場合 true
	RestoreLatest(ctx context.Context, userID string) (bool, error)
	RecentHistory(ctx context.Context, userID string, limit int) ([]model.SearchHistory, error)
	Health(ctx context.Context) (*model.HealthStatus, error)
	ReasonFlags(ctx context.Context, userID, poiID string, level model.Level) (*model.ReasonFlags, error)
}

// SearchResult 検索の結果
type SearchResult struct {
	RequestID string                `json:"request_id"`
	Sequence  uint64                `json:"sequence"`
	Role      string                `json:"role"`
	State     service.StoreSnapshot `json:"state"`
}

type recommendationUseCaseImpl struct {
	client    repository.RecommendationClient
	store     *service.RecommendationStore
	roles     *RoleResolver
	history   repository.SearchHistoryRepository
	snapshots repository.SnapshotRepository

	// registered 登録リクエスト済みのユーザー
	registered sync.Map
}

// NewRecommendationUseCase history と snapshots は nil 可
func NewRecommendationUseCase(
	client repository.RecommendationClient,
	store *service.RecommendationStore,
	roles *RoleResolver,
	history repository.SearchHistoryRepository,
	snapshots repository.SnapshotRepository,
) RecommendationUseCase {
	return &recommendationUseCaseImpl{
		client:    client,
		store:     store,
		roles:     roles,
		history:   history,
		snapshots: snapshots,
	}
}

func (u *recommendationUseCaseImpl) Search(ctx context.Context, userID, prompt string) (*SearchResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	role, profile := u.roles.Resolve(ctx, userID)
	if !role.CanGeneratePrompts() {
		return nil, fmt.Errorf("%w: role=%s", ErrPermissionDenied, role)
	}

	u.ensureRegistered(ctx, userID, profile)

	requestID := uuid.New().String()
	seq := u.store.BeginRequest()
	log := logging.With().Str("request_id", requestID).Uint64("seq", seq).Str("user_id", userID).Logger()
	log.Info().Str("prompt", prompt).Msg("推薦検索開始")

	resp, err := u.client.GetRecommendations(ctx, &model.RecommendationRequest{
		UserID:          userID,
		Prompt:          prompt,
		CurrentLocation: u.store.UserLocation(),
	})
	if err != nil {
		if u.store.FailRequest(seq, err) {
			log.Error().Err(err).Msg("推薦の取得に失敗")
		} else {
			log.Info().Err(err).Msg("新しい検索が発行済みのため失敗を無視")
		}
		return nil, fmt.Errorf("推薦の取得に失敗: %w", err)
	}
	if resp.Prompt == "" {
		resp.Prompt = prompt
	}

	if err := u.store.CommitRecommendations(seq, resp); err != nil {
		if errors.Is(err, service.ErrStaleResponse) {
			metrics.StaleResponsesDiscarded.Inc()
			log.Info().Uint64("latest_seq", u.store.LatestSequence()).Msg("古いレスポンスを破棄")
		}
		return nil, err
	}
	log.Info().Int("total", u.store.TotalRecommendationsCount()).Msg("推薦結果をコミット")

	if role.SavesSearchHistory() {
		u.saveHistory(ctx, userID, prompt)
	}
	u.saveSnapshot(ctx, userID, prompt, resp)

	return &SearchResult{
		RequestID: requestID,
		Sequence:  seq,
		Role:      role.String(),
		State:     u.store.Snapshot(),
	}, nil
}

// ensureRegistered 推薦サービスにユーザーを一度だけ登録する（失敗は無視）
func (u *recommendationUseCaseImpl) ensureRegistered(ctx context.Context, userID string, profile *model.UserProfile) {
	if _, loaded := u.registered.LoadOrStore(userID, struct{}{}); loaded {
		return
	}
	var interests []string
	if profile != nil {
		interests = profile.Interests
	}
	if _, err := u.client.RegisterUser(ctx, &model.RegisterUserRequest{UserID: userID, Interests: interests}); err != nil {
		metrics.NonFatalErrors.WithLabelValues("register_user").Inc()
		logging.Warn().Err(err).Str("user_id", userID).Msg("推薦サービスへのユーザー登録に失敗")
	}
}

func (u *recommendationUseCaseImpl) saveHistory(ctx context.Context, userID, prompt string) {
	if u.history == nil {
		return
	}
	err := u.history.Create(ctx, &model.SearchHistory{
		UserID:      userID,
		SearchQuery: prompt,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		metrics.NonFatalErrors.WithLabelValues("save_search_history").Inc()
		logging.Warn().Err(err).Str("user_id", userID).Msg("検索履歴の保存に失敗")
	}
}

func (u *recommendationUseCaseImpl) saveSnapshot(ctx context.Context, userID, prompt string, resp *model.RecommendationResponse) {
	if u.snapshots == nil {
		return
	}
	err := u.snapshots.Save(ctx, &model.RecommendationSnapshot{
		UserID:   userID,
		Prompt:   prompt,
		Response: *resp,
	})
	if err != nil {
		metrics.NonFatalErrors.WithLabelValues("save_snapshot").Inc()
		logging.Warn().Err(err).Str("user_id", userID).Msg("スナップショットの保存に失敗")
	}
}

func (u *recommendationUseCaseImpl) RestoreLatest(ctx context.Context, userID string) (bool, error) {
	if u.snapshots == nil || userID == "" {
		return false, nil
	}
	snapshot, err := u.snapshots.GetLatestByUserID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("スナップショットの取得に失敗: %w", err)
	}
	if snapshot == nil {
		return false, nil
	}

	seq := u.store.BeginRequest()
	if err := u.store.CommitRecommendations(seq, &snapshot.Response); err != nil {
		return false, err
	}
	logging.Info().Str("user_id", userID).Str("snapshot_id", snapshot.SnapshotID).Msg("直近の検索結果を復元")
	return true, nil
}

func (u *recommendationUseCaseImpl) RecentHistory(ctx context.Context, userID string, limit int) ([]model.SearchHistory, error) {
	role, _ := u.roles.Resolve(ctx, userID)
	if !role.SavesSearchHistory() {
		return nil, fmt.Errorf("%w: role=%s", ErrPermissionDenied, role)
	}
	if u.history == nil {
		return []model.SearchHistory{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	histories, err := u.history.GetRecentByUserID(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("検索履歴の取得に失敗: %w", err)
	}
	return histories, nil
}

func (u *recommendationUseCaseImpl) Health(ctx context.Context) (*model.HealthStatus, error) {
	return u.client.CheckHealth(ctx)
}

func (u *recommendationUseCaseImpl) ReasonFlags(ctx context.Context, userID, poiID string, level model.Level) (*model.ReasonFlags, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_idが必要です", ErrPermissionDenied)
	}
	return u.client.GetReasonFlags(ctx, userID, poiID, level)
}
