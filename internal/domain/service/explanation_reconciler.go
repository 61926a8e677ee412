package service

import (
	"context"
	"sync"
	"time"

	"Spatialynk-App/internal/domain/model"
	"Spatialynk-App/internal/domain/repository"
	"Spatialynk-App/internal/logging"
	"Spatialynk-App/internal/metrics"
)

// ExplanationSource 推薦理由の解決元
type ExplanationSource string

const (
	ExplanationEmbedded ExplanationSource = "embedded"
	ExplanationArray    ExplanationSource = "array"
	ExplanationFetched  ExplanationSource = "fetched"
	ExplanationNone     ExplanationSource = "none"
)

// ReconcilerOptions ExplanationReconciler の設定
type ReconcilerOptions struct {
	// ResetDedupOnNewSearch true の場合、新しい検索結果のコミット時に記録済みPOIをリセットする
	ResetDedupOnNewSearch bool
}

// ExpandResult ToggleExpanded の結果
type ExpandResult struct {
	Expanded    bool               `json:"expanded"`
	Explanation *model.Explanation `json:"explanation,omitempty"`
	Source      ExplanationSource  `json:"source"`
}

type poiKey struct {
	level model.Level
	poiID string
}

type interactionKey struct {
	userID string
	poiID  string
}

// ExplanationReconciler 推薦理由の解決と操作ログの重複排除を担当する
//
// 解決順序は「POIに埋め込まれた理由」→「レベルの理由配列（poi_id一致）」→「オンデマンド取得済み」。
// オンデマンドで取得した理由はストアの配列にはマージせず、このコンポーネント内でのみ保持する。
type ExplanationReconciler struct {
	client repository.RecommendationClient
	store  *RecommendationStore
	opts   ReconcilerOptions

	mu         sync.Mutex
	generation uint64
	recorded   map[interactionKey]struct{}
	expanded   map[poiKey]bool
	attempted  map[poiKey]struct{}
	fetched    map[poiKey]model.Explanation
}

// NewExplanationReconciler ストアを購読するリコンサイラを作成
func NewExplanationReconciler(client repository.RecommendationClient, store *RecommendationStore, opts ReconcilerOptions) *ExplanationReconciler {
	r := &ExplanationReconciler{
		client:    client,
		store:     store,
		opts:      opts,
		recorded:  make(map[interactionKey]struct{}),
		expanded:  make(map[poiKey]bool),
		attempted: make(map[poiKey]struct{}),
		fetched:   make(map[poiKey]model.Explanation),
	}
	store.Subscribe(r.onStoreEvent)
	return r
}

func (r *ExplanationReconciler) onStoreEvent(event StoreEvent) {
	switch event {
	case EventRecommendationsReplaced, EventRecommendationsCleared:
		r.mu.Lock()
		defer r.mu.Unlock()
		r.generation++
		r.expanded = make(map[poiKey]bool)
		r.attempted = make(map[poiKey]struct{})
		r.fetched = make(map[poiKey]model.Explanation)
		if r.opts.ResetDedupOnNewSearch {
			r.recorded = make(map[interactionKey]struct{})
		}
	}
}

// GetExplanationForPOI POIの推薦理由を解決する（見つからなければ nil, ExplanationNone）
func (r *ExplanationReconciler) GetExplanationForPOI(level model.Level, poi *model.POIInfo) (*model.Explanation, ExplanationSource) {
	exp, source := r.resolve(level, poi)
	metrics.ExplanationLookups.WithLabelValues(string(source)).Inc()
	return exp, source
}

func (r *ExplanationReconciler) resolve(level model.Level, poi *model.POIInfo) (*model.Explanation, ExplanationSource) {
	if poi == nil {
		return nil, ExplanationNone
	}
	if poi.Explanation != nil {
		exp := *poi.Explanation
		return &exp, ExplanationEmbedded
	}
	if exp, ok := r.store.FindExplanation(level, poi.POIID); ok {
		return exp, ExplanationArray
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if exp, ok := r.fetched[poiKey{level: level, poiID: poi.POIID}]; ok {
		return &exp, ExplanationFetched
	}
	return nil, ExplanationNone
}

// ToggleExpanded POIの展開状態を切り替える
// 初回展開時に理由が解決できなければ、そのPOIのレベルを指定して一度だけ取得する。
// 取得の失敗はログに残すのみでエラーにはしない
func (r *ExplanationReconciler) ToggleExpanded(ctx context.Context, userID string, level model.Level, poi *model.POIInfo) ExpandResult {
	key := poiKey{level: level, poiID: poi.POIID}

	r.mu.Lock()
	expanded := !r.expanded[key]
	r.expanded[key] = expanded
	r.mu.Unlock()

	if !expanded {
		return ExpandResult{Expanded: false, Source: ExplanationNone}
	}

	if exp, source := r.GetExplanationForPOI(level, poi); exp != nil {
		return ExpandResult{Expanded: true, Explanation: exp, Source: source}
	}

	r.mu.Lock()
	if _, done := r.attempted[key]; done {
		r.mu.Unlock()
		return ExpandResult{Expanded: true, Source: ExplanationNone}
	}
	r.attempted[key] = struct{}{}
	generation := r.generation
	r.mu.Unlock()

	exp, err := r.client.GetExplanation(ctx, &model.ExplainRequest{
		UserID:          userID,
		POIID:           poi.POIID,
		Level:           level,
		CurrentLocation: r.store.UserLocation(),
	})
	if err != nil {
		metrics.NonFatalErrors.WithLabelValues("get_explanation").Inc()
		logging.Warn().Err(err).Str("poi_id", poi.POIID).Int("level", int(level)).Msg("推薦理由の取得に失敗")
		return ExpandResult{Expanded: true, Source: ExplanationNone}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// 取得中に新しい検索結果へ置き換わった場合は保持しない
	if generation == r.generation {
		r.fetched[key] = *exp
	}
	return ExpandResult{Expanded: true, Explanation: exp, Source: ExplanationFetched}
}

// IsExpanded POIが展開中か
func (r *ExplanationReconciler) IsExpanded(level model.Level, poiID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.expanded[poiKey{level: level, poiID: poiID}]
}

// RecordInteractionOnce ユーザーごとに記録済みでないPOIに限り操作ログを送信する
// 送信した場合 true。送信失敗はログに残すのみで再送しない
func (r *ExplanationReconciler) RecordInteractionOnce(ctx context.Context, userID, poiID string, interactionType model.InteractionType, value float64) bool {
	key := interactionKey{userID: userID, poiID: poiID}

	r.mu.Lock()
	if _, done := r.recorded[key]; done {
		r.mu.Unlock()
		metrics.InteractionsDeduplicated.Inc()
		return false
	}
	r.recorded[key] = struct{}{}
	r.mu.Unlock()

	now := time.Now().UTC()
	_, err := r.client.RecordInteraction(ctx, &model.InteractionRequest{
		UserID:          userID,
		POIID:           poiID,
		InteractionType: interactionType,
		Value:           &value,
		Timestamp:       &now,
	})
	if err != nil {
		metrics.NonFatalErrors.WithLabelValues("record_interaction").Inc()
		logging.Warn().Err(err).Str("poi_id", poiID).Str("interaction_type", string(interactionType)).Msg("操作ログの送信に失敗")
	}
	return true
}

// RecordedCount 記録済みの (ユーザー, POI) 数
func (r *ExplanationReconciler) RecordedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.recorded)
}
