package service

import (
	"sync"

	"Spatialynk-App/internal/domain/model"
)

// StoreEvent ストアの変更通知
type StoreEvent int

const (
	// EventRecommendationsReplaced 新しい検索結果がコミットされた
	EventRecommendationsReplaced StoreEvent = iota
	// EventRecommendationsCleared 検索結果が初期状態に戻された
	EventRecommendationsCleared
	// EventLevelChanged 選択レベルが変更された
	EventLevelChanged
	// EventSelectedPOIChanged 選択中のPOIが変更された
	EventSelectedPOIChanged
	// EventUserLocationChanged 現在地が変更された
	EventUserLocationChanged
)

// StoreListener 変更通知を受け取るコールバック
// ストアのロックを解放した後に呼ばれるため、ストアの操作を呼び出してよい
type StoreListener func(event StoreEvent)

// SelectedPOI 選択中のPOI（レベル配列内の要素のコピー）
type SelectedPOI struct {
	Level model.Level   `json:"level"`
	POI   model.POIInfo `json:"poi"`
}

// StoreSnapshot ストアの読み取り専用の写し
type StoreSnapshot struct {
	HasRecommendations bool                  `json:"has_recommendations"`
	CurrentPrompt      string                `json:"current_prompt"`
	LevelCounts        [model.LevelCount]int `json:"level_counts"`
	ExplanationCounts  [model.LevelCount]int `json:"explanation_counts"`
	TotalCount         int                   `json:"total_count"`
	SelectedLevel      model.Level           `json:"selected_level"`
	SelectedPOI        *SelectedPOI          `json:"selected_poi,omitempty"`
	UserLocation       *model.Location       `json:"user_location,omitempty"`
	Loading            bool                  `json:"loading"`
	Error              string                `json:"error,omitempty"`
	Sequence           uint64                `json:"sequence"`
}

// RecommendationStore 直近の推薦結果と閲覧状態を保持する唯一の状態コンテナ
//
// レベル配列と推薦理由配列は SetRecommendations / CommitRecommendations でのみ置き換わる。
// 検索リクエストには単調増加のシーケンス番号を振り、最新のリクエストに対応する
// レスポンスだけをコミットする。
type RecommendationStore struct {
	mu sync.RWMutex

	response      *model.RecommendationResponse
	levels        [model.LevelCount][]model.POIInfo
	explanations  [model.LevelCount][]model.Explanation
	selectedLevel model.Level
	selectedPOI   *SelectedPOI
	userLocation  *model.Location
	currentPrompt string
	loading       bool
	lastError     string

	// issuedSeq 最後に発行したリクエストの番号
	issuedSeq uint64

	listenersMu sync.Mutex
	listeners   []StoreListener
}

// NewRecommendationStore 空のストアを作成
func NewRecommendationStore() *RecommendationStore {
	return &RecommendationStore{}
}

// Subscribe 変更通知を購読する
func (s *RecommendationStore) Subscribe(listener StoreListener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, listener)
}

func (s *RecommendationStore) emit(event StoreEvent) {
	s.listenersMu.Lock()
	listeners := make([]StoreListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l(event)
	}
}

// BeginRequest 新しい検索リクエストの番号を発行し、ローディング状態にする
// これより前に発行されたリクエストのレスポンスはコミットできなくなる
func (s *RecommendationStore) BeginRequest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issuedSeq++
	s.loading = true
	s.lastError = ""
	return s.issuedSeq
}

// LatestSequence 最後に発行したリクエスト番号
func (s *RecommendationStore) LatestSequence() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.issuedSeq
}

// CommitRecommendations seq が最新のリクエストであればレスポンスをコミットする
// 古いリクエストの場合は何も変更せず ErrStaleResponse を返す
func (s *RecommendationStore) CommitRecommendations(seq uint64, response *model.RecommendationResponse) error {
	s.mu.Lock()
	if seq != s.issuedSeq {
		s.mu.Unlock()
		return ErrStaleResponse
	}
	s.replaceLocked(response)
	s.loading = false
	s.mu.Unlock()

	s.emit(EventRecommendationsReplaced)
	return nil
}

// FailRequest seq が最新のリクエストであればエラーを記録してローディングを解除する
// 既存の推薦結果には触れない。古いリクエストの場合は false を返す
func (s *RecommendationStore) FailRequest(seq uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.issuedSeq {
		return false
	}
	s.loading = false
	if err != nil {
		s.lastError = err.Error()
	}
	return true
}

// SetRecommendations レスポンスと派生配列を一括で置き換え、選択レベルを0、選択POIを nil に戻す
// 実行中のリクエストはすべて古い扱いになる
func (s *RecommendationStore) SetRecommendations(response *model.RecommendationResponse) {
	s.mu.Lock()
	s.issuedSeq++
	s.loading = false
	s.replaceLocked(response)
	s.mu.Unlock()

	s.emit(EventRecommendationsReplaced)
}

func (s *RecommendationStore) replaceLocked(response *model.RecommendationResponse) {
	if response == nil {
		s.clearLocked()
		return
	}
	copied := *response
	s.response = &copied
	for _, level := range model.AllLevels() {
		s.levels[level] = clonePOIs(response.Recommendations.ByLevel(level))
		s.explanations[level] = cloneExplanations(response.Explanations.ByLevel(level))
	}
	s.currentPrompt = response.Prompt
	s.selectedLevel = model.LevelPlace
	s.selectedPOI = nil
	s.lastError = ""
}

// ClearRecommendations 推薦結果を初期状態に戻す（リセット・ログアウト時）
// 実行中のリクエストのレスポンスは以後コミットできない
func (s *RecommendationStore) ClearRecommendations() {
	s.mu.Lock()
	s.issuedSeq++
	s.loading = false
	s.clearLocked()
	s.mu.Unlock()

	s.emit(EventRecommendationsCleared)
}

func (s *RecommendationStore) clearLocked() {
	s.response = nil
	s.levels = [model.LevelCount][]model.POIInfo{}
	s.explanations = [model.LevelCount][]model.Explanation{}
	s.selectedLevel = model.LevelPlace
	s.selectedPOI = nil
	s.currentPrompt = ""
	s.lastError = ""
}

// SetSelectedLevel 選択レベルを変更する（データの取得は行わない）
func (s *RecommendationStore) SetSelectedLevel(level model.Level) error {
	if !level.Valid() {
		return model.ErrInvalidLevel
	}
	s.mu.Lock()
	s.selectedLevel = level
	s.mu.Unlock()

	s.emit(EventLevelChanged)
	return nil
}

// SetSelectedPOI 選択POIを値のコピーとして保持する。nil で選択解除
func (s *RecommendationStore) SetSelectedPOI(level model.Level, poi *model.POIInfo) {
	s.mu.Lock()
	if poi == nil {
		s.selectedPOI = nil
	} else {
		s.selectedPOI = &SelectedPOI{Level: level, POI: *poi}
	}
	s.mu.Unlock()

	s.emit(EventSelectedPOIChanged)
}

// SetUserLocation 現在地を設定する。nil で未取得に戻す
func (s *RecommendationStore) SetUserLocation(location *model.Location) {
	s.mu.Lock()
	if location == nil {
		s.userLocation = nil
	} else {
		loc := *location
		s.userLocation = &loc
	}
	s.mu.Unlock()

	s.emit(EventUserLocationChanged)
}

func (s *RecommendationStore) SetCurrentPrompt(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentPrompt = prompt
}

func (s *RecommendationStore) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

func (s *RecommendationStore) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = message
}

func (s *RecommendationStore) ClearError() {
	s.SetError("")
}

// RecommendationsByLevel 指定レベルのPOI配列のコピー（範囲外は nil）
func (s *RecommendationStore) RecommendationsByLevel(level model.Level) []model.POIInfo {
	if !level.Valid() {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePOIs(s.levels[level])
}

// ExplanationsByLevel 指定レベルの推薦理由配列のコピー（範囲外は nil）
func (s *RecommendationStore) ExplanationsByLevel(level model.Level) []model.Explanation {
	if !level.Valid() {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneExplanations(s.explanations[level])
}

// FindExplanation 指定レベルの推薦理由配列から poi_id で検索する
func (s *RecommendationStore) FindExplanation(level model.Level, poiID string) (*model.Explanation, bool) {
	if !level.Valid() {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.explanations[level] {
		if s.explanations[level][i].POIID == poiID {
			exp := s.explanations[level][i]
			return &exp, true
		}
	}
	return nil, false
}

// FindPOI 指定レベルのPOIを poi_id で検索する
func (s *RecommendationStore) FindPOI(level model.Level, poiID string) (*model.POIInfo, bool) {
	if !level.Valid() {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.levels[level] {
		if s.levels[level][i].POIID == poiID {
			poi := s.levels[level][i]
			return &poi, true
		}
	}
	return nil, false
}

// TotalRecommendationsCount 全レベルのPOI数の合計
func (s *RecommendationStore) TotalRecommendationsCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, pois := range s.levels {
		total += len(pois)
	}
	return total
}

// HasRecommendations 推薦結果を保持しているか
func (s *RecommendationStore) HasRecommendations() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.response != nil
}

// Response 直近のレスポンスのコピー（無ければ nil）
func (s *RecommendationStore) Response() *model.RecommendationResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.response == nil {
		return nil
	}
	copied := *s.response
	return &copied
}

func (s *RecommendationStore) SelectedLevel() model.Level {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedLevel
}

func (s *RecommendationStore) SelectedPOI() *SelectedPOI {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedPOI == nil {
		return nil
	}
	selected := *s.selectedPOI
	return &selected
}

func (s *RecommendationStore) UserLocation() *model.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.userLocation == nil {
		return nil
	}
	loc := *s.userLocation
	return &loc
}

func (s *RecommendationStore) CurrentPrompt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPrompt
}

func (s *RecommendationStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *RecommendationStore) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Snapshot 現在の状態の写しを返す
func (s *RecommendationStore) Snapshot() StoreSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := StoreSnapshot{
		HasRecommendations: s.response != nil,
		CurrentPrompt:      s.currentPrompt,
		SelectedLevel:      s.selectedLevel,
		Loading:            s.loading,
		Error:              s.lastError,
		Sequence:           s.issuedSeq,
	}
	for i := range s.levels {
		snap.LevelCounts[i] = len(s.levels[i])
		snap.ExplanationCounts[i] = len(s.explanations[i])
		snap.TotalCount += len(s.levels[i])
	}
	if s.selectedPOI != nil {
		selected := *s.selectedPOI
		snap.SelectedPOI = &selected
	}
	if s.userLocation != nil {
		loc := *s.userLocation
		snap.UserLocation = &loc
	}
	return snap
}

func clonePOIs(pois []model.POIInfo) []model.POIInfo {
	if len(pois) == 0 {
		return []model.POIInfo{}
	}
	out := make([]model.POIInfo, len(pois))
	copy(out, pois)
	return out
}

func cloneExplanations(explanations []model.Explanation) []model.Explanation {
	if len(explanations) == 0 {
		return []model.Explanation{}
	}
	out := make([]model.Explanation, len(explanations))
	copy(out, explanations)
	return out
}
