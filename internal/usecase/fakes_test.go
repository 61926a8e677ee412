package usecase

import (
	"context"
	"errors"
	"sync"

	"Spatialynk-App/internal/domain/model"
)

func ptr[T any](v T) *T {
	return &v
}

func responseFor(prompt string, ids ...string) *model.RecommendationResponse {
	resp := &model.RecommendationResponse{Success: true, Prompt: prompt}
	for i, id := range ids {
		resp.Recommendations.Level0 = append(resp.Recommendations.Level0, model.POIInfo{
			POIID: id,
			Name:  "POI " + id,
			Details: model.POIDetails{
				Latitude:  ptr(1.30 + float64(i)*0.01),
				Longitude: ptr(103.85),
			},
		})
	}
	return resp
}

type fakeClient struct {
	mu sync.Mutex

	// responses プロンプトごとのレスポンス
	responses map[string]*model.RecommendationResponse
	// gates プロンプトごとに応答を待たせるチャネル
	gates  map[string]chan struct{}
	err    error
	regErr error

	recommendCalls []model.RecommendationRequest
	registerCalls  []model.RegisterUserRequest
}

func (f *fakeClient) GetRecommendations(ctx context.Context, req *model.RecommendationRequest) (*model.RecommendationResponse, error) {
	f.mu.Lock()
	f.recommendCalls = append(f.recommendCalls, *req)
	gate := f.gates[req.Prompt]
	resp := f.responses[req.Prompt]
	err := f.err
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("unexpected prompt")
	}
	copied := *resp
	return &copied, nil
}

func (f *fakeClient) GetExplanation(ctx context.Context, req *model.ExplainRequest) (*model.Explanation, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClient) RecordInteraction(ctx context.Context, req *model.InteractionRequest) (*model.InteractionAck, error) {
	return &model.InteractionAck{OK: true}, nil
}

func (f *fakeClient) RegisterUser(ctx context.Context, req *model.RegisterUserRequest) (*model.RegisterUserResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registerCalls = append(f.registerCalls, *req)
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &model.RegisterUserResponse{Success: true, UserID: req.UserID}, nil
}

func (f *fakeClient) CheckHealth(ctx context.Context) (*model.HealthStatus, error) {
	return &model.HealthStatus{Status: "healthy"}, nil
}

func (f *fakeClient) GetReasonFlags(ctx context.Context, userID, poiID string, level model.Level) (*model.ReasonFlags, error) {
	return &model.ReasonFlags{UserID: userID, POIID: poiID, Flags: map[string]bool{"near_you": true}, ActiveFlags: []string{"near_you"}}, nil
}

type fakeUsers struct {
	profiles map[string]*model.UserProfile
	err      error
}

func (f *fakeUsers) GetByUserID(ctx context.Context, userID string) (*model.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profiles[userID], nil
}

type fakeHistory struct {
	mu      sync.Mutex
	created []model.SearchHistory
	err     error
}

func (f *fakeHistory) Create(ctx context.Context, history *model.SearchHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *history)
	return nil
}

func (f *fakeHistory) GetRecentByUserID(ctx context.Context, userID string, limit int) ([]model.SearchHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.SearchHistory
	for i := len(f.created) - 1; i >= 0 && len(out) < limit; i-- {
		if f.created[i].UserID == userID {
			out = append(out, f.created[i])
		}
	}
	return out, nil
}

type fakeSnapshots struct {
	mu     sync.Mutex
	saved  []model.RecommendationSnapshot
	latest *model.RecommendationSnapshot
	err    error
}

func (f *fakeSnapshots) Save(ctx context.Context, snapshot *model.RecommendationSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, *snapshot)
	return nil
}

func (f *fakeSnapshots) GetLatestByUserID(ctx context.Context, userID string) (*model.RecommendationSnapshot, error) {
	return f.latest, f.err
}

type fakeAnalytics struct {
	users   int
	pois    int
	queries []string
	popular []model.PopularPOI
}

func (f *fakeAnalytics) CountUsers(ctx context.Context) (int, error) { return f.users, nil }

func (f *fakeAnalytics) CountPOIsByStatus(ctx context.Context, status model.POIStatus) (int, error) {
	return f.pois, nil
}

func (f *fakeAnalytics) GetRecentSearchQueries(ctx context.Context, limit int) ([]string, error) {
	return f.queries, nil
}

func (f *fakeAnalytics) GetPopularPOIs(ctx context.Context, limit int) ([]model.PopularPOI, error) {
	return f.popular, nil
}

func profiles() *fakeUsers {
	return &fakeUsers{profiles: map[string]*model.UserProfile{
		"free":     {AuthID: "free", Role: "free_user", IsActive: true, Interests: []string{"cafe"}},
		"business": {AuthID: "business", Role: "business", IsActive: true},
		"admin":    {AuthID: "admin", Role: "admin", IsActive: true},
		"inactive": {AuthID: "inactive", Role: "free_user", IsActive: false},
	}}
}
