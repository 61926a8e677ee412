package service

import (
	"context"
	"sync"

	"Spatialynk-App/internal/domain/model"
)

func ptr[T any](v T) *T {
	return &v
}

func locatedPOI(id, category string, lat, lng float64) model.POIInfo {
	return model.POIInfo{
		POIID: id,
		Name:  "POI " + id,
		Score: 0.9,
		Type:  "poi",
		Details: model.POIDetails{
			Category:  category,
			Latitude:  ptr(lat),
			Longitude: ptr(lng),
		},
	}
}

func unlocatedPOI(id string) model.POIInfo {
	return model.POIInfo{POIID: id, Name: "POI " + id, Type: "poi"}
}

func sampleResponse() *model.RecommendationResponse {
	return &model.RecommendationResponse{
		Success: true,
		UserID:  "user-1",
		Prompt:  "coffee near marina",
		Recommendations: model.LevelRecommendations{
			Level0: []model.POIInfo{
				locatedPOI("p1", "cafe", 1.2834, 103.8607),
				unlocatedPOI("p2"),
				locatedPOI("p3", "Japanese Restaurant", 1.3000, 103.8500),
			},
			Level1: []model.POIInfo{locatedPOI("v1", "mall", 1.3040, 103.8318)},
			Level2: []model.POIInfo{locatedPOI("d1", "", 1.2800, 103.8500)},
		},
		Explanations: model.LevelExplanations{
			Level0: []model.Explanation{
				{POIID: "p3", HumanExplanation: "Matches your love of ramen", TopFactors: []string{"cuisine"}},
			},
		},
	}
}

// fakeClient RecommendationClient のテスト用実装
type fakeClient struct {
	mu sync.Mutex

	explanation    *model.Explanation
	explanationErr error
	explainCalls   []model.ExplainRequest
	// beforeExplain GetExplanation の応答前に呼ばれる
	beforeExplain func()

	interactionErr   error
	interactionCalls []model.InteractionRequest
}

func (f *fakeClient) GetRecommendations(ctx context.Context, req *model.RecommendationRequest) (*model.RecommendationResponse, error) {
	return sampleResponse(), nil
}

func (f *fakeClient) GetExplanation(ctx context.Context, req *model.ExplainRequest) (*model.Explanation, error) {
	f.mu.Lock()
	f.explainCalls = append(f.explainCalls, *req)
	hook := f.beforeExplain
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if f.explanationErr != nil {
		return nil, f.explanationErr
	}
	exp := *f.explanation
	return &exp, nil
}

func (f *fakeClient) RecordInteraction(ctx context.Context, req *model.InteractionRequest) (*model.InteractionAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interactionCalls = append(f.interactionCalls, *req)
	if f.interactionErr != nil {
		return nil, f.interactionErr
	}
	return &model.InteractionAck{OK: true, UserID: req.UserID, POIID: req.POIID}, nil
}

func (f *fakeClient) RegisterUser(ctx context.Context, req *model.RegisterUserRequest) (*model.RegisterUserResponse, error) {
	return &model.RegisterUserResponse{Success: true, UserID: req.UserID}, nil
}

func (f *fakeClient) CheckHealth(ctx context.Context) (*model.HealthStatus, error) {
	return &model.HealthStatus{Status: "healthy"}, nil
}

func (f *fakeClient) GetReasonFlags(ctx context.Context, userID, poiID string, level model.Level) (*model.ReasonFlags, error) {
	return &model.ReasonFlags{UserID: userID, POIID: poiID}, nil
}

func (f *fakeClient) explainCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.explainCalls)
}

func (f *fakeClient) interactionCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.interactionCalls)
}
