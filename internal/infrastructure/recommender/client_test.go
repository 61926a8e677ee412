package recommender

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Spatialynk-App/internal/domain/model"
)

const recommendBody = `{
  "success": true,
  "userId": "user-1",
  "prompt": "quiet cafe",
  "recommendations": {
    "level_0": [
      {"poi_id": "a", "name": "Cafe A", "score": 0.91, "price": "$$", "type": "poi",
       "details": {"category": "cafe", "popularity": "4.5", "latitude": 1.30, "longitude": 103.85}},
      {"poi_id": "b", "name": "Cafe B", "score": 0.88, "price": "$", "type": "poi",
       "details": {"category": "cafe", "popularity": 87}}
    ],
    "level_1": [
      {"poi_id": "v1", "name": "Mall", "score": 0.7, "type": "venue", "details": {"num_pois": 12}}
    ],
    "level_2": []
  },
  "explanations": {
    "level_0": [
      {"poi_id": "a", "poi_name": "Cafe A", "human_explanation": "Quiet and close", "top_factors": ["distance"], "score": 0.91, "confidence_indicator": "strong"}
    ]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Options{
		BaseURL:                   server.URL,
		Timeout:                   5 * time.Second,
		IncludeExplanations:       true,
		BreakerName:               t.Name(),
		ConsecutiveFailuresToTrip: 2,
		OpenTimeout:               time.Minute,
	})
}

func TestGetRecommendations_成功(t *testing.T) {
	var received map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/recommend", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(recommendBody))
	})

	resp, err := client.GetRecommendations(context.Background(), &model.RecommendationRequest{
		UserID:          "user-1",
		Prompt:          "quiet cafe",
		CurrentLocation: &model.Location{Latitude: 1.3521, Longitude: 103.8198},
	})
	require.NoError(t, err)

	assert.Equal(t, "user-1", received["userId"])
	assert.Equal(t, "quiet cafe", received["prompt"])
	assert.Equal(t, true, received["includeExplanations"])
	assert.NotNil(t, received["currentLocation"])

	require.Len(t, resp.Recommendations.Level0, 2)
	assert.Equal(t, "a", resp.Recommendations.Level0[0].POIID)
	assert.Equal(t, model.Popularity("4.5"), resp.Recommendations.Level0[0].Details.Popularity)
	assert.Equal(t, model.Popularity("87"), resp.Recommendations.Level0[1].Details.Popularity)
	assert.True(t, resp.Recommendations.Level0[0].HasCoordinates())
	assert.False(t, resp.Recommendations.Level0[1].HasCoordinates())
	assert.Empty(t, resp.Recommendations.Level3)
	require.Len(t, resp.Explanations.Level0, 1)
	assert.Equal(t, model.ConfidenceStrong, resp.Explanations.Level0[0].ConfidenceIndicator)
}

func TestGetRecommendations_不正なレスポンス(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"JSONでない", `<html>oops</html>`},
		{"recommendations欠落", `{"success": true}`},
		{"poi_id欠落", `{"recommendations": {"level_0": [{"name": "x"}]}}`},
		{"緯度が範囲外", `{"recommendations": {"level_0": [{"poi_id": "x", "details": {"latitude": 123, "longitude": 1}}]}}`},
		{"confidence不正", `{"recommendations": {"level_0": []}, "explanations": {"level_0": [{"poi_id": "x", "confidence_indicator": "maybe"}]}}`},
		{"推薦理由のpoi_id欠落", `{"recommendations": {"level_0": []}, "explanations": {"level_1": [{"human_explanation": "x"}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.GetRecommendations(context.Background(), &model.RecommendationRequest{UserID: "u", Prompt: "p"})

			var malformed *model.MalformedResponseError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, opRecommendations, malformed.Operation)
		})
	}
}

func TestGetRecommendations_サーバーエラー(t *testing.T) {
	t.Run("メッセージあり", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail": "prompt too long"}`))
		})

		_, err := client.GetRecommendations(context.Background(), &model.RecommendationRequest{UserID: "u", Prompt: "p"})

		var reqErr *model.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusUnprocessableEntity, reqErr.StatusCode)
		assert.Equal(t, "prompt too long", reqErr.Error())
	})

	t.Run("メッセージなし", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.GetRecommendations(context.Background(), &model.RecommendationRequest{UserID: "u", Prompt: "p"})

		var reqErr *model.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, "Failed to fetch recommendations with status: 502", reqErr.Error())
	})
}

func TestGetRecommendations_入力チェック(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := client.GetRecommendations(context.Background(), &model.RecommendationRequest{UserID: "u", Prompt: "   "})
	assert.Error(t, err)
	_, err = client.GetRecommendations(context.Background(), &model.RecommendationRequest{
		UserID: "u", Prompt: "p", CurrentLocation: &model.Location{Latitude: 91},
	})
	assert.Error(t, err)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestCircuitBreaker(t *testing.T) {
	t.Run("5xxが続くと遮断する", func(t *testing.T) {
		var calls int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		ctx := context.Background()

		for i := 0; i < 2; i++ {
			_, err := client.CheckHealth(ctx)
			var reqErr *model.RequestError
			require.ErrorAs(t, err, &reqErr)
		}

		_, err := client.CheckHealth(ctx)
		assert.ErrorIs(t, err, model.ErrCircuitOpen)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("4xxでは遮断しない", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": "explanation not found"}`))
		})
		ctx := context.Background()
		req := &model.ExplainRequest{UserID: "u", POIID: "a", Level: model.LevelPlace}

		for i := 0; i < 5; i++ {
			_, err := client.GetExplanation(ctx, req)
			var reqErr *model.RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, "explanation not found", reqErr.Message)
		}
	})

	t.Run("呼び出し元のキャンセルでは遮断しない", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status": "healthy"}`))
		})
		canceled, cancel := context.WithCancel(context.Background())
		cancel()

		for i := 0; i < 3; i++ {
			_, err := client.CheckHealth(canceled)
			require.ErrorIs(t, err, context.Canceled)
		}

		health, err := client.CheckHealth(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "healthy", health.Status)
	})
}

func TestGetExplanation(t *testing.T) {
	var received model.ExplainRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/explain", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		_, _ = w.Write([]byte(`{"human_explanation": "Popular with locals", "top_factors": ["popularity"], "confidence_indicator": "good"}`))
	})

	exp, err := client.GetExplanation(context.Background(), &model.ExplainRequest{
		UserID:          "user-1",
		POIID:           "v1",
		Level:           model.LevelVenue,
		CurrentLocation: &model.DefaultLocation,
	})
	require.NoError(t, err)

	assert.Equal(t, model.LevelVenue, received.Level)
	assert.Equal(t, "v1", received.POIID)
	require.NotNil(t, received.CurrentLocation)
	assert.Equal(t, "v1", exp.POIID)
	assert.Equal(t, "Popular with locals", exp.HumanExplanation)

	_, err = client.GetExplanation(context.Background(), &model.ExplainRequest{UserID: "u", POIID: "a", Level: model.Level(5)})
	assert.ErrorIs(t, err, model.ErrInvalidLevel)
}

func TestGetExplanation_別POIの理由は不正(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"poi_id": "other", "human_explanation": "x"}`))
	})

	_, err := client.GetExplanation(context.Background(), &model.ExplainRequest{UserID: "u", POIID: "a"})

	var malformed *model.MalformedResponseError
	assert.ErrorAs(t, err, &malformed)
}

func TestRecordInteraction(t *testing.T) {
	var received map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/interaction", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		_, _ = w.Write([]byte(`{"ok": true, "user_id": "user-1", "poi_id": "a"}`))
	})
	value := 1.0

	ack, err := client.RecordInteraction(context.Background(), &model.InteractionRequest{
		UserID:          "user-1",
		POIID:           "a",
		InteractionType: model.InteractionClick,
		Value:           &value,
	})
	require.NoError(t, err)
	assert.True(t, ack.OK)
	assert.Equal(t, "click", received["interaction_type"])
	assert.Equal(t, 1.0, received["value"])

	_, err = client.RecordInteraction(context.Background(), &model.InteractionRequest{UserID: "u", POIID: "a", InteractionType: "like"})
	assert.Error(t, err)
}

func TestGetReasonFlags(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/explain/flags/user 1/poi-9", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("level"))
		_, _ = w.Write([]byte(`{"user_id": "user 1", "poi_id": "poi-9", "flags": {"near_you": true, "budget_match": false}, "active_flags": ["near_you"]}`))
	})

	flags, err := client.GetReasonFlags(context.Background(), "user 1", "poi-9", model.LevelDistrict)
	require.NoError(t, err)
	assert.True(t, flags.Flags["near_you"])
	assert.Equal(t, []string{"near_you"}, flags.ActiveFlags)
}

func TestCheckHealthとRegisterUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			_, _ = w.Write([]byte(`{"status": "healthy", "framework_loaded": true, "total_users": 10, "total_pois_level_0": 500}`))
		case "/add_user":
			_, _ = w.Write([]byte(`{"success": true, "user_id": "user-1", "idx": 3, "message": "added"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	health, err := client.CheckHealth(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 500, health.TotalPOIsLevel0)

	reg, err := client.RegisterUser(ctx, &model.RegisterUserRequest{UserID: "user-1", Interests: []string{"cafe"}})
	require.NoError(t, err)
	assert.Equal(t, 3, reg.Idx)

	_, err = client.RegisterUser(ctx, &model.RegisterUserRequest{})
	assert.Error(t, err)
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()
	client := NewClient(Options{BaseURL: server.URL, BreakerName: t.Name()})

	_, err := client.CheckHealth(context.Background())

	require.Error(t, err)
	var reqErr *model.RequestError
	assert.False(t, errors.As(err, &reqErr))
}
