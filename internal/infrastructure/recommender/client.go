// Package recommender リモート推薦サービスのHTTPクライアント
package recommender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"Spatialynk-App/internal/domain/model"
	"Spatialynk-App/internal/logging"
	"Spatialynk-App/internal/metrics"
)

const (
	opHealth          = "check health"
	opRegisterUser    = "register user"
	opRecommendations = "fetch recommendations"
	opExplanation     = "fetch explanation"
	opInteraction     = "record interaction"
	opReasonFlags     = "fetch reason flags"
)

// Options クライアントの設定
type Options struct {
	BaseURL string
	Timeout time.Duration
	// IncludeExplanations リクエストで未指定の場合の includeExplanations
	IncludeExplanations bool
	// BreakerName サーキットブレーカー名（メトリクスのラベル）
	BreakerName string
	// ConsecutiveFailuresToTrip 連続失敗がこの回数に達したら遮断する
	ConsecutiveFailuresToTrip uint32
	// OpenTimeout 遮断してから半開状態に移るまでの時間
	OpenTimeout time.Duration
}

// Client 推薦サービスとの通信を担当するクライアント
type Client struct {
	baseURL             string
	httpClient          *http.Client
	includeExplanations bool
	breakerName         string
	cb                  *gobreaker.CircuitBreaker[[]byte]
	validate            *validator.Validate
}

// NewClient 新しいClientインスタンスを作成
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.BreakerName == "" {
		opts.BreakerName = "recommender-api"
	}
	if opts.ConsecutiveFailuresToTrip == 0 {
		opts.ConsecutiveFailuresToTrip = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(opts.BreakerName).Set(0)

	threshold := opts.ConsecutiveFailuresToTrip
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        opts.BreakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// 4xx と呼び出し元のキャンセルは失敗として数えない
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var reqErr *model.RequestError
			if errors.As(err, &reqErr) {
				return reqErr.StatusCode >= 400 && reqErr.StatusCode < 500
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("サーキットブレーカーの状態が変化")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &Client{
		baseURL:             strings.TrimRight(opts.BaseURL, "/"),
		httpClient:          &http.Client{Timeout: opts.Timeout},
		includeExplanations: opts.IncludeExplanations,
		breakerName:         opts.BreakerName,
		cb:                  cb,
		validate:            validator.New(),
	}
}

// recommendResponse POST /recommend のレスポンス（必須フィールド検証用）
type recommendResponse struct {
	Success         bool                        `json:"success"`
	UserID          string                      `json:"userId"`
	Prompt          string                      `json:"prompt"`
	Recommendations *model.LevelRecommendations `json:"recommendations" validate:"required"`
	Explanations    *model.LevelExplanations    `json:"explanations"`
}

// CheckHealth GET /health
func (c *Client) CheckHealth(ctx context.Context) (*model.HealthStatus, error) {
	body, err := c.do(ctx, opHealth, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	var health model.HealthStatus
	if err := c.decode(opHealth, body, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// RegisterUser POST /add_user
func (c *Client) RegisterUser(ctx context.Context, req *model.RegisterUserRequest) (*model.RegisterUserResponse, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("user_idが指定されていません")
	}
	body, err := c.do(ctx, opRegisterUser, http.MethodPost, "/add_user", req)
	if err != nil {
		return nil, err
	}
	var resp model.RegisterUserResponse
	if err := c.decode(opRegisterUser, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRecommendations POST /recommend
func (c *Client) GetRecommendations(ctx context.Context, req *model.RecommendationRequest) (*model.RecommendationResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("promptが空です")
	}
	if req.CurrentLocation != nil {
		if err := req.CurrentLocation.Validate(); err != nil {
			return nil, err
		}
	}
	payload := *req
	if payload.IncludeExplanations == nil {
		include := c.includeExplanations
		payload.IncludeExplanations = &include
	}

	body, err := c.do(ctx, opRecommendations, http.MethodPost, "/recommend", &payload)
	if err != nil {
		return nil, err
	}

	var wire recommendResponse
	if err := c.decode(opRecommendations, body, &wire); err != nil {
		return nil, err
	}
	resp := &model.RecommendationResponse{
		Success:         wire.Success,
		UserID:          wire.UserID,
		Prompt:          wire.Prompt,
		Recommendations: *wire.Recommendations,
	}
	if wire.Explanations != nil {
		resp.Explanations = *wire.Explanations
	}
	if err := checkExplanationIDs(resp.Explanations); err != nil {
		metrics.RecommenderRequests.WithLabelValues(opRecommendations, "malformed").Inc()
		return nil, &model.MalformedResponseError{Operation: opRecommendations, Err: err}
	}

	logging.Debug().
		Str("user_id", req.UserID).
		Int("level_0", len(resp.Recommendations.Level0)).
		Int("level_1", len(resp.Recommendations.Level1)).
		Int("level_2", len(resp.Recommendations.Level2)).
		Int("level_3", len(resp.Recommendations.Level3)).
		Msg("推薦結果を受信")
	return resp, nil
}

// GetExplanation POST /explain
// レスポンスの poi_id が空の場合はリクエストの poi_id を補う
func (c *Client) GetExplanation(ctx context.Context, req *model.ExplainRequest) (*model.Explanation, error) {
	if !req.Level.Valid() {
		return nil, fmt.Errorf("%w: %d", model.ErrInvalidLevel, int(req.Level))
	}
	body, err := c.do(ctx, opExplanation, http.MethodPost, "/explain", req)
	if err != nil {
		return nil, err
	}
	var exp model.Explanation
	if err := c.decode(opExplanation, body, &exp); err != nil {
		return nil, err
	}
	if exp.POIID == "" {
		exp.POIID = req.POIID
	}
	if exp.POIID != req.POIID {
		metrics.RecommenderRequests.WithLabelValues(opExplanation, "malformed").Inc()
		return nil, &model.MalformedResponseError{
			Operation: opExplanation,
			Err:       fmt.Errorf("poi_idが一致しません: requested=%s, got=%s", req.POIID, exp.POIID),
		}
	}
	return &exp, nil
}

// RecordInteraction POST /interaction
func (c *Client) RecordInteraction(ctx context.Context, req *model.InteractionRequest) (*model.InteractionAck, error) {
	if !req.InteractionType.Valid() {
		return nil, fmt.Errorf("interaction_typeが不正です: %q", req.InteractionType)
	}
	body, err := c.do(ctx, opInteraction, http.MethodPost, "/interaction", req)
	if err != nil {
		return nil, err
	}
	var ack model.InteractionAck
	if err := c.decode(opInteraction, body, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// GetReasonFlags GET /explain/flags/{userId}/{poiId}?level=N
func (c *Client) GetReasonFlags(ctx context.Context, userID, poiID string, level model.Level) (*model.ReasonFlags, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("%w: %d", model.ErrInvalidLevel, int(level))
	}
	path := fmt.Sprintf("/explain/flags/%s/%s?level=%s", url.PathEscape(userID), url.PathEscape(poiID), strconv.Itoa(int(level)))
	body, err := c.do(ctx, opReasonFlags, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var flags model.ReasonFlags
	if err := c.decode(opReasonFlags, body, &flags); err != nil {
		return nil, err
	}
	return &flags, nil
}

// do サーキットブレーカー越しにリクエストを送信し、2xxのボディを返す
func (c *Client) do(ctx context.Context, operation, method, path string, payload any) ([]byte, error) {
	start := time.Now()
	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.send(ctx, operation, method, path, payload)
	})
	metrics.RecommenderRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err != nil {
		var reqErr *model.RequestError
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.RecommenderRequests.WithLabelValues(operation, "rejected").Inc()
			return nil, fmt.Errorf("%s: %w", operation, model.ErrCircuitOpen)
		case errors.As(err, &reqErr):
			metrics.RecommenderRequests.WithLabelValues(operation, "request_error").Inc()
		default:
			metrics.RecommenderRequests.WithLabelValues(operation, "transport").Inc()
		}
		return nil, err
	}
	return body, nil
}

func (c *Client) send(ctx context.Context, operation, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("リクエストのシリアライズに失敗: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%sのリクエストに失敗: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスの読み取りに失敗: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &model.RequestError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Message:    serverMessage(body),
		}
	}
	return body, nil
}

// decode JSONをデコードしてスキーマ検証する。失敗は MalformedResponseError
func (c *Client) decode(operation string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		metrics.RecommenderRequests.WithLabelValues(operation, "malformed").Inc()
		return &model.MalformedResponseError{Operation: operation, Err: err}
	}
	if err := c.validate.Struct(out); err != nil {
		metrics.RecommenderRequests.WithLabelValues(operation, "malformed").Inc()
		return &model.MalformedResponseError{Operation: operation, Err: err}
	}
	metrics.RecommenderRequests.WithLabelValues(operation, "success").Inc()
	return nil
}

// checkExplanationIDs 推薦理由配列の各要素は poi_id で突き合わせるため空を許さない
func checkExplanationIDs(explanations model.LevelExplanations) error {
	for _, level := range model.AllLevels() {
		for i, exp := range explanations.ByLevel(level) {
			if exp.POIID == "" {
				return fmt.Errorf("explanations.level_%d[%d]にpoi_idがありません", int(level), i)
			}
		}
	}
	return nil
}

// serverMessage エラーレスポンスから error / message / detail のいずれかを取り出す
func serverMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"error", "message", "detail"} {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return -1
}
