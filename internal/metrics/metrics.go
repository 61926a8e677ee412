// Package metrics クライアントセッションのPrometheusメトリクス
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommenderRequests リモート推薦サービスへのリクエスト数
	RecommenderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_requests_total",
			Help: "Total number of requests sent to the recommendation service",
		},
		[]string{"operation", "outcome"}, // outcome: success, request_error, malformed, transport, rejected
	)

	// RecommenderRequestDuration リモート推薦サービスの応答時間
	RecommenderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommender_request_duration_seconds",
			Help:    "Duration of recommendation service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// CircuitBreakerState 0=closed, 1=half-open, 2=open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommender_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// StaleResponsesDiscarded 新しい検索に追い越されて破棄されたレスポンス数
	StaleResponsesDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_stale_responses_discarded_total",
			Help: "Total number of recommendation responses discarded because a newer search was issued",
		},
	)

	// InteractionsDeduplicated 重複として送信を省略した操作ログ数
	InteractionsDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interactions_deduplicated_total",
			Help: "Total number of interaction events skipped because the POI was already recorded",
		},
	)

	// ExplanationLookups 推薦理由の解決元
	ExplanationLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explanation_lookups_total",
			Help: "Total number of explanation lookups by resolution source",
		},
		[]string{"source"}, // embedded, array, fetched, none
	)

	// NonFatalErrors ユーザーに表示しない失敗
	NonFatalErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_non_fatal_errors_total",
			Help: "Total number of failures that were logged but not surfaced to the user",
		},
		[]string{"operation"},
	)
)
