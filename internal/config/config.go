package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DedupPolicy 操作ログ重複排除のリセット方針
type DedupPolicy string

const (
	// DedupPerSearch 新しい検索のたびに記録済みPOIをリセット
	DedupPerSearch DedupPolicy = "per_search"
	// DedupPerSession セッション中は1POIにつき1回のみ送信
	DedupPerSession DedupPolicy = "per_session"
)

const defaultRecommenderBaseURL = "https://destroyedbybrian-spatialynk-2-0.hf.space"

// Config アプリケーション設定
type Config struct {
	Port string

	RecommenderBaseURL  string
	RecommenderTimeout  time.Duration
	IncludeExplanations bool
	DedupPolicy         DedupPolicy

	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseDBPassword string

	FirestoreProjectID string
	SnapshotTTL        time.Duration

	LogLevel  string
	LogFormat string
}

// AnalyticsEnabled Postgres直接接続による集計が使えるか
func (c *Config) AnalyticsEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseDBPassword != ""
}

// SnapshotsEnabled Firestoreへのスナップショット保存が使えるか
func (c *Config) SnapshotsEnabled() bool {
	return c.FirestoreProjectID != ""
}

// Load 環境変数から設定を読み込む
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		RecommenderBaseURL: strings.TrimRight(getEnv("RECOMMENDER_BASE_URL", defaultRecommenderBaseURL), "/"),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:    os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseDBPassword: os.Getenv("SUPABASE_DB_PASSWORD"),
		FirestoreProjectID: os.Getenv("FIRESTORE_PROJECT_ID"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		DedupPolicy:        DedupPolicy(getEnv("INTERACTION_DEDUP_POLICY", string(DedupPerSearch))),
	}

	timeoutSeconds, err := getEnvInt("RECOMMENDER_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	cfg.RecommenderTimeout = time.Duration(timeoutSeconds) * time.Second

	ttlHours, err := getEnvInt("SNAPSHOT_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}
	cfg.SnapshotTTL = time.Duration(ttlHours) * time.Hour

	includeExplanations, err := strconv.ParseBool(getEnv("INCLUDE_EXPLANATIONS", "true"))
	if err != nil {
		return nil, fmt.Errorf("INCLUDE_EXPLANATIONSの値が不正です: %w", err)
	}
	cfg.IncludeExplanations = includeExplanations

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 設定値の整合性チェック
func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL環境変数が設定されていません")
	}
	if c.SupabaseAnonKey == "" {
		return fmt.Errorf("SUPABASE_ANON_KEY環境変数が設定されていません")
	}
	if !strings.HasPrefix(c.RecommenderBaseURL, "http://") && !strings.HasPrefix(c.RecommenderBaseURL, "https://") {
		return fmt.Errorf("RECOMMENDER_BASE_URLはhttp(s)のURLである必要があります: %s", c.RecommenderBaseURL)
	}
	if c.RecommenderTimeout <= 0 {
		return fmt.Errorf("RECOMMENDER_TIMEOUT_SECONDSは正の整数で指定してください")
	}
	if c.SnapshotTTL <= 0 {
		return fmt.Errorf("SNAPSHOT_TTL_HOURSは正の整数で指定してください")
	}
	switch c.DedupPolicy {
	case DedupPerSearch, DedupPerSession:
	default:
		return fmt.Errorf("INTERACTION_DEDUP_POLICYは'per_search'または'per_session'を指定してください: %s", c.DedupPolicy)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%sの値が不正です: %w", key, err)
	}
	return n, nil
}
