package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"Spatialynk-App/internal/config"
	"Spatialynk-App/internal/domain/repository"
	"Spatialynk-App/internal/domain/service"
	"Spatialynk-App/internal/handler"
	"Spatialynk-App/internal/infrastructure/database"
	"Spatialynk-App/internal/infrastructure/firestore"
	"Spatialynk-App/internal/infrastructure/recommender"
	"Spatialynk-App/internal/logging"
	repoImpl "Spatialynk-App/internal/repository"
	"Spatialynk-App/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logging.Warn().Msg(".envファイルが見つからないため環境変数を使用します")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("設定の読み込みに失敗")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 推薦サービス
	client := recommender.NewClient(recommender.Options{
		BaseURL:             cfg.RecommenderBaseURL,
		Timeout:             cfg.RecommenderTimeout,
		IncludeExplanations: cfg.IncludeExplanations,
	})

	// Supabase（ユーザー・検索履歴）
	supabaseClient, err := database.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	if err != nil {
		logging.Fatal().Err(err).Msg("Supabaseクライアント初期化失敗")
	}
	if err := supabaseClient.HealthCheck(); err != nil {
		logging.Fatal().Err(err).Msg("Supabaseヘルスチェック失敗")
	}
	usersRepo := repoImpl.NewSupabaseUsersRepository(supabaseClient)
	historyRepo := repoImpl.NewSupabaseSearchHistoryRepository(supabaseClient)

	// PostgreSQL直接接続（管理者向け集計、任意）
	var analyticsRepo repository.AnalyticsRepository
	if cfg.AnalyticsEnabled() {
		pgClient, err := database.NewPostgreSQLClient(ctx, cfg.SupabaseURL, cfg.SupabaseDBPassword)
		if err != nil {
			logging.Warn().Err(err).Msg("PostgreSQLに接続できないため集計機能を無効化します")
		} else {
			defer pgClient.Close()
			analyticsRepo = repoImpl.NewPostgresAnalyticsRepository(pgClient)
		}
	}

	// Firestore（検索結果のスナップショット、任意）
	var snapshotRepo repository.SnapshotRepository
	if cfg.SnapshotsEnabled() {
		fsClient, err := firestore.NewFirestoreClient(ctx, cfg.FirestoreProjectID)
		if err != nil {
			logging.Warn().Err(err).Msg("Firestoreに接続できないためスナップショットを無効化します")
		} else {
			defer fsClient.Close()
			snapshotRepo = repoImpl.NewFirestoreSnapshotRepository(fsClient.GetClient(), cfg.SnapshotTTL)
		}
	}

	// セッション状態
	store := service.NewRecommendationStore()
	mapNav := service.NewMapNavigationController(store)
	reconciler := service.NewExplanationReconciler(client, store, service.ReconcilerOptions{
		ResetDedupOnNewSearch: cfg.DedupPolicy == config.DedupPerSearch,
	})

	roles := usecase.NewRoleResolver(usersRepo)
	recommendationUseCase := usecase.NewRecommendationUseCase(client, store, roles, historyRepo, snapshotRepo)
	analyticsUseCase := usecase.NewAnalyticsUseCase(analyticsRepo, roles)

	sessionHandler := handler.NewSessionHandler(store, mapNav, reconciler, recommendationUseCase, analyticsUseCase, roles)
	router := handler.SetupRouter(sessionHandler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("port", cfg.Port).Str("recommender", cfg.RecommenderBaseURL).Msg("Spatialynk-App server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("サーバーの起動に失敗")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("シャットダウン中...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("シャットダウンに失敗")
	}
}
