package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"Spatialynk-App/internal/domain/model"
	"Spatialynk-App/internal/domain/service"
	"Spatialynk-App/internal/usecase"
)

// UserIDHeader 認証済みユーザーID（users.auth_id）を渡すヘッダー
const UserIDHeader = "X-User-ID"

// SessionHandler 推薦セッションに関するHTTPハンドラー
type SessionHandler struct {
	store           *service.RecommendationStore
	mapNav          *service.MapNavigationController
	reconciler      *service.ExplanationReconciler
	recommendations usecase.RecommendationUseCase
	analytics       usecase.AnalyticsUseCase
	roles           *usecase.RoleResolver
}

// NewSessionHandler SessionHandlerの新しいインスタンスを作成
func NewSessionHandler(
	store *service.RecommendationStore,
	mapNav *service.MapNavigationController,
	reconciler *service.ExplanationReconciler,
	recommendations usecase.RecommendationUseCase,
	analytics usecase.AnalyticsUseCase,
	roles *usecase.RoleResolver,
) *SessionHandler {
	return &SessionHandler{
		store:           store,
		mapNav:          mapNav,
		reconciler:      reconciler,
		recommendations: recommendations,
		analytics:       analytics,
		roles:           roles,
	}
}

type searchRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"required,min=-180,max=180"`
}

type levelRequest struct {
	Level *int `json:"level" binding:"required"`
}

type interactionRequest struct {
	InteractionType string   `json:"interaction_type"`
	Value           *float64 `json:"value"`
}

// Health GET /health - 推薦サービスの状態も含めて返す
func (h *SessionHandler) Health(c *gin.Context) {
	resp := gin.H{"status": "healthy", "service": "Spatialynk-App"}
	remote, err := h.recommendations.Health(c.Request.Context())
	if err != nil {
		resp["status"] = "degraded"
		resp["recommender_error"] = err.Error()
	} else {
		resp["recommender"] = remote
	}
	c.JSON(http.StatusOK, resp)
}

// Role GET /session/role - 役割と表示タブ
func (h *SessionHandler) Role(c *gin.Context) {
	role, _ := h.roles.Resolve(c.Request.Context(), c.GetHeader(UserIDHeader))
	c.JSON(http.StatusOK, gin.H{
		"role":                 role.String(),
		"tabs":                 role.Tabs(),
		"can_generate_prompts": role.CanGeneratePrompts(),
		"can_view_analytics":   role.CanViewAnalytics(),
	})
}

// Search POST /session/search - 推薦検索
func (h *SessionHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON format: "+err.Error())
		return
	}

	result, err := h.recommendations.Search(c.Request.Context(), c.GetHeader(UserIDHeader), req.Prompt)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Restore POST /session/restore - 保存済みの直近の検索結果を復元
func (h *SessionHandler) Restore(c *gin.Context) {
	restored, err := h.recommendations.RestoreLatest(c.Request.Context(), c.GetHeader(UserIDHeader))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restored": restored, "state": h.store.Snapshot()})
}

// State GET /session/state
func (h *SessionHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// ClearRecommendations DELETE /session/recommendations
func (h *SessionHandler) ClearRecommendations(c *gin.Context) {
	h.store.ClearRecommendations()
	c.Status(http.StatusNoContent)
}

// SetLocation PUT /session/location
func (h *SessionHandler) SetLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid location: "+err.Error())
		return
	}
	loc := model.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	h.store.SetUserLocation(&loc)
	c.JSON(http.StatusOK, loc)
}

// ClearLocation DELETE /session/location
func (h *SessionHandler) ClearLocation(c *gin.Context) {
	h.store.SetUserLocation(nil)
	c.Status(http.StatusNoContent)
}

// SetLevel PUT /session/level
func (h *SessionHandler) SetLevel(c *gin.Context) {
	var req levelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON format: "+err.Error())
		return
	}
	if err := h.mapNav.SwitchLevel(model.Level(*req.Level)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.mapNav.View())
}

// GetExplanation GET /session/pois/:level/:poiId/explanation
func (h *SessionHandler) GetExplanation(c *gin.Context) {
	level, poi, ok := h.lookupPOI(c)
	if !ok {
		return
	}
	exp, source := h.reconciler.GetExplanationForPOI(level, poi)
	c.JSON(http.StatusOK, gin.H{"source": source, "explanation": exp})
}

// ToggleExpanded POST /session/pois/:level/:poiId/toggle
func (h *SessionHandler) ToggleExpanded(c *gin.Context) {
	level, poi, ok := h.lookupPOI(c)
	if !ok {
		return
	}
	result := h.reconciler.ToggleExpanded(c.Request.Context(), c.GetHeader(UserIDHeader), level, poi)
	c.JSON(http.StatusOK, result)
}

// RecordInteraction POST /session/pois/:level/:poiId/interactions
// 同じPOIへの2回目以降は送信せず sent=false を返す
func (h *SessionHandler) RecordInteraction(c *gin.Context) {
	_, poi, ok := h.lookupPOI(c)
	if !ok {
		return
	}

	var req interactionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid JSON format: "+err.Error())
			return
		}
	}
	interactionType := model.InteractionView
	if req.InteractionType != "" {
		parsed, err := model.ParseInteractionType(req.InteractionType)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		interactionType = parsed
	}
	value := 1.0
	if req.Value != nil {
		value = *req.Value
	}

	sent := h.reconciler.RecordInteractionOnce(c.Request.Context(), c.GetHeader(UserIDHeader), poi.POIID, interactionType, value)
	c.JSON(http.StatusAccepted, gin.H{"sent": sent, "poi_id": poi.POIID})
}

// ReasonFlags GET /session/flags/:level/:poiId
func (h *SessionHandler) ReasonFlags(c *gin.Context) {
	level, err := model.ParseLevel(c.Param("level"))
	if err != nil {
		writeError(c, err)
		return
	}
	flags, err := h.recommendations.ReasonFlags(c.Request.Context(), c.GetHeader(UserIDHeader), c.Param("poiId"), level)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flags)
}

// History GET /session/history?limit=N
func (h *SessionHandler) History(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}
	histories, err := h.recommendations.RecentHistory(c.Request.Context(), c.GetHeader(UserIDHeader), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": histories})
}

// Analytics GET /analytics - 管理者向け集計
func (h *SessionHandler) Analytics(c *gin.Context) {
	stats, err := h.analytics.GetPlatformAnalytics(c.Request.Context(), c.GetHeader(UserIDHeader))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// lookupPOI パスパラメータのレベルとPOIを現在の推薦結果から探す
func (h *SessionHandler) lookupPOI(c *gin.Context) (model.Level, *model.POIInfo, bool) {
	level, err := model.ParseLevel(c.Param("level"))
	if err != nil {
		writeError(c, err)
		return 0, nil, false
	}
	poi, ok := h.store.FindPOI(level, c.Param("poiId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "POI not found in current recommendations: " + c.Param("poiId"),
		})
		return 0, nil, false
	}
	return level, poi, true
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid_request",
		"message": message,
	})
}
