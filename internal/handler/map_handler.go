package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetMap GET /session/map - カメラ・マーカー・レベル情報
func (h *SessionHandler) GetMap(c *gin.Context) {
	c.JSON(http.StatusOK, h.mapNav.View())
}

// NextPOI POST /session/map/next
func (h *SessionHandler) NextPOI(c *gin.Context) {
	if _, err := h.mapNav.Next(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.mapNav.View())
}

// PrevPOI POST /session/map/prev
func (h *SessionHandler) PrevPOI(c *gin.Context) {
	if _, err := h.mapNav.Prev(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.mapNav.View())
}

// FitAll POST /session/map/fit
func (h *SessionHandler) FitAll(c *gin.Context) {
	camera, err := h.mapNav.FitAll()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"camera": camera})
}

// Recenter POST /session/map/recenter
func (h *SessionHandler) Recenter(c *gin.Context) {
	camera, err := h.mapNav.RecenterOnUser()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"camera": camera})
}
