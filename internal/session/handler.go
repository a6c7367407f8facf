package session

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"SAMS-backend/internal/platform/apperr"
	"SAMS-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// POST /sessions/start
	r.POST("/sessions/start", h.Start)
	// POST /sessions/end
	r.POST("/sessions/end", h.End)
	// GET /sessions/active
	r.GET("/sessions/active", h.Active)
	// POST /sessions/:session_id/refresh-code (QRトークンの回転)
	r.POST("/sessions/:session_id/refresh-code", h.RefreshCode)
	// GET /sessions/reports?date=YYYY-MM-DD
	r.GET("/sessions/reports", h.Reports)
}

func (h *Handler) Start(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Invalid("invalid json or missing required fields"))
		return
	}
	res, err := h.svc.Start(c.Request.Context(), c.GetString(auth.CtxUserIDKey), req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) End(c *gin.Context) {
	var req EndSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Invalid("invalid json or missing required fields"))
		return
	}
	res, err := h.svc.End(c.Request.Context(), c.GetString(auth.CtxUserIDKey), req.SessionID)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Active(c *gin.Context) {
	res, err := h.svc.Active(c.Request.Context(), c.GetString(auth.CtxUserIDKey))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) RefreshCode(c *gin.Context) {
	res, err := h.svc.RefreshCode(c.Request.Context(), c.GetString(auth.CtxUserIDKey), c.Param("session_id"))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Reports(c *gin.Context) {
	res, err := h.svc.Reports(c.Request.Context(), c.GetString(auth.CtxUserIDKey), c.Query("date"))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}
