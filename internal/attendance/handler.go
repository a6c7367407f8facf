package attendance

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"SAMS-backend/internal/platform/apperr"
	"SAMS-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterStudentRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// POST /attendance/verify-wifi
	r.POST("/attendance/verify-wifi", h.VerifyWifi)
	// POST /attendance/mark
	r.POST("/attendance/mark", h.Mark)
}

func RegisterTeacherRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// GET /attendance/session/:session_id (ライブ名簿・アーカイブ共用)
	r.GET("/attendance/session/:session_id", h.LiveRoster)
}

func (h *Handler) VerifyWifi(c *gin.Context) {
	var req VerifyWifiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Invalid("invalid json or missing required fields"))
		return
	}
	res, err := h.svc.VerifyWifi(c.Request.Context(), c.GetString(auth.CtxUserIDKey), req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Mark(c *gin.Context) {
	var req MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Invalid("invalid json or missing required fields"))
		return
	}
	res, err := h.svc.Mark(c.Request.Context(), c.GetString(auth.CtxUserIDKey), req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) LiveRoster(c *gin.Context) {
	res, err := h.svc.LiveRoster(c.Request.Context(), c.GetString(auth.CtxUserIDKey), c.Param("session_id"))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}
