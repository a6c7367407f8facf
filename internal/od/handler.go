package od

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"SAMS-backend/internal/platform/apperr"
	"SAMS-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterStudentRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// POST /od/apply
	r.POST("/od/apply", h.Apply)
	// GET /od/my
	r.GET("/od/my", h.My)
}

// Advisor判定はservice側で行う（teacherロールの中の一部だけがAdvisor）
func RegisterAdvisorRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// GET /od/advisor
	r.GET("/od/advisor", h.AdvisorPending)
	// PUT /od/:od_id
	r.PUT("/od/:od_id", h.UpdateStatus)
}

func (h *Handler) Apply(c *gin.Context) {
	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Invalid("invalid json or missing required fields"))
		return
	}
	res, err := h.svc.Apply(c.Request.Context(), c.GetString(auth.CtxUserIDKey), req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) My(c *gin.Context) {
	res, err := h.svc.MyRequests(c.Request.Context(), c.GetString(auth.CtxUserIDKey))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) AdvisorPending(c *gin.Context) {
	res, err := h.svc.PendingForAdvisor(c.Request.Context(), c.GetString(auth.CtxUserIDKey))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("od_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apperr.Invalid("invalid od id"))
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Invalid("invalid json or missing required fields"))
		return
	}
	if err := h.svc.UpdateStatus(c.Request.Context(), c.GetString(auth.CtxUserIDKey), id, req); err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}
