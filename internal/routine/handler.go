package routine

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"SAMS-backend/internal/platform/apperr"
	"SAMS-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterTeacherRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// GET /routines/teacher (当日分)
	r.GET("/routines/teacher", h.TeacherToday)
	// GET /routines/teacher/timetable (週間)
	r.GET("/routines/teacher/timetable", h.TeacherTimetable)
}

func RegisterStudentRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// GET /routines/student (週間)
	r.GET("/routines/student", h.StudentTimetable)
}

func (h *Handler) TeacherToday(c *gin.Context) {
	slots, err := h.svc.TeacherToday(c.Request.Context(), c.GetString(auth.CtxUserIDKey), time.Now())
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, slots)
}

func (h *Handler) TeacherTimetable(c *gin.Context) {
	slots, err := h.svc.TeacherTimetable(c.Request.Context(), c.GetString(auth.CtxUserIDKey))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, slots)
}

func (h *Handler) StudentTimetable(c *gin.Context) {
	slots, err := h.svc.StudentTimetable(c.Request.Context(), c.GetString(auth.CtxUserIDKey))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, slots)
}
