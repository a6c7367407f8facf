package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

// RegisterRoutes: 認証系は他featureと違い認可ミドルウェアの外に置くものがある。
// verify だけは RequireAuth の内側で登録する
func RegisterRoutes(public gin.IRoutes, private gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	public.POST("/auth/login", h.Login)
	public.POST("/auth/register", h.Register)
	private.GET("/auth/verify", h.Verify)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	DeviceID string `json:"deviceId"`
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req.Email, req.Password, req.DeviceID)
	if err != nil {
		if errors.Is(err, ErrDeviceMismatch) {
			c.JSON(http.StatusForbidden, gin.H{"message": "device not recognized, please use your registered device"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid email or password"})
		return
	}
	c.JSON(http.StatusOK, res)
}

type RegisterRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Role       string `json:"role" binding:"required"`
	Department string `json:"department"`
	Section    string `json:"section"`
	RollNumber string `json:"rollNumber"`
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	res, err := h.svc.Register(c.Request.Context(), RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
		Section:    req.Section,
		RollNumber: req.RollNumber,
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"message": "user already exists"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Verify(c *gin.Context) {
	res, err := h.svc.Verify(c.Request.Context(), c.GetString(CtxUserIDKey))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "verify failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}
