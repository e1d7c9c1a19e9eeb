package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"quiz-api-service/internal/app"
	"quiz-api-service/internal/auth"
	"quiz-api-service/internal/domain"
)

type InfoHandler struct {
	service *app.InfoService
	log     *zap.Logger
}

func NewInfoHandler(service *app.InfoService, log *zap.Logger) *InfoHandler {
	return &InfoHandler{service: service, log: log}
}

func (h *InfoHandler) Get(c *gin.Context) {
	info, err := h.service.Info(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

type LoginHandler struct {
	auth *auth.Service
	log  *zap.Logger
}

func NewLoginHandler(authService *auth.Service, log *zap.Logger) *LoginHandler {
	return &LoginHandler{auth: authService, log: log}
}

func (h *LoginHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		writeError(c, h.log, domain.InvalidInput("password is required"))
		return
	}
	if h.auth == nil {
		writeError(c, h.log, domain.ErrUnauthorized)
		return
	}
	token, err := h.auth.Login(req.Password)
	if err != nil {
		h.log.Warn("admin login rejected", zap.String("ip", c.ClientIP()))
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{Token: token})
}
