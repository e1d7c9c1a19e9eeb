package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"quiz-api-service/internal/app"
	"quiz-api-service/internal/auth"
	"quiz-api-service/internal/metrics"
)

// Deps groups what the router needs to serve the quiz API.
type Deps struct {
	Questions      *app.QuestionService
	Participations *app.ParticipationService
	Info           *app.InfoService
	Auth           *auth.Service
	Metrics        *metrics.Metrics
	Log            *zap.Logger
	CORSOrigins    []string
}

func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(d.Log))
	if d.Metrics != nil {
		r.Use(RequestMetrics(d.Metrics))
	}
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: d.CORSOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		}))
	}

	questions := NewQuestionHandler(d.Questions, d.Log)
	participations := NewParticipationHandler(d.Participations, d.Metrics, d.Log)
	info := NewInfoHandler(d.Info, d.Log)
	login := NewLoginHandler(d.Auth, d.Log)
	ws := NewWSHandler(d.Info, d.Metrics, d.Log)
	admin := JWTAuth(d.Auth)

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/quiz-info", info.Get)
	r.POST("/login", login.Login)
	r.GET("/ws/leaderboard", gin.WrapF(ws.ServeWS))
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	r.GET("/questions", questions.List)
	r.GET("/questions/:id", questions.Get)
	r.POST("/questions", admin, questions.Create)
	r.PUT("/questions/:id", admin, questions.Update)
	r.DELETE("/questions/all", admin, questions.DeleteAll)
	r.DELETE("/questions/position", admin, questions.DeleteByPosition)
	r.DELETE("/questions/:id", admin, questions.DeleteByID)

	r.POST("/participations", participations.Submit)
	r.DELETE("/participations/all", admin, participations.DeleteAll)

	return r
}
