package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"quiz-api-service/internal/app"
	"quiz-api-service/internal/domain"
)

type QuestionHandler struct {
	service *app.QuestionService
	log     *zap.Logger
}

func NewQuestionHandler(service *app.QuestionService, log *zap.Logger) *QuestionHandler {
	return &QuestionHandler{service: service, log: log}
}

// List returns every question by position, or only the one at ?position=n.
func (h *QuestionHandler) List(c *gin.Context) {
	if raw, ok := c.GetQuery("position"); ok {
		position, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, h.log, domain.InvalidInput("position must be an integer"))
			return
		}
		q, found, err := h.service.GetByPosition(c.Request.Context(), position)
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		if !found {
			notFound(c, "question")
			return
		}
		c.JSON(http.StatusOK, toQuestionDTO(q))
		return
	}

	questions, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	out := make([]questionDTO, 0, len(questions))
	for _, q := range questions {
		out = append(out, toQuestionDTO(q))
	}
	c.JSON(http.StatusOK, out)
}

func (h *QuestionHandler) Get(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	q, found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if !found {
		notFound(c, "question")
		return
	}
	c.JSON(http.StatusOK, toQuestionDTO(q))
}

func (h *QuestionHandler) Create(c *gin.Context) {
	q, ok := h.bindQuestion(c)
	if !ok {
		return
	}
	id, err := h.service.Create(c.Request.Context(), q)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, messageResponse{Message: "Question created", ID: id})
}

func (h *QuestionHandler) Update(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	q, ok := h.bindQuestion(c)
	if !ok {
		return
	}
	found, err := h.service.Update(c.Request.Context(), id, q)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if !found {
		notFound(c, "question")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuestionHandler) DeleteByID(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	found, err := h.service.DeleteByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if !found {
		notFound(c, "question")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuestionHandler) DeleteByPosition(c *gin.Context) {
	position, err := strconv.Atoi(c.Query("position"))
	if err != nil {
		writeError(c, h.log, domain.InvalidInput("position must be an integer"))
		return
	}
	found, err := h.service.DeleteByPosition(c.Request.Context(), position)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if !found {
		notFound(c, "question")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuestionHandler) DeleteAll(c *gin.Context) {
	if err := h.service.DeleteAll(c.Request.Context()); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuestionHandler) idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, h.log, domain.InvalidInput("question id must be an integer"))
		return 0, false
	}
	return id, true
}

func (h *QuestionHandler) bindQuestion(c *gin.Context) (domain.Question, bool) {
	var req questionDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, domain.InvalidInput("malformed question body"))
		return domain.Question{}, false
	}
	q, err := req.toDomain()
	if err != nil {
		writeError(c, h.log, err)
		return domain.Question{}, false
	}
	return q, true
}
