package http

import (
	"quiz-api-service/internal/domain"
	"quiz-api-service/internal/media"
)

type answerDTO struct {
	Text      string   `json:"text"`
	IsCorrect bool     `json:"isCorrect"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type questionDTO struct {
	ID              int64       `json:"id"`
	Title           string      `json:"title"`
	Position        int         `json:"position"`
	Text            string      `json:"text"`
	Image           string      `json:"image"`
	PossibleAnswers []answerDTO `json:"possibleAnswers"`
}

// participationRequest requires both keys; an empty name or answer list is
// still accepted.
type participationRequest struct {
	PlayerName *string `json:"playerName" binding:"required"`
	Answers    []int   `json:"answers" binding:"required"`
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func toQuestionDTO(q domain.Question) questionDTO {
	answers := make([]answerDTO, 0, len(q.Answers))
	for _, a := range q.Answers {
		answers = append(answers, answerDTO(a))
	}
	return questionDTO{
		ID:              q.ID,
		Title:           q.Title,
		Position:        q.Position,
		Text:            q.Text,
		Image:           media.Encode(q.Image),
		PossibleAnswers: answers,
	}
}

// toDomain decodes the image payload; an undecodable data URI is invalid input.
func (d questionDTO) toDomain() (domain.Question, error) {
	image, err := media.Decode(d.Image)
	if err != nil {
		return domain.Question{}, err
	}
	answers := make([]domain.Answer, 0, len(d.PossibleAnswers))
	for _, a := range d.PossibleAnswers {
		answers = append(answers, domain.Answer(a))
	}
	return domain.Question{
		Title:    d.Title,
		Position: d.Position,
		Text:     d.Text,
		Image:    image,
		Answers:  answers,
	}, nil
}
