package domain

import "time"

// Answer is one possible answer of a question. Latitude/Longitude are only set
// for geography questions.
type Answer struct {
	Text      string
	IsCorrect bool
	Latitude  *float64
	Longitude *float64
}

// Question is a quiz question placed at a 1-based position.
type Question struct {
	ID       int64
	Position int
	Title    string
	Text     string
	Image    []byte
	Answers  []Answer // authoring order
}

// Slot pairs a question id with the position it currently occupies.
type Slot struct {
	ID       int64
	Position int
}

// Participation is one scored quiz attempt.
type Participation struct {
	ID         int64     `json:"id"`
	PlayerName string    `json:"playerName"`
	Score      int       `json:"score"`
	Date       time.Time `json:"date"`
}

// QuizInfo is the public leaderboard together with the quiz size.
type QuizInfo struct {
	Scores []Participation `json:"scores"`
	Size   int             `json:"size"`
}
