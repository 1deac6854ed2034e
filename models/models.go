package models

import (
	"time"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

const (
	MaterialLink = "link"
	MaterialFile = "file"
	MaterialText = "text"
)

// User model. ID is the telegram user id.
type User struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Topic model
type Topic struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	IsAvailable  bool   `json:"isAvailable"`
	AttemptLimit *int   `json:"attemptLimit"`
	Questions    int    `json:"questions,omitempty"`
}

// Question model
type Question struct {
	ID            int64     `json:"id"`
	TopicID       int64     `json:"topicId"`
	Text          string    `json:"text"`
	Options       [4]string `json:"options"`
	CorrectOption int       `json:"correctOption"`
}

// QuestionPayload is one parsed row of an uploaded question file.
type QuestionPayload struct {
	Text          string   `json:"text" validate:"required"`
	Options       []string `json:"options" validate:"required,len=4,dive,required"`
	CorrectOption int      `json:"correctOption" validate:"required,min=1,max=4"`
}

// Attempt model. TopicTitle is populated by joined reads only.
type Attempt struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	TopicID       int64     `json:"topicId"`
	TopicTitle    string    `json:"topicTitle,omitempty"`
	Score         int       `json:"score"`
	MaxScore      int       `json:"maxScore"`
	AttemptNumber int       `json:"attemptNumber"`
	Timestamp     time.Time `json:"timestamp"`
}

// Material model. A nil TopicID marks a general material.
type Material struct {
	ID      int64  `json:"id"`
	TopicID *int64 `json:"topicId"`
	Type    string `json:"type"`
	Content string `json:"content"`
	Title   string `json:"title"`
}

// StudentMessage model
type StudentMessage struct {
	ID         int64     `json:"id"`
	FromUserID int64     `json:"fromUserId"`
	ToUserID   *int64    `json:"toUserId"`
	Text       string    `json:"text"`
	Answered   bool      `json:"answered"`
	Timestamp  time.Time `json:"timestamp"`
}

// StatRow is one exported statistics line.
type StatRow struct {
	FullName      string    `json:"fullName"`
	TopicTitle    string    `json:"topicTitle"`
	Score         int       `json:"score"`
	MaxScore      int       `json:"maxScore"`
	AttemptNumber int       `json:"attemptNumber"`
	Timestamp     time.Time `json:"timestamp"`
}

// TopicAverage is the per-topic slice of a statistics summary.
type TopicAverage struct {
	TopicID        int64   `json:"topicId"`
	Title          string  `json:"title"`
	Attempts       int     `json:"attempts"`
	AveragePercent float64 `json:"averagePercent"`
}

// StatsSummary model
type StatsSummary struct {
	TotalAttempts  int            `json:"totalAttempts"`
	Students       int            `json:"students"`
	AveragePercent float64        `json:"averagePercent"`
	Topics         []TopicAverage `json:"topics"`
}
