package models

import "time"

// Instruction is a how-to article served by the content API in three locales.
type Instruction struct {
	ID      int    `json:"id"`
	TitleRU string `json:"title_ru"`
	TitleEN string `json:"title_en"`
	TitleKK string `json:"title_kk"`
	TextRU  string `json:"text_ru"`
	TextEN  string `json:"text_en"`
	TextKK  string `json:"text_kk"`
}

// Event is an upcoming university event.
type Event struct {
	ID            int    `json:"id"`
	TitleRU       string `json:"title_ru"`
	TitleEN       string `json:"title_en"`
	TitleKK       string `json:"title_kk"`
	DescriptionRU string `json:"description_ru"`
	DescriptionEN string `json:"description_en"`
	DescriptionKK string `json:"description_kk"`
	Date          string `json:"date"`
}

// FAQ is a frequently asked question with localized answers.
type FAQ struct {
	ID         int    `json:"id"`
	QuestionRU string `json:"question_ru"`
	QuestionEN string `json:"question_en"`
	QuestionKK string `json:"question_kk"`
	AnswerRU   string `json:"answer_ru"`
	AnswerEN   string `json:"answer_en"`
	AnswerKK   string `json:"answer_kk"`
}

// Club is a student club entry.
type Club struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Contact is a department contact card.
type Contact struct {
	ID         int    `json:"id"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Category   string `json:"category"`
}

// MedicalRequest is a ticket filed with the medical office.
type MedicalRequest struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
	Status string `json:"status"`
}

// UserToken is a stored OAuth bearer token for one Telegram user.
type UserToken struct {
	UserID    int64
	Token     string
	ExpiresAt time.Time
}
