package types

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyQuestionSet is the published content for one (contest, week, year).
// The progression engine only reads these rows; authoring happens elsewhere.
type WeeklyQuestionSet struct {
	ID         uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ContestID  uuid.UUID         `gorm:"type:uuid;not null;index:idx_contest_week_year,unique" json:"concurso_id"`
	Contest    *Contest          `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContestID;references:ID" json:"-"`
	WeekNumber int               `gorm:"not null;index:idx_contest_week_year,unique;column:week_number" json:"numero_semana"`
	Year       int               `gorm:"not null;index:idx_contest_week_year,unique;column:year" json:"ano"`
	Title      string            `gorm:"not null;column:title" json:"titulo"`
	Questions  []*WeeklyQuestion `gorm:"foreignKey:QuestionSetID;references:ID" json:"questoes,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"not null;default:now()" json:"updated_at"`
}

func (WeeklyQuestionSet) TableName() string {
	return "weekly_question_set"
}

type WeeklyQuestion struct {
	ID            uuid.UUID          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	QuestionSetID uuid.UUID          `gorm:"type:uuid;not null;index;column:question_set_id" json:"question_set_id"`
	Position      int                `gorm:"not null;column:position" json:"posicao"`
	Prompt        string             `gorm:"not null;column:prompt" json:"enunciado"`
	Choices       []*QuestionChoice  `gorm:"foreignKey:QuestionID;references:ID" json:"alternativas,omitempty"`
	CorrectChoice string             `gorm:"not null;column:correct_choice" json:"-"`
	Explanation   string             `gorm:"column:explanation" json:"explicacao,omitempty"`
	Subject       string             `gorm:"column:subject;index" json:"materia"`
	Topic         string             `gorm:"column:topic" json:"topico"`
	Difficulty    string             `gorm:"column:difficulty" json:"dificuldade"`
	CreatedAt     time.Time          `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time          `gorm:"not null;default:now()" json:"updated_at"`
}

func (WeeklyQuestion) TableName() string {
	return "weekly_question"
}

type QuestionChoice struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index;column:question_id" json:"question_id"`
	Label      string    `gorm:"not null;column:label" json:"letra"`
	Text       string    `gorm:"not null;column:text" json:"texto"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (QuestionChoice) TableName() string {
	return "question_choice"
}
