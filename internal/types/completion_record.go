package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CompletionRecord is the append-only history entry for one completed week.
// The unique index on (user_id, contest_id, week_number) is the authoritative
// guard against duplicate completions; the application treats a duplicate-key
// insert as the week-already-completed conflict.
type CompletionRecord struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_contest_week,unique" json:"user_id"`
	User             *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	ContestID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_contest_week,unique;column:contest_id" json:"concurso_id"`
	Contest          *Contest       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContestID;references:ID" json:"-"`
	WeekNumber       int            `gorm:"not null;index:idx_user_contest_week,unique;column:week_number" json:"numero_semana"`
	CompletedAt      time.Time      `gorm:"not null;column:completed_at;index" json:"concluido_em"`
	Score            int            `gorm:"not null;default:0;column:score" json:"pontuacao"`
	TotalQuestions   int            `gorm:"not null;default:0;column:total_questions" json:"total_questoes"`
	Answers          datatypes.JSON `gorm:"type:jsonb;column:answers" json:"respostas"`
	TimeSpentMinutes *int           `gorm:"column:time_spent_minutes" json:"tempo_minutos,omitempty"`
	Notes            string         `gorm:"column:notes" json:"observacoes,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (CompletionRecord) TableName() string {
	return "completion_record"
}

// CompletionAnswer is the per-question answer payload stored in the Answers
// JSONB column. Only the question id is required.
type CompletionAnswer struct {
	QuestionID          uuid.UUID `json:"questao_id"`
	ChosenOption        string    `json:"alternativa,omitempty"`
	IsCorrect           *bool     `json:"correta,omitempty"`
	ResponseTimeSeconds *int      `json:"tempo_resposta_segundos,omitempty"`
}
