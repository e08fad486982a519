package types

import (
	"time"

	"github.com/google/uuid"
)

// Unlock policies for weekly progression. The policy is snapshotted onto the
// status row at creation so a later config change never rewrites history.
const (
	UnlockPolicyStrict      = "strict"
	UnlockPolicyAccelerated = "accelerated"
)

// ProgressionStatus is the per-(user, contest) progression record. One row per
// pair, created lazily on first access and mutated only by the advancement
// operations. CurrentWeekNumber never decreases.
type ProgressionStatus struct {
	ID                uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;index:idx_user_contest,unique" json:"user_id"`
	User              *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	ContestID         uuid.UUID `gorm:"type:uuid;not null;index:idx_user_contest,unique;column:contest_id" json:"concurso_id"`
	Contest           *Contest  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContestID;references:ID" json:"-"`
	CurrentWeekNumber int       `gorm:"not null;default:1;column:current_week_number" json:"numero_semana_atual"`
	WindowStart       time.Time `gorm:"not null;column:window_start" json:"janela_inicio"`
	WindowEnd         time.Time `gorm:"not null;column:window_end;index" json:"janela_fim"`
	UnlockPolicy      string    `gorm:"not null;column:unlock_policy" json:"modo_desbloqueio"`
	CreatedAt         time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ProgressionStatus) TableName() string {
	return "progression_status"
}
