package types

import (
	"time"

	"github.com/google/uuid"
)

// Contest is the exam/program a user prepares for (concurso). It scopes
// progression records and weekly content.
type Contest struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"not null;column:name" json:"nome"`
	Slug        string    `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	Institution string    `gorm:"column:institution" json:"instituicao"`
	Year        int       `gorm:"not null;column:year" json:"ano"`
	IsActive    bool      `gorm:"not null;default:true;column:is_active" json:"ativo"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Contest) TableName() string {
	return "contest"
}
