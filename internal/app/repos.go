package app

import (
	"gorm.io/gorm"

	"github.com/passarei/backend/internal/platform/logger"
	"github.com/passarei/backend/internal/repos"
)

type Repos struct {
	User              repos.UserRepo
	UserToken         repos.UserTokenRepo
	Contest           repos.ContestRepo
	WeeklyQuestionSet repos.WeeklyQuestionSetRepo
	ProgressionStatus repos.ProgressionStatusRepo
	CompletionRecord  repos.CompletionRecordRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:              repos.NewUserRepo(db, log),
		UserToken:         repos.NewUserTokenRepo(db, log),
		Contest:           repos.NewContestRepo(db, log),
		WeeklyQuestionSet: repos.NewWeeklyQuestionSetRepo(db, log),
		ProgressionStatus: repos.NewProgressionStatusRepo(db, log),
		CompletionRecord:  repos.NewCompletionRecordRepo(db, log),
	}
}
