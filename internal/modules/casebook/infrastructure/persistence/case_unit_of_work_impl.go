package persistence

import (
	"context"

	"BotDesk/internal/modules/casebook/domain/repository"

	"gorm.io/gorm"
)

type caseUnitOfWorkImpl struct {
	db       *gorm.DB
	attempts int
}

// NewCaseUnitOfWork attempts 作用于整个事务，事务内的单条语句不再重试
func NewCaseUnitOfWork(db *gorm.DB, attempts int) repository.CaseUnitOfWork {
	if attempts <= 0 {
		attempts = defaultStatAttempts
	}
	return &caseUnitOfWorkImpl{db: db, attempts: attempts}
}

func (u *caseUnitOfWorkImpl) Transaction(ctx context.Context, fn func(cases repository.CaseRepository, stats repository.StatRepository) error) error {
	return withRetry(ctx, u.attempts, statBackoffBase, func() error {
		return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(NewCaseRepository(tx), &statRepositoryImpl{db: tx, attempts: 1})
		})
	})
}
