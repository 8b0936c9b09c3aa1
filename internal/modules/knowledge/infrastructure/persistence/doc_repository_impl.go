package persistence

import (
	"context"
	"errors"
	"time"

	"BotDesk/internal/modules/knowledge/domain/entity"
	"BotDesk/internal/modules/knowledge/domain/repository"

	"gorm.io/gorm"
)

type docRepositoryImpl struct {
	db *gorm.DB
}

func NewDocRepository(db *gorm.DB) repository.DocRepository {
	return &docRepositoryImpl{db: db}
}

func (r *docRepositoryImpl) Create(ctx context.Context, doc *entity.KnowledgeDoc) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *docRepositoryImpl) GetByID(ctx context.Context, id string) (*entity.KnowledgeDoc, error) {
	var doc entity.KnowledgeDoc
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// List 列表不带正文
func (r *docRepositoryImpl) List(ctx context.Context, tenant string) ([]entity.KnowledgeDoc, error) {
	var docs []entity.KnowledgeDoc
	err := r.db.WithContext(ctx).
		Omit("body").
		Where("tenant = ?", tenant).
		Order("updated_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *docRepositoryImpl) UpdateStatus(ctx context.Context, id, status string, chunkCount int, errMsg string) error {
	return r.db.WithContext(ctx).Model(&entity.KnowledgeDoc{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      status,
		"chunk_count": chunkCount,
		"error_msg":   errMsg,
		"updated_at":  time.Now(),
	}).Error
}

func (r *docRepositoryImpl) Delete(ctx context.Context, id string) (bool, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("doc_id = ?", id).Delete(&entity.KnowledgeChunk{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&entity.KnowledgeDoc{})
		affected = res.RowsAffected
		return res.Error
	})
	return affected > 0, err
}

func (r *docRepositoryImpl) ListStale(ctx context.Context, statuses []string, before time.Time, limit int) ([]entity.KnowledgeDoc, error) {
	var docs []entity.KnowledgeDoc
	err := r.db.WithContext(ctx).
		Omit("body").
		Where("status IN ? AND updated_at < ?", statuses, before).
		Order("updated_at ASC").
		Limit(limit).
		Find(&docs).Error
	return docs, err
}
