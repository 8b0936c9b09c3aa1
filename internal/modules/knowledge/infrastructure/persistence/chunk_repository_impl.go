package persistence

import (
	"context"

	"BotDesk/internal/modules/knowledge/domain/entity"
	"BotDesk/internal/modules/knowledge/domain/repository"

	"gorm.io/gorm"
)

const chunkBatchSize = 200

type chunkRepositoryImpl struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) repository.ChunkRepository {
	return &chunkRepositoryImpl{db: db}
}

func (r *chunkRepositoryImpl) ReplaceForDoc(ctx context.Context, docID string, chunks []entity.KnowledgeChunk) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("doc_id = ?", docID).Delete(&entity.KnowledgeChunk{}).Error; err != nil {
			return err
		}
		if len(chunks) == 0 {
			return nil
		}
		return tx.CreateInBatches(chunks, chunkBatchSize).Error
	})
}

func (r *chunkRepositoryImpl) DeleteByDoc(ctx context.Context, docID string) error {
	return r.db.WithContext(ctx).Where("doc_id = ?", docID).Delete(&entity.KnowledgeChunk{}).Error
}

func (r *chunkRepositoryImpl) ListRecentByTenant(ctx context.Context, tenant string, limit int) ([]entity.KnowledgeChunk, error) {
	var chunks []entity.KnowledgeChunk
	err := r.db.WithContext(ctx).
		Where("tenant = ?", tenant).
		Order("updated_at DESC").
		Limit(limit).
		Find(&chunks).Error
	return chunks, err
}
