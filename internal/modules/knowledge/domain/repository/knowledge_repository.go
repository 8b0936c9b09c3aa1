package repository

import (
	"context"
	"time"

	"BotDesk/internal/modules/knowledge/domain/entity"
)

type DocRepository interface {
	Create(ctx context.Context, doc *entity.KnowledgeDoc) error
	GetByID(ctx context.Context, id string) (*entity.KnowledgeDoc, error)
	List(ctx context.Context, tenant string) ([]entity.KnowledgeDoc, error)
	UpdateStatus(ctx context.Context, id, status string, chunkCount int, errMsg string) error
	Delete(ctx context.Context, id string) (bool, error)
	// ListStale 返回 updated_at 早于 before 且处于给定状态的文档，不带正文
	ListStale(ctx context.Context, statuses []string, before time.Time, limit int) ([]entity.KnowledgeDoc, error)
}

type ChunkRepository interface {
	// ReplaceForDoc 事务内删除旧切片并写入新切片
	ReplaceForDoc(ctx context.Context, docID string, chunks []entity.KnowledgeChunk) error
	DeleteByDoc(ctx context.Context, docID string) error
	// ListRecentByTenant 按 updated_at 倒序取候选切片
	ListRecentByTenant(ctx context.Context, tenant string, limit int) ([]entity.KnowledgeChunk, error)
}

// VectorItem 写入向量库的一条切片
type VectorItem struct {
	ID         string
	Vector     []float32
	Tenant     string
	DocID      string
	ChunkIndex int
	Content    string
}

type VectorHit struct {
	ID      string
	Score   float32
	DocID   string
	Content string
}

// VectorStore 可选的外部向量库
type VectorStore interface {
	Upsert(ctx context.Context, items []VectorItem) error
	DeleteByDoc(ctx context.Context, docID string) error
	Search(ctx context.Context, tenant string, vector []float32, topK int) ([]VectorHit, error)
}

// Hit 检索结果，按 Score 降序
type Hit struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Retriever 相似度检索，无副作用
type Retriever interface {
	Search(ctx context.Context, tenant, query string, limit int) ([]Hit, error)
}
