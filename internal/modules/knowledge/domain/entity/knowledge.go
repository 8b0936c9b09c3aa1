package entity

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

const (
	DocStatusPending  = "pending"
	DocStatusIndexing = "indexing"
	DocStatusReady    = "ready"
	DocStatusFailed   = "failed"
)

// 文档正文格式，索引前按格式清洗为纯文本
const (
	DocFormatText     = "text"
	DocFormatMarkdown = "markdown"
	DocFormatHTML     = "html"
)

// KnowledgeDoc 租户知识文档，正文切片后写入 KnowledgeChunk
type KnowledgeDoc struct {
	Id         string    `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Tenant     string    `gorm:"column:tenant;type:varchar(64);not null;index:idx_doc_tenant" json:"tenant"`
	Title      string    `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Body       string    `gorm:"column:body;type:longtext;not null" json:"body,omitempty"`
	Format     string    `gorm:"column:format;type:varchar(16);not null;default:text" json:"format"`
	Status     string    `gorm:"column:status;type:varchar(20);not null;default:pending" json:"status"`
	ChunkCount int       `gorm:"column:chunk_count;not null;default:0" json:"chunkCount"`
	ErrorMsg   string    `gorm:"column:error_msg;type:varchar(512)" json:"errorMsg,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;type:datetime;not null" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updated_at;type:datetime;not null" json:"updatedAt"`
}

func (KnowledgeDoc) TableName() string { return "knowledge_doc" }

type KnowledgeChunk struct {
	Id         string         `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Tenant     string         `gorm:"column:tenant;type:varchar(64);not null;index:idx_chunk_tenant_updated,priority:1" json:"tenant"`
	DocId      string         `gorm:"column:doc_id;type:char(36);not null;index:idx_chunk_doc" json:"docId"`
	ChunkIndex int            `gorm:"column:chunk_index;not null" json:"chunkIndex"`
	Content    string         `gorm:"column:content;type:text;not null" json:"content"`
	Embedding  datatypes.JSON `gorm:"column:embedding" json:"-"`
	Tokens     int            `gorm:"column:tokens;not null;default:0" json:"tokens"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;type:datetime(3);not null;index:idx_chunk_tenant_updated,priority:2" json:"updatedAt"`
}

func (KnowledgeChunk) TableName() string { return "knowledge_chunk" }

// SetVector 以 JSON 数组形式保存向量
func (c *KnowledgeChunk) SetVector(v []float32) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.Embedding = datatypes.JSON(b)
	return nil
}

// Vector 解析保存的向量，空列返回 nil
func (c *KnowledgeChunk) Vector() ([]float32, error) {
	if len(c.Embedding) == 0 {
		return nil, nil
	}
	var v []float32
	if err := json.Unmarshal(c.Embedding, &v); err != nil {
		return nil, err
	}
	return v, nil
}
