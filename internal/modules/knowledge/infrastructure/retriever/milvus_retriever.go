package retriever

import (
	"context"
	"fmt"
	"strings"

	"BotDesk/internal/modules/knowledge/domain/repository"

	"github.com/cloudwego/eino/components/embedding"
)

// MilvusRetriever 由向量库完成 COSINE 检索
type MilvusRetriever struct {
	embedder embedding.Embedder
	store    repository.VectorStore
}

var _ repository.Retriever = (*MilvusRetriever)(nil)

func NewMilvusRetriever(embedder embedding.Embedder, store repository.VectorStore) *MilvusRetriever {
	return &MilvusRetriever{embedder: embedder, store: store}
}

func (r *MilvusRetriever) Search(ctx context.Context, tenant, query string, limit int) ([]repository.Hit, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if strings.TrimSpace(query) == "" || strings.TrimSpace(tenant) == "" {
		return []repository.Hit{}, nil
	}
	vecs, err := r.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedding result is empty")
	}
	res, err := r.store.Search(ctx, tenant, toFloat32(vecs[0]), limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	hits := make([]repository.Hit, 0, len(res))
	for _, h := range res {
		hits = append(hits, repository.Hit{ID: h.ID, Content: h.Content, Score: float64(h.Score)})
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
