package retriever

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"BotDesk/internal/modules/knowledge/domain/repository"
	"BotDesk/pkg/zlog"

	"github.com/cloudwego/eino/components/embedding"
	"go.uber.org/zap"
)

const (
	DefaultLimit          = 5
	DefaultCandidateLimit = 500
)

// CosineRetriever 在最近更新的候选切片上做内存余弦排序
type CosineRetriever struct {
	embedder   embedding.Embedder
	chunks     repository.ChunkRepository
	candidates int
}

var _ repository.Retriever = (*CosineRetriever)(nil)

func NewCosineRetriever(embedder embedding.Embedder, chunks repository.ChunkRepository, candidates int) *CosineRetriever {
	if candidates <= 0 {
		candidates = DefaultCandidateLimit
	}
	return &CosineRetriever{embedder: embedder, chunks: chunks, candidates: candidates}
}

func (r *CosineRetriever) Search(ctx context.Context, tenant, query string, limit int) ([]repository.Hit, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if strings.TrimSpace(query) == "" || strings.TrimSpace(tenant) == "" {
		return []repository.Hit{}, nil
	}

	candidates, err := r.chunks.ListRecentByTenant(ctx, tenant, r.candidates)
	if err != nil {
		return nil, fmt.Errorf("load candidate chunks: %w", err)
	}
	if len(candidates) == 0 {
		return []repository.Hit{}, nil
	}

	vecs, err := r.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedding result is empty")
	}
	q := toFloat32(vecs[0])

	hits := make([]repository.Hit, 0, len(candidates))
	skipped := 0
	for i := range candidates {
		v, err := candidates[i].Vector()
		if err != nil {
			skipped++
			continue
		}
		score, ok := Cosine(q, v)
		if !ok {
			skipped++
			continue
		}
		hits = append(hits, repository.Hit{ID: candidates[i].Id, Content: candidates[i].Content, Score: score})
	}
	if skipped > 0 {
		zlog.Debug("knowledge chunks skipped", zap.String("tenant", tenant), zap.Int("skipped", skipped))
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
