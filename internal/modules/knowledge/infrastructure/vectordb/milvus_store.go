package vectordb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"BotDesk/internal/modules/knowledge/domain/repository"

	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// 集合字段名，与 initial.EnsureKnowledgeCollection 建表保持一致
const (
	FieldID         = "id"
	FieldVector     = "vector"
	FieldTenant     = "tenant"
	FieldDocID      = "doc_id"
	FieldChunkIndex = "chunk_index"
	FieldContent    = "content"
)

// MilvusStore repository.VectorStore 的 Milvus 实现
type MilvusStore struct {
	cli         mclient.Client
	collection  string
	vectorDim   int
	searchParam entity.SearchParam
}

var _ repository.VectorStore = (*MilvusStore)(nil)

func NewMilvusStore(cli mclient.Client, collection string, vectorDim int) (*MilvusStore, error) {
	if cli == nil {
		return nil, errors.New("milvus client is nil")
	}
	if strings.TrimSpace(collection) == "" {
		return nil, errors.New("collection is empty")
	}
	if vectorDim <= 0 {
		return nil, fmt.Errorf("invalid vectorDim: %d", vectorDim)
	}
	sp, err := entity.NewIndexAUTOINDEXSearchParam(1)
	if err != nil {
		return nil, err
	}
	return &MilvusStore{cli: cli, collection: collection, vectorDim: vectorDim, searchParam: sp}, nil
}

func (s *MilvusStore) Upsert(ctx context.Context, items []repository.VectorItem) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, 0, len(items))
	vectors := make([][]float32, 0, len(items))
	tenants := make([]string, 0, len(items))
	docIDs := make([]string, 0, len(items))
	indexes := make([]int64, 0, len(items))
	contents := make([]string, 0, len(items))

	for _, it := range items {
		if it.ID == "" {
			return errors.New("upsert item missing ID")
		}
		if len(it.Vector) != s.vectorDim {
			return fmt.Errorf("vector dim mismatch for id=%s, got=%d want=%d", it.ID, len(it.Vector), s.vectorDim)
		}
		ids = append(ids, it.ID)
		vectors = append(vectors, it.Vector)
		tenants = append(tenants, it.Tenant)
		docIDs = append(docIDs, it.DocID)
		indexes = append(indexes, int64(it.ChunkIndex))
		contents = append(contents, truncateRunes(it.Content, 4000))
	}

	_, err := s.cli.Upsert(
		ctx,
		s.collection,
		"",
		entity.NewColumnVarChar(FieldID, ids),
		entity.NewColumnFloatVector(FieldVector, s.vectorDim, vectors),
		entity.NewColumnVarChar(FieldTenant, tenants),
		entity.NewColumnVarChar(FieldDocID, docIDs),
		entity.NewColumnInt64(FieldChunkIndex, indexes),
		entity.NewColumnVarChar(FieldContent, contents),
	)
	return err
}

func (s *MilvusStore) DeleteByDoc(ctx context.Context, docID string) error {
	return s.cli.Delete(ctx, s.collection, "", fmt.Sprintf(`%s == %s`, FieldDocID, strconv.Quote(docID)))
}

func (s *MilvusStore) Search(ctx context.Context, tenant string, vector []float32, topK int) ([]repository.VectorHit, error) {
	if len(vector) != s.vectorDim {
		return nil, fmt.Errorf("vector dim mismatch, got=%d want=%d", len(vector), s.vectorDim)
	}
	if topK <= 0 {
		topK = 5
	}
	res, err := s.cli.Search(
		ctx,
		s.collection,
		[]string{},
		TenantExpr(tenant),
		[]string{FieldDocID, FieldContent},
		[]entity.Vector{entity.FloatVector(vector)},
		FieldVector,
		entity.COSINE,
		topK,
		s.searchParam,
	)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return []repository.VectorHit{}, nil
	}
	return parseSearchResult(res[0])
}

// TenantExpr 检索必须带租户过滤，防止越权
func TenantExpr(tenant string) string {
	return fmt.Sprintf(`%s == %s`, FieldTenant, strconv.Quote(tenant))
}

func parseSearchResult(sr mclient.SearchResult) ([]repository.VectorHit, error) {
	if sr.Err != nil {
		return nil, sr.Err
	}
	hits := make([]repository.VectorHit, 0, sr.ResultCount)
	docCol := columnByName(sr.Fields, FieldDocID)
	contentCol := columnByName(sr.Fields, FieldContent)

	for i := 0; i < sr.ResultCount; i++ {
		id, _ := sr.IDs.GetAsString(i)
		h := repository.VectorHit{ID: id}
		if i < len(sr.Scores) {
			h.Score = sr.Scores[i]
		}
		if docCol != nil {
			h.DocID, _ = docCol.GetAsString(i)
		}
		if contentCol != nil {
			h.Content, _ = contentCol.GetAsString(i)
		}
		hits = append(hits, h)
	}
	return hits, nil
}

func columnByName(cols mclient.ResultSet, name string) entity.Column {
	for _, c := range cols {
		if c != nil && c.Name() == name {
			return c
		}
	}
	return nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
