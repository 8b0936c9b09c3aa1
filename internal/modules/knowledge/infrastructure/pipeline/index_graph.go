package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"BotDesk/internal/modules/knowledge/domain/entity"
	"BotDesk/internal/modules/knowledge/domain/repository"
	"BotDesk/internal/modules/knowledge/infrastructure/chunking"
	"BotDesk/internal/modules/knowledge/infrastructure/textprep"
	"BotDesk/pkg/util"
	"BotDesk/pkg/zlog"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

const embedBatchSize = 64

var ErrDocNotFound = errors.New("knowledge doc not found")

type IndexRequest struct {
	DocID string
}

type IndexResult struct {
	DocID      string
	Tenant     string
	ChunkCount int
	Duration   time.Duration
}

// indexState 节点间传递的中间状态
type indexState struct {
	Req     *IndexRequest
	Doc     *entity.KnowledgeDoc
	Parts   []*schema.Document
	Vectors [][]float32
	Chunks  []entity.KnowledgeChunk
	Start   time.Time
	Err     error
}

// IndexPipeline 文档索引：Load → Split → Embed → Persist → SyncVector
type IndexPipeline struct {
	docs     repository.DocRepository
	chunks   repository.ChunkRepository
	chunker  *chunking.Chunker
	embedder embedding.Embedder
	// store 为空时不同步向量库
	store repository.VectorStore

	once     sync.Once
	buildErr error
	runnable compose.Runnable[*IndexRequest, *IndexResult]
}

func NewIndexPipeline(docs repository.DocRepository, chunks repository.ChunkRepository, chunker *chunking.Chunker, embedder embedding.Embedder, store repository.VectorStore) *IndexPipeline {
	return &IndexPipeline{docs: docs, chunks: chunks, chunker: chunker, embedder: embedder, store: store}
}

// Run 执行索引并维护文档状态；文档不存在时返回 ErrDocNotFound
func (p *IndexPipeline) Run(ctx context.Context, docID string) (*IndexResult, error) {
	p.once.Do(func() {
		p.runnable, p.buildErr = p.buildGraph(ctx)
	})
	if p.buildErr != nil {
		return nil, fmt.Errorf("build index graph: %w", p.buildErr)
	}

	doc, err := p.docs.GetByID(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("load doc: %w", err)
	}
	if doc == nil {
		return nil, ErrDocNotFound
	}

	res, err := p.runnable.Invoke(ctx, &IndexRequest{DocID: docID})
	if err != nil {
		p.markFailed(ctx, docID, err)
		return nil, err
	}
	if err := p.docs.UpdateStatus(ctx, docID, entity.DocStatusReady, res.ChunkCount, ""); err != nil {
		return nil, fmt.Errorf("mark doc ready: %w", err)
	}
	zlog.Info("knowledge doc indexed",
		zap.String("doc_id", docID), zap.String("tenant", res.Tenant),
		zap.Int("chunks", res.ChunkCount), zap.Duration("took", res.Duration))
	return res, nil
}

const maxErrorRunes = 500

func (p *IndexPipeline) markFailed(ctx context.Context, docID string, cause error) {
	// 按 rune 截断，供应商错误里可能带泰文
	msg := cause.Error()
	if r := []rune(msg); len(r) > maxErrorRunes {
		msg = string(r[:maxErrorRunes])
	}
	if err := p.docs.UpdateStatus(ctx, docID, entity.DocStatusFailed, 0, msg); err != nil {
		zlog.Warn("mark doc failed error", zap.String("doc_id", docID), zap.Error(err))
	}
}

func (p *IndexPipeline) buildGraph(ctx context.Context) (compose.Runnable[*IndexRequest, *IndexResult], error) {
	const (
		Load       = "Load"
		Split      = "Split"
		Embed      = "Embed"
		Persist    = "Persist"
		SyncVector = "SyncVector"
	)
	g := compose.NewGraph[*IndexRequest, *IndexResult]()
	_ = g.AddLambdaNode(Load, compose.InvokableLambdaWithOption(p.loadNode), compose.WithNodeName(Load))
	_ = g.AddLambdaNode(Split, compose.InvokableLambdaWithOption(p.splitNode), compose.WithNodeName(Split))
	_ = g.AddLambdaNode(Embed, compose.InvokableLambdaWithOption(p.embedNode), compose.WithNodeName(Embed))
	_ = g.AddLambdaNode(Persist, compose.InvokableLambdaWithOption(p.persistNode), compose.WithNodeName(Persist))
	_ = g.AddLambdaNode(SyncVector, compose.InvokableLambdaWithOption(p.syncVectorNode), compose.WithNodeName(SyncVector))
	_ = g.AddEdge(compose.START, Load)
	_ = g.AddEdge(Load, Split)
	_ = g.AddEdge(Split, Embed)
	_ = g.AddEdge(Embed, Persist)
	_ = g.AddEdge(Persist, SyncVector)
	_ = g.AddEdge(SyncVector, compose.END)
	return g.Compile(ctx, compose.WithGraphName("KnowledgeIndexPipeline"), compose.WithNodeTriggerMode(compose.AllPredecessor))
}

// loadNode 读取文档并标记为 indexing
func (p *IndexPipeline) loadNode(ctx context.Context, req *IndexRequest, _ ...any) (*indexState, error) {
	st := &indexState{Req: req, Start: time.Now()}
	if req == nil || strings.TrimSpace(req.DocID) == "" {
		st.Err = fmt.Errorf("missing doc id")
		return st, nil
	}
	doc, err := p.docs.GetByID(ctx, req.DocID)
	if err != nil {
		st.Err = err
		return st, nil
	}
	if doc == nil {
		st.Err = ErrDocNotFound
		return st, nil
	}
	st.Doc = doc
	if err := p.docs.UpdateStatus(ctx, doc.Id, entity.DocStatusIndexing, doc.ChunkCount, ""); err != nil {
		st.Err = err
	}
	return st, nil
}

func (p *IndexPipeline) splitNode(ctx context.Context, st *indexState, _ ...any) (*indexState, error) {
	if st.Err != nil {
		return st, nil
	}
	parts, err := p.chunker.Transform(ctx, []*schema.Document{{
		ID:       st.Doc.Id,
		Content:  textprep.Normalize(st.Doc.Format, st.Doc.Body),
		MetaData: map[string]any{"tenant": st.Doc.Tenant, "doc_id": st.Doc.Id},
	}})
	if err != nil {
		st.Err = fmt.Errorf("split doc: %w", err)
		return st, nil
	}
	st.Parts = parts
	return st, nil
}

// embedNode 分批向量化
func (p *IndexPipeline) embedNode(ctx context.Context, st *indexState, _ ...any) (*indexState, error) {
	if st.Err != nil || len(st.Parts) == 0 {
		return st, nil
	}
	st.Vectors = make([][]float32, 0, len(st.Parts))
	for i := 0; i < len(st.Parts); i += embedBatchSize {
		end := i + embedBatchSize
		if end > len(st.Parts) {
			end = len(st.Parts)
		}
		texts := make([]string, 0, end-i)
		for _, d := range st.Parts[i:end] {
			texts = append(texts, d.Content)
		}
		vecs, err := p.embedder.EmbedStrings(ctx, texts)
		if err != nil {
			st.Err = fmt.Errorf("embed chunks: %w", err)
			return st, nil
		}
		if len(vecs) != len(texts) {
			st.Err = fmt.Errorf("embedding count mismatch: got=%d want=%d", len(vecs), len(texts))
			return st, nil
		}
		for _, v := range vecs {
			f := make([]float32, len(v))
			for j, x := range v {
				f[j] = float32(x)
			}
			st.Vectors = append(st.Vectors, f)
		}
	}
	return st, nil
}

// persistNode 覆盖写入该文档的全部切片
func (p *IndexPipeline) persistNode(ctx context.Context, st *indexState, _ ...any) (*indexState, error) {
	if st.Err != nil {
		return st, nil
	}
	now := time.Now()
	st.Chunks = make([]entity.KnowledgeChunk, 0, len(st.Parts))
	for i, d := range st.Parts {
		c := entity.KnowledgeChunk{
			Id:         util.GenerateUUID(),
			Tenant:     st.Doc.Tenant,
			DocId:      st.Doc.Id,
			ChunkIndex: i,
			Content:    d.Content,
			Tokens:     textprep.CountTokens(d.Content),
			UpdatedAt:  now,
		}
		if err := c.SetVector(st.Vectors[i]); err != nil {
			st.Err = err
			return st, nil
		}
		st.Chunks = append(st.Chunks, c)
	}
	if err := p.chunks.ReplaceForDoc(ctx, st.Doc.Id, st.Chunks); err != nil {
		st.Err = fmt.Errorf("persist chunks: %w", err)
	}
	return st, nil
}

func (p *IndexPipeline) syncVectorNode(ctx context.Context, st *indexState, _ ...any) (*IndexResult, error) {
	if st.Err != nil {
		return nil, st.Err
	}
	if p.store != nil {
		if err := p.store.DeleteByDoc(ctx, st.Doc.Id); err != nil {
			return nil, fmt.Errorf("clear vectors: %w", err)
		}
		items := make([]repository.VectorItem, 0, len(st.Chunks))
		for i, c := range st.Chunks {
			items = append(items, repository.VectorItem{
				ID:         c.Id,
				Vector:     st.Vectors[i],
				Tenant:     c.Tenant,
				DocID:      c.DocId,
				ChunkIndex: c.ChunkIndex,
				Content:    c.Content,
			})
		}
		if err := p.store.Upsert(ctx, items); err != nil {
			return nil, fmt.Errorf("upsert vectors: %w", err)
		}
	}
	return &IndexResult{
		DocID:      st.Doc.Id,
		Tenant:     st.Doc.Tenant,
		ChunkCount: len(st.Chunks),
		Duration:   time.Since(st.Start),
	}, nil
}
