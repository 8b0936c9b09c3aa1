package service

import (
	"context"
	"strings"
	"time"

	"BotDesk/internal/modules/knowledge/application/dto/request"
	"BotDesk/internal/modules/knowledge/application/dto/respond"
	"BotDesk/internal/modules/knowledge/domain/entity"
	"BotDesk/internal/modules/knowledge/domain/repository"
	"BotDesk/internal/modules/knowledge/infrastructure/queue"
	"BotDesk/pkg/util"
	"BotDesk/pkg/xerr"
	"BotDesk/pkg/zlog"

	"go.uber.org/zap"
)

const maxSearchLimit = 20

type DocService interface {
	List(ctx context.Context, tenant string) (*respond.DocListRespond, error)
	Get(ctx context.Context, tenant, id string) (*respond.DocRespond, error)
	// Create 保存文档并派发索引任务
	Create(ctx context.Context, tenant string, req request.CreateDocRequest) (*respond.DocRespond, error)
	Reindex(ctx context.Context, tenant, id string) (*respond.DocRespond, error)
	Delete(ctx context.Context, tenant, id string) error
	Search(ctx context.Context, tenant, query string, limit int) (*respond.SearchRespond, error)
}

type docServiceImpl struct {
	docs       repository.DocRepository
	store      repository.VectorStore
	retriever  repository.Retriever
	dispatcher queue.Dispatcher
}

// NewDocService store 可为 nil
func NewDocService(docs repository.DocRepository, store repository.VectorStore, retriever repository.Retriever, dispatcher queue.Dispatcher) DocService {
	return &docServiceImpl{docs: docs, store: store, retriever: retriever, dispatcher: dispatcher}
}

func (s *docServiceImpl) List(ctx context.Context, tenant string) (*respond.DocListRespond, error) {
	items, err := s.docs.List(ctx, tenant)
	if err != nil {
		zlog.Error("list knowledge docs failed", zap.String("tenant", tenant), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if items == nil {
		items = []entity.KnowledgeDoc{}
	}
	return &respond.DocListRespond{Items: items}, nil
}

func (s *docServiceImpl) Get(ctx context.Context, tenant, id string) (*respond.DocRespond, error) {
	doc, err := s.mustDoc(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	return &respond.DocRespond{Doc: doc}, nil
}

func (s *docServiceImpl) Create(ctx context.Context, tenant string, req request.CreateDocRequest) (*respond.DocRespond, error) {
	title, body := strings.TrimSpace(req.Title), strings.TrimSpace(req.Body)
	if title == "" || body == "" {
		return nil, xerr.ErrParam
	}
	format := strings.ToLower(strings.TrimSpace(req.Format))
	switch format {
	case "":
		format = entity.DocFormatText
	case entity.DocFormatText, entity.DocFormatMarkdown, entity.DocFormatHTML:
	default:
		return nil, xerr.ErrParam
	}
	now := time.Now()
	doc := &entity.KnowledgeDoc{
		Id:        util.GenerateUUID(),
		Tenant:    tenant,
		Title:     title,
		Body:      body,
		Format:    format,
		Status:    entity.DocStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		zlog.Error("create knowledge doc failed", zap.String("tenant", tenant), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return &respond.DocRespond{Doc: doc, Queued: s.enqueue(ctx, doc)}, nil
}

func (s *docServiceImpl) Reindex(ctx context.Context, tenant, id string) (*respond.DocRespond, error) {
	doc, err := s.mustDoc(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	return &respond.DocRespond{Doc: doc, Queued: s.enqueue(ctx, doc)}, nil
}

func (s *docServiceImpl) Delete(ctx context.Context, tenant, id string) error {
	if _, err := s.mustDoc(ctx, tenant, id); err != nil {
		return err
	}
	ok, err := s.docs.Delete(ctx, id)
	if err != nil {
		zlog.Error("delete knowledge doc failed", zap.String("doc_id", id), zap.Error(err))
		return xerr.ErrServerError
	}
	if !ok {
		return xerr.ErrDocNotFound
	}
	if s.store != nil {
		if err := s.store.DeleteByDoc(ctx, id); err != nil {
			zlog.Warn("delete doc vectors failed", zap.String("doc_id", id), zap.Error(err))
		}
	}
	return nil
}

func (s *docServiceImpl) Search(ctx context.Context, tenant, query string, limit int) (*respond.SearchRespond, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, xerr.New(xerr.BadRequest, "missing_query")
	}
	hits, err := s.retriever.Search(ctx, tenant, query, util.ClampInt(limit, 5, 1, maxSearchLimit))
	if err != nil {
		zlog.Error("knowledge search failed", zap.String("tenant", tenant), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return &respond.SearchRespond{Query: query, Hits: hits}, nil
}

// enqueue 派发失败不影响文档保存，可稍后 reindex
func (s *docServiceImpl) enqueue(ctx context.Context, doc *entity.KnowledgeDoc) bool {
	if s.dispatcher == nil {
		return false
	}
	err := s.dispatcher.Dispatch(ctx, queue.IndexJob{DocID: doc.Id, Tenant: doc.Tenant, RequestedAt: time.Now()})
	if err != nil {
		zlog.Warn("dispatch index job failed", zap.String("doc_id", doc.Id), zap.Error(err))
		return false
	}
	return true
}

func (s *docServiceImpl) mustDoc(ctx context.Context, tenant, id string) (*entity.KnowledgeDoc, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		zlog.Error("get knowledge doc failed", zap.String("doc_id", id), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if doc == nil || doc.Tenant != tenant {
		return nil, xerr.ErrDocNotFound
	}
	return doc, nil
}
