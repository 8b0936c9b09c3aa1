package respond

import (
	"BotDesk/internal/modules/knowledge/domain/entity"
	"BotDesk/internal/modules/knowledge/domain/repository"
)

type DocListRespond struct {
	Items []entity.KnowledgeDoc `json:"items"`
}

type DocRespond struct {
	Doc    *entity.KnowledgeDoc `json:"doc"`
	Queued bool                 `json:"queued,omitempty"`
}

type SearchRespond struct {
	Query string           `json:"query"`
	Hits  []repository.Hit `json:"hits"`
}
