package mq

import "context"

// 索引任务的消息头，消费端不解码消息体也能按文档和租户打日志
const (
	HeaderDocID      = "x-doc-id"
	HeaderTenant     = "x-tenant"
	HeaderJobVersion = "x-job-version"
)

type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// IndexMessage 以 docId 为 key，同一文档的任务落在同一分区上保持先后顺序
func IndexMessage(topic, docID, tenant, version string, body []byte) Message {
	return Message{
		Topic: topic,
		Key:   []byte(docID),
		Value: body,
		Headers: map[string]string{
			HeaderDocID:      docID,
			HeaderTenant:     tenant,
			HeaderJobVersion: version,
		},
	}
}

func (m Message) DocID() string      { return m.Headers[HeaderDocID] }
func (m Message) Tenant() string     { return m.Headers[HeaderTenant] }
func (m Message) JobVersion() string { return m.Headers[HeaderJobVersion] }

type PublishResult struct {
	Partition int32
	Offset    int64
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) (PublishResult, error)
	Close() error
}

// Handler 返回 nil 即确认消息
type Handler interface {
	Handle(ctx context.Context, msg Message) error
}

type Consumer interface {
	Run(ctx context.Context, handler Handler) error
	Close() error
}
