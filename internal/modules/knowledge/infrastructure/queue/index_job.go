package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"BotDesk/internal/modules/knowledge/infrastructure/mq"
)

// IndexJobVersion 消息体格式变化时递增
const IndexJobVersion = "1"

// IndexJob 索引任务消息体
type IndexJob struct {
	DocID       string    `json:"docId"`
	Tenant      string    `json:"tenant"`
	RequestedAt time.Time `json:"requestedAt"`
}

func (j IndexJob) Encode() ([]byte, error) {
	return json.Marshal(j)
}

func DecodeIndexJob(b []byte) (IndexJob, error) {
	var j IndexJob
	if err := json.Unmarshal(b, &j); err != nil {
		return IndexJob{}, err
	}
	if strings.TrimSpace(j.DocID) == "" {
		return IndexJob{}, errors.New("index job missing docId")
	}
	return j, nil
}

// Dispatcher 把索引任务交给后台执行
type Dispatcher interface {
	Dispatch(ctx context.Context, job IndexJob) error
}

// KafkaDispatcher 以 docId 作为消息 key 投递到索引 topic
type KafkaDispatcher struct {
	pub   mq.Publisher
	topic string
}

func NewKafkaDispatcher(pub mq.Publisher, topic string) *KafkaDispatcher {
	return &KafkaDispatcher{pub: pub, topic: topic}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, job IndexJob) error {
	body, err := job.Encode()
	if err != nil {
		return err
	}
	if _, err := d.pub.Publish(ctx, mq.IndexMessage(d.topic, job.DocID, job.Tenant, IndexJobVersion, body)); err != nil {
		return fmt.Errorf("publish index job: %w", err)
	}
	return nil
}
