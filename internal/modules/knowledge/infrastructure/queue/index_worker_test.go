package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"BotDesk/internal/modules/knowledge/infrastructure/mq"
	"BotDesk/internal/modules/knowledge/infrastructure/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingIndexer struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (r *recordingIndexer) Run(_ context.Context, docID string) (*pipeline.IndexResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, docID)
	if r.err != nil {
		return nil, r.err
	}
	return &pipeline.IndexResult{DocID: docID}, nil
}

type capturePublisher struct {
	msgs []mq.Message
}

func (c *capturePublisher) Publish(_ context.Context, m mq.Message) (mq.PublishResult, error) {
	c.msgs = append(c.msgs, m)
	return mq.PublishResult{}, nil
}
func (c *capturePublisher) Close() error { return nil }

func TestKafkaDispatcher_KeysByDoc(t *testing.T) {
	pub := &capturePublisher{}
	d := NewKafkaDispatcher(pub, "botdesk.knowledge.index")
	require.NoError(t, d.Dispatch(context.Background(), IndexJob{DocID: "d1", Tenant: "bn9", RequestedAt: time.Now()}))

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "d1", string(pub.msgs[0].Key))
	assert.Equal(t, "d1", pub.msgs[0].DocID())
	assert.Equal(t, "bn9", pub.msgs[0].Tenant())
	assert.Equal(t, IndexJobVersion, pub.msgs[0].JobVersion())

	job, err := DecodeIndexJob(pub.msgs[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "d1", job.DocID)
}

func TestIndexWorker_AcksBadAndFailedJobs(t *testing.T) {
	idx := &recordingIndexer{err: errors.New("embed failed")}
	w := NewIndexWorker(nil, idx)

	assert.NoError(t, w.Handle(context.Background(), mq.Message{Value: []byte("not json")}))
	assert.NoError(t, w.Handle(context.Background(), mq.Message{Value: []byte(`{"docId":""}`)}))
	assert.NoError(t, w.Handle(context.Background(), mq.Message{Value: []byte(`{"docId":"d1"}`)}))
	assert.Equal(t, []string{"d1"}, idx.ids)

	idx.err = pipeline.ErrDocNotFound
	assert.NoError(t, w.Handle(context.Background(), mq.Message{Value: []byte(`{"docId":"d2"}`)}))
}

func TestIndexWorker_SkipsUnknownJobVersion(t *testing.T) {
	idx := &recordingIndexer{}
	w := NewIndexWorker(nil, idx)

	msg := mq.IndexMessage("botdesk.knowledge.index", "d9", "bn9", "99", []byte(`{"docId":"d9"}`))
	assert.NoError(t, w.Handle(context.Background(), msg))
	assert.Empty(t, idx.ids)

	msg = mq.IndexMessage("botdesk.knowledge.index", "d9", "bn9", IndexJobVersion, []byte(`{"docId":"d9"}`))
	assert.NoError(t, w.Handle(context.Background(), msg))
	assert.Equal(t, []string{"d9"}, idx.ids)
}

func TestLocalDispatcher_RunsJobs(t *testing.T) {
	idx := &recordingIndexer{}
	d := NewLocalDispatcher(context.Background(), idx, 1)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, d.Dispatch(context.Background(), IndexJob{DocID: id}))
	}
	d.Wait()
	assert.ElementsMatch(t, []string{"a", "b", "c"}, idx.ids)
}
