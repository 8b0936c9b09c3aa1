package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"BotDesk/pkg/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLiveEngine(hub *ws.Hub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewLiveHandler(hub, nil)
	r.GET("/api/live/:tenant", h.Stream)
	r.GET("/api/live/:tenant/ws", h.Socket)
	return r
}

// closeNotifyRecorder gin 的 Stream 需要 http.CloseNotifier
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool { return r.closed }

func waitSubscribers(t *testing.T, hub *ws.Hub, tenant string, n int) {
	require.Eventually(t, func() bool { return hub.Count(tenant) == n }, 2*time.Second, 10*time.Millisecond)
}

func TestStream_DeliversTenantEvents(t *testing.T) {
	hub := ws.NewHub()
	r := newLiveEngine(hub)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/live/bn9", nil).WithContext(ctx)
	w := &closeNotifyRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}

	done := make(chan struct{})
	go func() {
		r.ServeHTTP(w, req)
		close(done)
	}()

	waitSubscribers(t, hub, "bn9", 1)
	hub.Send("bn9", []byte(`{"type":"case:new","tenant":"bn9"}`))
	hub.Send("other", []byte(`{"type":"case:new","tenant":"other"}`))
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	assert.Contains(t, body, "event:ready")
	assert.Contains(t, body, `data:{"type":"case:new","tenant":"bn9"}`)
	assert.NotContains(t, body, `"tenant":"other"`)
	assert.Equal(t, 0, hub.Count("bn9"))
}

func TestSocket_DeliversTenantEvents(t *testing.T) {
	hub := ws.NewHub()
	srv := httptest.NewServer(newLiveEngine(hub))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/live/bn9/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	waitSubscribers(t, hub, "bn9", 1)
	hub.Send("bn9", []byte(`{"type":"bot:verified"}`))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"type":"bot:verified"}`, string(msg))

	require.NoError(t, conn.Close())
	waitSubscribers(t, hub, "bn9", 0)
}
