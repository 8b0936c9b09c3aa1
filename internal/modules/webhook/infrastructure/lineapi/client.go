package lineapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"BotDesk/pkg/zlog"

	"go.uber.org/zap"
)

const maxTextLen = 5000

// Client LINE Messaging API 的最小子集
type Client interface {
	// Reply 非 2xx 返回 false, nil；网络错误返回 error
	Reply(ctx context.Context, replyToken, accessToken, text string) (bool, error)
	BotInfo(ctx context.Context, accessToken string) (*BotInfoResult, error)
}

type BotInfoResult struct {
	OK     bool                   `json:"ok"`
	Status int                    `json:"status"`
	Info   map[string]interface{} `json:"info"`
}

type httpClient struct {
	baseURL string
	hc      *http.Client
}

func NewClient(baseURL string, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type replyBody struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

func (c *httpClient) Reply(ctx context.Context, replyToken, accessToken, text string) (bool, error) {
	if replyToken == "" || accessToken == "" {
		return false, nil
	}
	body, err := json.Marshal(replyBody{
		ReplyToken: replyToken,
		Messages:   []textMessage{{Type: "text", Text: truncate(text, maxTextLen)}},
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/bot/message/reply", bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return false, fmt.Errorf("line reply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		zlog.Warn("line reply rejected", zap.Int("status", resp.StatusCode), zap.String("body", string(msg)))
		return false, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return true, nil
}

func (c *httpClient) BotInfo(ctx context.Context, accessToken string) (*BotInfoResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/bot/info", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("line bot info: %w", err)
	}
	defer resp.Body.Close()

	out := &BotInfoResult{
		OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status: resp.StatusCode,
		Info:   map[string]interface{}{},
	}
	_ = json.NewDecoder(resp.Body).Decode(&out.Info)
	return out, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
