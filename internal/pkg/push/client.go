package push

import (
	"context"
	"fmt"
	"maurizone/internal/api/config"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client 离线推送服务客户端
type Client struct {
	http *resty.Client
}

type pushRequest struct {
	UserID uint64 `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Data   string `json:"data,omitempty"`
}

func NewClient(cfg config.PushConfig) *Client {
	c := resty.New().
		SetBaseURL(cfg.URL).
		SetHeader("Authorization", "Bearer "+cfg.ApiKey).
		SetTimeout(5 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &Client{http: c}
}

// Push 推送一条离线通知，非 2xx 视为失败
func (s *Client) Push(ctx context.Context, userID uint64, title, body, data string) error {
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(pushRequest{UserID: userID, Title: title, Body: body, Data: data}).
		Post("/v1/push")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("push provider returned %d", resp.StatusCode())
	}
	return nil
}
