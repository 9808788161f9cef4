package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
)

// PushClient 推送网关客户端
// 站内消息落邮箱之后，可以再转发一份给外部推送网关（App 厂商通道）。
// 纯尽力而为：网关没配或推送失败都只记日志，不影响邮箱写入
type PushClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// pushRequest 推送网关请求体
type pushRequest struct {
	Recipient string `json:"recipient"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Payload   string `json:"payload,omitempty"`
}

// pushResponse 推送网关响应
type pushResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewPushClient 创建推送客户端；gatewayURL 为空时返回 nil（推送关闭）
func NewPushClient(gatewayURL string, logger *zap.Logger) *PushClient {
	if gatewayURL == "" {
		return nil
	}
	client := resty.New().
		SetBaseURL(gatewayURL).
		SetTimeout(5 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &PushClient{
		httpClient: client,
		logger:     logger,
	}
}

// Forward 把一条站内消息转发给推送网关
func (c *PushClient) Forward(ctx context.Context, msg *domain.Notification) error {
	var response pushResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(pushRequest{
			Recipient: msg.RecipientContact,
			Kind:      msg.Kind,
			Title:     msg.Title,
			Body:      msg.Body,
			Payload:   msg.Payload,
		}).
		SetResult(&response).
		Post("/push")
	if err != nil {
		return fmt.Errorf("push gateway call failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("push gateway returned HTTP %d", resp.StatusCode())
	}
	if response.Code != 0 && response.Code != 200 {
		return fmt.Errorf("push gateway rejected message: code=%d msg=%s", response.Code, response.Message)
	}
	return nil
}
