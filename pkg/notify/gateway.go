package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"liyu1981.xyz/vessel-resource-service/pkg/common"
)

type GatewayConfig struct {
	Endpoint   string
	Token      string
	Timeout    time.Duration
	MaxRetries int
	RetryWait  time.Duration
}

// HTTPGateway posts notifications to a JSON messaging gateway. It serves as both the email and
// the SMS sender.
type HTTPGateway struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

type emailRequest struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

type smsRequest struct {
	To   []string `json:"to"`
	Text string   `json:"text"`
}

func NewHTTPGateway(cfg GatewayConfig) *HTTPGateway {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	retryWait := cfg.RetryWait
	if retryWait == 0 {
		retryWait = 500 * time.Millisecond
	}

	httpClient := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(retryWait * 8).
		AddRetryCondition(retryCondition)
	if cfg.Token != "" {
		httpClient.SetAuthToken(cfg.Token)
	}

	return &HTTPGateway{
		httpClient: httpClient,
		logger: common.GetLoggerWith(
			common.LoggerNameNotifier,
			zap.String(common.LoggerFieldCategory, common.LoggerCategoryNotify),
		),
	}
}

// retry on transport errors and 5xx only
func retryCondition(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp != nil && resp.StatusCode() >= 500
}

func (g *HTTPGateway) post(ctx context.Context, path string, body any) error {
	resp, err := g.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		g.logger.Warn("Gateway rejected notification",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
			zap.String("body", string(resp.Body())),
		)
		return fmt.Errorf("gateway returned status %d for %s", resp.StatusCode(), path)
	}
	return nil
}

func (g *HTTPGateway) SendEmail(ctx context.Context, recipients []string, content Content) error {
	return g.post(ctx, "/email", emailRequest{To: recipients, Subject: content.Subject, Body: content.Body})
}

func (g *HTTPGateway) SendSMS(ctx context.Context, recipients []string, content Content) error {
	return g.post(ctx, "/sms", smsRequest{To: recipients, Text: content.Subject})
}
