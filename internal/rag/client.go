package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"zhipan/internal/config"
	"zhipan/pkg/circuitbreaker"
	"zhipan/pkg/httpclient"
	"zhipan/pkg/logger"
)

// ErrDisabled 表示 RAG 服务在配置中被禁用。
var ErrDisabled = errors.New("RAG服务已禁用")

// ErrInvalidReply 表示 RAG 服务返回了 2xx 但响应中没有回答字段。
var ErrInvalidReply = errors.New("RAG 响应缺少 answer/response 字段")

// Client 是外部 RAG 服务的 HTTP 客户端。实例由构造函数注入，
// 不使用全局单例。
type Client struct {
	baseURL     string
	enabled     bool
	maxAttempts int
	delay       time.Duration
	http        *httpclient.Client
	log         *logger.Logger
}

// NewClient 根据配置创建一个 RAG 客户端。
func NewClient(cfg *config.RagConfig, breaker circuitbreaker.CircuitBreaker) *Client {
	maxAttempts := cfg.Retry.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		enabled:     cfg.Enabled,
		maxAttempts: maxAttempts,
		delay:       time.Duration(cfg.Retry.DelayMillis) * time.Millisecond,
		http: httpclient.New(httpclient.Options{
			ConnectTimeout: time.Duration(cfg.ConnectTimeout) * time.Millisecond,
			ReadTimeout:    time.Duration(cfg.ReadTimeout) * time.Millisecond,
			Breaker:        breaker,
		}),
		log: logger.New("rag_client"),
	}
}

// Enabled 报告 RAG 服务是否启用。
func (c *Client) Enabled() bool {
	return c.enabled
}

// Chat 调用 POST /chat 获取回答。不做重试，失败的吸收由聊天服务负责。
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if !c.enabled {
		return nil, ErrDisabled
	}

	var resp ChatResponse
	if err := c.postJSON(ctx, "/chat", req, &resp); err != nil {
		return nil, err
	}
	if resp.Text() == "" {
		return nil, ErrInvalidReply
	}
	return &resp, nil
}

// BuildVectorStore 调用 POST /vectorstores 为用户构建向量库。
// 网络传输错误按配置重试；应用层错误响应不重试。返回带标签的结果而非错误。
func (c *Client) BuildVectorStore(ctx context.Context, userID uint, forceRebuild bool) *VectorStoreResult {
	if !c.enabled {
		c.log.Warn("RAG服务已禁用，跳过向量存储构建")
		return disabledResult()
	}

	req := &VectorStoreRequest{
		DocumentPath: fmt.Sprintf("user_%d", userID),
		ForceRebuild: forceRebuild,
	}
	c.log.WithUser(userID).Infof("调用RAG API构建向量存储，强制重建: %v", forceRebuild)

	var result VectorStoreResult
	if err := c.withRetry(ctx, "构建向量存储", userID, func() error {
		return c.postJSON(ctx, "/vectorstores", req, &result)
	}); err != nil {
		return errorResult("构建向量存储失败: " + err.Error())
	}

	c.log.WithUser(userID).Infof("向量存储构建完成，状态: %s", result.Status)
	return &result
}

// ClearCache 调用 POST /vectorstores/clear-cache 清除用户的向量库缓存。
func (c *Client) ClearCache(ctx context.Context, userID uint) error {
	if !c.enabled {
		c.log.Warn("RAG服务已禁用，跳过缓存清除")
		return nil
	}

	req := map[string]string{"document_path": fmt.Sprintf("user_%d", userID)}
	return c.withRetry(ctx, "清除向量存储缓存", userID, func() error {
		return c.postJSON(ctx, "/vectorstores/clear-cache", req, nil)
	})
}

// ClearConversation 通知 RAG 服务丢弃其服务端的会话状态。
func (c *Client) ClearConversation(ctx context.Context, sessionID uint) error {
	if !c.enabled {
		return nil
	}
	path := fmt.Sprintf("/conversations/session_%d/clear", sessionID)
	return c.postJSON(ctx, path, nil, nil)
}

// Healthy 调用 GET /health 检查 RAG 服务的健康状况。
func (c *Client) Healthy(ctx context.Context) bool {
	if !c.enabled {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warnf("RAG服务健康检查失败: %v", err)
		return false
	}
	defer resp.Body.Close()

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}
	return body.Status == "healthy"
}

// withRetry 执行 fn 最多 maxAttempts 次，两次之间固定间隔。
// 只有网络传输错误会触发重试；应用层错误（非 2xx 响应）直接返回。
func (c *Client) withRetry(ctx context.Context, operation string, userID uint, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !isTransportError(err) {
			c.log.WithUser(userID).Errorf("%s时发生非网络错误: %v", operation, err)
			return err
		}

		lastErr = err
		c.log.WithUser(userID).Warnf("%s失败，尝试次数: %d/%d, 错误: %v", operation, attempt, c.maxAttempts, err)

		if attempt < c.maxAttempts {
			select {
			case <-time.After(c.delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	c.log.WithUser(userID).Errorf("%s失败，已达最大重试次数: %v", operation, lastErr)
	return lastErr
}

// apiError 表示 RAG 服务返回的非 2xx 响应，不参与重试。
type apiError struct {
	code int
	body string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("RAG 服务返回状态 %d: %s", e.code, e.body)
}

// isTransportError 区分可重试的传输错误与应用层错误。
func isTransportError(err error) bool {
	var ae *apiError
	if errors.As(err, &ae) {
		return false
	}
	var se *httpclient.StatusError
	if errors.As(err, &se) {
		return false
	}
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return false
	}
	return true
}

// postJSON 发送一个 JSON POST 请求并将 2xx 响应解码到 out（可为 nil）。
func (c *Client) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &apiError{code: resp.StatusCode, body: string(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("解码响应失败: %w", err)
	}
	return nil
}
