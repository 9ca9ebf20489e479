package rag

import "encoding/json"

// 向量库操作结果的状态标签。
const (
	StatusCreated  = "created"
	StatusExists   = "exists"
	StatusError    = "error"
	StatusDisabled = "disabled"
)

// DocPath 是传给 RAG 服务的检索范围。协议约定：单个路径序列化为字符串，
// 多个路径序列化为字符串数组。
type DocPath []string

// MarshalJSON 实现上述单个/多个的序列化约定。
func (p DocPath) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(p[0])
	}
	return json.Marshal([]string(p))
}

// HistoryItem 是发送给 RAG 服务的一轮历史问答。
type HistoryItem struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

// ChatRequest 是 POST /chat 的请求体。
type ChatRequest struct {
	Message        string        `json:"message"`
	DocumentPath   DocPath       `json:"document_path"`
	ConversationID string        `json:"conversation_id"`
	History        []HistoryItem `json:"history,omitempty"`
}

// ChatResponse 是 POST /chat 的响应体。不同版本的 RAG 服务将回答放在
// answer 或 response 字段中，取第一个非空者。
type ChatResponse struct {
	Answer   string          `json:"answer"`
	Response string          `json:"response"`
	Sources  json.RawMessage `json:"sources,omitempty"`
}

// Text 返回响应中的回答文本，answer 优先于 response。
func (r *ChatResponse) Text() string {
	if r.Answer != "" {
		return r.Answer
	}
	return r.Response
}

// VectorStoreRequest 是 POST /vectorstores 的请求体。
type VectorStoreRequest struct {
	DocumentPath string `json:"document_path"`
	ForceRebuild bool   `json:"force_rebuild"`
}

// VectorStoreMetadata 是向量库构建结果附带的元数据。
type VectorStoreMetadata struct {
	DocumentPath   string  `json:"document_path"`
	DocumentCount  int     `json:"document_count"`
	ChunkCount     int     `json:"chunk_count"`
	CreatedAt      float64 `json:"created_at"`
	EmbeddingModel string  `json:"embedding_model"`
}

// VectorStoreResult 是向量库操作的带标签结果。
// Status 取值: created / exists / error / disabled。
type VectorStoreResult struct {
	Status   string               `json:"status"`
	Message  string               `json:"message"`
	Path     string               `json:"path,omitempty"`
	Metadata *VectorStoreMetadata `json:"metadata,omitempty"`
	Error    string               `json:"error,omitempty"`
}

func disabledResult() *VectorStoreResult {
	return &VectorStoreResult{Status: StatusDisabled, Message: "RAG服务已禁用"}
}

func errorResult(message string) *VectorStoreResult {
	return &VectorStoreResult{Status: StatusError, Message: message, Error: message}
}
