package assistant

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/plantee/storefront/config"
)

const (
	promptPrefix = "You are a helpful plant assistant. Your job is to provide information about plants, " +
		"gardening, and plant care. Only answer questions related to plants. If asked about anything " +
		"else, politely redirect the conversation to plants. User query: "

	// FallbackReply is returned when the upstream answers without candidates.
	FallbackReply = "I'm sorry, I couldn't process your request. Please try again."
	// UnavailableReply is what callers show when the upstream cannot be reached.
	UnavailableReply = "Sorry, I'm having trouble connecting right now. Please try again later."
)

var (
	ErrNotConfigured = errors.New("assistant API key not configured")
	ErrEmptyMessage  = errors.New("message is required")
	ErrUpstream      = errors.New("assistant upstream failure")
)

// Client answers plant care questions
type Client interface {
	// Ask sends one user message and returns the assistant reply
	Ask(ctx context.Context, message string) (string, error)
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// GeminiClient calls the generateContent endpoint of the generative
// language API.
type GeminiClient struct {
	baseURL string
	model   string
	apiKey  string
	timeout time.Duration
}

var _ Client = (*GeminiClient)(nil)

func NewGeminiClient(cfg config.AssistantConfig) *GeminiClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &GeminiClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		timeout: timeout,
	}
}

func (c *GeminiClient) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
}

func (c *GeminiClient) Ask(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	req := generateRequest{Contents: []content{{Parts: []part{{Text: promptPrefix + message}}}}}
	var resp generateResponse
	var code int
	err := gout.POST(c.endpoint()).
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetQuery(gout.H{"key": c.apiKey}).
		SetJSON(req).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		zap.L().Error("assistant request failed", zap.String("namespace", "assistant"), zap.Error(err))
		return "", errors.Wrap(ErrUpstream, err.Error())
	}
	if code != http.StatusOK {
		detail := http.StatusText(code)
		if resp.Error != nil && resp.Error.Message != "" {
			detail = resp.Error.Message
		}
		zap.L().Warn("assistant upstream returned error",
			zap.String("namespace", "assistant"),
			zap.Int("status", code),
			zap.String("detail", detail))
		return "", errors.Wrapf(ErrUpstream, "status %d: %s", code, detail)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return FallbackReply, nil
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
