package chat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// DefaultAPIURL is the hosted Mistral instruct endpoint used when the
// config does not override it.
const DefaultAPIURL = "https://api-inference.huggingface.co/models/mistralai/Mistral-7B-Instruct-v0.1"

// DefaultTimeout bounds the upstream call; the hosted endpoint has no
// timeout of its own.
const DefaultTimeout = 30 * time.Second

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Gateway forwards free text to a hosted instruction-tuned language
// model and returns the cleaned completion.
type Gateway interface {
	Ask(ctx context.Context, query string) (string, error)
}

// UpstreamChatError is the single failure variant for the chat call:
// non-200 status, network error or unparseable body. Status is zero
// when no HTTP response was received.
type UpstreamChatError struct {
	Status int
	Body   string
}

func (e *UpstreamChatError) Error() string {
	return fmt.Sprintf("Error %d: %s", e.Status, e.Body)
}

// Mistral calls the Hugging Face inference API with bearer auth.
type Mistral struct {
	apiURL  string
	token   string
	timeout time.Duration
}

// NewMistral builds a gateway; empty apiURL and zero timeout fall
// back to the defaults.
func NewMistral(apiURL, token string, timeout time.Duration) *Mistral {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Mistral{apiURL: apiURL, token: token, timeout: timeout}
}

// Ask wraps the query in the instruct template, posts it upstream and
// returns the completion with the echoed prompt stripped. All failure
// modes surface as *UpstreamChatError.
func (m *Mistral) Ask(ctx context.Context, query string) (string, error) {
	formatted := fmt.Sprintf("<s>[INST] %s [/INST]", query)

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var (
		code int
		body string
	)
	err := gout.POST(m.apiURL).
		WithContext(ctx).
		SetHeader(gout.H{
			"Authorization": "Bearer " + m.token,
			"Content-Type":  "application/json",
		}).
		SetJSON(gout.H{
			"inputs": formatted,
			"parameters": gout.H{
				"temperature":    0.7,
				"max_new_tokens": 300,
			},
		}).
		Code(&code).
		BindBody(&body).
		Do()
	if err != nil {
		zap.L().Warn("chat: upstream call failed", zap.Error(err))
		return "", &UpstreamChatError{Body: err.Error()}
	}
	if code != http.StatusOK {
		zap.L().Warn("chat: upstream status", zap.Int("status", code))
		return "", &UpstreamChatError{Status: code, Body: body}
	}

	var out []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.UnmarshalFromString(body, &out); err != nil || len(out) == 0 {
		return "", &UpstreamChatError{Status: code, Body: body}
	}

	text := strings.Replace(out[0].GeneratedText, formatted, "", 1)
	return strings.TrimSpace(text), nil
}
