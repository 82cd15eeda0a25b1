package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/qri-io/jsonschema"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/prepcall-api/internal/model"
)

// LLMClient wraps two OpenAI-compatible chat-completion upstreams: the
// OpenAI API itself and OpenRouter for the alternative models.
type LLMClient struct {
	openAIKey      string
	openAIBase     string
	openRouterKey  string
	openRouterBase string
	client         *http.Client
}

func NewLLMClient(openAIKey, openAIBase, openRouterKey, openRouterBase string) *LLMClient {
	return &LLMClient{
		openAIKey:      openAIKey,
		openAIBase:     openAIBase,
		openRouterKey:  openRouterKey,
		openRouterBase: openRouterBase,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ── Chat completions request/response types ───────────

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// ── Model selection ───────────────────────────────────

// upstream pairs a provider endpoint with a concrete model id
type upstream struct {
	baseURL string
	apiKey  string
	modelID string
}

// resolve maps the user-facing model selector to a (provider, model) pair.
// Unknown selectors fall back to the OpenAI default.
func (c *LLMClient) resolve(selector string) upstream {
	switch selector {
	case model.ModelGemini:
		return upstream{c.openRouterBase, c.openRouterKey, "google/gemini-2.0-flash-exp:free"}
	case model.ModelDeepSeek:
		return upstream{c.openRouterBase, c.openRouterKey, "deepseek/deepseek-chat"}
	case model.ModelChatGPT:
		return upstream{c.openAIBase, c.openAIKey, "gpt-4o-mini"}
	default:
		return upstream{c.openAIBase, c.openAIKey, "gpt-4o-mini"}
	}
}

// chatParams tunes a single completion call
type chatParams struct {
	selector    string // user-facing model name; empty means default
	system      string
	user        string
	temperature float64
	maxTokens   int
}

// complete runs one chat completion and returns the raw assistant text
func (c *LLMClient) complete(ctx context.Context, p chatParams) (string, error) {
	up := c.resolve(p.selector)
	if up.apiKey == "" {
		return "", fmt.Errorf("LLM API key not configured for model %q", p.selector)
	}

	msgs := []chatMessage{}
	if p.system != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: p.system})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: p.user})

	reqBody := chatRequest{
		Model:       up.modelID,
		Messages:    msgs,
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", up.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+up.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling chat completions: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completions returned %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("parsing chat response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	log.Debug().
		Str("model", up.modelID).
		Int("promptTokens", chatResp.Usage.PromptTokens).
		Int("completionTokens", chatResp.Usage.CompletionTokens).
		Msg("Chat completion finished")

	return chatResp.Choices[0].Message.Content, nil
}

// completeJSON runs a completion, strips any markdown fencing, validates the
// reply against the given schema and unmarshals it into out. A nil schema
// skips validation.
func (c *LLMClient) completeJSON(ctx context.Context, p chatParams, schema *jsonschema.Schema, out any) error {
	text, err := c.complete(ctx, p)
	if err != nil {
		return err
	}

	cleaned := []byte(stripCodeFences(strings.TrimSpace(text)))

	if schema != nil {
		keyErrs, err := schema.ValidateBytes(ctx, cleaned)
		if err != nil {
			return fmt.Errorf("model reply is not valid JSON: %w (raw: %s)", err, truncateStr(text, 500))
		}
		if len(keyErrs) > 0 {
			return fmt.Errorf("model reply failed schema validation: %s (raw: %s)", keyErrs[0].Message, truncateStr(text, 500))
		}
	}

	if err := json.Unmarshal(cleaned, out); err != nil {
		return fmt.Errorf("parsing model reply: %w (raw: %s)", err, truncateStr(text, 500))
	}

	return nil
}

// mustSchema compiles a JSON schema literal at init time
func mustSchema(raw string) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(raw), rs); err != nil {
		panic(fmt.Sprintf("bad schema literal: %v", err))
	}
	return rs
}

// stripCodeFences removes markdown ```json ... ``` wrappers
func stripCodeFences(text string) string {
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx != -1 {
			text = text[idx+1:]
		}
		if idx := strings.LastIndex(text, "```"); idx != -1 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	return text
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
