// Package vision talks to multimodal LLM providers for two jobs: designing a
// form configuration from brand materials and a plain-language brief, and
// detecting input areas on an existing form template image.
package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/mistral"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o"

// Client wraps one vision-capable LLM provider.
type Client struct {
	provider string
	model    string
	llm      llms.Model
	log      *logrus.Logger
}

// NewClient builds a client for the named provider ("openai", "anthropic",
// "ollama" or "mistral"). API keys come from the provider's usual
// environment variable.
func NewClient(provider, model string, log *logrus.Logger) (*Client, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if model == "" {
		model = DefaultModel
	}

	var llm llms.Model
	var err error

	switch strings.ToLower(provider) {
	case "", "openai":
		provider = "openai"
		llm, err = newOpenAIClient(model)
	case "anthropic":
		llm, err = newAnthropicClient(model)
	case "ollama":
		llm, err = newOllamaClient(model)
	case "mistral":
		llm, err = newMistralClient(model)
	default:
		return nil, fmt.Errorf("vision: unsupported provider: %s", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("vision: creating %s client: %w", provider, err)
	}

	log.WithFields(logrus.Fields{
		"provider": provider,
		"model":    model,
	}).Debug("vision client ready")

	return &Client{provider: provider, model: model, llm: llm, log: log}, nil
}

func newOpenAIClient(model string) (llms.Model, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	opts := []openai.Option{
		openai.WithModel(model),
		openai.WithToken(apiKey),
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	return openai.New(opts...)
}

func newAnthropicClient(model string) (llms.Model, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}
	return anthropic.New(
		anthropic.WithModel(model),
		anthropic.WithToken(apiKey),
	)
}

func newOllamaClient(model string) (llms.Model, error) {
	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		host = "http://127.0.0.1:11434"
	}
	return ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(host),
	)
}

func newMistralClient(model string) (llms.Model, error) {
	apiKey := os.Getenv("MISTRAL_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("MISTRAL_API_KEY is not set")
	}
	return mistral.New(
		mistral.WithModel(model),
		mistral.WithAPIKey(apiKey),
	)
}

// imagePart wraps raw image bytes in the content form the provider expects.
// OpenAI-compatible APIs and Mistral want data URIs, the rest take binary
// parts.
func (c *Client) imagePart(img []byte) llms.ContentPart {
	mime := http.DetectContentType(img)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/png"
	}
	if c.provider == "openai" || c.provider == "mistral" {
		uri := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img)
		return llms.ImageURLPart(uri)
	}
	return llms.BinaryPart(mime, img)
}

// generate sends one human message composed of images plus a text prompt and
// returns the raw completion text.
func (c *Client) generate(ctx context.Context, system, prompt string, images [][]byte, opts ...llms.CallOption) (string, error) {
	parts := make([]llms.ContentPart, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, c.imagePart(img))
	}
	parts = append(parts, llms.TextPart(prompt))

	msgs := []llms.MessageContent{}
	if system != "" {
		msgs = append(msgs, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		})
	}
	msgs = append(msgs, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: parts,
	})

	completion, err := c.llm.GenerateContent(ctx, msgs, opts...)
	if err != nil {
		return "", fmt.Errorf("vision: %s completion: %w", c.provider, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("vision: %s returned no choices", c.provider)
	}
	return completion.Choices[0].Content, nil
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// parseJSON unmarshals a model response into v, tolerating markdown fences
// and prose around the JSON object.
func parseJSON(raw string, v any) error {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "` \n")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSpace(s)

	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}
	if m := jsonObjectPattern.FindString(raw); m != "" {
		return json.Unmarshal([]byte(m), v)
	}
	return fmt.Errorf("vision: response is not JSON: %.120s", raw)
}
