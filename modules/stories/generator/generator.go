package generator

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	llmsdk "github.com/hoangvvo/llm-sdk/sdk-go"
	"github.com/hoangvvo/llm-sdk/sdk-go/openai"
	"github.com/narrativelabs/storyforge/common/errs"
	"github.com/samber/lo"
)

const (
	DefaultBaseURL = "https://api.deepseek.com/v1"
	DefaultModel   = "deepseek-chat"

	// maxTokens keeps generated segments concise.
	maxTokens uint32 = 500

	// temperature adds some randomness for creativity.
	temperature float64 = 0.8

	systemPrompt = "You are a creative storyteller specializing in interactive narratives that evolve over time. Create engaging story segments that can be built upon."

	promptTemplate = `Create a compelling and engaging story segment based on the following prompt.
Make it concise but impactful, focusing on advancing the narrative in an interesting way.
Keep the tone consistent and ensure it can be continued later.

Prompt: `
)

type Config struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// Contract is the stable surface the lifecycle coordinator generates text
// through, independent of the provider behind it.
type Contract interface {
	// Generate turns a free-text prompt into a new narrative segment. All
	// failures are reported as errs.GenerationError.
	Generate(ctx context.Context, prompt string) (string, error)
}

type Generator struct {
	model llmsdk.LanguageModel
}

var _ Contract = (*Generator)(nil)

// New creates a Generator backed by an OpenAI-compatible chat-completions
// provider. Fails fast when no provider credential is configured.
func New(conf Config) (*Generator, error) {
	if conf.APIKey == "" {
		return nil, errors.Wrap(errs.GenerationError, "generator api key is not configured")
	}
	baseURL := conf.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := conf.Model
	if model == "" {
		model = DefaultModel
	}
	return &Generator{
		model: openai.NewOpenAIChatModel(model, openai.OpenAIChatModelOptions{
			BaseURL: baseURL,
			APIKey:  conf.APIKey,
		}),
	}, nil
}

// NewWithModel creates a Generator over an already-constructed language
// model.
func NewWithModel(model llmsdk.LanguageModel) *Generator {
	return &Generator{model: model}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := g.model.Generate(ctx, &llmsdk.LanguageModelInput{
		SystemPrompt: lo.ToPtr(systemPrompt),
		Messages: []llmsdk.Message{
			llmsdk.NewUserMessage(
				llmsdk.NewTextPart(promptTemplate + prompt),
			),
		},
		MaxTokens:   lo.ToPtr(maxTokens),
		Temperature: lo.ToPtr(temperature),
	})
	if err != nil {
		return "", errors.Wrapf(errs.GenerationError, "provider call failed: %v", err)
	}

	var sb strings.Builder
	for _, part := range response.Content {
		if part.TextPart != nil {
			sb.WriteString(part.TextPart.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.Wrap(errs.GenerationError, "provider returned no text content")
	}
	return text, nil
}
