package metadata

import (
	"context"
	"fmt"

	"github.com/7mcool/Vortex-Automator/model"
	"github.com/sashabaranov/go-openai"
)

const (
	deepSeekBaseURL = "https://api.deepseek.com/v1"
	deepSeekModel   = "deepseek-chat"

	// transcriptPrefixLength bounds how much transcript is sent along; the
	// opening of a video is enough to derive a title and description.
	transcriptPrefixLength = 2000
)

const generatePrompt = `You are a YouTube publishing expert. For the video with this transcription:
%s

Video duration: %.1f minutes

Instructions:
1. Generate a TITLE in UPPERCASE (max 60 characters)
2. Short description (max 2 lines) with at most 3 hashtags
3. If the duration exceeds 5 minutes, generate manual chapters (roughly one per minute)
4. Answer with JSON only, in this exact shape:
{
    "title": "TITLE",
    "description": "Description...",
    "manualChapters": ["00:00 - Chapter 1"],
    "disableAutoChapters": true
}`

// DeepSeek generates publishing metadata through the DeepSeek chat API,
// which speaks the OpenAI wire protocol.
type DeepSeek struct {
	client *openai.Client
}

func NewDeepSeek(apiKey string) *DeepSeek {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = deepSeekBaseURL

	return &DeepSeek{client: openai.NewClientWithConfig(cfg)}
}

// Generate asks the service for title, description and chapters, then
// normalizes the answer. Transport and parse failures are returned to the
// caller, which owns the retry and fallback policy.
func (d *DeepSeek) Generate(ctx context.Context, transcript string, durationMin float64) (model.Metadata, error) {
	prefix := transcript
	if len(prefix) > transcriptPrefixLength {
		prefix = prefix[:transcriptPrefixLength] + "[...]"
	}

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: deepSeekModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(generatePrompt, prefix, durationMin),
			},
		},
		MaxTokens: 800,
	})
	if err != nil {
		return model.Metadata{}, fmt.Errorf("generate metadata: %w", err)
	}
	if len(resp.Choices) == 0 {
		return model.Metadata{}, fmt.Errorf("generate metadata: empty completion")
	}

	parsed, err := parseResponse(resp.Choices[len(resp.Choices)-1].Message.Content)
	if err != nil {
		return model.Metadata{}, err
	}

	return normalize(parsed, durationMin), nil
}
