package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/gatherly/api/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// AssistService rewrites event descriptions with a chat model. Purely a
// convenience surface; nothing downstream depends on it.
type AssistService struct {
	client *openai.Client
	model  string
}

func NewAssistService(apiKey, model string) *AssistService {
	return &AssistService{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (as *AssistService) ImproveDescription(ctx context.Context, title, description string) (string, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return "", models.NewValidationError("title", "missing 'title' or title is empty")
	}

	var userPrompt string
	if description != "" {
		userPrompt = fmt.Sprintf(
			"I'm organizing an event. Here is the event title and a rough description. "+
				"Please rewrite the description to make it more appealing, the description should be about 3 sentences long:\n\n"+
				"Title: %s\nDescription: %s\n", title, description)
	} else {
		userPrompt = fmt.Sprintf(
			"I'm organizing an event. I only have an event title so far. "+
				"Please propose a good description for it, the description should be about 3 sentences long:\n\n"+
				"Title: %s\n", title)
	}

	resp, err := as.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: as.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a helpful writing assistant."},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
