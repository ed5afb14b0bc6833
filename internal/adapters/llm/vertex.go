package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/stoalabs/ratebot/internal/domain"
)

// VertexClient implements domain.CompletionClient on Vertex AI (Gemini).
type VertexClient struct {
	client    *genai.Client
	modelName string
}

func NewVertexClient(ctx context.Context, projectID, location, modelName string) (*VertexClient, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("vertex: project and location are required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &VertexClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// Complete sends the transcript; system messages become the model's system
// instruction, user/assistant turns become the conversation contents.
func (v *VertexClient) Complete(ctx context.Context, transcript []domain.Message) (string, error) {
	var system string
	var contents []*genai.Content

	for _, m := range transcript {
		switch m.Role {
		case domain.RoleSystem:
			system = m.Content
		case domain.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	temp := float32(0.7)
	cfg := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	res, err := v.client.Models.GenerateContent(ctx, v.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("vertex generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("vertex returned empty text")
	}
	return text, nil
}
