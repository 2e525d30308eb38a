package intake

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/lexflowhq/lexflow/internal/llm"
)

// Extractor pulls structured intake facts out of conversation text using an
// LLM. It is a best-effort collaborator: on any failure it degrades to an
// all-false context instead of returning an error, so the conversation can
// continue with clarifying questions.
type Extractor struct {
	provider llm.Provider
	model    string
}

// NewExtractor creates an extractor backed by the given provider.
func NewExtractor(provider llm.Provider, model string) *Extractor {
	return &Extractor{provider: provider, model: model}
}

const extractionSystemPrompt = `You are a legal-intake fact extraction engine. Given a conversation between a prospective client and an intake assistant, extract the client's details.

You MUST respond with valid JSON matching this schema:
{
  "name": "client's full name, or empty string",
  "legal_issue": "short description of the legal problem, or empty string",
  "email": "client's email address, or empty string",
  "phone": "client's phone number, or empty string",
  "location": "city/state or jurisdiction mentioned, or empty string",
  "opposing_party": "the other party in the dispute, or empty string"
}

Rules:
- Only extract details the client actually stated; never invent values
- Use empty strings for anything not yet mentioned
- The legal_issue should be a short phrase such as "divorce and custody" or "breach of contract"`

// Extract builds a fresh conversation context from transcript text.
func (e *Extractor) Extract(ctx context.Context, transcript string, matterCreated bool) Context {
	if e.provider == nil || strings.TrimSpace(transcript) == "" {
		return EmptyContext(matterCreated)
	}

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: extractionSystemPrompt},
			{Role: llm.RoleUser, Content: "## Conversation\n" + transcript + "\n\nExtract the client's intake facts."},
		},
		MaxTokens:   1024,
		Temperature: 0.1,
		JSONMode:    true,
	})
	if err != nil {
		log.Printf("intake: fact extraction failed, degrading to empty context: %v", err)
		return EmptyContext(matterCreated)
	}

	facts, err := parseFacts(resp.Content)
	if err != nil {
		log.Printf("intake: unusable extraction response, degrading to empty context: %v", err)
		return EmptyContext(matterCreated)
	}

	return BuildContext(facts, transcript, matterCreated)
}

// parseFacts salvages the JSON object from the model response, which may be
// wrapped in prose or markdown fences.
func parseFacts(content string) (Facts, error) {
	jsonStr := content
	if idx := strings.Index(content, "{"); idx >= 0 {
		jsonStr = content[idx:]
	}
	if idx := strings.LastIndex(jsonStr, "}"); idx >= 0 {
		jsonStr = jsonStr[:idx+1]
	}

	var f Facts
	if err := json.Unmarshal([]byte(jsonStr), &f); err != nil {
		return Facts{}, err
	}

	f.Name = strings.TrimSpace(f.Name)
	f.LegalIssue = strings.TrimSpace(f.LegalIssue)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Location = strings.TrimSpace(f.Location)
	f.OpposingParty = strings.TrimSpace(f.OpposingParty)
	return f, nil
}
