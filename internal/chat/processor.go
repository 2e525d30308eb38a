package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/lexflowhq/lexflow/internal/intake"
	"github.com/lexflowhq/lexflow/internal/llm"
	"github.com/lexflowhq/lexflow/internal/matter"
	"github.com/lexflowhq/lexflow/internal/toolcall"
)

// Conversational fallbacks for directive failures. The model's broken
// output is logged (redacted), never shown to the client.
const (
	promptMalformed   = "I wasn't able to process that step. Could you tell me a bit more about your situation?"
	promptUnknownTool = "I can't do that directly, but I can keep collecting your intake details or connect you with a lawyer."
	promptNotReady    = "Before I can open a matter I still need a few details. Could you share your name, the legal issue, and an email or phone number?"
)

// Processor runs one intake conversation turn end to end: transcript,
// context extraction, state evaluation, reply generation, and tool-call
// dispatch into the matter workflow.
type Processor struct {
	store     *Store
	provider  llm.Provider
	model     string
	extractor *intake.Extractor
	matters   *matter.Manager
}

// NewProcessor wires a Processor from its collaborators.
func NewProcessor(store *Store, provider llm.Provider, model string, matters *matter.Manager) *Processor {
	return &Processor{
		store:     store,
		provider:  provider,
		model:     model,
		extractor: intake.NewExtractor(provider, model),
		matters:   matters,
	}
}

const replySystemPrompt = `You are a legal-intake assistant for a law firm. Be warm and concise.
Collect the client's name, the legal issue, and an email or phone number.
Never give legal advice; you collect facts and open matters.

When the conversation state is READY_TO_CREATE_MATTER, confirm the details and emit:
TOOL_CALL: create_matter
PARAMETERS: {"name": "...", "legal_issue": "...", "email": "...", "phone": "..."}

Available tools:
%s
Current conversation state: %s
Extracted context: %s`

// ProcessMessage handles one user turn. sessionID may be empty, which
// starts a new session. Directive failures degrade to conversational
// prompts; only persistence and transport errors are returned.
func (p *Processor) ProcessMessage(ctx context.Context, sessionID, teamID, userID, input string) (*TurnResult, error) {
	sess, err := p.resolveSession(ctx, sessionID, teamID, userID)
	if err != nil {
		return nil, err
	}

	if _, err := p.store.AddMessage(ctx, sess.ID, "user", input); err != nil {
		return nil, err
	}

	// A created matter pins the conversation: replay the stored outcome
	// instead of attempting another creation.
	if sess.MatterCreated {
		reply := sess.Outcome
		if reply == "" {
			reply = "Your matter has already been opened. A member of our team will follow up shortly."
		}
		if _, err := p.store.AddMessage(ctx, sess.ID, "assistant", reply); err != nil {
			return nil, err
		}
		return &TurnResult{
			SessionID:     sess.ID,
			Reply:         reply,
			State:         intake.StateMatterCreated,
			MatterID:      sess.MatterID,
			MatterCreated: true,
		}, nil
	}

	transcript, err := p.store.Transcript(ctx, sess.ID)
	if err != nil {
		return nil, err
	}

	ictx := p.extractor.Extract(ctx, transcript, sess.MatterCreated)

	raw, err := p.generateReply(ctx, ictx, transcript)
	if err != nil {
		// The reply model being down must not kill the intake flow.
		log.Printf("chat: reply generation failed: %v", err)
		raw = promptMalformed
	}

	result := p.dispatch(ctx, sess, ictx, raw)

	if _, err := p.store.AddMessage(ctx, sess.ID, "assistant", result.Reply); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Processor) resolveSession(ctx context.Context, sessionID, teamID, userID string) (*Session, error) {
	if sessionID == "" {
		return p.store.CreateSession(ctx, teamID, userID)
	}
	sess, err := p.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}
	return sess, nil
}

func (p *Processor) generateReply(ctx context.Context, ictx intake.Context, transcript string) (string, error) {
	ctxJSON, err := json.Marshal(ictx)
	if err != nil {
		return "", fmt.Errorf("encoding context: %w", err)
	}

	var tools strings.Builder
	for name, desc := range toolcall.KnownTools() {
		fmt.Fprintf(&tools, "- %s: %s\n", name, desc)
	}

	resp, err := p.provider.Complete(ctx, llm.CompletionRequest{
		Model: p.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: fmt.Sprintf(replySystemPrompt, tools.String(), ictx.State, ctxJSON)},
			{Role: llm.RoleUser, Content: transcript},
		},
		MaxTokens:   1024,
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("completing reply: %w", err)
	}
	return resp.Content, nil
}

// dispatch parses the model output for a tool directive and routes it.
// Every failure mode maps to a conversational prompt.
func (p *Processor) dispatch(ctx context.Context, sess *Session, ictx intake.Context, raw string) *TurnResult {
	result := &TurnResult{
		SessionID: sess.ID,
		State:     ictx.State,
		Reply:     visibleReply(raw),
	}

	tc, err := toolcall.Parse(raw)
	if err != nil {
		var perr *toolcall.ParseError
		var uerr *toolcall.UnknownToolError
		switch {
		case errors.As(err, &perr):
			log.Printf("chat: malformed tool call in session %s: %s", sess.ID, perr.Reason)
			result.Reply = promptMalformed
		case errors.As(err, &uerr):
			log.Printf("chat: unknown tool %q in session %s", uerr.Name, sess.ID)
			result.Reply = promptUnknownTool
		default:
			log.Printf("chat: tool call parse failed in session %s: %v", sess.ID, err)
			result.Reply = promptMalformed
		}
		return result
	}
	if tc == nil {
		return result
	}

	log.Printf("chat: session %s tool call %s params=%v", sess.ID, tc.ToolName, toolcall.RedactParameters(tc.Parameters))

	switch tc.ToolName {
	case "create_matter":
		p.createMatter(ctx, sess, ictx, tc, result)
	case "update_matter", "advance_matter":
		p.advanceMatter(ctx, sess, tc, result)
	case "request_documents":
		p.listDocuments(ctx, sess, result)
	case "schedule_consultation":
		result.Reply = "I've noted your request for a consultation. Our team will reach out to schedule a time."
	case "handoff_to_lawyer":
		result.Reply = "I'm connecting you with a lawyer from our team who will take it from here."
	}
	return result
}

func (p *Processor) createMatter(ctx context.Context, sess *Session, ictx intake.Context, tc *toolcall.ToolCall, result *TurnResult) {
	if !ictx.ShouldCreateMatter {
		result.Reply = promptNotReady
		return
	}

	matterID := uuid.New().String()
	data := map[string]any{
		"name":           ictx.Name,
		"email":          ictx.Email,
		"phone":          ictx.Phone,
		"location":       ictx.Location,
		"legal_issue":    ictx.LegalIssue,
		"opposing_party": ictx.OpposingParty,
	}
	// Explicit tool parameters win over extracted facts.
	for k, v := range tc.Parameters {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			data[k] = strings.TrimSpace(s)
		}
	}
	if data["matter_type"] == nil && ictx.LegalIssue != "" {
		data["matter_type"] = ictx.LegalIssue
	}

	resp, err := p.matters.Engine(sess.TeamID, matterID).Advance(ctx, matter.Event{
		Type: matter.EventUserInput,
		Data: data,
	})
	if err != nil {
		log.Printf("chat: matter creation failed for session %s: %v", sess.ID, err)
		result.Reply = "I ran into a problem opening your matter. Let me try again in a moment."
		return
	}

	outcome := fmt.Sprintf("Thanks %s — I've opened your matter and our team will be in touch shortly.", ictx.Name)
	if err := p.store.MarkMatterCreated(ctx, sess.ID, matterID, outcome); err != nil {
		log.Printf("chat: pinning session %s failed: %v", sess.ID, err)
	}

	result.Reply = outcome
	result.State = intake.StateMatterCreated
	result.MatterID = matterID
	result.MatterCreated = true
	result.Matter = resp
	if resp.Directive == matter.DirectiveHandoff {
		result.Reply = outcome + " " + resp.HandoffMessage
	}
}

func (p *Processor) advanceMatter(ctx context.Context, sess *Session, tc *toolcall.ToolCall, result *TurnResult) {
	matterID, _ := tc.Parameters["matter_id"].(string)
	if matterID == "" {
		matterID = sess.MatterID
	}
	if matterID == "" {
		result.Reply = promptNotReady
		return
	}

	evType := matter.EventUserInput
	if s, ok := tc.Parameters["event_type"].(string); ok && s != "" {
		evType = matter.EventType(s)
	}
	data, _ := tc.Parameters["data"].(map[string]any)
	if data == nil {
		data = tc.Parameters
	}

	resp, err := p.matters.Engine(sess.TeamID, matterID).Advance(ctx, matter.Event{
		Type: evType,
		Data: data,
	})
	if err != nil {
		log.Printf("chat: advancing matter %s failed: %v", matterID, err)
		result.Reply = promptMalformed
		return
	}
	result.Matter = resp
	result.MatterID = matterID
	result.Reply = fmt.Sprintf("I've updated your matter; it is now in the %s stage.", resp.Stage)
}

func (p *Processor) listDocuments(ctx context.Context, sess *Session, result *TurnResult) {
	if sess.MatterID == "" {
		result.Reply = promptNotReady
		return
	}

	view, err := p.matters.Engine(sess.TeamID, sess.MatterID).Checklist(ctx)
	if err != nil {
		log.Printf("chat: loading checklist for %s failed: %v", sess.MatterID, err)
		result.Reply = promptMalformed
		return
	}

	var pending []string
	for _, item := range view.Checklist {
		if item.Status != matter.ItemCompleted {
			pending = append(pending, item.Title)
		}
	}
	if len(pending) == 0 {
		result.Reply = "Everything on your checklist is complete — nothing further is needed right now."
		return
	}
	result.Reply = "Here's what we still need: " + strings.Join(pending, "; ") + "."
}

// visibleReply strips the tool directive from the client-facing text.
func visibleReply(raw string) string {
	if idx := strings.Index(raw, "TOOL_CALL:"); idx >= 0 {
		raw = raw[:idx]
	}
	return strings.TrimSpace(raw)
}
