// Package assistant asks a language model about one lead. It only assembles
// the context payload and the conversation; generation happens upstream.
package assistant

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/pkg/anthropic"
)

// DefaultQuestion is asked when the caller supplies none.
const DefaultQuestion = "Write a short account brief for this institution: who they are, why they score the way they do, and how to open the conversation."

const systemPrompt = `You help a sales team prioritise credit unions and community banks.
Each request includes a JSON context object describing one institution, its
opportunity score (0-100) and recommended products. Use only facts from the
context. Dollar amounts are whole US dollars. Be concise.`

// Payload is the context object sent with every request.
type Payload struct {
	Lead        model.Lead        `json:"lead"`
	ScoreResult model.ScoreResult `json:"score_result"`
}

// BuildContext returns the JSON context for lead.
func BuildContext(lead model.Lead) (string, error) {
	b, err := json.MarshalIndent(Payload{Lead: lead, ScoreResult: lead.ScoreResult()}, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "assistant: marshal context")
	}
	return string(b), nil
}

// Assistant holds the model settings for a conversation.
type Assistant struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// New creates an assistant.
func New(client anthropic.Client, model string, maxTokens int64) *Assistant {
	return &Assistant{client: client, model: model, maxTokens: maxTokens}
}

// Ask sends question about lead after any prior turns and returns the reply.
func (a *Assistant) Ask(ctx context.Context, lead model.Lead, history []anthropic.Message, question string) (string, error) {
	payload, err := BuildContext(lead)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(question) == "" {
		question = DefaultQuestion
	}

	msgs := make([]anthropic.Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, anthropic.Message{
		Role:    "user",
		Content: "Context:\n" + payload + "\n\n" + question,
	})

	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    []anthropic.SystemBlock{{Text: systemPrompt}},
		Messages:  msgs,
	})
	if err != nil {
		return "", eris.Wrapf(err, "assistant: ask about %s", lead.ID)
	}
	resp.Usage.LogCost(a.model, "brief")

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		zap.L().Warn("assistant: empty reply", zap.String("lead", lead.ID), zap.String("stop_reason", resp.StopReason))
		return "", eris.Errorf("assistant: empty reply for %s", lead.ID)
	}
	return text, nil
}
