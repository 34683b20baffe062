package tokenizer

import (
	"strings"

	"github.com/mandalnilabja/vecway/internal/types"
)

// Message token overhead varies by model family.
const (
	messageOverheadGPT4  = 3 // <|start|>role<|end|>
	messageOverheadGPT35 = 4

	// Reply priming tokens (assistant response start)
	replyPrimingTokens = 3

	// Name field overhead (if present)
	nameOverhead = 1
)

// CountMessages counts tokens for a slice of messages.
func (t *TiktokenTokenizer) CountMessages(messages []types.Message, model string) (int, error) {
	total := 0
	overhead := t.getMessageOverhead(model)

	for _, msg := range messages {
		tokens, err := t.countMessage(msg, model)
		if err != nil {
			return 0, err
		}
		total += tokens + overhead
	}

	total += replyPrimingTokens

	return total, nil
}

// CountRequest counts total prompt tokens for a full request.
func (t *TiktokenTokenizer) CountRequest(req *types.ChatCompletionRequest) (int, error) {
	return t.CountMessages(req.Messages, req.Model)
}

// countMessage counts role, text and name tokens for a single message.
// Image parts never reach the backend and cost nothing.
func (t *TiktokenTokenizer) countMessage(msg types.Message, model string) (int, error) {
	roleTokens, err := t.CountTokens(msg.Role, model)
	if err != nil {
		return 0, err
	}

	contentTokens, err := t.CountTokens(msg.Content.String(), model)
	if err != nil {
		return 0, err
	}
	total := roleTokens + contentTokens

	if msg.Name != "" {
		nameTokens, err := t.CountTokens(msg.Name, model)
		if err != nil {
			return 0, err
		}
		total += nameTokens + nameOverhead
	}

	return total, nil
}

// getMessageOverhead returns the per-message token overhead for a model.
func (t *TiktokenTokenizer) getMessageOverhead(model string) int {
	if strings.HasPrefix(strings.ToLower(model), "gpt-3.5") {
		return messageOverheadGPT35
	}
	return messageOverheadGPT4
}
