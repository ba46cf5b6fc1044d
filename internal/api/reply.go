package api

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/openvoice/agent-gateway/internal/agentstore"
)

// ReplyGenerator produces the agent's textual reply to user input. Real reply
// generation (an LLM call) is an external collaborator; the gateway only
// synthesizes whatever text comes back.
type ReplyGenerator interface {
	Reply(ctx context.Context, agent *agentstore.Agent, input string) (string, error)
}

// StaticReplyGenerator returns a deterministic canned reply. It stands in for
// a language-model integration in the agent test console.
type StaticReplyGenerator struct{}

var _ ReplyGenerator = (*StaticReplyGenerator)(nil)

func (StaticReplyGenerator) Reply(_ context.Context, agent *agentstore.Agent, input string) (string, error) {
	return fmt.Sprintf("Thanks for your message. %s will help you with '%s'.", agent.Name, truncate(input, 60)), nil
}

// truncate shortens s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
