package api

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openvoice/agent-gateway/internal/agentstore"
)

func TestStaticReply_MentionsAgentAndInput(t *testing.T) {
	agent := &agentstore.Agent{ID: "a1", Name: "Helper"}

	reply, err := StaticReplyGenerator{}.Reply(context.Background(), agent, "I want to sign up.")
	require.NoError(t, err)

	assert.Contains(t, reply, "Helper")
	assert.Contains(t, reply, "I want to sign up.")
}

func TestStaticReply_TruncatesOnRuneBoundary(t *testing.T) {
	agent := &agentstore.Agent{ID: "a1", Name: "Helper"}

	// 3-byte runes positioned so a byte-index cut at 60 would land mid-rune.
	input := strings.Repeat("日本語", 30)
	reply, err := StaticReplyGenerator{}.Reply(context.Background(), agent, input)
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(reply), "reply must stay valid UTF-8")
	assert.NotContains(t, reply, string(utf8.RuneError))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short ascii", "hello", 60, "hello"},
		{"exact", "hello", 5, "hello"},
		{"ascii cut", "hello world", 5, "hello"},
		{"multibyte backs up", "日本語", 4, "日"},
		{"multibyte clean cut", "日本語", 6, "日本"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.max)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
