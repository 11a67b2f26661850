package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizer_SummarizeEntity(t *testing.T) {
	chat := &scriptedChat{responses: []string{"ACME makes anvils and sells them to coyotes."}}
	s := NewSummarizer(chat)

	summary, err := s.SummarizeEntity(context.Background(), "ACME", []string{"makes anvils", "sells to coyotes"})
	require.NoError(t, err)
	assert.Equal(t, "ACME makes anvils and sells them to coyotes.", summary)
	assert.Len(t, chat.prompts, 1)
	assert.Contains(t, chat.prompts[0], "ACME")
}

func TestSummarizer_EmptyResponseIsAnError(t *testing.T) {
	chat := &scriptedChat{responses: []string{"   "}}
	s := NewSummarizer(chat)

	_, err := s.SummarizeEntity(context.Background(), "ACME", []string{"a"})
	assert.Error(t, err)
}

func TestSummarizer_NoDescriptionsIsAnError(t *testing.T) {
	s := NewSummarizer(&scriptedChat{})
	_, err := s.SummarizeEntity(context.Background(), "ACME", nil)
	assert.Error(t, err)
}

func TestTruncateToBudget(t *testing.T) {
	descriptions := []string{strings.Repeat("a", 10), strings.Repeat("b", 10), strings.Repeat("c", 10)}
	out := truncateToBudget(descriptions, 15)
	assert.Equal(t, descriptions[:1], out)

	out = truncateToBudget(descriptions, 100)
	assert.Equal(t, descriptions, out)
}
