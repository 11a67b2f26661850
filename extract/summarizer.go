package extract

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/liuyuqiaoe/local-hirag/helper"
	"github.com/liuyuqiaoe/local-hirag/llm"
)

// inputTokenBudget and outputTokenBudget bound the summarizer's prompt and
// response the way §4.4 requires; tokens are approximated as characters,
// consistent with the chunker's injected-tokenizer default.
const (
	inputTokenBudget  = 4000
	outputTokenBudget = 600
)

// Summarizer folds every description ever proposed for one entity into a
// single bounded-length description via the chat model. It satisfies
// graph.Summarizer.
type Summarizer struct {
	chat llm.ChatClient
}

// NewSummarizer builds a Summarizer over chat.
func NewSummarizer(chat llm.ChatClient) *Summarizer {
	return &Summarizer{chat: chat}
}

// SummarizeEntity shuffles descriptions (the LLM call is the only source of
// permutation-sensitivity the contract allows), truncates to the input
// token budget, and prompts the model with the entity name and the
// truncated list, bounded by the output token budget.
func (s *Summarizer) SummarizeEntity(ctx context.Context, name string, descriptions []string) (string, error) {
	if len(descriptions) == 0 {
		return "", fmt.Errorf("summarize entity %q: no descriptions supplied", name)
	}

	shuffled := append([]string(nil), descriptions...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	list := truncateToBudget(shuffled, inputTokenBudget)
	prompt := fmt.Sprintf(
		"Summarize the following descriptions of the entity %q into one coherent description of at most %d characters:\n\n%s",
		name, outputTokenBudget, strings.Join(list, "\n- "),
	)

	out, err := s.chat.Complete(ctx, "You write concise, factual entity summaries.", prompt)
	if err != nil {
		return "", helper.NewError("summarize entity", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", helper.NewError("summarize entity", fmt.Errorf("model returned an empty summary for %q", name))
	}
	if len(out) > outputTokenBudget {
		out = out[:outputTokenBudget]
	}
	return out, nil
}

func truncateToBudget(descriptions []string, budget int) []string {
	var out []string
	used := 0
	for _, d := range descriptions {
		if used+len(d) > budget && len(out) > 0 {
			break
		}
		out = append(out, d)
		used += len(d)
	}
	return out
}
