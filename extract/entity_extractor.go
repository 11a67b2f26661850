package extract

import (
	"context"
	"strings"

	"github.com/liuyuqiaoe/local-hirag/helper"
	"github.com/liuyuqiaoe/local-hirag/llm"
	"github.com/liuyuqiaoe/local-hirag/model"
)

// EntityExtractor drives the gleaning loop of §4.5 over one chunk at a time.
type EntityExtractor struct {
	chat        llm.ChatClient
	entityTypes []string
	maxGleaning int
}

// NewEntityExtractor builds an EntityExtractor. A nil/empty entityTypes
// falls back to DefaultEntityTypes.
func NewEntityExtractor(chat llm.ChatClient, entityTypes []string, maxGleaning int) *EntityExtractor {
	if len(entityTypes) == 0 {
		entityTypes = DefaultEntityTypes
	}
	return &EntityExtractor{chat: chat, entityTypes: entityTypes, maxGleaning: maxGleaning}
}

// Extract runs the initial extraction pass plus up to maxGleaning
// continuation passes, stopping early once a termination question comes
// back anything other than "yes". Malformed records are silently dropped;
// a chunk that yields zero records still returns a non-error, empty slice
// so the caller indexes the chunk in the vector store regardless (§7).
func (x *EntityExtractor) Extract(ctx context.Context, chunk *model.Chunk) ([]*model.Entity, error) {
	systemPrompt := "You extract structured entity records from text exactly in the requested format."
	prompt := entityExtractionPrompt(x.entityTypes, chunk.PageContent)

	output, err := x.chat.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, helper.NewError("extract entities", err)
	}

	history := []llm.Turn{
		{Role: llm.RoleUser, Content: prompt},
		{Role: llm.RoleAssistant, Content: output},
	}

	for pass := 0; pass < x.maxGleaning; pass++ {
		more, err := x.chat.Complete(ctx, systemPrompt, continuePrompt, history...)
		if err != nil {
			return nil, helper.NewError("glean entities", err)
		}
		output += more
		history = append(history,
			llm.Turn{Role: llm.RoleUser, Content: continuePrompt},
			llm.Turn{Role: llm.RoleAssistant, Content: more},
		)

		if pass < x.maxGleaning-1 {
			verdict, err := x.chat.Complete(ctx, systemPrompt, shouldContinuePrompt, history...)
			if err != nil {
				return nil, helper.NewError("check gleaning termination", err)
			}
			if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(verdict)), "YES") {
				break
			}
		}
	}

	records := ParseEntityRecords(output)
	entities := make([]*model.Entity, 0, len(records))
	for _, r := range records {
		entities = append(entities, model.NewEntity(r.Name, r.Type, r.Description, chunk.ID))
	}
	return entities, nil
}
