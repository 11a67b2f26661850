package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/liuyuqiaoe/local-hirag/helper"
	"github.com/liuyuqiaoe/local-hirag/llm"
	"github.com/liuyuqiaoe/local-hirag/model"
)

// RelationExtractor runs the same gleaning loop as EntityExtractor, but the
// prompt additionally lists the entity names extracted for the chunk, and
// endpoints are resolved against that per-chunk dictionary.
type RelationExtractor struct {
	chat        llm.ChatClient
	maxGleaning int
	log         *slog.Logger
}

// NewRelationExtractor builds a RelationExtractor. A nil logger discards
// warnings (dropped-endpoint notices still happen, just silently).
func NewRelationExtractor(chat llm.ChatClient, maxGleaning int, log *slog.Logger) *RelationExtractor {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &RelationExtractor{chat: chat, maxGleaning: maxGleaning, log: log}
}

// Extract resolves each parsed relation record's source/target names against
// entitiesByName (canonical-name keyed, as produced by EntityExtractor.Extract
// for the same chunk). Records with an unresolved endpoint are dropped with a
// warning; self-loops are dropped silently (model.NewRelation already
// enforces this, so it isn't logged as an anomaly).
func (x *RelationExtractor) Extract(ctx context.Context, chunk *model.Chunk, entitiesByName map[string]*model.Entity) ([]*model.Relation, error) {
	if len(entitiesByName) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(entitiesByName))
	for name := range entitiesByName {
		names = append(names, name)
	}

	systemPrompt := "You extract structured relationship records between named entities exactly in the requested format."
	prompt := relationExtractionPrompt(names, chunk.PageContent)

	output, err := x.chat.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, helper.NewError("extract relations", err)
	}

	history := []llm.Turn{
		{Role: llm.RoleUser, Content: prompt},
		{Role: llm.RoleAssistant, Content: output},
	}

	for pass := 0; pass < x.maxGleaning; pass++ {
		more, err := x.chat.Complete(ctx, systemPrompt, continuePrompt, history...)
		if err != nil {
			return nil, helper.NewError("glean relations", err)
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

	records := ParseRelationRecords(output)
	relations := make([]*model.Relation, 0, len(records))
	for _, r := range records {
		source, ok := entitiesByName[canonicalName(r.Source)]
		if !ok {
			x.log.Warn("relation endpoint not found among extracted entities", "chunk_id", chunk.ID, "name", r.Source)
			continue
		}
		target, ok := entitiesByName[canonicalName(r.Target)]
		if !ok {
			x.log.Warn("relation endpoint not found among extracted entities", "chunk_id", chunk.ID, "name", r.Target)
			continue
		}
		relation, ok := model.NewRelation(*source, *target, r.Description, r.Weight, chunk.ID)
		if !ok {
			continue
		}
		relations = append(relations, relation)
	}
	return relations, nil
}

func canonicalName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
