package extract

import (
	"fmt"
	"strings"
)

const entityExtractionTemplate = `You are extracting named entities from the text below.

Entity types: %s

For each entity, output exactly one record of the form:
("entity"%[2]sNAME%[2]sTYPE%[2]sDESCRIPTION)%[3]s

Separate records with %[3]s and end your entire response with %[4]s.

Text:
%[5]s`

const relationExtractionTemplate = `You are extracting relationships between the named entities below from the
text that follows.

Entities: %s

For each relationship, output exactly one record of the form:
("relationship"%[2]sSOURCE%[2]sTARGET%[2]sDESCRIPTION%[2]sWEIGHT)%[3]s

Separate records with %[3]s and end your entire response with %[4]s.

Text:
%[5]s`

const continuePrompt = `MANY entities and relationships were missed in the last extraction. Continue extracting any additional ones, in the same record format as before.`

const shouldContinuePrompt = `It appears some entities or relationships may have still been missed. Answer YES or NO: should extraction continue?`

func entityExtractionPrompt(entityTypes []string, chunkText string) string {
	return fmt.Sprintf(entityExtractionTemplate, strings.Join(entityTypes, ", "), TupleDelimiter, RecordDelimiter, CompletionDelimiter, chunkText)
}

func relationExtractionPrompt(entityNames []string, chunkText string) string {
	return fmt.Sprintf(relationExtractionTemplate, strings.Join(entityNames, ", "), TupleDelimiter, RecordDelimiter, CompletionDelimiter, chunkText)
}
