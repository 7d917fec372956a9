// Package rag turns retrieved index hits into a model prompt and an answer:
// context assembly, the prompt template and the model adapters.
package rag

import (
	"fmt"
	"strings"

	"lexcase-backend/models"
	"lexcase-backend/search"
)

const (
	// MaxContentChars bounds each unit's content in the context, in characters
	MaxContentChars = 2000
	Ellipsis        = "..."
	blockSeparator  = "\n\n"
)

// Assemble renders hits, in the given order, into the context text handed to
// the model and the matching citations. No reordering or filtering happens
// here; an empty input yields "" and an empty source list.
func Assemble(hits []search.Hit) (string, []models.Source) {
	blocks := make([]string, 0, len(hits))
	sources := make([]models.Source, 0, len(hits))

	for _, hit := range hits {
		unit := hit.Unit
		if unit.ID == "" {
			unit.ID = hit.ID
		}
		blocks = append(blocks, Header(unit)+"\n"+truncate(unit.Content)+"\n")
		sources = append(sources, models.SourceFromUnit(unit, hit.Score))
	}

	return strings.Join(blocks, blockSeparator), sources
}

// Header is the provenance line introducing a unit in the context
func Header(unit models.IndexedUnit) string {
	switch unit.Type {
	case models.UnitTypeLegalAct:
		return fmt.Sprintf("Akt prawny: %s, %s", unit.Title, unit.Publication)
	case models.UnitTypeJudgment:
		return fmt.Sprintf("Orzeczenie: %s, %s, %s", unit.CourtName, unit.CaseNumber, unit.JudgmentDate)
	default:
		return fmt.Sprintf("Dokument: %s", unit.Title)
	}
}

func truncate(content string) string {
	runes := []rune(content)
	if len(runes) <= MaxContentChars {
		return content
	}
	return string(runes[:MaxContentChars]) + Ellipsis
}
