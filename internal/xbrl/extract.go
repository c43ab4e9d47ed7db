package xbrl

import (
	"strings"

	"github.com/junyeongccom/railway-dsdgen/pkg/contracts/domain"
)

// SeparateMember marks contexts that belong to the separate (non-consolidated)
// financial statements.
const SeparateMember = "SeparateMember"

// ExtractFacts returns the separate-statement facts of doc for the
// allow-listed elements, in allow-list order and then document order.
// Facts with empty text or no contextRef are skipped.
func ExtractFacts(doc *Document, allow []QName) []domain.RawFact {
	if doc == nil {
		return nil
	}

	var facts []domain.RawFact
	for _, name := range allow {
		for _, el := range doc.FindAll(name.String()) {
			contextRef := el.Attr("contextRef")
			if !strings.Contains(contextRef, SeparateMember) {
				continue
			}
			value := strings.TrimSpace(el.Text())
			if value == "" || contextRef == "" {
				continue
			}
			facts = append(facts, domain.RawFact{
				QualifiedName: name.String(),
				Tag:           name.Local,
				Value:         value,
				ContextRef:    contextRef,
				UnitRef:       el.Attr("unitRef"),
				Decimals:      el.Attr("decimals"),
			})
		}
	}
	return facts
}
