package xbrl

import "github.com/junyeongccom/railway-dsdgen/pkg/contracts/domain"

// Assemble turns extracted facts into canonical records, one per fact and
// in the same order. Captions come from labels and fall back to the tag.
func Assemble(corpCode string, facts []domain.RawFact, labels domain.LabelMap) []domain.CanonicalRecord {
	records, _ := assemble(corpCode, facts, labels)
	return records
}

// assemble also returns the facts that needed a normalization fallback.
func assemble(corpCode string, facts []domain.RawFact, labels domain.LabelMap) ([]domain.CanonicalRecord, []domain.RawFact) {
	records := make([]domain.CanonicalRecord, 0, len(facts))
	var recovered []domain.RawFact
	for _, f := range facts {
		n := Normalize(f)
		if n.Recovered {
			recovered = append(recovered, f)
		}
		records = append(records, domain.CanonicalRecord{
			CorpCode: corpCode,
			Caption:  labels.Caption(f.Tag),
			Value:    n.Value,
			Year:     n.Year,
			Unit:     n.Unit,
		})
	}
	return records, recovered
}
