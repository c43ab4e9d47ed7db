package domain

// YearUnknown is the fiscal year reported when no year can be read from a context reference.
const YearUnknown = "N/A"

// CanonicalRecord is one normalized row ready for serialization or persistence.
// JSON keys keep the tabular column names consumed by the dashboard.
type CanonicalRecord struct {
	CorpCode string `json:"기업코드"`
	Caption  string `json:"항목명"`
	Value    string `json:"값"`
	Year     string `json:"연도"`
	Unit     string `json:"단위"`
}

// RecordHeaders are the column names used by the tabular exporters.
var RecordHeaders = []string{"기업코드", "항목명", "값", "연도", "단위"}

// Row returns the record as an ordered slice matching RecordHeaders.
func (r CanonicalRecord) Row() []string {
	return []string{r.CorpCode, r.Caption, r.Value, r.Year, r.Unit}
}
