package domain

// FilingContext describes the files resolved for one entity inside the
// extracted-filing storage root.
type FilingContext struct {
	CorpCode     string `json:"corp_code" validate:"required"`
	Root         string `json:"root"`
	Directory    string `json:"directory"`
	InstancePath string `json:"instance_path"`
	LabelPath    string `json:"label_path,omitempty"`
	Fallback     bool   `json:"fallback"`
}

// HasLabels reports whether a label linkbase was found next to the instance document.
func (f *FilingContext) HasLabels() bool {
	return f != nil && f.LabelPath != ""
}

// RawFact is one allow-listed fact element taken from an instance document
// before any normalization.
type RawFact struct {
	QualifiedName string `json:"qualified_name"`
	Tag           string `json:"tag"`
	Value         string `json:"value"`
	ContextRef    string `json:"context_ref"`
	UnitRef       string `json:"unit_ref"`
	Decimals      string `json:"decimals"`
}

// LabelMap maps a bare taxonomy tag name to its Korean caption.
type LabelMap map[string]string

// Caption returns the caption for tag, falling back to the tag itself.
func (m LabelMap) Caption(tag string) string {
	if caption, ok := m[tag]; ok && caption != "" {
		return caption
	}
	return tag
}

// ParseResult is the outcome of one extraction pass.
type ParseResult struct {
	Filing     *FilingContext    `json:"filing"`
	Records    []CanonicalRecord `json:"records"`
	FactCount  int               `json:"fact_count"`
	LabelCount int               `json:"label_count"`
}
