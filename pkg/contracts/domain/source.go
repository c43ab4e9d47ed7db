package domain

// DsdSource is a persisted source figure. The natural key is
// (CorpCode, SourceName, Year).
type DsdSource struct {
	ID         int64  `json:"id" db:"id"`
	CorpCode   string `json:"corp_code" db:"corp_code" validate:"required,max=64"`
	SourceName string `json:"source_name" db:"source_name" validate:"required"`
	Value      int64  `json:"value" db:"value"`
	Year       int    `json:"year" db:"year" validate:"required"`
	Unit       string `json:"unit" db:"unit"`
}

// UpsertPath identifies which write strategy the upsert engine used.
type UpsertPath string

const (
	UpsertPathConstraint UpsertPath = "constraint"
	UpsertPathFallback   UpsertPath = "fallback"
	UpsertPathNone       UpsertPath = "none"
)

// UpsertErrorKind classifies a failed upsert.
type UpsertErrorKind string

const (
	UpsertErrUniqueViolation UpsertErrorKind = "uniqueness_violation"
	UpsertErrDatabase        UpsertErrorKind = "database"
	UpsertErrMissingRelation UpsertErrorKind = "missing_relation"
	UpsertErrInvalidInput    UpsertErrorKind = "invalid_input"
	UpsertErrUnexpected      UpsertErrorKind = "unexpected"
)

// UpsertResult summarizes one upsert call. Counts reflect progress made
// before any failure.
type UpsertResult struct {
	Success      bool            `json:"success"`
	Inserted     int             `json:"inserted"`
	Updated      int             `json:"updated"`
	TotalRecords int             `json:"total_records"`
	Skipped      int             `json:"skipped"`
	BeforeCount  int64           `json:"before_count"`
	AfterCount   int64           `json:"after_count"`
	Path         UpsertPath      `json:"path"`
	ErrorKind    UpsertErrorKind `json:"error_kind,omitempty"`
	Message      string          `json:"message"`
}

// Processed returns the number of rows written, inserted or updated.
func (r *UpsertResult) Processed() int {
	return r.Inserted + r.Updated
}
