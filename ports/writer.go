package ports

// Table is a named collection of labeled matrices written together to one
// result file: one matrix-table file per (rule, OC-set) combination,
// containing labeled variables.
type Table struct {
	// Dir is the destination subdirectory (already includes the 3-letter
	// prefix and the canonical model string).
	Dir string
	// Name is the file stem (e.g. the rule id, or "<rule id>-more").
	Name string
	// Variables maps a label (mu_null, b_null, ess_null, ...) to its matrix,
	// stored row-major as [][]float64 to stay independent of any single
	// matrix library.
	Variables map[string][][]float64
}

// Writer is the external write sink that accepts labeled matrices and
// persists them as one file per Table. Resource errors (folder exhaustion,
// filesystem failures) abort further output for the affected run only.
type Writer interface {
	Write(table Table) error
}
