package models

// DuplicateLink is one accepted pairwise match decision.
type DuplicateLink struct {
	KeepIndex   int `json:"keep_index"`
	DropIndex   int `json:"drop_index"`
	Probability int `json:"probability"`
}

// ReportRow is one row of the duplicates report: the record decorated with
// keep/drop bookkeeping.
type ReportRow struct {
	Record      Record `json:"record"`
	Keep        bool   `json:"keep"`
	PairID      int    `json:"pair_id"`
	OrigIndex   int    `json:"orig_index"`
	Probability int    `json:"probability"`
}

// ExportRow is a report row extended with the audit reference back to the
// retained record. DuplicateOf is nil for kept rows.
type ExportRow struct {
	ReportRow
	DuplicateOf *int `json:"duplicate_of"`
}

// RunSummary describes one engine invocation.
type RunSummary struct {
	RunID          string `json:"run_id"`
	TenantID       string `json:"tenant_id,omitempty"`
	RulesetID      string `json:"ruleset_id,omitempty"`
	Threshold      int    `json:"threshold"`
	TotalRecords   int    `json:"total_records"`
	KeptRecords    int    `json:"kept_records"`
	DroppedRecords int    `json:"dropped_records"`
	Blocks         int    `json:"blocks"`
	CandidatePairs int    `json:"candidate_pairs"`
	DuplicateLinks int    `json:"duplicate_links"`
}

// DedupeResult bundles the two public outputs plus the run summary.
type DedupeResult struct {
	Summary RunSummary      `json:"summary"`
	Cleaned []Record        `json:"cleaned"`
	Report  []ReportRow     `json:"report"`
	Export  []ExportRow     `json:"export"`
	Links   []DuplicateLink `json:"links"`
}
