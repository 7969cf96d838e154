package models

// CompatReport is the persisted form of one run.
type CompatReport struct {
	Version        string                 `json:"version" yaml:"version"`
	Name           string                 `json:"name" yaml:"name"`
	RunID          string                 `json:"runId" yaml:"run_id"`
	Contract       string                 `json:"contract" yaml:"contract"`
	Implementation string                 `json:"implementation" yaml:"implementation"`
	Verdict        Verdict                `json:"verdict" yaml:"verdict"`
	TotalIssues    int                    `json:"totalIssues" yaml:"total_issues"`
	Suppressed     int                    `json:"suppressed" yaml:"suppressed"`
	Groups         []ReportGroup          `json:"groups" yaml:"groups,omitempty"`
	UnusedBaseline []string               `json:"unusedBaseline" yaml:"unused_baseline,omitempty"`
	Counts         map[DifferenceType]int `json:"counts" yaml:"counts,omitempty"`
}

// ReportGroup holds the differences reported under one header.
type ReportGroup struct {
	Header      string       `json:"header" yaml:"header"`
	Differences []Difference `json:"differences" yaml:"differences,omitempty"`
}

