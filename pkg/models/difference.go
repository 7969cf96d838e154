package models

// DifferenceType classifies what a rule found on a mapping node.
type DifferenceType string

const (
	Unchanged    DifferenceType = "Unchanged"
	Added        DifferenceType = "Added"
	Removed      DifferenceType = "Removed"
	Changed      DifferenceType = "Changed"
	Incompatible DifferenceType = "Incompatible"
)

// AllDifferenceTypes lists the kinds in report order.
var AllDifferenceTypes = []DifferenceType{Incompatible, Removed, Changed, Added, Unchanged}

// Breaking reports whether the kind fails a run.
func (t DifferenceType) Breaking() bool {
	return t == Incompatible
}

// Difference is one finding of one rule.
type Difference struct {
	ID      string         `json:"id" yaml:"id"`
	Kind    DifferenceType `json:"kind" yaml:"kind"`
	Message string         `json:"message" yaml:"message"`
	Left    Declaration    `json:"-" yaml:"-"`
	Right   Declaration    `json:"-" yaml:"-"`
}

// String is the exact form baseline entries are matched against.
func (d Difference) String() string {
	return d.ID + " : " + d.Message
}

type Verdict string

const (
	VerdictCompatible   Verdict = "Compatible"
	VerdictIncompatible Verdict = "Incompatible"
)
