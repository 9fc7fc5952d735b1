package domain

import "time"

// ValueKind enumerates the typed variants a decoded field value can take.
type ValueKind int

const (
	ValueKindText ValueKind = iota
	ValueKindNumber
	ValueKindBool
	ValueKindDateRange
	ValueKindJSON
	ValueKindIDList
	// ValueKindRichText carries both the legacy HTML text and the
	// structured JSON representation of the same value.
	ValueKindRichText
)

type DateRange struct {
	Start time.Time
	// End is nil for single (non-range) dates.
	End         *time.Time
	IncludeTime bool
}

// Value is the typed variant stored in and read from the value columns.
// Exactly one family of members is meaningful for a given Kind; richtext is
// the exception and may carry Text and JSON at once.
type Value struct {
	Kind   ValueKind
	Text   string
	Number float64
	Bool   bool
	Range  DateRange
	JSON   any
	IDs    []int64
}

// WriteDecision makes the skip-on-empty policy explicit: a codec encode
// either yields a value to persist or an instruction to write nothing.
type WriteDecision struct {
	skip  bool
	value Value
}

func SkipWrite() WriteDecision {
	return WriteDecision{skip: true}
}

func WriteValue(v Value) WriteDecision {
	return WriteDecision{value: v}
}

func (d WriteDecision) Skip() bool {
	return d.skip
}

func (d WriteDecision) Value() Value {
	return d.value
}
