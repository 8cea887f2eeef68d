package parser

import "time"

// Record is one presence measurement sample from the XM125 monitor output.
// Immutable once parsed.
type Record struct {
	Presence  bool
	Distance  float64 // metres
	Intra     float64
	Inter     float64
	Timestamp time.Time
}

// Format identifies how a results file should be parsed.
type Format int

const (
	// FormatFreeText is the human-readable monitor output: pipe-delimited
	// fields containing the "Presence:" marker.
	FormatFreeText Format = iota
	// FormatTabular is header-based CSV (first row names the columns).
	FormatTabular
	// FormatLog is raw log text, scanned rather than row-parsed.
	FormatLog
)

func (f Format) String() string {
	switch f {
	case FormatFreeText:
		return "free-text"
	case FormatTabular:
		return "tabular"
	case FormatLog:
		return "log"
	}
	return "unknown"
}

// ParsedFile holds the records recovered from one results file together with
// any non-fatal warnings hit along the way.
type ParsedFile struct {
	Path     string
	Format   Format
	Records  []Record
	Warnings []string
}

// Column names expected in tabular (header CSV) files.
const (
	ColDistance   = "distance"
	ColIntraScore = "intra_score"
	ColInterScore = "inter_score"
	ColPresence   = "presence"
)
