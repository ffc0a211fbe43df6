package cutoff

import (
	"strconv"
	"strings"
)

// Grade is the Higher Mother Tongue qualifier attached to a cut-off score.
type Grade byte

const (
	GradeNone        Grade = 0
	GradeDistinction Grade = 'D'
	GradeMerit       Grade = 'M'
	GradePass        Grade = 'P'
)

// ParseGrade reads a grade letter in any case, anything else is GradeNone.
func ParseGrade(s string) Grade {
	return parseGrade(s)
}

func parseGrade(s string) Grade {
	switch strings.ToUpper(s) {
	case "D":
		return GradeDistinction
	case "M":
		return GradeMerit
	case "P":
		return GradePass
	}
	return GradeNone
}

func (g Grade) String() string {
	if g == GradeNone {
		return ""
	}
	return string(rune(g))
}

// Pathway selects which admission pathway a value belongs to.
type Pathway int

const (
	PathwayMain Pathway = iota
	PathwayAffiliated
)

func (p Pathway) String() string {
	if p == PathwayAffiliated {
		return "affiliated"
	}
	return "main"
}

// Value is a single decoded cut-off. The zero Value means "no value".
//
// Score holds the points as published, normally 1 or 2 digits. It is a string
// because undecodable cells are passed through verbatim.
type Value struct {
	Score string
	Grade Grade
}

// value is the only way decoding rules build a Value, a grade is dropped when
// there is no score to attach it to.
func value(score string, grade Grade) Value {
	if score == "" {
		return Value{}
	}
	return Value{Score: score, Grade: grade}
}

// NewValue builds a value from a stored score and grade.
func NewValue(score string, grade Grade) Value {
	return value(score, grade)
}

func (v Value) Present() bool {
	return v.Score != ""
}

// Points returns the score as an integer when it is numeric.
func (v Value) Points() (int, bool) {
	n, err := strconv.Atoi(v.Score)
	if err != nil {
		return 0, false
	}
	return n, true
}

// String renders the value the way the listing site does, ex. "6M".
func (v Value) String() string {
	return v.Score + v.Grade.String()
}

// Encoding identifies which textual encoding a cell was recognized as.
type Encoding int

const (
	EncodingEmpty Encoding = iota
	EncodingRange
	EncodingCombinedRange
	EncodingDualSpaced
	EncodingTrailingDash
	EncodingDualGraded
	EncodingDualDigits
	EncodingSingle
	EncodingRaw
)

var encodingNames = [...]string{
	EncodingEmpty:         "empty",
	EncodingRange:         "range",
	EncodingCombinedRange: "combined-range",
	EncodingDualSpaced:    "dual-spaced",
	EncodingTrailingDash:  "trailing-dash",
	EncodingDualGraded:    "dual-graded",
	EncodingDualDigits:    "dual-digits",
	EncodingSingle:        "single",
	EncodingRaw:           "raw",
}

func (e Encoding) String() string {
	if e < 0 || int(e) >= len(encodingNames) {
		return "unknown"
	}
	return encodingNames[e]
}

// ParseEncoding is the inverse of Encoding.String, unknown names are EncodingRaw.
func ParseEncoding(name string) Encoding {
	for e, n := range encodingNames {
		if n == name {
			return Encoding(e)
		}
	}
	return EncodingRaw
}

// Cutoff is a decoded cell: the main pathway value, the affiliated pathway
// value and the encoding they were read from.
type Cutoff struct {
	Main       Value
	Affiliated Value
	Encoding   Encoding
	// Degraded is set when some part of the cell matched no encoding and was
	// kept verbatim.
	Degraded bool
}

// For returns the value of the given pathway.
func (c Cutoff) For(p Pathway) Value {
	if p == PathwayAffiliated {
		return c.Affiliated
	}
	return c.Main
}
