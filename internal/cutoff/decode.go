package cutoff

import (
	"regexp"
	"strings"
)

// ranges are published as "<min> - <max>", only the upper bound decides admission
const rangeSeparator = " - "

var (
	trailingDashRegex = regexp.MustCompile(`(?i)^(\d{1,2})([DMP])?-$`)
	dualGradedRegex   = regexp.MustCompile(`(?i)^(\d{1,2})([DMP])(\d{1,2})([DMP])?`)
	singleRegex       = regexp.MustCompile(`(?i)^(\d{1,2})([DMP])?$`)
	digitsRegex       = regexp.MustCompile(`^\d+$`)
)

// Decoder turns raw cut-off cells into decoded values. The zero Decoder is the
// one used for the listing table.
type Decoder struct {
	// CombinedRanges enables "5 - 910 - 22" cells found in the history table of
	// detail pages, where the main range upper bound is glued to the affiliated
	// range lower bound.
	CombinedRanges bool
}

var (
	listingDecoder = Decoder{}
	historyDecoder = Decoder{CombinedRanges: true}
)

// Decode decodes a listing table cell.
func Decode(raw string) Cutoff {
	return listingDecoder.Decode(raw)
}

// DecodeHistory decodes a detail page history cell.
func DecodeHistory(raw string) Cutoff {
	return historyDecoder.Decode(raw)
}

func isSentinel(cell string) bool {
	return cell == "" || cell == "-" || cell == "--"
}

// Decode never fails, text that matches no known encoding is kept verbatim as
// the main score.
func (d Decoder) Decode(raw string) Cutoff {
	cell := strings.TrimSpace(raw)
	if isSentinel(cell) {
		return Cutoff{Encoding: EncodingEmpty}
	}

	if strings.Contains(cell, rangeSeparator) {
		return d.decodeRange(cell)
	}

	fields := strings.Fields(cell)
	if len(fields) >= 2 {
		main, mainRaw := decodeToken(fields[0])
		affiliated, affiliatedRaw := decodeToken(fields[1])
		return Cutoff{
			Main:       main,
			Affiliated: affiliated,
			Encoding:   EncodingDualSpaced,
			Degraded:   mainRaw || affiliatedRaw,
		}
	}

	return decodeSingle(cell)
}

func (d Decoder) decodeRange(cell string) Cutoff {
	parts := strings.Split(cell, rangeSeparator)
	if len(parts) > 2 && d.CombinedRanges {
		return decodeCombined(parts)
	}

	upper := d.Decode(parts[len(parts)-1])
	upper.Encoding = EncodingRange
	return upper
}

// decodeCombined handles "<main min> - <main max><aff min> - <aff max>".
func decodeCombined(parts []string) Cutoff {
	minimum, _ := decodeToken(parts[0])
	minimumPoints, checkMinimum := minimum.Points()

	glued := strings.TrimSpace(parts[1])
	for i := 1; i < len(glued); i++ {
		left, right := glued[:i], glued[i:]

		groups := singleRegex.FindStringSubmatch(left)
		if groups == nil || !digitsRegex.MatchString(right) {
			continue
		}
		main := value(groups[1], parseGrade(groups[2]))
		if checkMinimum {
			points, _ := main.Points()
			if points < minimumPoints {
				continue
			}
		}

		affiliated, affiliatedRaw := decodeToken(parts[len(parts)-1])
		return Cutoff{
			Main:       main,
			Affiliated: affiliated,
			Encoding:   EncodingCombinedRange,
			Degraded:   affiliatedRaw,
		}
	}

	main, mainRaw := decodeToken(glued)
	return Cutoff{
		Main:     main,
		Encoding: EncodingCombinedRange,
		Degraded: mainRaw,
	}
}

// decodeToken decodes a fragment of a cell into its main value, when the
// fragment still holds several whitespace separated values the first one wins.
func decodeToken(token string) (Value, bool) {
	token = strings.TrimSpace(token)
	if fields := strings.Fields(token); len(fields) > 1 {
		token = fields[0]
	}
	if isSentinel(token) {
		return Value{}, false
	}
	c := decodeSingle(token)
	return c.Main, c.Degraded
}

// decodeSingle expects a trimmed, non-empty cell without whitespace.
func decodeSingle(cell string) Cutoff {
	if groups := trailingDashRegex.FindStringSubmatch(cell); groups != nil {
		return Cutoff{
			Main:     value(groups[1], parseGrade(groups[2])),
			Encoding: EncodingTrailingDash,
		}
	}

	if groups := dualGradedRegex.FindStringSubmatch(cell); groups != nil {
		return Cutoff{
			Main:       value(groups[1], parseGrade(groups[2])),
			Affiliated: value(groups[3], parseGrade(groups[4])),
			Encoding:   EncodingDualGraded,
		}
	}

	// no validation of magnitude here: "999" decodes as 9 and 99
	if digitsRegex.MatchString(cell) && (len(cell) == 3 || len(cell) == 4) {
		split := len(cell) - 2
		return Cutoff{
			Main:       value(cell[:split], GradeNone),
			Affiliated: value(cell[split:], GradeNone),
			Encoding:   EncodingDualDigits,
		}
	}

	if groups := singleRegex.FindStringSubmatch(cell); groups != nil {
		return Cutoff{
			Main:     value(groups[1], parseGrade(groups[2])),
			Encoding: EncodingSingle,
		}
	}

	return Cutoff{
		Main:     value(cell, GradeNone),
		Encoding: EncodingRaw,
		Degraded: true,
	}
}
