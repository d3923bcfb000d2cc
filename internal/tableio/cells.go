package tableio

// cells.go converts raw CSV cells to table cells.
//
// Input comes from spreadsheets as often as from programs, so numbers may
// carry currency symbols, thousands separators or accounting parentheses,
// and cells may carry an Excel formula prefix (="...").
//
// Empty cells and the tokens NA, NaN, null and N/A (any case) are missing.

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/JonMunkholm/featureprep/internal/table"
	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex matches integers, decimals and scientific notation after
// cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
}

// IsMissing reports whether a cleaned cell is a missing marker.
func IsMissing(s string) bool {
	return missingTokens[strings.ToLower(s)]
}

// CleanCell trims whitespace, an Excel formula prefix and surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// ParseNumber converts a cell to a numeric table cell.
// Returns ok=false for a non-missing cell that is not a number.
func ParseNumber(s string) (cell pgtype.Float8, ok bool) {
	s = CleanCell(s)
	if IsMissing(s) {
		return table.NullFloat(), true
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if negative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return pgtype.Float8{}, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return pgtype.Float8{}, false
	}
	return table.Num(f), true
}

// ParseText converts a cell to a categorical table cell.
func ParseText(s string) pgtype.Text {
	s = CleanCell(s)
	if IsMissing(s) {
		return table.NullText()
	}
	return table.Str(s)
}

// FormatNumber renders a numeric cell for CSV output; missing is empty.
func FormatNumber(v pgtype.Float8) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'g', -1, 64)
}

// FormatText renders a categorical cell for CSV output; missing is empty.
func FormatText(v pgtype.Text) string {
	if !v.Valid {
		return ""
	}
	return v.String
}
