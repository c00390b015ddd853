package core

// convert.go turns the messy reality of user spreadsheets into display strings.
//
// These functions handle:
//   - Excel formula prefixes (="value") and stray quotes in cells
//   - Blank and duplicated headers (pandas-style "Unnamed: N" and "X.1")
//   - Postgres values of any scanned type (numeric, dates, uuids, ...)
//
// Display values are never standardized here; see Standardize for keys.

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// UnnamedPrefix is the header given to columns whose header cell is blank.
// Columns carrying it are hidden from every view.
const UnnamedPrefix = "Unnamed: "

// HeaderIndex maps lowercased, cleaned header names to column positions.
type HeaderIndex map[string]int

// Lookup returns the position of a column, matching case-insensitively.
func (h HeaderIndex) Lookup(name string) (int, bool) {
	i, ok := h[strings.ToLower(CleanCell(name))]
	return i, ok
}

// MakeHeaderIndex creates a HeaderIndex from a header row.
// Keys are lowercased for case-insensitive matching; the first occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace (including a stray BOM)
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))

	// Remove leading '='
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	// Remove any surrounding quotes
	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}

// NormalizeHeader cleans a header row. Blank headers become "Unnamed: N"
// (N is the zero-based column position) and repeated headers get a ".1",
// ".2", ... suffix so every column name in a table is unique.
func NormalizeHeader(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))

	for i, h := range raw {
		name := CleanCell(h)
		if name == "" {
			name = UnnamedPrefix + strconv.Itoa(i)
		}

		if _, taken := seen[name]; taken {
			base := name
			for n := seen[base]; ; n++ {
				candidate := base + "." + strconv.Itoa(n)
				if _, taken := seen[candidate]; !taken {
					seen[base] = n + 1
					name = candidate
					break
				}
			}
		}

		seen[name] = 1
		out[i] = name
	}

	return out
}

// IsUnnamed reports whether a column header was generated for a blank header.
func IsUnnamed(col string) bool {
	return strings.TrimSpace(col) == "" || strings.HasPrefix(col, UnnamedPrefix)
}

// FormatValue converts a value scanned from Postgres to its display string.
// Nil and invalid values become "" (null).
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format(time.RFC3339)
	case [16]byte:
		return uuid.UUID(x).String()
	case pgtype.Numeric:
		return numericString(x)
	case pgtype.Text:
		if !x.Valid {
			return ""
		}
		return x.String
	case pgtype.Date:
		if !x.Valid {
			return ""
		}
		return x.Time.Format("2006-01-02")
	case pgtype.UUID:
		if !x.Valid {
			return ""
		}
		return uuid.UUID(x.Bytes).String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// numericString renders a pgtype.Numeric without exponent notation.
func numericString(n pgtype.Numeric) string {
	if !n.Valid || n.NaN {
		return ""
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Float64, 'f', -1, 64)
}
