// Package export renders table dumps as downloadable CSV and XLSX files.
package export

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatValue renders a raw column value as cell text.
// NULL becomes the empty string, timestamps RFC 3339 and arrays a comma-separated list.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = FormatValue(item)
		}
		return strings.Join(parts, ", ")
	case driver.Valuer:
		inner, err := val.Value()
		if err != nil {
			return ""
		}
		return FormatValue(inner)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// cellValue keeps numbers and booleans typed for spreadsheets.
func cellValue(v any) any {
	switch v.(type) {
	case int16, int32, int64, int, float32, float64, bool:
		return v
	default:
		return FormatValue(v)
	}
}
