package export

import (
	"fmt"
	"strconv"
	"strings"
)

// Table is a header plus rows of already-stringified cells.
type Table struct {
	rows [][]string
}

// NewTable starts a table with the given header row.
func NewTable(header ...string) *Table {
	return &Table{rows: [][]string{header}}
}

// Append adds a row. Cells are converted with Cell.
func (t *Table) Append(cells ...any) {
	row := make([]string, len(cells))
	for i, c := range cells {
		row[i] = Cell(c)
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of data rows, excluding the header.
func (t *Table) Len() int { return len(t.rows) - 1 }

// Bytes encodes the table. Rows are joined by "\n" with no trailing newline.
func (t *Table) Bytes() []byte {
	var b strings.Builder
	for i, row := range t.rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(EncodeRow(row))
	}
	return []byte(b.String())
}

// EncodeRow escapes each field and joins them with commas.
func EncodeRow(fields []string) string {
	encoded := make([]string, len(fields))
	for i, f := range fields {
		encoded[i] = EncodeField(f)
	}
	return strings.Join(encoded, ",")
}

// EncodeField quotes s iff it contains a comma, a double quote or a newline,
// doubling any inner quotes.
func EncodeField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Cell renders a value in its plain string form. Nil and nil pointers become
// the empty string; booleans are written as 1/0 like the capture format.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case bool:
		if x {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case *int:
		if x == nil {
			return ""
		}
		return strconv.Itoa(*x)
	case *string:
		if x == nil {
			return ""
		}
		return *x
	}
	return fmt.Sprint(v)
}
