package sheets

import (
	"fmt"
	"strconv"
)

// Cell provides type-safe access to Google Sheets cell values.
// The Google Sheets API returns [][]interface{}, which we cannot change.
type Cell struct {
	raw interface{}
}

// NewCell creates a Cell from a raw interface{} value from Google Sheets API
func NewCell(raw interface{}) Cell {
	return Cell{raw: raw}
}

// CellAt returns the cell at column col of row, or an empty cell when the
// row is shorter. The API trims trailing empty cells from every row.
func CellAt(row []interface{}, col int) Cell {
	if col < 0 || col >= len(row) {
		return Cell{}
	}
	return NewCell(row[col])
}

// String returns the cell value as a string
func (c Cell) String() string {
	if c.raw == nil {
		return ""
	}
	switch v := c.raw.(type) {
	case string:
		return v
	case float64:
		// Numeric ids come back as float64; avoid exponent notation
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", c.raw)
}

// IsEmpty returns true if the cell contains nil or empty string
func (c Cell) IsEmpty() bool {
	return c.raw == nil || c.raw == ""
}
