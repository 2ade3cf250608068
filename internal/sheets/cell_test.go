package sheets

import "testing"

func TestCellConversions(t *testing.T) {
	testCases := []struct {
		name        string
		input       interface{}
		expectedStr string
		empty       bool
	}{
		{"nil", nil, "", true},
		{"empty string", "", "", true},
		{"string number", " 42 ", " 42 ", false},
		{"string id", "1208450187", "1208450187", false},
		{"float64", 3.75, "3.75", false},
		{"int", 7, "7", false},
		{"int64", int64(9), "9", false},
		{"text", "Victory", "Victory", false},
		{"float64 id", 1208450187.0, "1208450187", false},
		{"bool", true, "true", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cell := NewCell(tc.input)
			if cell.String() != tc.expectedStr {
				t.Errorf("Expected String %q, got %q", tc.expectedStr, cell.String())
			}
			if cell.IsEmpty() != tc.empty {
				t.Errorf("Expected IsEmpty %v, got %v", tc.empty, cell.IsEmpty())
			}
		})
	}
}

func TestCellAt(t *testing.T) {
	row := []interface{}{"a", 2}

	if got := CellAt(row, 0).String(); got != "a" {
		t.Errorf("Expected 'a', got %q", got)
	}
	if got := CellAt(row, 1).String(); got != "2" {
		t.Errorf("Expected '2', got %q", got)
	}
	if !CellAt(row, 2).IsEmpty() {
		t.Error("Expected cell past the end of the row to be empty")
	}
	if !CellAt(row, -1).IsEmpty() {
		t.Error("Expected negative column to be empty")
	}
	if !CellAt(nil, 0).IsEmpty() {
		t.Error("Expected nil row to give an empty cell")
	}
}
