package sheets

import (
	"context"
	"strings"
)

// MockSheetsAPI implements SheetsAPI for testing
type MockSheetsAPI struct {
	sheets      map[string]bool            // Track which sheets exist
	data        map[string][][]interface{} // Store sheet data
	shouldError bool
	created     []string
	cleared     []string
	appended    int
}

func NewMockSheetsAPI() *MockSheetsAPI {
	return &MockSheetsAPI{
		sheets: make(map[string]bool),
		data:   make(map[string][][]interface{}),
	}
}

// sheetNameOf extracts the sheet name from an A1 range, removing quotes
func sheetNameOf(range_ string) string {
	sheetName := range_
	if exclamationIndex := strings.Index(range_, "!"); exclamationIndex != -1 {
		sheetName = range_[:exclamationIndex]
	}
	sheetName = strings.Trim(sheetName, "'\"")
	return strings.ReplaceAll(sheetName, "''", "'")
}

func (m *MockSheetsAPI) ReadSheet(ctx context.Context, spreadsheetID, range_ string) ([][]interface{}, error) {
	if m.shouldError {
		return nil, &mockError{msg: "mock read error"}
	}
	if data, exists := m.data[sheetNameOf(range_)]; exists {
		return data, nil
	}
	return [][]interface{}{}, nil
}

func (m *MockSheetsAPI) UpdateRange(ctx context.Context, spreadsheetID, range_ string, values [][]interface{}) error {
	if m.shouldError {
		return &mockError{msg: "mock update error"}
	}
	m.data[sheetNameOf(range_)] = values
	return nil
}

func (m *MockSheetsAPI) ClearRange(ctx context.Context, spreadsheetID, range_ string) error {
	if m.shouldError {
		return &mockError{msg: "mock clear error"}
	}
	name := sheetNameOf(range_)
	m.cleared = append(m.cleared, name)
	delete(m.data, name)
	return nil
}

func (m *MockSheetsAPI) AppendRows(ctx context.Context, spreadsheetID, range_ string, rows [][]interface{}) error {
	if m.shouldError {
		return &mockError{msg: "mock append error"}
	}
	m.appended++
	name := sheetNameOf(range_)
	m.data[name] = append(m.data[name], rows...)
	return nil
}

func (m *MockSheetsAPI) CreateSheet(ctx context.Context, spreadsheetID, sheetName string) error {
	if m.shouldError {
		return &mockError{msg: "mock create error"}
	}
	m.created = append(m.created, sheetName)
	m.sheets[sheetName] = true
	return nil
}

func (m *MockSheetsAPI) SheetExists(ctx context.Context, spreadsheetID, sheetName string) (bool, error) {
	if m.shouldError {
		return false, &mockError{msg: "mock exists error"}
	}
	return m.sheets[sheetName], nil
}

func (m *MockSheetsAPI) EnsureSheetCapacity(ctx context.Context, spreadsheetID, sheetName string, requiredRows, requiredCols int) error {
	if m.shouldError {
		return &mockError{msg: "mock capacity error"}
	}
	m.sheets[sheetName] = true
	return nil
}

func (m *MockSheetsAPI) SetError(shouldError bool) {
	m.shouldError = shouldError
}

func (m *MockSheetsAPI) GetSheetData(sheetName string) [][]interface{} {
	return m.data[sheetName]
}

func (m *MockSheetsAPI) SetSheetData(sheetName string, data [][]interface{}) {
	m.sheets[sheetName] = true
	m.data[sheetName] = data
}

type mockError struct {
	msg string
}

func (e *mockError) Error() string {
	return e.msg
}
