package importer

import (
	"strconv"
	"strings"
)

// Column order is fixed and shared by import, export, and the template so
// that an exported file can be re-imported unchanged.
var columns = []string{
	"Book Name",
	"Author",
	"Category",
	"Editor",
	"Volumes",
	"Publisher",
	"Year",
	"Copies",
	"Status",
	"Completion Status",
	"Note",
}

var requiredColumns = []string{"Book Name", "Author", "Category"}

// placeholders are cell values treated the same as an empty cell. They show
// up in spreadsheets people maintain by hand.
var placeholders = map[string]struct{}{
	"":    {},
	"-":   {},
	"**":  {},
	"n/a": {},
}

// cellValue trims a cell and maps placeholder values to absent.
func cellValue(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if _, ok := placeholders[strings.ToLower(value)]; ok {
		return "", false
	}
	return value, true
}

func cellInt(raw string) (int, bool, error) {
	value, ok := cellValue(raw)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// headerIndex maps the known column names to their positions in the header
// row. Matching is case-insensitive and ignores surrounding whitespace;
// unknown columns are ignored.
func headerIndex(header []string) map[string]int {
	index := map[string]int{}
	for i, cell := range header {
		name := strings.TrimSpace(cell)
		for _, col := range columns {
			if strings.EqualFold(name, col) {
				index[col] = i
				break
			}
		}
	}
	return index
}

func missingRequired(index map[string]int) []string {
	missing := []string{}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// field returns the named cell of a row, or "" when the column wasn't in the
// header or the row is short.
func field(row []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
