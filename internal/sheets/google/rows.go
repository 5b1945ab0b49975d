package google

import (
	"fmt"
	"strings"

	"boatshare/internal/core"
)

// Columns of the boats sheet. The ID column lets the exporter find the row
// of an already exported boat.
var header = []any{"ID", "Name", "Price", "Year", "Length", "Engine", "Up", "Down", "Score", "Finn URL"}

const lastColumn = "J"

func boatRow(b core.Boat) []any {
	return []any{
		b.ID,
		b.Name,
		b.Price,
		b.Year,
		b.Length,
		b.Engine,
		b.Votes.Up,
		b.Votes.Down,
		b.Score(),
		b.FinnURL,
	}
}

// findRow returns the 1-based sheet row holding id in the first column, or
// -1. values is the result of reading column A.
func findRow(values [][]any, id string) int {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if cellString(row[0]) == id {
			return i + 1
		}
	}
	return -1
}

// nextRow is the first row after the last non-empty one; row 1 is the header.
func nextRow(values [][]any) int {
	if len(values) == 0 {
		return 2
	}
	return len(values) + 1
}

func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", sheet, row, lastColumn, row)
}

func cellString(v any) string {
	return strings.TrimSpace(fmt.Sprint(v))
}
