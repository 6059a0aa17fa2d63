package ingest

import (
	"strconv"
	"strings"
)

// emptyHeaderLabel names columns whose header cell is blank, suffixed _1, _2, ...
// for every further blank column.
const emptyHeaderLabel = "__EMPTY"

// headerScanRows bounds how far the positional strategy looks for a header row.
const headerScanRows = 5

// offsetHeaderRow is the header row used by the offset strategy, below a two-row banner.
const offsetHeaderRow = 2

// Strategy turns a grid into rows. A strategy that finds nothing returns no rows.
type Strategy struct {
	Name    string
	Extract func(Grid) []RawRow
}

// DefaultStrategies is the extraction cascade, tried in order until one yields rows.
var DefaultStrategies = []Strategy{
	{Name: "header", Extract: extractWholeSheet},
	{Name: "offset", Extract: extractOffset},
	{Name: "positional", Extract: extractPositional},
}

// Extract runs strategies in order and returns the rows of the first that yields
// any, with its name. ErrUnreadableSheet is returned when none does.
func Extract(grid Grid, strategies []Strategy) ([]RawRow, string, error) {
	for _, strategy := range strategies {
		if rows := strategy.Extract(grid); len(rows) > 0 {
			return rows, strategy.Name, nil
		}
	}
	return nil, "", ErrUnreadableSheet
}

// extractWholeSheet treats row 0 as the header. Blank data rows are skipped.
func extractWholeSheet(grid Grid) []RawRow {
	return objectRows(grid, 0, false)
}

// extractOffset is extractWholeSheet for sheets with a two-row title banner.
func extractOffset(grid Grid) []RawRow {
	return objectRows(grid, offsetHeaderRow, false)
}

// extractPositional takes the first non-blank row among the first five as the
// header and keeps blank rows after it. Without any header candidate every row
// is returned positionally.
func extractPositional(grid Grid) []RawRow {
	limit := min(headerScanRows, len(grid))
	for i := 0; i < limit; i++ {
		if !blankCells(grid[i]) {
			return objectRows(grid, i, true)
		}
	}

	rows := make([]RawRow, 0, len(grid))
	for _, cells := range grid {
		rows = append(rows, NewPositionalRow(padCells(cells, grid.Width())))
	}
	return rows
}

func objectRows(grid Grid, headerRow int, keepBlank bool) []RawRow {
	if headerRow >= len(grid) {
		return nil
	}
	width := grid.Width()
	labels := headerLabels(grid[headerRow], width)

	rows := make([]RawRow, 0, len(grid)-headerRow-1)
	for _, cells := range grid[headerRow+1:] {
		if !keepBlank && blankCells(cells) {
			continue
		}
		rows = append(rows, NewLabeledRow(labels, padCells(cells, width)))
	}
	return rows
}

// headerLabels names every column: blank headers become __EMPTY and repeated
// labels get a numeric suffix, so every label in a row is unique.
func headerLabels(header []string, width int) []string {
	labels := make([]string, width)
	seen := make(map[string]int, width)
	for col := 0; col < width; col++ {
		label := ""
		if col < len(header) {
			label = strings.TrimSpace(header[col])
		}
		if label == "" {
			label = emptyHeaderLabel
		}

		counter := seen[label]
		if counter == 0 {
			seen[label] = 1
			labels[col] = label
			continue
		}
		candidate := label
		for {
			candidate = label + "_" + strconv.Itoa(counter)
			counter++
			if seen[candidate] == 0 {
				break
			}
		}
		seen[label] = counter
		seen[candidate] = 1
		labels[col] = candidate
	}
	return labels
}

func padCells(cells []string, width int) []string {
	out := make([]string, width)
	copy(out, cells)
	return out
}

func blankCells(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
