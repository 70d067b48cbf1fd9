// Package cellclean scrubs spreadsheet cell values on ingestion. Cells
// edited by hand can carry stray markup or HTML entities; everything is
// stripped down to plain trimmed text before it enters the cache.
package cellclean

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Cell strips any markup from a single cell value and trims whitespace.
func Cell(s string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}

// Row scrubs every cell of a row in place and returns it.
func Row(cells []string) []string {
	for i, c := range cells {
		cells[i] = Cell(c)
	}
	return cells
}

// Rows scrubs every row of a sheet in place and returns it.
func Rows(rows [][]string) [][]string {
	for i, r := range rows {
		rows[i] = Row(r)
	}
	return rows
}
