// Package export renders filtered flat records to the CSV and JSON download
// surfaces, with spreadsheet formula-injection hardening and safe attachment
// filenames.
package export

import (
	"sort"
	"strings"

	"github.com/sushil-negi/intake-automation-sub003/pkg/flat"
)

// CSVEscape makes a single cell safe for spreadsheet consumption. A leading
// '=', '+', '-', '@', tab, or carriage return is neutralized with a single
// quote so the cell can never execute as a formula; the cell is then quoted
// if it contains a comma, quote, or newline.
func CSVEscape(value string) string {
	if value == "" {
		return ""
	}
	switch value[0] {
	case '=', '+', '-', '@', '\t', '\r':
		value = "'" + value
	}
	if strings.ContainsAny(value, ",\"\n\r") {
		value = `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
	}
	return value
}

// Headers returns the union of keys across rows in sorted order, giving the
// CSV a deterministic column order.
func Headers(rows []flat.Record) []string {
	seen := map[string]bool{}
	var headers []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	sort.Strings(headers)
	return headers
}

// BuildCSV renders rows under the given headers, escaping every cell.
func BuildCSV(headers []string, rows []flat.Record) string {
	var b strings.Builder
	for i, h := range headers {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(CSVEscape(h))
	}
	b.WriteByte('\n')
	for _, row := range rows {
		for i, h := range headers {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(CSVEscape(row[h]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
