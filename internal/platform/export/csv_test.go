package export

import (
	"reflect"
	"strings"
	"testing"

	"github.com/sushil-negi/intake-automation-sub003/pkg/flat"
)

func TestCSVEscape(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  string
	}{
		{"plain", "Jane Doe", "Jane Doe"},
		{"empty", "", ""},
		{"formula equals", "=SUM(A1:A10)", "'=SUM(A1:A10)"},
		{"formula plus", "+1234", "'+1234"},
		{"formula minus", "-cmd", "'-cmd"},
		{"formula at", "@import", "'@import"},
		{"leading tab", "\tvalue", "'\tvalue"},
		{"comma quoted", "a,b", `"a,b"`},
		{"embedded quote doubled", `say "hi"`, `"say ""hi"""`},
		{"newline quoted", "line1\nline2", "\"line1\nline2\""},
		{"formula with comma gets both", "=A1,B1", `"'=A1,B1"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CSVEscape(tc.value); got != tc.want {
				t.Fatalf("CSVEscape(%q) = %q, want %q", tc.value, got, tc.want)
			}
		})
	}
}

func TestHeaders(t *testing.T) {
	rows := []flat.Record{
		{"clientName": "Jane", "allergies": "Penicillin"},
		{"clientName": "John", "serviceDays": "Monday"},
	}
	got := Headers(rows)
	want := []string{"allergies", "clientName", "serviceDays"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Headers = %v, want %v", got, want)
	}
}

func TestBuildCSV(t *testing.T) {
	rows := []flat.Record{
		{"clientName": "Doe, Jane", "notes": "=SUM(A1)"},
		{"clientName": "John"},
	}
	csv := BuildCSV(Headers(rows), rows)
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %q", len(lines), csv)
	}
	if lines[0] != "clientName,notes" {
		t.Fatalf("header line = %q", lines[0])
	}
	if lines[1] != `"Doe, Jane",'=SUM(A1)` {
		t.Fatalf("row 1 = %q", lines[1])
	}
	if lines[2] != "John," {
		t.Fatalf("row 2 = %q", lines[2])
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "JaneDoe", "JaneDoe"},
		{"spaces and punctuation", "Jane Doe, RN.", "Jane_Doe__RN_"},
		{"path traversal", "../../etc/passwd", "______etc_passwd"},
		{"empty", "", "Unknown"},
		{"truncated to thirty", strings.Repeat("a", 40), strings.Repeat("a", 30)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeFilename(tc.input); got != tc.want {
				t.Fatalf("SanitizeFilename(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
