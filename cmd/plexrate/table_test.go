package main

import (
	"strings"
	"testing"
)

func TestCellFormatting(t *testing.T) {
	cases := []struct {
		name    string
		cell    cell
		value   string
		numeric bool
	}{
		{"text", textCell("Harvest Moon"), "Harvest Moon", false},
		{"count", countCell(42), "42", true},
		{"stars", starsCell(4.5), "4.50", true},
		{"fractional stars", starsCell(3.9166666666666665), "3.92", true},
		{"percent", percentCell(86.666), "86.7%", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.cell.value != tc.value || tc.cell.numeric != tc.numeric {
				t.Errorf("cell = %+v, want value %q numeric %v", tc.cell, tc.value, tc.numeric)
			}
		})
	}
}

func TestRenderTableAlignsNumericColumns(t *testing.T) {
	out := renderTable(
		[]string{"Title", "N"},
		[][]cell{
			{textCell("short"), countCell(7)},
			{textCell("much longer title"), countCell(100)},
		},
	)
	if !strings.Contains(out, "│   7 │") {
		t.Errorf("count column not right-aligned:\n%s", out)
	}
	if !strings.Contains(out, "│ short ") {
		t.Errorf("text column not left-aligned:\n%s", out)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]string{"A", "B", "C"},
		[][]cell{{textCell("only")}},
	)
	if !strings.Contains(out, "only") {
		t.Errorf("short row dropped:\n%s", out)
	}
}

func TestRenderTableEmptyHeaders(t *testing.T) {
	if out := renderTable(nil, nil); out != "" {
		t.Errorf("renderTable(nil, nil) = %q, want empty", out)
	}
}
