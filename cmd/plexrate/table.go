package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// cell is one rendered table value. Numeric cells right-align so
// counts and star ratings line up under their headers.
type cell struct {
	value   string
	numeric bool
}

func textCell(v string) cell { return cell{value: v} }

func countCell(n int) cell { return cell{value: fmt.Sprintf("%d", n), numeric: true} }

// starsCell formats a rating to two decimals, enough to show the
// fractional posteriors the engine writes between the half-star stops.
func starsCell(stars float64) cell {
	return cell{value: fmt.Sprintf("%.2f", stars), numeric: true}
}

func percentCell(pct float64) cell {
	return cell{value: fmt.Sprintf("%.1f%%", pct), numeric: true}
}

// renderTable draws one rounded table. Column alignment follows the
// cells: any numeric cell makes its column right-aligned, headers stay
// left-aligned. Short rows pad with empty cells.
func renderTable(headers []string, rows [][]cell) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	numeric := make([]bool, columns)
	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i].value
				numeric[i] = numeric[i] || row[i].numeric
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if numeric[i] {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
