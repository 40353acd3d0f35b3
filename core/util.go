package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	PrintToggle            = false
	LevelTrace  slog.Level = slog.LevelInfo + 1
)

func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// StatsReport renders the last invocation as a table: totals first,
// then the functional-unit inventory the run was scheduled against.
func (c *Comp) StatsReport() string {
	s := c.sched

	totals := table.NewWriter()
	totals.SetTitle(fmt.Sprintf("Execution Summary: %s", c.Name()))
	totals.AppendHeader(table.Row{"Metric", "Value"})
	totals.AppendRow(table.Row{"Total Cycles", uint64(s.totalCycles())})
	totals.AppendRow(table.Row{"Instructions Issued", s.issuedCount})
	totals.AppendRow(table.Row{"Instructions Completed", s.completedCount})
	totals.AppendRow(table.Row{"Stall Cycles", s.stallCount})
	if v, ok := s.result(); ok {
		totals.AppendRow(table.Row{"Result", v.Uint()})
	}

	units := table.NewWriter()
	units.SetTitle("Functional Units")
	units.AppendHeader(table.Row{"Class", "Latency", "Limit"})
	for _, class := range s.pool.Classes() {
		spec, _ := s.pool.SpecOf(class)
		limit := "unlimited"
		if spec.Limit > 0 {
			limit = fmt.Sprintf("%d", spec.Limit)
		}
		units.AppendRow(table.Row{string(class), spec.Cycles, limit})
	}

	return totals.Render() + "\n" + units.Render()
}

// PrintStats writes the report to stdout when PrintToggle is on.
func (c *Comp) PrintStats() {
	if !PrintToggle {
		return
	}
	fmt.Println(c.StatsReport())
}

// LogStats emits the run counters through the structured logger.
func (c *Comp) LogStats() {
	s := c.sched
	slog.Debug("ExecutionStats",
		"Name", c.Name(),
		"TotalCycles", uint64(s.totalCycles()),
		"Issued", s.issuedCount,
		"Completed", s.completedCount,
		"Stalls", s.stallCount,
	)
}
