package verify

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

// maxShownMismatches bounds the mismatch table; a broken scheduler
// tends to corrupt whole regions.
const maxShownMismatches = 16

// WriteReport writes a formatted verification report.
func (r *Report) WriteReport(w io.Writer) {
	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetTitle("Verification Summary")
	summary.AppendHeader(table.Row{"Stage", "Outcome"})
	summary.AppendRow(table.Row{"Lint", countOrOK(len(r.LintIssues), "issue(s)")})
	summary.AppendRow(table.Row{"Functional Run", errOrOK(r.FuncErr)})
	summary.AppendRow(table.Row{"Timed Run", errOrOK(r.TimedErr)})
	summary.AppendRow(table.Row{"Memory Compare", countOrOK(len(r.Mismatches), "mismatched byte(s)")})
	if r.TimedErr == nil {
		summary.AppendRow(table.Row{"Cycles", uint64(r.Cycles)})
	}
	if r.FuncHas || r.TimedHas {
		summary.AppendRow(table.Row{"Return (functional)", returnCell(r.FuncHas, r.FuncValue.Bits)})
		summary.AppendRow(table.Row{"Return (timed)", returnCell(r.TimedHas, r.TimedValue.Bits)})
	}
	summary.Render()

	if len(r.LintIssues) > 0 {
		lint := table.NewWriter()
		lint.SetOutputMirror(w)
		lint.SetTitle("Lint Issues")
		lint.AppendHeader(table.Row{"Type", "Function", "Inst", "Message"})
		for _, issue := range r.LintIssues {
			lint.AppendRow(table.Row{
				string(issue.Type), issue.Fn, issue.InstID, issue.Message,
			})
		}
		lint.Render()
	}

	if len(r.Mismatches) > 0 {
		mism := table.NewWriter()
		mism.SetOutputMirror(w)
		mism.SetTitle("Memory Mismatches")
		mism.AppendHeader(table.Row{"Region", "Address", "Functional", "Timed"})
		for i, m := range r.Mismatches {
			if i >= maxShownMismatches {
				mism.AppendFooter(table.Row{
					"", "", "", fmt.Sprintf("(%d more)", len(r.Mismatches)-i),
				})
				break
			}
			mism.AppendRow(table.Row{
				m.Region,
				fmt.Sprintf("0x%x", m.Addr),
				fmt.Sprintf("0x%02x", m.Func),
				fmt.Sprintf("0x%02x", m.Timed),
			})
		}
		mism.Render()
	}
}

// Print writes the report to stdout.
func (r *Report) Print() {
	r.WriteReport(os.Stdout)
}

func errOrOK(err error) string {
	if err != nil {
		return err.Error()
	}
	return "ok"
}

func countOrOK(n int, what string) string {
	if n > 0 {
		return fmt.Sprintf("%d %s", n, what)
	}
	return "ok"
}

func returnCell(has bool, bits uint64) string {
	if !has {
		return "void"
	}
	return fmt.Sprintf("0x%x", bits)
}
