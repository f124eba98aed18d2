package backup

import (
	"fmt"
	"io"
)

const maxReportStep = 1000

// TextProgress writes line based progress for one table at a time. Tables are
// reported in sequence, so it only tracks the table currently in flight.
type TextProgress struct {
	out  io.Writer
	verb string

	table   string
	total   int
	done    int
	printed int
	step    int
}

// NewTextProgress returns a reporter that labels its lines with verb, e.g.
// "export" yields "exporting cards" and "exported cards".
func NewTextProgress(out io.Writer, verb string) *TextProgress {
	return &TextProgress{out: out, verb: verb}
}

func (p *TextProgress) StartTable(table string, total int) {
	p.table = table
	p.total = max(total, 0)
	p.done = 0
	p.printed = 0
	p.step = reportStep(p.total)
	if p.total > 0 {
		fmt.Fprintf(p.out, "%sing %s (%d rows)\n", p.verb, table, p.total)
		return
	}
	fmt.Fprintf(p.out, "%sing %s\n", p.verb, table)
}

func (p *TextProgress) Increment(table string, delta int) {
	if delta <= 0 || table != p.table {
		return
	}
	p.done += delta
	if p.printed == 0 || p.done == p.total || p.done-p.printed >= p.step {
		p.line()
	}
}

func (p *TextProgress) FinishTable(table string) {
	if table != p.table {
		return
	}
	if p.done != p.printed {
		p.line()
	}
	if p.total > 0 {
		fmt.Fprintf(p.out, "%sed %s: %d/%d rows\n", p.verb, table, p.done, p.total)
	} else {
		fmt.Fprintf(p.out, "%sed %s: %d rows\n", p.verb, table, p.done)
	}
	p.table = ""
}

func (p *TextProgress) line() {
	if p.total > 0 {
		fmt.Fprintf(p.out, "%s: %d/%d\n", p.table, p.done, p.total)
	} else {
		fmt.Fprintf(p.out, "%s: %d rows\n", p.table, p.done)
	}
	p.printed = p.done
}

// reportStep spaces progress lines about 5% apart, capped for large tables.
func reportStep(total int) int {
	if total <= 0 {
		return maxReportStep
	}
	return min(max(total/20, 1), maxReportStep)
}
