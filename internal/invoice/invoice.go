// Package invoice turns a client's closed work sessions into grouped or
// itemized billing reports. Amounts are accumulated unrounded; rounding
// happens only when an amount is formatted for display.
package invoice

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/clockit/internal/store"
)

type Mode string

const (
	ModeGrouped  Mode = "grouped"
	ModeItemized Mode = "itemized"
)

// GroupedRow is one service's summed earned income across all sessions.
type GroupedRow struct {
	Service      string
	EarnedIncome float64
}

// ItemRow is one session: service, its clock-out description, and income.
type ItemRow struct {
	Service      string
	Description  string
	EarnedIncome float64
}

// Report is the renderer-agnostic invoice structure. Exactly one of
// Grouped or Items is populated, depending on Mode. A client with no
// closed sessions produces a report with zero rows, not an error.
type Report struct {
	Number      string
	ClientName  string
	GeneratedAt time.Time
	Mode        Mode
	Grouped     []GroupedRow
	Items       []ItemRow
}

func newReport(clientName string, mode Mode) Report {
	return Report{
		Number:      uuid.NewString(),
		ClientName:  clientName,
		GeneratedAt: time.Now(),
		Mode:        mode,
	}
}

// Grouped sums earned income per service name, in order of first
// appearance. Sessions sharing a service name accumulate into one row.
func Grouped(clientName string, sessions []store.WorkSession) Report {
	r := newReport(clientName, ModeGrouped)

	index := make(map[string]int)
	for _, ws := range sessions {
		if i, ok := index[ws.ServiceName]; ok {
			r.Grouped[i].EarnedIncome += ws.EarnedIncome()
			continue
		}
		index[ws.ServiceName] = len(r.Grouped)
		r.Grouped = append(r.Grouped, GroupedRow{
			Service:      ws.ServiceName,
			EarnedIncome: ws.EarnedIncome(),
		})
	}
	return r
}

// Itemized emits one row per session, preserving the input order (callers
// pass sessions newest first; no resorting here).
func Itemized(clientName string, sessions []store.WorkSession) Report {
	r := newReport(clientName, ModeItemized)

	for _, ws := range sessions {
		r.Items = append(r.Items, ItemRow{
			Service:      ws.ServiceName,
			Description:  ws.Description,
			EarnedIncome: ws.EarnedIncome(),
		})
	}
	return r
}

// Total is the report's unrounded income sum.
func (r Report) Total() float64 {
	var total float64
	for _, row := range r.Grouped {
		total += row.EarnedIncome
	}
	for _, row := range r.Items {
		total += row.EarnedIncome
	}
	return total
}

// RowCount is the number of data rows the renderer will receive.
func (r Report) RowCount() int {
	if r.Mode == ModeGrouped {
		return len(r.Grouped)
	}
	return len(r.Items)
}

// FormatAmount rounds half-up to two decimal places.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", math.Floor(v*100+0.5)/100)
}

// FormatMoney prefixes the currency symbol, e.g. "$12.35".
func FormatMoney(symbol string, v float64) string {
	return symbol + FormatAmount(v)
}
