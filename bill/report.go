package bill

import (
	"fmt"
	"sort"
	"strings"
)

// Report is an aggregate view over a batch of bills, used by the report
// command to turn an exported CSV into a readable summary.
type Report struct {
	Total       float64
	ByType      map[string]float64
	CountByStat map[Status]int
}

// Summarize aggregates amounts per expense type and counts per status.
func Summarize(bills []Bill) Report {
	r := Report{
		ByType:      make(map[string]float64),
		CountByStat: make(map[Status]int),
	}
	for _, b := range bills {
		r.Total += b.Amount
		r.ByType[b.Type] += b.Amount
		r.CountByStat[b.Status]++
	}
	return r
}

// String renders the report as a fixed-order text table, types sorted
// alphabetically so the output is stable.
func (r Report) String() string {
	var sb strings.Builder

	types := make([]string, 0, len(r.ByType))
	for t := range r.ByType {
		types = append(types, t)
	}
	sort.Strings(types)

	sb.WriteString("Expense report\n")
	sb.WriteString("==============\n")
	for _, t := range types {
		sb.WriteString(fmt.Sprintf("%-30s %10.2f\n", t, r.ByType[t]))
	}
	sb.WriteString(fmt.Sprintf("%-30s %10.2f\n", "TOTAL", r.Total))

	sb.WriteString("\nStatus\n")
	sb.WriteString("------\n")
	for _, s := range []Status{StatusPending, StatusAccepted, StatusRefused} {
		if n := r.CountByStat[s]; n > 0 {
			sb.WriteString(fmt.Sprintf("%-30s %10d\n", FormatStatus(s), n))
		}
	}
	return sb.String()
}
