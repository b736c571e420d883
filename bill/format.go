package bill

import (
	"fmt"
	"sort"
	"time"
)

const isoDateLayout = "2006-01-02"

// French short month abbreviations, indexed by time.Month - 1. Both juin and
// juillet collapse to "Jui" because the label keeps only the first three
// letters of the locale's short month.
var frenchMonths = [12]string{
	"Jan", "Fév", "Mar", "Avr", "Mai", "Jui",
	"Jui", "Aoû", "Sep", "Oct", "Nov", "Déc",
}

// statusLabels maps each known status to its display label. Unknown codes
// pass through unchanged.
var statusLabels = map[Status]string{
	StatusPending:  "En attente",
	StatusAccepted: "Accepté",
	StatusRefused:  "Refusé",
}

// FormatDate renders an ISO date as the localized short form, e.g.
// "2004-04-04" -> "4 Avr. 04". An unparseable input is returned unchanged
// rather than failing: a corrupted record must not abort a whole listing.
func FormatDate(iso string) string {
	parsed, err := time.Parse(isoDateLayout, iso)
	if err != nil {
		return iso
	}
	return fmt.Sprintf("%d %s. %02d",
		parsed.Day(),
		frenchMonths[parsed.Month()-1],
		parsed.Year()%100,
	)
}

// FormatStatus returns the display label for a status code.
func FormatStatus(s Status) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Format projects a Bill into its display form. The input is not mutated.
func Format(b Bill) Formatted {
	return Formatted{
		ID:         b.ID,
		Email:      b.Email,
		Type:       b.Type,
		Name:       b.Name,
		Amount:     b.Amount,
		Date:       FormatDate(b.Date),
		Vat:        b.Vat,
		Pct:        b.Pct,
		Commentary: b.Commentary,
		FileURL:    b.FileURL,
		FileName:   b.FileName,
		Status:     FormatStatus(b.Status),
	}
}

// SortNewestFirst orders bills by raw ISO date, descending. ISO dates sort
// lexically, so no parsing is needed; ties keep their relative order.
func SortNewestFirst(bills []Bill) {
	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].Date > bills[j].Date
	})
}
