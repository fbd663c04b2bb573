// Package services contains the application logic between the HTTP
// layer and the Store: entry expansion, ledger bookkeeping, registry
// guards and reporting.
package services

import (
	"fmt"

	"contas/internal/core"
)

// Occurrence is one planned entry of an expanded repetition policy.
// Sequence is 1-based; the first occurrence keeps the base note as-is,
// generated siblings carry a sequence suffix.
type Occurrence struct {
	Sequence int
	Total    int
	DueDate  core.Date
	Note     string
}

// ExpandSchedule materializes a repetition policy into concrete
// occurrences. A single entry, an installment plan with fewer than two
// parts, or an unbounded recurrence all yield exactly one occurrence
// with the note untouched. Installments always advance monthly;
// recurrences advance by their unit.
func ExpandSchedule(policy core.RepetitionPolicy, due core.Date, note string) []Occurrence {
	var (
		total int
		unit  core.RecurrenceUnit
	)
	switch policy.Mode {
	case core.RepeatInstallments:
		total = policy.Installments
		unit = core.UnitMonthly
	case core.RepeatRecurring:
		total = policy.RecurrenceCount
		unit = policy.RecurrenceUnit
	}

	if total < 2 {
		return []Occurrence{{Sequence: 1, Total: 1, DueDate: due, Note: note}}
	}

	occurrences := make([]Occurrence, total)
	for i := 0; i < total; i++ {
		occ := Occurrence{
			Sequence: i + 1,
			Total:    total,
			DueDate:  core.NextDueDate(due, unit, i),
			Note:     note,
		}
		if i > 0 {
			occ.Note = occurrenceNote(note, policy.Mode, i+1, total)
		}
		occurrences[i] = occ
	}
	return occurrences
}

func occurrenceNote(note string, mode core.RepetitionMode, seq, total int) string {
	label := "Occurrence"
	if mode == core.RepeatInstallments {
		label = "Installment"
	}
	return fmt.Sprintf("%s - %s %d/%d", note, label, seq, total)
}
