package services

import (
	"testing"

	"contas/internal/core"
)

func TestExpandSchedule(t *testing.T) {
	due := core.NewDate(2024, 1, 31)

	t.Run("single policy yields one untouched occurrence", func(t *testing.T) {
		occs := ExpandSchedule(core.RepetitionPolicy{Mode: core.RepeatNone}, due, "Office rent")
		if len(occs) != 1 {
			t.Fatalf("ExpandSchedule() returned %d occurrences, want 1", len(occs))
		}
		if occs[0].Note != "Office rent" {
			t.Errorf("Note = %q, want untouched base note", occs[0].Note)
		}
		if !occs[0].DueDate.Equal(due.Time) {
			t.Errorf("DueDate = %v, want %v", occs[0].DueDate, due)
		}
	})

	t.Run("one installment stays single", func(t *testing.T) {
		policy := core.RepetitionPolicy{Mode: core.RepeatInstallments, Installments: 1}
		occs := ExpandSchedule(policy, due, "Laptop")
		if len(occs) != 1 {
			t.Fatalf("ExpandSchedule() returned %d occurrences, want 1", len(occs))
		}
		if occs[0].Note != "Laptop" {
			t.Errorf("Note = %q, want untouched base note", occs[0].Note)
		}
	})

	t.Run("installments advance monthly with clamping", func(t *testing.T) {
		policy := core.RepetitionPolicy{Mode: core.RepeatInstallments, Installments: 3}
		occs := ExpandSchedule(policy, due, "Laptop")
		if len(occs) != 3 {
			t.Fatalf("ExpandSchedule() returned %d occurrences, want 3", len(occs))
		}

		wantDates := []core.Date{
			core.NewDate(2024, 1, 31),
			core.NewDate(2024, 2, 29),
			core.NewDate(2024, 3, 31),
		}
		wantNotes := []string{
			"Laptop",
			"Laptop - Installment 2/3",
			"Laptop - Installment 3/3",
		}
		for i, occ := range occs {
			if !occ.DueDate.Equal(wantDates[i].Time) {
				t.Errorf("occurrence %d DueDate = %v, want %v", i+1, occ.DueDate, wantDates[i])
			}
			if occ.Note != wantNotes[i] {
				t.Errorf("occurrence %d Note = %q, want %q", i+1, occ.Note, wantNotes[i])
			}
			if occ.Sequence != i+1 || occ.Total != 3 {
				t.Errorf("occurrence %d sequence = %d/%d, want %d/3", i+1, occ.Sequence, occ.Total, i+1)
			}
		}
	})

	t.Run("recurring advances by its unit", func(t *testing.T) {
		policy := core.RepetitionPolicy{
			Mode:            core.RepeatRecurring,
			RecurrenceUnit:  core.UnitWeekly,
			RecurrenceCount: 4,
		}
		occs := ExpandSchedule(policy, core.NewDate(2024, 6, 3), "Cleaning")
		if len(occs) != 4 {
			t.Fatalf("ExpandSchedule() returned %d occurrences, want 4", len(occs))
		}
		if !occs[1].DueDate.Equal(core.NewDate(2024, 6, 10).Time) {
			t.Errorf("second occurrence DueDate = %v, want 2024-06-10", occs[1].DueDate)
		}
		if !occs[3].DueDate.Equal(core.NewDate(2024, 6, 24).Time) {
			t.Errorf("fourth occurrence DueDate = %v, want 2024-06-24", occs[3].DueDate)
		}
		if occs[2].Note != "Cleaning - Occurrence 3/4" {
			t.Errorf("third occurrence Note = %q, want Cleaning - Occurrence 3/4", occs[2].Note)
		}
	})

	t.Run("unbounded recurrence yields one occurrence", func(t *testing.T) {
		policy := core.RepetitionPolicy{Mode: core.RepeatRecurring, RecurrenceUnit: core.UnitMonthly}
		occs := ExpandSchedule(policy, due, "Rent")
		if len(occs) != 1 {
			t.Fatalf("ExpandSchedule() returned %d occurrences, want 1", len(occs))
		}
		if occs[0].Note != "Rent" {
			t.Errorf("Note = %q, want untouched base note", occs[0].Note)
		}
	})
}
