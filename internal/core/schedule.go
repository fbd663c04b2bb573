package core

import "time"

const (
	RepeatNone         RepetitionMode = "single"
	RepeatInstallments RepetitionMode = "installments"
	RepeatRecurring    RepetitionMode = "recurring"

	UnitDaily    RecurrenceUnit = "daily"
	UnitWeekly   RecurrenceUnit = "weekly"
	UnitBiweekly RecurrenceUnit = "biweekly"
	UnitMonthly  RecurrenceUnit = "monthly"

	StatusPending ScheduleStatus = "pending"
	StatusDueSoon ScheduleStatus = "due_soon"
	StatusOverdue ScheduleStatus = "overdue"
	StatusSettled ScheduleStatus = "settled"

	// DueSoonWindowDays is how far ahead an unsettled entry counts as due soon.
	DueSoonWindowDays = 7
)

type (
	RepetitionMode string

	RecurrenceUnit string

	ScheduleStatus string

	// RepetitionPolicy describes how a payable or receivable entry repeats.
	// Installments splits a purchase into monthly parts; recurring repeats
	// the same value at a fixed interval.
	RepetitionPolicy struct {
		Mode            RepetitionMode
		Installments    int
		RecurrenceUnit  RecurrenceUnit
		RecurrenceCount int
	}
)

func (m RepetitionMode) Valid() bool {
	switch m {
	case RepeatNone, RepeatInstallments, RepeatRecurring:
		return true
	}
	return false
}

func (u RecurrenceUnit) Valid() bool {
	switch u {
	case UnitDaily, UnitWeekly, UnitBiweekly, UnitMonthly:
		return true
	}
	return false
}

func (p RepetitionPolicy) Validate() error {
	mode := p.Mode
	if mode == "" {
		mode = RepeatNone
	}
	if !mode.Valid() {
		return NewValidationError("repetitionType", "unknown mode")
	}
	if mode == RepeatInstallments && p.Installments < 0 {
		return NewValidationError("installments", "must not be negative")
	}
	if mode == RepeatRecurring {
		if p.RecurrenceUnit != "" && !p.RecurrenceUnit.Valid() {
			return NewValidationError("recurrenceType", "unknown unit")
		}
		if p.RecurrenceCount < 0 {
			return NewValidationError("recurrenceCount", "must not be negative")
		}
	}
	return nil
}

// NextDueDate returns base shifted by step intervals of the given unit.
// Monthly shifts keep the day of month, clamping to the shorter month's
// last day (Jan 31 + 1 month = Feb 28/29). Unknown units fall back to
// monthly.
func NextDueDate(base Date, unit RecurrenceUnit, step int) Date {
	switch unit {
	case UnitDaily:
		return Date{Time: base.AddDate(0, 0, step)}
	case UnitWeekly:
		return Date{Time: base.AddDate(0, 0, 7*step)}
	case UnitBiweekly:
		return Date{Time: base.AddDate(0, 0, 14*step)}
	default:
		return addMonths(base, step)
	}
}

func addMonths(base Date, months int) Date {
	year, month, day := base.Date()
	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	if last := lastDayOfMonth(target.Year(), target.Month()); day > last {
		day = last
	}
	return NewDate(target.Year(), int(target.Month()), day)
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StatusOf classifies an entry relative to today. Settlement wins over
// dueness; overdue is strictly before today; due soon covers today through
// the next DueSoonWindowDays days.
func StatusOf(settled bool, due Date, today Date) ScheduleStatus {
	if settled {
		return StatusSettled
	}
	if due.Before(today.Time) {
		return StatusOverdue
	}
	window := today.AddDate(0, 0, DueSoonWindowDays)
	if !due.After(window) {
		return StatusDueSoon
	}
	return StatusPending
}
