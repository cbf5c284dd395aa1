package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/adobah666/edutrack-sub001/internal/models"
)

// ErrInconsistent marks ledger states that cannot be repaired automatically.
var ErrInconsistent = errors.New("class history inconsistent")

// ReinstateNote is recorded on entries inserted by reconciliation.
const ReinstateNote = "reinstated from current placement"

// Drifted reports whether the ledger disagrees with the student's placement:
// more than one active entry, or no active entry for the current class.
func Drifted(student models.Student, entries []models.ClassHistoryEntry) bool {
	current := student.CurrentClassID()
	actives := 0
	matched := false
	for _, e := range entries {
		if !e.IsActive {
			continue
		}
		actives++
		if e.ClassID == current {
			matched = true
		}
	}
	if current == "" {
		return actives > 0
	}
	return actives != 1 || !matched
}

// PlanReconciliation decides how to bring entries in line with the student's
// current placement. The student row is the source of truth.
func PlanReconciliation(student models.Student, entries []models.ClassHistoryEntry, now time.Time) (models.ReconcilePlan, error) {
	plan := models.ReconcilePlan{Action: models.ReconcileNone, At: now}
	if !Drifted(student, entries) {
		return plan, nil
	}

	current := student.CurrentClassID()
	actives := activeEntries(entries)
	if current == "" {
		return plan, fmt.Errorf("%w: student %s has %d active entries but no placement", ErrInconsistent, student.ID, len(actives))
	}

	keep, found, err := newestMatching(actives, current)
	if err != nil {
		return plan, fmt.Errorf("student %s: %w", student.ID, err)
	}

	if found {
		plan.Action = models.ReconcileCollapse
		for _, e := range actives {
			if e.ID != keep.ID {
				plan.Deactivate = append(plan.Deactivate, e.ID)
			}
		}
		return plan, nil
	}

	gradeID := student.CurrentGradeID()
	if gradeID == "" {
		return plan, fmt.Errorf("%w: student %s is placed in class %s without a grade", ErrInconsistent, student.ID, current)
	}

	plan.Action = models.ReconcileReinstate
	for _, e := range actives {
		plan.Deactivate = append(plan.Deactivate, e.ID)
	}
	note := ReinstateNote
	plan.Insert = &models.ClassHistoryEntry{
		StudentID:    student.ID,
		ClassID:      current,
		GradeID:      gradeID,
		AcademicYear: AcademicYearFor(now),
		IsActive:     true,
		StartDate:    now,
		Notes:        &note,
	}
	return plan, nil
}

// Apply returns a copy of entries with plan applied in memory. Inserted
// entries are appended as given.
func Apply(entries []models.ClassHistoryEntry, plan models.ReconcilePlan) []models.ClassHistoryEntry {
	out := make([]models.ClassHistoryEntry, 0, len(entries)+1)
	deactivate := make(map[string]struct{}, len(plan.Deactivate))
	for _, id := range plan.Deactivate {
		deactivate[id] = struct{}{}
	}
	for _, e := range entries {
		if _, ok := deactivate[e.ID]; ok && e.IsActive {
			at := plan.At
			e.IsActive = false
			e.EndDate = &at
		}
		out = append(out, e)
	}
	if plan.Insert != nil {
		out = append(out, *plan.Insert)
	}
	return out
}

// Synthesize builds the view a consistent ledger would have, without writing.
// Unlike PlanReconciliation it never fails: ambiguous collapses keep the first
// candidate and an unplaced student simply has no active entry.
func Synthesize(student models.Student, entries []models.ClassHistoryEntry, now time.Time) []models.ClassHistoryEntry {
	plan, err := PlanReconciliation(student, entries, now)
	if err != nil {
		plan = lenientPlan(student, entries, now)
	}
	out := Apply(entries, plan)
	if plan.Insert != nil {
		out[len(out)-1].Synthesized = true
	}
	SortHistory(out)
	return out
}

func lenientPlan(student models.Student, entries []models.ClassHistoryEntry, now time.Time) models.ReconcilePlan {
	plan := models.ReconcilePlan{Action: models.ReconcileCollapse, At: now}
	current := student.CurrentClassID()
	kept := false
	for _, e := range activeEntries(entries) {
		if !kept && current != "" && e.ClassID == current {
			kept = true
			continue
		}
		plan.Deactivate = append(plan.Deactivate, e.ID)
	}
	if !kept && current != "" {
		note := ReinstateNote
		plan.Action = models.ReconcileReinstate
		plan.Insert = &models.ClassHistoryEntry{
			StudentID:    student.ID,
			ClassID:      current,
			GradeID:      student.CurrentGradeID(),
			AcademicYear: AcademicYearFor(now),
			IsActive:     true,
			StartDate:    now,
			Notes:        &note,
		}
	}
	return plan
}

func activeEntries(entries []models.ClassHistoryEntry) []models.ClassHistoryEntry {
	actives := make([]models.ClassHistoryEntry, 0, 1)
	for _, e := range entries {
		if e.IsActive {
			actives = append(actives, e)
		}
	}
	return actives
}

// newestMatching picks the most recent active entry for classID. Entries
// sharing the newest start date must agree on grade and year.
func newestMatching(actives []models.ClassHistoryEntry, classID string) (models.ClassHistoryEntry, bool, error) {
	var (
		best  models.ClassHistoryEntry
		found bool
	)
	for _, e := range actives {
		if e.ClassID != classID {
			continue
		}
		if !found || e.StartDate.After(best.StartDate) || (e.StartDate.Equal(best.StartDate) && e.ID < best.ID) {
			best = e
			found = true
		}
	}
	if !found {
		return best, false, nil
	}
	for _, e := range actives {
		if e.ClassID != classID || e.ID == best.ID || !e.StartDate.Equal(best.StartDate) {
			continue
		}
		if e.GradeID != best.GradeID || e.AcademicYear != best.AcademicYear {
			return models.ClassHistoryEntry{}, false, fmt.Errorf("%w: entries %s and %s tie for class %s", ErrInconsistent, best.ID, e.ID, classID)
		}
	}
	return best, true, nil
}
