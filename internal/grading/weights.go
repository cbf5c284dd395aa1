package grading

import (
	"errors"
	"fmt"
	"math"

	"github.com/adobah666/edutrack-sub001/internal/models"
)

// DefaultWeightTolerance is the accepted deviation of a weight pair's sum from 1.
const DefaultWeightTolerance = 0.01

var (
	// ErrWeightRange is returned when a single weight falls outside [0,1].
	ErrWeightRange = errors.New("weight out of range")
	// ErrWeightSum is returned when a weight pair does not sum to 1 within tolerance.
	ErrWeightSum = errors.New("weights do not sum to 1")
)

// WeightSnapshot is the immutable input of the weight chain.
type WeightSnapshot struct {
	Subject  models.Subject
	Term     models.Term
	Override *models.TermWeightOverride
}

type weightStep func(WeightSnapshot) (models.ResolvedWeights, bool)

// weightChain is evaluated in order; the first step that applies wins.
var weightChain = []weightStep{
	fromTermOverride,
	fromSubjectDefaults,
}

// ResolveWeights walks the weight chain. A stored pair that violates the sum
// invariant is reported instead of being skipped or coerced.
func ResolveWeights(snap WeightSnapshot, tolerance float64) (models.ResolvedWeights, error) {
	if tolerance <= 0 {
		tolerance = DefaultWeightTolerance
	}
	for _, step := range weightChain {
		resolved, ok := step(snap)
		if !ok {
			continue
		}
		if err := ValidatePair(resolved.AssignmentWeight, resolved.ExamWeight, tolerance); err != nil {
			return models.ResolvedWeights{}, fmt.Errorf("%s weights for subject %s term %s: %w", resolved.Source, snap.Subject.ID, snap.Term, err)
		}
		return resolved, nil
	}
	return models.ResolvedWeights{}, fmt.Errorf("no weight source for subject %s", snap.Subject.ID)
}

// ValidatePair checks both range and sum of a weight pair.
func ValidatePair(assignment, exam, tolerance float64) error {
	if tolerance <= 0 {
		tolerance = DefaultWeightTolerance
	}
	if !inUnitRange(assignment) || !inUnitRange(exam) {
		return fmt.Errorf("%w: assignment=%.4f exam=%.4f", ErrWeightRange, assignment, exam)
	}
	sum := assignment + exam
	// 1e-9 absorbs binary representation error at the tolerance edge.
	if math.Abs(sum-1) > tolerance+1e-9 {
		return fmt.Errorf("%w: sum=%.4f", ErrWeightSum, sum)
	}
	return nil
}

func fromTermOverride(snap WeightSnapshot) (models.ResolvedWeights, bool) {
	if snap.Override == nil || snap.Override.SubjectID != snap.Subject.ID || snap.Override.Term != snap.Term {
		return models.ResolvedWeights{}, false
	}
	return models.ResolvedWeights{
		SubjectID:        snap.Subject.ID,
		Term:             snap.Term,
		AssignmentWeight: snap.Override.AssignmentWeight,
		ExamWeight:       snap.Override.ExamWeight,
		Source:           models.WeightSourceTermOverride,
	}, true
}

func fromSubjectDefaults(snap WeightSnapshot) (models.ResolvedWeights, bool) {
	return models.ResolvedWeights{
		SubjectID:        snap.Subject.ID,
		Term:             snap.Term,
		AssignmentWeight: snap.Subject.DefaultAssignmentWeight,
		ExamWeight:       snap.Subject.DefaultExamWeight,
		Source:           models.WeightSourceSubjectDefault,
	}, true
}

func inUnitRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}
