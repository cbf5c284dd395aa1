package grading

import (
	"math"
	"sort"

	"github.com/adobah666/edutrack-sub001/internal/models"
)

// AggregateInput is everything needed to score one student in one subject for a term.
type AggregateInput struct {
	Items   []models.GradedItem
	Results []models.ResultRecord
	Weights models.ResolvedWeights
}

type categoryTally struct {
	items  int
	graded int
	sum    float64
}

func (t categoryTally) average() float64 {
	if t.graded == 0 {
		return 0
	}
	return t.sum / float64(t.graded)
}

// Aggregate computes per-category averages and the final weighted percentage.
//
// Categories without graded records contribute nothing. When the
// contributing weight is below 1 the final percentage is renormalised by
// dividing by the contributing weight, so a student graded only on exams is
// scored on exams alone. ContributingWeight exposes how much weight backed
// the result.
func Aggregate(in AggregateInput) models.SubjectScore {
	items := make([]models.GradedItem, len(in.Items))
	copy(items, in.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	scores := make(map[string]float64, len(in.Results))
	for _, r := range in.Results {
		if _, seen := scores[r.GradedItemID]; seen {
			continue
		}
		scores[r.GradedItemID] = r.Score
	}

	tallies := map[models.GradeCategory]*categoryTally{
		models.CategoryAssignment: {},
		models.CategoryExam:       {},
	}
	for _, item := range items {
		tally, ok := tallies[item.Category]
		if !ok || item.MaxPoints <= 0 {
			continue
		}
		tally.items++
		score, graded := scores[item.ID]
		if !graded {
			continue
		}
		tally.graded++
		tally.sum += score / item.MaxPoints * 100
	}

	assignment := tallies[models.CategoryAssignment]
	exam := tallies[models.CategoryExam]

	weighted := 0.0
	contributing := 0.0
	if assignment.graded > 0 {
		weighted += assignment.average() * in.Weights.AssignmentWeight
		contributing += in.Weights.AssignmentWeight
	}
	if exam.graded > 0 {
		weighted += exam.average() * in.Weights.ExamWeight
		contributing += in.Weights.ExamWeight
	}

	final := 0.0
	if contributing > 0 {
		final = weighted / contributing
	}

	hasAny := assignment.graded > 0 || exam.graded > 0
	partial := hasAny && ((assignment.items > 0 && assignment.graded == 0) || (exam.items > 0 && exam.graded == 0))

	return models.SubjectScore{
		AssignmentAverage:  Round(assignment.average()),
		ExamAverage:        Round(exam.average()),
		FinalPercentage:    Round(final),
		ContributingWeight: Round(contributing),
		HasAnyGrades:       hasAny,
		IsPartial:          partial,
		Counts: models.ScoreCounts{
			AssignmentItems:  assignment.items,
			AssignmentGraded: assignment.graded,
			ExamItems:        exam.items,
			ExamGraded:       exam.graded,
		},
	}
}

// Round keeps two decimals using banker's rounding.
func Round(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
