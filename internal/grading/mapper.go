package grading

import "github.com/adobah666/edutrack-sub001/internal/models"

// MapGrade labels a percentage using bands in their stored order. The first
// band whose inclusive range contains the percentage wins. When no band
// matches, the band with the highest Order is returned; coverage gaps are
// answered leniently rather than failing.
func MapGrade(percentage float64, hasGrades bool, bands []models.GradeBand) string {
	if !hasGrades || len(bands) == 0 {
		return models.NotGradedLabel
	}
	for _, band := range bands {
		if percentage >= band.MinPercentage && percentage <= band.MaxPercentage {
			return band.Label
		}
	}
	fallback := bands[0]
	for _, band := range bands[1:] {
		if band.Order > fallback.Order {
			fallback = band
		}
	}
	return fallback.Label
}
