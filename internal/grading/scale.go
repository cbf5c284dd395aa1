package grading

import "github.com/adobah666/edutrack-sub001/internal/models"

// ScaleSnapshot is the immutable input of the grading-scale chain. Either
// scheme may be nil when it is not configured.
type ScaleSnapshot struct {
	SubjectScheme *models.GradingScheme
	DefaultScheme *models.GradingScheme
}

type scaleStep func(ScaleSnapshot) (models.ResolvedScale, bool)

var scaleChain = []scaleStep{
	fromSubjectScheme,
	fromSchoolDefault,
	fromBuiltIn,
}

// builtInBands is stored best-first so boundary values resolve to the higher
// band. Order ranks bands from F (1) to A+ (8).
var builtInBands = []models.GradeBand{
	{Label: "A+", MinPercentage: 90, MaxPercentage: 100, Order: 8},
	{Label: "A", MinPercentage: 80, MaxPercentage: 90, Order: 7},
	{Label: "B+", MinPercentage: 70, MaxPercentage: 80, Order: 6},
	{Label: "B", MinPercentage: 60, MaxPercentage: 70, Order: 5},
	{Label: "C+", MinPercentage: 50, MaxPercentage: 60, Order: 4},
	{Label: "C", MinPercentage: 40, MaxPercentage: 50, Order: 3},
	{Label: "D", MinPercentage: 30, MaxPercentage: 40, Order: 2},
	{Label: "F", MinPercentage: 0, MaxPercentage: 30, Order: 1},
}

// BuiltInBands returns a copy of the fallback band table.
func BuiltInBands() []models.GradeBand {
	out := make([]models.GradeBand, len(builtInBands))
	copy(out, builtInBands)
	return out
}

// ResolveScale walks the scale chain. It always yields a non-empty band list.
func ResolveScale(snap ScaleSnapshot) models.ResolvedScale {
	for _, step := range scaleChain {
		if resolved, ok := step(snap); ok {
			return resolved
		}
	}
	return models.ResolvedScale{Bands: BuiltInBands(), Source: models.ScaleSourceBuiltIn}
}

func fromSubjectScheme(snap ScaleSnapshot) (models.ResolvedScale, bool) {
	return schemeScale(snap.SubjectScheme, models.ScaleSourceSubject)
}

func fromSchoolDefault(snap ScaleSnapshot) (models.ResolvedScale, bool) {
	if snap.DefaultScheme != nil && !snap.DefaultScheme.IsDefault {
		return models.ResolvedScale{}, false
	}
	return schemeScale(snap.DefaultScheme, models.ScaleSourceSchoolDefault)
}

func fromBuiltIn(ScaleSnapshot) (models.ResolvedScale, bool) {
	return models.ResolvedScale{Bands: BuiltInBands(), Source: models.ScaleSourceBuiltIn}, true
}

func schemeScale(scheme *models.GradingScheme, source models.ScaleSource) (models.ResolvedScale, bool) {
	if scheme == nil || len(scheme.Bands) == 0 {
		return models.ResolvedScale{}, false
	}
	bands := make([]models.GradeBand, len(scheme.Bands))
	copy(bands, scheme.Bands)
	return models.ResolvedScale{SchemeID: scheme.ID, Bands: bands, Source: source}, true
}
