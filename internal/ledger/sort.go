package ledger

import (
	"sort"

	"github.com/adobah666/edutrack-sub001/internal/models"
)

// SortHistory orders entries active first, then by start date descending.
func SortHistory(entries []models.ClassHistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsActive != b.IsActive {
			return a.IsActive
		}
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.After(b.StartDate)
		}
		return a.ID < b.ID
	})
}
