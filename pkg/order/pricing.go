package order

import (
	"math"

	"github.com/campusworks/platform/pkg/identity"
)

// wordsPerPage is the page size the category base price is quoted against.
const wordsPerPage = 250

var levelMultipliers = map[identity.AcademicLevel]float64{
	identity.LevelHighSchool:    1.0,
	identity.LevelUndergraduate: 1.2,
	identity.LevelGraduate:      1.5,
	identity.LevelPhd:           2.0,
}

// PriceCalculator computes order totals from the category base price, the
// word count, the academic level and the deadline urgency.
type PriceCalculator struct{}

// Calculate returns the total price in cents. The base price is cents per
// page of 250 words; tighter deadlines multiply the total.
func (PriceCalculator) Calculate(basePrice int64, wordCount int, level identity.AcademicLevel, deadlineDays int) int64 {
	total := float64(basePrice) / wordsPerPage * float64(wordCount)

	if m, ok := levelMultipliers[level]; ok {
		total *= m
	}

	switch {
	case deadlineDays <= 1:
		total *= 2.0
	case deadlineDays <= 3:
		total *= 1.5
	case deadlineDays <= 7:
		total *= 1.2
	}

	return int64(math.Round(total))
}
