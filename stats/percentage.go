package stats

import (
	"math"

	"github.com/Scalingo/sclng-language-stats/model"
)

// PercentagePrecision is the number of decimals kept in percentages
const PercentagePrecision = 1

// Round scales value by 10^precision, rounds half away from zero and scales back
func Round(value float64, precision int) float64 {
	multiplier := math.Pow(10, float64(precision))
	return math.Round(value*multiplier) / multiplier
}

// Normalize converts totals into percentages of the overall byte count
// a zero total (no language detected) gives an empty result
func Normalize(totals []model.LanguageTotal) []model.LanguagePercentage {
	var totalBytes int64
	for _, t := range totals {
		totalBytes += t.Bytes
	}

	if totalBytes == 0 {
		return []model.LanguagePercentage{}
	}

	percentages := make([]model.LanguagePercentage, 0, len(totals))
	for _, t := range totals {
		percentages = append(percentages, model.LanguagePercentage{
			Name:       t.Name,
			Percentage: Round(float64(t.Bytes)/float64(totalBytes)*100, PercentagePrecision),
		})
	}

	return percentages
}
