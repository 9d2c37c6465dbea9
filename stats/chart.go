package stats

import "github.com/Scalingo/sclng-language-stats/model"

// Palette assigns a color to a language
type Palette interface {
	Color(language string) string
}

// Project builds one chart slice per language with a strictly positive share, keeping the input order
func Project(percentages []model.LanguagePercentage, palette Palette) []model.ChartSlice {
	slices := make([]model.ChartSlice, 0, len(percentages))
	for _, p := range percentages {
		if p.Percentage <= 0 {
			continue
		}

		slices = append(slices, model.ChartSlice{
			Name:  p.Name,
			Value: p.Percentage,
			Color: palette.Color(p.Name),
		})
	}

	return slices
}
