package model

import "time"

// LanguageTotal is the cumulated byte count of one language across all repositories
type LanguageTotal struct {
	Name  string `json:"name" yaml:"name"`
	Bytes int64  `json:"bytes" yaml:"bytes"`
}

// LanguagePercentage is the share of one language, rounded to one decimal
type LanguagePercentage struct {
	Name       string  `json:"name" yaml:"name"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// ChartSlice is one entry of the pie chart
type ChartSlice struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
	Color string  `json:"color" yaml:"color"`
}

// LanguageStatistics is the result of one aggregation run
type LanguageStatistics struct {
	User               string               `json:"user" yaml:"user"`
	RepositoriesCount  int                  `json:"repositoriesCount" yaml:"repositoriesCount"`
	Totals             []LanguageTotal      `json:"totals" yaml:"totals"`
	Percentages        []LanguagePercentage `json:"percentages" yaml:"percentages"`
	Chart              []ChartSlice         `json:"chart" yaml:"chart"`
	FailedRepositories []RepositoryFailure  `json:"failedRepositories,omitempty" yaml:"failedRepositories,omitempty"`
	Partial            bool                 `json:"partial" yaml:"partial"`
	GeneratedAt        time.Time            `json:"generatedAt" yaml:"generatedAt"`
}

// PercentageMap indexes percentages by language name
func PercentageMap(percentages []LanguagePercentage) map[string]float64 {
	out := make(map[string]float64, len(percentages))
	for _, p := range percentages {
		out[p.Name] = p.Percentage
	}

	return out
}

// TotalsMap indexes totals by language name
func TotalsMap(totals []LanguageTotal) map[string]int64 {
	out := make(map[string]int64, len(totals))
	for _, t := range totals {
		out[t.Name] = t.Bytes
	}

	return out
}
