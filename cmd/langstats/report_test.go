package main

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/Scalingo/sclng-language-stats/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var statistics = model.LanguageStatistics{
	User:              "octocat",
	RepositoriesCount: 3,
	Totals:            []model.LanguageTotal{{Name: "Go", Bytes: 300}, {Name: "HTML", Bytes: 100}},
	Percentages:       []model.LanguagePercentage{{Name: "Go", Percentage: 75}, {Name: "HTML", Percentage: 25}},
	Chart:             []model.ChartSlice{{Name: "Go", Value: 75, Color: "#00add8"}, {Name: "HTML", Value: 25, Color: "#e34c26"}},
	FailedRepositories: []model.RepositoryFailure{
		{Repository: "octocat/gone", Code: "NOT_FOUND"},
	},
	Partial: true,
}

func TestWriteReport(t *testing.T) {
	tests := []struct {
		name   string
		format string
		check  func(t *testing.T, out []byte)
	}{
		{
			name:   "Table",
			format: "table",
			check: func(t *testing.T, out []byte) {
				assert.Contains(t, string(out), "octocat: 3 repositories")
				assert.Contains(t, string(out), "75.0%")
				assert.Contains(t, string(out), "#e34c26")
				assert.Contains(t, string(out), "octocat/gone (NOT_FOUND)")
			},
		},
		{
			name:   "JSON",
			format: "json",
			check: func(t *testing.T, out []byte) {
				var decoded model.LanguageStatistics
				require.NoError(t, json.Unmarshal(out, &decoded))
				assert.Equal(t, statistics.Chart, decoded.Chart)
				assert.True(t, decoded.Partial)
			},
		},
		{
			name:   "YAML",
			format: "YAML",
			check: func(t *testing.T, out []byte) {
				var decoded map[string]interface{}
				require.NoError(t, yaml.Unmarshal(out, &decoded))
				assert.Equal(t, "octocat", decoded["user"])
				assert.Len(t, decoded["chart"], 2)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			require.NoError(t, writeReport(&buf, tt.format, statistics))
			tt.check(t, buf.Bytes())
		})
	}
}

func TestWriteReportEmptyAndUnknown(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, writeReport(&buf, "table", model.LanguageStatistics{User: "octocat"}))
	assert.Contains(t, buf.String(), "no language detected")

	assert.Error(t, writeReport(&buf, "xml", statistics))
}

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expected    options
		expectedErr bool
	}{
		{
			name:     "Defaults",
			args:     nil,
			expected: options{format: "table"},
		},
		{
			name:     "Every flag",
			args:     []string{"-user", "octocat", "-format", "YAML", "-no-progress", "-log-level", "debug"},
			expected: options{user: "octocat", format: "yaml", noProgress: true, logLevel: "debug"},
		},
		{
			name:        "Unknown format",
			args:        []string{"-format", "xml"},
			expectedErr: true,
		},
		{
			name:        "Unknown flag",
			args:        []string{"-refresh"},
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseOptions(tt.args, io.Discard)

			if tt.expectedErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, opts)
		})
	}
}
