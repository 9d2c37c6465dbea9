package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"emperror.dev/errors"
	"github.com/Scalingo/sclng-language-stats/model"
	"gopkg.in/yaml.v3"
)

func writeReport(w io.Writer, format string, statistics model.LanguageStatistics) error {
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(statistics)

	case "yaml", "yml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(statistics); err != nil {
			return err
		}
		return encoder.Close()

	case "table", "":
		return writeTable(w, statistics)
	}

	return errors.Errorf("unknown output format %q", format)
}

func writeTable(w io.Writer, statistics model.LanguageStatistics) error {
	fmt.Fprintf(w, "%s: %d repositories\n\n", statistics.User, statistics.RepositoriesCount)

	if len(statistics.Percentages) == 0 {
		fmt.Fprintln(w, "no language detected")
	} else {
		bytes := model.TotalsMap(statistics.Totals)
		colors := make(map[string]string, len(statistics.Chart))
		for _, slice := range statistics.Chart {
			colors[slice.Name] = slice.Color
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "LANGUAGE\tBYTES\tSHARE\tCOLOR\t")
		for _, p := range statistics.Percentages {
			fmt.Fprintf(tw, "%s\t%d\t%.1f%%\t%s\t\n", p.Name, bytes[p.Name], p.Percentage, colors[p.Name])
		}

		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(statistics.FailedRepositories) > 0 {
		fmt.Fprintf(w, "\n%d repositories could not be processed:\n", len(statistics.FailedRepositories))
		for _, failure := range statistics.FailedRepositories {
			fmt.Fprintf(w, "  %s (%s)\n", failure.Repository, failure.Code)
		}
	}

	return nil
}
