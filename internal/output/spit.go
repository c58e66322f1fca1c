// Copyright © 2026 The BallotResearch Authors
// SPDX-License-Identifier: MIT

package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"

	"github.com/normalee1993/BallotResearch/internal/attrs"
	"github.com/normalee1993/BallotResearch/internal/config"
	"github.com/normalee1993/BallotResearch/internal/domain"
	"github.com/normalee1993/BallotResearch/internal/filters"
)

// Formats accepted by --output.
var Formats = []string{"text", "json", "raw", "yaml"}

// Options carries the presentation flags shared by every command.
type Options struct {
	Output string
	Color  bool
	Titles bool
	Filter string
	Sort   string
}

// OptionsFromCommand reads the presentation flags off cmd.
func OptionsFromCommand(cmd *cli.Command) Options {
	return Options{
		Output: cmd.String("output"),
		Color:  cmd.Bool("color"),
		Titles: cmd.Bool("titles"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
	}
}

// SliceDiceSpit orchestrates flattening, filtering, transforming, sorting and
// rendering of a ballot, profile or comparison document according to opts
// and the attribute specifications.
func SliceDiceSpit(raw bytes.Buffer, al attrs.AttrList, opts Options, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}

	// If raw, just dump the whole record and go home.
	if opts.Output == "raw" {
		_, err := w.Write(raw.Bytes())
		if err == nil {
			_, err = fmt.Fprintln(w)
		}
		return err
	}

	flat, err := Flatten(gjson.Parse(raw.String()))
	if err != nil {
		return err
	}

	// Filter out the rows we don't want. Do it here so that the following
	// processes are working on a smaller dataset.
	filteredDataset := filters.FilterDataset(gjson.Parse(flat.String()), al, opts.Filter)

	for _, row := range filteredDataset {
		for _, attr := range al {
			if attr.TransformSpec != "" {
				row[attr.OutputKey] = attr.Transform(row[attr.OutputKey])
			}
		}
	}

	SortDataset(filteredDataset, opts.Sort)

	switch opts.Output {
	case "json":
		// Keep [] rather than null for an empty result.
		if filteredDataset == nil {
			filteredDataset = []map[string]interface{}{}
		}
		jsonOutput, err := json.Marshal(projected(filteredDataset, al))
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(jsonOutput))
		return err
	case "yaml":
		yamlOutput, err := yaml.Marshal(projected(filteredDataset, al))
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(yamlOutput)
		return err
	default:
		TableWriter(filteredDataset, al, opts, w)
	}
	return nil
}

// projected drops the attrs that were only wanted for filtering and sorting.
func projected(rows []map[string]interface{}, al attrs.AttrList) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		p := make(map[string]interface{}, len(row))
		for _, attr := range al.Included() {
			p[attr.OutputKey] = row[attr.OutputKey]
		}
		out = append(out, p)
	}
	return out
}

// TableWriter renders the result set in a tabular form honoring color,
// titles and padding options.
func TableWriter(
	resultSet []map[string]interface{},
	al attrs.AttrList,
	opts Options,
	w io.Writer) {

	if len(resultSet) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(evenColor))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(oddColor))
	}

	included := al.Included()

	partyCol := -1
	for i, attr := range included {
		if attr.Key == "party" {
			partyCol = i
		}
	}

	rows := make([][]string, 0, len(resultSet))
	classes := make([]domain.PartyClass, 0, len(resultSet))
	for _, result := range resultSet {
		row := make([]string, 0, len(included))
		for _, attr := range included {
			row = append(row, InterfaceToString(result[attr.OutputKey], "-"))
		}
		rows = append(rows, row)

		class := domain.ClassDefault
		if partyCol >= 0 {
			class = domain.ClassifyParty(row[partyCol])
		}
		classes = append(classes, class)
	}

	pad, _ := config.GetInt("padding", 0)
	log.Debugf("padding: %v", pad)

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if opts.Color && col == partyCol && row >= 0 && row < len(classes) {
				if c := partyColor(classes[row]); c != "" {
					style = style.Foreground(lipgloss.Color(c))
				}
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(rows...)

	if opts.Titles {
		var headers []string
		for _, attr := range included {
			headers = append(headers, attr.OutputKey)
		}

		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(headers...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}

// getColors returns configured color values for table rendering.
func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(fmt.Sprintf("%s.title", key), "#f6be00")
	even, _ = config.GetString(fmt.Sprintf("%s.even", key), "#ffffff")
	odd, _ = config.GetString(fmt.Sprintf("%s.odd", key), "#00c8f0")
	return
}

var defaultPartyColors = map[domain.PartyClass]string{
	domain.ClassDemocratic:   "#3b82f6",
	domain.ClassRepublican:   "#ef4444",
	domain.ClassGreen:        "#22c55e",
	domain.ClassLibertarian:  "#eab308",
	domain.ClassIndependent:  "#a855f7",
	domain.ClassUnaffiliated: "#9ca3af",
	domain.ClassNeutral:      "#9ca3af",
	domain.ClassOther:        "#d1d5db",
}

// partyColor returns the badge color for a party class, overridable with
// colors.party.<class> in the config file. The default class keeps the row
// color.
func partyColor(class domain.PartyClass) string {
	def, ok := defaultPartyColors[class]
	if !ok {
		return ""
	}
	c, _ := config.GetString("colors.party."+string(class), def)
	return c
}

// InterfaceToString converts supported primitive or composite values to a
// string. A custom empty value may be provided.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil || reflect.ValueOf(value).IsZero() {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		// Row values are counts and positions, never fractions.
		return fmt.Sprintf("%.0f", value)
	case bool:
		return strconv.FormatBool(value)
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}
