// Copyright © 2026 The BallotResearch Authors
// SPDX-License-Identifier: MIT

package output

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
)

// Tag represents a discovered struct field tag used when emitting schema
// information (--schema flag).
type Tag struct {
	Name      string
	Kind      string
	OmitEmpty bool
}

// NewTag constructs a Tag from a json struct tag value and the field's kind.
// Fields tagged "-" yield the zero Tag.
func NewTag(s string, kind reflect.Kind) Tag {
	parts := strings.Split(s, ",")
	if parts[0] == "" || parts[0] == "-" {
		return Tag{}
	}

	tag := Tag{Name: parts[0], Kind: kind.String()}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			tag.OmitEmpty = true
		}
	}
	return tag
}

// Print renders the tag into its display form.
func (t Tag) Print() string {
	if t.Name == "" {
		return ""
	}
	return fmt.Sprintf("%-14s %s", t.Name, t.Kind)
}

// RowType returns the row struct a view is flattened into.
func RowType(v View) reflect.Type {
	switch v {
	case BallotView:
		return reflect.TypeOf(BallotRow{})
	case ProfileView:
		return reflect.TypeOf(ProfileRow{})
	case CompareView:
		return reflect.TypeOf(CompareRow{})
	}
	return nil
}

// SchemaTags lists the row keys of typ sorted by name.
func SchemaTags(typ reflect.Type) []Tag {
	tags := make([]Tag, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		tagValue, ok := field.Tag.Lookup("json")
		if !ok {
			continue
		}

		tag := NewTag(tagValue, field.Type.Kind())
		if tag.Name == "" {
			continue
		}
		tags = append(tags, tag)
	}

	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags
}

// DumpSchema prints the row keys available to --attrs, --filter and --sort
// for a view.
func DumpSchema(w io.Writer, v View) {
	typ := RowType(v)
	if typ == nil {
		log.Debugf("no schema for view: %s", v)
		return
	}

	fmt.Fprintln(w, "Schema for", v, "rows --")
	for _, tag := range SchemaTags(typ) {
		fmt.Fprintln(w, tag.Print())
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w,
		`Row keys that are directly available to the --attrs, --filter and --sort
flags. For the complete record, use --output=raw.`)
}

// DumpExamples renders a table of example command usages.
func DumpExamples(w io.Writer, examples [][2]string) {
	if len(examples) == 0 {
		return
	}

	var rows [][]string
	for _, ex := range examples {
		rows = append(rows, []string{ex[0], ex[1]})
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		Headers("Command", "Description").
		BorderHeader(false).
		Rows(rows...)

	fmt.Fprintln(w, t)
}
