// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
)

// BallotRow is one candidate on one race. Propositions, which have no
// candidates, produce a single row with the candidate fields empty.
type BallotRow struct {
	Order       int    `json:"order"`
	RaceID      string `json:"race_id"`
	Office      string `json:"office"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	CandidateID string `json:"candidate_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Party       string `json:"party,omitempty"`
	Incumbent   bool   `json:"incumbent"`
	Location    string `json:"location"`
	Updated     int64  `json:"updated"`
}

// ProfileRow is one fact from a candidate profile. List fields produce one
// row per item.
type ProfileRow struct {
	Order int    `json:"order"`
	Field string `json:"field"`
	Value string `json:"value"`
}

// CompareRow lines up one fact for two candidates.
type CompareRow struct {
	Order int    `json:"order"`
	Field string `json:"field"`
	A     string `json:"a"`
	B     string `json:"b"`
}

// View names the shape a document is flattened into.
type View string

const (
	BallotView  View = "ballot"
	ProfileView View = "profile"
	CompareView View = "compare"
)

// DetectView works out which view a raw record document belongs to.
func DetectView(doc gjson.Result) (View, bool) {
	switch {
	case doc.Get("races").Exists():
		return BallotView, true
	case doc.Get("profiles").IsArray():
		return CompareView, true
	case doc.Get("id").Exists() && doc.Get("name").Exists():
		return ProfileView, true
	}
	return "", false
}

// Flatten turns a ballot, profile or comparison document into a JSON array of
// flat rows that the filter and sort machinery can work over.
func Flatten(doc gjson.Result) (bytes.Buffer, error) {
	view, ok := DetectView(doc)
	if !ok {
		return bytes.Buffer{}, fmt.Errorf("unrecognized document")
	}

	var rows any
	switch view {
	case BallotView:
		rows = flattenBallot(doc)
	case ProfileView:
		rows = flattenProfile(doc)
	case CompareView:
		profiles := doc.Get("profiles").Array()
		if len(profiles) != 2 {
			return bytes.Buffer{}, fmt.Errorf("comparison needs 2 profiles, got %d", len(profiles))
		}
		rows = flattenCompare(profiles[0], profiles[1])
	}

	jsonBytes, err := json.Marshal(rows)
	if err != nil {
		log.WithError(err).Error("flatten")
		return bytes.Buffer{}, err
	}
	return *bytes.NewBuffer(jsonBytes), nil
}

func flattenBallot(ballot gjson.Result) []BallotRow {
	rows := []BallotRow{}
	location := ballot.Get("location").String()
	updated := ballot.Get("lastUpdated").Int()

	for _, race := range ballot.Get("races").Array() {
		common := BallotRow{
			RaceID:      race.Get("id").String(),
			Office:      race.Get("office").String(),
			Type:        race.Get("type").String(),
			Description: race.Get("description").String(),
			Location:    location,
			Updated:     updated,
		}

		candidates := race.Get("candidates").Array()
		if len(candidates) == 0 {
			common.Order = len(rows) + 1
			rows = append(rows, common)
			continue
		}

		for _, c := range candidates {
			row := common
			row.Order = len(rows) + 1
			row.CandidateID = c.Get("id").String()
			row.Name = c.Get("name").String()
			row.Party = c.Get("party").String()
			row.Incumbent = c.Get("incumbent").Bool()
			rows = append(rows, row)
		}
	}
	return rows
}

// profileFacts lists a profile's facts in display order. Every value is
// rendered as text so the rows line up under a single column.
func profileFacts(p gjson.Result) [][2]string {
	facts := [][2]string{
		{"name", p.Get("name").String()},
		{"office", p.Get("office").String()},
		{"party", p.Get("party").String()},
		{"summary", p.Get("summary").String()},
		{"education", p.Get("education").String()},
	}
	for _, item := range p.Get("platform").Array() {
		facts = append(facts, [2]string{"platform", item.String()})
	}
	for _, item := range p.Get("experience").Array() {
		facts = append(facts, [2]string{"experience", item.String()})
	}
	for _, issue := range p.Get("keyIssues").Array() {
		facts = append(facts, [2]string{"issue: " + issue.Get("topic").String(), issue.Get("stance").String()})
	}
	for _, src := range p.Get("sources").Array() {
		facts = append(facts, [2]string{"source", sourceText(src)})
	}
	return facts
}

func sourceText(src gjson.Result) string {
	title := src.Get("title").String()
	uri := src.Get("uri").String()
	if title == "" || title == uri {
		return uri
	}
	return fmt.Sprintf("%s <%s>", title, uri)
}

func flattenProfile(p gjson.Result) []ProfileRow {
	facts := profileFacts(p)
	rows := make([]ProfileRow, 0, len(facts))
	for i, f := range facts {
		rows = append(rows, ProfileRow{Order: i + 1, Field: f[0], Value: f[1]})
	}
	return rows
}

// flattenCompare pairs the scalar facts of a and b, joins their lists and
// lines up key issues by topic. Topics only one side addresses leave the
// other side blank.
func flattenCompare(a, b gjson.Result) []CompareRow {
	var rows []CompareRow
	add := func(field, va, vb string) {
		rows = append(rows, CompareRow{Order: len(rows) + 1, Field: field, A: va, B: vb})
	}

	for _, f := range []string{"name", "office", "party", "summary", "education"} {
		add(f, a.Get(f).String(), b.Get(f).String())
	}
	for _, f := range []string{"platform", "experience"} {
		add(f, joinList(a.Get(f)), joinList(b.Get(f)))
	}

	stancesA := stances(a)
	stancesB := stances(b)
	for _, topic := range topics(a, b) {
		add("issue: "+topic, stancesA[topic], stancesB[topic])
	}

	add("sources", fmt.Sprint(len(a.Get("sources").Array())), fmt.Sprint(len(b.Get("sources").Array())))
	return rows
}

func joinList(list gjson.Result) string {
	items := list.Array()
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.String())
	}
	return strings.Join(out, "; ")
}

func stances(p gjson.Result) map[string]string {
	m := map[string]string{}
	for _, issue := range p.Get("keyIssues").Array() {
		m[issue.Get("topic").String()] = issue.Get("stance").String()
	}
	return m
}

// topics returns the union of issue topics, a's order first.
func topics(a, b gjson.Result) []string {
	var out []string
	seen := map[string]bool{}
	for _, p := range []gjson.Result{a, b} {
		for _, issue := range p.Get("keyIssues").Array() {
			t := issue.Get("topic").String()
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}
