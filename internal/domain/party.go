// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	PartyNonpartisan = "Nonpartisan"
	PartyUnknown     = "Unknown"
)

// NormalizeParty upper-cases the first letter of a provider supplied party and
// leaves the rest untouched, so "independent" reads "Independent". A blank
// party becomes Nonpartisan.
func NormalizeParty(party string) string {
	if strings.TrimSpace(party) == "" {
		return PartyNonpartisan
	}
	r, size := utf8.DecodeRuneInString(party)
	return string(unicode.ToUpper(r)) + party[size:]
}

// ReconcileParty prefers the reported party unless the provider could not
// resolve one, in which case fallback wins.
func ReconcileParty(reported, fallback string) string {
	trimmed := strings.TrimSpace(reported)
	if trimmed == "" || strings.EqualFold(trimmed, PartyUnknown) {
		return fallback
	}
	return reported
}

// PartyClass groups party labels that share a badge.
type PartyClass string

const (
	ClassDemocratic   PartyClass = "democratic"
	ClassRepublican   PartyClass = "republican"
	ClassGreen        PartyClass = "green"
	ClassLibertarian  PartyClass = "libertarian"
	ClassIndependent  PartyClass = "independent"
	ClassUnaffiliated PartyClass = "unaffiliated"
	ClassNeutral      PartyClass = "neutral"
	ClassOther        PartyClass = "other"
	ClassDefault      PartyClass = ""
)

var partyClasses = map[string]PartyClass{
	"Democrat":            ClassDemocratic,
	"Democratic":          ClassDemocratic,
	"Republican":          ClassRepublican,
	"Green":               ClassGreen,
	"Libertarian":         ClassLibertarian,
	"Independent":         ClassIndependent,
	"Unaffiliated":        ClassUnaffiliated,
	"No Party Preference": ClassNeutral,
	"NPP":                 ClassNeutral,
	PartyNonpartisan:      ClassNeutral,
	"Other":               ClassOther,
}

// ClassifyParty returns the badge class for a party label. Labels are matched
// exactly, as the provider reports them after normalization; anything else
// gets ClassDefault.
func ClassifyParty(party string) PartyClass {
	if c, ok := partyClasses[party]; ok {
		return c
	}
	return ClassDefault
}
