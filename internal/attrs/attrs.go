// Copyright © 2026 The BallotResearch Authors
// SPDX-License-Identifier: MIT

package attrs

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
)

// now is swapped in tests so relative ages are stable.
var now = time.Now

var lengthRe = regexp.MustCompile(`-?\d+`)

// Attr represents each of the row keys to be included in the output.
type Attr struct {
	// The key to extract from each flattened row.
	Key string
	// Should this Attr be included in output or is it just
	// intended for filtering and sorting?
	Include bool
	// The key to use in the output. This will also be used as the column title
	// when output=text.
	OutputKey string
	// Transformation spec to apply to the output value.
	TransformSpec string
}

// Transform applies the attr's TransformSpec to value. Specs combine freely:
//
//	t  render a timestamp in CIVICCTL_TZ or TZ
//	h  render a timestamp as a relative age ("3 hours ago")
//	l  lower case
//	u  upper case
//	N  truncate to N characters, -N elides the middle
func (a *Attr) Transform(value interface{}) interface{} {
	if a.TransformSpec == "" {
		return value
	}

	// Timestamps are stored as epoch milliseconds, which arrive here as
	// float64 after a trip through gjson.
	if strings.ContainsAny(a.TransformSpec, "hH") {
		if t, ok := toTime(value); ok {
			value = humanize.RelTime(t, now(), "ago", "from now")
		}
	} else if strings.ContainsAny(a.TransformSpec, "tT") {
		if t, ok := toTime(value); ok {
			value = localTime(t)
		}
	}

	result, ok := value.(string)
	if !ok {
		return value
	}

	// The last case transformation wins. This covers the case where a global
	// spec was prepended, so --attrs '*::U,name::l' will be lower case.
	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")

	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	// Same logic as above re: case. A more specific length overrides a global
	// one.
	match := lengthRe.FindAllString(a.TransformSpec, -1)
	if len(match) != 0 {
		l, _ := strconv.Atoi(match[len(match)-1])
		abs := int(math.Abs(float64(l)))
		if len(result) > abs {
			if l < 0 {
				lr := abs/2 - 1
				if lr < 1 {
					lr = 1
				}
				result = result[0:lr] + ".." + result[len(result)-lr:]
			} else {
				result = result[:l]
			}
		}
	}

	return result
}

// toTime accepts epoch milliseconds or an RFC3339 string.
func toTime(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case float64:
		if v <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(v)).UTC(), true
	case int64:
		if v <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(v).UTC(), true
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			log.Debugf("not a timestamp: %s", v)
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// localTime formats t in the configured zone. Without one, t is rendered as
// RFC3339 in whatever zone it already carries.
func localTime(t time.Time) string {
	tz := os.Getenv("CIVICCTL_TZ")
	if tz == "" {
		tz = os.Getenv("TZ")
	}
	if tz == "" {
		return t.Format(time.RFC3339)
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.WithError(err).Errorf("unknown timezone: %s", tz)
		return t.Format(time.RFC3339)
	}
	return t.In(loc).Format("2006-01-02T15:04:05MST")
}

type AttrList []Attr

// Return a string representation of the AttrList. This should match the format
// of the original --attrs flag.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		result = append(result, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Parse each spec from the --attrs flag and add it to the AttrList.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	const (
		keyIdx = iota
		outputIdx
		transformIdx
	)

	// There are three : delimited fields in each spec. The first is the row key,
	// the second is the key to use in the output and the third is the
	// transformation spec. The latter two are optional and the output key
	// defaults to the last segment of the row key.
	specs := strings.Split(value, ",")
specloop:
	for _, spec := range specs {
		attr := Attr{
			Include: true,
		}

		fields := strings.Split(spec, ":")

		// A leading ! keeps the attr for filtering and sorting only.
		attr.Key = strings.TrimSpace(fields[keyIdx])
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}
		attr.Key = strings.TrimPrefix(attr.Key, ".")

		if attr.Key == "" {
			return fmt.Errorf("empty attribute in spec: %q", spec)
		}

		if attr.Key == "*" {
			attr.Include = false
		}

		if len(fields) == 1 || fields[outputIdx] == "" {
			segments := strings.Split(attr.Key, ".")
			attr.OutputKey = segments[len(segments)-1]
		} else {
			attr.OutputKey = strings.TrimSpace(fields[outputIdx])
		}

		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}

		// If the attr already exists in the list (because it's one of the defaults
		// for cmd or the user double-entered it) just apply the OutputKey, Include
		// and TransformSpec to the existing Attr.
		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == attr.Key {
				(*a)[i].Include = attr.Include
				(*a)[i].OutputKey = attr.OutputKey
				(*a)[i].TransformSpec = attr.TransformSpec
				continue specloop
			}
		}

		*a = append(*a, attr)
	}

	return nil
}

// SetGlobalTransformSpec inserts a global transform spec into the front of all
// attrs in the list.
func (alist *AttrList) SetGlobalTransformSpec() error {
	spec := ""

	// If there is more than one global spec, only the first counts.
	for a := range *alist {
		if (*alist)[a].Key == "*" {
			spec = (*alist)[a].TransformSpec
			break
		}
	}

	if spec == "" {
		return nil
	}

	for a := range *alist {
		(*alist)[a].TransformSpec = spec + "," + (*alist)[a].TransformSpec
	}

	return nil
}

// Included returns the attrs that are rendered, in order.
func (alist AttrList) Included() AttrList {
	out := make(AttrList, 0, len(alist))
	for _, a := range alist {
		if a.Include {
			out = append(out, a)
		}
	}
	return out
}

// Find returns the attr whose OutputKey, or failing that Key, is name.
func (alist AttrList) Find(name string) (Attr, bool) {
	for _, a := range alist {
		if a.OutputKey == name {
			return a, true
		}
	}
	for _, a := range alist {
		if a.Key == name {
			return a, true
		}
	}
	return Attr{}, false
}

func (a *AttrList) Type() string {
	return "list"
}
