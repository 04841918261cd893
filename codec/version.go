/*
Copyright © 2026 the raw2l1 authors.
This file is part of raw2l1.

raw2l1 is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

raw2l1 is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with raw2l1.  If not, see <http://www.gnu.org/licenses/>.
*/

package codec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/sirupsen/logrus"
)

var versionRE = regexp.MustCompile(`[vV]?(\d+(?:\.\d+)*)`)

// ParseVersion normalizes a firmware or software version string to a
// comparable float. The last numeric token of s is used; for tokens with
// more than one dot only the major and minor parts are kept, so
// "v12.12.1" becomes 12.12.
func ParseVersion(s string) (float64, error) {
	m := versionRE.FindAllStringSubmatch(s, -1)
	if len(m) == 0 {
		return 0, fmt.Errorf("no version number in %q", s)
	}
	tok := m[len(m)-1][1]
	if parts := strings.Split(tok, "."); len(parts) > 2 {
		tok = parts[0] + "." + parts[1]
	}
	return strconv.ParseFloat(tok, 64)
}

// VersionRule selects Tag for versions up to Max.
type VersionRule struct {
	Max float64
	Tag string
}

// VersionTable maps a version to a behavior tag. Rules are ordered by
// increasing Max and the first matching rule wins.
type VersionTable struct {
	Rules []VersionRule

	// Exclusive makes each rule match versions strictly below Max instead
	// of up to and including it.
	Exclusive bool

	// Latest is the tag of versions past the last rule.
	Latest string

	// Newest is the highest version known to behave like Latest. Zero
	// means no upper limit.
	Newest float64
}

// Lookup returns the tag for version v and whether v is a known version.
// Versions newer than Newest are mapped to Latest but reported unknown.
func (t VersionTable) Lookup(v float64) (string, bool) {
	for _, r := range t.Rules {
		if v < r.Max || (!t.Exclusive && v == r.Max) {
			return r.Tag, true
		}
	}
	return t.Latest, t.Newest == 0 || v <= t.Newest
}

// Select parses s and returns the matching tag along with the parsed
// version. Unparseable or unknown versions are reported as a warning and
// decoded with the nearest known branch: the newest one.
func (t VersionTable) Select(s string, log logrus.FieldLogger) (string, float64) {
	v, err := ParseVersion(s)
	if err != nil {
		log.Warn(raw2l1.ErrFirmware.Msg("%v; decoding as the newest known version", err))
		return t.Latest, t.Newest
	}
	tag, known := t.Lookup(v)
	if !known {
		log.Warn(raw2l1.ErrFirmware.Msg("version %g is newer than %g; decoding as %s", v, t.Newest, tag))
	}
	return tag, v
}
