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
	"sort"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/sirupsen/logrus"
)

// Severity is the level of an instrument status message.
type Severity int

// Severity levels.
const (
	Info Severity = iota
	Warning
	Alarm
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Alarm:
		return "alarm"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// StatusBit describes one bit (or group of bits) of an instrument status
// word.
type StatusBit struct {
	Mask     uint64
	Severity Severity
	Msg      string

	// MinVersion and MaxVersion bound the firmware versions the bit applies
	// to. A zero MaxVersion means no upper bound.
	MinVersion, MaxVersion float64
}

func (b StatusBit) applies(version float64) bool {
	return version >= b.MinVersion && (b.MaxVersion == 0 || version <= b.MaxVersion)
}

// StatusTable is an ordered list of status bits.
type StatusTable []StatusBit

// Decode returns the entries of t set in word for the given firmware
// version, in table order.
func (t StatusTable) Decode(word uint64, version float64) []StatusBit {
	var out []StatusBit
	for _, b := range t {
		if word&b.Mask == b.Mask && b.Mask != 0 && b.applies(version) {
			out = append(out, b)
		}
	}
	return out
}

// Set reports whether the entry of t with the given mask is set in word.
func (t StatusTable) Set(word uint64, version float64, mask uint64) bool {
	for _, b := range t.Decode(word, version) {
		if b.Mask == mask {
			return true
		}
	}
	return false
}

// StatusTally counts status messages over a whole run so that they can be
// reported once instead of once per record.
type StatusTally struct {
	records int
	counts  map[string]int
	sev     map[string]Severity
}

// NewStatusTally returns an empty tally.
func NewStatusTally() *StatusTally {
	return &StatusTally{counts: make(map[string]int), sev: make(map[string]Severity)}
}

// Add records the status bits decoded from one record.
func (t *StatusTally) Add(bits []StatusBit) {
	t.records++
	for _, b := range bits {
		t.counts[b.Msg]++
		t.sev[b.Msg] = b.Severity
	}
}

// Count returns the number of records in which msg was set.
func (t *StatusTally) Count(msg string) int { return t.counts[msg] }

// Summarize logs one line per status message seen, with the number of
// records it was set in, most severe first.
func (t *StatusTally) Summarize(log logrus.FieldLogger) {
	msgs := make([]string, 0, len(t.counts))
	for m := range t.counts {
		msgs = append(msgs, m)
	}
	sort.Slice(msgs, func(i, j int) bool {
		if t.sev[msgs[i]] != t.sev[msgs[j]] {
			return t.sev[msgs[i]] > t.sev[msgs[j]]
		}
		return msgs[i] < msgs[j]
	})
	for _, m := range msgs {
		l := log.WithFields(logrus.Fields{"severity": t.sev[m].String(), "count": t.counts[m]})
		msg := raw2l1.ErrStatusSummary.Msg("%s: %d of %d records", m, t.counts[m], t.records)
		switch t.sev[m] {
		case Alarm:
			l.Error(msg)
		case Warning:
			l.Warn(msg)
		default:
			l.Info(msg)
		}
	}
}
