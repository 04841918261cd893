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
	"bufio"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
)

// Message is one framed message from a text log. Lines[0] is the start
// line. A message with a non-nil Err still occupies one time index.
type Message struct {
	Lines []string
	Time  time.Time
	Type  string

	// Line is the 1-based line number of the start line.
	Line int

	Err error
}

// Framer splits a line-oriented instrument log into messages. A message
// starts with a line matching Start and is made of a fixed number of lines
// that depends on the message type read from the header line.
type Framer struct {
	// Start matches the first line of a message.
	Start *regexp.Regexp

	// ParseTime extracts the message time from the start line.
	ParseTime func(line string) (time.Time, error)

	// TypeLine is the offset of the header line holding the message type,
	// relative to the start line.
	TypeLine int

	// Type returns the message type coded in the header line.
	Type func(header string) (string, bool)

	// Lines holds the number of lines of each message type, start line
	// included.
	Lines map[string]int

	typ string
}

// Reset forgets the message type seen so far.
func (f *Framer) Reset() { f.typ = "" }

// Clean removes the control characters instrument messages are wrapped in
// and trailing white space.
func Clean(line string) string {
	line = strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' {
			return -1
		}
		return r
	}, line)
	return strings.TrimRight(line, " \t")
}

// Messages calls fn for every message in r, in order. Every start line
// yields exactly one call. Messages that are truncated, whose header
// cannot be read, or whose type differs from the first valid message
// seen by f are passed with Err set. Lines outside any message are
// ignored. An error returned by fn stops the scan and is returned.
func (f *Framer) Messages(r io.Reader, fn func(*Message) error) error {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	var (
		cur  *Message
		want int
	)
	emit := func() error {
		if cur == nil {
			return nil
		}
		m := cur
		cur = nil
		if m.Err == nil && len(m.Lines) < want {
			m.Err = raw2l1.Errorf(raw2l1.ErrMalformed, "message at line %d is truncated: %d of %d lines",
				m.Line, len(m.Lines), want)
		}
		if m.Err == nil && want == 0 {
			m.Err = raw2l1.Errorf(raw2l1.ErrMalformed, "message at line %d has no header", m.Line)
		}
		return fn(m)
	}
	n := 0
	for s.Scan() {
		n++
		line := Clean(s.Text())
		if f.Start.MatchString(line) {
			if err := emit(); err != nil {
				return err
			}
			cur = &Message{Lines: []string{line}, Line: n}
			want = 0
			t, err := f.ParseTime(line)
			if err != nil {
				cur.Err = raw2l1.Errorf(raw2l1.ErrMalformed, "line %d: bad timestamp: %v", n, err)
			}
			cur.Time = t
			continue
		}
		if cur == nil || cur.Err != nil {
			continue
		}
		cur.Lines = append(cur.Lines, line)
		if len(cur.Lines) == f.TypeLine+1 {
			typ, ok := f.Type(line)
			switch {
			case !ok:
				cur.Err = raw2l1.Errorf(raw2l1.ErrMessageType, "line %d: unrecognized message header %q", n, line)
				continue
			case f.typ == "":
				f.typ = typ
			case f.typ != typ:
				cur.Err = raw2l1.Errorf(raw2l1.ErrMessageType, "line %d: message type changed from %s to %s",
					n, f.typ, typ)
				continue
			}
			cur.Type = typ
			want = f.Lines[typ]
		}
		if want > 0 && len(cur.Lines) == want {
			if err := emit(); err != nil {
				return err
			}
		}
	}
	if err := s.Err(); err != nil {
		return err
	}
	return emit()
}
