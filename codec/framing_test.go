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
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
)

// testFramer frames messages of the form
//
//	-2018-01-02 03:04:05
//	T1 4
//	body...
//
// where T1 messages have 3 lines and T2 messages 4.
func testFramer() *Framer {
	start := regexp.MustCompile(`^-(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})$`)
	return &Framer{
		Start: start,
		ParseTime: func(line string) (time.Time, error) {
			return time.Parse("2006-01-02 15:04:05", start.FindStringSubmatch(line)[1])
		},
		TypeLine: 1,
		Type: func(h string) (string, bool) {
			f := strings.Fields(h)
			if len(f) == 0 || (f[0] != "T1" && f[0] != "T2") {
				return "", false
			}
			return f[0], true
		},
		Lines: map[string]int{"T1": 3, "T2": 4},
	}
}

func testDims(m *Message) (raw2l1.Dims, error) {
	n, err := strconv.Atoi(strings.Fields(m.Lines[1])[1])
	if err != nil {
		return nil, err
	}
	return raw2l1.Dims{raw2l1.RangeDim: n}, nil
}

func discard() logrus.FieldLogger {
	l := logrus.New()
	l.Out = ioutil.Discard
	return l
}

type frameResult struct {
	Type  string
	Line  int
	Lines int
	Code  raw2l1.Code
}

func frame(t *testing.T, f *Framer, text string) []frameResult {
	var out []frameResult
	err := f.Messages(strings.NewReader(text), func(m *Message) error {
		out = append(out, frameResult{Type: m.Type, Line: m.Line, Lines: len(m.Lines), Code: raw2l1.CodeOf(m.Err)})
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestMessages(t *testing.T) {
	for _, test := range []struct {
		name string
		text string
		want []frameResult
	}{
		{
			name: "complete",
			text: "-2018-01-02 03:04:05\nT1 4\nbody\n-2018-01-02 03:04:15\nT1 4\nbody\n",
			want: []frameResult{{"T1", 1, 3, 0}, {"T1", 4, 3, 0}},
		},
		{
			name: "garbage between messages",
			text: "noise\n-2018-01-02 03:04:05\nT1 4\nbody\nnoise\n-2018-01-02 03:04:15\nT1 4\nbody\n",
			want: []frameResult{{"T1", 2, 3, 0}, {"T1", 6, 3, 0}},
		},
		{
			name: "truncated",
			text: "-2018-01-02 03:04:05\nT1 4\n-2018-01-02 03:04:15\nT1 4\nbody\n",
			want: []frameResult{{"T1", 1, 2, raw2l1.ErrMalformed}, {"T1", 3, 3, 0}},
		},
		{
			name: "truncated at end",
			text: "-2018-01-02 03:04:05\nT1 4\nbody\n-2018-01-02 03:04:15\n",
			want: []frameResult{{"T1", 1, 3, 0}, {"", 4, 1, raw2l1.ErrMalformed}},
		},
		{
			name: "type change",
			text: "-2018-01-02 03:04:05\nT1 4\nbody\n-2018-01-02 03:04:15\nT2 4\nbody\nbody\n-2018-01-02 03:04:25\nT1 4\nbody\n",
			want: []frameResult{{"T1", 1, 3, 0}, {"", 4, 2, raw2l1.ErrMessageType}, {"T1", 8, 3, 0}},
		},
		{
			name: "unknown type",
			text: "-2018-01-02 03:04:05\nXX 4\nbody\n-2018-01-02 03:04:15\nT2 4\nbody\nbody\n",
			want: []frameResult{{"", 1, 2, raw2l1.ErrMessageType}, {"T2", 4, 4, 0}},
		},
		{
			name: "control characters",
			text: "-2018-01-02 03:04:05\r\n\x01T1 4\x02\r\nbody\x03\r\n",
			want: []frameResult{{"T1", 1, 3, 0}},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			have := frame(t, testFramer(), test.text)
			if !reflect.DeepEqual(have, test.want) {
				t.Errorf("have %# v\nwant %# v", pretty.Formatter(have), pretty.Formatter(test.want))
			}
		})
	}
}

func writeFiles(t *testing.T, contents ...string) []string {
	dir, err := ioutil.TempDir("", "codec")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	var files []string
	for i, c := range contents {
		f := filepath.Join(dir, "f"+strconv.Itoa(i)+".dat")
		if err := ioutil.WriteFile(f, []byte(c), 0644); err != nil {
			t.Fatal(err)
		}
		files = append(files, f)
	}
	return files
}

// Two files of three messages and one malformed line each count six time
// steps.
func TestScanText(t *testing.T) {
	const file = "-2018-01-02 03:04:05\nT1 4\nbody\n" +
		"this line is not a message\n" +
		"-2018-01-02 03:04:15\nT1 4\nbody\n" +
		"-2018-01-02 03:04:25\nT1 4\nbody\n"
	files := writeFiles(t, file, file)
	dims, err := ScanText(files, testFramer(), testDims, discard())
	if err != nil {
		t.Fatal(err)
	}
	want := raw2l1.Dims{raw2l1.TimeDim: 6, raw2l1.RangeDim: 4}
	if !reflect.DeepEqual(dims, want) {
		t.Errorf("have %v, want %v", dims, want)
	}
}

func TestScanTextSkipsMissingFile(t *testing.T) {
	files := writeFiles(t, "-2018-01-02 03:04:05\nT1 4\nbody\n")
	files = append([]string{files[0] + ".missing"}, files...)
	dims, err := ScanText(files, testFramer(), testDims, discard())
	if err != nil {
		t.Fatal(err)
	}
	if dims[raw2l1.TimeDim] != 1 {
		t.Errorf("time: have %d, want 1", dims[raw2l1.TimeDim])
	}
}

func TestScanTextErrors(t *testing.T) {
	for _, test := range []struct {
		name  string
		files []string
		want  raw2l1.Code
	}{
		{
			name:  "range mismatch",
			files: []string{"-2018-01-02 03:04:05\nT1 4\nbody\n", "-2018-01-02 03:04:05\nT1 5\nbody\n"},
			want:  raw2l1.ErrDimMismatch,
		},
		{
			name:  "no messages",
			files: []string{"noise\n", ""},
			want:  raw2l1.ErrNoTimeSteps,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := ScanText(writeFiles(t, test.files...), testFramer(), testDims, discard())
			if c := raw2l1.CodeOf(err); c != test.want {
				t.Errorf("have %v (code %d), want code %d", err, c, test.want)
			}
		})
	}
	_, err := ScanText([]string{"/nonexistent/a", "/nonexistent/b"}, testFramer(), testDims, discard())
	if c := raw2l1.CodeOf(err); c != raw2l1.ErrNoInput {
		t.Errorf("unreadable files: have %v, want code %d", err, raw2l1.ErrNoInput)
	}
}
