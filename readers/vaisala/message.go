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

package vaisala

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ACTRIS-CCRES/raw2l1-sub000/codec"
)

// Layers is the number of cloud base heights in a data message.
const Layers = 3

// SkyLayers is the number of layers of the sky condition line.
const SkyLayers = 5

var headerRE = regexp.MustCompile(`CL(\w)(\d{3})(\d)(\d)`)

// gates holds the resolution, in meters, and the number of gates of the
// backscatter profile of each message subclass.
var gates = map[int]struct {
	resolution float64
	n          int
}{
	1: {10, 770},
	2: {20, 385},
	3: {5, 1500},
	4: {5, 770},
	5: {10, 1500},
	6: {10, 1540},
}

// messageLines holds the number of lines of each message number,
// time stamp and end line included.
var messageLines = map[int]int{1: 6, 2: 7}

type header struct {
	id       string
	level    string
	number   int
	subclass int
}

// typ is the message type the framer locks on. A subclass change keeps
// the type and is caught as a change of dimensions.
func (h header) typ() string { return strconv.Itoa(h.number) }

func parseHeader(line string) (header, error) {
	m := headerRE.FindStringSubmatch(line)
	if m == nil {
		return header{}, fmt.Errorf("%q is not a CL message header", line)
	}
	h := header{id: m[1], level: m[2]}
	h.number, _ = strconv.Atoi(m[3])
	h.subclass, _ = strconv.Atoi(m[4])
	if _, ok := messageLines[h.number]; !ok {
		return h, fmt.Errorf("unsupported message number %d", h.number)
	}
	if _, ok := gates[h.subclass]; !ok {
		return h, fmt.Errorf("unsupported message subclass %d", h.subclass)
	}
	return h, nil
}

// version returns the software level as a comparable number: level
// "201" is version 2.01.
func (h header) version() float64 {
	v, _ := strconv.ParseFloat(h.level, 64)
	return v / 100
}

// messageTypes returns the framer line counts of every message type.
func messageTypes() map[string]int {
	out := make(map[string]int)
	for n, lines := range messageLines {
		out[header{number: n}.typ()] = lines
	}
	return out
}

type skyLayer struct {
	amount int
	height float64
}

// record is one decoded data message. Heights are in the instrument
// units; unreported values hold ok=false.
type record struct {
	header header

	detection      int
	alarm          int
	heights        [Layers]float64
	heightOK       [Layers]bool
	status         uint64
	sky            [SkyLayers]skyLayer
	skyOK          [SkyLayers]bool
	hasSky         bool
	scale          float64
	resolution     float64
	gates          int
	energy         float64
	laserTemp      float64
	window         float64
	tilt           float64
	background     float64
	params         string
	sumBackscatter float64
	profile        []float64
}

// layout returns the index of the sky condition line, if any, of the
// parameter line and of the profile line.
func layout(number int) (sky, params, profile int) {
	if number == 2 {
		return 3, 4, 5
	}
	return -1, 3, 4
}

// parseParams decodes the parameter line:
//
//	00100 10 0770 098 +34 099 -02 0210 L0016HN15 008
//
// scale, resolution, gates, laser pulse energy, laser temperature, window
// transmission, tilt angle, background light, measurement parameters and
// sum of backscatter.
func parseParams(r *record, line string) error {
	f := strings.Fields(line)
	if len(f) != 10 {
		return fmt.Errorf("parameter line has %d fields, want 10", len(f))
	}
	var err error
	nums := []*float64{&r.scale, &r.resolution, nil, &r.energy, &r.laserTemp, &r.window, &r.tilt, &r.background}
	for i, dst := range nums {
		if dst == nil {
			if r.gates, err = strconv.Atoi(f[i]); err != nil {
				return fmt.Errorf("number of gates %q: %v", f[i], err)
			}
			continue
		}
		if *dst, err = strconv.ParseFloat(f[i], 64); err != nil {
			return fmt.Errorf("parameter %d %q: %v", i+1, f[i], err)
		}
	}
	r.params = f[8]
	sum, err := strconv.ParseFloat(f[9], 64)
	if err != nil {
		return fmt.Errorf("sum of backscatter %q: %v", f[9], err)
	}
	r.sumBackscatter = sum * 1e-4
	return nil
}

// parseStatus decodes the status line:
//
//	30 01230 ///// ///// 00000000C000
//
// detection status and warning/alarm flag, three heights and the status
// word in hexadecimal.
func parseStatus(r *record, line string) error {
	f := strings.Fields(line)
	if len(f) != 2+Layers {
		return fmt.Errorf("status line has %d fields, want %d", len(f), 2+Layers)
	}
	if len(f[0]) != 2 {
		return fmt.Errorf("detection status %q", f[0])
	}
	switch c := f[0][0]; {
	case c >= '0' && c <= '5':
		r.detection = int(c - '0')
	case c == '/':
		r.detection = -1
	default:
		return fmt.Errorf("detection status %q", f[0])
	}
	switch f[0][1] {
	case '0':
	case 'W':
		r.alarm = 1
	case 'A':
		r.alarm = 2
	default:
		return fmt.Errorf("warning/alarm flag %q", f[0][1:])
	}
	for i := 0; i < Layers; i++ {
		tok := f[1+i]
		if strings.Trim(tok, "/") == "" {
			continue
		}
		h, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return fmt.Errorf("height %d %q: %v", i+1, tok, err)
		}
		r.heights[i], r.heightOK[i] = h, true
	}
	var err error
	if r.status, err = strconv.ParseUint(f[1+Layers], 16, 64); err != nil {
		return fmt.Errorf("status word %q: %v", f[1+Layers], err)
	}
	return nil
}

// parseSky decodes the sky condition line, made of (amount, height)
// pairs. Heights are in hundreds of feet or tens of meters.
func parseSky(r *record, line string) error {
	f := strings.Fields(line)
	if len(f) != 2*SkyLayers {
		return fmt.Errorf("sky condition line has %d fields, want %d", len(f), 2*SkyLayers)
	}
	r.hasSky = true
	for i := 0; i < SkyLayers; i++ {
		a, err := strconv.Atoi(f[2*i])
		if err != nil {
			return fmt.Errorf("cloud amount %q: %v", f[2*i], err)
		}
		if a < 0 {
			continue
		}
		r.sky[i].amount = a
		r.skyOK[i] = true
		if tok := f[2*i+1]; strings.Trim(tok, "/") != "" {
			if r.sky[i].height, err = strconv.ParseFloat(tok, 64); err != nil {
				return fmt.Errorf("cloud height %q: %v", tok, err)
			}
		} else {
			r.sky[i].height = -1
		}
	}
	return nil
}

// parseMessage decodes every line of a framed message.
func parseMessage(m *codec.Message, factor float64) (*record, error) {
	h, err := parseHeader(m.Lines[1])
	if err != nil {
		return nil, err
	}
	r := &record{header: h}
	sky, params, profile := layout(h.number)
	if err := parseStatus(r, m.Lines[2]); err != nil {
		return nil, err
	}
	if sky > 0 {
		if err := parseSky(r, m.Lines[sky]); err != nil {
			return nil, err
		}
	}
	if err := parseParams(r, m.Lines[params]); err != nil {
		return nil, err
	}
	g := gates[h.subclass]
	if r.gates != g.n || r.resolution != g.resolution {
		return nil, fmt.Errorf("message subclass %d has %d gates of %g m, parameters give %d of %g m",
			h.subclass, g.n, g.resolution, r.gates, r.resolution)
	}
	if _, r.profile, err = codec.DecodeProfile(m.Lines[profile], codec.Hex20Width, r.gates, factor); err != nil {
		return nil, err
	}
	return r, nil
}
