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

package campbell

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ACTRIS-CCRES/raw2l1-sub000/codec"
)

// Layers is the number of cloud base heights of a message.
const Layers = 4

// SkyLayers is the number of layers of the sky condition line.
const SkyLayers = 5

var headerRE = regexp.MustCompile(`CS(\w)(\d{3})(\d{3})`)

// messageType describes a message number.
type messageType struct {
	sky        bool
	profile    bool
	resolution float64
	gates      int
}

var messageTypes = map[int]messageType{
	1: {resolution: 10, gates: 1024},
	2: {profile: true, resolution: 10, gates: 1024},
	3: {profile: true, resolution: 5, gates: 2048},
	4: {sky: true, resolution: 10, gates: 1024},
	5: {sky: true, profile: true, resolution: 10, gates: 1024},
	6: {sky: true, profile: true, resolution: 5, gates: 2048},
}

// Firmware branches. Operating systems up to 1.05 end messages with the
// profile line, later ones add a checksum line.
const (
	legacy  = "legacy"
	current = "current"
)

// Firmware is the operating system version table.
var Firmware = codec.VersionTable{
	Rules:  []codec.VersionRule{{Max: 1.05, Tag: legacy}},
	Latest: current,
	Newest: 9.99,
}

// lines returns the number of lines of a message, time stamp included.
func (t messageType) lines(firmware string) int {
	n := 4 // time stamp, header, status, parameters
	if t.sky {
		n++
	}
	if t.profile {
		n++
	}
	if firmware != legacy {
		n++
	}
	return n
}

type header struct {
	id       string
	os       string
	number   int
	firmware string
}

func (h header) version() float64 {
	v, _ := strconv.ParseFloat(h.os, 64)
	return v / 100
}

func (h header) typ() string { return fmt.Sprintf("%03d/%s", h.number, h.firmware) }

func parseHeader(line string) (header, error) {
	m := headerRE.FindStringSubmatch(line)
	if m == nil {
		return header{}, fmt.Errorf("%q is not a CS message header", line)
	}
	h := header{id: m[1], os: m[2]}
	h.number, _ = strconv.Atoi(m[3])
	if _, ok := messageTypes[h.number]; !ok {
		return h, fmt.Errorf("unsupported message number %03d", h.number)
	}
	h.firmware, _ = Firmware.Lookup(h.version())
	return h, nil
}

// frameLines returns the framer line count of every message type.
func frameLines() map[string]int {
	out := make(map[string]int)
	for n, t := range messageTypes {
		for _, fw := range []string{legacy, current} {
			out[header{number: n, firmware: fw}.typ()] = t.lines(fw)
		}
	}
	return out
}

// record is one decoded message.
type record struct {
	header header

	detection  int
	alarm      int
	heights    [Layers]float64
	heightOK   [Layers]bool
	status     uint64
	amounts    [SkyLayers]int
	skyHeights [SkyLayers]float64
	hasSky     bool

	scale      float64
	resolution float64
	gates      int
	energy     float64
	laserTemp  float64
	tilt       float64
	background float64
	pulses     float64
	sampleRate float64
	sum        float64

	profile []float64
}

// parseStatus decodes
//
//	1W 00850 ///// ///// ///// 00800080
//
// detection status and warning/alarm flag, four heights and the 32-bit
// status word.
func (r *record) parseStatus(line string) error {
	f := strings.Fields(line)
	if len(f) != Layers+2 || len(f[0]) != 2 {
		return fmt.Errorf("malformed status line %q", line)
	}
	switch c := f[0][0]; {
	case c >= '0' && c <= '4':
		r.detection = int(c - '0')
	case c == '/':
		r.detection = -1
	default:
		return fmt.Errorf("detection status %q", f[0][:1])
	}
	r.alarm = strings.IndexByte("0WA", f[0][1])
	if r.alarm < 0 {
		return fmt.Errorf("warning/alarm flag %q", f[0][1:])
	}
	for i := range r.heights {
		tok := f[i+1]
		if strings.Trim(tok, "/") == "" {
			continue
		}
		h, err := strconv.Atoi(tok)
		if err != nil {
			return fmt.Errorf("height %q: %v", tok, err)
		}
		r.heights[i], r.heightOK[i] = float64(h), true
	}
	w := f[Layers+1]
	if len(w) != 8 {
		return fmt.Errorf("status word %q: want 8 hexadecimal digits", w)
	}
	var err error
	r.status, err = strconv.ParseUint(w, 16, 32)
	return err
}

// parseSky decodes the sky condition line. Amounts of -1 and heights of
// "///" are not reported and decode as -1.
func (r *record) parseSky(line string) error {
	f := strings.Fields(line)
	if len(f) != 2*SkyLayers {
		return fmt.Errorf("sky condition line has %d fields, want %d", len(f), 2*SkyLayers)
	}
	for i := 0; i < SkyLayers; i++ {
		a, err := strconv.Atoi(f[2*i])
		if err != nil {
			return fmt.Errorf("cloud amount %q: %v", f[2*i], err)
		}
		r.amounts[i], r.skyHeights[i] = a, -1
		if tok := f[2*i+1]; strings.Trim(tok, "/") != "" {
			h, err := strconv.Atoi(tok)
			if err != nil {
				return fmt.Errorf("cloud height %q: %v", tok, err)
			}
			r.skyHeights[i] = float64(h)
		}
	}
	r.hasSky = true
	return nil
}

// parseParams decodes
//
//	100 10 1024 098 +20 +01 0135 10000 80 0034
//
// scale, resolution, gates, laser pulse energy, laser temperature, tilt
// angle, background light, pulse quantity, sample rate and sum of
// backscatter.
func (r *record) parseParams(line string) error {
	f := strings.Fields(line)
	if len(f) != 10 {
		return fmt.Errorf("parameter line has %d fields, want 10", len(f))
	}
	v := make([]float64, len(f))
	for i, s := range f {
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parameter %d %q: %v", i+1, s, err)
		}
		v[i] = x
	}
	r.scale, r.resolution, r.gates = v[0], v[1], int(v[2])
	r.energy, r.laserTemp, r.tilt, r.background = v[3], v[4], v[5], v[6]
	r.pulses, r.sampleRate, r.sum = v[7], v[8], v[9]*1e-4
	return nil
}

func parseMessage(m *codec.Message, factor float64) (*record, error) {
	h, err := parseHeader(m.Lines[1])
	if err != nil {
		return nil, err
	}
	t := messageTypes[h.number]
	r := &record{header: h}
	if err := r.parseStatus(m.Lines[2]); err != nil {
		return nil, err
	}
	next := 3
	if t.sky {
		if err := r.parseSky(m.Lines[next]); err != nil {
			return nil, err
		}
		next++
	}
	if err := r.parseParams(m.Lines[next]); err != nil {
		return nil, err
	}
	next++
	if r.gates != t.gates || r.resolution != t.resolution {
		return nil, fmt.Errorf("message %03d has %d gates of %g m, parameters give %d of %g m",
			h.number, t.gates, t.resolution, r.gates, r.resolution)
	}
	if t.profile {
		if _, r.profile, err = codec.DecodeProfile(m.Lines[next], codec.Hex20Width, r.gates, factor); err != nil {
			return nil, err
		}
	}
	return r, nil
}
