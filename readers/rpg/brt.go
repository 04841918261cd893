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

package rpg

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
)

// File codes of brightness temperature files. They differ in the way the
// pointing angle of each record is stored.
const (
	CodeCoded = 666000 // one float32: elevation + 1000*azimuth
	CodeSplit = 666666 // two float32: elevation, azimuth
)

// MaxChannels bounds the channel count read from a header.
const MaxChannels = 64

// Epoch is the reference of record times.
var Epoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// Time references of the header.
const (
	TimeLocal = 0
	TimeUTC   = 1
)

type header struct {
	Code     int32
	Records  int32
	TimeRef  int32
	Channels int32
}

type recordHead struct {
	Time int32
	Rain uint8
}

// brtFile is an open brightness temperature file positioned at its first
// record.
type brtFile struct {
	header
	freq []float32
	f    *os.File
	r    *bufio.Reader

	// complete is the number of whole records in the file, which is less
	// than Records for truncated files.
	complete int
}

func openBRT(path string) (*brtFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	b := &brtFile{f: f, r: bufio.NewReader(f)}
	if err := b.readHeader(); err != nil {
		f.Close()
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	b.complete = int((fi.Size() - b.headerLen()) / b.recordLen())
	if b.complete > int(b.Records) {
		b.complete = int(b.Records)
	}
	return b, nil
}

func (b *brtFile) Close() error { return b.f.Close() }

func (b *brtFile) angles() int {
	if b.Code == CodeSplit {
		return 2
	}
	return 1
}

func (b *brtFile) headerLen() int64 { return 16 + 12*int64(b.Channels) }

func (b *brtFile) recordLen() int64 { return 5 + 4*int64(b.Channels) + 4*int64(b.angles()) }

func (b *brtFile) readHeader() error {
	if err := binary.Read(b.r, binary.LittleEndian, &b.header); err != nil {
		return fmt.Errorf("header: %v", err)
	}
	if b.Code != CodeCoded && b.Code != CodeSplit {
		return raw2l1.Errorf(raw2l1.ErrMessageType, "unknown file code %d", b.Code)
	}
	if b.Channels <= 0 || b.Channels > MaxChannels {
		return fmt.Errorf("header: %d channels", b.Channels)
	}
	if b.Records < 0 {
		return fmt.Errorf("header: %d records", b.Records)
	}
	// Frequencies followed by the minimum and maximum brightness
	// temperature of each channel.
	v := make([]float32, 3*b.Channels)
	if err := binary.Read(b.r, binary.LittleEndian, v); err != nil {
		return fmt.Errorf("header: %v", err)
	}
	b.freq = v[:b.Channels]
	return nil
}

// record is one decoded sample.
type record struct {
	time      time.Time
	rain      int
	tb        []float64
	elevation float64
	azimuth   float64
}

// next reads the next record. It returns io.EOF after the last one and
// io.ErrUnexpectedEOF if the file ends within a record.
func (b *brtFile) next() (*record, error) {
	var h recordHead
	if err := binary.Read(b.r, binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	tb := make([]float32, b.Channels)
	if err := binary.Read(b.r, binary.LittleEndian, tb); err != nil {
		return nil, eof(err)
	}
	angles := make([]float32, b.angles())
	if err := binary.Read(b.r, binary.LittleEndian, angles); err != nil {
		return nil, eof(err)
	}
	r := &record{
		time: Epoch.Add(time.Duration(h.Time) * time.Second),
		rain: int(h.Rain),
		tb:   make([]float64, len(tb)),
	}
	for i, x := range tb {
		r.tb[i] = float64(x)
	}
	if b.Code == CodeSplit {
		r.elevation, r.azimuth = float64(angles[0]), float64(angles[1])
	} else {
		r.elevation, r.azimuth = decodeAngle(float64(angles[0]))
	}
	return r, nil
}

// decodeAngle splits a coded angle into elevation and azimuth.
func decodeAngle(a float64) (elevation, azimuth float64) {
	azimuth = math.Floor(a / 1000)
	return a - 1000*azimuth, azimuth
}

func eof(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
