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

package ncgen

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/ACTRIS-CCRES/raw2l1-sub000/conf"
	"github.com/ctessum/cdf"
	"github.com/sirupsen/logrus"
)

// classicValues returns values in a type accepted by the classic format,
// or false if the type has no classic counterpart. BYTE is signed in
// netCDF, so int8 values are stored through their bit pattern.
func classicValues(values interface{}) (interface{}, bool) {
	switch t := values.(type) {
	case []int8:
		out := make([]uint8, len(t))
		for i, x := range t {
			out[i] = uint8(x)
		}
		return out, true
	case []int16, []int32, []float32, []float64, string:
		return t, true
	}
	return nil, false
}

// classicAttr returns an attribute value accepted by the classic format.
// Values of other integer types are stored as DOUBLE.
func classicAttr(values interface{}) (interface{}, bool) {
	if v, ok := classicValues(values); ok {
		return v, true
	}
	if x, ok := numbers(values); ok {
		return x, true
	}
	return nil, false
}

// writeClassic writes f in the netCDF classic format. The unlimited
// dimension becomes the record dimension. Variables whose type cannot be
// represented are logged and skipped.
func writeClassic(f *File, path string, log logrus.FieldLogger) (err error) {
	defer func() {
		// cdf reports invalid headers by panicking.
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	names := make([]string, len(f.Dims))
	lengths := make([]int, len(f.Dims))
	for i, d := range f.Dims {
		names[i] = d.Name
		if !d.Unlimited {
			lengths[i] = d.Len
		}
	}
	h := cdf.NewHeader(names, lengths)
	for _, a := range f.Attrs {
		if v, ok := classicAttr(a.Value); ok {
			h.AddAttribute("", a.Name, v)
		}
	}
	var vars []*Var
	for _, v := range f.Vars {
		values, ok := classicValues(v.Values)
		if !ok {
			if v.Type == conf.String {
				log.Error(raw2l1.ErrStringClassic.Msg("variable %s is a string and cannot be written in the classic format; skipped", v.Name))
			} else {
				log.Error(raw2l1.ErrStringClassic.Msg("variable %s of type %s cannot be written in the classic format; skipped", v.Name, v.Type))
			}
			continue
		}
		h.AddVariable(v.Name, v.Dims, values)
		for _, a := range v.Attrs {
			av, ok := classicAttr(a.Value)
			if !ok {
				log.Warn(raw2l1.ErrValueConvert.Msg("attribute %s:%s of type %T skipped", v.Name, a.Name, a.Value))
				continue
			}
			h.AddAttribute(v.Name, a.Name, av)
		}
		vars = append(vars, v)
	}
	h.Define()
	if errs := h.Check(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return fmt.Errorf("invalid header: %s", strings.Join(msgs, "; "))
	}

	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer w.Close()
	cf, err := cdf.Create(w, h)
	if err != nil {
		return err
	}
	for _, v := range vars {
		values, _ := classicValues(v.Values)
		// Fixed-size variables report io.EOF once completely written.
		if _, err := cf.Writer(v.Name, nil, nil).Write(values); err != nil && err != io.EOF {
			return fmt.Errorf("variable %s: %v", v.Name, err)
		}
	}
	if err := FinishRecords(w, h); err != nil {
		return err
	}
	if ud, ok := f.unlimited(); ok && ud.Len > 0 {
		if n := h.NumRecs(fileSize(w)); n > 0 && n != int64(ud.Len) {
			return fmt.Errorf("%d records written, want %d", n, ud.Len)
		}
	}
	return w.Close()
}

// FinishRecords completes a classic file written through h and stores its
// record count in the header. cdf derives the count from the file size, so
// the padding that ends the last record variable of the last record is
// written first when it is missing.
func FinishRecords(w *os.File, h *cdf.Header) error {
	var last string
	recVars := 0
	for _, v := range h.Variables() {
		if h.IsRecordVariable(v) {
			last = v
			recVars++
		}
	}
	// A single record variable is stored without padding.
	if recVars > 1 {
		n := int64(elemSize(h.ZeroValue(last, 1)))
		for _, l := range h.Lengths(last)[1:] {
			n *= int64(l)
		}
		size := fileSize(w)
		if size < 0 {
			return fmt.Errorf("cannot stat %s", w.Name())
		}
		if pad := (4 - n%4) % 4; pad > 0 && h.NumRecs(size+pad) > h.NumRecs(size) {
			if err := w.Truncate(size + pad); err != nil {
				return err
			}
		}
	}
	return cdf.UpdateNumRecs(w)
}

func fileSize(w *os.File) int64 {
	fi, err := w.Stat()
	if err != nil {
		return -1
	}
	return fi.Size()
}

// elemSize is the size in bytes of one element of a classic value slice.
func elemSize(zero interface{}) int {
	switch zero.(type) {
	case []int16:
		return 2
	case []int32, []float32:
		return 4
	case []float64:
		return 8
	}
	return 1
}
