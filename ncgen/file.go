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

// Package ncgen builds netCDF files from a configuration and the data
// dictionary produced by a reader. Build assembles an in-memory File, which
// can be restricted to one calendar day and is then written in the
// classic or the netCDF4 format.
package ncgen

import (
	"time"

	"github.com/ACTRIS-CCRES/raw2l1-sub000/conf"
)

// Dim is a netCDF dimension.
type Dim struct {
	Name      string
	Len       int
	Unlimited bool
}

// Attr is a netCDF attribute. Value is a string or a typed slice
// ([]int8, []uint8, []int16, []int32, []int64, []float32, []float64).
type Attr struct {
	Name  string
	Value interface{}
}

// Var is a netCDF variable. Values is a flat slice in row-major order
// whose element type matches Type: []int8, []uint8, []int16, []int32,
// []int64, []float32, []float64 or []string.
type Var struct {
	Name   string
	Type   conf.Type
	Dims   []string
	Shape  []int
	Values interface{}
	Attrs  []Attr
}

// Attr returns the value of attribute name.
func (v *Var) Attr(name string) (interface{}, bool) {
	for _, a := range v.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// File is an in-memory netCDF file.
type File struct {
	Dims  []Dim
	Attrs []Attr
	Vars  []*Var

	// Times holds the time stamps along the unlimited dimension, if a
	// time variable spans it.
	Times []time.Time
}

// Var returns the variable called name, or nil.
func (f *File) Var(name string) *Var {
	for _, v := range f.Vars {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Dim returns the dimension called name.
func (f *File) Dim(name string) (Dim, bool) {
	for _, d := range f.Dims {
		if d.Name == name {
			return d, true
		}
	}
	return Dim{}, false
}

func (f *File) unlimited() (Dim, bool) {
	for _, d := range f.Dims {
		if d.Unlimited {
			return d, true
		}
	}
	return Dim{}, false
}
