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
	"sort"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/ctessum/unit"
)

// Conversion is a linear unit fix-up, v*Factor + Offset, producing a
// value in the To dimensions.
type Conversion struct {
	Name   string
	Factor float64
	Offset float64
	To     unit.Dimensions
}

// Unit conversions applied by the readers. They are not applied
// implicitly: each reader picks the ones its instrument needs.
var (
	FeetToMeters          = Conversion{Name: "ft->m", Factor: 0.3048, To: unit.Meter}
	MetersToMeters        = Conversion{Name: "m->m", Factor: 1, To: unit.Meter}
	CelsiusToKelvin       = Conversion{Name: "degC->K", Factor: 1, Offset: 273.15, To: unit.Kelvin}
	MillisecondsToSeconds = Conversion{Name: "ms->s", Factor: 1e-3, To: unit.Second}
	GigahertzToHertz      = Conversion{Name: "GHz->Hz", Factor: 1e9, To: unit.Herz}
)

// Unit returns v converted, with its dimensions.
func (c Conversion) Unit(v float64) *unit.Unit {
	return unit.New(v*c.Factor+c.Offset, c.To)
}

// Apply converts v, leaving the missing sentinel unchanged.
func (c Conversion) Apply(v, missing float64) float64 {
	if v == missing {
		return v
	}
	return v*c.Factor + c.Offset
}

// ApplySlice converts every element of s in place, leaving missing
// sentinels unchanged.
func (c Conversion) ApplySlice(s []float64, missing float64) {
	for i, v := range s {
		s[i] = c.Apply(v, missing)
	}
}

// UnitTable holds the dimensions of the data keys a reader converts.
type UnitTable map[string]unit.Dimensions

// Check returns an ErrUnitMismatch error if c does not yield the
// dimensions of key.
func (t UnitTable) Check(key string, c Conversion) error {
	want, ok := t[key]
	if !ok {
		return raw2l1.Errorf(raw2l1.ErrUnitMismatch, "%s: no unit declared", key)
	}
	if !unit.DimensionsMatch(c.Unit(1), unit.New(1, want)) {
		return raw2l1.Errorf(raw2l1.ErrUnitMismatch, "%s: conversion %s yields %v, want %v",
			key, c.Name, c.To, want)
	}
	return nil
}

// CheckAll checks every conversion of convs, which holds the conversions
// applied to each data key.
func (t UnitTable) CheckAll(convs map[string][]Conversion) error {
	keys := make([]string, 0, len(convs))
	for k := range convs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, c := range convs[k] {
			if err := t.Check(k, c); err != nil {
				return err
			}
		}
	}
	return nil
}
