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

package raw2l1

import (
	"reflect"
	"testing"
	"time"
)

func TestProfiles(t *testing.T) {
	a := Profiles(-999, 3, 2)
	SetRow(a, 1, []float64{0, 1.5})
	want := []float64{-999, -999, 0, 1.5, -999, -999}
	if !reflect.DeepEqual(a.Elements, want) {
		t.Errorf("%v != %v", a.Elements, want)
	}
	FillRow(a, 1, -1)
	if !reflect.DeepEqual(Row(a, 1), []float64{-1, -1}) {
		t.Errorf("row %v", Row(a, 1))
	}
}

func TestShape(t *testing.T) {
	tests := []struct {
		v    interface{}
		want []int
	}{
		{1.5, nil},
		{"abc", nil},
		{Floats(4, 0), []int{4}},
		{Ints(2, -9), []int{2}},
		{make([]time.Time, 3), []int{3}},
		{Profiles(0, 5, 7), []int{5, 7}},
		{IntProfiles(-9, 5, 3), []int{5, 3}},
	}
	for i, test := range tests {
		if got := Shape(test.v); !reflect.DeepEqual(got, test.want) {
			t.Errorf("%d: %v != %v", i, got, test.want)
		}
	}
}

func TestDataGet(t *testing.T) {
	d := Data{"time": []time.Time{{}}}
	if _, err := d.Get("beta"); CodeOf(err) != ErrMissingKey {
		t.Errorf("got %v", err)
	}
	if _, err := d.Times("time"); err != nil {
		t.Error(err)
	}
	d["x"] = 1.0
	if _, err := d.Times("x"); err == nil {
		t.Error("expected a type error")
	}
}

func TestDimsCheck(t *testing.T) {
	d := Dims{TimeDim: 0, RangeDim: 10}
	if err := d.Check(RangeDim); err != nil {
		t.Error(err)
	}
	if err := d.Check(TimeDim); CodeOf(err) != ErrNoTimeSteps {
		t.Errorf("got %v", err)
	}
	if err := d.Check(LayerDim); err == nil {
		t.Error("expected an error")
	}
}
