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
	"reflect"
	"time"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
)

// FilterDay keeps only the records of the unlimited dimension whose time
// stamp falls on the calendar day of day, in UTC. It fails if f has no
// time variable along its unlimited dimension or if no record is left.
func (f *File) FilterDay(day time.Time) error {
	ud, ok := f.unlimited()
	if !ok || len(f.Times) != ud.Len {
		return raw2l1.Errorf(raw2l1.ErrConfigSection, "filtering by day needs a time variable along the unlimited dimension")
	}
	day = day.UTC()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	var keep []int
	for i, t := range f.Times {
		if !t.Before(start) && t.Before(end) {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return raw2l1.Errorf(raw2l1.ErrNoTimeSteps, "no record on %s among %d", start.Format("2006-01-02"), ud.Len)
	}
	if len(keep) == ud.Len {
		return nil
	}
	for _, v := range f.Vars {
		if len(v.Dims) == 0 || v.Dims[0] != ud.Name {
			continue
		}
		v.Values = selectRecords(v.Values, product(v.Shape[1:]), keep)
		v.Shape[0] = len(keep)
	}
	times := make([]time.Time, len(keep))
	for i, k := range keep {
		times[i] = f.Times[k]
	}
	f.Times = times
	for i := range f.Dims {
		if f.Dims[i].Unlimited {
			f.Dims[i].Len = len(keep)
		}
	}
	return nil
}

// selectRecords returns the records of values listed in keep, each record
// holding size consecutive elements.
func selectRecords(values interface{}, size int, keep []int) interface{} {
	in := reflect.ValueOf(values)
	out := reflect.MakeSlice(in.Type(), 0, len(keep)*size)
	for _, k := range keep {
		out = reflect.AppendSlice(out, in.Slice(k*size, (k+1)*size))
	}
	return out.Interface()
}
