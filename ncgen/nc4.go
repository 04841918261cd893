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

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/hdf5"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
)

// nc4Writer is the part of the HDF5 writer used here.
type nc4Writer interface {
	AddAttributes(api.AttributeMap) error
	AddVar(name string, vr api.Variable) error
	Close() error
}

func attributeMap(attrs []Attr) (api.AttributeMap, error) {
	m, err := util.NewOrderedMap(nil, nil)
	if err != nil {
		return nil, err
	}
	for _, a := range attrs {
		m.Add(a.Name, a.Value)
	}
	return m, nil
}

// nest reshapes a flat row-major slice into nested slices following shape.
// An empty shape yields the single element as a scalar.
func nest(values interface{}, shape []int) interface{} {
	v := reflect.ValueOf(values)
	switch len(shape) {
	case 0:
		return v.Index(0).Interface()
	case 1:
		return values
	}
	size := product(shape[1:])
	var out reflect.Value
	for i := 0; i < shape[0]; i++ {
		row := reflect.ValueOf(nest(v.Slice(i*size, (i+1)*size).Interface(), shape[1:]))
		if i == 0 {
			out = reflect.MakeSlice(reflect.SliceOf(row.Type()), 0, shape[0])
		}
		out = reflect.Append(out, row)
	}
	return out.Interface()
}

// writeNetCDF4 writes f in the netCDF4 (HDF5) format. The writer has no
// unlimited dimension nor compression: the time dimension is stored with
// its current length and compression requests are reported and ignored.
func writeNetCDF4(f *File, path string, opts WriteOptions) error {
	if opts.Compression {
		opts.Log.Warn(raw2l1.ErrCompressionOff.Msg("netCDF4 compression (level %d) is not available; writing uncompressed",
			opts.CompressionLevel))
	}
	hw, err := hdf5.OpenWriter(path)
	if err != nil {
		return err
	}
	var w nc4Writer = hw
	closed := false
	defer func() {
		if !closed {
			w.Close()
		}
	}()
	ga, err := attributeMap(f.Attrs)
	if err != nil {
		return err
	}
	if err := w.AddAttributes(ga); err != nil {
		return err
	}
	for _, v := range f.Vars {
		va, err := attributeMap(v.Attrs)
		if err != nil {
			return err
		}
		err = w.AddVar(v.Name, api.Variable{
			Values:     nest(v.Values, v.Shape),
			Dimensions: v.Dims,
			Attributes: va,
		})
		if err != nil {
			return raw2l1.Errorf(raw2l1.ErrWrite, "variable %s: %v", v.Name, err)
		}
	}
	closed = true
	return w.Close()
}
