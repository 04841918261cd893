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
	"sort"
	"strings"
)

// Reader specifies the methods that are necessary for a type to act as
// a decoder of raw instrument files. Both methods receive the same ordered
// list of input files.
type Reader interface {
	// ScanDimensions examines the contents of files and returns the size
	// of every dimension the reader will fill, before any output array is
	// allocated.
	ScanDimensions(files []string, cfg *ReaderConfig) (Dims, error)

	// Decode fills the data dictionary in one forward pass over files,
	// using arrays sized from dims.
	Decode(files []string, dims Dims, cfg *ReaderConfig) (Data, error)
}

// ReaderFunc returns a new Reader. It is the entry point each reader
// package registers.
type ReaderFunc func() Reader

var readers = make(map[string]ReaderFunc)

// RegisterReader makes a reader available under name. It is intended to
// be called from the init function of reader packages. Registering the
// same name twice panics.
func RegisterReader(name string, f ReaderFunc) {
	name = strings.ToLower(name)
	if _, dup := readers[name]; dup {
		panic("raw2l1: RegisterReader called twice for reader " + name)
	}
	readers[name] = f
}

// Readers returns the sorted names of the registered readers.
func Readers() []string {
	var names []string
	for n := range readers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadReader resolves the reader registered under name. Any failure is
// fatal for the run: there is no fallback decoder.
func LoadReader(name string) (Reader, error) {
	f, ok := readers[strings.ToLower(name)]
	if !ok {
		return nil, Errorf(ErrReaderNotFound, "reader %q is not available; available readers are %s",
			name, strings.Join(Readers(), ", "))
	}
	if f == nil {
		return nil, Errorf(ErrReaderEntryPoint, "reader %q was registered without an entry point", name)
	}
	r := f()
	if r == nil {
		return nil, Errorf(ErrReaderEntryPoint, "entry point of reader %q returned no reader", name)
	}
	return r, nil
}
