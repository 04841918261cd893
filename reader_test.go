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
	"testing"
)

type nopReader struct{}

func (nopReader) ScanDimensions(files []string, cfg *ReaderConfig) (Dims, error) {
	return Dims{TimeDim: len(files)}, nil
}

func (nopReader) Decode(files []string, dims Dims, cfg *ReaderConfig) (Data, error) {
	return Data{"time": Floats(dims[TimeDim], cfg.MissingFloat)}, nil
}

func TestLoadReader(t *testing.T) {
	RegisterReader("test_nop", func() Reader { return nopReader{} })
	RegisterReader("test_nil_entry", nil)
	RegisterReader("test_nil_reader", func() Reader { return nil })

	t.Run("found", func(t *testing.T) {
		r, err := LoadReader("TEST_NOP")
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := r.(nopReader); !ok {
			t.Errorf("got %T", r)
		}
	})
	for name, code := range map[string]Code{
		"does_not_exist":  ErrReaderNotFound,
		"test_nil_entry":  ErrReaderEntryPoint,
		"test_nil_reader": ErrReaderEntryPoint,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadReader(name)
			if err == nil {
				t.Fatal("expected an error")
			}
			if c := CodeOf(err); c != code {
				t.Errorf("code %d != %d", c, code)
			}
			if ExitCode(err) != ExitFatal {
				t.Errorf("exit code %d", ExitCode(err))
			}
		})
	}
}

func TestRegisterReaderTwice(t *testing.T) {
	RegisterReader("test_dup", func() Reader { return nopReader{} })
	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	RegisterReader("test_dup", func() Reader { return nopReader{} })
}
