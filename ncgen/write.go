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
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/ACTRIS-CCRES/raw2l1-sub000/conf"
	"github.com/sirupsen/logrus"
)

// WriteOptions holds the output settings of Write.
type WriteOptions struct {
	Format           conf.Format
	Compression      bool
	CompressionLevel int
	Log              logrus.FieldLogger
}

// Write writes f to path. The file is first written next to path under a
// temporary name and renamed once complete, so that no partial output is
// left in place when writing fails.
func Write(f *File, path string, opts WriteOptions) error {
	if opts.Log == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		opts.Log = l
	}
	tmp, err := ioutil.TempFile(filepath.Dir(path), "."+filepath.Base(path)+".")
	if err != nil {
		return raw2l1.Errorf(raw2l1.ErrWrite, "creating output file: %v", err)
	}
	name := tmp.Name()
	tmp.Close()
	ok := false
	defer func() {
		if !ok {
			os.Remove(name)
		}
	}()

	switch {
	case opts.Format.IsClassic():
		if opts.Compression {
			opts.Log.Warn(raw2l1.ErrCompressionOff.Msg("compression is not available in format %s", opts.Format))
		}
		err = writeClassic(f, name, opts.Log)
	default:
		err = writeNetCDF4(f, name, opts)
	}
	if err != nil {
		return raw2l1.Errorf(raw2l1.ErrWrite, "writing %s: %v", path, err)
	}
	if err := os.Chmod(name, 0644); err != nil {
		return raw2l1.Errorf(raw2l1.ErrWrite, "writing %s: %v", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		return raw2l1.Errorf(raw2l1.ErrWrite, "writing %s: %v", path, err)
	}
	ok = true
	opts.Log.WithFields(logrus.Fields{"file": path, "format": opts.Format}).Info("output file written")
	return nil
}
