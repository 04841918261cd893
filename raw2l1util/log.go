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

package raw2l1util

import (
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/goblimey/go-tools/dailylogger"
	"github.com/sirupsen/logrus"
)

// writerHook writes the entries of the given levels to w.
type writerHook struct {
	w         io.Writer
	levels    []logrus.Level
	formatter logrus.Formatter
}

func (h *writerHook) Levels() []logrus.Level { return h.levels }

func (h *writerHook) Fire(e *logrus.Entry) error {
	b, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = h.w.Write(b)
	return err
}

func parseLevel(s string) (logrus.Level, error) {
	l, err := logrus.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return l, raw2l1.Errorf(raw2l1.ErrConfigValue, "log level: %v", err)
	}
	return l, nil
}

// NewLogger returns a logger writing the messages at level and above to
// console. If dir is not empty, the messages at fileLevel and above are
// also written to a file in dir, named after the current day.
func NewLogger(console io.Writer, level, dir, fileLevel string) (*logrus.Logger, error) {
	cl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.Out = ioutil.Discard
	log.Level = cl
	log.Hooks.Add(&writerHook{
		w:         console,
		levels:    logrus.AllLevels[:cl+1],
		formatter: &logrus.TextFormatter{DisableColors: true, FullTimestamp: true},
	})
	if dir == "" {
		return log, nil
	}
	fl, err := parseLevel(fileLevel)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, raw2l1.Errorf(raw2l1.ErrConfigValue, "log directory: %v", err)
	}
	if fl > log.Level {
		log.Level = fl
	}
	log.Hooks.Add(&writerHook{
		w:         dailylogger.New(dir, "raw2l1.", ".log"),
		levels:    logrus.AllLevels[:fl+1],
		formatter: &logrus.JSONFormatter{},
	})
	return log, nil
}
