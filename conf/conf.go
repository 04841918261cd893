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

// Package conf loads the declarative configuration that drives a
// conversion: which reader to use, the options handed to it, and the
// netCDF schema (global attributes, dimensions and variables) of the
// output file.
package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/go-ini/ini"
	"github.com/spf13/cast"
)

// Reserved section names.
const (
	DefaultSection = "DEFAULT"
	ConfSection    = "conf"
	ReaderSection  = "reader_conf"
	GlobalSection  = "global"
)

// Variable section options that are not netCDF attributes.
const (
	DimOption   = "dim"
	TypeOption  = "type"
	ValueOption = "value"
	SizeOption  = "size"
)

// Format is an output netCDF format.
type Format string

// Supported output formats.
const (
	Classic  Format = "NETCDF3_CLASSIC"
	Offset64 Format = "NETCDF3_64BIT"
	NetCDF4  Format = "NETCDF4"
)

// IsClassic reports whether f is one of the netCDF-3 formats.
func (f Format) IsClassic() bool { return f == Classic || f == Offset64 }

// DefaultCompressionLevel is the deflate level used when compression is
// enabled without a level.
const DefaultCompressionLevel = 4

// DefaultMaxOffset is the default of the max_age and max_future options.
const DefaultMaxOffset = time.Hour

// Attr is a netCDF attribute as written in the configuration.
type Attr struct {
	Name  string
	Value string
}

// Section is a dimension or variable section.
type Section struct {
	Name string

	// Dims is the dimension tuple of the variable, outermost first.
	Dims []string

	// Type is the declared type, or "" for a dimension-only section.
	Type Type

	// Value is the value expression of a variable.
	Value string

	// Size is the size expression of a fixed dimension.
	Size string

	// Attrs holds every other option, in file order.
	Attrs []Attr
}

// IsDimension reports whether s declares a dimension: its only dimension
// is itself.
func (s *Section) IsDimension() bool {
	return len(s.Dims) == 1 && s.Dims[0] == s.Name
}

// IsVariable reports whether s declares a variable.
func (s *Section) IsVariable() bool { return s.Type != "" }

// Attr returns the value of attribute name.
func (s *Section) Attr(name string) (string, bool) {
	for _, a := range s.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Config is a validated configuration file.
type Config struct {
	Path string

	Reader    string
	ReaderDir string

	Format           Format
	Compression      bool
	CompressionLevel int

	// OverlapFile is the ancillary overlap function file, if any.
	OverlapFile string

	FilterDay       bool
	CheckTimeliness bool

	// MaxAge and MaxFuture bound the newest time stamp around the wall
	// clock. Both default to DefaultMaxOffset; an explicit max_age of 0
	// disables the age check.
	MaxAge    time.Duration
	MaxFuture time.Duration

	// ReaderConf holds the reader_conf options, passed to the reader
	// without interpretation.
	ReaderConf map[string]string

	Global   []Attr
	Sections []*Section
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, raw2l1.Errorf(raw2l1.ErrConfigRead, "reading configuration %s: %v", path, err)
	}
	c, err := parse(f)
	if err != nil {
		return nil, err
	}
	c.Path = path
	return c, nil
}

// Parse reads and validates a configuration held in memory.
func Parse(b []byte) (*Config, error) {
	f, err := ini.Load(b)
	if err != nil {
		return nil, raw2l1.Errorf(raw2l1.ErrConfigRead, "parsing configuration: %v", err)
	}
	return parse(f)
}

func parse(f *ini.File) (*Config, error) {
	c := &Config{
		Format:           NetCDF4,
		CompressionLevel: DefaultCompressionLevel,
		MaxAge:           DefaultMaxOffset,
		MaxFuture:        DefaultMaxOffset,
		ReaderConf:       make(map[string]string),
	}
	cs, err := f.GetSection(ConfSection)
	if err != nil {
		return nil, raw2l1.Errorf(raw2l1.ErrConfigMissing, "section [%s] is missing", ConfSection)
	}
	if err := c.parseConf(cs); err != nil {
		return nil, err
	}
	for _, s := range f.Sections() {
		switch s.Name() {
		case DefaultSection, ConfSection:
		case ReaderSection:
			for _, k := range s.Keys() {
				c.ReaderConf[k.Name()] = k.Value()
			}
		case GlobalSection:
			for _, k := range s.Keys() {
				c.Global = append(c.Global, Attr{Name: k.Name(), Value: k.Value()})
			}
		default:
			sec, err := parseSection(s)
			if err != nil {
				return nil, err
			}
			c.Sections = append(c.Sections, sec)
		}
	}
	return c, c.check()
}

func (c *Config) parseConf(s *ini.Section) error {
	if !s.HasKey("reader") || strings.TrimSpace(s.Key("reader").Value()) == "" {
		return raw2l1.Errorf(raw2l1.ErrConfigMissing, "option reader is missing from section [%s]", ConfSection)
	}
	c.Reader = strings.ToLower(strings.TrimSpace(s.Key("reader").Value()))
	c.ReaderDir = s.Key("reader_dir").Value()
	c.OverlapFile = s.Key("overlap_file").Value()

	if s.HasKey("netcdf_format") {
		c.Format = Format(strings.ToUpper(strings.TrimSpace(s.Key("netcdf_format").Value())))
		switch c.Format {
		case Classic, Offset64, NetCDF4:
		default:
			return raw2l1.Errorf(raw2l1.ErrConfigValue, "netcdf_format %q is not one of %s, %s, %s",
				s.Key("netcdf_format").Value(), Classic, Offset64, NetCDF4)
		}
	}
	var err error
	for _, o := range []struct {
		key string
		dst *bool
	}{
		{"netcdf4_compression", &c.Compression},
		{"filter_day", &c.FilterDay},
		{"check_timeliness", &c.CheckTimeliness},
	} {
		if !s.HasKey(o.key) {
			continue
		}
		if *o.dst, err = cast.ToBoolE(strings.TrimSpace(s.Key(o.key).Value())); err != nil {
			return raw2l1.Errorf(raw2l1.ErrConfigValue, "option %s: %v", o.key, err)
		}
	}
	if s.HasKey("netcdf4_compression_level") {
		v := s.Key("netcdf4_compression_level").Value()
		if c.CompressionLevel, err = cast.ToIntE(strings.TrimSpace(v)); err != nil ||
			c.CompressionLevel < 1 || c.CompressionLevel > 9 {
			return raw2l1.Errorf(raw2l1.ErrCompression, "netcdf4_compression_level %q must be an integer from 1 to 9", v)
		}
	}
	for _, o := range []struct {
		key string
		dst *time.Duration
	}{
		{"max_age", &c.MaxAge},
		{"max_future", &c.MaxFuture},
	} {
		if !s.HasKey(o.key) {
			continue
		}
		if *o.dst, err = ParseDuration(s.Key(o.key).Value()); err != nil {
			return raw2l1.Errorf(raw2l1.ErrConfigValue, "option %s: %v", o.key, err)
		}
	}
	return nil
}

// ParseDuration parses a duration given either with a unit ("90m") or as
// a plain number of seconds.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if f, err := cast.ToFloat64E(s); err == nil {
		return time.Duration(f * float64(time.Second)), nil
	}
	d, err := cast.ToDurationE(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func parseSection(s *ini.Section) (*Section, error) {
	sec := &Section{Name: s.Name()}
	for _, k := range s.Keys() {
		v := strings.TrimSpace(k.Value())
		switch k.Name() {
		case DimOption:
			sec.Dims = splitList(v)
		case TypeOption:
			t, err := ParseType(v)
			if err != nil {
				return nil, raw2l1.Errorf(raw2l1.ErrConfigValue, "section [%s]: %v", s.Name(), err)
			}
			sec.Type = t
		case ValueOption:
			sec.Value = v
		case SizeOption:
			sec.Size = v
		default:
			sec.Attrs = append(sec.Attrs, Attr{Name: k.Name(), Value: k.Value()})
		}
	}
	return sec, nil
}

func splitList(v string) []string {
	var out []string
	for _, f := range strings.Split(v, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// check verifies that every section fits the dimension/variable model.
func (c *Config) check() error {
	dims := make(map[string]*Section)
	for _, s := range c.Sections {
		if s.IsDimension() {
			dims[s.Name] = s
		}
	}
	for _, s := range c.Sections {
		if !s.IsVariable() && !s.IsDimension() {
			return raw2l1.Errorf(raw2l1.ErrConfigSection,
				"section [%s] has no type and does not declare a dimension", s.Name)
		}
		if s.IsVariable() && s.Value == "" {
			return raw2l1.Errorf(raw2l1.ErrConfigMissing, "variable [%s] has no value option", s.Name)
		}
		for i, d := range s.Dims {
			ds, ok := dims[d]
			if !ok {
				return raw2l1.Errorf(raw2l1.ErrConfigSection, "variable [%s] uses undeclared dimension %q", s.Name, d)
			}
			if ds.Type == Time && i != 0 {
				return raw2l1.Errorf(raw2l1.ErrConfigSection,
					"variable [%s]: unlimited dimension %q must come first", s.Name, d)
			}
		}
	}
	n := 0
	for _, s := range dims {
		if s.Type == Time {
			n++
		}
	}
	if n > 1 {
		return raw2l1.Errorf(raw2l1.ErrConfigSection, "%d dimensions are declared with type %s; at most one is allowed", n, Time)
	}
	return nil
}

// Variables returns the variable sections, in file order.
func (c *Config) Variables() []*Section {
	var out []*Section
	for _, s := range c.Sections {
		if s.IsVariable() {
			out = append(out, s)
		}
	}
	return out
}

// Dimensions returns the dimension sections, in file order.
func (c *Config) Dimensions() []*Section {
	var out []*Section
	for _, s := range c.Sections {
		if s.IsDimension() {
			out = append(out, s)
		}
	}
	return out
}
