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

package conf

import (
	"fmt"
	"strings"
)

// Type is the declared type of a variable.
type Type string

// Variable types. Time variables are encoded from time stamps using their
// units and calendar attributes and stored as float64.
const (
	Time    Type = "time"
	Int8    Type = "int8"
	UInt8   Type = "uint8"
	Int16   Type = "int16"
	Int32   Type = "int32"
	Int64   Type = "int64"
	Float32 Type = "float32"
	Float64 Type = "float64"
	String  Type = "string"
)

var typeNames = map[string]Type{
	"time":    Time,
	"int8":    Int8,
	"byte":    Int8,
	"i1":      Int8,
	"b":       Int8,
	"uint8":   UInt8,
	"ubyte":   UInt8,
	"u1":      UInt8,
	"int16":   Int16,
	"short":   Int16,
	"i2":      Int16,
	"h":       Int16,
	"int32":   Int32,
	"int":     Int32,
	"i4":      Int32,
	"i":       Int32,
	"int64":   Int64,
	"long":    Int64,
	"i8":      Int64,
	"float32": Float32,
	"float":   Float32,
	"f4":      Float32,
	"f":       Float32,
	"float64": Float64,
	"double":  Float64,
	"f8":      Float64,
	"d":       Float64,
	"string":  String,
	"str":     String,
	"char":    String,
	"s":       String,
}

// ParseType returns the type named by s. Common netCDF and numpy-style
// aliases are accepted.
func ParseType(s string) (Type, error) {
	t, ok := typeNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown type %q", s)
	}
	return t, nil
}

// IsInteger reports whether t is an integer type.
func (t Type) IsInteger() bool {
	switch t {
	case Int8, UInt8, Int16, Int32, Int64:
		return true
	}
	return false
}
