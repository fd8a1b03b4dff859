package config

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the type held by a Value.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindInt
	KindFloat
	KindBool
	KindDuration
	KindList
)

// Value is a single immutable setting. Lists are copied on construction and on read.
type Value struct {
	kind Kind
	text string
	num  int64
	flt  float64
	flag bool
	list []string
}

// StringValue wraps text.
func StringValue(s string) Value { return Value{kind: KindString, text: s} }

// IntValue wraps an integer.
func IntValue(n int) Value { return Value{kind: KindInt, num: int64(n)} }

// FloatValue wraps a float.
func FloatValue(f float64) Value { return Value{kind: KindFloat, flt: f} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, flag: b} }

// DurationValue wraps a duration.
func DurationValue(d time.Duration) Value { return Value{kind: KindDuration, num: int64(d)} }

// ListValue copies items; a nil or empty input yields an empty list.
func ListValue(items ...string) Value {
	list := make([]string, len(items))
	copy(list, items)
	return Value{kind: KindList, list: list}
}

func (v Value) Kind() Kind { return v.kind }

// List returns a copy of the list held by v, or nil for other kinds.
func (v Value) List() []string {
	if v.kind != KindList {
		return nil
	}
	return slices.Clone(v.list)
}

// Interface returns the Go value held by v.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.text
	case KindInt:
		return v.num
	case KindFloat:
		return v.flt
	case KindBool:
		return v.flag
	case KindDuration:
		return time.Duration(v.num)
	case KindList:
		return v.List()
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.text
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.flt, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindDuration:
		return time.Duration(v.num).String()
	case KindList:
		return strings.Join(v.list, ",")
	default:
		return ""
	}
}

func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	if v.kind == KindList {
		return slices.Equal(v.list, other.list)
	}
	return v.text == other.text && v.num == other.num && v.flt == other.flt && v.flag == other.flag
}

// MarshalYAML renders durations as strings and lists as sequences.
func (v Value) MarshalYAML() (any, error) {
	return v.exported(), nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.exported())
}

func (v Value) exported() any {
	switch v.kind {
	case KindDuration:
		return v.String()
	case KindList:
		if len(v.list) == 0 {
			return []string{}
		}
		return v.List()
	default:
		return v.Interface()
	}
}
