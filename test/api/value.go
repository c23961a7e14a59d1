/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Kind discriminates the shape of a Value.
type Kind int

const (
	// KindNull is an empty response body, or a JSON null inside a document.
	KindNull Kind = iota
	KindObject
	KindArray
	KindString
	KindNumber
	KindBool
	// KindText is a body that is not a JSON document.
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindText:
		return "text"
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a response payload of unknown shape. Callers check Kind, or use
// Get and the typed accessors, before relying on a particular structure.
type Value struct {
	kind   Kind
	exists bool
	raw    string
	result gjson.Result
}

// ParseValue classifies a raw response body. An empty body is null, a valid
// JSON document is parsed, anything else is kept verbatim as text. A bare
// "null" document is kept as text so that null always means "no body".
func ParseValue(body []byte) Value {
	if len(body) == 0 {
		return Value{kind: KindNull}
	}

	if !gjson.ValidBytes(body) {
		return Value{kind: KindText, exists: true, raw: string(body)}
	}

	result := gjson.ParseBytes(body)
	if result.Type == gjson.Null {
		return Value{kind: KindText, exists: true, raw: string(body)}
	}

	return fromResult(result)
}

func fromResult(result gjson.Result) Value {
	v := Value{
		exists: result.Exists(),
		raw:    result.Raw,
		result: result,
	}

	switch result.Type {
	case gjson.Null:
		v.kind = KindNull
	case gjson.False, gjson.True:
		v.kind = KindBool
	case gjson.Number:
		v.kind = KindNumber
	case gjson.String:
		v.kind = KindString
	case gjson.JSON:
		if result.IsArray() {
			v.kind = KindArray
		} else {
			v.kind = KindObject
		}
	}

	return v
}

func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether there is no value at all.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Exists reports whether the value is present. Values returned by Get for a
// missing path do not exist.
func (v Value) Exists() bool {
	return v.exists
}

// IsJSON reports whether the value came from a JSON document.
func (v Value) IsJSON() bool {
	return v.exists && v.kind != KindText
}

// Raw returns the raw text of the value.
func (v Value) Raw() string {
	return v.raw
}

// Get looks up a gjson path, e.g. "data.0._id". Paths never match inside
// text or null values.
func (v Value) Get(path string) Value {
	if !v.IsJSON() {
		return Value{kind: KindNull}
	}

	return fromResult(v.result.Get(path))
}

// First returns the first path that exists, or a missing value.
func (v Value) First(paths ...string) Value {
	for _, path := range paths {
		if found := v.Get(path); found.Exists() && !found.IsNull() {
			return found
		}
	}

	return Value{kind: KindNull}
}

// Array returns the elements of an array, or nil for any other kind.
func (v Value) Array() []Value {
	if v.kind != KindArray {
		return nil
	}

	elements := v.result.Array()
	out := make([]Value, len(elements))

	for i := range elements {
		out[i] = fromResult(elements[i])
	}

	return out
}

// Items normalizes a list-or-object value into a slice: arrays are returned
// as is, objects as a single element, everything else as nothing.
func (v Value) Items() []Value {
	switch v.kind {
	case KindArray:
		return v.Array()
	case KindObject:
		return []Value{v}
	}

	return nil
}

// String returns strings unquoted and every other kind as its raw text.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindText:
		return v.raw
	}

	return v.result.String()
}

func (v Value) Int() int64 {
	return v.result.Int()
}

func (v Value) Float() float64 {
	return v.result.Float()
}

func (v Value) Bool() bool {
	return v.result.Bool()
}

// Interface converts the value to plain Go types as encoding/json would.
func (v Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindText:
		return v.raw
	}

	var out any
	if err := json.Unmarshal([]byte(v.raw), &out); err != nil {
		return v.result.Value()
	}

	return out
}

// Decode unmarshals a JSON value into out.
func (v Value) Decode(out any) error {
	if !v.IsJSON() {
		return fmt.Errorf("cannot decode %s value", v.kind)
	}

	if err := json.Unmarshal([]byte(v.raw), out); err != nil {
		return fmt.Errorf("decoding %s value: %w", v.kind, err)
	}

	return nil
}

// ID returns the resource identifier, preferring "_id" over "id".
func (v Value) ID() string {
	return v.First("_id", "id").String()
}
