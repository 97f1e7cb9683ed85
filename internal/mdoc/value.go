// Copyright 2026 Dominik Schlosser
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"

	"github.com/dominikschlosser/av-verifier/internal/format"
	"github.com/fxamacker/cbor/v2"
)

// Kind is the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindText
	KindBytes
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBytes:
		return "bytes"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a decoded CBOR data item. The zero Value is Null.
//
// Tags are unwrapped to their content; the outermost tag number is kept and
// available through Tag. Mappings keep the order their entries had on the
// wire.
type Value struct {
	kind    Kind
	boolean bool
	// number holds the display text of a Number; finite is false for NaN
	// and the infinities, which have no JSON form.
	number  string
	finite  bool
	text    string
	raw     []byte
	items   []Value
	entries []Entry
	tag     uint64
	tagged  bool
}

var (
	_ cbor.Unmarshaler = (*Value)(nil)
	_ json.Marshaler   = Value{}
)

// Entry is one key/value pair of a Mapping.
type Entry struct {
	Key   Value
	Value Value
}

func Null() Value { return Value{} }

func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

func Int(i int64) Value {
	return Value{kind: KindNumber, number: strconv.FormatInt(i, 10), finite: true}
}

func Uint(u uint64) Value {
	return Value{kind: KindNumber, number: strconv.FormatUint(u, 10), finite: true}
}

func Float(f float64) Value {
	return Value{kind: KindNumber, number: format.FormatJSNumber(f), finite: !math.IsNaN(f) && !math.IsInf(f, 0)}
}

func Text(s string) Value { return Value{kind: KindText, text: s} }

func Bytes(b []byte) Value { return Value{kind: KindBytes, raw: b} }

func Sequence(items ...Value) Value { return Value{kind: KindSequence, items: items} }

func Mapping(entries ...Entry) Value { return Value{kind: KindMapping, entries: entries} }

// Tagged returns v marked with a CBOR tag number.
func Tagged(number uint64, v Value) Value {
	v.tag = number
	v.tagged = true
	return v
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// Tag returns the CBOR tag number the value was wrapped in, if any.
func (v Value) Tag() (uint64, bool) { return v.tag, v.tagged }

func (v Value) AsText() (string, bool) {
	return v.text, v.kind == KindText
}

func (v Value) AsBytes() ([]byte, bool) {
	return v.raw, v.kind == KindBytes
}

func (v Value) AsBool() (bool, bool) {
	return v.boolean, v.kind == KindBool
}

// Items returns the elements of a Sequence, nil for other kinds.
func (v Value) Items() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.items
}

// Entries returns the entries of a Mapping in wire order, nil for other kinds.
func (v Value) Entries() []Entry {
	if v.kind != KindMapping {
		return nil
	}
	return v.entries
}

// Get looks up a text key in a Mapping. The first matching entry wins.
func (v Value) Get(key string) (Value, bool) {
	for _, e := range v.Entries() {
		if k, ok := e.Key.AsText(); ok && k == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// String returns the display text of a scalar: "" for Null, base64url for
// Bytes. Sequences and Mappings render as compact JSON.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindNumber:
		return v.number
	case KindText:
		return v.text
	case KindBytes:
		return format.EncodeBase64URL(v.raw)
	default:
		b, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// MarshalJSON renders v as compact JSON without HTML escaping. Bytes become
// base64url strings, non-finite numbers null, and mapping keys their display
// text.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case KindNumber:
		if !v.finite {
			buf.WriteString("null")
			return nil
		}
		buf.WriteString(v.number)
	case KindText:
		return writeJSONString(buf, v.text)
	case KindBytes:
		return writeJSONString(buf, format.EncodeBase64URL(v.raw))
	case KindSequence:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMapping:
		buf.WriteByte('{')
		for i, e := range v.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, e.Key.String()); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := e.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown value kind %d", int(v.kind))
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	format.QuoteJSString(buf, s)
	return nil
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (v *Value) UnmarshalCBOR(data []byte) error {
	if len(data) == 0 {
		return io.ErrUnexpectedEOF
	}

	switch data[0] >> 5 {
	case majorArray:
		var items []Value
		if err := cborDecMode.Unmarshal(data, &items); err != nil {
			return err
		}
		*v = Sequence(items...)
		return nil

	case majorMap:
		entries, err := unmarshalEntries(data)
		if err != nil {
			return err
		}
		*v = Mapping(entries...)
		return nil

	case majorTag:
		return v.unmarshalTag(data)
	}

	var scalar any
	if err := cborDecMode.Unmarshal(data, &scalar); err != nil {
		return err
	}
	decoded, err := scalarValue(scalar)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func (v *Value) unmarshalTag(data []byte) error {
	var raw cbor.RawTag
	if err := cborDecMode.Unmarshal(data, &raw); err != nil {
		return err
	}

	var inner Value
	switch raw.Number {
	case 2, 3:
		// Bignums.
		var n big.Int
		if err := cborDecMode.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decoding bignum: %w", err)
		}
		inner = Value{kind: KindNumber, number: n.String(), finite: true}
	default:
		if err := cborDecMode.Unmarshal(raw.Content, &inner); err != nil {
			return fmt.Errorf("decoding tag %d content: %w", raw.Number, err)
		}
	}

	*v = Tagged(raw.Number, inner)
	return nil
}

func scalarValue(x any) (Value, error) {
	switch val := x.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(val), nil
	case uint64:
		return Uint(val), nil
	case int64:
		return Int(val), nil
	case big.Int:
		return Value{kind: KindNumber, number: val.String(), finite: true}, nil
	case *big.Int:
		return Value{kind: KindNumber, number: val.String(), finite: true}, nil
	case float64:
		return Float(val), nil
	case float32:
		return Float(float64(val)), nil
	case string:
		return Text(val), nil
	case []byte:
		return Bytes(val), nil
	case cbor.SimpleValue:
		return Uint(uint64(val)), nil
	default:
		return Value{}, fmt.Errorf("unsupported CBOR item %T", x)
	}
}
