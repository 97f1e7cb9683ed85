// Copyright 2025 Dominik Schlosser
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
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// maxNestedLevels bounds how deep a credential's CBOR tree may nest. Input
// is untrusted, and both the decoder and Flatten recurse per level.
const maxNestedLevels = 256

const (
	majorArray = 4
	majorMap   = 5
	majorTag   = 6

	breakByte = 0xff
)

var cborDecMode cbor.DecMode

func init() {
	var err error
	cborDecMode, err = cbor.DecOptions{
		MaxNestedLevels: maxNestedLevels,
	}.DecMode()
	if err != nil {
		panic("mdoc: CBOR decoder initialization failed: " + err.Error())
	}
}

// ParseCBOR decodes a single CBOR data item into a Value.
func ParseCBOR(data []byte) (Value, error) {
	var v Value
	if err := cborDecMode.Unmarshal(data, &v); err != nil {
		return Value{}, err
	}
	return v, nil
}

// parseLenient is the one place a CBOR parse error is swallowed: it yields
// Null so the missing structure is reported by field extraction instead.
func parseLenient(data []byte) Value {
	v, err := ParseCBOR(data)
	if err != nil {
		return Null()
	}
	return v
}

// unmarshalEntries decodes a CBOR map item pair by pair so the entries keep
// their wire order. data has already passed the decoder's well-formedness
// check when this runs from UnmarshalCBOR.
func unmarshalEntries(data []byte) ([]Entry, error) {
	count, rest, indefinite, err := containerHeader(data)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if !indefinite {
		// Each pair needs at least two bytes.
		entries = make([]Entry, 0, min(count, uint64(len(rest)/2)))
	}

	for i := uint64(0); indefinite || i < count; i++ {
		if indefinite {
			if len(rest) == 0 {
				return nil, io.ErrUnexpectedEOF
			}
			if rest[0] == breakByte {
				break
			}
		}

		var e Entry
		if rest, err = cborDecMode.UnmarshalFirst(rest, &e.Key); err != nil {
			return nil, fmt.Errorf("decoding map key %d: %w", i, err)
		}
		if rest, err = cborDecMode.UnmarshalFirst(rest, &e.Value); err != nil {
			return nil, fmt.Errorf("decoding map value %d: %w", i, err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// containerHeader reads the length argument of an array or map head.
func containerHeader(data []byte) (count uint64, rest []byte, indefinite bool, err error) {
	if len(data) == 0 {
		return 0, nil, false, io.ErrUnexpectedEOF
	}

	info := data[0] & 0x1f
	switch {
	case info < 24:
		return uint64(info), data[1:], false, nil
	case info == 31:
		return 0, data[1:], true, nil
	case info > 27:
		return 0, nil, false, fmt.Errorf("reserved additional info %d", info)
	}

	size := 1 << (info - 24) // 1, 2, 4 or 8 bytes
	if len(data) < 1+size {
		return 0, nil, false, io.ErrUnexpectedEOF
	}
	arg := data[1 : 1+size]
	switch size {
	case 1:
		count = uint64(arg[0])
	case 2:
		count = uint64(binary.BigEndian.Uint16(arg))
	case 4:
		count = uint64(binary.BigEndian.Uint32(arg))
	default:
		count = binary.BigEndian.Uint64(arg)
	}
	return count, data[1+size:], false, nil
}
