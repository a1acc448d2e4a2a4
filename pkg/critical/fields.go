package critical

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"logpipe/pkg/record"
)

func unixNanoTime(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}

// encodeFields serializes an ordered field list as a flat byte run:
// [u8 kind][u16 keylen][key][value], repeated. Value encoding is
// kind-dependent: strings are u32-length-prefixed, int64/float64 are 8
// fixed bytes, bool is 1 byte.
func encodeFields(fields record.Fields) ([]byte, error) {
	var out []byte
	for _, f := range fields {
		var keyLen [2]byte
		binary.LittleEndian.PutUint16(keyLen[:], uint16(len(f.Key)))
		out = append(out, byte(f.Kind))
		out = append(out, keyLen[:]...)
		out = append(out, f.Key...)

		switch f.Kind {
		case record.FieldString:
			var l [4]byte
			binary.LittleEndian.PutUint32(l[:], uint32(len(f.Str)))
			out = append(out, l[:]...)
			out = append(out, f.Str...)
		case record.FieldInt64:
			var v [8]byte
			binary.LittleEndian.PutUint64(v[:], uint64(f.Int))
			out = append(out, v[:]...)
		case record.FieldFloat64:
			var v [8]byte
			binary.LittleEndian.PutUint64(v[:], math.Float64bits(f.Float))
			out = append(out, v[:]...)
		case record.FieldBool:
			if f.Bool {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		default:
			return nil, fmt.Errorf("critical: unknown field kind %d", f.Kind)
		}
	}
	return out, nil
}

func decodeFields(data []byte) (record.Fields, error) {
	var fields record.Fields
	offset := 0
	for offset < len(data) {
		if offset+3 > len(data) {
			return nil, fmt.Errorf("critical: truncated field header")
		}
		kind := record.FieldKind(data[offset])
		keyLen := int(binary.LittleEndian.Uint16(data[offset+1 : offset+3]))
		offset += 3
		if offset+keyLen > len(data) {
			return nil, fmt.Errorf("critical: truncated field key")
		}
		key := string(data[offset : offset+keyLen])
		offset += keyLen

		switch kind {
		case record.FieldString:
			if offset+4 > len(data) {
				return nil, fmt.Errorf("critical: truncated string length")
			}
			l := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
			offset += 4
			if offset+l > len(data) {
				return nil, fmt.Errorf("critical: truncated string value")
			}
			fields = append(fields, record.String(key, string(data[offset:offset+l])))
			offset += l
		case record.FieldInt64:
			if offset+8 > len(data) {
				return nil, fmt.Errorf("critical: truncated int64 value")
			}
			v := int64(binary.LittleEndian.Uint64(data[offset : offset+8]))
			fields = append(fields, record.Int64(key, v))
			offset += 8
		case record.FieldFloat64:
			if offset+8 > len(data) {
				return nil, fmt.Errorf("critical: truncated float64 value")
			}
			v := math.Float64frombits(binary.LittleEndian.Uint64(data[offset : offset+8]))
			fields = append(fields, record.Float64(key, v))
			offset += 8
		case record.FieldBool:
			if offset+1 > len(data) {
				return nil, fmt.Errorf("critical: truncated bool value")
			}
			fields = append(fields, record.Bool(key, data[offset] != 0))
			offset++
		default:
			return nil, fmt.Errorf("critical: unknown field kind %d", kind)
		}
	}
	return fields, nil
}
