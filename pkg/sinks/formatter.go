package sinks

import (
	"bytes"
	"encoding/json"
	"fmt"

	"logpipe/pkg/record"
	"logpipe/pkg/writer"
)

// DefaultFormatter is a minimal JSON-lines formatter used whenever a sink
// is constructed without an explicit one. The Formatter interface only
// requires a pure record -> bytes mapping, so this is a reference
// implementation, not a mandated wire format.
type DefaultFormatter struct{}

// Format renders the record as one JSON object per line. Fields are
// encoded by hand rather than through a map[string]interface{}, because
// encoding/json sorts map keys alphabetically on Marshal: that would
// silently break insertion-order preservation in formatter output.
func (DefaultFormatter) Format(r record.Record) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	writeJSONField(&buf, "level", r.Level.String(), true)
	writeJSONField(&buf, "message", r.Message, false)
	if r.Category != "" {
		writeJSONField(&buf, "category", r.Category, false)
	}
	if len(r.Fields) > 0 {
		buf.WriteString(`,"fields":{`)
		for i, f := range r.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Key)
			if err != nil {
				return []byte(`{"error":"format_error"}`)
			}
			buf.Write(key)
			buf.WriteByte(':')
			val, err := json.Marshal(fieldValue(f))
			if err != nil {
				return []byte(`{"error":"format_error"}`)
			}
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

func writeJSONField(buf *bytes.Buffer, key, value string, first bool) {
	if !first {
		buf.WriteByte(',')
	}
	enc, _ := json.Marshal(value)
	fmt.Fprintf(buf, "%q:%s", key, enc)
}

var _ writer.Formatter = DefaultFormatter{}

// FieldsToBytes renders fields in insertion order as space-separated
// "key=value" pairs for plain-text output.
func FieldsToBytes(fields record.Fields) []byte {
	var buf bytes.Buffer
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "%s=%v", f.Key, fieldValue(f))
	}
	return buf.Bytes()
}

func fieldValue(f record.Field) interface{} {
	switch f.Kind {
	case record.FieldString:
		return f.Str
	case record.FieldInt64:
		return f.Int
	case record.FieldFloat64:
		return f.Float
	case record.FieldBool:
		return f.Bool
	default:
		return nil
	}
}
