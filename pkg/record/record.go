// Package record implements the central value type of the pipeline: an
// immutable log event plus the ordered field map attached to it.
package record

import (
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Level is the total-ordered severity of a record. Off is a threshold-only
// sentinel and must never be attached to a record.
type Level uint8

const (
	Trace Level = iota
	Debug
	Info
	Warning
	Error
	Critical
	Off
)

var levelNames = [...]string{"trace", "debug", "info", "warning", "error", "critical", "off"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a wire-format name back into a Level. Unknown names
// fall back to Info, matching the permissive config parsing of
// _examples/mdzesseis-log_capturer_go.
func ParseLevel(s string) Level {
	for i, name := range levelNames {
		if name == s {
			return Level(i)
		}
	}
	return Info
}

// SourceLocation is the optional (file, line, function) triple captured at
// the call site.
type SourceLocation struct {
	File     string
	Line     int
	Function string
}

// TraceContext correlates a record with a distributed trace. TraceID/SpanID
// use OpenTelemetry's wire-compatible identifier types; no exporter is
// pulled in, only the value types.
type TraceContext struct {
	TraceID       trace.TraceID
	SpanID        trace.SpanID
	CorrelationID string
}

// FieldKind enumerates the four round-trippable structured field value
// types the pipeline must preserve.
type FieldKind uint8

const (
	FieldString FieldKind = iota
	FieldInt64
	FieldFloat64
	FieldBool
)

// Field is one ordered key/value pair. Only one of the typed members is
// valid, selected by Kind.
type Field struct {
	Key   string
	Kind  FieldKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

func String(key, value string) Field   { return Field{Key: key, Kind: FieldString, Str: value} }
func Int64(key string, value int64) Field { return Field{Key: key, Kind: FieldInt64, Int: value} }
func Float64(key string, value float64) Field {
	return Field{Key: key, Kind: FieldFloat64, Float: value}
}
func Bool(key string, value bool) Field { return Field{Key: key, Kind: FieldBool, Bool: value} }

// Fields is an ordered, insertion-order-preserving list of Field values.
// Keys are expected to be unique within a record; callers that merge
// multiple sources are responsible for last-writer-wins de-duplication
// (see pkg/logcontext for the merge used at the front door).
type Fields []Field

// Clone returns a shallow copy; Field values are immutable scalars so this
// is also a deep copy.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	copy(out, f)
	return out
}

// Record is the immutable central value type. Once constructed and handed
// to a writer it is never mutated; decorators that need to change a record
// (e.g. the formatted decorator) produce a derived copy via With*.
type Record struct {
	Level        Level
	Message      string
	Timestamp    time.Time
	Source       *SourceLocation
	ThreadID     string
	Category     string
	Fields       Fields
	Trace        *TraceContext
}

// New constructs a record. Construction is infallible: oversized messages
// and nil optional fields are accepted as-is.
func New(level Level, message string, ts time.Time) Record {
	return Record{Level: level, Message: message, Timestamp: ts}
}

// WithMessage returns a derived record with a replaced message; all other
// fields are preserved by value/reference as appropriate. Used by the
// formatted decorator, which replaces Message with formatter output.
func (r Record) WithMessage(message string) Record {
	derived := r
	derived.Message = message
	return derived
}

// WithFields returns a derived record whose Fields is the concatenation of
// the receiver's fields with extra, preserving insertion order.
func (r Record) WithFields(extra Fields) Record {
	if len(extra) == 0 {
		return r
	}
	derived := r
	merged := make(Fields, 0, len(r.Fields)+len(extra))
	merged = append(merged, r.Fields...)
	merged = append(merged, extra...)
	derived.Fields = merged
	return derived
}

// Builder accumulates fields before emitting a single record.
type Builder struct {
	level   Level
	message string
	ts      time.Time
	source  *SourceLocation
	category string
	fields  Fields
	trace   *TraceContext
	thread  string
}

// NewBuilder starts a record builder for the given level/message/timestamp.
func NewBuilder(level Level, message string, ts time.Time) *Builder {
	return &Builder{level: level, message: message, ts: ts}
}

func (b *Builder) WithSource(loc SourceLocation) *Builder {
	b.source = &loc
	return b
}

func (b *Builder) WithCategory(category string) *Builder {
	b.category = category
	return b
}

func (b *Builder) WithThreadID(id string) *Builder {
	b.thread = id
	return b
}

func (b *Builder) WithTrace(tc TraceContext) *Builder {
	b.trace = &tc
	return b
}

func (b *Builder) AddField(f Field) *Builder {
	b.fields = append(b.fields, f)
	return b
}

// Emit consumes the builder and returns the finished record.
func (b *Builder) Emit() Record {
	return Record{
		Level:     b.level,
		Message:   b.message,
		Timestamp: b.ts,
		Source:    b.source,
		ThreadID:  b.thread,
		Category:  b.category,
		Fields:    b.fields,
		Trace:     b.trace,
	}
}
