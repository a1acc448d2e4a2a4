// Package critical implements the hybrid critical writer (C12): a
// severity-split router that sends sub-threshold records down the normal
// (usually async) path and at-or-above-threshold records down a
// synchronous write-ahead-logged path. Once Write returns success for a
// critical record, it is recoverable from either the main sink or the WAL.
//
// The WAL framing adapts the length-prefixed, checksummed disk buffer in
// _examples/mdzesseis-log_capturer_go/pkg/buffer/disk_buffer.go to a
// fixed binary frame layout tailored to record.Record.
package critical

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"logpipe/pkg/errors"
	"logpipe/pkg/record"
)

// WAL is the append-only framed log used by the critical writer. A sidecar
// "<path>.hwm" file tracks how far the log has been durably applied to the
// main sink; WAL bytes before the watermark are never replayed again.
type WAL struct {
	mu       sync.Mutex
	path     string
	hwmPath  string
	file     *os.File
	watermark int64
}

// OpenWAL opens (creating if necessary) the WAL file at path and its .hwm
// sidecar.
func OpenWAL(path string) (*WAL, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.IoError("wal", "open", err.Error()).Wrap(err)
	}
	w := &WAL{path: path, hwmPath: path + ".hwm", file: f}
	w.watermark, _ = readWatermark(w.hwmPath)
	return w, nil
}

func readWatermark(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil || len(data) < 8 {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(data)), nil
}

// Append serializes and appends one record frame, then fsyncs the WAL
// file. Frame layout (little-endian throughout):
//
//	[u32 length][u64 timestamp_ns][u8 level][u32 msg_len][msg][u32 fields_len][fields]
//
// length counts every byte after the length field itself.
func (w *WAL) Append(r record.Record) error {
	frame, err := EncodeFrame(r)
	if err != nil {
		return errors.IoError("wal", "append", err.Error()).Wrap(err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.file.Write(frame); err != nil {
		return errors.IoError("wal", "append", err.Error()).Wrap(err)
	}
	if err := w.file.Sync(); err != nil {
		return errors.IoError("wal", "append", err.Error()).Wrap(err)
	}
	return nil
}

// Advance records that the WAL contents up to the current file size have
// been durably applied to the main sink, by persisting a new watermark to
// the .hwm sidecar. Rather than physically truncating the file (which
// would race a concurrent reader during crash recovery), the watermark is
// bumped so recovery never replays an already-applied record.
func (w *WAL) Advance() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	info, err := w.file.Stat()
	if err != nil {
		return errors.IoError("wal", "advance", err.Error()).Wrap(err)
	}
	w.watermark = info.Size()
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(w.watermark))
	if err := os.WriteFile(w.hwmPath, buf, 0o644); err != nil {
		return errors.IoError("wal", "advance", err.Error()).Wrap(err)
	}
	return nil
}

// Close releases the underlying file handle.
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// Pending decodes every frame at or beyond the persisted watermark, for
// crash recovery: these are records that survived to the WAL but whose
// delivery to the main sink was never confirmed.
func (w *WAL) Pending() ([]record.Record, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, errors.IoError("wal", "pending", err.Error()).Wrap(err)
	}
	if int64(len(data)) <= w.watermark {
		return nil, nil
	}
	return DecodeFrames(data[w.watermark:])
}

// EncodeFrame serializes one record into the wire frame described above.
func EncodeFrame(r record.Record) ([]byte, error) {
	fieldBytes, err := encodeFields(r.Fields)
	if err != nil {
		return nil, err
	}
	msg := []byte(r.Message)

	body := make([]byte, 0, 8+1+4+len(msg)+4+len(fieldBytes))
	var tmp8 [8]byte
	binary.LittleEndian.PutUint64(tmp8[:], uint64(r.Timestamp.UnixNano()))
	body = append(body, tmp8[:]...)
	body = append(body, byte(r.Level))
	var tmp4 [4]byte
	binary.LittleEndian.PutUint32(tmp4[:], uint32(len(msg)))
	body = append(body, tmp4[:]...)
	body = append(body, msg...)
	binary.LittleEndian.PutUint32(tmp4[:], uint32(len(fieldBytes)))
	body = append(body, tmp4[:]...)
	body = append(body, fieldBytes...)

	frame := make([]byte, 4+len(body))
	binary.LittleEndian.PutUint32(frame[:4], uint32(len(body)))
	copy(frame[4:], body)
	return frame, nil
}

// DecodeFrames decodes as many complete frames as are present in data,
// stopping silently at the first truncated/corrupt frame (the tail of a
// WAL written right before a crash may be a partial frame).
func DecodeFrames(data []byte) ([]record.Record, error) {
	var out []record.Record
	offset := 0
	for offset+4 <= len(data) {
		length := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		if length < 8+1+4+4 || offset+4+length > len(data) {
			break
		}
		body := data[offset+4 : offset+4+length]
		r, err := decodeFrameBody(body)
		if err != nil {
			break
		}
		out = append(out, r)
		offset += 4 + length
	}
	return out, nil
}

func decodeFrameBody(body []byte) (record.Record, error) {
	if len(body) < 8+1+4 {
		return record.Record{}, fmt.Errorf("critical: short frame body")
	}
	tsNs := int64(binary.LittleEndian.Uint64(body[0:8]))
	level := record.Level(body[8])
	msgLen := int(binary.LittleEndian.Uint32(body[9:13]))
	offset := 13
	if offset+msgLen > len(body) {
		return record.Record{}, fmt.Errorf("critical: truncated message")
	}
	msg := string(body[offset : offset+msgLen])
	offset += msgLen
	if offset+4 > len(body) {
		return record.Record{}, fmt.Errorf("critical: truncated fields length")
	}
	fieldsLen := int(binary.LittleEndian.Uint32(body[offset : offset+4]))
	offset += 4
	if offset+fieldsLen > len(body) {
		return record.Record{}, fmt.Errorf("critical: truncated fields")
	}
	fields, err := decodeFields(body[offset : offset+fieldsLen])
	if err != nil {
		return record.Record{}, err
	}

	r := record.New(level, msg, unixNanoTime(tsNs))
	r.Fields = fields
	return r, nil
}
