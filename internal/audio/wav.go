// Package audio reads and writes PCM WAV files for the soundtrack
// assembler. It implements just the RIFF framing the sound-effect and
// background-music files use; anything fancier (compression, float samples)
// is rejected up front.
package audio

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Params describes a PCM stream: the fields of a WAV fmt chunk plus the
// total frame count. One frame is one sample per channel.
type Params struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
	NumFrames     int
}

// FrameSize returns the byte size of one frame.
func (p Params) FrameSize() int {
	return p.Channels * p.BitsPerSample / 8
}

// Duration returns the stream length in seconds.
func (p Params) Duration() float64 {
	if p.SampleRate == 0 {
		return 0
	}
	return float64(p.NumFrames) / float64(p.SampleRate)
}

// Reader holds a fully decoded WAV file and a read cursor, mirroring the
// rewind/readframes access pattern the assembler needs. Effect files are
// small enough to keep in memory.
type Reader struct {
	params Params
	data   []byte
	pos    int // frame offset of the cursor
}

// ReadFile decodes a PCM WAV file into memory.
func ReadFile(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("audio: cannot read %s: %w", path, err)
	}
	r, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("audio: %s: %w", path, err)
	}
	return r, nil
}

func decode(data []byte) (*Reader, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	var p Params
	var pcm []byte
	haveFmt := false

	// Walk the chunk list; only fmt and data matter
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			return nil, fmt.Errorf("truncated %q chunk", id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("short fmt chunk (%d bytes)", size)
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return nil, fmt.Errorf("unsupported audio format %d (PCM only)", format)
			}
			p.Channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			p.SampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			p.BitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			haveFmt = true
		case "data":
			pcm = data[body : body+size]
		}

		// Chunks are word-aligned
		off = body + size
		if size%2 == 1 {
			off++
		}
	}

	if !haveFmt {
		return nil, fmt.Errorf("missing fmt chunk")
	}
	if pcm == nil {
		return nil, fmt.Errorf("missing data chunk")
	}
	if p.FrameSize() == 0 {
		return nil, fmt.Errorf("zero frame size")
	}
	p.NumFrames = len(pcm) / p.FrameSize()

	return &Reader{params: p, data: pcm}, nil
}

// Params returns the stream parameters.
func (r *Reader) Params() Params {
	return r.params
}

// Rewind resets the cursor to the first frame.
func (r *Reader) Rewind() {
	r.pos = 0
}

// ReadFrames returns the next n frames and advances the cursor. Reading
// past the end returns the remaining frames, which may be empty.
func (r *Reader) ReadFrames(n int) []byte {
	if n < 0 {
		n = 0
	}
	fs := r.params.FrameSize()
	start := r.pos * fs
	end := (r.pos + n) * fs
	if end > len(r.data) {
		end = len(r.data)
	}
	if start > end {
		start = end
	}
	r.pos += (end - start) / fs
	return r.data[start:end]
}

// Writer streams PCM frames into a WAV file. The header is back-patched
// with the final sizes on Close.
type Writer struct {
	f      *os.File
	params Params
	frames int
}

// Create opens a WAV file for writing with the given parameters. The
// NumFrames field of params is ignored; the frame count is whatever gets
// written.
func Create(path string, params Params) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("audio: cannot create %s: %w", path, err)
	}
	w := &Writer{f: f, params: params}
	// Placeholder header; Write advances the offset so frames land after it
	hdr := w.header(0)
	if _, err := f.Write(hdr[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("audio: cannot write header of %s: %w", path, err)
	}
	return w, nil
}

func (w *Writer) header(dataSize int) [44]byte {
	var hdr [44]byte
	copy(hdr[0:], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:], uint32(36+dataSize))
	copy(hdr[8:], "WAVE")
	copy(hdr[12:], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:], 16)
	binary.LittleEndian.PutUint16(hdr[20:], 1) // PCM
	binary.LittleEndian.PutUint16(hdr[22:], uint16(w.params.Channels))
	binary.LittleEndian.PutUint32(hdr[24:], uint32(w.params.SampleRate))
	byteRate := w.params.SampleRate * w.params.FrameSize()
	binary.LittleEndian.PutUint32(hdr[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(hdr[32:], uint16(w.params.FrameSize()))
	binary.LittleEndian.PutUint16(hdr[34:], uint16(w.params.BitsPerSample))
	copy(hdr[36:], "data")
	binary.LittleEndian.PutUint32(hdr[40:], uint32(dataSize))
	return hdr
}

// WriteFrames appends raw PCM frames.
func (w *Writer) WriteFrames(b []byte) error {
	if len(b)%w.params.FrameSize() != 0 {
		return fmt.Errorf("audio: write of %d bytes is not frame aligned", len(b))
	}
	if _, err := w.f.Write(b); err != nil {
		return fmt.Errorf("audio: write failed: %w", err)
	}
	w.frames += len(b) / w.params.FrameSize()
	return nil
}

// Close back-patches the header sizes and closes the file.
func (w *Writer) Close() error {
	hdr := w.header(w.frames * w.params.FrameSize())
	if _, err := w.f.WriteAt(hdr[:], 0); err != nil {
		w.f.Close()
		return fmt.Errorf("audio: cannot finalize header: %w", err)
	}
	return w.f.Close()
}

// Silence returns n frames of silence for the given parameters.
func Silence(params Params, n int) []byte {
	return make([]byte, n*params.FrameSize())
}
