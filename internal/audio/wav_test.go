package audio

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func testParams() Params {
	return Params{Channels: 1, SampleRate: 48000, BitsPerSample: 16}
}

func writeTestWAV(t *testing.T, path string, params Params, pcm []byte) {
	t.Helper()
	w, err := Create(path, params)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.WriteFrames(pcm); err != nil {
		t.Fatalf("WriteFrames: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	pcm := make([]byte, 200) // 100 mono 16-bit frames
	for i := range pcm {
		pcm[i] = byte(i)
	}
	writeTestWAV(t, path, testParams(), pcm)

	r, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	got := r.Params()
	want := testParams()
	want.NumFrames = 100
	if got != want {
		t.Fatalf("params = %+v, want %+v", got, want)
	}
	if data := r.ReadFrames(100); !bytes.Equal(data, pcm) {
		t.Fatalf("payload mismatch")
	}
}

func TestWriterFileLayout(t *testing.T) {
	// The payload must start right after the 44-byte header, and the
	// back-patched sizes must match the bytes on disk.
	path := filepath.Join(t.TempDir(), "layout.wav")
	pcm := make([]byte, 64)
	for i := range pcm {
		pcm[i] = byte(i + 1)
	}
	writeTestWAV(t, path, testParams(), pcm)

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 44+len(pcm) {
		t.Fatalf("file is %d bytes, want %d", len(raw), 44+len(pcm))
	}
	if string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		t.Fatalf("header bytes overwritten: %q", raw[:12])
	}
	if got := binary.LittleEndian.Uint32(raw[40:44]); got != uint32(len(pcm)) {
		t.Fatalf("data chunk size = %d, want %d", got, len(pcm))
	}
	if !bytes.Equal(raw[44:], pcm) {
		t.Fatal("payload does not start at byte 44")
	}
}

func TestReaderCursor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursor.wav")
	pcm := make([]byte, 20)
	for i := range pcm {
		pcm[i] = byte(i + 1)
	}
	writeTestWAV(t, path, testParams(), pcm)

	r, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	first := r.ReadFrames(4)
	if len(first) != 8 || first[0] != 1 {
		t.Fatalf("first read = %v", first)
	}
	second := r.ReadFrames(4)
	if len(second) != 8 || second[0] != 9 {
		t.Fatalf("second read = %v", second)
	}
	// Short read at the tail, then empty
	tail := r.ReadFrames(100)
	if len(tail) != 4 {
		t.Fatalf("tail read = %d bytes, want 4", len(tail))
	}
	if len(r.ReadFrames(1)) != 0 {
		t.Fatalf("read past end returned data")
	}

	r.Rewind()
	again := r.ReadFrames(4)
	if !bytes.Equal(again, first) {
		t.Fatalf("rewind did not reset the cursor")
	}
}

func TestStereoFrameSize(t *testing.T) {
	p := Params{Channels: 2, SampleRate: 44100, BitsPerSample: 16}
	if got := p.FrameSize(); got != 4 {
		t.Fatalf("FrameSize = %d, want 4", got)
	}
	p.NumFrames = 44100
	if got := p.Duration(); got != 1.0 {
		t.Fatalf("Duration = %v, want 1.0", got)
	}
}

func TestSampleRateOverride(t *testing.T) {
	// The same payload written at triple the rate plays three times faster.
	dir := t.TempDir()
	pcm := make([]byte, 48000*2)
	writeTestWAV(t, filepath.Join(dir, "normal.wav"), testParams(), pcm)

	fast := testParams()
	fast.SampleRate *= 3
	writeTestWAV(t, filepath.Join(dir, "fast.wav"), fast, pcm)

	n, err := ReadFile(filepath.Join(dir, "normal.wav"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	f, err := ReadFile(filepath.Join(dir, "fast.wav"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if n.Params().Duration() != 3*f.Params().Duration() {
		t.Fatalf("durations: normal=%v fast=%v", n.Params().Duration(), f.Params().Duration())
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := decode([]byte("definitely not a wav file")); err == nil {
		t.Fatal("expected an error for non-RIFF input")
	}
}

func TestSilence(t *testing.T) {
	b := Silence(testParams(), 10)
	if len(b) != 20 {
		t.Fatalf("silence length = %d, want 20", len(b))
	}
	for _, v := range b {
		if v != 0 {
			t.Fatal("silence is not zero")
		}
	}
}
