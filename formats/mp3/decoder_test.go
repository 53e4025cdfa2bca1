// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/encmonitor/audio"
)

// fakeReader stands in for go-mp3: it pulls one frame at a time from src and
// emits a constant frame number on the left channel and its negation on the
// right.
type fakeReader struct {
	src        io.Reader
	buf        []byte
	frames     int
	sampleRate int
	failAt     int
}

func (f *fakeReader) Read(p []byte) (int, error) {
	for len(f.buf) == 0 {
		hdr := make([]byte, HeaderSize)
		if _, err := io.ReadFull(f.src, hdr); err != nil {
			return 0, err
		}
		h, err := ParseFrameHeader(hdr)
		if err != nil {
			return 0, err
		}
		if _, err := io.ReadFull(f.src, make([]byte, h.Length()-HeaderSize)); err != nil {
			return 0, err
		}
		f.frames++
		if f.failAt > 0 && f.frames == f.failAt {
			return 0, errors.New("fake: corrupt frame")
		}
		f.sampleRate = h.SampleRate

		v := int16(f.frames)
		for range h.Samples() {
			f.buf = append(f.buf, byte(v), byte(uint16(v)>>8), byte(-v), byte(uint16(-v)>>8))
		}
	}
	n := copy(p, f.buf)
	f.buf = f.buf[n:]
	return n, nil
}

func (f *fakeReader) SampleRate() int { return f.sampleRate }

type fakeOpener struct {
	opened int
	failAt int
	err    error
}

func (o *fakeOpener) open(r io.Reader) (mp3Reader, error) {
	if o.err != nil {
		return nil, o.err
	}
	o.opened++
	return &fakeReader{src: r, failAt: o.failAt}, nil
}

var testHeader = []byte{0xFF, 0xFB, 0x90, 0x00} // 128k 44.1kHz, 417 bytes

func testFrame() []byte {
	frame := make([]byte, 417)
	copy(frame, testHeader)
	return frame
}

func testFrames(n int) []byte {
	var b []byte
	for range n {
		b = append(b, testFrame()...)
	}
	return b
}

func TestStreamDecoder_WholeFrames(t *testing.T) {
	t.Parallel()

	opener := &fakeOpener{}
	d := newStreamDecoder(opener.open)
	if d.SampleRate() != 0 {
		t.Errorf("SampleRate() before first frame = %d, want 0", d.SampleRate())
	}

	left := make([]int16, 4*MaxFrameSamples)
	right := make([]int16, 4*MaxFrameSamples)

	n, err := d.Decode(testFrames(2), left, right)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if n != 2*MaxFrameSamples {
		t.Fatalf("Decode() = %d, want %d", n, 2*MaxFrameSamples)
	}
	if left[0] != 1 || right[0] != -1 {
		t.Errorf("frame 1 = (%d, %d), want (1, -1)", left[0], right[0])
	}
	if left[MaxFrameSamples] != 2 || right[MaxFrameSamples] != -2 {
		t.Errorf("frame 2 = (%d, %d), want (2, -2)", left[MaxFrameSamples], right[MaxFrameSamples])
	}
	if d.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", d.SampleRate())
	}

	// The decoder context survives between calls
	n, err = d.Decode(testFrames(1), left, right)
	if err != nil || n != MaxFrameSamples {
		t.Fatalf("Decode() = %d, %v, want %d, nil", n, err, MaxFrameSamples)
	}
	if left[0] != 3 {
		t.Errorf("frame 3 left = %d, want 3", left[0])
	}
	if opener.opened != 1 {
		t.Errorf("decoder opened %d times, want 1", opener.opened)
	}
}

func TestStreamDecoder_SplitFrame(t *testing.T) {
	t.Parallel()

	d := newStreamDecoder((&fakeOpener{}).open)
	left := make([]int16, MaxFrameSamples)
	right := make([]int16, MaxFrameSamples)
	frame := testFrame()

	n, err := d.Decode(frame[:2], left, right)
	if !errors.Is(err, audio.ErrNoFrame) || n != 0 {
		t.Fatalf("Decode(2 bytes) = %d, %v, want 0, ErrNoFrame", n, err)
	}
	n, err = d.Decode(frame[2:200], left, right)
	if !errors.Is(err, audio.ErrNoFrame) || n != 0 {
		t.Fatalf("Decode(198 bytes) = %d, %v, want 0, ErrNoFrame", n, err)
	}
	n, err = d.Decode(frame[200:], left, right)
	if err != nil || n != MaxFrameSamples {
		t.Fatalf("Decode(rest) = %d, %v, want %d, nil", n, err, MaxFrameSamples)
	}
}

func TestStreamDecoder_Resync(t *testing.T) {
	t.Parallel()

	d := newStreamDecoder((&fakeOpener{}).open)
	left := make([]int16, MaxFrameSamples)
	right := make([]int16, MaxFrameSamples)

	data := append([]byte{0x00, 0x12, 0xFF, 0x00, 0xFF, 0xFD, 0x90, 0x00}, testFrame()...)
	n, err := d.Decode(data, left, right)
	if err != nil || n != MaxFrameSamples {
		t.Fatalf("Decode() = %d, %v, want %d, nil", n, err, MaxFrameSamples)
	}
}

func TestStreamDecoder_Capacity(t *testing.T) {
	t.Parallel()

	d := newStreamDecoder((&fakeOpener{}).open)
	small := make([]int16, MaxFrameSamples-1)

	n, err := d.Decode(testFrame(), small, small)
	if !errors.Is(err, audio.ErrCapacity) || n != 0 {
		t.Fatalf("Decode() = %d, %v, want 0, ErrCapacity", n, err)
	}

	// The frame is still queued
	left := make([]int16, MaxFrameSamples)
	right := make([]int16, MaxFrameSamples)
	n, err = d.Decode(nil, left, right)
	if err != nil || n != MaxFrameSamples {
		t.Fatalf("Decode(nil) = %d, %v, want %d, nil", n, err, MaxFrameSamples)
	}
}

func TestStreamDecoder_Reset(t *testing.T) {
	t.Parallel()

	opener := &fakeOpener{}
	d := newStreamDecoder(opener.open)
	left := make([]int16, MaxFrameSamples)
	right := make([]int16, MaxFrameSamples)

	if _, err := d.Decode(testFrame(), left, right); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	frame := testFrame()
	if _, err := d.Decode(frame[:100], left, right); !errors.Is(err, audio.ErrNoFrame) {
		t.Fatalf("Decode(partial) error = %v, want ErrNoFrame", err)
	}

	if err := d.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if d.SampleRate() != 0 {
		t.Errorf("SampleRate() after Reset = %d, want 0", d.SampleRate())
	}

	// The tail of the dropped frame carries no sync word
	if _, err := d.Decode(frame[100:], left, right); !errors.Is(err, audio.ErrNoFrame) {
		t.Fatalf("Decode(tail) error = %v, want ErrNoFrame", err)
	}

	n, err := d.Decode(testFrame(), left, right)
	if err != nil || n != MaxFrameSamples {
		t.Fatalf("Decode() = %d, %v, want %d, nil", n, err, MaxFrameSamples)
	}
	if left[0] != 1 {
		t.Errorf("first frame after Reset = %d, want 1", left[0])
	}
	if opener.opened != 2 {
		t.Errorf("decoder opened %d times, want 2", opener.opened)
	}
}

func TestStreamDecoder_OpenFailure(t *testing.T) {
	t.Parallel()

	openErr := errors.New("fake: no stream")
	d := newStreamDecoder((&fakeOpener{err: openErr}).open)
	left := make([]int16, MaxFrameSamples)
	right := make([]int16, MaxFrameSamples)

	_, err := d.Decode(testFrame(), left, right)
	if !errors.Is(err, audio.ErrNoFrame) {
		t.Errorf("Decode() error = %v, want ErrNoFrame", err)
	}
	if !errors.Is(err, openErr) {
		t.Errorf("Decode() error = %v, want it to wrap %v", err, openErr)
	}
}

func TestStreamDecoder_CorruptFrame(t *testing.T) {
	t.Parallel()

	opener := &fakeOpener{failAt: 2}
	d := newStreamDecoder(opener.open)
	left := make([]int16, 3*MaxFrameSamples)
	right := make([]int16, 3*MaxFrameSamples)

	// Samples decoded before the bad frame are kept
	n, err := d.Decode(testFrames(3), left, right)
	if err != nil || n != MaxFrameSamples {
		t.Fatalf("Decode() = %d, %v, want %d, nil", n, err, MaxFrameSamples)
	}

	// The stream restarts on the next frame
	n, err = d.Decode(testFrames(1), left, right)
	if err != nil || n != MaxFrameSamples {
		t.Fatalf("Decode() after corrupt frame = %d, %v, want %d, nil", n, err, MaxFrameSamples)
	}
	if opener.opened != 2 {
		t.Errorf("decoder opened %d times, want 2", opener.opened)
	}
}

func TestStreamDecoder_Delay(t *testing.T) {
	t.Parallel()

	if got := NewStreamDecoder().Delay(); got != DecoderDelay {
		t.Errorf("Delay() = %d, want %d", got, DecoderDelay)
	}
}

// decodeWhole reads a complete stream with go-mp3 in one go and returns the
// interleaved samples.
func decodeWhole(t *testing.T, data []byte) []int16 {
	t.Helper()

	dec, err := gomp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("gomp3.NewDecoder() error = %v", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	pcm := make([]int16, len(raw)/2)
	for i := range pcm {
		pcm[i] = int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
	}
	return pcm
}

// decodeChunked feeds data to a StreamDecoder chunk bytes at a time and
// returns the interleaved samples.
func decodeChunked(t *testing.T, data []byte, chunk int) []int16 {
	t.Helper()

	d := NewStreamDecoder()
	defer d.Close()
	left := make([]int16, 2*MaxFrameSamples)
	right := make([]int16, 2*MaxFrameSamples)

	var pcm []int16
	for off := 0; off < len(data); off += chunk {
		in := data[off:min(off+chunk, len(data))]
		for {
			n, err := d.Decode(in, left, right)
			for i := range n {
				pcm = append(pcm, left[i], right[i])
			}
			in = nil
			switch {
			case err == nil, errors.Is(err, audio.ErrNoFrame):
			case errors.Is(err, audio.ErrCapacity) && n > 0:
				continue
			default:
				t.Fatalf("chunk at %d: Decode() error = %v", off, err)
			}
			break
		}
	}
	return pcm
}

func TestStreamDecoder_RealStream(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile(filepath.Join("testdata", "clip.mp3"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := decodeWhole(t, data)
	if len(want) == 0 {
		t.Fatal("go-mp3 decoded nothing")
	}

	for _, chunk := range []int{1, 417, 5000} {
		got := decodeChunked(t, data, chunk)
		if len(got) != len(want) {
			t.Errorf("chunk %d: decoded %d samples, want %d", chunk, len(got), len(want))
			continue
		}
		if !slices.Equal(got, want) {
			i := 0
			for got[i] == want[i] {
				i++
			}
			t.Errorf("chunk %d: sample %d = %d, want %d", chunk, i, got[i], want[i])
		}
	}
}
