// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ik5/encmonitor/audio"
	"github.com/ik5/encmonitor/utils"
)

// burstDecoder emits frames samples for every byte it is given, at most
// len(left) per call, holding the rest like a decoder with queued frames.
type burstDecoder struct {
	frame   int
	queued  int
	calls   int
	nilCall int
}

func (d *burstDecoder) Decode(data []byte, left, right []int16) (int, error) {
	d.calls++
	if data == nil {
		d.nilCall++
	}
	d.queued += len(data) * d.frame
	if d.queued == 0 {
		return 0, audio.ErrNoFrame
	}

	n := min(d.queued, len(left))
	for i := range n {
		left[i] = int16(i)
		right[i] = -int16(i)
	}
	d.queued -= n
	if d.queued > 0 {
		return n, fmt.Errorf("burst: %w", audio.ErrCapacity)
	}
	return n, nil
}

func (d *burstDecoder) Reset() error { d.queued = 0; return nil }
func (d *burstDecoder) Delay() int   { return 0 }
func (d *burstDecoder) Close() error { return nil }

func newTestSamples(dec Decoder, chunk int) *sessionSamples {
	return &sessionSamples{
		dec:   dec,
		chunk: chunk,
		pcmL:  make([]int16, 8),
		pcmR:  make([]int16, 8),
	}
}

func count(q *sessionSamples) int {
	n := 0
	for {
		if _, ok := q.Next(); !ok {
			return n
		}
		n++
	}
}

func TestSessionSamples_DrainsQueuedFrames(t *testing.T) {
	t.Parallel()

	dec := &burstDecoder{frame: 10}
	q := newTestSamples(dec, 2)
	q.start(make([]byte, 3))

	// 3 bytes * 10 samples, through an 8-sample scratch
	if got := count(q); got != 30 {
		t.Errorf("yielded %d samples, want 30", got)
	}
	if q.Err() != nil {
		t.Errorf("Err() = %v", q.Err())
	}
	if dec.nilCall == 0 {
		t.Error("queued frames were not drained with empty Decode calls")
	}
}

func TestSessionSamples_ChunkSize(t *testing.T) {
	t.Parallel()

	dec := &burstDecoder{frame: 1}
	q := newTestSamples(dec, 4)
	q.start(make([]byte, 10))

	if got := count(q); got != 10 {
		t.Errorf("yielded %d samples, want 10", got)
	}
	// 4 + 4 + 2 bytes
	if dec.calls != 3 {
		t.Errorf("Decode called %d times, want 3", dec.calls)
	}
}

func TestSessionSamples_CapacityWithoutOutput(t *testing.T) {
	t.Parallel()

	q := newTestSamples(capacityDecoder{}, 4)
	q.start(make([]byte, 4))

	if got := count(q); got != 0 {
		t.Errorf("yielded %d samples, want 0", got)
	}
	if !errors.Is(q.Err(), audio.ErrCapacity) {
		t.Errorf("Err() = %v, want ErrCapacity", q.Err())
	}
}

type capacityDecoder struct{}

func (capacityDecoder) Decode([]byte, []int16, []int16) (int, error) { return 0, audio.ErrCapacity }
func (capacityDecoder) Reset() error                                 { return nil }
func (capacityDecoder) Delay() int                                   { return 0 }
func (capacityDecoder) Close() error                                 { return nil }

func TestSessionSamples_FinishedYieldsNothing(t *testing.T) {
	t.Parallel()

	dec := &burstDecoder{frame: 1}
	q := newTestSamples(dec, 4)
	q.finish()

	if got := count(q); got != 0 {
		t.Errorf("yielded %d samples, want 0", got)
	}
	if dec.calls != 0 {
		t.Errorf("Decode called %d times, want 0", dec.calls)
	}
}

func TestSessionSamples_TrimSpansCalls(t *testing.T) {
	t.Parallel()

	dec := &burstDecoder{frame: 4}
	q := newTestSamples(dec, 1)
	q.trim = 6

	q.start(make([]byte, 1))
	if got := count(q); got != 0 {
		t.Errorf("first call yielded %d samples, want 0", got)
	}
	q.start(make([]byte, 1))
	s, ok := q.Next()
	if !ok {
		t.Fatal("second call yielded nothing")
	}
	// burstDecoder writes its index; 6 trimmed leaves index 2 of the second
	if want := utils.Int16ToFloat32(2); s.L != want {
		t.Errorf("first sample = %v, want %v", s.L, want)
	}
	if got := count(q); got != 1 {
		t.Errorf("second call yielded %d more samples, want 1", got)
	}
}

func TestSessionSamples_ExactCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		bytes int
		want  int
	}{
		{"cut", 3, 5},
		{"padded", 1, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q := newTestSamples(&burstDecoder{frame: 4}, 1)
			q.start(make([]byte, tt.bytes))
			q.want = tt.want

			var got []float32
			for {
				s, ok := q.Next()
				if !ok {
					break
				}
				got = append(got, s.L)
			}
			if len(got) != tt.want {
				t.Fatalf("yielded %d samples, want %d", len(got), tt.want)
			}
			for i := 4 * tt.bytes; i < len(got); i++ {
				if got[i] != 0 {
					t.Errorf("padding sample %d = %v, want 0", i, got[i])
				}
			}
		})
	}
}
