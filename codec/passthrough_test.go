// SPDX-License-Identifier: EPL-2.0

package codec_test

import (
	"testing"

	"github.com/ik5/encmonitor/audio"
	"github.com/ik5/encmonitor/codec"
)

func TestPassthrough_Identity(t *testing.T) {
	t.Parallel()

	p := codec.NewPassthrough()
	left := []float32{0.1, -0.2, 1.5, 0}
	right := []float32{-1, 0.25, -3, 0.5}

	seq, err := p.Process(left, right)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	i := 0
	for s := range codec.All(seq) {
		if s.L != left[i] || s.R != right[i] {
			t.Errorf("sample %d = %+v, want {%v %v}", i, s, left[i], right[i])
		}
		i++
	}
	if i != len(left) {
		t.Errorf("yielded %d samples, want %d", i, len(left))
	}
	if seq.Err() != nil {
		t.Errorf("Err() = %v", seq.Err())
	}
	if p.Latency() != 0 {
		t.Errorf("Latency() = %d, want 0", p.Latency())
	}
}

func TestPassthrough_Empty(t *testing.T) {
	t.Parallel()

	seq, err := codec.NewPassthrough().Process(nil, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if _, ok := seq.Next(); ok {
		t.Error("Next() on empty block returned a sample")
	}
}

func TestPassthrough_SinglePass(t *testing.T) {
	t.Parallel()

	seq, _ := codec.NewPassthrough().Process([]float32{1}, []float32{2})
	if _, ok := seq.Next(); !ok {
		t.Fatal("Next() = false, want a sample")
	}
	if _, ok := seq.Next(); ok {
		t.Error("Next() after the end returned a sample")
	}
	if _, ok := seq.Next(); ok {
		t.Error("sequence restarted")
	}
}

func TestPassthrough_MismatchPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r != audio.ErrChannelMismatch {
			t.Errorf("recover() = %v, want ErrChannelMismatch", r)
		}
	}()
	_, _ = codec.NewPassthrough().Process(make([]float32, 3), make([]float32, 2))
}

func TestAll_StopsEarly(t *testing.T) {
	t.Parallel()

	seq, _ := codec.NewPassthrough().Process([]float32{1, 2, 3}, []float32{1, 2, 3})
	for s := range codec.All(seq) {
		if s.L != 1 {
			t.Fatalf("first sample = %v, want 1", s.L)
		}
		break
	}

	s, ok := seq.Next()
	if !ok || s.L != 2 {
		t.Errorf("Next() after break = %v, %v, want 2, true", s, ok)
	}
}

func BenchmarkPassthrough(b *testing.B) {
	p := codec.NewPassthrough()
	left := make([]float32, 128)
	right := make([]float32, 128)
	b.ReportAllocs()

	for b.Loop() {
		seq, _ := p.Process(left, right)
		for {
			if _, ok := seq.Next(); !ok {
				break
			}
		}
	}
}
