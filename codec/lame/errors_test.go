// SPDX-License-Identifier: EPL-2.0

package lame

import (
	"errors"
	"testing"

	"github.com/ik5/encmonitor/audio"
	"github.com/ik5/encmonitor/codec"
)

func TestEncodeError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code int
		want error
	}{
		{-1, audio.ErrCapacity},
		{-2, audio.ErrResourceExhausted},
		{-3, audio.ErrNotConfigured},
		{-4, ErrPsycho},
		{-99, ErrGeneric},
	}

	for _, tt := range tests {
		if err := encodeError("encode", tt.code); !errors.Is(err, tt.want) {
			t.Errorf("encodeError(%d) = %v, want %v", tt.code, err, tt.want)
		}
	}
}

func TestAPIError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code int
		want error
	}{
		{-1, audio.ErrConfiguration},
		{-10, audio.ErrResourceExhausted},
		{-11, audio.ErrConfiguration},
		{-12, audio.ErrConfiguration},
	}

	for _, tt := range tests {
		if err := apiError("init params", tt.code); !errors.Is(err, tt.want) {
			t.Errorf("apiError(%d) = %v, want %v", tt.code, err, tt.want)
		}
	}
}

func TestEngines_Registered(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"lame", "lame-gomp3"} {
		if _, ok := codec.Default.Get(name); !ok {
			t.Errorf("engine %q not registered", name)
		}
	}
}

func TestGoMP3_Decoder(t *testing.T) {
	t.Parallel()

	dec, err := GoMP3.NewDecoder()
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}
	defer dec.Close()

	if dec.Delay() != 529 {
		t.Errorf("Delay() = %d, want 529", dec.Delay())
	}
	if _, err := dec.Decode([]byte{0, 1, 2}, make([]int16, 8), make([]int16, 8)); !errors.Is(err, audio.ErrNoFrame) {
		t.Errorf("Decode(garbage) error = %v, want ErrNoFrame", err)
	}
}
