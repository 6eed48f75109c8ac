package jsondb

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func zstdCompress(b []byte) ([]byte, error) {
	enc, err := zstdEncoder()
	if err != nil {
		return nil, err
	}
	return enc.EncodeAll(b, nil), nil
}

func TestEncode(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		tests := []struct {
			name string
			in   any
			want string
		}{
			{"struct", testObj{Name: "a", Age: 1}, `{"name":"a","age":1,"rank":0}`},
			{"slice", []testObj{{Name: "a"}}, `[{"name":"a","age":0,"rank":0}]`},
			{"nil slice", []testObj(nil), `[]`},
			{"empty slice", []testObj{}, `[]`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := Encode(tt.in, false)
				if err != nil {
					t.Fatal(err)
				}
				if string(got) != tt.want {
					t.Errorf("Encode() = %s, want %s", got, tt.want)
				}
			})
		}
	})

	t.Run("compressed", func(t *testing.T) {
		objs := makeObjs(100)
		plain, err := Encode(objs, false)
		if err != nil {
			t.Fatal(err)
		}
		packed, err := Encode(objs, true)
		if err != nil {
			t.Fatal(err)
		}
		if bytes.Equal(plain, packed) {
			t.Fatal("compressed output equals plain output")
		}
		if len(packed) >= len(plain) {
			t.Errorf("compressed %d bytes >= plain %d bytes", len(packed), len(plain))
		}
		got, ok, err := Decode[[]testObj](packed, true)
		if err != nil || !ok {
			t.Fatalf("Decode() = %t, %v", ok, err)
		}
		if !reflect.DeepEqual(got, objs) {
			t.Error("round trip mismatch")
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := Encode(map[string]any{"c": make(chan int)}, false)
		if !errors.Is(err, ErrEncoding) {
			t.Errorf("Encode() = %v, want ErrEncoding", err)
		}
	})
}

func TestDecode(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		empty, err := zstdCompress(nil)
		if err != nil {
			t.Fatal(err)
		}
		tests := []struct {
			name       string
			data       []byte
			compressed bool
		}{
			{"nil", nil, false},
			{"empty", []byte{}, false},
			{"nil compressed", nil, true},
			{"empty frame", empty, true},
			{"null", []byte("null"), false},
			{"null with newline", []byte("null\n"), false},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				v, ok, err := Decode[testObj](tt.data, tt.compressed)
				if err != nil {
					t.Fatal(err)
				}
				if ok || v != (testObj{}) {
					t.Errorf("Decode() = %+v, %t, want zero, false", v, ok)
				}
				rows, ok, err := Decode[[]testObj](tt.data, tt.compressed)
				if err != nil {
					t.Fatal(err)
				}
				if ok || len(rows) != 0 {
					t.Errorf("Decode() = %+v, %t, want empty, false", rows, ok)
				}
			})
		}
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name       string
			data       []byte
			compressed bool
		}{
			{"not json", []byte("nope"), false},
			{"truncated", []byte(`[{"name":"a"`), false},
			{"trailing data", []byte(`[] []`), false},
			{"short", []byte(`[]`), true},
			{"not zstd", []byte(`[{"name":"a"}]`), true},
			{"whitespace", []byte("  \n"), false},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, _, err := Decode[[]testObj](tt.data, tt.compressed)
				if !errors.Is(err, ErrDecoding) {
					t.Errorf("Decode() = %v, want ErrDecoding", err)
				}
			})
		}
	})
}
