// Converts records to and from their on-disk byte form.

package jsondb

import (
	"bytes"
	"encoding/json"
	"io"
	"reflect"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Encode serializes v to JSON and, when compress is set, passes the result
// through a zstd encoder at the default level.
//
// A nil slice is encoded as an empty array, never as null.
func Encode(v any, compress bool) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &OpError{Op: "encode", Kind: ErrEncoding, Err: err}
	}
	if bytes.Equal(data, nullJSON) && isNilSlice(v) {
		data = []byte("[]")
	}
	if !compress {
		return data, nil
	}
	enc, err := zstdEncoder()
	if err != nil {
		return nil, &OpError{Op: "encode", Kind: ErrEncoding, Err: err}
	}
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2+64)), nil
}

// Decode reverses Encode.
//
// An empty buffer, or one that decompresses to nothing, decodes to the zero
// value with ok false. So does a JSON null. This is how "never written" is
// represented and is not an error.
func Decode[V any](data []byte, compressed bool) (v V, ok bool, err error) {
	if len(data) == 0 {
		return v, false, nil
	}
	if compressed {
		// Shorter input cannot hold a frame magic; the decoder would read it
		// as an empty stream.
		if len(data) < 4 {
			return v, false, &OpError{Op: "decode", Kind: ErrDecoding, Err: io.ErrUnexpectedEOF}
		}
		dec, err := zstdDecoder()
		if err != nil {
			return v, false, &OpError{Op: "decode", Kind: ErrDecoding, Err: err}
		}
		if data, err = dec.DecodeAll(data, nil); err != nil {
			return v, false, &OpError{Op: "decode", Kind: ErrDecoding, Err: err}
		}
		if len(data) == 0 {
			return v, false, nil
		}
	}
	if bytes.Equal(bytes.TrimSpace(data), nullJSON) {
		return v, false, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		var zero V
		return zero, false, &OpError{Op: "decode", Kind: ErrDecoding, Err: err}
	}
	return v, true, nil
}

//

var nullJSON = []byte("null")

// The encoder and decoder are only used through EncodeAll and DecodeAll,
// which are safe for concurrent use.
var (
	zstdEncoder = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	zstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
		return zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	})
)

func isNilSlice(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Slice && rv.IsNil()
}
