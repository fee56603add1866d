package cache

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

type Codec interface {
	Encode(val []byte) ([]byte, error)
	Decode(val []byte) ([]byte, error)
}

type plainCodec struct{}

// PlainCodec stores values untouched.
func PlainCodec() Codec { return plainCodec{} }

func (plainCodec) Encode(val []byte) ([]byte, error) { return val, nil }
func (plainCodec) Decode(val []byte) ([]byte, error) { return val, nil }

// ZstdCodec compresses on write. Decode passes through values written uncompressed,
// so toggling compression keeps existing entries readable.
type ZstdCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewZstdCodec() (*ZstdCodec, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &ZstdCodec{encoder: encoder, decoder: decoder}, nil
}

func (z *ZstdCodec) Encode(val []byte) ([]byte, error) {
	return z.encoder.EncodeAll(val, make([]byte, 0, len(val)/2)), nil
}

func (z *ZstdCodec) Decode(val []byte) ([]byte, error) {
	if !bytes.HasPrefix(val, zstdMagic) {
		return val, nil
	}
	return z.decoder.DecodeAll(val, nil)
}

// NewCodec returns the zstd codec when compress is set, otherwise the plain one.
func NewCodec(compress bool) (Codec, error) {
	if !compress {
		return PlainCodec(), nil
	}
	return NewZstdCodec()
}
