package cache

import "github.com/klauspost/compress/zstd"

// codec transforms blob bytes on the way to and from disk.
type codec interface {
	encode(data []byte) ([]byte, error)
	decode(data []byte) ([]byte, error)
}

// zstdCodec compresses blobs with zstd. Encoder and decoder are stateless
// for the EncodeAll/DecodeAll paths and safe for concurrent use.
type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newZstdCodec() *zstdCodec {
	// Both constructors only error on invalid options; none are passed.
	enc, _ := zstd.NewWriter(nil)
	dec, _ := zstd.NewReader(nil)
	return &zstdCodec{enc: enc, dec: dec}
}

func (c *zstdCodec) encode(data []byte) ([]byte, error) {
	return c.enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

func (c *zstdCodec) decode(data []byte) ([]byte, error) {
	return c.dec.DecodeAll(data, nil)
}
