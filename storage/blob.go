package storage

import (
	"fmt"

	"github.com/arloliu/tenpack/compress"
	"github.com/arloliu/tenpack/endian"
	"github.com/arloliu/tenpack/errs"
	"github.com/arloliu/tenpack/format"
	"github.com/arloliu/tenpack/index"
	"github.com/arloliu/tenpack/internal/hash"
	"github.com/arloliu/tenpack/internal/pool"
)

// Blob layout, all integers little-endian:
//
//	header (32 bytes)
//	  0-1   options: 12-bit magic | endianness bit
//	  2     values compression type
//	  3     value type
//	  4-11  tensor ID (xxHash64 of the tensor name, 0 when unnamed)
//	  12-13 order
//	  14-15 reserved
//	  16-19 value count
//	  20-23 index section byte size
//	  24-27 compressed values payload byte size
//	  28-31 reserved
//	index section
//	  order × uint32 dimensions
//	  per mode: kind u8, pos type u8, idx type u8, reserved u8,
//	            pos length u32, idx length u32, pos bytes, idx bytes
//	values payload (compressed per the header)
//	trailer
//	  xxHash64 of every preceding byte
const (
	headerSize   = 32
	checksumSize = 8
	modeHdrSize  = 12

	// MagicNumberMask selects the magic bits of the options word.
	MagicNumberMask uint16 = 0xFFF0
	// EndiannessMask selects the endianness bit of the options word.
	EndiannessMask uint16 = 0x0001

	// MagicTensorV1Opt identifies the packed tensor blob format v1.
	MagicTensorV1Opt uint16 = 0xEB10
)

// encodeConfig holds the blob writer options applied by Encode.
type encodeConfig struct {
	compression format.CompressionType
	id          uint64
	hasID       bool
}

// EncodeOption configures Storage.Encode.
type EncodeOption func(*encodeConfig) error

// WithCompression selects the compression applied to the values payload.
// The index section is stored uncompressed so decoders can locate segments
// without a decompression pass.
func WithCompression(compression format.CompressionType) EncodeOption {
	return func(cfg *encodeConfig) error {
		if !compression.Valid() {
			return fmt.Errorf("invalid values compression: %s", compression)
		}
		cfg.compression = compression

		return nil
	}
}

// WithTensorName overrides the blob's tensor ID with the xxHash64 of name.
func WithTensorName(name string) EncodeOption {
	return func(cfg *encodeConfig) error {
		cfg.id = hash.ID(name)
		cfg.hasID = true

		return nil
	}
}

// Encode serializes the storage into a self-describing binary blob.
//
// The default configuration stores the values payload uncompressed and
// carries the storage's tensor ID; use WithCompression and WithTensorName
// to override.
//
// Returns:
//   - []byte: The serialized blob, owned by the caller.
//   - error: errs.ErrStorageUndefined for a storage not created with New, or
//     a compression error.
func (s *Storage) Encode(opts ...EncodeOption) ([]byte, error) {
	if !s.Defined() {
		return nil, errs.ErrStorageUndefined
	}

	cfg := &encodeConfig{compression: format.CompressionNone}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if !cfg.hasID {
		cfg.id = s.id
	}

	codec, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return nil, err
	}
	payload, err := codec.Compress(s.values)
	if err != nil {
		return nil, fmt.Errorf("failed to compress values payload: %w", err)
	}

	order := s.fmt.Order()
	indexSize := 4 * order
	for i := range order {
		indexSize += modeHdrSize
		if mi := s.modes[i]; mi.Pos != nil {
			indexSize += len(mi.Pos.Bytes()) + len(mi.Idx.Bytes())
		}
	}

	engine := endian.GetLittleEndianEngine()
	buf := pool.GetBlobBuffer()
	defer pool.PutBlobBuffer(buf)
	buf.Grow(headerSize + indexSize + len(payload) + checksumSize)

	// Header.
	buf.B = engine.AppendUint16(buf.B, MagicTensorV1Opt)
	buf.B = append(buf.B, byte(cfg.compression), byte(s.vtype))
	buf.B = engine.AppendUint64(buf.B, cfg.id)
	buf.B = engine.AppendUint16(buf.B, uint16(order))
	buf.B = engine.AppendUint16(buf.B, 0)
	buf.B = engine.AppendUint32(buf.B, uint32(s.NumValues()))
	buf.B = engine.AppendUint32(buf.B, uint32(indexSize))
	buf.B = engine.AppendUint32(buf.B, uint32(len(payload)))
	buf.B = engine.AppendUint32(buf.B, 0)

	// Index section.
	for _, d := range s.dims {
		buf.B = engine.AppendUint32(buf.B, uint32(d))
	}
	for i := range order {
		mode := s.fmt.Mode(i)
		mi := s.modes[i]
		buf.B = append(buf.B, byte(mode.Kind), byte(mode.PosType), byte(mode.IdxType), 0)
		if mi.Pos == nil {
			buf.B = engine.AppendUint32(buf.B, 0)
			buf.B = engine.AppendUint32(buf.B, 0)
			continue
		}
		buf.B = engine.AppendUint32(buf.B, uint32(mi.Pos.Len()))
		buf.B = engine.AppendUint32(buf.B, uint32(mi.Idx.Len()))
		buf.MustWrite(mi.Pos.Bytes())
		buf.MustWrite(mi.Idx.Bytes())
	}

	// Values payload and trailing checksum.
	buf.MustWrite(payload)
	buf.B = engine.AppendUint64(buf.B, hash.Sum64(buf.B))

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

// Decode reconstructs a storage from a blob produced by Encode.
//
// The blob's magic number, section sizes and trailing checksum are all
// validated before any content is interpreted.
func Decode(data []byte) (*Storage, error) {
	if len(data) < headerSize+checksumSize {
		return nil, fmt.Errorf("%w: %d bytes", errs.ErrInvalidBlobSize, len(data))
	}

	engine := endian.GetLittleEndianEngine()

	body := data[:len(data)-checksumSize]
	checksum := engine.Uint64(data[len(data)-checksumSize:])
	if hash.Sum64(body) != checksum {
		return nil, errs.ErrChecksumMismatch
	}

	opts := engine.Uint16(data[0:2])
	if opts&MagicNumberMask != MagicTensorV1Opt {
		return nil, fmt.Errorf("%w: 0x%04x", errs.ErrInvalidMagicNumber, opts&MagicNumberMask)
	}
	if opts&EndiannessMask != 0 {
		return nil, fmt.Errorf("%w: big-endian blobs", errs.ErrUnsupported)
	}

	compression := format.CompressionType(data[2])
	if !compression.Valid() {
		return nil, fmt.Errorf("invalid values compression: %d", compression)
	}
	vtype := format.ValueType(data[3])
	if !vtype.Valid() {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidValueType, vtype)
	}

	id := engine.Uint64(data[4:12])
	order := int(engine.Uint16(data[12:14]))
	numValues := int(engine.Uint32(data[16:20]))
	indexSize := int(engine.Uint32(data[20:24]))
	payloadSize := int(engine.Uint32(data[24:28]))

	if headerSize+indexSize+payloadSize+checksumSize != len(data) {
		return nil, fmt.Errorf("%w: sections claim %d bytes, blob has %d",
			errs.ErrInvalidBlobSize, headerSize+indexSize+payloadSize+checksumSize, len(data))
	}

	sec := newSectionReader(data[headerSize : headerSize+indexSize])
	dims := make([]int, order)
	for i := range order {
		d, err := sec.uint32(engine)
		if err != nil {
			return nil, err
		}
		dims[i] = int(d)
	}

	modes := make([]format.Mode, order)
	indices := make([]ModeIndex, order)
	for i := range order {
		hdr, err := sec.bytes(modeHdrSize)
		if err != nil {
			return nil, err
		}

		kind := format.ModeKind(hdr[0])
		if !kind.Valid() {
			return nil, fmt.Errorf("%w: mode %d kind %d", errs.ErrInvalidModeKind, i, hdr[0])
		}
		posType := format.IndexType(hdr[1])
		idxType := format.IndexType(hdr[2])
		if !posType.Valid() || !idxType.Valid() {
			return nil, fmt.Errorf("%w: mode %d", errs.ErrInvalidIndexType, i)
		}
		modes[i] = format.Mode{Kind: kind, PosType: posType, IdxType: idxType}

		posLen := int(engine.Uint32(hdr[4:8]))
		idxLen := int(engine.Uint32(hdr[8:12]))
		if kind == format.Dense {
			if posLen != 0 || idxLen != 0 {
				return nil, fmt.Errorf("%w: Dense mode %d carries index arrays",
					errs.ErrInvalidBlobSize, i)
			}
			continue
		}

		posBytes, err := sec.bytes(posLen * posType.NumBytes())
		if err != nil {
			return nil, err
		}
		idxBytes, err := sec.bytes(idxLen * idxType.NumBytes())
		if err != nil {
			return nil, err
		}
		pos, err := index.NewVectorFromBytes(posType, posBytes)
		if err != nil {
			return nil, err
		}
		idx, err := index.NewVectorFromBytes(idxType, idxBytes)
		if err != nil {
			return nil, err
		}
		indices[i] = ModeIndex{Pos: pos, Idx: idx}
	}
	if sec.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing index bytes", errs.ErrInvalidBlobSize, sec.remaining())
	}

	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, err
	}
	payload := data[headerSize+indexSize : headerSize+indexSize+payloadSize]
	values, err := codec.Decompress(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress values payload: %w", err)
	}
	if len(values) != numValues*vtype.NumBytes() {
		return nil, fmt.Errorf("%w: %d value bytes, header claims %d values",
			errs.ErrInvalidBlobSize, len(values), numValues)
	}

	s := New(format.NewTyped(modes...), dims, vtype)
	s.id = id
	s.SetIndex(indices)
	s.SetValues(append([]byte(nil), values...))

	return s, nil
}

// sectionReader is a bounds-checked cursor over one blob section.
type sectionReader struct {
	data []byte
	off  int
}

func newSectionReader(data []byte) *sectionReader {
	return &sectionReader{data: data}
}

func (r *sectionReader) remaining() int {
	return len(r.data) - r.off
}

func (r *sectionReader) bytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, fmt.Errorf("%w: index section truncated", errs.ErrInvalidBlobSize)
	}
	b := r.data[r.off : r.off+n]
	r.off += n

	return b, nil
}

func (r *sectionReader) uint32(engine endian.EndianEngine) (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}

	return engine.Uint32(b), nil
}
