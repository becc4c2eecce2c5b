package history

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"github.com/inamate/heraldry/internal/document"
	"github.com/inamate/heraldry/internal/engine"
)

// Snapshots are stored as deterministic CBOR compressed with zstd. Core
// deterministic encoding sorts map keys and uses the shortest integer and
// float forms, so equal snapshots always produce equal bytes.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode

	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("history: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic("history: CBOR decoder initialization failed: " + err.Error())
	}

	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("history: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("history: zstd decoder initialization failed: " + err.Error())
	}
}

// Fingerprint is the BLAKE3 digest of a snapshot's canonical encoding.
type Fingerprint [32]byte

func (f Fingerprint) String() string { return fmt.Sprintf("%x", f[:]) }

// Marshal returns the canonical CBOR form of s.
func Marshal(s engine.Snapshot) ([]byte, error) {
	data, err := encMode.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a canonical CBOR snapshot.
func Unmarshal(data []byte) (engine.Snapshot, error) {
	var s engine.Snapshot
	if err := decMode.Unmarshal(data, &s); err != nil {
		return engine.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

// Encode returns the compressed canonical form of s and its fingerprint.
// The fingerprint covers the uncompressed bytes.
func Encode(s engine.Snapshot) ([]byte, Fingerprint, error) {
	raw, err := Marshal(s)
	if err != nil {
		return nil, Fingerprint{}, err
	}
	return zstdEncoder.EncodeAll(raw, nil), blake3.Sum256(raw), nil
}

// Decode reverses Encode.
func Decode(data []byte) (engine.Snapshot, error) {
	raw, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("zstd decompress: %w", err)
	}
	return Unmarshal(raw)
}

// Sum fingerprints a snapshot without keeping the encoded bytes.
func Sum(s engine.Snapshot) (Fingerprint, error) {
	raw, err := Marshal(s)
	if err != nil {
		return Fingerprint{}, err
	}
	return blake3.Sum256(raw), nil
}

// ContentSum fingerprints what a snapshot looks like, ignoring layer
// identities. Two parses of the same text have the same content sum.
func ContentSum(s engine.Snapshot) (Fingerprint, error) {
	anon := s
	anon.Layers = make([]document.Layer, len(s.Layers))
	for i, l := range s.Layers {
		l.UUID = ""
		anon.Layers[i] = l
	}
	return Sum(anon)
}
