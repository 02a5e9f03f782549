package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
//
// Tensor names are hashed to fixed-size IDs for the storage blob header so
// a blob can be matched back to its tensor without carrying the name.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Sum64 computes the xxHash64 of the given bytes.
//
// Used as the integrity checksum over serialized storage blobs.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}
