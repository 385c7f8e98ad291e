package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// DatasetFingerprint identifies an evaluation input set. Two evaluations
// over byte-identical labels and scores share a fingerprint, which lets
// audit consumers tie a snapshot back to the exact data it was computed on.
type DatasetFingerprint Hash

func (f DatasetFingerprint) String() string { return Hash(f).String() }
func (f DatasetFingerprint) IsEmpty() bool  { return Hash(f).IsEmpty() }

// ComputeDatasetFingerprint hashes aligned label arrays and optional scores.
// Encoding is positional: one byte per label pair, eight per score.
func ComputeDatasetFingerprint(truth, predicted []bool, scores []float64) DatasetFingerprint {
	data := make([]byte, 0, len(truth)+len(predicted)+8*len(scores))
	for _, v := range truth {
		data = append(data, boolByte(v))
	}
	for _, v := range predicted {
		data = append(data, boolByte(v))
	}
	var buf [8]byte
	for _, s := range scores {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(s))
		data = append(data, buf[:]...)
	}
	return DatasetFingerprint(NewHash(data))
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
