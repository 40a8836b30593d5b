package common

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// ComputeHash computes the BLAKE2b-256 hash of the given data
func ComputeHash(data []byte) []byte {
	hash := blake2b.Sum256(data)
	return hash[:]
}

func Blake2Hash(data []byte) Hash {
	return BytesToHash(ComputeHash(data))
}

// WordsToBytes lays words out as consecutive little-endian 8-byte cells.
func WordsToBytes(words []int64) []byte {
	out := make([]byte, 8*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint64(out[8*i:], uint64(w))
	}
	return out
}

// BytesToWords is the inverse of WordsToBytes; a trailing partial cell is
// ignored.
func BytesToWords(data []byte) []int64 {
	words := make([]int64, len(data)/8)
	for i := range words {
		words[i] = int64(binary.LittleEndian.Uint64(data[8*i:]))
	}
	return words
}

// WordsHash is the content address of a memory image.
func WordsHash(words []int64) Hash {
	return Blake2Hash(WordsToBytes(words))
}
