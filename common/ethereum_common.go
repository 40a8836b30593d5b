package common

import (
	"encoding/json"
	"fmt"

	ethereumCommon "github.com/ethereum/go-ethereum/common"
)

// Hash is a 32-byte content digest based on Ethereum's common.Hash.
type Hash ethereumCommon.Hash

func (h Hash) Bytes() []byte {
	return ethereumCommon.Hash(h).Bytes()
}

func (h Hash) String() string {
	return ethereumCommon.Hash(h).String()
}

// String_short prints the first and last four hex digits.
func (h Hash) String_short() string {
	return fmt.Sprintf("%s..%s", h.Hex()[2:6], h.Hex()[62:66])
}

func (h Hash) Hex() string {
	return ethereumCommon.Hash(h).Hex()
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func BytesToHash(b []byte) Hash {
	return Hash(ethereumCommon.BytesToHash(b))
}

func HexToHash(s string) Hash {
	return Hash(ethereumCommon.HexToHash(s))
}

// IsHexHash reports whether s is a 0x-prefixed 32-byte hex string.
func IsHexHash(s string) bool {
	return len(s) == 66 && (s[:2] == "0x" || s[:2] == "0X") && isHex(s[2:])
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case '0' <= c && c <= '9', 'a' <= c && c <= 'f', 'A' <= c && c <= 'F':
		default:
			return false
		}
	}
	return true
}

func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Hex())
}

func (h *Hash) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}
	*h = HexToHash(hexStr)
	return nil
}
