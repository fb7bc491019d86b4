// README: Shared identifier type; ids are 24 hex chars (12 random bytes).
package types

import (
	"crypto/rand"
	"encoding/hex"
)

type ID string

const idLen = 24

func NewID() ID {
	var b [idLen / 2]byte
	_, _ = rand.Read(b[:])
	return ID(hex.EncodeToString(b[:]))
}

// IsValidID reports whether v has the shape produced by NewID.
// Upper-case hex is accepted because older clients send it that way.
func IsValidID(v string) bool {
	if len(v) != idLen {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
			continue
		}
		return false
	}
	return true
}
