/*
Package randx generates identifiers: UUIDv4 room ids and short Base62 connection ids.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars is the alphabet used for short identifiers.
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the size of Base62Chars.
	Base62Len = int64(len(Base62Chars))

	// ConnectionIDLength is the length of a generated connection id.
	ConnectionIDLength = 10
)

// RoomID returns a fresh UUIDv4 string.
func RoomID() string {
	return uuid.NewString()
}

// IsValidRoomID reports whether id parses as a UUID.
func IsValidRoomID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ConnectionID returns a random Base62 string used to tag a connection in logs.
func ConnectionID() (string, error) {
	return base62(ConnectionIDLength)
}

// IsBase62 reports whether s is non-empty and uses only Base62Chars.
func IsBase62(s string) bool {
	if s == "" {
		return false
	}
	for _, char := range s {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}
	return true
}

func base62(length int) (string, error) {
	result := make([]byte, length)

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random base62 character: %w", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}
