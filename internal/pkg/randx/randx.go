/*
Package randx generates identifiers: base62 connection IDs from crypto/rand and
UUIDs for persisted records.
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
	// Base62Chars is the alphabet used for generated connection IDs.
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the size of the Base62 alphabet.
	Base62Len = int64(len(Base62Chars))

	// ConnIDPrefix prefixes every connection ID.
	ConnIDPrefix = "conn_"

	// ConnIDRawLength is the number of random base62 characters in a connection ID.
	ConnIDRawLength = 12
)

// Base62 returns n cryptographically random base62 characters.
func Base62(n int) (string, error) {
	result := make([]byte, n)

	for i := 0; i < n; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random base62 character: %w", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// ConnID returns a new connection identifier such as "conn_3ZbW0q9LkX2a".
// If the system random source fails it falls back to a UUID-derived suffix.
func ConnID() string {
	raw, err := Base62(ConnIDRawLength)
	if err != nil {
		raw = strings.ReplaceAll(uuid.NewString(), "-", "")[:ConnIDRawLength]
	}

	return ConnIDPrefix + raw
}

// MessageID returns a UUID v4 string.
func MessageID() string {
	return uuid.New().String()
}
