package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Salt lives inside the encoded hash, so a parameter
// bump only affects newly hashed credentials.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

var errMalformedHash = errors.New("malformed password hash")

// HashPassword hashes a plain text password with Argon2id and a fresh random
// salt, encoded in the standard $argon2id$... form.
func HashPassword(plain string) (string, error) {
	salt := make([]byte, argonSaltLen)

	_, err := rand.Read(salt)

	if err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(plain), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory,
		argonTime,
		argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// CheckPassword compares an encoded Argon2id hash with a plaintext password.
// A malformed hash compares as a mismatch rather than an error so callers
// never branch on "bad hash" vs "bad password".
func CheckPassword(hash, plain string) bool {
	salt, key, memory, time, threads, err := decodeHash(hash)

	if err != nil {
		return false
	}

	candidate := argon2.IDKey([]byte(plain), salt, time, memory, threads, uint32(len(key)))

	return subtle.ConstantTimeCompare(key, candidate) == 1
}

func decodeHash(hash string) (salt, key []byte, memory, time uint32, threads uint8, err error) {
	parts := strings.Split(hash, "$")

	// "", "argon2id", "v=19", "m=...,t=...,p=...", salt, key
	if len(parts) != 6 || parts[1] != "argon2id" {
		err = errMalformedHash
		return
	}

	var version int

	_, err = fmt.Sscanf(parts[2], "v=%d", &version)

	if err != nil || version != argon2.Version {
		err = errMalformedHash
		return
	}

	_, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads)

	if err != nil {
		err = errMalformedHash
		return
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])

	if err != nil {
		err = errMalformedHash
		return
	}

	key, err = base64.RawStdEncoding.DecodeString(parts[5])

	if err != nil || len(key) == 0 {
		err = errMalformedHash
		return
	}

	return
}
