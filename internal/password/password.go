// Package password stores credential secrets as encoded argon2id hashes.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

type params struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
}

var defaultParams = params{time: 3, memory: 64 * 1024, threads: 2, keyLen: 32}

const saltLen = 16

var errMalformedHash = errors.New("malformed password hash")

// Hash derives an argon2id digest and encodes it together with its
// parameters and salt so Verify stays correct across parameter changes.
func Hash(secret string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	p := defaultParams
	digest := argon2.IDKey([]byte(secret), salt, p.time, p.memory, p.threads, p.keyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.memory, p.time, p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// Verify re-derives the digest with the parameters encoded in hash and
// compares in constant time.
func Verify(secret, hash string) (bool, error) {
	p, salt, want, err := decode(hash)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(secret), salt, p.time, p.memory, p.threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func decode(hash string) (params, []byte, []byte, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return params{}, nil, nil, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return params{}, nil, nil, errMalformedHash
	}

	p, err := decodeParams(parts[3])
	if err != nil {
		return params{}, nil, nil, err
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params{}, nil, nil, errMalformedHash
	}
	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return params{}, nil, nil, errMalformedHash
	}

	return p, salt, digest, nil
}

func decodeParams(field string) (params, error) {
	var p params
	for _, kv := range strings.Split(field, ",") {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return params{}, errMalformedHash
		}
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return params{}, errMalformedHash
		}
		switch key {
		case "m":
			p.memory = uint32(n)
		case "t":
			p.time = uint32(n)
		case "p":
			if n > 255 {
				return params{}, errMalformedHash
			}
			p.threads = uint8(n)
		default:
			return params{}, errMalformedHash
		}
	}
	if p.memory == 0 || p.time == 0 || p.threads == 0 {
		return params{}, errMalformedHash
	}
	return p, nil
}
