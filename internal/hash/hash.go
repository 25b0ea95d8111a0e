package hash

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

// Params are the argon2id cost parameters. They are process-wide
// configuration: set once at startup, never per call.
type Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   64,
	}
}

type Hasher struct {
	params Params
}

func New(p Params) *Hasher {
	if p.Memory == 0 {
		p.Memory = DefaultParams().Memory
	}
	if p.Time == 0 {
		p.Time = DefaultParams().Time
	}
	if p.Parallelism == 0 {
		p.Parallelism = DefaultParams().Parallelism
	}
	if p.SaltLength == 0 {
		p.SaltLength = DefaultParams().SaltLength
	}
	if p.KeyLength == 0 {
		p.KeyLength = DefaultParams().KeyLength
	}
	return &Hasher{params: p}
}

// Hash derives an argon2id hash of password under a fresh random salt and
// returns it in PHC string form. Two calls with the same password produce
// different strings.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		h.params.Time,
		h.params.Memory,
		h.params.Parallelism,
		h.params.KeyLength,
	)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Check reports whether password matches the stored PHC hash. A malformed
// stored hash is a mismatch, never an error.
func (h *Hasher) Check(encoded, password string) bool {
	p, salt, key, err := decode(encoded)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Parallelism, uint32(len(key)))

	return subtle.ConstantTimeCompare(computed, key) == 1
}

func decode(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return Params{}, nil, nil, errors.New("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return Params{}, nil, nil, errors.New("unsupported algorithm")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Params{}, nil, nil, errors.New("invalid version segment")
	}
	if version != argon2.Version {
		return Params{}, nil, nil, errors.New("unsupported argon2 version")
	}

	p, err := parseCosts(parts[3])
	if err != nil {
		return Params{}, nil, nil, err
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return Params{}, nil, nil, errors.New("invalid salt segment")
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return Params{}, nil, nil, errors.New("invalid key segment")
	}

	return p, salt, key, nil
}

func parseCosts(segment string) (Params, error) {
	var p Params
	for _, pair := range strings.Split(segment, ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return Params{}, errors.New("invalid cost segment")
		}
		v, err := strconv.ParseUint(kv[1], 10, 32)
		if err != nil {
			return Params{}, errors.New("invalid cost value")
		}
		switch kv[0] {
		case "m":
			p.Memory = uint32(v)
		case "t":
			p.Time = uint32(v)
		case "p":
			if v > 255 {
				return Params{}, errors.New("invalid parallelism value")
			}
			p.Parallelism = uint8(v)
		default:
			return Params{}, errors.New("unknown cost parameter")
		}
	}
	if p.Memory == 0 || p.Time == 0 || p.Parallelism == 0 {
		return Params{}, errors.New("missing cost parameter")
	}
	return p, nil
}
