// Package id generates prefixed NanoID identifiers.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes in use.
const (
	PrefixPresenter = "pres"
	PrefixRequest   = "req"
)

// shortAlphabet omits look-alike characters so ids survive being read from logs.
const shortAlphabet = "23456789abcdefghjkmnpqrstuvwxyz"

// Generate creates a prefixed unique ID using NanoID,
// e.g. "pres-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// Short creates a prefixed ID of size characters from a lower-case alphabet.
// Use for ids people read, not for ids that must never collide.
func Short(prefix string, size int) (string, error) {
	id, err := gonanoid.Generate(shortAlphabet, size)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// HasPrefix reports whether id was generated with prefix.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"-") && len(id) > len(prefix)+1
}
