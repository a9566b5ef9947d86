package storage

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"
)

// ScratchPath derives a unique store identity for one test run:
// <dir>/<prefix>_<testID>_<unix timestamp>_<random 2-3 digit>.json.
// The testID segment is omitted for ad hoc stores. The random suffix keeps
// concurrently started runs from colliding on the same second.
func ScratchPath(dir, prefix, testID string) string {
	parts := []string{prefix}
	if testID != "" {
		parts = append(parts, sanitize(testID))
	}
	parts = append(parts,
		fmt.Sprintf("%d", time.Now().Unix()),
		fmt.Sprintf("%d", 10+rand.Intn(990)),
	)
	return filepath.Join(dir, strings.Join(parts, "_")+".json")
}

// sanitize keeps the test identifier filesystem-safe.
func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '.':
			return r
		default:
			return '-'
		}
	}, id)
}
