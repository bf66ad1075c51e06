// Package cryptox holds the credential codec. The digest format is the
// legacy unsalted md5 hex scheme the stored user rows were written with, so
// hashing must stay deterministic: equal passwords always produce equal
// digests. Known-weak, kept for compatibility with existing data; changing
// it would orphan every stored credential.
package cryptox

import (
	"crypto/md5" // #nosec G501 - legacy digest format, see package comment
	"crypto/subtle"
	"encoding/hex"
)

// HashPassword returns the hex digest for a plaintext password. Pure and
// deterministic by contract.
func HashPassword(password string) string {
	sum := md5.Sum([]byte(password)) // #nosec G401
	return hex.EncodeToString(sum[:])
}

// VerifyPassword reports whether password hashes to digest. The comparison
// is constant-time, which changes nothing observable.
func VerifyPassword(password, digest string) bool {
	computed := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}
