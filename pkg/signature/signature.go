// Package signature computes the opaque authenticity token attached to every
// verification: a BLAKE2b-256 commitment to the project, the verifier, the
// comment and the verification time.
package signature

import (
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

const prefix = "0x"

// Compute returns the signature hash for the tuple. Fields are length-prefixed
// so distinct tuples never share an encoding.
func Compute(projectID, verifierID, comment string, at time.Time) string {
	h, _ := blake2b.New256(nil) // only fails for oversized keys
	for _, f := range []string{projectID, verifierID, comment, at.UTC().Format(time.RFC3339Nano)} {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(f)))
		h.Write(n[:])
		h.Write([]byte(f))
	}
	return prefix + hex.EncodeToString(h.Sum(nil))
}

// Verify recomputes the hash and compares it with sig in constant time.
func Verify(sig, projectID, verifierID, comment string, at time.Time) bool {
	want := Compute(projectID, verifierID, comment, at)
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(sig)), []byte(want)) == 1
}
