// Package cidutil derives content digests for encoded elements.
//
// Digests are CIDv1 with the "raw" multicodec over a sha2-256 multihash.
// They check transfer integrity only; element identity is always the ExGuid.
package cidutil

import (
	"errors"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// ErrDigestMismatch is returned by Verify when bytes do not match a digest.
var ErrDigestMismatch = errors.New("cidutil: digest mismatch")

// Digest returns the CIDv1 (raw + sha2-256) of data.
func Digest(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// DigestString is Digest rendered as a string, or "" if hashing fails.
func DigestString(data []byte) string {
	id, err := Digest(data)
	if err != nil {
		// Unreachable for SHA2_256 with default length.
		return ""
	}
	return id.String()
}

// Verify checks data against want, given in string form.
func Verify(data []byte, want string) error {
	wantID, err := cid.Decode(want)
	if err != nil {
		return err
	}
	got, err := Digest(data)
	if err != nil {
		return err
	}
	if !got.Equals(wantID) {
		return ErrDigestMismatch
	}
	return nil
}
