package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/bobg/hashsplit"
	"github.com/pkg/errors"
)

// Fingerprint computes a content-defined-chunking digest of r, for
// the optional post-transfer "-verify" check: two files with the same
// fingerprint are overwhelmingly likely to be byte-identical, and a
// changed region only perturbs the chunk boundaries around it rather
// than the whole digest, which is the property hashsplit trees are
// built for (see split/split.go's use of the same library to store
// content-addressed blob trees). This is a strictly local
// computation: there is no blob store here, just a Merkle tree of
// SHA-256 chunk hashes combined into one root digest.
func Fingerprint(r io.Reader) (string, error) {
	tb := &hashsplit.TreeBuilder{}
	const fanout = 4
	spl := hashsplit.NewSplitter(func(chunk []byte, level uint) error {
		sum := sha256.Sum256(chunk)
		return tb.Add(sum[:], level/fanout)
	})
	spl.MinSize = 1024
	spl.SplitBits = 14

	if _, err := io.Copy(spl, r); err != nil {
		return "", errors.Wrap(err, "hashsplitting content")
	}
	if err := spl.Close(); err != nil {
		return "", errors.Wrap(err, "closing splitter")
	}

	root, err := tb.Root()
	if err != nil {
		return "", errors.Wrap(err, "building hashsplit tree")
	}
	if root == nil {
		digest := sha256.Sum256(nil)
		return hex.EncodeToString(digest[:]), nil
	}

	digest := nodeDigest(root)
	return hex.EncodeToString(digest[:]), nil
}

// nodeDigest recursively combines a hashsplit.Node's child digests (or
// leaf hashes) into one SHA-256 value.
func nodeDigest(n hashsplit.Node) [32]byte {
	h := sha256.New()
	if tbn, ok := n.(*hashsplit.TreeBuilderNode); ok && len(tbn.Chunks) > 0 {
		for _, leaf := range tbn.Chunks {
			h.Write(leaf)
		}
	} else {
		for i := 0; i < n.NumChildren(); i++ {
			child, _ := n.Child(i)
			d := nodeDigest(child)
			h.Write(d[:])
		}
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
