package artifact

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// CID returns the content identifier of raw bytes: CIDv1, "raw" multicodec,
// sha2-256 multihash. Plans reference stored artifacts by this string.
func CID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// CIDString is CID rendered as a string. Returns "" only on the
// unreachable error path of multihash.Sum with fixed algorithm and length.
func CIDString(data []byte) string {
	id, err := CID(data)
	if err != nil {
		return ""
	}
	return id.String()
}

// ArtifactCID encodes a canonically and returns its CID.
func ArtifactCID(a Artifact) (cid.Cid, error) {
	return CID(Encode(a))
}
