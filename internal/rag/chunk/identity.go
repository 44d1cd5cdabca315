package chunk

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// DeriveID maps (url, chunkIndex) to a stable opaque id by hashing the
// string "{url}-{index}". The same pair always yields the same id across
// runs and processes, which is what makes re-ingestion an in-place update
// rather than a duplication. No salts, no timestamps.
//
// The 128-bit digest is rendered in UUID form because vector engines such as
// Qdrant only accept UUID or integer point ids.
func DeriveID(url string, chunkIndex int) string {
	sum := md5.Sum(fmt.Appendf(nil, "%s-%d", url, chunkIndex))
	h := hex.EncodeToString(sum[:])
	return h[0:8] + "-" + h[8:12] + "-" + h[12:16] + "-" + h[16:20] + "-" + h[20:32]
}
