package statement

import (
	"crypto/md5"
	"encoding/hex"
)

// Fingerprint derives the dedup identifier for one imported row from the raw
// date string, the raw amount string and the source name, exactly as they
// appeared in the file. It must stay a pure function of its inputs (no salts,
// no clock): the persistence layer compares it against rows imported in
// earlier uploads to reject duplicates across runs and machines.
//
// MD5 is fine here: the digest only needs to be stable and well distributed,
// not collision-resistant against an adversary.
func Fingerprint(rawDate, rawAmount, source string) string {
	sum := md5.Sum([]byte(rawDate + "-" + rawAmount + "-" + source))
	return hex.EncodeToString(sum[:])
}
