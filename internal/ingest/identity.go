package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/DocChatAPI/internal/adapter/utils"
)

// fingerprint width in hex chars, 48 bits of content hash
const fingerprintLen = 12

// NewSessionPrefix derives the fixed session-scoped id prefix from the session
// creation time plus a short random discriminator. It is generated exactly once,
// at session creation - every later identity derivation is pure.
func NewSessionPrefix(createdAt time.Time) string {
	day := createdAt.Format("02")
	month := strings.ToLower(createdAt.Format("Jan"))
	year := createdAt.Format("2006")
	timePart := strings.ToLower(strings.TrimPrefix(createdAt.Format("3:04_PM"), "0"))

	return fmt.Sprintf("session_%s_%s_%s_%s_%s", day, month, year, timePart, utils.ShortUUID(4))
}

// AssignID produces the stable chunk id:
//
//	<sessionPrefix>__<position>_<sha256(source :: normalized content)[:12]>
//
// No randomness and no clock reads - identical inputs always reproduce the same
// id, which is what makes re-ingestion idempotent. Position keeps two chunks
// with identical content at different offsets of the same source distinct.
func AssignID(sessionPrefix string, source string, position int, content string) string {
	sum := sha256.Sum256([]byte(source + "::" + utils.NormalizeText(content)))
	fingerprint := hex.EncodeToString(sum[:])[:fingerprintLen]
	return fmt.Sprintf("%s__%d_%s", sessionPrefix, position, fingerprint)
}
