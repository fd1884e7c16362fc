package util

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// NewAffiliateID mints an opaque affiliate identifier: "AFF" followed by
// 10 uppercase hex characters. Collision probability within a tenant
// partition is negligible for the partition sizes this add-on serves.
func NewAffiliateID() string {
	b := make([]byte, 5)
	_, _ = rand.Read(b)
	return "AFF" + strings.ToUpper(hex.EncodeToString(b))
}
