// Package signature implements the HMAC scheme protecting outbox deliveries.
// The signed message is "<unix timestamp>.<raw body>"; receivers recompute it
// and compare with timing-safe equality.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Prefix marks the scheme inside the X-Signature header.
const Prefix = "sha256="

// ReplayWindow is the maximum accepted clock skew between the signing
// timestamp and the receiver's clock.
const ReplayWindow = 300 * time.Second

func Sign(secret []byte, timestamp int64, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(body)
	return Prefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks the header against the body and timestamp. It rejects
// signatures whose timestamp lies outside the replay window around now.
func Verify(secret []byte, header string, timestamp int64, body []byte, now time.Time) bool {
	skew := now.Unix() - timestamp
	if skew < 0 {
		skew = -skew
	}
	if skew > int64(ReplayWindow/time.Second) {
		return false
	}
	expected := Sign(secret, timestamp, body)
	return hmac.Equal([]byte(header), []byte(expected))
}
