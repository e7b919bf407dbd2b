package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultSignatureTolerance bounds how stale a signed webhook may be.
const DefaultSignatureTolerance = 5 * time.Minute

// ComputeSignature returns the hex HMAC-SHA256 of "<timestamp>.<payload>".
func ComputeSignature(secret string, timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeader builds the header value the provider sends:
// "t=<timestamp>,v1=<hex signature>".
func SignatureHeader(secret string, timestamp int64, payload []byte) string {
	return fmt.Sprintf("t=%d,v1=%s", timestamp, ComputeSignature(secret, timestamp, payload))
}

// VerifySignature checks a webhook signature header against the payload.
// Any v1 signature in the header may match (the provider sends several
// during secret rotation).
func VerifySignature(secret, header string, payload []byte, now time.Time, tolerance time.Duration) error {
	var timestamp int64 = -1
	var candidates []string

	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return ErrInvalidSignature
			}
			timestamp = parsed
		case "v1":
			candidates = append(candidates, value)
		}
	}

	if timestamp < 0 || len(candidates) == 0 {
		return ErrInvalidSignature
	}
	if tolerance > 0 {
		age := now.Sub(time.Unix(timestamp, 0))
		if age > tolerance || age < -tolerance {
			return ErrSignatureExpired
		}
	}

	expected := ComputeSignature(secret, timestamp, payload)
	for _, candidate := range candidates {
		if hmac.Equal([]byte(candidate), []byte(expected)) {
			return nil
		}
	}
	return ErrInvalidSignature
}
