package relay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Signature header names set on every signed relay request.
const (
	HeaderSignature = "X-Relay-Signature"
	HeaderTimestamp = "X-Relay-Timestamp"
	HeaderID        = "X-Relay-ID"
)

var (
	ErrMissingSignature  = errors.New("relay: signature is missing")
	ErrSignatureMismatch = errors.New("relay: signature mismatch")
	ErrSignatureExpired  = errors.New("relay: signature timestamp outside allowed window")
)

// Signature binds a payload to a timestamp and a unique request id.
type Signature struct {
	Value     string
	Timestamp int64
	ID        string
}

// Apply sets the signature headers on h.
func (s Signature) Apply(h http.Header) {
	h.Set(HeaderSignature, s.Value)
	h.Set(HeaderTimestamp, strconv.FormatInt(s.Timestamp, 10))
	h.Set(HeaderID, s.ID)
}

// Sign computes hex(HMAC-SHA256(secret, "<unix ts>.<payload>")).
func Sign(secret string, payload []byte, at time.Time) Signature {
	ts := at.Unix()
	return Signature{
		Value:     mac(secret, ts, payload),
		Timestamp: ts,
		ID:        uuid.NewString(),
	}
}

// Verify checks a signed request as the relay endpoint would. A zero maxAge
// disables the timestamp window check.
func Verify(secret string, payload []byte, h http.Header, maxAge time.Duration, now time.Time) error {
	sig := h.Get(HeaderSignature)
	if sig == "" {
		return ErrMissingSignature
	}
	ts, err := strconv.ParseInt(h.Get(HeaderTimestamp), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", ErrMissingSignature)
	}

	if maxAge > 0 {
		age := now.Sub(time.Unix(ts, 0))
		if age > maxAge || age < -time.Minute {
			return ErrSignatureExpired
		}
	}

	if !hmac.Equal([]byte(mac(secret, ts, payload)), []byte(sig)) {
		return ErrSignatureMismatch
	}
	return nil
}

func mac(secret string, ts int64, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "%d.", ts)
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
