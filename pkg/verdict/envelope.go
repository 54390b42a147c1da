package verdict

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrHashMismatch signals that envelope data no longer matches its
// recorded hash. Callers treat this as tampering: the payload is
// discarded and the failure follows the deny path, including its own
// audit record.
var ErrHashMismatch = errors.New("envelope data hash mismatch")

// Envelope wraps a response payload with its governance verdict and an
// integrity hash over the payload bytes.
type Envelope struct {
	Data        []byte   `json:"data"`
	DataHash    string   `json:"dataHash"`
	Verdict     *Verdict `json:"governanceVerdict"`
	IsSimulated bool     `json:"isSimulated"`
}

// NewEnvelope seals data with its hash and verdict. A nil verdict is a
// contract violation and fails explicitly.
func NewEnvelope(data []byte, v *Verdict, simulated bool) (*Envelope, error) {
	if v == nil {
		return nil, fmt.Errorf("envelope requires a sealed verdict")
	}
	return &Envelope{
		Data:        data,
		DataHash:    hashData(data),
		Verdict:     v,
		IsSimulated: simulated,
	}, nil
}

// Validate recomputes the data hash and compares it to the recorded
// hash. Returns ErrHashMismatch when the payload has been altered.
func (e *Envelope) Validate() error {
	computed := hashData(e.Data)
	if subtle.ConstantTimeCompare([]byte(computed), []byte(e.DataHash)) != 1 {
		return fmt.Errorf("%w: recorded %s, computed %s", ErrHashMismatch, e.DataHash, computed)
	}
	return nil
}

func hashData(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
