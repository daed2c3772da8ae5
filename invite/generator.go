/*
Package invite generates company invitation codes.

PURPOSE:
  An invitation code lets an employee join a company. Codes are short
  enough to share but must be unguessable and unique across every
  company at time of issuance, so they come from crypto/rand and are
  collision-checked against the store before being handed out.

FORMAT:
  6 random bytes, hex-encoded, uppercased: 12 characters, e.g.
  "3F9A0C44B21E".

LIFECYCLE:
  Regeneration overwrites the previous code, which becomes immediately
  invalid; old codes are not retained. The invitation_limit stored next
  to the code is decremented by the employee join flow elsewhere.
*/
package invite

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	codeBytes = 6

	// maxAttempts bounds collision retries. With 16^12 possible codes a
	// handful of retries only ever happens in tests seeded adversarially.
	maxAttempts = 100
)

// ErrExhausted is returned when no unique code was found within the
// retry budget.
var ErrExhausted = errors.New("could not generate a unique invitation code")

// CodeStore checks whether a code is already assigned to any company.
type CodeStore interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// Generate produces a cryptographically random 12-character uppercase
// hex code that no company currently holds.
func Generate(ctx context.Context, store CodeStore) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		buf := make([]byte, codeBytes)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		code := strings.ToUpper(hex.EncodeToString(buf))

		exists, err := store.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrExhausted
}
