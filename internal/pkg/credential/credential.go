// Package credential produces the redemption tokens embedded in ticket QR
// codes. A token is unique, not secret: it correlates a ticket with its event
// and ticket type for human debugging, and the ticket store's unique index is
// the actual uniqueness guarantee.
package credential

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	prefix      = "TIX"
	randomBytes = 12
)

type Generator interface {
	Generate(ticketID, eventID, ticketTypeID uuid.UUID) (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

// Generate returns a token of the form TIX-<event8>-<type8>-<24 hex>.
// The random suffix carries the uniqueness; collisions are still possible in
// principle and are handled by the insert-and-retry discipline of the caller.
func (g *RandomGenerator) Generate(_, eventID, ticketTypeID uuid.UUID) (string, error) {
	suffix, err := randomHex(randomBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate credential entropy: %w", err)
	}
	return fmt.Sprintf("%s-%s-%s-%s", prefix, shortID(eventID), shortID(ticketTypeID), suffix), nil
}

func shortID(id uuid.UUID) string {
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

func randomHex(n int) (string, error) {
	byt := make([]byte, n)
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(byt)), nil
}
