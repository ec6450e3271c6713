// Package domain contains core domain types for the CrushCourt application.
package domain

import "fmt"

// Participant identifies one of the two people sharing a court.
type Participant string

// Default participant identifiers.
const (
	Me  Participant = "me"
	Him Participant = "him"
)

// Pair holds the two configured participants.
type Pair struct {
	A Participant
	B Participant
}

// DefaultPair returns the me/him pair.
func DefaultPair() Pair {
	return Pair{A: Me, B: Him}
}

// Contains reports whether p is one of the pair.
func (p Pair) Contains(who Participant) bool {
	return who != "" && (who == p.A || who == p.B)
}

// Other returns the partner of who.
func (p Pair) Other(who Participant) (Participant, error) {
	switch who {
	case p.A:
		return p.B, nil
	case p.B:
		return p.A, nil
	default:
		return "", NewValidationError("participant", fmt.Sprintf("unknown participant %q", who))
	}
}

// All returns both participants in configuration order.
func (p Pair) All() []Participant {
	return []Participant{p.A, p.B}
}
