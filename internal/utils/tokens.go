package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateParticipantID returns a short anonymous id: the first 8 hex
// characters of a random UUID.
func GenerateParticipantID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
