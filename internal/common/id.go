package common

import (
	"github.com/google/uuid"
)

// NewSessionID generates a unique processing session ID with the "ses_" prefix
// Format: ses_<uuid>
func NewSessionID() string {
	return "ses_" + uuid.New().String()
}

// NewArtifactID generates a unique artifact ID with the "art_" prefix
// Format: art_<uuid>
func NewArtifactID() string {
	return "art_" + uuid.New().String()
}
