package tool

import "github.com/google/uuid"

// GenerateUUIDV7 returns a time-ordered id, used for transaction records.
func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GenerateAnalysisID returns the opaque token handed back to clients for a
// stored analysis.
func GenerateAnalysisID() string {
	return uuid.NewString()
}
