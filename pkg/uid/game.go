package uid

import "github.com/google/uuid"

// GenerateGameID returns a new random game ID
func GenerateGameID() string {
	return uuid.NewString()
}
