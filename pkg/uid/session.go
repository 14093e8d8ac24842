package uid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateConnectionID generates a short random ID for a websocket connection
func GenerateConnectionID() (string, error) {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate connection ID: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
