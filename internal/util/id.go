package util

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewSuggestionID mints an id from the name, the current time and a random
// suffix, so repeated names across batches never collide.
func NewSuggestionID(name string) string {
	return fmt.Sprintf("%s-%d-%s", name, time.Now().UnixNano(), uuid.NewString()[:8])
}
