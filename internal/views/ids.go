package views

import "github.com/google/uuid"

// validID reports whether id has the canonical UUID form the API issues.
// Anything else is refused before it reaches a request path.
func validID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
