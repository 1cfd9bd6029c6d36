package models

import "github.com/google/uuid"

// ValidID reports whether id is a well-formed record identifier: a UUID in
// its canonical 36 character form.
func ValidID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
