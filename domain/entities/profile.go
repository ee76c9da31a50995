package entities

import (
	"errors"
	"strings"
)

// Profile describes the child every feature is personalised for. It is a
// value: views read it and the shell replaces it whole.
type Profile struct {
	Name     string `json:"name" bson:"name"`
	Age      int    `json:"age" bson:"age"`
	Language string `json:"language" bson:"language"`
	Mood     string `json:"mood,omitempty" bson:"mood,omitempty"`
}

// DefaultProfile is the profile every new session starts with.
func DefaultProfile() Profile {
	return Profile{
		Name:     "Lily",
		Age:      2,
		Language: "English",
		Mood:     "happy",
	}
}

// Validate validates the profile data
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	if p.Age < 0 {
		return errors.New("age must not be negative")
	}
	if strings.TrimSpace(p.Language) == "" {
		return errors.New("language is required")
	}
	return nil
}
