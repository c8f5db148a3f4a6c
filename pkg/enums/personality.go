package enums

import "fmt"

// Personality is the user-selected tone profile. It drives both notification
// wording and the audio cue rendered for a popup.
type Personality string

const (
	PersonalityFriendly Personality = "friendly"
	PersonalityCoach    Personality = "coach"
	PersonalitySassy    Personality = "sassy"
	PersonalityZen      Personality = "zen"
)

var validPersonalities = []Personality{
	PersonalityFriendly,
	PersonalityCoach,
	PersonalitySassy,
	PersonalityZen,
}

// IsValid checks whether the given personality matches the canonical enum.
func (p Personality) IsValid() bool {
	for _, candidate := range validPersonalities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePersonality converts raw strings into Personality.
func ParsePersonality(value string) (Personality, error) {
	for _, candidate := range validPersonalities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid personality %q", value)
}
