package models

import (
	"fmt"
	"strings"
	"time"
)

// Privacy controls who may view a list.
type Privacy string

const (
	PrivacyPrivate Privacy = "Private"
	PrivacyPublic  Privacy = "Public"
)

// ParsePrivacy accepts "Private" or "Public" in any case. An empty value
// defaults to Private.
func ParsePrivacy(s string) (Privacy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "private":
		return PrivacyPrivate, nil
	case "public":
		return PrivacyPublic, nil
	default:
		return "", fmt.Errorf("unknown privacy %q", s)
	}
}

// MovieList is a named, owned collection of titles. Names are unique across
// all users.
type MovieList struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Owner     string        `json:"owner"`
	Privacy   Privacy       `json:"privacy"`
	Movies    []MovieRecord `json:"movies"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Clone returns a deep copy of the list.
func (l MovieList) Clone() MovieList {
	out := l
	out.Movies = make([]MovieRecord, len(l.Movies))
	for i, m := range l.Movies {
		out.Movies[i] = m.Clone()
	}
	return out
}
