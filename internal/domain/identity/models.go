package identity

import "time"

type User struct {
	ID         string `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Position   string `json:"position"`
	Department string `json:"department"`
	Active     bool   `json:"active"`
}

func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Leader is an explicit leadership designation, separate from the MANAGER
// role: a senior engineer can be a leader without managing anyone.
type Leader struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	LeadershipTitle string     `json:"leadershipTitle"`
	Department      string     `json:"department"`
	StartedOn       time.Time  `json:"startedOn"`
	EndedOn         *time.Time `json:"endedOn,omitempty"`
	Active          bool       `json:"active"`
}
