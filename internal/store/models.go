package store

import "time"

type User struct {
	ID           string
	Email        string
	Name         *string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Policy struct {
	ID        string
	PolicyID  string
	Name      string
	Section   string
	Content   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
	UpdatedBy string
}

// PolicyVersion is an immutable snapshot of a policy row taken just before
// an update was applied. VersionNumber is monotonic per policy, from 1.
type PolicyVersion struct {
	ID            string
	PolicyUUID    string
	VersionNumber int
	Name          string
	Section       string
	Content       string
	Status        string
	CreatedAt     time.Time
	CreatedBy     string
}

type Bylaw struct {
	ID        string
	Number    int
	Title     string
	Content   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
	UpdatedBy string
}

type Suggestion struct {
	ID         string
	PolicyUUID *string
	BylawUUID  *string
	Text       string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SuggestionRef carries the human-facing fields of a suggestion's target,
// batch-joined when listing suggestions.
type SuggestionRef struct {
	PolicyCode  *string
	PolicyName  *string
	BylawNumber *int
	BylawTitle  *string
}

type PolicyReview struct {
	ID           string
	PolicyID     string
	UserEmail    string
	ReviewStatus string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type PolicyFilter struct {
	Status   string
	Section  string
	Search   string
	PolicyID string
	Limit    int
	Offset   int
}

type BylawFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}

type SuggestionFilter struct {
	Status     string
	PolicyUUID string
	BylawUUID  string
	Limit      int
	Offset     int
}
