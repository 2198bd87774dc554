package models

import (
	"strings"
	"time"
)

// Status is the lifecycle state of an application.
type Status string

const (
	StatusSubmitted  Status = "submitted"
	StatusFollowedUp Status = "followedUp"
	StatusInterview  Status = "interview"
	StatusRejected   Status = "rejected"
	StatusAccepted   Status = "accepted"
)

// Statuses lists every known status in lifecycle order.
var Statuses = []Status{StatusSubmitted, StatusFollowedUp, StatusInterview, StatusRejected, StatusAccepted}

// legacyStatuses maps the values written by the first version of the tracker.
var legacyStatuses = map[string]Status{
	"envoyee":   StatusSubmitted,
	"relancee":  StatusFollowedUp,
	"entretien": StatusInterview,
	"refusee":   StatusRejected,
	"acceptee":  StatusAccepted,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether the status counts as a response from the company.
func (s Status) Terminal() bool {
	return s == StatusInterview || s == StatusRejected || s == StatusAccepted
}

// ParseStatus resolves raw input to a status. Unknown or empty input yields
// StatusSubmitted and ok=false.
func ParseStatus(raw string) (Status, bool) {
	raw = strings.TrimSpace(raw)
	if s := Status(raw); s.Valid() {
		return s, true
	}
	if s, ok := legacyStatuses[strings.ToLower(raw)]; ok {
		return s, true
	}
	for _, s := range Statuses {
		if strings.EqualFold(raw, string(s)) {
			return s, true
		}
	}
	return StatusSubmitted, false
}

type Owner struct {
	ID           int64      `json:"id" db:"id"`
	Handle       string     `json:"handle" db:"handle"`
	Contact      string     `json:"contact" db:"contact"`
	PasswordHash string     `json:"-" db:"password_hash"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty" db:"last_login"`
}

// FollowUp is one entry of an application's follow-up history.
type FollowUp struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

type Application struct {
	ID            int64      `json:"id" db:"id"`
	OwnerID       int64      `json:"-" db:"owner_id"`
	Company       string     `json:"company" db:"company"`
	Position      string     `json:"position" db:"position"`
	Status        Status     `json:"status" db:"status"`
	SubmittedDate *string    `json:"submitted_date,omitempty" db:"submitted_date"`
	PostingLink   *string    `json:"posting_link,omitempty" db:"posting_link"`
	ContactEmail  *string    `json:"contact_email,omitempty" db:"contact_email"`
	ContactPhone  *string    `json:"contact_phone,omitempty" db:"contact_phone"`
	Skills        []string   `json:"skills" db:"skills_json"`
	Notes         *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	FollowUps     []FollowUp `json:"follow_ups" db:"follow_ups_json"`
}

type Certification struct {
	ID         int64     `json:"id" db:"id"`
	OwnerID    int64     `json:"-" db:"owner_id"`
	Name       string    `json:"name" db:"name"`
	ObtainedOn *string   `json:"obtained_on,omitempty" db:"obtained_on"`
	ExpiresOn  *string   `json:"expires_on,omitempty" db:"expires_on"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type Skill struct {
	ID        int64     `json:"id" db:"id"`
	OwnerID   int64     `json:"-" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DefaultSkillCatalog is seeded for every new owner and restored by a skills reset.
var DefaultSkillCatalog = []string{
	"monitoring", "scripting", "virtualisation", "firewall", "pentest",
	"soc", "incident-response", "compliance", "kubernetes", "docker",
	"ansible", "terraform", "aws", "azure", "gcp", "linux", "windows",
	"python", "powershell", "bash", "siem", "forensic", "malware-analysis",
}

// NormalizeSkills trims names, drops blanks and duplicates, and keeps the first
// occurrence order.
func NormalizeSkills(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// StringPtr returns nil for blank input, otherwise a pointer to the trimmed value.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
