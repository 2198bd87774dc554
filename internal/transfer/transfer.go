// Package transfer encodes applications to CSV and JSON and decodes import
// files back into application records.
package transfer

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/garnizeh/candidatures/internal/models"
)

// Version is written into every JSON export document.
const Version = "1.0"

// Source yields decoded applications one at a time and returns io.EOF when
// exhausted. Returned records carry no id, owner or creation time.
type Source interface {
	Next() (*models.Application, error)
}

// ReadAll drains src. It is meant for tests and small inputs.
func ReadAll(src Source) ([]models.Application, error) {
	var out []models.Application
	for {
		a, err := src.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, *a)
	}
}

type ApplicationRecord struct {
	Company       string            `json:"company"`
	Position      string            `json:"position"`
	Status        string            `json:"status"`
	SubmittedDate *string           `json:"submitted_date,omitempty"`
	PostingLink   *string           `json:"posting_link,omitempty"`
	ContactEmail  *string           `json:"contact_email,omitempty"`
	ContactPhone  *string           `json:"contact_phone,omitempty"`
	Skills        []string          `json:"skills"`
	Notes         *string           `json:"notes,omitempty"`
	FollowUps     []models.FollowUp `json:"follow_ups"`
}

// legacyRecord holds the keys written by the first version of the tracker.
// They fill a field only when its current key is absent.
type legacyRecord struct {
	DateEnvoi    *string          `json:"dateEnvoi"`
	LienOffre    *string          `json:"lienOffre"`
	ContactEmail *string          `json:"contactEmail"`
	ContactPhone *string          `json:"contactPhone"`
	Competences  []string         `json:"competences"`
	Relances     []legacyFollowUp `json:"relances"`
}

type legacyFollowUp struct {
	Date    string `json:"date"`
	Message string `json:"message"`
}

// Timestamps without a zone are read as UTC.
var legacyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func parseLegacyTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range legacyTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised follow-up date %q", raw)
}

func (r *ApplicationRecord) UnmarshalJSON(data []byte) error {
	type plain ApplicationRecord
	var cur plain
	if err := json.Unmarshal(data, &cur); err != nil {
		return err
	}
	var old legacyRecord
	if err := json.Unmarshal(data, &old); err != nil {
		return err
	}

	if cur.SubmittedDate == nil {
		cur.SubmittedDate = old.DateEnvoi
	}
	if cur.PostingLink == nil {
		cur.PostingLink = old.LienOffre
	}
	if cur.ContactEmail == nil {
		cur.ContactEmail = old.ContactEmail
	}
	if cur.ContactPhone == nil {
		cur.ContactPhone = old.ContactPhone
	}
	if cur.Skills == nil {
		cur.Skills = old.Competences
	}
	if cur.FollowUps == nil && old.Relances != nil {
		cur.FollowUps = make([]models.FollowUp, 0, len(old.Relances))
		for _, f := range old.Relances {
			ts, err := parseLegacyTime(f.Date)
			if err != nil {
				return err
			}
			cur.FollowUps = append(cur.FollowUps, models.FollowUp{Timestamp: ts, Message: f.Message})
		}
	}

	*r = ApplicationRecord(cur)
	return nil
}

type CertificationRecord struct {
	Name       string  `json:"name"`
	ObtainedOn *string `json:"obtained_on,omitempty"`
	ExpiresOn  *string `json:"expires_on,omitempty"`
}

// Document is the JSON export format.
type Document struct {
	Applications   []ApplicationRecord   `json:"applications"`
	Certifications []CertificationRecord `json:"certifications"`
	Skills         []string              `json:"skills"`
	ExportedAt     time.Time             `json:"exported_at"`
	Version        string                `json:"version"`
}

// NewDocument builds an export document. Ids, owners and creation times are
// not exported.
func NewDocument(apps []models.Application, certs []models.Certification, skills []models.Skill, at time.Time) Document {
	doc := Document{
		Applications:   make([]ApplicationRecord, 0, len(apps)),
		Certifications: make([]CertificationRecord, 0, len(certs)),
		Skills:         make([]string, 0, len(skills)),
		ExportedAt:     at,
		Version:        Version,
	}
	for _, a := range apps {
		doc.Applications = append(doc.Applications, recordFromApplication(a))
	}
	for _, c := range certs {
		doc.Certifications = append(doc.Certifications, CertificationRecord{Name: c.Name, ObtainedOn: c.ObtainedOn, ExpiresOn: c.ExpiresOn})
	}
	for _, s := range skills {
		doc.Skills = append(doc.Skills, s.Name)
	}
	return doc
}

func recordFromApplication(a models.Application) ApplicationRecord {
	r := ApplicationRecord{
		Company:       a.Company,
		Position:      a.Position,
		Status:        string(a.Status),
		SubmittedDate: a.SubmittedDate,
		PostingLink:   a.PostingLink,
		ContactEmail:  a.ContactEmail,
		ContactPhone:  a.ContactPhone,
		Skills:        a.Skills,
		Notes:         a.Notes,
		FollowUps:     a.FollowUps,
	}
	if r.Skills == nil {
		r.Skills = []string{}
	}
	if r.FollowUps == nil {
		r.FollowUps = []models.FollowUp{}
	}
	return r
}

func (r ApplicationRecord) application() *models.Application {
	status, _ := models.ParseStatus(r.Status)
	follow := append([]models.FollowUp{}, r.FollowUps...)
	sort.SliceStable(follow, func(i, j int) bool { return follow[i].Timestamp.Before(follow[j].Timestamp) })

	return &models.Application{
		Company:       strings.TrimSpace(r.Company),
		Position:      strings.TrimSpace(r.Position),
		Status:        status,
		SubmittedDate: trimPtr(r.SubmittedDate),
		PostingLink:   trimPtr(r.PostingLink),
		ContactEmail:  trimPtr(r.ContactEmail),
		ContactPhone:  trimPtr(r.ContactPhone),
		Skills:        models.NormalizeSkills(r.Skills),
		Notes:         trimPtr(r.Notes),
		FollowUps:     follow,
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return models.StringPtr(*s)
}
