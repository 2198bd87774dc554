// Package stats aggregates an owner's applications into dashboard figures.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/garnizeh/candidatures/internal/models"
)

const (
	monthBuckets = 12
	topN         = 10
)

type Summary struct {
	Total        int                   `json:"total"`
	ByStatus     map[models.Status]int `json:"by_status"`
	ResponseRate int                   `json:"response_rate"`
}

// Count is one bucket of a histogram.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Advanced struct {
	Monthly         []Count `json:"monthly"`
	TopCompanies    []Count `json:"top_companies"`
	AvgResponseDays float64 `json:"avg_response_days"`
	TopSkills       []Count `json:"top_skills"`
}

// Summarize counts applications per status. The response rate is the rounded
// share of applications in a terminal status, 0 when there are none.
func Summarize(apps []models.Application) Summary {
	s := Summary{
		Total:    len(apps),
		ByStatus: make(map[models.Status]int, len(models.Statuses)),
	}
	for _, st := range models.Statuses {
		s.ByStatus[st] = 0
	}

	responded := 0
	for _, a := range apps {
		s.ByStatus[a.Status]++
		if a.Status.Terminal() {
			responded++
		}
	}
	if s.Total > 0 {
		s.ResponseRate = int(math.Round(float64(responded) / float64(s.Total) * 100))
	}
	return s
}

// Compute builds the monthly histogram (newest twelve months with data), the
// most frequent companies and skills, and the average number of days between
// the submitted date and the creation of answered applications.
func Compute(apps []models.Application) Advanced {
	months := map[string]int{}
	companies := map[string]int{}
	skills := map[string]int{}

	var totalDays float64
	var answered int

	for _, a := range apps {
		months[a.CreatedAt.Format("2006-01")]++
		companies[a.Company]++
		for _, sk := range a.Skills {
			skills[sk]++
		}

		if !a.Status.Terminal() || a.SubmittedDate == nil {
			continue
		}
		sent, err := time.ParseInLocation("2006-01-02", *a.SubmittedDate, a.CreatedAt.Location())
		if err != nil {
			continue
		}
		totalDays += a.CreatedAt.Sub(sent).Hours() / 24
		answered++
	}

	out := Advanced{
		Monthly:      newestMonths(months),
		TopCompanies: top(companies, topN),
		TopSkills:    top(skills, topN),
	}
	if answered > 0 {
		out.AvgResponseDays = math.Round(totalDays/float64(answered)*10) / 10
	}
	return out
}

func newestMonths(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Name: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	if len(out) > monthBuckets {
		out = out[:monthBuckets]
	}
	return out
}

// top returns the n largest buckets, ties broken by name.
func top(m map[string]int, n int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Name: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
