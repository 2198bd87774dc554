package transfer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/garnizeh/candidatures/internal/models"
	"github.com/garnizeh/candidatures/pkg/apperror"
)

// CSVHeader is the column order of a CSV export.
var CSVHeader = []string{
	"Company", "Position", "Status", "SentDate", "PostingLink",
	"ContactEmail", "ContactPhone", "Skills", "Notes", "FollowUpCount",
}

// templateRow is the example line of the import template.
var templateRow = []string{
	"Example Corp", "Python Developer", "submitted", "2024-01-15", "https://example.com/job",
	"hr@example.com", "0123456789", "python, django, postgresql", "Interesting role",
}

type column int

const (
	colCompany column = iota
	colPosition
	colStatus
	colSentDate
	colPostingLink
	colContactEmail
	colContactPhone
	colSkills
	colNotes
)

// headerAliases maps normalised header names, English and legacy French, to columns.
var headerAliases = map[string]column{
	"company":          colCompany,
	"entreprise":       colCompany,
	"position":         colPosition,
	"poste":            colPosition,
	"status":           colStatus,
	"statut":           colStatus,
	"sentdate":         colSentDate,
	"submitteddate":    colSentDate,
	"dateenvoi":        colSentDate,
	"postinglink":      colPostingLink,
	"lienoffre":        colPostingLink,
	"contactemail":     colContactEmail,
	"contactphone":     colContactPhone,
	"contacttelephone": colContactPhone,
	"skills":           colSkills,
	"competences":      colSkills,
	"notes":            colNotes,
}

// normalizeHeader lowercases, removes accents and drops separators so that
// "Contact téléphone" and "ContactPhone" style names compare equal.
func normalizeHeader(h string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(stripMarks, strings.TrimSpace(h))
	if err != nil {
		s = h
	}
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r == ' ' || r == '_' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// WriteCSV writes apps as UTF-8 CSV with a byte order mark.
func WriteCSV(w io.Writer, apps []models.Application) error {
	return writeBOMCSV(w, CSVHeader, func(cw *csv.Writer) error {
		for _, a := range apps {
			row := []string{
				a.Company,
				a.Position,
				string(a.Status),
				deref(a.SubmittedDate),
				deref(a.PostingLink),
				deref(a.ContactEmail),
				deref(a.ContactPhone),
				strings.Join(a.Skills, ", "),
				deref(a.Notes),
				strconv.Itoa(len(a.FollowUps)),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteTemplate writes the import template: the export header without the
// follow-up count and one example row.
func WriteTemplate(w io.Writer) error {
	return writeBOMCSV(w, CSVHeader[:len(CSVHeader)-1], func(cw *csv.Writer) error {
		return cw.Write(templateRow)
	})
}

func writeBOMCSV(w io.Writer, header []string, rows func(*csv.Writer) error) error {
	tw := transform.NewWriter(w, xunicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(tw)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := rows(cw); err != nil {
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return tw.Close()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CSVSource decodes an import CSV. A leading BOM is skipped.
type CSVSource struct {
	r    *csv.Reader
	idx  map[column]int
	line int
}

var _ Source = (*CSVSource)(nil)

// NewCSVSource reads the header row. Company and Position columns are required.
func NewCSVSource(r io.Reader) (*CSVSource, error) {
	cr := csv.NewReader(transform.NewReader(r, xunicode.BOMOverride(xunicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, apperror.Validation("csv file is empty")
	}
	if err != nil {
		return nil, apperror.New(apperror.KindValidation, "malformed csv header", err)
	}

	idx := make(map[column]int, len(header))
	for i, h := range header {
		if c, ok := headerAliases[normalizeHeader(h)]; ok {
			if _, dup := idx[c]; !dup {
				idx[c] = i
			}
		}
	}
	for _, c := range []column{colCompany, colPosition} {
		if _, ok := idx[c]; !ok {
			return nil, apperror.Validation("csv header must contain Company and Position columns")
		}
	}
	return &CSVSource{r: cr, idx: idx, line: 1}, nil
}

func (s *CSVSource) Next() (*models.Application, error) {
	row, err := s.r.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	s.line++
	if err != nil {
		return nil, apperror.New(apperror.KindValidation, fmt.Sprintf("malformed csv at line %d", s.line), err)
	}

	status, _ := models.ParseStatus(s.cell(row, colStatus))
	return &models.Application{
		Company:       strings.TrimSpace(s.cell(row, colCompany)),
		Position:      strings.TrimSpace(s.cell(row, colPosition)),
		Status:        status,
		SubmittedDate: models.StringPtr(s.cell(row, colSentDate)),
		PostingLink:   models.StringPtr(s.cell(row, colPostingLink)),
		ContactEmail:  models.StringPtr(s.cell(row, colContactEmail)),
		ContactPhone:  models.StringPtr(s.cell(row, colContactPhone)),
		Skills:        SplitSkills(s.cell(row, colSkills)),
		Notes:         models.StringPtr(s.cell(row, colNotes)),
		FollowUps:     []models.FollowUp{},
	}, nil
}

func (s *CSVSource) cell(row []string, c column) string {
	i, ok := s.idx[c]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// SplitSkills splits a comma separated skill list.
func SplitSkills(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	return models.NormalizeSkills(strings.Split(raw, ","))
}
