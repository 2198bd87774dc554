package transfer

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/qri-io/jsonschema"

	"github.com/garnizeh/candidatures/internal/models"
	"github.com/garnizeh/candidatures/pkg/apperror"
)

//go:embed schema.json
var importSchemaJSON []byte

var (
	importSchemaOnce sync.Once
	importSchema     *jsonschema.Schema
	importSchemaErr  error
)

func loadImportSchema() (*jsonschema.Schema, error) {
	importSchemaOnce.Do(func() {
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(importSchemaJSON, rs); err != nil {
			importSchemaErr = fmt.Errorf("compile import schema: %w", err)
			return
		}
		importSchema = rs
	})
	return importSchema, importSchemaErr
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

// JSONSource decodes an export document or a bare array of applications.
// Only applications are imported.
type JSONSource struct {
	records []ApplicationRecord
	pos     int
}

var _ Source = (*JSONSource)(nil)

// NewJSONSource validates data against the import schema before decoding it,
// so a malformed document yields no records at all.
func NewJSONSource(ctx context.Context, data []byte) (*JSONSource, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	schema, err := loadImportSchema()
	if err != nil {
		return nil, err
	}
	verrs, err := schema.ValidateBytes(ctx, data)
	if err != nil {
		return nil, apperror.New(apperror.KindValidation, "invalid json document", err)
	}
	if len(verrs) > 0 {
		msgs := make([]string, 0, len(verrs))
		for _, ve := range verrs {
			msgs = append(msgs, strings.TrimSpace(ve.PropertyPath+" "+ve.Message))
		}
		return nil, apperror.Validation("json document does not match the import schema: " + strings.Join(msgs, "; "))
	}

	var records []ApplicationRecord
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &records)
	} else {
		var doc Document
		err = json.Unmarshal(trimmed, &doc)
		records = doc.Applications
	}
	if err != nil {
		return nil, apperror.New(apperror.KindValidation, "invalid json document", err)
	}
	return &JSONSource{records: records}, nil
}

func (s *JSONSource) Next() (*models.Application, error) {
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	r := s.records[s.pos]
	s.pos++
	return r.application(), nil
}

// Len reports the number of records in the document.
func (s *JSONSource) Len() int {
	return len(s.records)
}
