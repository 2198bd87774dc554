package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/garnizeh/candidatures/internal/tracker"
	"github.com/garnizeh/candidatures/internal/transfer"
	"github.com/garnizeh/candidatures/pkg/apperror"
)

const maxImportBytes = 10 << 20

// TransferHandler serves statistics, exports and imports.
type TransferHandler struct {
	svc *tracker.Service
	now func() time.Time
}

func NewTransferHandler(svc *tracker.Service) *TransferHandler {
	return &TransferHandler{svc: svc, now: time.Now}
}

func (h *TransferHandler) Stats(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	sum, err := h.svc.Stats(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, sum, http.StatusOK)
}

func (h *TransferHandler) AdvancedStats(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	adv, err := h.svc.AdvancedStats(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, adv, http.StatusOK)
}

func (h *TransferHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	apps, err := h.svc.ListApplications(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := transfer.WriteCSV(&buf, apps); err != nil {
		writeError(w, r, apperror.Store(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment("csv", h.now()))
	_, _ = w.Write(buf.Bytes())
}

func (h *TransferHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	doc, err := h.svc.Export(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := transfer.WriteJSON(&buf, doc); err != nil {
		writeError(w, r, apperror.Store(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", attachment("json", h.now()))
	_, _ = w.Write(buf.Bytes())
}

type importResponse struct {
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// Import reads the multipart "file" field. The format comes from the
// "format" query parameter or else the file extension.
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, apperror.New(apperror.KindValidation, "missing import file", err))
		return
	}
	defer file.Close()

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	}

	src, err := h.source(r, format, file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.svc.Import(r.Context(), owner, src)
	if err != nil {
		if res.Count == 0 {
			writeError(w, r, err)
			return
		}
		writeJSON(w, importResponse{Count: res.Count, Error: apperror.Message(err)}, http.StatusOK)
		return
	}

	writeJSON(w, importResponse{Count: res.Count}, http.StatusOK)
}

func (h *TransferHandler) source(r *http.Request, format string, body io.Reader) (transfer.Source, error) {
	switch format {
	case "csv":
		return transfer.NewCSVSource(body)
	case "json":
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, apperror.New(apperror.KindValidation, "cannot read import file", err)
		}
		return transfer.NewJSONSource(r.Context(), data)
	default:
		return nil, apperror.Validation(fmt.Sprintf("unsupported import format %q", format))
	}
}

func attachment(ext string, at time.Time) string {
	return fmt.Sprintf(`attachment; filename="candidatures_%s.%s"`, at.Format("20060102"), ext)
}
