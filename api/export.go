package api

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"pricehound/pkg/errors"
	"pricehound/services/export"
)

// ExportRequest carries client-held rows for server-side file rendering
type ExportRequest struct {
	Rows []export.Row `json:"rows"`
}

// parseExport decodes and validates an export request body
func parseExport(r *http.Request) ([]export.Row, error) {
	defer r.Body.Close()

	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.NewValidation("invalid JSON body: " + err.Error())
	}
	if len(req.Rows) == 0 {
		return nil, errors.NewValidation("no rows provided")
	}
	return req.Rows, nil
}

// ExportCSV streams the posted rows back as a CSV download
func (s *Server) ExportCSV(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rows, err := parseExport(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="items.csv"`)
	if err := export.WriteCSV(w, rows); err != nil {
		s.log.Error().Err(err).Msg("CSV export failed mid-stream")
	}
}

// ExportXLSX returns the posted rows as a workbook
func (s *Server) ExportXLSX(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rows, err := parseExport(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	data, err := export.WriteXLSX(rows)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="items.xlsx"`)
	if _, err := w.Write(data); err != nil {
		s.log.Error().Err(err).Msg("XLSX export failed mid-stream")
	}
}
