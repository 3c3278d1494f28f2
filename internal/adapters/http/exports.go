package httpadapter

import (
	"bytes"
	"net/http"

	"github.com/dealdesk/diligence/internal/core/domain"
)

// Exports buffer before writing so a repository failure can still produce a
// clean error status instead of a half-written download.
func (rt *Router) exportFindingsCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := rt.exports.FindingsCSV(r.Context(), r.PathValue("projectID"), exportFilter(r), &buf)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.metrics.RecordExport(serviceName, "csv", countLines(buf.Bytes())-1)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="findings.csv"`)
	_, _ = w.Write(buf.Bytes())
}

func (rt *Router) exportFindingsXLSX(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := rt.exports.FindingsXLSX(r.Context(), r.PathValue("projectID"), exportFilter(r), &buf)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.metrics.RecordExport(serviceName, "xlsx", -1)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="findings.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}

func (rt *Router) exportReportHTML(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := rt.exports.ReportHTML(r.Context(), r.PathValue("projectID"), &buf); err != nil {
		writeError(w, err)
		return
	}
	rt.metrics.RecordExport(serviceName, "html", -1)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func exportFilter(r *http.Request) domain.FindingFilter {
	query := r.URL.Query()
	return domain.FindingFilter{
		Status: query.Get("status"),
		Domain: query.Get("domain"),
	}
}

func countLines(b []byte) int {
	return bytes.Count(b, []byte("\n"))
}
