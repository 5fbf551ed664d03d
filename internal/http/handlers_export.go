package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/export"
	applog "fintrack/internal/log"
)

// handleExport serves GET /api/export?format=csv|xlsx&sort=date&dir=desc as a
// file download. The default ordering matches the expense list view: newest
// first.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if errResp := RequireMethod(r, http.MethodGet); errResp != nil {
		errResp.Write(w)
		return
	}

	ctx := r.Context()
	logger := applog.FromContext(ctx)
	query := r.URL.Query()

	formatStr := strings.TrimSpace(query.Get("format"))
	if formatStr == "" {
		formatStr = string(export.FormatCSV)
	}
	format, err := export.ParseFormat(formatStr)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	sortKey := export.SortByDate
	if v := strings.TrimSpace(query.Get("sort")); v != "" {
		sortKey = export.SortKey(v)
	}
	dir := export.Descending
	if v := strings.TrimSpace(query.Get("dir")); v != "" {
		dir = export.Direction(v)
	}

	expenses := export.SortExpenses(s.store.GetAll(ctx), sortKey, dir)

	var buf bytes.Buffer
	if err := export.Write(&buf, expenses, format); err != nil {
		logger.ErrorContext(ctx, "Export failed",
			applog.FieldError, err,
			applog.FieldExportFmt, string(format),
			applog.FieldRecordCount, len(expenses),
			applog.FieldOperation, applog.OpExport)
		InternalServerError("error generating export").Write(w)
		return
	}

	filename := fmt.Sprintf("expenses-%s.%s", time.Now().Format("2006-01-02"), format)
	contentType := "text/csv; charset=utf-8"
	if format == export.FormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}

	logger.InfoContext(ctx, "Export generated",
		applog.FieldExportFmt, string(format),
		applog.FieldRecordCount, len(expenses),
		applog.FieldOperation, applog.OpExport)

	NewResponse().
		Header("Content-Type", contentType).
		Header("Content-Disposition", `attachment; filename="`+filename+`"`).
		Body(buf.Bytes()).
		Write(w)
}
