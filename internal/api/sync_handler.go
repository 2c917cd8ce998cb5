package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/lexis/internal/api/shared"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/redact"
	"github.com/phrazzld/lexis/internal/service"
)

// SyncHandler exchanges snapshots with other devices.
type SyncHandler struct {
	syncService service.SyncService
	logger      *slog.Logger
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(syncService service.SyncService, logger *slog.Logger) *SyncHandler {
	if syncService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("syncService cannot be nil for SyncHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncHandler{
		syncService: syncService,
		logger:      logger.With(slog.String("component", "sync_handler")),
	}
}

// Export handles GET /api/sync/export. The snapshot is served as a
// downloadable JSON document.
func (h *SyncHandler) Export(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.syncService.Export(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to export snapshot")
		return
	}

	filename := fmt.Sprintf("lexis-%s.json", snapshot.ExportedAt.UTC().Format("20060102T150405Z"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	shared.RespondWithJSON(w, r, http.StatusOK, snapshot)
}

// Import handles POST /api/sync/import?dry_run=.
// Schema mismatches are rejected with 400, snapshots that would break the
// one-item-per-term invariant with 422.
func (h *SyncHandler) Import(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	dryRun, err := queryBool(r, "dry_run")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var snapshot domain.SyncSnapshot
	if err := shared.DecodeJSONLenient(w, r, &snapshot); err != nil {
		log.Warn("invalid snapshot format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid snapshot format")
		return
	}

	report, err := h.syncService.Import(r.Context(), &snapshot, service.ImportOptions{DryRun: dryRun})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import snapshot")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ImportResponse{
		DryRun:  dryRun,
		Changed: report.Changed(),
		Report:  report,
	})
}
