package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/domain/syncmerge"
	"github.com/phrazzld/lexis/internal/events"
	"github.com/phrazzld/lexis/internal/platform/logger"
)

// ImportOptions tunes SyncService.Import.
type ImportOptions struct {
	// DryRun computes the report without writing anything.
	DryRun bool
}

// SyncService exchanges snapshots with other devices.
type SyncService interface {
	// Export returns every item and review log as a snapshot.
	Export(ctx context.Context) (*domain.SyncSnapshot, error)

	// Import merges incoming into the local data and persists the result
	// atomically. Returns domain.ErrIncompatibleSchema for a foreign schema
	// version and domain.ErrMergeInvariantViolation for malformed input.
	Import(ctx context.Context, incoming *domain.SyncSnapshot, opts ImportOptions) (domain.MergeReport, error)
}

type syncServiceImpl struct {
	runtime
	tx     TxManager
	logger *slog.Logger
}

var _ SyncService = (*syncServiceImpl)(nil)

// NewSyncService creates a new SyncService.
func NewSyncService(tx TxManager, logger *slog.Logger, opts ...Option) (SyncService, error) {
	if tx == nil {
		return nil, NewServiceError("sync", "init", "tx manager cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &syncServiceImpl{
		runtime: newRuntime(opts),
		tx:      tx,
		logger:  logger.With(slog.String("component", "sync_service")),
	}, nil
}

// Export implements SyncService.Export.
// Items and logs are read in one read-only transaction so a review committed
// meanwhile shows up on both sides or on neither. Logs whose item is missing
// are left out so the snapshot never references an unknown item.
func (s *syncServiceImpl) Export(ctx context.Context) (*domain.SyncSnapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		items []*domain.VocabularyItem
		logs  []*domain.ReviewLogEntry
	)
	err := s.tx.InReadTx(ctx, func(ctx context.Context, tx Stores) error {
		var err error
		if items, err = tx.Vocabs.List(ctx); err != nil {
			return err
		}
		logs, err = tx.ReviewLogs.List(ctx)
		return err
	})
	if err != nil {
		log.Error("failed to load snapshot", slog.String("error", err.Error()))
		return nil, NewServiceError("sync", "export", "failed to load data", err)
	}

	known := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		known[item.ID] = struct{}{}
	}
	kept := logs[:0]
	for _, entry := range logs {
		if _, ok := known[entry.VocabID]; ok {
			kept = append(kept, entry)
		}
	}

	snapshot := domain.NewSyncSnapshot(items, kept, s.now())
	syncmerge.Sort(snapshot)

	log.Info("snapshot exported",
		slog.Int("vocabs", len(snapshot.Vocabs)),
		slog.Int("review_logs", len(snapshot.ReviewLogs)))
	s.emit(ctx, log, events.TypeSyncExported, events.SyncExportedPayload{
		Vocabs:     len(snapshot.Vocabs),
		ReviewLogs: len(snapshot.ReviewLogs),
	})
	return snapshot, nil
}

// Import implements SyncService.Import.
func (s *syncServiceImpl) Import(
	ctx context.Context,
	incoming *domain.SyncSnapshot,
	opts ImportOptions,
) (domain.MergeReport, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if incoming == nil {
		return domain.MergeReport{}, domain.ErrMergeInvariantViolation
	}
	if incoming.SchemaVersion != domain.SnapshotSchemaVersion {
		log.Warn("rejected snapshot with unsupported schema",
			slog.String("schema_version", incoming.SchemaVersion))
		return domain.MergeReport{}, domain.ErrIncompatibleSchema
	}

	var report domain.MergeReport
	err := s.tx.InTx(ctx, func(ctx context.Context, tx Stores) error {
		if err := tx.Vocabs.LockAll(ctx); err != nil {
			return err
		}

		items, err := tx.Vocabs.List(ctx)
		if err != nil {
			return err
		}
		logs, err := tx.ReviewLogs.List(ctx)
		if err != nil {
			return err
		}

		now := s.now()
		local := domain.NewSyncSnapshot(items, logs, now)
		merged, r, err := syncmerge.Merge(local, incoming, now, s.newID)
		if err != nil {
			return err
		}
		report = r

		if opts.DryRun {
			return nil
		}
		return persistMerged(ctx, tx, local, merged)
	})
	if err != nil {
		if isClientError(err) || isMergeError(err) {
			log.Warn("snapshot rejected", slog.String("error", err.Error()))
			return domain.MergeReport{}, err
		}
		log.Error("failed to import snapshot", slog.String("error", err.Error()))
		return domain.MergeReport{}, NewServiceError("sync", "import", "failed to persist merge", err)
	}

	log.Info("snapshot imported",
		slog.Bool("dry_run", opts.DryRun),
		slog.Int("added_vocabs", report.AddedVocabs),
		slog.Int("updated_vocabs", report.UpdatedVocabs),
		slog.Int("added_logs", report.AddedLogs),
		slog.Int("conflicts", len(report.Conflicts)))
	if !opts.DryRun {
		s.emit(ctx, log, events.TypeSyncImported, events.SyncImportedPayload{
			AddedVocabs:   report.AddedVocabs,
			UpdatedVocabs: report.UpdatedVocabs,
			AddedLogs:     report.AddedLogs,
			SkippedVocabs: report.SkippedVocabs,
			SkippedLogs:   report.SkippedLogs,
			Conflicts:     len(report.Conflicts),
		})
	}
	return report, nil
}

// persistMerged writes the difference between local and merged: items that
// are new or changed, then logs that are new. Items go first so every log
// finds its item.
func persistMerged(ctx context.Context, tx Stores, local, merged *domain.SyncSnapshot) error {
	localItems := make(map[uuid.UUID]*domain.VocabularyItem, len(local.Vocabs))
	for _, item := range local.Vocabs {
		localItems[item.ID] = item
	}
	for _, item := range merged.Vocabs {
		if prev, ok := localItems[item.ID]; ok && prev.SameContent(item) {
			continue
		}
		if err := tx.Vocabs.Upsert(ctx, item); err != nil {
			return err
		}
	}

	localLogs := make(map[uuid.UUID]struct{}, len(local.ReviewLogs))
	for _, entry := range local.ReviewLogs {
		localLogs[entry.ID] = struct{}{}
	}
	for _, entry := range merged.ReviewLogs {
		if _, ok := localLogs[entry.ID]; ok {
			continue
		}
		if _, err := tx.ReviewLogs.CreateIfAbsent(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

func isMergeError(err error) bool {
	return errors.Is(err, domain.ErrMergeInvariantViolation)
}
