// Package syncmerge reconciles the local snapshot with one exported from
// another device.
//
// Items are matched by normalized term and resolved last-write-wins on
// UpdatedAt. Review logs are immutable, so they merge as a set union by ID,
// which makes importing the same export twice a no-op.
package syncmerge

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
)

// Merge combines local and incoming into a new snapshot stamped with now.
//
// Per normalized term:
//   - only in incoming: added
//   - only in local: kept
//   - in both: the side with the strictly later UpdatedAt wins as a whole;
//     equal timestamps with different content are reported as a conflict and
//     local is kept
//
// A merged item always keeps the local ID so that existing review logs stay
// attached; incoming logs are re-pointed to it. An item added from incoming
// keeps its own ID unless that ID is nil or already taken by another item,
// as happens after the term was renamed on one device; it then gets a fresh
// ID from newID and its logs follow it. A nil newID means uuid.New.
//
// Incoming items whose term normalizes to nothing and incoming logs whose
// item exists on neither side are skipped and counted in the report.
//
// Merge returns domain.ErrIncompatibleSchema when the schema versions differ
// and domain.ErrMergeInvariantViolation when either input, or the result,
// holds two items with the same term or two logs with the same ID. On error
// the report is empty. Neither input is modified.
func Merge(
	local, incoming *domain.SyncSnapshot,
	now time.Time,
	newID func() uuid.UUID,
) (*domain.SyncSnapshot, domain.MergeReport, error) {
	if local == nil || incoming == nil {
		return nil, domain.MergeReport{}, fmt.Errorf("%w: nil snapshot", domain.ErrMergeInvariantViolation)
	}
	if incoming.SchemaVersion != local.SchemaVersion {
		return nil, domain.MergeReport{}, fmt.Errorf("%w: local %q, incoming %q",
			domain.ErrIncompatibleSchema, local.SchemaVersion, incoming.SchemaVersion)
	}
	if newID == nil {
		newID = uuid.New
	}

	localByKey, err := indexVocabs(local.Vocabs, "local", false)
	if err != nil {
		return nil, domain.MergeReport{}, err
	}
	if _, err := indexVocabs(incoming.Vocabs, "incoming", true); err != nil {
		return nil, domain.MergeReport{}, err
	}
	localLogs, err := indexLogs(local.ReviewLogs, "local")
	if err != nil {
		return nil, domain.MergeReport{}, err
	}
	if _, err := indexLogs(incoming.ReviewLogs, "incoming"); err != nil {
		return nil, domain.MergeReport{}, err
	}

	report := domain.MergeReport{Conflicts: []domain.MergeConflict{}}
	merged := make(map[string]*domain.VocabularyItem, len(localByKey)+len(incoming.Vocabs))
	localIDs := make(map[uuid.UUID]struct{}, len(localByKey))
	// every ID held by an item of the result so far
	usedIDs := make(map[uuid.UUID]struct{}, len(localByKey)+len(incoming.Vocabs))
	for key, item := range localByKey {
		merged[key] = canonical(item, key)
		localIDs[item.ID] = struct{}{}
		usedIDs[item.ID] = struct{}{}
	}

	// incoming item ID -> ID the item has in the merged snapshot
	remap := make(map[uuid.UUID]uuid.UUID, len(incoming.Vocabs))

	for _, in := range incoming.Vocabs {
		if in == nil {
			continue
		}
		key := termKey(in)
		if key == "" {
			report.SkippedVocabs++
			continue
		}
		candidate := canonical(in, key)
		loc, ok := merged[key]
		if !ok {
			if _, taken := usedIDs[candidate.ID]; taken || candidate.ID == uuid.Nil {
				candidate.ID = newID()
			}
			usedIDs[candidate.ID] = struct{}{}
			merged[key] = candidate
			if in.ID != uuid.Nil {
				remap[in.ID] = candidate.ID
			}
			report.AddedVocabs++
			continue
		}

		if in.ID != uuid.Nil {
			remap[in.ID] = loc.ID
		}
		candidate.ID = loc.ID

		switch in.UpdatedAt.Compare(loc.UpdatedAt) {
		case 1:
			if !candidate.SameContent(loc) {
				report.UpdatedVocabs++
			}
			merged[key] = candidate
		case 0:
			if !candidate.SameContent(loc) {
				report.Conflicts = append(report.Conflicts, domain.MergeConflict{
					TermNormalized:    key,
					LocalUpdatedAt:    loc.UpdatedAt,
					IncomingUpdatedAt: in.UpdatedAt,
					Winner:            domain.WinnerLocal,
				})
			}
		}
	}

	logs := make([]*domain.ReviewLogEntry, 0, len(local.ReviewLogs)+len(incoming.ReviewLogs))
	for _, entry := range local.ReviewLogs {
		if entry != nil {
			logs = append(logs, cloneLog(entry))
		}
	}
	for _, entry := range incoming.ReviewLogs {
		if entry == nil {
			continue
		}
		if _, ok := localLogs[entry.ID]; ok {
			continue
		}

		vocabID, ok := remap[entry.VocabID]
		if !ok {
			if _, known := localIDs[entry.VocabID]; !known {
				report.SkippedLogs++
				continue
			}
			vocabID = entry.VocabID
		}

		c := cloneLog(entry)
		c.VocabID = vocabID
		logs = append(logs, c)
		report.AddedLogs++
	}

	vocabs := make([]*domain.VocabularyItem, 0, len(merged))
	for _, item := range merged {
		vocabs = append(vocabs, item)
	}
	sortVocabs(vocabs)
	sortLogs(logs)
	slices.SortFunc(report.Conflicts, func(a, b domain.MergeConflict) int {
		return cmp.Compare(a.TermNormalized, b.TermNormalized)
	})

	out := domain.NewSyncSnapshot(vocabs, logs, now)
	out.SchemaVersion = local.SchemaVersion

	if err := CheckInvariants(out); err != nil {
		return nil, domain.MergeReport{}, err
	}

	return out, report, nil
}

// CheckInvariants verifies that a snapshot holds one item per normalized
// term, one item per ID and one log per ID.
func CheckInvariants(s *domain.SyncSnapshot) error {
	terms := make(map[string]struct{}, len(s.Vocabs))
	ids := make(map[uuid.UUID]struct{}, len(s.Vocabs))
	for _, item := range s.Vocabs {
		if _, dup := terms[item.TermNormalized]; dup {
			return fmt.Errorf("%w: duplicate term %q", domain.ErrMergeInvariantViolation, item.TermNormalized)
		}
		terms[item.TermNormalized] = struct{}{}
		if _, dup := ids[item.ID]; dup {
			return fmt.Errorf("%w: duplicate vocab id %s", domain.ErrMergeInvariantViolation, item.ID)
		}
		ids[item.ID] = struct{}{}
	}

	if _, err := indexLogs(s.ReviewLogs, "merged"); err != nil {
		return err
	}
	return nil
}

// Sort orders a snapshot the way Merge emits it: items by normalized term,
// logs by grading time then ID.
func Sort(s *domain.SyncSnapshot) {
	sortVocabs(s.Vocabs)
	sortLogs(s.ReviewLogs)
}

func indexVocabs(items []*domain.VocabularyItem, side string, incoming bool) (map[string]*domain.VocabularyItem, error) {
	byKey := make(map[string]*domain.VocabularyItem, len(items))
	ids := make(map[uuid.UUID]struct{}, len(items))

	for _, item := range items {
		if item == nil {
			continue
		}
		key := termKey(item)
		if key == "" {
			if incoming {
				continue
			}
			return nil, fmt.Errorf("%w: %s item %s has an empty term", domain.ErrMergeInvariantViolation, side, item.ID)
		}
		if _, dup := byKey[key]; dup {
			return nil, fmt.Errorf("%w: %s snapshot has duplicate term %q", domain.ErrMergeInvariantViolation, side, key)
		}
		// incoming items without an ID get one when they are added
		if _, dup := ids[item.ID]; dup && !(incoming && item.ID == uuid.Nil) {
			return nil, fmt.Errorf("%w: %s snapshot has duplicate vocab id %s", domain.ErrMergeInvariantViolation, side, item.ID)
		}
		byKey[key] = item
		ids[item.ID] = struct{}{}
	}

	return byKey, nil
}

func indexLogs(logs []*domain.ReviewLogEntry, side string) (map[uuid.UUID]*domain.ReviewLogEntry, error) {
	byID := make(map[uuid.UUID]*domain.ReviewLogEntry, len(logs))
	for _, entry := range logs {
		if entry == nil {
			continue
		}
		if _, dup := byID[entry.ID]; dup {
			return nil, fmt.Errorf("%w: %s snapshot has duplicate log id %s", domain.ErrMergeInvariantViolation, side, entry.ID)
		}
		byID[entry.ID] = entry
	}
	return byID, nil
}

// termKey re-derives the identity key so that snapshots written by an
// older client with a looser key still match.
func termKey(item *domain.VocabularyItem) string {
	if item.TermRaw != "" {
		return domain.NormalizeTerm(item.TermRaw)
	}
	return domain.NormalizeTerm(item.TermNormalized)
}

func canonical(item *domain.VocabularyItem, key string) *domain.VocabularyItem {
	c := item.Clone()
	c.TermNormalized = key
	if c.TermRaw == "" {
		c.TermRaw = key
	}
	return c
}

func cloneLog(entry *domain.ReviewLogEntry) *domain.ReviewLogEntry {
	c := *entry
	if entry.Result.LastReviewedAt != nil {
		t := *entry.Result.LastReviewedAt
		c.Result.LastReviewedAt = &t
	}
	return &c
}

func sortVocabs(items []*domain.VocabularyItem) {
	slices.SortFunc(items, func(a, b *domain.VocabularyItem) int {
		if c := cmp.Compare(a.TermNormalized, b.TermNormalized); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}

func sortLogs(logs []*domain.ReviewLogEntry) {
	slices.SortFunc(logs, func(a, b *domain.ReviewLogEntry) int {
		if c := a.GradedAt.Compare(b.GradedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}
