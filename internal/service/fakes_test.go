package service

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/events"
	"github.com/phrazzld/lexis/internal/store"
)

var testNow = time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

// memDB is the shared state behind the in-memory stores.
type memDB struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.VocabularyItem
	logs  map[uuid.UUID]*domain.ReviewLogEntry
	packs map[uuid.UUID]*domain.Pack

	locks int
	// fail makes the named store method return the error once.
	fail   map[string]error
	failMu sync.Mutex
	// beforeCreate runs inside Create before the uniqueness check.
	beforeCreate func()
	// external holds items committed by a concurrent writer; they survive
	// the rollback of the transaction that observed them.
	external []*domain.VocabularyItem
	// afterVocabList runs once after vocab.List returns, standing in for a
	// writer that commits between two reads.
	afterVocabList func()
}

func newMemDB() *memDB {
	return &memDB{
		items: map[uuid.UUID]*domain.VocabularyItem{},
		logs:  map[uuid.UUID]*domain.ReviewLogEntry{},
		packs: map[uuid.UUID]*domain.Pack{},
		fail:  map[string]error{},
	}
}

func (db *memDB) takeFailure(method string) error {
	db.failMu.Lock()
	defer db.failMu.Unlock()
	err := db.fail[method]
	delete(db.fail, method)
	return err
}

func (db *memDB) put(item *domain.VocabularyItem) {
	db.items[item.ID] = item.Clone()
}

type memVocabStore struct{ db *memDB }

var _ store.VocabStore = memVocabStore{}

func (s memVocabStore) termOwner(key string) (uuid.UUID, bool) {
	for id, item := range s.db.items {
		if item.TermNormalized == key {
			return id, true
		}
	}
	return uuid.Nil, false
}

func (s memVocabStore) Create(_ context.Context, item *domain.VocabularyItem) error {
	if err := s.db.takeFailure("vocab.Create"); err != nil {
		return err
	}
	if hook := s.db.beforeCreate; hook != nil {
		s.db.beforeCreate = nil
		hook()
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if _, ok := s.termOwner(item.TermNormalized); ok {
		return store.ErrTermExists
	}
	if _, ok := s.db.items[item.ID]; ok {
		return store.ErrDuplicate
	}
	s.db.put(item)
	return nil
}

func (s memVocabStore) Update(_ context.Context, item *domain.VocabularyItem) error {
	if err := s.db.takeFailure("vocab.Update"); err != nil {
		return err
	}
	if _, ok := s.db.items[item.ID]; !ok {
		return store.ErrVocabNotFound
	}
	if owner, ok := s.termOwner(item.TermNormalized); ok && owner != item.ID {
		return store.ErrTermExists
	}
	s.db.put(item)
	return nil
}

func (s memVocabStore) Upsert(_ context.Context, item *domain.VocabularyItem) error {
	if err := s.db.takeFailure("vocab.Upsert"); err != nil {
		return err
	}
	s.db.put(item)
	return nil
}

func (s memVocabStore) GetByID(_ context.Context, id uuid.UUID) (*domain.VocabularyItem, error) {
	if err := s.db.takeFailure("vocab.GetByID"); err != nil {
		return nil, err
	}
	item, ok := s.db.items[id]
	if !ok {
		return nil, store.ErrVocabNotFound
	}
	return item.Clone(), nil
}

func (s memVocabStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error) {
	return s.GetByID(ctx, id)
}

func (s memVocabStore) GetByTerm(_ context.Context, key string) (*domain.VocabularyItem, error) {
	if id, ok := s.termOwner(key); ok {
		return s.db.items[id].Clone(), nil
	}
	return nil, store.ErrVocabNotFound
}

func (s memVocabStore) GetByTermForUpdate(ctx context.Context, key string) (*domain.VocabularyItem, error) {
	return s.GetByTerm(ctx, key)
}

func (s memVocabStore) all() []*domain.VocabularyItem {
	out := make([]*domain.VocabularyItem, 0, len(s.db.items))
	for _, item := range s.db.items {
		out = append(out, item.Clone())
	}
	return out
}

func (s memVocabStore) List(context.Context) ([]*domain.VocabularyItem, error) {
	if err := s.db.takeFailure("vocab.List"); err != nil {
		return nil, err
	}
	out := s.all()
	slices.SortFunc(out, func(a, b *domain.VocabularyItem) int {
		return cmp.Compare(a.TermNormalized, b.TermNormalized)
	})
	if hook := s.db.afterVocabList; hook != nil {
		s.db.afterVocabList = nil
		hook()
	}
	return out, nil
}

func (s memVocabStore) Search(_ context.Context, f store.VocabFilter) ([]*domain.VocabularyItem, error) {
	q := strings.ToLower(f.Query)
	var out []*domain.VocabularyItem
	for _, item := range s.all() {
		if f.Tag != "" && !slices.Contains(item.Tags, f.Tag) {
			continue
		}
		if q != "" {
			text := strings.ToLower(item.TermRaw + " " + strings.Join(item.Meanings, " ") + " " + strings.Join(item.Tags, " "))
			if !strings.Contains(text, q) {
				continue
			}
		}
		out = append(out, item)
	}
	slices.SortFunc(out, func(a, b *domain.VocabularyItem) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	if f.Offset >= len(out) {
		return []*domain.VocabularyItem{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s memVocabStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.db.items[id]; !ok {
		return store.ErrVocabNotFound
	}
	delete(s.db.items, id)
	for logID, entry := range s.db.logs {
		if entry.VocabID == id {
			delete(s.db.logs, logID)
		}
	}
	for packID, pack := range s.db.packs {
		c := clonePack(pack)
		c.VocabIDs = slices.DeleteFunc(c.VocabIDs, func(v uuid.UUID) bool { return v == id })
		s.db.packs[packID] = c
	}
	return nil
}

func (s memVocabStore) LockAll(context.Context) error {
	s.db.locks++
	return nil
}

func (s memVocabStore) WithTx(*sql.Tx) store.VocabStore { return s }

type memReviewLogStore struct{ db *memDB }

var _ store.ReviewLogStore = memReviewLogStore{}

func cloneEntry(e *domain.ReviewLogEntry) *domain.ReviewLogEntry {
	c := *e
	if e.Result.LastReviewedAt != nil {
		t := *e.Result.LastReviewedAt
		c.Result.LastReviewedAt = &t
	}
	return &c
}

func (s memReviewLogStore) Create(_ context.Context, entry *domain.ReviewLogEntry) error {
	if err := s.db.takeFailure("log.Create"); err != nil {
		return err
	}
	if _, ok := s.db.items[entry.VocabID]; !ok {
		return store.ErrVocabNotFound
	}
	if _, ok := s.db.logs[entry.ID]; ok {
		return store.ErrReviewLogExists
	}
	s.db.logs[entry.ID] = cloneEntry(entry)
	return nil
}

func (s memReviewLogStore) CreateIfAbsent(ctx context.Context, entry *domain.ReviewLogEntry) (bool, error) {
	if _, ok := s.db.logs[entry.ID]; ok {
		return false, nil
	}
	if err := s.Create(ctx, entry); err != nil {
		return false, err
	}
	return true, nil
}

func (s memReviewLogStore) sorted(keep func(*domain.ReviewLogEntry) bool) []*domain.ReviewLogEntry {
	out := make([]*domain.ReviewLogEntry, 0)
	for _, entry := range s.db.logs {
		if keep(entry) {
			out = append(out, cloneEntry(entry))
		}
	}
	slices.SortFunc(out, func(a, b *domain.ReviewLogEntry) int {
		if c := a.GradedAt.Compare(b.GradedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

func (s memReviewLogStore) List(context.Context) ([]*domain.ReviewLogEntry, error) {
	if err := s.db.takeFailure("log.List"); err != nil {
		return nil, err
	}
	return s.sorted(func(*domain.ReviewLogEntry) bool { return true }), nil
}

func (s memReviewLogStore) ListByVocab(_ context.Context, vocabID uuid.UUID) ([]*domain.ReviewLogEntry, error) {
	return s.sorted(func(e *domain.ReviewLogEntry) bool { return e.VocabID == vocabID }), nil
}

func (s memReviewLogStore) WithTx(*sql.Tx) store.ReviewLogStore { return s }

type memPackStore struct{ db *memDB }

var _ store.PackStore = memPackStore{}

func clonePack(p *domain.Pack) *domain.Pack {
	c := *p
	c.Topics = slices.Clone(p.Topics)
	c.VocabIDs = slices.Clone(p.VocabIDs)
	return &c
}

func (s memPackStore) Create(_ context.Context, pack *domain.Pack) error {
	if err := s.db.takeFailure("pack.Create"); err != nil {
		return err
	}
	if err := pack.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	for _, other := range s.db.packs {
		if other.Name == pack.Name {
			return store.ErrPackNameExists
		}
	}
	c := clonePack(pack)
	c.VocabIDs = slices.DeleteFunc(c.VocabIDs, func(id uuid.UUID) bool {
		_, ok := s.db.items[id]
		return !ok
	})
	s.db.packs[pack.ID] = c
	return nil
}

func (s memPackStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Pack, error) {
	pack, ok := s.db.packs[id]
	if !ok {
		return nil, store.ErrPackNotFound
	}
	return clonePack(pack), nil
}

func (s memPackStore) List(_ context.Context, limit, offset int) ([]*domain.Pack, error) {
	out := make([]*domain.Pack, 0, len(s.db.packs))
	for _, pack := range s.db.packs {
		out = append(out, clonePack(pack))
	}
	slices.SortFunc(out, func(a, b *domain.Pack) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	if offset >= len(out) {
		return []*domain.Pack{}, nil
	}
	out = out[offset:]
	return out[:min(limit, len(out))], nil
}

func (s memPackStore) AddVocab(_ context.Context, packID, vocabID uuid.UUID, at time.Time) error {
	pack, ok := s.db.packs[packID]
	if !ok {
		return store.ErrPackNotFound
	}
	if _, ok := s.db.items[vocabID]; !ok {
		return store.ErrVocabNotFound
	}
	c := clonePack(pack)
	if !c.HasVocab(vocabID) {
		c.VocabIDs = append(c.VocabIDs, vocabID)
	}
	c.UpdatedAt = at
	s.db.packs[packID] = c
	return nil
}

func (s memPackStore) SessionVocabs(_ context.Context, packID uuid.UUID, limit int) ([]*domain.VocabularyItem, error) {
	if err := s.db.takeFailure("pack.SessionVocabs"); err != nil {
		return nil, err
	}
	out := make([]*domain.VocabularyItem, 0)
	for _, id := range s.db.packs[packID].VocabIDs {
		out = append(out, s.db.items[id].Clone())
	}
	slices.SortFunc(out, func(a, b *domain.VocabularyItem) int {
		if c := a.DueAt.Compare(b.DueAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out[:min(limit, len(out))], nil
}

func (s memPackStore) WithTx(*sql.Tx) store.PackStore { return s }

// memWritingErrorStore keys entries by their dedup key.
type memWritingErrorStore struct {
	mu      sync.Mutex
	entries map[string]*domain.WritingError
	fail    error
}

var _ store.WritingErrorStore = (*memWritingErrorStore)(nil)

func newMemWritingErrorStore() *memWritingErrorStore {
	return &memWritingErrorStore{entries: map[string]*domain.WritingError{}}
}

func (s *memWritingErrorStore) Record(_ context.Context, entry *domain.WritingError) (*domain.WritingError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	key := entry.DedupKey()
	if existing, ok := s.entries[key]; ok {
		c := *existing
		c.Count++
		c.Notes = entry.Notes
		c.Topic = entry.Topic
		c.UpdatedAt = entry.UpdatedAt
		s.entries[key] = &c
		return &c, nil
	}
	c := *entry
	s.entries[key] = &c
	return &c, nil
}

func (s *memWritingErrorStore) List(_ context.Context, f store.WritingErrorFilter) ([]*domain.WritingError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.WritingError, 0)
	for _, e := range s.entries {
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if f.Topic != "" && (e.Topic == nil || *e.Topic != f.Topic) {
			continue
		}
		c := *e
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *domain.WritingError) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	if f.Offset >= len(out) {
		return []*domain.WritingError{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *memWritingErrorStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		if e.ID == id {
			delete(s.entries, key)
			return nil
		}
	}
	return store.ErrWritingErrorNotFound
}

func (s *memWritingErrorStore) WithTx(*sql.Tx) store.WritingErrorStore { return s }

// memTxManager runs InTx under the db lock and restores the previous state
// when fn fails, mimicking a rollback. InReadTx runs on a copy of the data
// taken when it starts, like a REPEATABLE READ transaction.
type memTxManager struct {
	db      *memDB
	readTxs int
}

var _ TxManager = (*memTxManager)(nil)

func (m *memTxManager) Stores() Stores {
	return memStores(m.db)
}

func memStores(db *memDB) Stores {
	return Stores{Vocabs: memVocabStore{db}, ReviewLogs: memReviewLogStore{db}, Packs: memPackStore{db}}
}

func (m *memTxManager) InTx(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	items := maps.Clone(m.db.items)
	logs := maps.Clone(m.db.logs)
	packs := maps.Clone(m.db.packs)
	err := fn(ctx, m.Stores())
	if err != nil {
		m.db.items = items
		m.db.logs = logs
		m.db.packs = packs
	}
	for _, item := range m.db.external {
		m.db.put(item)
	}
	m.db.external = nil
	return err
}

func (m *memTxManager) InReadTx(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error {
	m.db.mu.Lock()
	m.readTxs++
	view := newMemDB()
	view.items = maps.Clone(m.db.items)
	view.logs = maps.Clone(m.db.logs)
	view.packs = maps.Clone(m.db.packs)
	view.fail = m.db.fail
	view.afterVocabList = m.db.afterVocabList
	m.db.afterVocabList = nil
	m.db.mu.Unlock()

	return fn(ctx, memStores(view))
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.Event
}

func (r *recordingEmitter) EmitEvent(_ context.Context, e *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingEmitter) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// sequentialIDs returns deterministic ids 00000000-0000-0000-0000-00000000000N.
func sequentialIDs() func() uuid.UUID {
	var n byte
	return func() uuid.UUID {
		n++
		var id uuid.UUID
		id[15] = n
		return id
	}
}

type fixture struct {
	db      *memDB
	tx      *memTxManager
	emitter *recordingEmitter
	opts    []Option
}

func newFixture() *fixture {
	db := newMemDB()
	emitter := &recordingEmitter{}
	return &fixture{
		db:      db,
		tx:      &memTxManager{db: db},
		emitter: emitter,
		opts: []Option{
			WithClock(func() time.Time { return testNow }),
			WithIDGenerator(sequentialIDs()),
			WithEmitter(emitter),
		},
	}
}

func mustItem(term string, meanings []string, createdAt time.Time) *domain.VocabularyItem {
	item, err := domain.NewVocabularyItem(uuid.New(), term, meanings, nil, createdAt)
	if err != nil {
		panic(err)
	}
	return item
}
