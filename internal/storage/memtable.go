package storage

import "sync"

// MemTable is the in-memory counterpart of a versioned postgres table. It
// backs the memory stores used by unit tests and the memory unit of work.
// Sessions stage writes against a snapshot expectation and apply them
// all-or-nothing at commit, with the same optimistic version semantics as
// the SQL stores.
type MemTable[R any] struct {
	mu      sync.Mutex
	rows    map[string]R
	version func(R) int64
	clone   func(R) R
	unique  []func(R) string
}

// NewMemTable builds a table. version extracts a row's optimistic version;
// clone deep-copies a row so callers never share mutable state with the
// table.
func NewMemTable[R any](version func(R) int64, clone func(R) R) *MemTable[R] {
	return &MemTable[R]{
		rows:    make(map[string]R),
		version: version,
		clone:   clone,
	}
}

// AddUniqueIndex registers a commit-time uniqueness constraint, mirroring a
// unique index on the SQL table. key returns the indexed value for a row;
// an empty key is not indexed. Register indexes before the first Begin.
func (t *MemTable[R]) AddUniqueIndex(key func(R) string) {
	t.unique = append(t.unique, key)
}

// Begin opens a session. Sessions are not safe for concurrent use; one
// session belongs to one unit of work.
func (t *MemTable[R]) Begin() *MemSession[R] {
	return &MemSession[R]{
		table:    t,
		pending:  make(map[string]R),
		deleted:  make(map[string]bool),
		expected: make(map[string]int64),
	}
}

// Snapshot returns a deep copy of the committed rows. Test helper.
func (t *MemTable[R]) Snapshot() map[string]R {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]R, len(t.rows))
	for k, v := range t.rows {
		out[k] = t.clone(v)
	}
	return out
}

// MemSession stages reads and writes for one unit of work. Reads see the
// session's own staged writes layered over the committed state
// (read-your-writes); nothing is visible to other sessions before Commit.
type MemSession[R any] struct {
	table   *MemTable[R]
	pending map[string]R
	deleted map[string]bool
	// expected records the committed version a staged write was based on;
	// zero means the row must not exist at commit time.
	expected map[string]int64
	finished bool
}

// Get returns the row visible to this session.
func (s *MemSession[R]) Get(id string) (R, bool) {
	var zero R
	if s.deleted[id] {
		return zero, false
	}
	if row, ok := s.pending[id]; ok {
		return s.table.clone(row), true
	}
	s.table.mu.Lock()
	defer s.table.mu.Unlock()
	row, ok := s.table.rows[id]
	if !ok {
		return zero, false
	}
	return s.table.clone(row), true
}

// List returns every visible row matching pred (nil matches all).
func (s *MemSession[R]) List(pred func(R) bool) []R {
	seen := make(map[string]bool)
	var out []R

	for id, row := range s.pending {
		seen[id] = true
		if pred == nil || pred(row) {
			out = append(out, s.table.clone(row))
		}
	}

	s.table.mu.Lock()
	defer s.table.mu.Unlock()
	for id, row := range s.table.rows {
		if seen[id] || s.deleted[id] {
			continue
		}
		if pred == nil || pred(row) {
			out = append(out, s.table.clone(row))
		}
	}
	return out
}

// Insert stages a new row. The id must not be visible to the session, and
// must still be absent at commit time.
func (s *MemSession[R]) Insert(id string, row R) error {
	if _, exists := s.Get(id); exists {
		return Conflict("row already exists")
	}
	s.pending[id] = s.table.clone(row)
	delete(s.deleted, id)
	if _, tracked := s.expected[id]; !tracked {
		s.expected[id] = 0
	}
	return nil
}

// Update stages a replacement for a visible row. expectedVersion is the
// version the caller loaded; the staged row should already carry the bumped
// version. A stale expectation surfaces as a conflict, here or at commit.
func (s *MemSession[R]) Update(id string, row R, expectedVersion int64) error {
	if s.deleted[id] {
		return NotFound("row deleted")
	}
	if staged, ok := s.pending[id]; ok {
		// Updating a row staged in this same session: versions chain locally.
		if s.table.version(staged) != expectedVersion {
			return Conflict("version mismatch")
		}
		s.pending[id] = s.table.clone(row)
		return nil
	}
	s.table.mu.Lock()
	current, ok := s.table.rows[id]
	s.table.mu.Unlock()
	if !ok {
		return NotFound("row not found")
	}
	if s.table.version(current) != expectedVersion {
		return Conflict("version mismatch")
	}
	s.pending[id] = s.table.clone(row)
	s.expected[id] = expectedVersion
	return nil
}

// Delete stages removal of a visible row.
func (s *MemSession[R]) Delete(id string) error {
	if s.deleted[id] {
		return NotFound("row deleted")
	}
	if _, ok := s.pending[id]; ok {
		delete(s.pending, id)
		s.deleted[id] = true
		return nil
	}
	s.table.mu.Lock()
	current, ok := s.table.rows[id]
	s.table.mu.Unlock()
	if !ok {
		return NotFound("row not found")
	}
	s.deleted[id] = true
	s.expected[id] = s.table.version(current)
	return nil
}

// Commit validates every staged expectation against the committed state
// and applies all staged writes, or none. The table lock is held for the
// whole check-and-apply so concurrent sessions serialize at commit.
func (s *MemSession[R]) Commit() error {
	return CommitAll(s)
}

func (s *MemSession[R]) lock()   { s.table.mu.Lock() }
func (s *MemSession[R]) unlock() { s.table.mu.Unlock() }

func (s *MemSession[R]) isFinished() bool { return s.finished }
func (s *MemSession[R]) finish()          { s.finished = true }

// check validates staged expectations. Caller holds the table lock.
func (s *MemSession[R]) check() error {
	for id, want := range s.expected {
		current, exists := s.table.rows[id]
		if want == 0 {
			if exists {
				return Conflict("row created concurrently")
			}
			continue
		}
		if !exists {
			return Conflict("row deleted concurrently")
		}
		if s.table.version(current) != want {
			return Conflict("version changed concurrently")
		}
	}
	return s.checkUnique()
}

// checkUnique re-validates the table's unique indexes against the state the
// commit would produce, so two sessions racing the same key fail the way the
// SQL unique index would. Caller holds the table lock.
func (s *MemSession[R]) checkUnique() error {
	for _, key := range s.table.unique {
		seen := make(map[string]bool)
		track := func(row R) error {
			k := key(row)
			if k == "" {
				return nil
			}
			if seen[k] {
				return Conflict("unique index violated")
			}
			seen[k] = true
			return nil
		}
		for id, row := range s.table.rows {
			if s.deleted[id] {
				continue
			}
			if staged, ok := s.pending[id]; ok {
				row = staged
			}
			if err := track(row); err != nil {
				return err
			}
		}
		for id, row := range s.pending {
			if _, committed := s.table.rows[id]; committed {
				continue
			}
			if err := track(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// apply installs staged writes. Caller holds the table lock and has already
// run check.
func (s *MemSession[R]) apply() {
	for id := range s.deleted {
		delete(s.table.rows, id)
	}
	for id, row := range s.pending {
		s.table.rows[id] = s.table.clone(row)
	}
}

// TxSession is the commit-side view of a MemSession, letting sessions over
// tables of different row types commit together.
type TxSession interface {
	Rollback()
	lock()
	unlock()
	isFinished() bool
	finish()
	check() error
	apply()
}

// CommitAll commits sessions atomically across their tables: every
// expectation is validated with all table locks held, then every staged
// write applies, or none do. Sessions must span distinct tables, and
// concurrent callers must pass them in the same order.
func CommitAll(sessions ...TxSession) error {
	for _, s := range sessions {
		if s.isFinished() {
			return InvalidState("session already finished")
		}
	}
	for _, s := range sessions {
		s.finish()
		s.lock()
	}
	defer func() {
		for _, s := range sessions {
			s.unlock()
		}
	}()

	for _, s := range sessions {
		if err := s.check(); err != nil {
			return err
		}
	}
	for _, s := range sessions {
		s.apply()
	}
	return nil
}

// Rollback discards all staged writes. Safe to call after Commit; the
// second call is a no-op, mirroring sql.Tx.
func (s *MemSession[R]) Rollback() {
	if s.finished {
		return
	}
	s.finished = true
	s.pending = map[string]R{}
	s.deleted = map[string]bool{}
	s.expected = map[string]int64{}
}
