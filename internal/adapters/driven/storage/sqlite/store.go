package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/alcove-dev/alcove/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/alcove-dev/alcove/internal/core/domain"
	"github.com/alcove-dev/alcove/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to all
// storage port interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.alcove/data/alcove.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".alcove", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "alcove.db")

	// WAL mode for better concurrency between importer and search reads
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RecordStore returns a RecordStore interface backed by this store.
func (s *Store) RecordStore() driven.RecordStore {
	return &recordStore{store: s}
}

// ImportRunStore returns an ImportRunStore interface backed by this store.
func (s *Store) ImportRunStore() driven.ImportRunStore {
	return &importRunStore{store: s}
}

// CredentialStore returns a CredentialStore interface backed by this store.
func (s *Store) CredentialStore() driven.CredentialStore {
	return &credentialStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Record Store ====================

// recordStore implements driven.RecordStore.
type recordStore struct {
	store *Store
}

var _ driven.RecordStore = (*recordStore)(nil)

// Insert persists a new record. The dedup key (source_plugin, source_id)
// is the primary key; a second insert for the same key reports
// domain.ErrDuplicate and leaves the stored row untouched.
func (s *recordStore) Insert(ctx context.Context, rec *domain.Record) error {
	metadataJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	result, err := s.store.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO records
			(source_plugin, source_id, item_type, title, content, metadata,
			 source_timestamp, imported_at, embedding, embedding_model)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.SourcePlugin, rec.SourceID, rec.ItemType, rec.Title, rec.Content,
		string(metadataJSON), rec.SourceTimestamp, rec.ImportedAt,
		float32SliceToBytes(rec.Embedding), rec.EmbeddingModel)

	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking insert result: %w", err)
	}
	if affected == 0 {
		return domain.ErrDuplicate
	}
	return nil
}

// Exists reports whether the dedup key is stored.
func (s *recordStore) Exists(ctx context.Context, key domain.RecordKey) (bool, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM records WHERE source_plugin = ? AND source_id = ?
	`, key.SourcePlugin, key.SourceID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking record existence: %w", err)
	}
	return count > 0, nil
}

// Get retrieves a record by its dedup key.
func (s *recordStore) Get(ctx context.Context, key domain.RecordKey) (*domain.Record, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT source_plugin, source_id, item_type, title, content, metadata,
		       source_timestamp, imported_at, embedding, embedding_model
		FROM records WHERE source_plugin = ? AND source_id = ?
	`, key.SourcePlugin, key.SourceID)

	rec, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return rec, err
}

// ListUnembedded returns records lacking an embedding under the given
// model version, oldest import first, at most limit rows.
func (s *recordStore) ListUnembedded(ctx context.Context, model string, limit int) ([]domain.Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT source_plugin, source_id, item_type, title, content, metadata,
		       source_timestamp, imported_at, embedding, embedding_model
		FROM records
		WHERE embedding IS NULL OR (? != '' AND embedding_model != ?)
		ORDER BY imported_at
		LIMIT ?
	`, model, model, limit)
	if err != nil {
		return nil, fmt.Errorf("querying unembedded records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListEmbedded returns records carrying an embedding under the given
// model version, optionally filtered to one plugin.
func (s *recordStore) ListEmbedded(ctx context.Context, model, plugin string) ([]domain.Record, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT source_plugin, source_id, item_type, title, content, metadata,
		       source_timestamp, imported_at, embedding, embedding_model
		FROM records
		WHERE embedding IS NOT NULL
		  AND (? = '' OR embedding_model = ?)
		  AND (? = '' OR source_plugin = ?)
	`, model, model, plugin, plugin)
	if err != nil {
		return nil, fmt.Errorf("querying embedded records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// SetEmbedding writes the vector and model version for one record.
func (s *recordStore) SetEmbedding(ctx context.Context, key domain.RecordKey, embedding []float32, model string) error {
	result, err := s.store.db.ExecContext(ctx, `
		UPDATE records SET embedding = ?, embedding_model = ?
		WHERE source_plugin = ? AND source_id = ?
	`, float32SliceToBytes(embedding), model, key.SourcePlugin, key.SourceID)
	if err != nil {
		return fmt.Errorf("setting embedding: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Stats returns store-wide counts.
func (s *recordStore) Stats(ctx context.Context, model string) (*domain.Stats, error) {
	stats := &domain.Stats{RecordsByPlugin: make(map[string]int)}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT source_plugin, COUNT(*) FROM records GROUP BY source_plugin
	`)
	if err != nil {
		return nil, fmt.Errorf("querying record counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var plugin string
		var count int
		if err := rows.Scan(&plugin, &count); err != nil {
			return nil, fmt.Errorf("scanning record count: %w", err)
		}
		stats.RecordsByPlugin[plugin] = count
		stats.TotalRecords += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating record counts: %w", err)
	}

	err = s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM records
		WHERE embedding IS NOT NULL AND (? = '' OR embedding_model = ?)
	`, model, model).Scan(&stats.EmbeddedRecords)
	if err != nil {
		return nil, fmt.Errorf("counting embedded records: %w", err)
	}

	return stats, nil
}

// ==================== Import Run Store ====================

// importRunStore implements driven.ImportRunStore.
type importRunStore struct {
	store *Store
}

var _ driven.ImportRunStore = (*importRunStore)(nil)

// Create opens a new run row.
func (s *importRunStore) Create(ctx context.Context, run *domain.ImportRun) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO import_runs
			(id, plugin_name, started_at, finished_at, status,
			 items_fetched, items_inserted, items_skipped_duplicate, error_summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.PluginName, run.StartedAt, nullTime(run.FinishedAt), string(run.Status),
		run.ItemsFetched, run.ItemsInserted, run.ItemsSkippedDuplicate, run.ErrorSummary)

	if err != nil {
		return fmt.Errorf("creating import run: %w", err)
	}
	return nil
}

// Finalize writes the run's terminal state.
func (s *importRunStore) Finalize(ctx context.Context, run *domain.ImportRun) error {
	result, err := s.store.db.ExecContext(ctx, `
		UPDATE import_runs SET
			finished_at = ?,
			status = ?,
			items_fetched = ?,
			items_inserted = ?,
			items_skipped_duplicate = ?,
			error_summary = ?
		WHERE id = ? AND finished_at IS NULL
	`, nullTime(run.FinishedAt), string(run.Status),
		run.ItemsFetched, run.ItemsInserted, run.ItemsSkippedDuplicate,
		run.ErrorSummary, run.ID)

	if err != nil {
		return fmt.Errorf("finalizing import run: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking finalize result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns runs ordered newest first, optionally filtered by plugin.
func (s *importRunStore) List(ctx context.Context, pluginName string, limit int) ([]domain.ImportRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, plugin_name, started_at, finished_at, status,
		       items_fetched, items_inserted, items_skipped_duplicate, error_summary
		FROM import_runs
		WHERE (? = '' OR plugin_name = ?)
		ORDER BY started_at DESC
		LIMIT ?
	`, pluginName, pluginName, limit)
	if err != nil {
		return nil, fmt.Errorf("querying import runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// LastSuccessful returns the most recent run that inserted or confirmed
// data (success or partial status).
func (s *importRunStore) LastSuccessful(ctx context.Context, pluginName string) (*domain.ImportRun, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, plugin_name, started_at, finished_at, status,
		       items_fetched, items_inserted, items_skipped_duplicate, error_summary
		FROM import_runs
		WHERE plugin_name = ? AND status IN (?, ?)
		ORDER BY started_at DESC
		LIMIT 1
	`, pluginName, string(domain.RunSuccess), string(domain.RunPartial))

	run, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return run, err
}

// FailAbandoned marks every unfinished run as failed. Called at startup
// so a crash mid-import never leaves a run permanently "running".
func (s *importRunStore) FailAbandoned(ctx context.Context) (int, error) {
	result, err := s.store.db.ExecContext(ctx, `
		UPDATE import_runs SET
			status = ?,
			finished_at = ?,
			error_summary = 'abandoned: process exited mid-run'
		WHERE finished_at IS NULL
	`, string(domain.RunFailed), time.Now().UTC())

	if err != nil {
		return 0, fmt.Errorf("failing abandoned runs: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking abandoned result: %w", err)
	}
	return int(affected), nil
}

// ==================== Credential Store ====================

// credentialStore implements driven.CredentialStore.
type credentialStore struct {
	store *Store
}

var _ driven.CredentialStore = (*credentialStore)(nil)

// Save stores or updates the plugin's credential row.
func (s *credentialStore) Save(ctx context.Context, cred domain.Credential) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO credentials
			(plugin_name, id, access_token, refresh_token, expires_at, scope, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(plugin_name) DO UPDATE SET
			id = excluded.id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			scope = excluded.scope,
			updated_at = excluded.updated_at
	`, cred.PluginName, cred.ID, cred.AccessToken, cred.RefreshToken,
		cred.ExpiresAt, cred.Scope, cred.CreatedAt, cred.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}
	return nil
}

// GetByPlugin retrieves the plugin's credential.
func (s *credentialStore) GetByPlugin(ctx context.Context, pluginName string) (*domain.Credential, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT plugin_name, id, access_token, refresh_token, expires_at, scope, created_at, updated_at
		FROM credentials WHERE plugin_name = ?
	`, pluginName)

	var cred domain.Credential
	var expiresAt, createdAt, updatedAt sql.NullTime
	err := row.Scan(&cred.PluginName, &cred.ID, &cred.AccessToken, &cred.RefreshToken,
		&expiresAt, &cred.Scope, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning credential: %w", err)
	}

	if expiresAt.Valid {
		cred.ExpiresAt = expiresAt.Time
	}
	if createdAt.Valid {
		cred.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		cred.UpdatedAt = updatedAt.Time
	}

	return &cred, nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// nullTime maps a *time.Time to a driver-friendly nullable value.
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// scanRecord scans one record row via the given scan function.
func scanRecord(scan func(dest ...any) error) (*domain.Record, error) {
	var rec domain.Record
	var metadataJSON sql.NullString
	var embeddingBlob []byte

	err := scan(&rec.SourcePlugin, &rec.SourceID, &rec.ItemType, &rec.Title, &rec.Content,
		&metadataJSON, &rec.SourceTimestamp, &rec.ImportedAt, &embeddingBlob, &rec.EmbeddingModel)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	rec.Embedding = bytesToFloat32Slice(embeddingBlob)

	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return &rec, nil
}

// scanRecords scans multiple record rows.
func scanRecords(rows *sql.Rows) ([]domain.Record, error) {
	var records []domain.Record //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	return records, nil
}

// scanRun scans one import run row via the given scan function.
func scanRun(scan func(dest ...any) error) (*domain.ImportRun, error) {
	var run domain.ImportRun
	var finishedAt sql.NullTime
	var status string

	err := scan(&run.ID, &run.PluginName, &run.StartedAt, &finishedAt, &status,
		&run.ItemsFetched, &run.ItemsInserted, &run.ItemsSkippedDuplicate, &run.ErrorSummary)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning import run: %w", err)
	}

	run.Status = domain.RunStatus(status)
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}

	return &run, nil
}

// scanRuns scans multiple import run rows.
func scanRuns(rows *sql.Rows) ([]domain.ImportRun, error) {
	var runs []domain.ImportRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating import runs: %w", err)
	}

	return runs, nil
}
