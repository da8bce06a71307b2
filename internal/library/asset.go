package library

import (
	"fmt"
	"strings"
	"time"
)

const assetColumns = "id, kind, path, width, height, created_ns, duration_ms, size_bytes, scanned_ns"

func scanAsset(row interface{ Scan(dest ...any) error }) (Asset, error) {
	var (
		a          Asset
		createdNS  int64
		durationMS int64
		scannedNS  int64
	)
	err := row.Scan(&a.ID, &a.Kind, &a.Path, &a.Width, &a.Height, &createdNS, &durationMS, &a.SizeBytes, &scannedNS)
	if err != nil {
		return Asset{}, err
	}
	a.CreatedAt = time.Unix(0, createdNS)
	a.Duration = time.Duration(durationMS) * time.Millisecond
	a.ScannedAt = time.Unix(0, scannedNS)
	return a, nil
}

func upsertAsset(q querier, a *Asset) error {
	now := time.Now()
	_, err := q.Exec(`
		INSERT INTO assets (id, kind, path, width, height, created_ns, duration_ms, size_bytes, scanned_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			path = excluded.path,
			width = excluded.width,
			height = excluded.height,
			created_ns = excluded.created_ns,
			duration_ms = excluded.duration_ms,
			size_bytes = excluded.size_bytes,
			scanned_ns = excluded.scanned_ns`,
		a.ID, a.Kind, a.Path, a.Width, a.Height, a.CreatedAt.UnixNano(), a.Duration.Milliseconds(), a.SizeBytes, now.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("upsert asset %s: %w", a.ID, mapSQLiteError(err))
	}
	a.ScannedAt = now
	return nil
}

// Upsert inserts an asset or refreshes an existing row with the same ID.
// Sets ScannedAt on the struct.
func (s *Store) Upsert(a *Asset) error { return upsertAsset(s.db, a) }

// Upsert inserts or refreshes an asset within a transaction.
func (t *Tx) Upsert(a *Asset) error { return upsertAsset(t.tx, a) }

func getAsset(q querier, id string) (Asset, error) {
	a, err := scanAsset(q.QueryRow("SELECT "+assetColumns+" FROM assets WHERE id = ?", id))
	if err != nil {
		return Asset{}, fmt.Errorf("get asset %s: %w", id, mapSQLiteError(err))
	}
	return a, nil
}

// Get retrieves an asset by ID.
// Returns ErrNotFound if the asset does not exist.
func (s *Store) Get(id string) (Asset, error) { return getAsset(s.db, id) }

// Get retrieves an asset by ID within a transaction.
func (t *Tx) Get(id string) (Asset, error) { return getAsset(t.tx, id) }

func whereFilter(f Filter) (string, []any) {
	var conditions []string
	var args []any

	if len(f.Kinds) > 0 {
		placeholders := make([]string, len(f.Kinds))
		for i, k := range f.Kinds {
			placeholders[i] = "?"
			args = append(args, k)
		}
		conditions = append(conditions, "kind IN ("+strings.Join(placeholders, ", ")+")")
	}
	if f.CreatedFrom != nil {
		conditions = append(conditions, "created_ns >= ?")
		args = append(args, f.CreatedFrom.UnixNano())
	}
	if f.CreatedBefore != nil {
		conditions = append(conditions, "created_ns < ?")
		args = append(args, f.CreatedBefore.UnixNano())
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func listAssets(q querier, f Filter) ([]Asset, int, error) {
	whereClause, args := whereFilter(f)

	var total int
	if err := q.QueryRow("SELECT COUNT(*) FROM assets "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count assets: %w", err)
	}

	// Newest first; id breaks ties so the order is stable across scans.
	query := "SELECT " + assetColumns + " FROM assets " + whereClause + " ORDER BY created_ns DESC, id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list assets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan asset: %w", err)
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate assets: %w", err)
	}

	return results, total, nil
}

// List returns assets matching the filter, newest first.
// Returns (results, totalCount, error).
func (s *Store) List(f Filter) ([]Asset, int, error) { return listAssets(s.db, f) }

// List returns assets matching the filter within a transaction.
func (t *Tx) List(f Filter) ([]Asset, int, error) { return listAssets(t.tx, f) }

func deleteAssets(q querier, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	result, err := q.Exec("DELETE FROM assets WHERE id IN ("+strings.Join(placeholders, ", ")+")", args...)
	if err != nil {
		return 0, fmt.Errorf("delete assets: %w", mapSQLiteError(err))
	}
	return result.RowsAffected()
}

// Delete removes assets by ID and returns the number of rows removed.
// Unknown IDs are ignored.
func (s *Store) Delete(ids []string) (int64, error) { return deleteAssets(s.db, ids) }

// Delete removes assets by ID within a transaction.
func (t *Tx) Delete(ids []string) (int64, error) { return deleteAssets(t.tx, ids) }

// Prune removes catalog rows scanned before cutoff, i.e. files that were not
// seen by the most recent scan.
func (s *Store) Prune(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec("DELETE FROM assets WHERE scanned_ns < ?", cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune assets: %w", err)
	}
	return result.RowsAffected()
}

// Count returns the number of catalogued assets matching the filter.
func (s *Store) Count(f Filter) (int, error) {
	whereClause, args := whereFilter(f)
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM assets "+whereClause, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count assets: %w", err)
	}
	return n, nil
}
