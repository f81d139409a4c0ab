package notifdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrSchemaUnrecognized is returned when no candidate timestamp column
// prepares against the record table. The pass is abandoned with no effect.
var ErrSchemaUnrecognized = errors.New("no recognized timestamp column in record table")

// DB provides read-only access to a snapshot of the notification store.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens the snapshot database with read-only optimized pragmas.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("notification db not found at %s", path)
	}

	uri := fmt.Sprintf("file:%s?mode=ro", path)
	db, err := sql.Open("sqlite3", uri)
	if err != nil {
		return nil, fmt.Errorf("failed to open notification db: %w", err)
	}

	// Set read-only pragmas for performance
	pragmas := []string{
		"PRAGMA query_only=ON",
		"PRAGMA synchronous=OFF",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA cache_size=-32768", // 32MB cache, the store is a few MB
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			// Ignore pragma errors (some may not be supported)
			continue
		}
	}

	return &DB{db: db, path: path}, nil
}

// Close closes the snapshot connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Path returns the path to the snapshot file.
func (d *DB) Path() string {
	return d.path
}

// GetAppLookup builds the app rowid -> bundle identifier table. Rebuilt on
// every pass: the table is small and the owning process appends to it.
func (d *DB) GetAppLookup() (map[int64]string, error) {
	rows, err := d.db.Query(`SELECT ROWID, identifier FROM app`)
	if err != nil {
		return nil, fmt.Errorf("failed to query app table: %w", err)
	}
	defer rows.Close()

	lookup := make(map[int64]string)
	for rows.Next() {
		var rowid int64
		var identifier sql.NullString
		if err := rows.Scan(&rowid, &identifier); err != nil {
			return nil, fmt.Errorf("failed to scan app row: %w", err)
		}
		if identifier.Valid {
			lookup[rowid] = identifier.String
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating app table: %w", err)
	}

	return lookup, nil
}

// ProbeTimestampColumn tries candidate timestamp column names in priority
// order and returns the first that prepares against the record table.
func (d *DB) ProbeTimestampColumn() (string, error) {
	for _, col := range timestampColumns {
		stmt, err := d.db.Prepare(fmt.Sprintf(`SELECT %s FROM record LIMIT 1`, col))
		if err != nil {
			continue
		}
		stmt.Close()
		return col, nil
	}
	return "", ErrSchemaUnrecognized
}

// ReadSince streams records with timestamp strictly greater than sinceMacTime
// (seconds since the Mac epoch), in ascending time order.
func (d *DB) ReadSince(sinceMacTime float64) ([]RawRecord, error) {
	col, err := d.ProbeTimestampColumn()
	if err != nil {
		return nil, err
	}

	lookup, err := d.GetAppLookup()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT uuid, app_id, data, %s
		FROM record
		WHERE %s > ?
		ORDER BY %s ASC
	`, col, col, col)

	rows, err := d.db.Query(query, sinceMacTime)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []RawRecord
	for rows.Next() {
		var rawUUID, payload []byte
		var appRowID sql.NullInt64
		var ts sql.NullFloat64
		if err := rows.Scan(&rawUUID, &appRowID, &payload, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		rec := RawRecord{
			UUID:    decodeRecordUUID(rawUUID),
			Payload: payload,
		}
		if ts.Valid {
			rec.Timestamp = ts.Float64
		}
		if appRowID.Valid {
			if bundle, ok := lookup[appRowID.Int64]; ok {
				rec.AppID = bundle
			} else {
				// Unmapped app rowid; keep the raw value so the record
				// is still attributable.
				rec.AppID = fmt.Sprintf("%d", appRowID.Int64)
			}
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

// decodeRecordUUID handles the two on-disk uuid representations: a 16-byte
// binary uuid or a text uuid. An absent uuid gets a fresh one so the entry
// is still individually dismissable.
func decodeRecordUUID(raw []byte) string {
	if len(raw) == 16 {
		if u, err := uuid.FromBytes(raw); err == nil {
			return u.String()
		}
	}
	if len(raw) > 0 {
		return string(raw)
	}
	return uuid.New().String()
}
