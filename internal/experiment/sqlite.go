package experiment

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/content-optimizer/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. A mutex
// serializes read-modify-write updates per store; SQLite itself has no
// row locking across the Get/write pair.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS experiments (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	description       TEXT NOT NULL,
	content_type      TEXT NOT NULL,
	platform          TEXT,
	test_type         TEXT NOT NULL,
	status            TEXT NOT NULL DEFAULT 'draft',
	variants          TEXT NOT NULL,
	results           TEXT NOT NULL,
	winner_variant_id TEXT,
	confidence_level  REAL NOT NULL DEFAULT 0,
	start_date        DATETIME,
	end_date          DATETIME,
	created_at        DATETIME NOT NULL,
	updated_at        DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_experiments_status ON experiments(status);
CREATE INDEX IF NOT EXISTS idx_experiments_content_type ON experiments(content_type);
CREATE INDEX IF NOT EXISTS idx_experiments_created_at ON experiments(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteColumns = `id, name, description, content_type, platform, test_type, status,
	variants, results, winner_variant_id, confidence_level, start_date, end_date,
	created_at, updated_at`

func (s *SQLiteStore) Create(ctx context.Context, exp *model.Experiment) error {
	variantsJSON, resultsJSON, err := marshalExperimentBlobs(exp)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO experiments (`+sqliteColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		exp.ID, exp.Name, exp.Description, string(exp.ContentType), nullString(exp.Platform),
		string(exp.TestType), string(exp.Status), variantsJSON, resultsJSON,
		nullStringPtr(exp.WinnerVariantID), exp.ConfidenceLevel,
		nullTime(exp.StartDate), nullTime(exp.EndDate), exp.CreatedAt, exp.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert experiment %s", exp.ID)
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Experiment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteColumns+` FROM experiments WHERE id = ?`, id)

	exp, err := scanExperiment(row)
	if err == errNoExperiment {
		return nil, nil
	}
	return exp, err
}

func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]model.Experiment, error) {
	query := `SELECT ` + sqliteColumns + ` FROM experiments WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.ContentType != "" {
		query += ` AND content_type = ?`
		args = append(args, string(filter.ContentType))
	}
	if filter.Platform != "" {
		query += ` AND platform = ?`
		args = append(args, filter.Platform)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list experiments")
	}
	defer rows.Close()

	var experiments []model.Experiment
	for rows.Next() {
		exp, err := scanExperiment(rows)
		if err != nil {
			return nil, err
		}
		experiments = append(experiments, *exp)
	}
	return experiments, eris.Wrap(rows.Err(), "sqlite: list experiments iterate")
}

func (s *SQLiteStore) Update(ctx context.Context, id string, upd Update) (*model.Experiment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, notFound(id)
	}
	if err := applyUpdate(exp, upd, time.Now().UTC()); err != nil {
		return nil, err
	}

	variantsJSON, resultsJSON, err := marshalExperimentBlobs(exp)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE experiments SET name = ?, description = ?, platform = ?, status = ?,
		 variants = ?, results = ?, winner_variant_id = ?, confidence_level = ?,
		 start_date = ?, end_date = ?, updated_at = ? WHERE id = ?`,
		exp.Name, exp.Description, nullString(exp.Platform), string(exp.Status),
		variantsJSON, resultsJSON, nullStringPtr(exp.WinnerVariantID), exp.ConfidenceLevel,
		nullTime(exp.StartDate), nullTime(exp.EndDate), exp.UpdatedAt, id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update experiment %s", id)
	}
	return exp, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM experiments WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete experiment %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

// helpers

var errNoExperiment = eris.New("no experiment row")

type scannable interface {
	Scan(dest ...any) error
}

func scanExperiment(row scannable) (*model.Experiment, error) {
	var exp model.Experiment
	var platform, winner sql.NullString
	var variantsJSON, resultsJSON string
	var startDate, endDate sql.NullTime

	err := row.Scan(&exp.ID, &exp.Name, &exp.Description, &exp.ContentType, &platform,
		&exp.TestType, &exp.Status, &variantsJSON, &resultsJSON, &winner,
		&exp.ConfidenceLevel, &startDate, &endDate, &exp.CreatedAt, &exp.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errNoExperiment
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan experiment")
	}

	if platform.Valid {
		exp.Platform = platform.String
	}
	if winner.Valid {
		exp.WinnerVariantID = &winner.String
	}
	if startDate.Valid {
		exp.StartDate = &startDate.Time
	}
	if endDate.Valid {
		exp.EndDate = &endDate.Time
	}
	if err := unmarshalExperimentBlobs(&exp, []byte(variantsJSON), []byte(resultsJSON)); err != nil {
		return nil, err
	}
	return &exp, nil
}

func unmarshalExperimentBlobs(exp *model.Experiment, variants, results []byte) error {
	if err := json.Unmarshal(variants, &exp.Variants); err != nil {
		return eris.Wrap(err, "unmarshal variants")
	}
	if err := json.Unmarshal(results, &exp.Results); err != nil {
		return eris.Wrap(err, "unmarshal results")
	}
	return nil
}

func marshalExperimentBlobs(exp *model.Experiment) (variants string, results string, err error) {
	v, err := json.Marshal(exp.Variants)
	if err != nil {
		return "", "", eris.Wrap(err, "marshal variants")
	}
	if exp.Results == nil {
		exp.Results = []model.VariantResult{}
	}
	r, err := json.Marshal(exp.Results)
	if err != nil {
		return "", "", eris.Wrap(err, "marshal results")
	}
	return string(v), string(r), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
