package experiment

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/content-optimizer/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies
// it for tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore implements Store backed by PostgreSQL.
type PostgresStore struct {
	pool Pool
}

// NewPostgres connects to the database at the given URL.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS experiments (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	description       TEXT NOT NULL,
	content_type      TEXT NOT NULL,
	platform          TEXT,
	test_type         TEXT NOT NULL,
	status            TEXT NOT NULL DEFAULT 'draft',
	variants          JSONB NOT NULL,
	results           JSONB NOT NULL,
	winner_variant_id TEXT,
	confidence_level  DOUBLE PRECISION NOT NULL DEFAULT 0,
	start_date        TIMESTAMPTZ,
	end_date          TIMESTAMPTZ,
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_experiments_status ON experiments(status);
CREATE INDEX IF NOT EXISTS idx_experiments_content_type ON experiments(content_type);
CREATE INDEX IF NOT EXISTS idx_experiments_created_at ON experiments(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const postgresColumns = `id, name, description, content_type, platform, test_type, status,
	variants, results, winner_variant_id, confidence_level, start_date, end_date,
	created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, exp *model.Experiment) error {
	variantsJSON, resultsJSON, err := marshalExperimentBlobs(exp)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO experiments (`+postgresColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		exp.ID, exp.Name, exp.Description, string(exp.ContentType), nullString(exp.Platform),
		string(exp.TestType), string(exp.Status), variantsJSON, resultsJSON,
		nullStringPtr(exp.WinnerVariantID), exp.ConfidenceLevel,
		nullTime(exp.StartDate), nullTime(exp.EndDate), exp.CreatedAt, exp.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: insert experiment %s", exp.ID)
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*model.Experiment, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+postgresColumns+` FROM experiments WHERE id = $1`, id)

	exp, err := scanPgExperiment(row)
	if err == errNoExperiment {
		return nil, nil
	}
	return exp, err
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]model.Experiment, error) {
	query := `SELECT ` + postgresColumns + ` FROM experiments WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $` + itoa(len(args))
	}
	if filter.ContentType != "" {
		args = append(args, string(filter.ContentType))
		query += ` AND content_type = $` + itoa(len(args))
	}
	if filter.Platform != "" {
		args = append(args, filter.Platform)
		query += ` AND platform = $` + itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list experiments")
	}
	defer rows.Close()

	var experiments []model.Experiment
	for rows.Next() {
		exp, err := scanPgExperiment(rows)
		if err != nil {
			return nil, err
		}
		experiments = append(experiments, *exp)
	}
	return experiments, eris.Wrap(rows.Err(), "postgres: list experiments iterate")
}

func (s *PostgresStore) Update(ctx context.Context, id string, upd Update) (*model.Experiment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+postgresColumns+` FROM experiments WHERE id = $1 FOR UPDATE`, id)
	exp, err := scanPgExperiment(row)
	if err == errNoExperiment {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, err
	}

	if err := applyUpdate(exp, upd, time.Now().UTC()); err != nil {
		return nil, err
	}

	variantsJSON, resultsJSON, err := marshalExperimentBlobs(exp)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE experiments SET name = $1, description = $2, platform = $3, status = $4,
		 variants = $5, results = $6, winner_variant_id = $7, confidence_level = $8,
		 start_date = $9, end_date = $10, updated_at = $11 WHERE id = $12`,
		exp.Name, exp.Description, nullString(exp.Platform), string(exp.Status),
		variantsJSON, resultsJSON, nullStringPtr(exp.WinnerVariantID), exp.ConfidenceLevel,
		nullTime(exp.StartDate), nullTime(exp.EndDate), exp.UpdatedAt, id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: update experiment %s", id)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit")
	}
	return exp, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM experiments WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete experiment %s", id)
	}
	if tag.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}

// scanPgExperiment mirrors scanExperiment but reads the JSONB columns as
// []byte, which is how pgx returns them.
func scanPgExperiment(row scannable) (*model.Experiment, error) {
	var exp model.Experiment
	var platform, winner *string
	var variantsJSON, resultsJSON []byte
	var startDate, endDate *time.Time

	err := row.Scan(&exp.ID, &exp.Name, &exp.Description, &exp.ContentType, &platform,
		&exp.TestType, &exp.Status, &variantsJSON, &resultsJSON, &winner,
		&exp.ConfidenceLevel, &startDate, &endDate, &exp.CreatedAt, &exp.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, errNoExperiment
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan experiment")
	}

	if platform != nil {
		exp.Platform = *platform
	}
	exp.WinnerVariantID = winner
	exp.StartDate = startDate
	exp.EndDate = endDate

	if err := unmarshalExperimentBlobs(&exp, variantsJSON, resultsJSON); err != nil {
		return nil, err
	}
	return &exp, nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
