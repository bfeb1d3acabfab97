package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/glebarez/go-sqlite" // sqlite driver
	"github.com/okian/voidframe/internal/domain/model"
)

// Schema for the per-run output tables. Column names are a stable
// compatibility surface; changing them requires versioning.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
    run_id     TEXT PRIMARY KEY,
    created_at DATETIME NOT NULL,
    filter     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS play_metrics (
    run_id              TEXT NOT NULL,
    game_id             INTEGER NOT NULL,
    play_id             INTEGER NOT NULL,
    outcome             TEXT NOT NULL,
    sqi                 REAL,
    baa                 REAL,
    res                 REAL,
    cti                 REAL,
    s_throw             REAL,
    s_arrival           REAL,
    vis                 REAL,
    ceoe                REAL,
    ceoe_delta          REAL,
    void_bucket         TEXT NOT NULL,
    expected_catch_rate REAL,
    execution_gap       REAL,
    PRIMARY KEY (run_id, game_id, play_id)
);

CREATE TABLE IF NOT EXISTS player_rankings (
    run_id        TEXT NOT NULL,
    tbl           TEXT NOT NULL,
    player_id     INTEGER NOT NULL,
    n_plays       INTEGER NOT NULL,
    mean_sqi      REAL,
    mean_baa      REAL,
    mean_res      REAL,
    mean_cti      REAL,
    mean_vis      REAL,
    mean_ceoe     REAL,
    execution_gap REAL NOT NULL,
    rank          INTEGER NOT NULL,
    PRIMARY KEY (run_id, tbl, player_id)
);
`

// SQLiteStore implements Store on a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the results database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenStore, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrOpenStore, err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun writes a run's tables in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveRun, err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, created_at, filter) VALUES (?, ?, ?)`,
		run.ID, run.CreatedAt, run.Filter,
	); err != nil {
		return fmt.Errorf("%w: runs: %v", ErrSaveRun, err)
	}

	playStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO play_metrics (
			run_id, game_id, play_id, outcome,
			sqi, baa, res, cti,
			s_throw, s_arrival, vis, ceoe, ceoe_delta, void_bucket,
			expected_catch_rate, execution_gap
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare play_metrics: %v", ErrSaveRun, err)
	}
	defer playStmt.Close()

	for _, row := range run.Plays {
		m := row.Metrics
		if _, err := playStmt.ExecContext(ctx,
			run.ID, row.Key.GameID, row.Key.PlayID, row.Outcome.String(),
			nullable(m.SQI), nullable(m.BAA), nullable(m.RES), nullable(m.CTI),
			nullable(m.SThrow), nullable(m.SArrival), nullable(m.VIS),
			nullable(m.CEOE), nullable(m.CEOEDelta), string(m.Void),
			nullable(row.Expected), nullable(row.Gap),
		); err != nil {
			return fmt.Errorf("%w: play %s: %v", ErrSaveRun, row.Key, err)
		}
	}

	rankStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO player_rankings (
			run_id, tbl, player_id, n_plays,
			mean_sqi, mean_baa, mean_res, mean_cti, mean_vis, mean_ceoe,
			execution_gap, rank
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare player_rankings: %v", ErrSaveRun, err)
	}
	defer rankStmt.Close()

	for tbl, aggs := range map[string][]model.PlayerAggregate{
		"receivers": run.Receivers,
		"defenders": run.Defenders,
	} {
		for _, a := range aggs {
			if _, err := rankStmt.ExecContext(ctx,
				run.ID, tbl, a.PlayerID, a.Plays,
				nullable(a.MeanSQI), nullable(a.MeanBAA), nullable(a.MeanRES),
				nullable(a.MeanCTI), nullable(a.MeanVIS), nullable(a.MeanCEOEDelta),
				a.MeanGap, a.Rank,
			); err != nil {
				return fmt.Errorf("%w: ranking %s player %d: %v", ErrSaveRun, tbl, a.PlayerID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrSaveRun, err)
	}
	return nil
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
