package triallog

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"audwm/internal/monitoring"
	"audwm/internal/task"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Session identifies one run in the trial database.
type Session struct {
	ID          uuid.UUID
	Participant string
	Variant     string
	Seed        uint64
	StartedAt   time.Time
}

// SQLiteSink mirrors the trial log into a SQLite database, one row per
// trial keyed by session.
type SQLiteSink struct {
	db      *sql.DB
	session Session
}

// OpenSQLite opens (or creates) the database at path, brings the schema up
// to date and registers s. A zero s.ID is replaced by a fresh UUID.
func OpenSQLite(path string, s Session) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	_, err = db.Exec(`
		INSERT INTO sessions (session_id, participant, variant, seed, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, s.ID.String(), s.Participant, s.Variant, strconv.FormatUint(s.Seed, 10), s.StartedAt.UTC())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to register session: %w", err)
	}
	return &SQLiteSink{db: db, session: s}, nil
}

// Session returns the registered session.
func (s *SQLiteSink) Session() Session { return s.session }

// Save replaces this session's trial rows with records in one transaction.
func (s *SQLiteSink) Save(records []task.Record) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	id := s.session.ID.String()
	if _, err = tx.Exec(`DELETE FROM trials WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear trials: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO trials (
			session_id, trial_number, participant, response, response_period_onset, rt, seed,
			cue_frequency, cue_frequency_range, choice_frequency, choice_frequency_range,
			coherence, correct
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		_, err = stmt.Exec(
			id, r.TrialNumber, r.Participant, string(r.Response), r.ResponsePeriodOnset, r.RT,
			strconv.FormatUint(r.Seed, 10),
			r.Params.CueFrequency, r.Params.CueFrequencyRange,
			r.Params.ChoiceFrequency, r.Params.ChoiceFrequencyRange,
			r.Params.Coherence, r.Correct,
		)
		if err != nil {
			return fmt.Errorf("failed to insert trial %d: %w", r.TrialNumber, err)
		}
	}
	return tx.Commit()
}

// Records reads back this session's trials in trial order.
func (s *SQLiteSink) Records() ([]task.Record, error) {
	rows, err := s.db.Query(`
		SELECT trial_number, participant, response, response_period_onset, rt, seed,
			cue_frequency, cue_frequency_range, choice_frequency, choice_frequency_range,
			coherence, correct
		FROM trials WHERE session_id = ? ORDER BY trial_number
	`, s.session.ID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []task.Record
	for rows.Next() {
		var (
			r    task.Record
			resp string
			seed string
		)
		err := rows.Scan(&r.TrialNumber, &r.Participant, &resp, &r.ResponsePeriodOnset, &r.RT, &seed,
			&r.Params.CueFrequency, &r.Params.CueFrequencyRange,
			&r.Params.ChoiceFrequency, &r.Params.ChoiceFrequencyRange,
			&r.Params.Coherence, &r.Correct)
		if err != nil {
			return nil, err
		}
		r.Response = task.Response(resp)
		if r.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("trial %d: bad seed %q: %w", r.TrialNumber, seed, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	// m is not closed: that would close db.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Logf("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool { return false }
