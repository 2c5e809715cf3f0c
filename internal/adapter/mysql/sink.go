package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"toggl-assistant/internal/domain"
	"toggl-assistant/internal/migrate"
)

// Sink implements ports.Sink by mirroring records into MySQL tables.
type Sink struct {
	db  *sql.DB
	log *slog.Logger
}

// Open connects using dsn and applies pending migrations.
// Example DSN: user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
func Open(ctx context.Context, dsn string, log *slog.Logger) (*Sink, error) {
	if dsn == "" {
		return nil, errors.New("mysql: MYSQL_DSN is required for sync")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate.Run(ctx, db, log); err != nil {
		db.Close()
		return nil, err
	}
	return &Sink{db: db, log: log}, nil
}

// SyncEntries upserts entries into toggl_time_entries in one transaction.
func (s *Sink) SyncEntries(ctx context.Context, entries []domain.TimeEntry) error {
	if len(entries) == 0 {
		return nil
	}
	const q = `
INSERT INTO toggl_time_entries
  (id, workspace_id, user_id, project_id, task_id, billable, description, tags, start, stop, duration_sec)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  workspace_id=VALUES(workspace_id),
  user_id=VALUES(user_id),
  project_id=VALUES(project_id),
  task_id=VALUES(task_id),
  billable=VALUES(billable),
  description=VALUES(description),
  tags=VALUES(tags),
  start=VALUES(start),
  stop=VALUES(stop),
  duration_sec=VALUES(duration_sec);
`
	err := s.inTx(ctx, q, func(stmt *sql.Stmt) error {
		for _, e := range entries {
			// Tags stored as JSON text.
			tagsJSON, err := json.Marshal(e.Tags)
			if err != nil {
				return err
			}
			var stop any
			if e.Stop != nil {
				stop = e.Stop.UTC()
			}
			if _, err := stmt.ExecContext(ctx,
				e.ID,
				e.WorkspaceID,
				e.UserID,
				nullable(e.ProjectID),
				nullable(e.TaskID),
				e.Billable,
				nullable(e.Description),
				string(tagsJSON),
				e.Start.UTC(),
				stop,
				e.DurationSec,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("mysql sink upserted entries", slog.Int("count", len(entries)))
	return nil
}

// SyncProjects upserts projects into toggl_projects in one transaction.
func (s *Sink) SyncProjects(ctx context.Context, projects []domain.Project) error {
	if len(projects) == 0 {
		return nil
	}
	const q = `
INSERT INTO toggl_projects
  (id, workspace_id, name, active, is_private, color, client_id, billable, at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  workspace_id=VALUES(workspace_id),
  name=VALUES(name),
  active=VALUES(active),
  is_private=VALUES(is_private),
  color=VALUES(color),
  client_id=VALUES(client_id),
  billable=VALUES(billable),
  at=VALUES(at);
`
	err := s.inTx(ctx, q, func(stmt *sql.Stmt) error {
		for _, p := range projects {
			var at any
			if p.At != nil {
				at = p.At.UTC()
			}
			if _, err := stmt.ExecContext(ctx,
				p.ID,
				p.WorkspaceID,
				p.Name,
				p.Active,
				p.Private,
				p.Color,
				nullable(p.ClientID),
				nullable(p.Billable),
				at,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("mysql sink upserted projects", slog.Int("count", len(projects)))
	return nil
}

// inTx prepares q inside a transaction and commits if fn succeeds.
func (s *Sink) inTx(ctx context.Context, q string, fn func(*sql.Stmt) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	if err := fn(stmt); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Close closes the underlying DB. Not part of ports.Sink to keep it minimal.
func (s *Sink) Close() error { return s.db.Close() }

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
