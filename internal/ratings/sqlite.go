package ratings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	apperrors "github.com/lepinkainen/bookdash/internal/errors"
	_ "modernc.org/sqlite"
)

const ratingsSchema = `
CREATE TABLE IF NOT EXISTS ratings (
	user_id    INTEGER NOT NULL,
	book_index INTEGER NOT NULL,
	score      REAL,
	PRIMARY KEY (user_id, book_index)
)`

// SQLiteStore keeps ratings in a SQLite table keyed by (user_id, book_index).
// Upserts are single statements inside a transaction, so concurrent writers
// cannot overwrite each other's ratings.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens an existing ratings database. A missing file is a
// NotFoundError; only CreateSQLite makes new databases.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewNotFoundError("ratings database "+path, err)
		}
		return nil, fmt.Errorf("failed to open ratings database: %w", err)
	}
	return openSQLite(path)
}

// CreateSQLite opens the ratings database at path, creating the file when it
// does not exist yet.
func CreateSQLite(path string) (*SQLiteStore, error) {
	return openSQLite(path)
}

func openSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open ratings database: %w", err)
	}

	if err := db.Ping(); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to connect to ratings database: %w", err), closeErr)
	}

	if _, err := db.Exec(ratingsSchema); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to create ratings table: %w", err), closeErr)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Path returns the database file of the store.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Load returns every rating in insertion order.
func (s *SQLiteStore) Load(ctx context.Context) ([]Rating, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id, book_index, score FROM ratings ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []Rating
	for rows.Next() {
		var r Rating
		if err := rows.Scan(&r.UserID, &r.BookIndex, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ratings: %w", err)
	}

	return result, nil
}

// Upsert inserts or replaces the rating for (userID, bookIndex).
func (s *SQLiteStore) Upsert(ctx context.Context, userID, bookIndex int, score float64) (result UpsertResult, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Warn("Failed to rollback transaction", "error", rbErr)
			}
		}
	}()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ratings WHERE user_id = ? AND book_index = ?`, userID, bookIndex).Scan(&exists)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("failed to look up rating: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ratings (user_id, book_index, score) VALUES (?, ?, ?)
		ON CONFLICT (user_id, book_index) DO UPDATE SET score = excluded.score`,
		userID, bookIndex, score)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("failed to upsert rating: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return UpsertResult{}, fmt.Errorf("failed to commit rating: %w", err)
	}

	slog.Debug("Rating upserted", "path", s.path, "user_id", userID, "book_index", bookIndex, "score", score, "created", exists == 0)
	return UpsertResult{Created: exists == 0}, nil
}

// Import copies ratings into the table. The first rating seen for a key wins,
// matching the CSV backend where the first matching row is the one updated.
// It returns the number of ratings inserted.
func (s *SQLiteStore) Import(ctx context.Context, ratings []Rating) (inserted int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Warn("Failed to rollback transaction", "error", rbErr)
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ratings (user_id, book_index, score) VALUES (?, ?, ?)
		ON CONFLICT (user_id, book_index) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare import statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range ratings {
		res, execErr := stmt.ExecContext(ctx, r.UserID, r.BookIndex, r.Score)
		if execErr != nil {
			err = fmt.Errorf("failed to import rating (%d, %d): %w", r.UserID, r.BookIndex, execErr)
			return 0, err
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	slog.Info("Ratings imported", "path", s.path, "read", len(ratings), "inserted", inserted)
	return inserted, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
