package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/snippetbox/internal/apperror"
	"github.com/sakif/snippetbox/internal/model"
	"github.com/sakif/snippetbox/internal/repository"
)

// Compile-time check that *SnippetStore implements
// repository.SnippetRepository. If a method goes missing the build breaks
// here, not at a distant call site.
var _ repository.SnippetRepository = (*SnippetStore)(nil)

// SnippetStore is the snippet repository view over the shared pool.
type SnippetStore struct {
	db *DB
}

// Insert stores a new snippet and returns its generated id.
//
// The created timestamp is set here, at the storage boundary, not by the
// caller — that keeps `expires - created` exact whatever the caller was
// doing before it reached us. expires = created + expiresDays days; the
// {1,7,365} membership check belongs to form validation, which every write
// path passes through first.
func (s *SnippetStore) Insert(ctx context.Context, title, content string, expiresDays int) (int64, error) {
	created := time.Now().UTC()
	expires := created.AddDate(0, 0, expiresDays)

	result, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO snippets (title, content, created, expires)
		 VALUES (?, ?, ?, ?)`,
		title, content, created, expires,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: inserting snippet: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlstore: reading snippet insert id: %w", err)
	}
	return id, nil
}

// Get returns the snippet with the given id, treating expired rows exactly
// like absent ones: both come back as apperror.ErrNotFound. The filter is
// in the WHERE clause, so an expired row never even leaves the database.
func (s *SnippetStore) Get(ctx context.Context, id int64) (*model.Snippet, error) {
	var sn model.Snippet

	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id, title, content, created, expires
		 FROM snippets
		 WHERE expires > ? AND id = ?`,
		time.Now().UTC(), id,
	).Scan(&sn.ID, &sn.Title, &sn.Content, &sn.Created, &sn.Expires)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("sqlstore: getting snippet %d: %w", id, err)
	}

	return &sn, nil
}

// Latest returns up to repository.LatestLimit non-expired snippets, newest
// first. The id is the recency proxy — it's monotonic on insert and cheaper
// to order by than the timestamp.
func (s *SnippetStore) Latest(ctx context.Context) ([]model.Snippet, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, title, content, created, expires
		 FROM snippets
		 WHERE expires > ?
		 ORDER BY id DESC
		 LIMIT ?`,
		time.Now().UTC(), repository.LatestLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing latest snippets: %w", err)
	}
	// rows holds a pool connection until closed; leaking it here would
	// eventually starve the whole server.
	defer rows.Close()

	snippets := make([]model.Snippet, 0, repository.LatestLimit)
	for rows.Next() {
		var sn model.Snippet
		if err := rows.Scan(&sn.ID, &sn.Title, &sn.Content, &sn.Created, &sn.Expires); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning snippet row: %w", err)
		}
		snippets = append(snippets, sn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating snippets: %w", err)
	}

	return snippets, nil
}
