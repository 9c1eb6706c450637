package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/sakif/snippetbox/internal/apperror"
	"github.com/sakif/snippetbox/internal/model"
	"github.com/sakif/snippetbox/internal/repository"
)

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

// UserStore is the user repository view over the shared pool.
type UserStore struct {
	db *DB
}

// Insert creates a user. The plaintext password is bcrypt-hashed before it
// touches SQL and appears nowhere else — not in the row, not in a log line,
// not in an error message.
//
// A uniqueness violation on email is mapped to apperror.ErrDuplicateEmail
// so the signup handler can re-render the form with a field message instead
// of a 500. Detection is driver-specific: MySQL reports error 1062 on the
// users_uc_email key, SQLite reports a UNIQUE constraint failure naming the
// column.
func (s *UserStore) Insert(ctx context.Context, name, email, password string) (int64, error) {
	hashed, err := s.db.passwords.Hash(password)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: hashing password for new user: %w", err)
	}

	result, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO users (name, email, hashed_password, created)
		 VALUES (?, ?, ?, ?)`,
		name, email, hashed, time.Now().UTC(),
	)
	if err != nil {
		if isDuplicateEmail(s.db.driver, err) {
			return 0, apperror.DuplicateEmail()
		}
		return 0, fmt.Errorf("sqlstore: inserting user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlstore: reading user insert id: %w", err)
	}
	return id, nil
}

// Authenticate verifies email+password and returns the user's id.
//
// CREDENTIAL-PROBE RESISTANCE:
// "No such email" and "wrong password" return the same error value, so the
// response gives no signal about whether an account exists. The bcrypt
// comparison itself is constant-time.
func (s *UserStore) Authenticate(ctx context.Context, email, password string) (int64, error) {
	var (
		id     int64
		hashed []byte
	)

	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id, hashed_password FROM users WHERE email = ?`,
		email,
	).Scan(&id, &hashed)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, apperror.InvalidCredentials()
		}
		return 0, fmt.Errorf("sqlstore: looking up credentials: %w", err)
	}

	ok, err := s.db.passwords.Verify(hashed, password)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: verifying password: %w", err)
	}
	if !ok {
		return 0, apperror.InvalidCredentials()
	}

	return id, nil
}

// Exists reports whether a user row with the given id exists. "Not found"
// is a normal answer here — (false, nil) — because the auth resolver calls
// this on every authenticated request and a user deleted after their
// session was issued must simply degrade to anonymous.
func (s *UserStore) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool

	err := s.db.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlstore: checking user %d: %w", id, err)
	}
	return exists, nil
}

// Get returns the user's profile row.
func (s *UserStore) Get(ctx context.Context, id int64) (*model.User, error) {
	var u model.User

	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, hashed_password, created
		 FROM users WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.HashedPassword, &u.Created)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlstore: getting user %d: %w", id, err)
	}

	return &u, nil
}

// isDuplicateEmail recognises a uniqueness violation on users.email for the
// active driver.
func isDuplicateEmail(driver string, err error) bool {
	if driver == DriverMySQL {
		var mySQLErr *mysql.MySQLError
		if errors.As(err, &mySQLErr) {
			return mySQLErr.Number == 1062 &&
				strings.Contains(mySQLErr.Message, "users_uc_email")
		}
		return false
	}
	// modernc.org/sqlite reports constraint failures with the offending
	// column in the message.
	return strings.Contains(err.Error(), "UNIQUE constraint failed: users.email")
}

// isMySQLErr reports whether err is a MySQL server error with the given
// number.
func isMySQLErr(err error, number uint16) bool {
	var mySQLErr *mysql.MySQLError
	return errors.As(err, &mySQLErr) && mySQLErr.Number == number
}
