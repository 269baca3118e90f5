package store

import (
	"database/sql"
	"time"

	"github.com/arkive-app/arkive/internal/domain"
)

// CreateUser stores the hashed password of the single user.
func (db *DB) CreateUser(hashed string) error {
	_, err := db.Exec(`INSERT INTO user (hashed) VALUES (?)`, hashed)
	return err
}

// GetHashedPassword returns the stored hash, or "" when no user exists yet.
func (db *DB) GetHashedPassword() (string, error) {
	var hashed string
	err := db.Get(&hashed, `SELECT hashed FROM user WHERE rowid = 1`)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return hashed, nil
}

// Initialize flips the first-run flag after the user has been created.
func (db *DB) Initialize() error {
	_, err := db.Exec(`UPDATE metadata SET initialized = 1 WHERE rowid = 1`)
	return err
}

// CheckInitialized reports whether first-run setup has happened.
func (db *DB) CheckInitialized() (bool, error) {
	var initialized bool
	err := db.Get(&initialized, `SELECT initialized FROM metadata WHERE rowid = 1`)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return initialized, nil
}

// SetSession upserts a session token, refreshing its expiry.
func (db *DB) SetSession(token string, maxAge time.Duration) error {
	expiresAt := time.Now().Add(maxAge).Unix()
	_, err := db.Exec(`INSERT INTO session (token, expires_at) VALUES (?, ?)
		ON CONFLICT(token) DO UPDATE SET expires_at = excluded.expires_at`, token, expiresAt)
	return err
}

// GetSession returns the session for token, deleting and reporting nil when
// it has expired.
func (db *DB) GetSession(token string) (*domain.Session, error) {
	var session domain.Session
	err := db.Get(&session, `SELECT token, expires_at FROM session WHERE token = ?`, token)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if time.Now().Unix() > session.ExpiresAt {
		if err := db.DeleteSession(token); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &session, nil
}

// DeleteSession removes a session token. Deleting an absent token is not an
// error.
func (db *DB) DeleteSession(token string) error {
	_, err := db.Exec(`DELETE FROM session WHERE token = ?`, token)
	return err
}

// PruneSessions drops every expired session and returns how many went away.
func (db *DB) PruneSessions() (int64, error) {
	res, err := db.Exec(`DELETE FROM session WHERE expires_at < ?`, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
