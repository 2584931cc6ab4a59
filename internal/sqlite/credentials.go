package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/owuorviny109/crmsync/internal/crm"
)

const (
	keyToken = "token"
	keyUser  = "user"
)

// CredentialCache implements store.CredentialCache on SQLite. Clear
// is idempotent: the transport layer's authorization-failure hook may
// call it while a session action is mid-flight.
type CredentialCache struct {
	db *DB
}

// NewCredentialCache creates a new CredentialCache
func NewCredentialCache(db *DB) *CredentialCache {
	return &CredentialCache{db: db}
}

// Load returns the persisted token and user, empty when absent.
func (c *CredentialCache) Load() (string, *crm.User, error) {
	token, err := c.value(keyToken)
	if err != nil {
		return "", nil, err
	}

	raw, err := c.value(keyUser)
	if err != nil {
		return "", nil, err
	}
	var user *crm.User
	if raw != "" {
		user = &crm.User{}
		if err := json.Unmarshal([]byte(raw), user); err != nil {
			return "", nil, fmt.Errorf("decode cached user: %w", err)
		}
	}

	return token, user, nil
}

// Save persists the token and user together.
func (c *CredentialCache) Save(token string, user *crm.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if err := upsert(tx, keyToken, token); err != nil {
		return err
	}
	if err := upsert(tx, keyUser, string(data)); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveUser persists the user without touching the token.
func (c *CredentialCache) SaveUser(user *crm.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	query := `
		INSERT INTO credentials (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := c.db.Exec(query, keyUser, string(data)); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Clear removes the token and user. Clearing an already empty cache
// is a no-op.
func (c *CredentialCache) Clear() error {
	if _, err := c.db.Exec(`DELETE FROM credentials WHERE key IN (?, ?)`, keyToken, keyUser); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

func (c *CredentialCache) value(key string) (string, error) {
	var value string
	err := c.db.QueryRow(`SELECT value FROM credentials WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load credential %q: %w", key, err)
	}
	return value, nil
}

func upsert(tx *sql.Tx, key, value string) error {
	query := `
		INSERT INTO credentials (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := tx.Exec(query, key, value); err != nil {
		return fmt.Errorf("save credential %q: %w", key, err)
	}
	return nil
}
