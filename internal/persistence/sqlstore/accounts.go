package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/eventhub/internal/persistence"
	"github.com/example/eventhub/internal/query"
)

var profileCollection = collection{
	fields: map[string]string{
		"id":        "id",
		"username":  "username",
		"full_name": "full_name",
		"last_seen": "last_seen",
	},
	tiebreak: "id",
}

const profileColumns = `id, username, full_name, avatar_url, website, last_seen, created_at, updated_at`

// CreateAccount inserts a new account. Emails are compared case-insensitively.
func (s *Store) CreateAccount(ctx context.Context, account persistence.Account) error {
	if account.ID == "" || account.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}
	now := s.timestamp()
	_, err := s.helper.Exec(ctx, `
		INSERT INTO accounts (id, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		account.ID,
		normalizeEmail(account.Email),
		account.PasswordHash,
		formatTime(now),
		formatTime(now),
	)
	return s.mapper.MapError(err)
}

// GetAccount retrieves an account by ID.
func (s *Store) GetAccount(ctx context.Context, id string) (persistence.Account, error) {
	if id == "" {
		return persistence.Account{}, persistence.ErrNotFound
	}
	row := s.helper.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at, updated_at
		FROM accounts WHERE id = ?`, id)
	return s.scanAccount(row)
}

// GetAccountByEmail retrieves an account by email address.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (persistence.Account, error) {
	if email == "" {
		return persistence.Account{}, persistence.ErrNotFound
	}
	row := s.helper.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at, updated_at
		FROM accounts WHERE email = ?`, normalizeEmail(email))
	return s.scanAccount(row)
}

func (s *Store) scanAccount(row *sql.Row) (persistence.Account, error) {
	var (
		account            persistence.Account
		createdAt, updated string
	)
	if err := row.Scan(&account.ID, &account.Email, &account.PasswordHash, &createdAt, &updated); err != nil {
		return persistence.Account{}, s.mapper.MapError(err)
	}
	var err error
	if account.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Account{}, err
	}
	if account.UpdatedAt, err = parseTime("updated_at", updated); err != nil {
		return persistence.Account{}, err
	}
	return account, nil
}

// UpsertProfile inserts the profile or overwrites its editable fields.
func (s *Store) UpsertProfile(ctx context.Context, profile persistence.Profile) error {
	if profile.ID == "" {
		return persistence.ErrConstraintViolation
	}
	now := s.timestamp()
	lastSeen := profile.LastSeen
	if lastSeen.IsZero() {
		lastSeen = now
	}
	_, err := s.helper.Exec(ctx, `
		INSERT INTO profiles (id, username, full_name, avatar_url, website, last_seen, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = excluded.username,
			full_name = excluded.full_name,
			avatar_url = excluded.avatar_url,
			website = excluded.website,
			updated_at = excluded.updated_at`,
		profile.ID,
		profile.Username,
		profile.FullName,
		profile.AvatarURL,
		profile.Website,
		formatTime(lastSeen),
		formatTime(now),
		formatTime(now),
	)
	return s.mapper.MapError(err)
}

// GetProfile retrieves a profile by ID.
func (s *Store) GetProfile(ctx context.Context, id string) (persistence.Profile, error) {
	rows, err := s.helper.Query(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	if err != nil {
		return persistence.Profile{}, s.mapper.MapError(err)
	}
	profiles, err := scanProfiles(rows)
	if err != nil {
		return persistence.Profile{}, err
	}
	if len(profiles) == 0 {
		return persistence.Profile{}, persistence.ErrNotFound
	}
	return profiles[0], nil
}

// ListProfiles returns profiles matching the query.
func (s *Store) ListProfiles(ctx context.Context, q query.Query) ([]persistence.Profile, error) {
	statement, args, err := profileCollection.build(`SELECT `+profileColumns+` FROM profiles`, q)
	if err != nil {
		return nil, err
	}
	rows, err := s.helper.Query(ctx, statement, args...)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	return scanProfiles(rows)
}

// TouchLastSeen records activity for the profile.
func (s *Store) TouchLastSeen(ctx context.Context, id string, seenAt time.Time) error {
	result, err := s.helper.Exec(ctx, `UPDATE profiles SET last_seen = ? WHERE id = ?`, formatTime(seenAt), id)
	if err != nil {
		return s.mapper.MapError(err)
	}
	return requireAffected(result)
}

func scanProfiles(rows *sql.Rows) ([]persistence.Profile, error) {
	defer rows.Close()

	profiles := make([]persistence.Profile, 0)
	for rows.Next() {
		var (
			profile                      persistence.Profile
			lastSeen, created, updatedAt string
		)
		if err := rows.Scan(&profile.ID, &profile.Username, &profile.FullName, &profile.AvatarURL, &profile.Website, &lastSeen, &created, &updatedAt); err != nil {
			return nil, err
		}
		var err error
		if profile.LastSeen, err = parseTime("last_seen", lastSeen); err != nil {
			return nil, err
		}
		if profile.CreatedAt, err = parseTime("created_at", created); err != nil {
			return nil, err
		}
		if profile.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
