package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/beconnected/beconnected"
	"gorm.io/gorm"
)

// SearchLimit caps how many users a UserStore.Search returns.
const SearchLimit = 50

// userRecord is the users table row.
type userRecord struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt
	AccessState  string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash []byte
	Username     string
}

func newUserRecord(u beconnected.User) userRecord {
	return userRecord{
		ID:           u.ID,
		AccessState:  u.AccessState.String(),
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		Username:     u.Username,
	}
}

func (r userRecord) user() beconnected.User {
	u := beconnected.User{
		AccessState:  beconnected.AccessState(r.AccessState),
		Email:        r.Email,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		PasswordHash: r.PasswordHash,
		Username:     r.Username,
	}
	u.ID = r.ID
	u.CreatedAt = r.CreatedAt
	u.UpdatedAt = r.UpdatedAt
	u.DeletedAt.NullTime = sql.NullTime(r.DeletedAt)

	return u
}

// A UserStore persists users in the users table.
// It satisfies auth.UserStore.
type UserStore struct {
	db *DB
}

// NewUserStore constructs a *UserStore querying db.
func NewUserStore(db *DB) *UserStore { return &UserStore{db: db} }

// Create inserts u, setting its ID and timestamps.
// A username or email already taken, ignoring case, returns ErrExists.
func (s *UserStore) Create(ctx context.Context, u *beconnected.User) error {
	if u == nil {
		return fmt.Errorf("%w: nil user", beconnected.ErrMissingData)
	}

	rec := newUserRecord(*u)
	if err := s.db.WithContext(ctx).Create(&rec); err != nil {
		return err
	}

	*u = rec.user()
	return nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (beconnected.User, error) {
	return s.first(ctx, "LOWER(email) = LOWER(?)", email)
}

func (s *UserStore) FindByID(ctx context.Context, id uint) (beconnected.User, error) {
	if id == 0 {
		return beconnected.User{}, fmt.Errorf("%w: user 0", beconnected.ErrNotExist)
	}

	return s.first(ctx, "id = ?", id)
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (beconnected.User, error) {
	return s.first(ctx, "LOWER(username) = LOWER(?)", username)
}

// Search matches query against usernames, first names and last names, ignoring case,
// and never returns the user identified by excludeID.
func (s *UserStore) Search(ctx context.Context, query string, excludeID uint) ([]beconnected.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []beconnected.User{}, nil
	}

	var recs []userRecord
	err := s.db.
		WithContext(ctx).
		Where("id <> ?", excludeID).
		Where(
			"(username ILIKE @q OR first_name ILIKE @q OR last_name ILIKE @q)",
			sql.Named("q", "%"+escapeLike(query)+"%"),
		).
		Order("id").
		Limit(SearchLimit).
		Find(&recs)
	if err != nil {
		return nil, err
	}

	users := make([]beconnected.User, len(recs))
	for i, r := range recs {
		users[i] = r.user()
	}

	return users, nil
}

func (s *UserStore) first(ctx context.Context, query string, arg any) (beconnected.User, error) {
	var rec userRecord
	if err := s.db.WithContext(ctx).Where(query, arg).First(&rec); err != nil {
		return beconnected.User{}, err
	}

	return rec.user(), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE wildcards in s.
func escapeLike(s string) string { return likeEscaper.Replace(s) }
