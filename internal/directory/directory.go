package directory

import (
	"context"
	"errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ClientID string
	Password string
}

type Credentials struct {
	ClientID string `json:"clientId"`
	Password string `json:"password"`
}

// Static mencocokkan clientId + password apa adanya (tanpa hash).
// Cocok untuk test dan fixture; jangan dipakai di production.
type Static []User

func (s Static) Lookup(_ context.Context, c Credentials) (User, bool, error) {
	for _, u := range s {
		if u.ClientID == c.ClientID && u.Password == c.Password {
			return u, true, nil
		}
	}
	return User{}, false, nil
}

// Repo reads users from Postgres. users.password_hash holds a bcrypt hash.
type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Lookup(ctx context.Context, c Credentials) (User, bool, error) {
	var hash string
	err := r.DB.QueryRow(ctx, `SELECT password_hash FROM users WHERE client_id=$1`, c.ClientID).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	if !Matches(hash, c.Password) {
		return User{}, false, nil
	}
	return User{ClientID: c.ClientID}, true, nil
}

// Hash dipakai waktu seeding user.
func Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func Matches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
