// Package sandbox implements a local, self-contained stand-in for the remote
// RaulCoin wallet service. It exists so the client can be exercised offline
// and in integration tests; it is not a production ledger.
package sandbox

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	// sqlite driver
	_ "modernc.org/sqlite"

	"raulwallet/internal/wallet"
)

// ErrNotFound is returned when no account matches the requested username.
var ErrNotFound = errors.New("account not found")

// ErrInsufficientFunds is returned when a transfer exceeds the sender's
// balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Account is a stored wallet account.
type Account struct {
	Name       string
	Username   string
	Email      string
	Balance    float64
	TotpSecret string
	Verified   bool
}

// Store persists sandbox accounts and movements in sqlite. Use ":memory:"
// for an ephemeral instance.
type Store struct {
	db *sql.DB
}

// OpenStore opens the database at path and runs migrations.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			username    TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			email       TEXT NOT NULL,
			balance     REAL NOT NULL DEFAULT 0,
			totp_secret TEXT NOT NULL,
			verified    INTEGER NOT NULL DEFAULT 0,
			created_at  INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS movements (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			kind          TEXT NOT NULL,
			amount        REAL NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			created_at    INTEGER NOT NULL,
			from_username TEXT,
			from_name     TEXT,
			to_username   TEXT NOT NULL,
			to_name       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_movements_from ON movements(from_username)`,
		`CREATE INDEX IF NOT EXISTS idx_movements_to ON movements(to_username)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateAccount inserts a new account. The username must be unique.
func (s *Store) CreateAccount(a Account) error {
	_, err := s.db.Exec(
		`INSERT INTO accounts (username, name, email, balance, totp_secret, verified, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.Username, a.Name, a.Email, a.Balance, a.TotpSecret, boolToInt(a.Verified), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// Account loads one account by username.
func (s *Store) Account(username string) (Account, error) {
	row := s.db.QueryRow(
		`SELECT username, name, email, balance, totp_secret, verified
		 FROM accounts WHERE username = ?`, username)

	var a Account
	var verified int
	err := row.Scan(&a.Username, &a.Name, &a.Email, &a.Balance, &a.TotpSecret, &verified)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("load account: %w", err)
	}
	a.Verified = verified != 0
	return a, nil
}

// MarkVerified records completed TOTP enrollment.
func (s *Store) MarkVerified(username string) error {
	res, err := s.db.Exec(`UPDATE accounts SET verified = 1 WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Search returns verified accounts whose name or username contains the query,
// case-insensitively, capped at 10 results.
func (s *Store) Search(query string) ([]wallet.Recipient, error) {
	pattern := "%" + query + "%"
	rows, err := s.db.Query(
		`SELECT name, username FROM accounts
		 WHERE verified = 1 AND (name LIKE ? OR username LIKE ?)
		 ORDER BY username LIMIT 10`, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}
	defer rows.Close()

	var out []wallet.Recipient
	for rows.Next() {
		var r wallet.Recipient
		if err := rows.Scan(&r.Name, &r.Username); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Award credits an amount out of thin air and records an award movement.
func (s *Store) Award(username, name string, amount float64, description string, at time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin award: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE accounts SET balance = balance + ? WHERE username = ?`, amount, username); err != nil {
		return fmt.Errorf("credit award: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO movements (kind, amount, description, created_at, to_username, to_name)
		 VALUES ('award', ?, ?, ?, ?, ?)`,
		amount, description, at.Unix(), username, name,
	); err != nil {
		return fmt.Errorf("record award: %w", err)
	}
	return tx.Commit()
}

// Transfer atomically moves funds between two accounts, records the movement,
// and returns the sender's new balance.
func (s *Store) Transfer(from, to Account, amount float64, description string, at time.Time) (float64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transfer: %w", err)
	}
	defer tx.Rollback()

	var balance float64
	if err := tx.QueryRow(`SELECT balance FROM accounts WHERE username = ?`, from.Username).Scan(&balance); err != nil {
		return 0, fmt.Errorf("load sender balance: %w", err)
	}
	if balance < amount {
		return 0, ErrInsufficientFunds
	}

	if _, err := tx.Exec(`UPDATE accounts SET balance = balance - ? WHERE username = ?`, amount, from.Username); err != nil {
		return 0, fmt.Errorf("debit sender: %w", err)
	}
	if _, err := tx.Exec(`UPDATE accounts SET balance = balance + ? WHERE username = ?`, amount, to.Username); err != nil {
		return 0, fmt.Errorf("credit recipient: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO movements (kind, amount, description, created_at, from_username, from_name, to_username, to_name)
		 VALUES ('transfer', ?, ?, ?, ?, ?, ?, ?)`,
		amount, description, at.Unix(), from.Username, from.Name, to.Username, to.Name,
	); err != nil {
		return 0, fmt.Errorf("record movement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transfer: %w", err)
	}
	return balance - amount, nil
}

// TransactionsFor returns the user's movements newest-first, typed relative
// to the viewer the way the remote service reports them.
func (s *Store) TransactionsFor(username string) ([]wallet.Transaction, error) {
	rows, err := s.db.Query(
		`SELECT kind, amount, description, created_at, from_username, from_name, to_username, to_name
		 FROM movements
		 WHERE from_username = ? OR to_username = ?
		 ORDER BY created_at DESC, id DESC`, username, username)
	if err != nil {
		return nil, fmt.Errorf("load movements: %w", err)
	}
	defer rows.Close()

	var out []wallet.Transaction
	for rows.Next() {
		var kind string
		var t wallet.Transaction
		var fromUsername, fromName sql.NullString
		if err := rows.Scan(&kind, &t.Amount, &t.Description, &t.CreatedAt,
			&fromUsername, &fromName, &t.ToUsername, &t.ToName); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		t.FromUsername = fromUsername.String
		t.FromName = fromName.String

		switch {
		case kind == "award":
			t.Type = wallet.TypeAward
		case t.FromUsername == username:
			t.Type = wallet.TypeSent
		default:
			t.Type = wallet.TypeReceived
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
