package users

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/siggy-land/siggy/core"
)

//go:embed migrations/*.sql
var migrations embed.FS

const userColumns = `id, email, discord_username, twitter_username, wallet_address, created_at, updated_at`

// DBTX is satisfied by both *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore is a PostgreSQL implementation of the UserStore interface
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenPostgres opens a pgx-backed database handle and checks connectivity
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

// NewPostgresStore creates a new PostgreSQL user store
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// RunMigrations applies the embedded schema migrations
func (s *PostgresStore) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) EnsureUserFromIdentity(ctx context.Context, identity core.Identity) (*core.User, error) {
	identity, err := normalizeIdentity(identity)
	if err != nil {
		return nil, err
	}
	wallet := core.NormalizeAddress(identity.Identifier)
	now := s.now().UnixMilli()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer tx.Rollback()

	var identityID, userID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id, user_id FROM auth_identities WHERE provider = $1 AND provider_uid = $2`,
		identity.Provider, identity.ProviderUID).Scan(&identityID, &userID)

	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx,
			`UPDATE auth_identities SET identifier = $1, updated_at = $2 WHERE id = $3`,
			identity.Identifier, now, identityID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

	case errors.Is(err, sql.ErrNoRows):
		err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE wallet_address = $1`, wallet).Scan(&userID)
		if errors.Is(err, sql.ErrNoRows) {
			err = tx.QueryRowContext(ctx,
				`INSERT INTO users (wallet_address, created_at, updated_at) VALUES ($1, $2, $2) RETURNING id`,
				wallet, now).Scan(&userID)
		}
		if err != nil {
			return nil, classify(err, core.ErrIdentityConflict)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO auth_identities (user_id, provider, provider_uid, identifier, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $5)`,
			userID, identity.Provider, identity.ProviderUID, identity.Identifier, now); err != nil {
			return nil, classify(err, core.ErrIdentityConflict)
		}

	default:
		return nil, fmt.Errorf("db error: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET wallet_address = $1, updated_at = $2 WHERE id = $3`,
		wallet, now, userID); err != nil {
		return nil, classify(err, core.ErrContactTaken)
	}

	user, err := getUserByID(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (s *PostgresStore) GetUserByIdentity(ctx context.Context, provider core.Provider, providerUID string) (*core.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT u.id, u.email, u.discord_username, u.twitter_username, u.wallet_address, u.created_at, u.updated_at
		 FROM auth_identities i JOIN users u ON u.id = i.user_id
		 WHERE i.provider = $1 AND i.provider_uid = $2`,
		provider, providerUID)
	return scanUser(row)
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID int64) (*core.User, error) {
	return getUserByID(ctx, s.db, userID)
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, userID int64, patch core.ProfilePatch) (*core.User, error) {
	now := s.now().UnixMilli()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE users
		 SET email = $1, discord_username = $2, twitter_username = $3, wallet_address = $4, updated_at = $5
		 WHERE id = $6`,
		nullString(patch.Email), nullString(patch.Discord), nullString(patch.Twitter), nullString(patch.Wallet), now, userID)
	if err != nil {
		return nil, classify(err, core.ErrContactTaken)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, core.ErrUserNotFound
	}

	if patch.Wallet != "" {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO auth_identities (user_id, provider, provider_uid, identifier, created_at, updated_at)
			 VALUES ($1, $2, $3, $3, $4, $4)
			 ON CONFLICT (provider, provider_uid)
			 DO UPDATE SET identifier = excluded.identifier, updated_at = excluded.updated_at`,
			userID, core.ProviderWallet, patch.Wallet, now); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
	}

	user, err := getUserByID(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (s *PostgresStore) AddInteraction(ctx context.Context, userID int64, interaction core.Interaction) error {
	interaction, err := normalizeInteraction(interaction)
	if err != nil {
		return err
	}

	var metadata any
	if len(interaction.Metadata) > 0 {
		metadata = string(interaction.Metadata)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO interaction_events (user_id, type, value, metadata, created_at) VALUES ($1, $2, $3, $4, $5)`,
		userID, interaction.Type, interaction.Value, metadata, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRecentInteractions(ctx context.Context, userID int64, limit int) ([]core.InteractionEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, value, metadata, created_at
		 FROM interaction_events
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, core.ClampRecentLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var events []core.InteractionEvent
	for rows.Next() {
		var (
			e        core.InteractionEvent
			metadata sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Type, &e.Value, &metadata, &e.TS); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if metadata.Valid {
			e.Metadata = []byte(metadata.String)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return events, nil
}

func (s *PostgresStore) InteractionTotals(ctx context.Context, userID int64) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type, SUM(value) FROM interaction_events WHERE user_id = $1 GROUP BY type`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var (
			kind  string
			total int64
		)
		if err := rows.Scan(&kind, &total); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		totals[kind] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return totals, nil
}

func getUserByID(ctx context.Context, db DBTX, userID int64) (*core.User, error) {
	return scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
}

func scanUser(row *sql.Row) (*core.User, error) {
	var (
		u                               core.User
		email, discord, twitter, wallet sql.NullString
	)
	err := row.Scan(&u.ID, &email, &discord, &twitter, &wallet, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	u.Email = email.String
	u.Discord = discord.String
	u.Twitter = twitter.String
	u.Wallet = wallet.String
	return &u, nil
}

// classify maps a unique violation to onConflict and wraps everything else
func classify(err error, onConflict error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%w: %s", onConflict, pgErr.ConstraintName)
	}
	return fmt.Errorf("db error: %w", err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
