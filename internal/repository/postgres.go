package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/smallbiznis/valora-directory/internal/domain"
)

const uniqueViolationCode = "23505"

// Compile-time interface assertions.
var (
	_ UserRepository = (*PostgresUserRepo)(nil)
	_ OrgRepository  = (*PostgresOrgRepo)(nil)
	_ KeyRepository  = (*PostgresKeyRepo)(nil)
)

const userColumns = "id, org_id, name, email, password_hash, status, availability, role, last_login_at, created_at, updated_at"

// PostgresUserRepo implements UserRepository over pgx.
type PostgresUserRepo struct {
	db Queryer
}

func NewPostgresUserRepo(db Queryer) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

func (r *PostgresUserRepo) GetByID(ctx context.Context, orgID, userID int64) (domain.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE org_id = $1 AND id = $2 LIMIT 1`,
		orgID, userID)
	return scanUser(row)
}

func (r *PostgresUserRepo) GetByName(ctx context.Context, orgID int64, name string) (domain.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE org_id = $1 AND name = $2 LIMIT 1`,
		orgID, name)
	return scanUser(row)
}

// List returns org users matching the allow-listed filter, most recently
// signed-in first. The org constraint is always the first predicate and
// cannot be overridden by the filter.
func (r *PostgresUserRepo) List(ctx context.Context, orgID int64, filter ListFilter) ([]domain.User, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + userColumns + ` FROM users WHERE org_id = $1`)
	args := []any{orgID}

	appendEq := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		fmt.Fprintf(&sb, " AND %s = $%d", column, len(args))
	}
	appendEq("name", filter.Name)
	appendEq("email", filter.Email)
	appendEq("status", filter.Status)
	appendEq("availability", filter.Availability)
	appendEq("role", filter.Role)

	if filter.NotAvailability != "" {
		args = append(args, filter.NotAvailability)
		fmt.Fprintf(&sb, " AND availability <> $%d", len(args))
	}

	sb.WriteString(" ORDER BY last_login_at DESC NULLS LAST, id DESC")

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	row := r.db.QueryRow(ctx, `
        INSERT INTO users (id, org_id, name, email, password_hash, status, availability, role)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+userColumns,
		user.ID, user.OrgID, user.Name, user.Email, user.PasswordHash, user.Status, user.Availability, user.Role)

	created, err := scanUser(row)
	if err != nil {
		return domain.User{}, translatePgError(err)
	}
	return created, nil
}

// Update applies the non-nil patch fields. An empty patch degrades to a
// plain read so callers always get the current row back.
func (r *PostgresUserRepo) Update(ctx context.Context, orgID, userID int64, patch UserPatch) (domain.User, error) {
	var sets []string
	var args []any

	appendSet := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	appendSet("name", patch.Name)
	appendSet("email", patch.Email)
	appendSet("password_hash", patch.PasswordHash)
	appendSet("status", patch.Status)
	appendSet("availability", patch.Availability)
	appendSet("role", patch.Role)

	if len(sets) == 0 {
		return r.GetByID(ctx, orgID, userID)
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, orgID, userID)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE org_id = $%d AND id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), userColumns)

	updated, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return domain.User{}, translatePgError(err)
	}
	return updated, nil
}

func (r *PostgresUserRepo) Delete(ctx context.Context, orgID, userID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE org_id = $1 AND id = $2`, orgID, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepo) TouchLastLogin(ctx context.Context, orgID, userID int64, at time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET last_login_at = $3, updated_at = now() WHERE org_id = $1 AND id = $2`,
		orgID, userID, at)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.OrgID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Status,
		&u.Availability,
		&u.Role,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// translatePgError maps the storage engine's duplicate-key signal onto
// the typed conflict outcome; everything else passes through.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return domain.ErrUserAlreadyRegistered
	}
	return err
}

const orgColumns = "id, slug, name, status, created_at, updated_at"

// PostgresOrgRepo implements OrgRepository.
type PostgresOrgRepo struct {
	db Queryer
}

func NewPostgresOrgRepo(db Queryer) *PostgresOrgRepo {
	return &PostgresOrgRepo{db: db}
}

func (r *PostgresOrgRepo) GetByID(ctx context.Context, orgID int64) (domain.Org, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orgColumns+` FROM orgs WHERE id = $1 LIMIT 1`, orgID)
	return scanOrg(row)
}

func (r *PostgresOrgRepo) GetBySlug(ctx context.Context, slug string) (domain.Org, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orgColumns+` FROM orgs WHERE slug = $1 LIMIT 1`, slug)
	return scanOrg(row)
}

func (r *PostgresOrgRepo) Create(ctx context.Context, org domain.Org) (domain.Org, error) {
	row := r.db.QueryRow(ctx, `
        INSERT INTO orgs (id, slug, name, status)
        VALUES ($1, $2, $3, $4)
        RETURNING `+orgColumns,
		org.ID, org.Slug, org.Name, org.Status)
	created, err := scanOrg(row)
	if err != nil {
		return domain.Org{}, fmt.Errorf("create org: %w", err)
	}
	return created, nil
}

func scanOrg(row pgx.Row) (domain.Org, error) {
	var o domain.Org
	err := row.Scan(&o.ID, &o.Slug, &o.Name, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Org{}, domain.ErrNotFound
		}
		return domain.Org{}, fmt.Errorf("scan org: %w", err)
	}
	return o, nil
}

const keyColumns = "id, org_id, kid, secret, algorithm, is_active, created_at, rotated_at"

// PostgresKeyRepo implements KeyRepository.
type PostgresKeyRepo struct {
	db Queryer
}

func NewPostgresKeyRepo(db Queryer) *PostgresKeyRepo {
	return &PostgresKeyRepo{db: db}
}

func (r *PostgresKeyRepo) GetActiveKey(ctx context.Context, orgID int64) (domain.SigningKey, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+keyColumns+` FROM signing_keys WHERE org_id = $1 AND is_active LIMIT 1`, orgID)
	return scanKey(row)
}

// CreateKey inserts a new active key. The partial unique index on
// (org_id) WHERE is_active means a concurrent provisioner loses with
// domain.ErrConflict and should re-read the winner's key.
func (r *PostgresKeyRepo) CreateKey(ctx context.Context, key domain.SigningKey) (domain.SigningKey, error) {
	row := r.db.QueryRow(ctx, `
        INSERT INTO signing_keys (org_id, kid, secret, algorithm, is_active)
        VALUES ($1, $2, $3, $4, true)
        RETURNING `+keyColumns,
		key.OrgID, key.KID, key.Secret, key.Algorithm)
	created, err := scanKey(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domain.SigningKey{}, domain.ErrConflict
		}
		return domain.SigningKey{}, fmt.Errorf("create signing key: %w", err)
	}
	return created, nil
}

func scanKey(row pgx.Row) (domain.SigningKey, error) {
	var k domain.SigningKey
	err := row.Scan(&k.ID, &k.OrgID, &k.KID, &k.Secret, &k.Algorithm, &k.IsActive, &k.CreatedAt, &k.RotatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SigningKey{}, domain.ErrNotFound
		}
		return domain.SigningKey{}, fmt.Errorf("scan signing key: %w", err)
	}
	return k, nil
}
