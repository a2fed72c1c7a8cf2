package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"rentshop-backend/internal/apperrors"
	"rentshop-backend/internal/models"
)

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `id, name, email, password_hash, role, branch_id, is_active,
	COALESCE(gstin, ''), gst_included, COALESCE(upi_id, ''), totp_enabled, created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.BranchID, &u.IsActive,
		&u.GSTIN, &u.GSTIncluded, &u.UPIID, &u.TOTPEnabled, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, role, branch_id, is_active, gst_included)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := queryable(ctx, r.DB).QueryRow(ctx, query,
		u.Name, u.Email, u.PasswordHash, u.Role, u.BranchID, u.IsActive, u.GSTIncluded,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return mapError(err, "user")
	}
	return nil
}

func (r *UserRepository) Get(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(queryable(ctx, r.DB).QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "user")
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(queryable(ctx, r.DB).QueryRow(ctx, query, email))
	if err != nil {
		return nil, mapError(err, "user")
	}
	return u, nil
}

func (r *UserRepository) ListByBranch(ctx context.Context, branchID int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE branch_id = $1 ORDER BY name`
	rows, err := queryable(ctx, r.DB).Query(ctx, query, branchID)
	if err != nil {
		return nil, mapError(err, "users")
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError(err, "users")
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *UserRepository) SetActive(ctx context.Context, id int, active bool) error {
	tag, err := queryable(ctx, r.DB).Exec(ctx, `UPDATE users SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return mapError(err, "user")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("user %d not found", id)
	}
	return nil
}

// UpdateInvoiceSettings stores the billing identity printed on invoices.
func (r *UserRepository) UpdateInvoiceSettings(ctx context.Context, id int, gstin string, gstIncluded bool, upiID string) error {
	query := `UPDATE users SET gstin = $1, gst_included = $2, upi_id = $3 WHERE id = $4`
	tag, err := queryable(ctx, r.DB).Exec(ctx, query, gstin, gstIncluded, upiID, id)
	if err != nil {
		return mapError(err, "user")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("user %d not found", id)
	}
	return nil
}

// TOTP secrets are read separately from the profile so they never ride along
// on user fetches.
func (r *UserRepository) GetTOTPSecret(ctx context.Context, id int) (string, error) {
	var secret string
	err := queryable(ctx, r.DB).QueryRow(ctx, `SELECT COALESCE(totp_secret, '') FROM users WHERE id = $1`, id).Scan(&secret)
	if err != nil {
		return "", mapError(err, "user")
	}
	return secret, nil
}

func (r *UserRepository) SetTOTPSecret(ctx context.Context, id int, secret string, enabled bool) error {
	query := `UPDATE users SET totp_secret = $1, totp_enabled = $2 WHERE id = $3`
	tag, err := queryable(ctx, r.DB).Exec(ctx, query, secret, enabled, id)
	if err != nil {
		return mapError(err, "user")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("user %d not found", id)
	}
	return nil
}
