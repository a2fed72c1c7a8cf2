package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"rentshop-backend/internal/apperrors"
	"rentshop-backend/internal/models"
)

type BranchRepository struct {
	DB *pgxpool.Pool
}

func NewBranchRepository(db *pgxpool.Pool) *BranchRepository {
	return &BranchRepository{DB: db}
}

const branchColumns = `id, name, COALESCE(address, ''), COALESCE(phone, ''), invoice_prefix, created_at`

func scanBranch(row interface{ Scan(dest ...any) error }) (*models.Branch, error) {
	b := &models.Branch{}
	err := row.Scan(&b.ID, &b.Name, &b.Address, &b.Phone, &b.InvoicePrefix, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BranchRepository) Create(ctx context.Context, b *models.Branch) error {
	query := `
		INSERT INTO branches (name, address, phone, invoice_prefix)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := queryable(ctx, r.DB).QueryRow(ctx, query, b.Name, b.Address, b.Phone, b.InvoicePrefix).
		Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return mapError(err, "branch")
	}
	return nil
}

func (r *BranchRepository) Get(ctx context.Context, id int) (*models.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches WHERE id = $1`
	b, err := scanBranch(queryable(ctx, r.DB).QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "branch")
	}
	return b, nil
}

func (r *BranchRepository) List(ctx context.Context) ([]*models.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches ORDER BY name`
	rows, err := queryable(ctx, r.DB).Query(ctx, query)
	if err != nil {
		return nil, mapError(err, "branches")
	}
	defer rows.Close()

	var branches []*models.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, mapError(err, "branches")
		}
		branches = append(branches, b)
	}
	return branches, nil
}

func (r *BranchRepository) Update(ctx context.Context, b *models.Branch) error {
	query := `UPDATE branches SET name = $1, address = $2, phone = $3, invoice_prefix = $4 WHERE id = $5`
	tag, err := queryable(ctx, r.DB).Exec(ctx, query, b.Name, b.Address, b.Phone, b.InvoicePrefix, b.ID)
	if err != nil {
		return mapError(err, "branch")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("branch not found")
	}
	return nil
}
