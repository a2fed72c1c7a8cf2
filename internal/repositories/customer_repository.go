package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"rentshop-backend/internal/models"
)

type CustomerRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

const customerColumns = `id, COALESCE(customer_number, ''), name, phone, COALESCE(email, ''), COALESCE(address, ''),
	COALESCE(id_proof_type, ''), COALESCE(id_proof_number, ''),
	COALESCE(id_proof_front_url, ''), COALESCE(id_proof_back_url, ''), created_at`

func scanCustomer(row interface{ Scan(dest ...any) error }) (*models.Customer, error) {
	c := &models.Customer{}
	err := row.Scan(
		&c.ID, &c.CustomerNumber, &c.Name, &c.Phone, &c.Email, &c.Address,
		&c.IDProofType, &c.IDProofNumber, &c.IDProofFrontURL, &c.IDProofBackURL, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	query := `
		INSERT INTO customers (customer_number, name, phone, email, address,
			id_proof_type, id_proof_number, id_proof_front_url, id_proof_back_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	err := queryable(ctx, r.DB).QueryRow(ctx, query,
		c.CustomerNumber, c.Name, c.Phone, c.Email, c.Address,
		c.IDProofType, c.IDProofNumber, c.IDProofFrontURL, c.IDProofBackURL,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return mapError(err, "customer")
	}
	return nil
}

func (r *CustomerRepository) Get(ctx context.Context, id int) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	c, err := scanCustomer(queryable(ctx, r.DB).QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "customer")
	}
	return c, nil
}

func (r *CustomerRepository) GetByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE phone = $1`
	c, err := scanCustomer(queryable(ctx, r.DB).QueryRow(ctx, query, phone))
	if err != nil {
		return nil, mapError(err, "customer")
	}
	return c, nil
}

// Search matches name or phone, prefix-style for phone and substring for name.
func (r *CustomerRepository) Search(ctx context.Context, term string, limit int) ([]*models.Customer, error) {
	if limit <= 0 {
		limit = 50
	}
	term = strings.TrimSpace(term)
	query := `SELECT ` + customerColumns + ` FROM customers
		WHERE name ILIKE $1 OR phone LIKE $2
		ORDER BY name LIMIT $3`
	rows, err := queryable(ctx, r.DB).Query(ctx, query, "%"+term+"%", term+"%", limit)
	if err != nil {
		return nil, mapError(err, "customers")
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, mapError(err, "customers")
		}
		customers = append(customers, c)
	}
	return customers, nil
}

func (r *CustomerRepository) List(ctx context.Context, limit, offset int) ([]*models.Customer, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := queryable(ctx, r.DB).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, mapError(err, "customers")
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, mapError(err, "customers")
		}
		customers = append(customers, c)
	}
	return customers, nil
}

func (r *CustomerRepository) Update(ctx context.Context, id int, req *models.UpdateCustomerRequest) (*models.Customer, error) {
	query := fmt.Sprintf(`
		UPDATE customers
		SET name = $1, phone = $2, email = $3, address = $4,
		    id_proof_type = $5, id_proof_number = $6, id_proof_front_url = $7, id_proof_back_url = $8
		WHERE id = $9
		RETURNING %s`, customerColumns)
	c, err := scanCustomer(queryable(ctx, r.DB).QueryRow(ctx, query,
		req.Name, req.Phone, req.Email, req.Address,
		req.IDProofType, req.IDProofNumber, req.IDProofFrontURL, req.IDProofBackURL, id,
	))
	if err != nil {
		return nil, mapError(err, "customer")
	}
	return c, nil
}
