package services

import (
	"context"
	"log"
	"regexp"
	"strings"

	"rentshop-backend/internal/apperrors"
	"rentshop-backend/internal/cache"
	"rentshop-backend/internal/models"
	"rentshop-backend/internal/repositories"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

type CustomerService struct {
	customers *repositories.CustomerRepository
	orders    OrderStore
}

func NewCustomerService(customers *repositories.CustomerRepository, orders OrderStore) *CustomerService {
	return &CustomerService{customers: customers, orders: orders}
}

func (s *CustomerService) Create(ctx context.Context, req *models.CreateCustomerRequest) (*models.Customer, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.Validation("customer name is required")
	}
	if !phonePattern.MatchString(req.Phone) {
		return nil, apperrors.Validation("phone must be exactly 10 digits")
	}

	c := &models.Customer{
		CustomerNumber:  req.CustomerNumber,
		Name:            strings.TrimSpace(req.Name),
		Phone:           req.Phone,
		Email:           req.Email,
		Address:         req.Address,
		IDProofType:     req.IDProofType,
		IDProofNumber:   req.IDProofNumber,
		IDProofFrontURL: req.IDProofFrontURL,
		IDProofBackURL:  req.IDProofBackURL,
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	log.Printf("[Customer] created %s (id=%d)", c.Name, c.ID)
	return c, nil
}

// Get returns the customer with the due amount attached. The due amount is
// derived from open orders on every read, cached briefly, never stored.
func (s *CustomerService) Get(ctx context.Context, id int) (*models.Customer, error) {
	c, err := s.customers.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	due, err := s.DueAmount(ctx, id)
	if err != nil {
		return nil, err
	}
	c.DueAmount = due
	return c, nil
}

func (s *CustomerService) DueAmount(ctx context.Context, customerID int) (float64, error) {
	if due, ok := cache.GetCachedDueAmount(ctx, customerID); ok {
		return due, nil
	}
	due, err := s.orders.SumOpenTotalsByCustomer(ctx, customerID)
	if err != nil {
		return 0, err
	}
	cache.CacheDueAmount(ctx, customerID, due)
	return due, nil
}

func (s *CustomerService) List(ctx context.Context, limit, offset int) ([]*models.Customer, error) {
	return s.customers.List(ctx, limit, offset)
}

func (s *CustomerService) Search(ctx context.Context, term string) ([]*models.Customer, error) {
	if strings.TrimSpace(term) == "" {
		return nil, apperrors.Validation("search term is required")
	}
	return s.customers.Search(ctx, term, 50)
}

func (s *CustomerService) Update(ctx context.Context, id int, req *models.UpdateCustomerRequest) (*models.Customer, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.Validation("customer name is required")
	}
	if !phonePattern.MatchString(req.Phone) {
		return nil, apperrors.Validation("phone must be exactly 10 digits")
	}
	return s.customers.Update(ctx, id, req)
}
