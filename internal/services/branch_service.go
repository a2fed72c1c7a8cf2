package services

import (
	"context"
	"strings"

	"rentshop-backend/internal/apperrors"
	"rentshop-backend/internal/models"
	"rentshop-backend/internal/repositories"
)

type BranchService struct {
	branches *repositories.BranchRepository
}

func NewBranchService(branches *repositories.BranchRepository) *BranchService {
	return &BranchService{branches: branches}
}

func (s *BranchService) Create(ctx context.Context, req *models.CreateBranchRequest) (*models.Branch, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.Validation("branch name is required")
	}
	prefix := strings.ToUpper(strings.TrimSpace(req.InvoicePrefix))
	if prefix == "" {
		return nil, apperrors.Validation("invoice_prefix is required")
	}

	b := &models.Branch{
		Name:          strings.TrimSpace(req.Name),
		Address:       req.Address,
		Phone:         req.Phone,
		InvoicePrefix: prefix,
	}
	if err := s.branches.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BranchService) Get(ctx context.Context, id int) (*models.Branch, error) {
	return s.branches.Get(ctx, id)
}

func (s *BranchService) List(ctx context.Context) ([]*models.Branch, error) {
	return s.branches.List(ctx)
}

func (s *BranchService) Update(ctx context.Context, b *models.Branch) error {
	if strings.TrimSpace(b.Name) == "" {
		return apperrors.Validation("branch name is required")
	}
	b.InvoicePrefix = strings.ToUpper(strings.TrimSpace(b.InvoicePrefix))
	return s.branches.Update(ctx, b)
}
