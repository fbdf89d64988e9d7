package services

import (
	"context"

	"github.com/clinic-records/apiserver/internal/store"
	"github.com/clinic-records/apiserver/types"
)

// DepartmentRepository defines persistence operations for departments.
type DepartmentRepository interface {
	Get(ctx context.Context, id int) (types.Department, error)
	List(ctx context.Context) ([]types.Department, error)
	Create(ctx context.Context, department types.Department) (types.Department, error)
	Update(ctx context.Context, id int, patch types.CatalogPatch) (int64, error)
	Delete(ctx context.Context, id int) (int64, error)
}

// DepartmentService encapsulates department use-cases.
type DepartmentService struct {
	repo DepartmentRepository
}

func NewDepartmentService(repo DepartmentRepository) *DepartmentService {
	return &DepartmentService{repo: repo}
}

func (s *DepartmentService) Get(ctx context.Context, id int) (types.Department, error) {
	return s.repo.Get(ctx, id)
}

func (s *DepartmentService) List(ctx context.Context) ([]types.Department, error) {
	return s.repo.List(ctx)
}

func (s *DepartmentService) Create(ctx context.Context, department types.Department) (types.Department, error) {
	return s.repo.Create(ctx, department)
}

func (s *DepartmentService) Update(ctx context.Context, id int, patch types.CatalogPatch) (int64, error) {
	if patch.Empty() {
		return 0, store.ErrEmptyUpdate
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *DepartmentService) Delete(ctx context.Context, id int) (int64, error) {
	return s.repo.Delete(ctx, id)
}

// SpecialtyRepository defines persistence operations for specialties.
type SpecialtyRepository interface {
	Get(ctx context.Context, id int) (types.Specialty, error)
	List(ctx context.Context) ([]types.Specialty, error)
	Create(ctx context.Context, specialty types.Specialty) (types.Specialty, error)
	Update(ctx context.Context, id int, patch types.CatalogPatch) (int64, error)
	Delete(ctx context.Context, id int) (int64, error)
}

// SpecialtyService encapsulates specialty use-cases.
type SpecialtyService struct {
	repo SpecialtyRepository
}

func NewSpecialtyService(repo SpecialtyRepository) *SpecialtyService {
	return &SpecialtyService{repo: repo}
}

func (s *SpecialtyService) Get(ctx context.Context, id int) (types.Specialty, error) {
	return s.repo.Get(ctx, id)
}

func (s *SpecialtyService) List(ctx context.Context) ([]types.Specialty, error) {
	return s.repo.List(ctx)
}

func (s *SpecialtyService) Create(ctx context.Context, specialty types.Specialty) (types.Specialty, error) {
	return s.repo.Create(ctx, specialty)
}

func (s *SpecialtyService) Update(ctx context.Context, id int, patch types.CatalogPatch) (int64, error) {
	if patch.Empty() {
		return 0, store.ErrEmptyUpdate
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *SpecialtyService) Delete(ctx context.Context, id int) (int64, error) {
	return s.repo.Delete(ctx, id)
}
