package services

import (
	"context"

	"github.com/clinic-records/apiserver/types"
)

// DoctorAssociationRepository defines persistence operations for the
// doctor/specialty and doctor/department join tables.
type DoctorAssociationRepository interface {
	AssignSpecialty(ctx context.Context, doctorID, specialtyID int) error
	AssignDepartment(ctx context.Context, doctorID, departmentID int) error
	RemoveSpecialty(ctx context.Context, doctorID, specialtyID int) (int64, error)
	RemoveDepartment(ctx context.Context, doctorID, departmentID int) (int64, error)
	SpecialtiesOfDoctor(ctx context.Context, doctorID int) ([]types.Specialty, error)
	DepartmentsOfDoctor(ctx context.Context, doctorID int) ([]types.Department, error)
	DoctorsBySpecialty(ctx context.Context, specialtyID int) ([]types.Doctor, error)
	DoctorsByDepartment(ctx context.Context, departmentID int) ([]types.Doctor, error)
}

// DoctorAssociationService encapsulates doctor association use-cases.
type DoctorAssociationService struct {
	repo DoctorAssociationRepository
}

func NewDoctorAssociationService(repo DoctorAssociationRepository) *DoctorAssociationService {
	return &DoctorAssociationService{repo: repo}
}

func (s *DoctorAssociationService) AssignSpecialty(ctx context.Context, doctorID, specialtyID int) error {
	return s.repo.AssignSpecialty(ctx, doctorID, specialtyID)
}

func (s *DoctorAssociationService) AssignDepartment(ctx context.Context, doctorID, departmentID int) error {
	return s.repo.AssignDepartment(ctx, doctorID, departmentID)
}

func (s *DoctorAssociationService) RemoveSpecialty(ctx context.Context, doctorID, specialtyID int) (int64, error) {
	return s.repo.RemoveSpecialty(ctx, doctorID, specialtyID)
}

func (s *DoctorAssociationService) RemoveDepartment(ctx context.Context, doctorID, departmentID int) (int64, error) {
	return s.repo.RemoveDepartment(ctx, doctorID, departmentID)
}

func (s *DoctorAssociationService) SpecialtiesOfDoctor(ctx context.Context, doctorID int) ([]types.Specialty, error) {
	return s.repo.SpecialtiesOfDoctor(ctx, doctorID)
}

func (s *DoctorAssociationService) DepartmentsOfDoctor(ctx context.Context, doctorID int) ([]types.Department, error) {
	return s.repo.DepartmentsOfDoctor(ctx, doctorID)
}

func (s *DoctorAssociationService) DoctorsBySpecialty(ctx context.Context, specialtyID int) ([]types.Doctor, error) {
	return s.repo.DoctorsBySpecialty(ctx, specialtyID)
}

func (s *DoctorAssociationService) DoctorsByDepartment(ctx context.Context, departmentID int) ([]types.Doctor, error) {
	return s.repo.DoctorsByDepartment(ctx, departmentID)
}
