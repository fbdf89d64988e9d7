package store

import (
	"context"
	"database/sql"

	"github.com/clinic-records/apiserver/types"
)

// DoctorAssociationRepository handles the doctor_specialties and
// doctor_departments join tables. Role checks live in insert triggers.
type DoctorAssociationRepository struct {
	db *sql.DB
}

func NewDoctorAssociationRepository(db *sql.DB) *DoctorAssociationRepository {
	return &DoctorAssociationRepository{db: db}
}

func (r *DoctorAssociationRepository) AssignSpecialty(ctx context.Context, doctorID, specialtyID int) error {
	const query = `INSERT INTO doctor_specialties (doctor_id, specialty_id) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, doctorID, specialtyID); err != nil {
		return translateError(err)
	}
	return nil
}

func (r *DoctorAssociationRepository) AssignDepartment(ctx context.Context, doctorID, departmentID int) error {
	const query = `INSERT INTO doctor_departments (doctor_id, department_id) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, doctorID, departmentID); err != nil {
		return translateError(err)
	}
	return nil
}

func (r *DoctorAssociationRepository) RemoveSpecialty(ctx context.Context, doctorID, specialtyID int) (int64, error) {
	const query = `DELETE FROM doctor_specialties WHERE doctor_id = $1 AND specialty_id = $2`
	result, err := r.db.ExecContext(ctx, query, doctorID, specialtyID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *DoctorAssociationRepository) RemoveDepartment(ctx context.Context, doctorID, departmentID int) (int64, error) {
	const query = `DELETE FROM doctor_departments WHERE doctor_id = $1 AND department_id = $2`
	result, err := r.db.ExecContext(ctx, query, doctorID, departmentID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *DoctorAssociationRepository) SpecialtiesOfDoctor(ctx context.Context, doctorID int) ([]types.Specialty, error) {
	const query = `
		SELECT s.id, s.name, s.description
		FROM doctor_specialties ds
		INNER JOIN specialties s ON ds.specialty_id = s.id
		WHERE ds.doctor_id = $1
		ORDER BY s.id`
	return listCatalog(ctx, r.db, query, newSpecialty, doctorID)
}

func (r *DoctorAssociationRepository) DepartmentsOfDoctor(ctx context.Context, doctorID int) ([]types.Department, error) {
	const query = `
		SELECT d.id, d.name, d.description
		FROM doctor_departments dd
		INNER JOIN departments d ON dd.department_id = d.id
		WHERE dd.doctor_id = $1
		ORDER BY d.id`
	return listCatalog(ctx, r.db, query, newDepartment, doctorID)
}

func (r *DoctorAssociationRepository) DoctorsBySpecialty(ctx context.Context, specialtyID int) ([]types.Doctor, error) {
	const query = `
		SELECT u.id, u.username, u.email, u.role
		FROM doctor_specialties ds
		INNER JOIN users u ON ds.doctor_id = u.id
		WHERE ds.specialty_id = $1 AND u.role = 'doctor'
		ORDER BY u.id`
	return r.doctors(ctx, query, specialtyID)
}

func (r *DoctorAssociationRepository) DoctorsByDepartment(ctx context.Context, departmentID int) ([]types.Doctor, error) {
	const query = `
		SELECT u.id, u.username, u.email, u.role
		FROM doctor_departments dd
		INNER JOIN users u ON dd.doctor_id = u.id
		WHERE dd.department_id = $1 AND u.role = 'doctor'
		ORDER BY u.id`
	return r.doctors(ctx, query, departmentID)
}

func (r *DoctorAssociationRepository) doctors(ctx context.Context, query string, arg int) ([]types.Doctor, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	doctors := make([]types.Doctor, 0)
	for rows.Next() {
		var doctor types.Doctor
		if err := rows.Scan(&doctor.ID, &doctor.Username, &doctor.Email, &doctor.Role); err != nil {
			return nil, err
		}
		doctors = append(doctors, doctor)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return doctors, nil
}
