package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clinic-records/apiserver/types"
)

// Departments and specialties share the same (id, name, description) shape,
// so both repositories are thin views over these helpers.

func getCatalog[T any](ctx context.Context, db *sql.DB, table string, id int, build func(int, string, *string) T) (T, error) {
	var (
		zero        T
		entryID     int
		name        string
		description *string
	)
	query := fmt.Sprintf("SELECT id, name, description FROM %s WHERE id = $1", table)
	if err := db.QueryRowContext(ctx, query, id).Scan(&entryID, &name, &description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return build(entryID, name, description), nil
}

func listCatalog[T any](ctx context.Context, db *sql.DB, query string, build func(int, string, *string) T, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]T, 0)
	for rows.Next() {
		var (
			id          int
			name        string
			description *string
		)
		if err := rows.Scan(&id, &name, &description); err != nil {
			return nil, err
		}
		entries = append(entries, build(id, name, description))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func createCatalog(ctx context.Context, db *sql.DB, table, name string, description *string) (int, error) {
	query := fmt.Sprintf("INSERT INTO %s (name, description) VALUES ($1, $2) RETURNING id", table)
	var id int
	if err := db.QueryRowContext(ctx, query, name, description).Scan(&id); err != nil {
		return 0, translateError(err)
	}
	return id, nil
}

func updateCatalog(ctx context.Context, db *sql.DB, table string, id int, patch types.CatalogPatch) (int64, error) {
	b := newUpdate(table)
	setIf(b, "name", patch.Name)
	setIf(b, "description", patch.Description)
	return b.exec(ctx, db, id)
}

func newDepartment(id int, name string, description *string) types.Department {
	return types.Department{ID: id, Name: name, Description: description}
}

func newSpecialty(id int, name string, description *string) types.Specialty {
	return types.Specialty{ID: id, Name: name, Description: description}
}

// DepartmentRepository handles persistence for departments.
type DepartmentRepository struct {
	db *sql.DB
}

func NewDepartmentRepository(db *sql.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) Get(ctx context.Context, id int) (types.Department, error) {
	return getCatalog(ctx, r.db, "departments", id, newDepartment)
}

func (r *DepartmentRepository) List(ctx context.Context) ([]types.Department, error) {
	return listCatalog(ctx, r.db, `SELECT id, name, description FROM departments ORDER BY id`, newDepartment)
}

func (r *DepartmentRepository) Create(ctx context.Context, department types.Department) (types.Department, error) {
	id, err := createCatalog(ctx, r.db, "departments", department.Name, department.Description)
	if err != nil {
		return types.Department{}, err
	}
	department.ID = id
	return department, nil
}

func (r *DepartmentRepository) Update(ctx context.Context, id int, patch types.CatalogPatch) (int64, error) {
	return updateCatalog(ctx, r.db, "departments", id, patch)
}

func (r *DepartmentRepository) Delete(ctx context.Context, id int) (int64, error) {
	return deleteByID(ctx, r.db, "departments", id)
}

// SpecialtyRepository handles persistence for specialties.
type SpecialtyRepository struct {
	db *sql.DB
}

func NewSpecialtyRepository(db *sql.DB) *SpecialtyRepository {
	return &SpecialtyRepository{db: db}
}

func (r *SpecialtyRepository) Get(ctx context.Context, id int) (types.Specialty, error) {
	return getCatalog(ctx, r.db, "specialties", id, newSpecialty)
}

func (r *SpecialtyRepository) List(ctx context.Context) ([]types.Specialty, error) {
	return listCatalog(ctx, r.db, `SELECT id, name, description FROM specialties ORDER BY id`, newSpecialty)
}

func (r *SpecialtyRepository) Create(ctx context.Context, specialty types.Specialty) (types.Specialty, error) {
	id, err := createCatalog(ctx, r.db, "specialties", specialty.Name, specialty.Description)
	if err != nil {
		return types.Specialty{}, err
	}
	specialty.ID = id
	return specialty, nil
}

func (r *SpecialtyRepository) Update(ctx context.Context, id int, patch types.CatalogPatch) (int64, error) {
	return updateCatalog(ctx, r.db, "specialties", id, patch)
}

func (r *SpecialtyRepository) Delete(ctx context.Context, id int) (int64, error) {
	return deleteByID(ctx, r.db, "specialties", id)
}
