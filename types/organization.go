package types

// Department is a hospital department such as Cardiology or Emergency.
type Department struct {
	ID          int     `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
}

// Specialty is a medical specialty a doctor can practise.
type Specialty struct {
	ID          int     `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
}

// CatalogPatch is the partial update shared by departments and specialties.
type CatalogPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (p CatalogPatch) Empty() bool {
	return p.Name == nil && p.Description == nil
}

// Doctor is the public projection of a user with the doctor role.
type Doctor struct {
	ID       int     `json:"id" db:"id"`
	Username string  `json:"username" db:"username"`
	Email    *string `json:"email,omitempty" db:"email"`
	Role     string  `json:"role" db:"role"`
}
