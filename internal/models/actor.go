package models

// Actor is the authenticated user a request acts on behalf of.
type Actor struct {
	UserID       string   `json:"userId"`
	Email        string   `json:"email"`
	Role         UserRole `json:"role"`
	DepartmentID string   `json:"departmentId,omitempty"`
	FacultyID    string   `json:"facultyId,omitempty"`
}

// CanAccessDepartment applies role scoping: an HOD sees only their own
// department, a DEAN sees every department of their faculty.
func (a Actor) CanAccessDepartment(dept Department) bool {
	switch a.Role {
	case RoleHOD:
		return a.DepartmentID != "" && a.DepartmentID == dept.ID
	case RoleDEAN:
		return a.FacultyID != "" && a.FacultyID == dept.FacultyID
	default:
		return false
	}
}
