package domain

// Permission is a closed set of back-office capability tags.
type Permission string

const (
	PermClients Permission = "clients"
	PermPlans   Permission = "plans"
	PermUsers   Permission = "users"
	PermReports Permission = "reports"
)

// AllPermissions returns every valid permission tag.
func AllPermissions() []Permission {
	return []Permission{PermClients, PermPlans, PermUsers, PermReports}
}

// ValidPermission reports whether p belongs to the closed permission set.
func ValidPermission(p Permission) bool {
	switch p {
	case PermClients, PermPlans, PermUsers, PermReports:
		return true
	}
	return false
}

// User models a back-office operator. Password holds a bcrypt hash; handlers
// map users to response types that omit it.
type User struct {
	ID          int64        `json:"id"`
	Username    string       `json:"username"`
	Password    string       `json:"password"`
	Name        string       `json:"name"`
	IsAdmin     bool         `json:"is_admin"`
	Permissions []Permission `json:"permissions"`
	CreatedAt   int64        `json:"created_at"`
}

// HasPermission reports whether the user may exercise p. Administrators hold
// every permission implicitly.
func (u User) HasPermission(p Permission) bool {
	if u.IsAdmin {
		return true
	}
	for _, have := range u.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

func countAdmins(users []User) int {
	n := 0
	for _, u := range users {
		if u.IsAdmin {
			n++
		}
	}
	return n
}

// ValidateUserDelete is the single precondition check for removing a user:
// the last administrator is not deletable.
func ValidateUserDelete(users []User, id int64) error {
	for _, u := range users {
		if u.ID == id {
			if u.IsAdmin && countAdmins(users) <= 1 {
				return ErrLastAdmin
			}
			return nil
		}
	}
	return ErrUserNotFound
}

// ValidateUserUpdate is the single precondition check for mutating a user.
// It guards the admin invariants: the last administrator keeps the admin
// flag, and an administrator's permission set is never emptied.
func ValidateUserUpdate(users []User, updated User) error {
	var current *User
	for i := range users {
		if users[i].ID == updated.ID {
			current = &users[i]
			break
		}
	}
	if current == nil {
		return ErrUserNotFound
	}

	if current.IsAdmin && !updated.IsAdmin && countAdmins(users) <= 1 {
		return ErrLastAdmin
	}
	if updated.IsAdmin && len(updated.Permissions) == 0 {
		return ErrAdminNoPermissions
	}
	for _, p := range updated.Permissions {
		if !ValidPermission(p) {
			return ErrInvalidPermission
		}
	}
	return nil
}
