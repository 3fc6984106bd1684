package model

// User is an account that can sign in. Users are provisioned from the CLI
// and never deleted by the API.
type User struct {
	Base
	Email        string `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"type:varchar(255);not null"`
	Role         Role   `json:"role" gorm:"type:varchar(20);not null;default:'MEMBER'"`
}

// PublicUser is the user representation returned by the auth endpoints.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Public strips everything but identity and role.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Role: u.Role}
}
