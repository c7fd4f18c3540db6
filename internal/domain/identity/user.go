package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/clubhouse/backend/internal/domain/shared"
	"github.com/clubhouse/backend/internal/domain/tenant"
)

// MinPasswordLength applies to password changes made by a signed-in user
const MinPasswordLength = 8

// Credential errors
var (
	// ErrInvalidCredentials is returned for every failed login, whatever the cause
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid credentials")
	ErrUserExists         = shared.NewDomainError("USER_EXISTS", "User already exists for that tenant")
	ErrEmailInUse         = shared.NewDomainError("EMAIL_IN_USE", "Email already in use")
	ErrUserNotFound       = shared.NewDomainError("NOT_FOUND", "User not found")
	ErrAdminRequired      = shared.NewDomainError("FORBIDDEN", "Admin required")
	ErrPasswordIncorrect  = shared.NewDomainError("PASSWORD_INCORRECT", "Current password is incorrect")
	ErrPasswordMismatch   = shared.NewDomainError("PASSWORD_MISMATCH", "Passwords do not match")
	ErrPasswordTooShort   = shared.NewDomainError("PASSWORD_TOO_SHORT", "Password must be at least 8 characters")
)

// User is a credential record stored in the shared schema.
// Usernames and emails are unique per tenant, not globally.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	TenantSchema tenant.ID
	IsActive     bool
	// IsAdmin is nil when the flag was never set; nil is treated as not admin
	IsAdmin   *bool
	CreatedAt time.Time
}

// NewUser creates an active credential for tenant with a freshly salted password hash
func NewUser(tenantSchema tenant.ID, username, password, email string) (*User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	email = strings.TrimSpace(email)
	if email != "" {
		if err := validateEmail(email); err != nil {
			return nil, err
		}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password").Wrap(err)
	}

	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		TenantSchema: tenantSchema,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// VerifyPassword checks password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return VerifyPassword(password, u.PasswordHash)
}

// SetPassword replaces the password hash, enforcing the minimum length
func (u *User) SetPassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	hash, err := HashPassword(password)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password").Wrap(err)
	}
	u.PasswordHash = hash
	return nil
}

// SetEmail sets or clears the email address
func (u *User) SetEmail(email string) error {
	email = strings.TrimSpace(email)
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}
	u.Email = email
	return nil
}

// Admin reports whether the record carries an explicit admin flag set to true
func (u *User) Admin() bool {
	return u.IsAdmin != nil && *u.IsAdmin
}

func validateUsername(username string) error {
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) > 100 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 100 characters")
	}
	return nil
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
