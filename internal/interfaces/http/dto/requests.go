package dto

import "github.com/shopspring/decimal"

// LoginForm is the HTML login form
type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
	Tenant   string `form:"tenant"`
}

// TokenRequest is the JSON body of the token endpoint
type TokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Tenant   string `json:"tenant"`
}

// SignupForm is the self-service registration form
type SignupForm struct {
	Username     string `form:"username" binding:"required,max=100"`
	Password     string `form:"password" binding:"required"`
	TenantSchema string `form:"tenant_schema" binding:"omitempty,tenant_schema"`
	Email        string `form:"email" binding:"omitempty,email,max=200"`
}

// CreateTenantRequest provisions a tenant with its first administrator
type CreateTenantRequest struct {
	TenantSchema  string `json:"tenant_schema" binding:"required,tenant_schema"`
	AdminUsername string `json:"admin_username" binding:"required,max=100"`
	AdminPassword string `json:"admin_password" binding:"required"`
	AdminEmail    string `json:"admin_email" binding:"omitempty,email"`
}

// MemberRequest is the JSON body for creating or replacing a member
type MemberRequest struct {
	Name        string `json:"name" binding:"required"`
	Surname     string `json:"surname" binding:"required"`
	DateOfBirth string `json:"date_of_birth" binding:"required"`
	Sex         string `json:"sex" binding:"omitempty,sex"`
	Status      string `json:"status" binding:"omitempty,member_status"`
	LevelID     *int64 `json:"level_id"`
	LocationID  *int64 `json:"location_id"`
}

// MemberForm is the HTML member form. Empty selects mean no level or location.
type MemberForm struct {
	Name        string `form:"name"`
	Surname     string `form:"surname"`
	DateOfBirth string `form:"date_of_birth"`
	Sex         string `form:"sex"`
	Status      string `form:"status"`
	LevelID     string `form:"level_id"`
	LocationID  string `form:"location_id"`
}

// MemberListRequest carries the list query string
type MemberListRequest struct {
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
	Query    string `form:"q"`
	Level    string `form:"level"`
	Location string `form:"location"`
	Status   string `form:"status"`
	Sex      string `form:"sex"`
	Sort     string `form:"sort"`
	Order    string `form:"order"`
}

// PaymentRequest records a member payment
type PaymentRequest struct {
	Period  string           `json:"period" binding:"required,period"`
	PriceID *int64           `json:"price_id"`
	Amount  *decimal.Decimal `json:"amount"`
}

// UpdateEmailForm changes the account email
type UpdateEmailForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// ChangePasswordForm changes the account password
type ChangePasswordForm struct {
	CurrentPassword string `form:"current_password"`
	NewPassword     string `form:"new_password"`
	ConfirmPassword string `form:"confirm_password"`
}

// LevelForm is the level create/edit form
type LevelForm struct {
	Name string `form:"name"`
	Rank string `form:"rank"`
}

// LocationForm is the location create/edit form
type LocationForm struct {
	Name string `form:"name"`
}

// PriceForm is the price create/edit form
type PriceForm struct {
	Amount      string `form:"amount"`
	Description string `form:"description"`
}

// LanguageForm switches the interface language
type LanguageForm struct {
	Lang string `form:"lang"`
}
