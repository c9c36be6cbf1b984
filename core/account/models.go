package account

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/gradebook/core"
)

// Roles
const (
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

var Roles = []string{RoleTeacher, RoleAdmin}

// Account is a staff member allowed to sign in to the dashboard.
type Account struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Account) Caller() core.Caller {
	return core.Caller{ID: a.ID, Name: a.Name, Email: a.Email}
}

// NewAccount contains information needed to create a new Account.
type NewAccount struct {
	Name            string `json:"name" validate:"required,notblank"`
	Email           string `json:"email" validate:"required,email"`
	Role            string `json:"role" validate:"omitempty,accountrole"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (na *NewAccount) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	na.Name = core.CleanString(na.Name)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.Role = core.CleanString(na.Role, true /* lower */)
	if na.Role == "" {
		na.Role = RoleTeacher
	}

	if err := validate.Struct(na); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, na.Email)
}

// UpdateAccount defines what information may be provided to modify an existing Account.
type UpdateAccount struct {
	Name            string `json:"name"`
	Email           string `json:"email" validate:"omitempty,email"`
	Role            string `json:"role" validate:"omitempty,accountrole"`
	IsActive        *bool  `json:"is_active"`
	Password        string `json:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (ua *UpdateAccount) Validate(ctx context.Context, orig Account, validate *validator.Validate, svc *Service) error {
	if name := core.CleanString(ua.Name); name != "" {
		ua.Name = name
	} else {
		ua.Name = orig.Name
	}
	if email := core.CleanString(ua.Email, true /* lower */); email != "" {
		ua.Email = email
	} else {
		ua.Email = orig.Email
	}
	if role := core.CleanString(ua.Role, true /* lower */); role != "" {
		ua.Role = role
	} else {
		ua.Role = orig.Role
	}

	if err := validate.Struct(ua); err != nil {
		return err
	}
	if ua.Email != orig.Email {
		return svc.checkUniqueness(ctx, ua.Email, orig)
	}
	return nil
}

type ResetPassword struct {
	Token           string `json:"token" validate:"required"`
	UID             string `json:"uid" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (rp ResetPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

type QueryFilter struct {
	Search   string   `query:"search"`
	Roles    []string `query:"role"`
	IsActive *bool    `query:"-"` // bound from "is_active"
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && len(qf.Roles) == 0 && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// Matches applies the filter to a single Account.
// Search does a case-insensitive match on one of Name or Email.
func (qf QueryFilter) Matches(a Account) bool {
	if qf.Search != "" && !(core.ContainsFold(a.Name, qf.Search) || core.ContainsFold(a.Email, qf.Search)) {
		return false
	}
	if len(qf.Roles) > 0 {
		found := false
		for _, r := range qf.Roles {
			if a.Role == r {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return qf.IsActive == nil || a.IsActive == *qf.IsActive
}

var OrderingColumns = core.OrderingColumns{
	"id":         "id",
	"name":       "name",
	"email":      "email",
	"created_at": "created_at",
	"last_login": "last_login",
}
