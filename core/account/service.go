package account

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/trezcool/gradebook/core"
)

var (
	// errors
	ErrNotFound    = errors.New("account not found")
	ErrEmailExists = errors.New("an account with this email already exists")

	passwordResetTemplate = "password_reset"
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excluded ...Account) error
		CreateAccount(ctx context.Context, acc Account) (Account, error)
		GetAccount(ctx context.Context, id int) (Account, error)
		GetAccountByEmail(ctx context.Context, email string) (Account, error)
		// QueryAccounts applies AND operation on available QueryFilter fields.
		QueryAccounts(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Account, error)
		UpdateAccount(ctx context.Context, acc Account) (Account, error)
		DeleteAccounts(ctx context.Context, ids ...int) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		tokens  tokenGenerator
	}

	passwordResetData struct {
		Name  string
		UID   string
		Token string
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		tokens: tokenGenerator{
			secretKey: []byte(conf.SecretKey),
			timeout:   conf.PasswordResetTimeoutDelta,
		},
	}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, excluded ...Account) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excluded...); err != nil {
		if err == ErrEmailExists {
			return core.FieldValidationError("email", err)
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, na NewAccount) (Account, error) {
	now := time.Now().UTC()
	acc := Account{
		Name:      na.Name,
		Email:     na.Email,
		Role:      na.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := acc.SetPassword(na.Password); err != nil {
		return Account{}, err
	}
	return svc.repo.CreateAccount(ctx, acc)
}

// Save updates acc if it has an ID, creates it otherwise.
func (svc *Service) Save(ctx context.Context, acc Account) (Account, error) {
	acc.UpdatedAt = time.Now().UTC()
	if acc.ID == 0 {
		acc.CreatedAt = acc.UpdatedAt
		return svc.repo.CreateAccount(ctx, acc)
	}
	return svc.repo.UpdateAccount(ctx, acc)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Account, error) {
	return svc.repo.GetAccount(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Account, error) {
	return svc.repo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Account, error) {
	return svc.repo.QueryAccounts(ctx, filter, OrderingColumns.Clean(ordering)...)
}

func (svc *Service) Update(ctx context.Context, orig Account, ua UpdateAccount) (Account, error) {
	acc := orig
	acc.Name = ua.Name
	acc.Email = ua.Email
	acc.Role = ua.Role
	if ua.IsActive != nil {
		acc.IsActive = *ua.IsActive
	}
	if ua.Password != "" {
		if err := acc.SetPassword(ua.Password); err != nil {
			return Account{}, err
		}
	}
	acc.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAccount(ctx, acc)
}

func (svc *Service) SetLastLogin(ctx context.Context, acc Account) (Account, error) {
	acc.LastLogin = time.Now().UTC()
	return svc.repo.UpdateAccount(ctx, acc)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteAccounts(ctx, ids...)
}

// RequestPasswordReset emails a password reset link to the active account owning email.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	acc, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !acc.IsActive {
		return ErrNotFound
	}
	msg, err := svc.passwordResetMessage(acc)
	if err != nil {
		return err
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}

func (svc *Service) passwordResetMessage(acc Account) (*core.EmailMessage, error) {
	token, err := svc.tokens.makeToken(acc)
	if err != nil {
		return nil, err
	}
	return &core.EmailMessage{
		To:           []mail.Address{{Name: acc.Name, Address: acc.Email}},
		Subject:      "Password Reset",
		TemplateName: passwordResetTemplate,
		TemplateData: passwordResetData{Name: acc.Name, UID: EncodeUID(acc), Token: token},
	}, nil
}

// ResetPassword sets a new password, provided the reset token is valid.
func (svc *Service) ResetPassword(ctx context.Context, rp ResetPassword) error {
	invalidLink := core.NewValidationError(errors.New("the reset link is invalid or has expired"))

	id, err := decodeUID(rp.UID)
	if err != nil {
		return invalidLink
	}
	acc, err := svc.repo.GetAccount(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return invalidLink
		}
		return err
	}
	if err = svc.tokens.verifyToken(acc, rp.Token); err != nil {
		return invalidLink
	}
	if err = acc.SetPassword(rp.Password); err != nil {
		return err
	}
	acc.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateAccount(ctx, acc)
	return err
}
