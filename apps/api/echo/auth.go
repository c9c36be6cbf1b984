package echoapi

import (
	"context"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/account"
)

const (
	contextTokenKey   = "accountToken"
	contextAccountKey = "account"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
}

func (c Claims) accountID() (int, error) {
	return strconv.Atoi(c.Subject)
}

func (c Claims) isAdmin() bool {
	return c.Role == account.RoleAdmin
}

func (c Claims) caller() core.Caller {
	id, _ := c.accountID()
	return core.Caller{ID: id, Name: c.Name, Email: c.Email}
}

type authenticator struct {
	conf      *core.Config
	svc       *account.Service
	jwtConfig middleware.JWTConfig
}

func newAuthenticator(conf *core.Config, svc *account.Service) *authenticator {
	return &authenticator{
		conf: conf,
		svc:  svc,
		jwtConfig: middleware.JWTConfig{
			SigningKey:    []byte(conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    contextTokenKey,
			Claims:        new(Claims),
		},
	}
}

// Claims returns the claims of acc. origIat is the issue time of the first token of the session, when refreshing.
func (a *authenticator) Claims(acc account.Account, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    a.conf.AppName,
			Subject:   strconv.Itoa(acc.ID),
			Audience:  "Gradebook",
			ExpiresAt: now.Add(a.conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Name:         acc.Name,
		Email:        acc.Email,
		Role:         acc.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the account Claims.
func (a *authenticator) GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(a.jwtConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(a.jwtConfig.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (a *authenticator) authenticate(ctx context.Context, email, pwd string) (*Claims, error) {
	acc, err := a.svc.GetByEmail(ctx, email)
	if err != nil {
		if err == account.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding account by email")
	}
	if err = acc.CheckPassword(pwd); err != nil {
		return nil, errAuthenticationFailed
	}
	if !acc.IsActive {
		return nil, errAccountDeactivated
	}
	acc, err = a.svc.SetLastLogin(ctx, acc)
	if err != nil {
		return nil, errors.Wrap(err, "setting last login")
	}
	return a.Claims(acc), nil
}

func (a *authenticator) refreshToken(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", err
	}

	acc, err := a.contextAccount(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context account")
	}
	if !acc.IsActive {
		return "", errAccountDeactivated
	}

	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(a.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	token, err := a.GenerateToken(a.Claims(acc, claims.OrigIssuedAt))
	return token, errors.Wrap(err, "generating token")
}

// contextAccount returns the account authenticated by the request token, loading it at most once per request.
func (a *authenticator) contextAccount(ctx echo.Context) (account.Account, error) {
	if acc, ok := ctx.Get(contextAccountKey).(account.Account); ok {
		return acc, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return account.Account{}, err
	}
	id, err := claims.accountID()
	if err != nil {
		return account.Account{}, errUnauthorized
	}

	acc, err := a.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if err == account.ErrNotFound {
			return account.Account{}, errUnauthorized
		}
		return account.Account{}, errors.Wrap(err, "finding account by ID")
	}
	ctx.Set(contextAccountKey, acc)
	return acc, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}
