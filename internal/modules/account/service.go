// README: Account service: driver enrolment, phone and admin login, admin profile and provisioning.
package account

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"autometer/internal/types"
)

var (
	phonePattern     = regexp.MustCompile(`^[0-9]{10}$`)
	adminNamePattern = regexp.MustCompile(`^[A-Za-z ]+$`)
)

const minPasswordLen = 6

// TokenIssuer signs session tokens for logged-in accounts.
type TokenIssuer interface {
	Issue(accountID, role, phone string) (string, time.Time, error)
}

type Service struct {
	store  Repository
	tokens TokenIssuer
	log    *slog.Logger
}

// NewService builds the account service. tokens may be nil when sessions are
// issued elsewhere (for example by Firebase); logins then return no token.
func NewService(store Repository, tokens TokenIssuer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, tokens: tokens, log: log.With("module", "account")}
}

func (s *Service) FindByID(ctx context.Context, id string) (Account, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) FindByPhone(ctx context.Context, phone string) (Account, error) {
	return s.store.FindByPhone(ctx, strings.TrimSpace(phone))
}

// EnrollDriver creates a driver account. Opening its ledger is the caller's step.
func (s *Service) EnrollDriver(ctx context.Context, name, phone string) (Account, error) {
	name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)
	if err := validateName(name); err != nil {
		return Account{}, err
	}
	if err := validatePhone(phone); err != nil {
		return Account{}, err
	}
	acc, err := s.store.Create(ctx, Account{
		ID:          string(types.NewID()),
		PhoneNumber: phone,
		Role:        RoleDriver,
		Name:        name,
	})
	if err != nil {
		return Account{}, err
	}
	s.log.Info("driver enrolled", "account_id", acc.ID)
	return acc, nil
}

// Login signs in a driver by phone number. Admin accounts must use AdminLogin.
func (s *Service) Login(ctx context.Context, phone string) (Session, error) {
	phone = strings.TrimSpace(phone)
	if err := validatePhone(phone); err != nil {
		return Session{}, err
	}
	acc, err := s.store.FindByPhone(ctx, phone)
	if errors.Is(err, types.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if acc.Role != RoleDriver {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(acc)
}

func (s *Service) AdminLogin(ctx context.Context, phone, password string) (Session, error) {
	phone = strings.TrimSpace(phone)
	if err := validatePhone(phone); err != nil {
		return Session{}, err
	}
	if password == "" {
		return Session{}, types.Invalid("password is required for admin login")
	}
	acc, err := s.store.FindByPhone(ctx, phone)
	if errors.Is(err, types.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if acc.Role != RoleAdmin || acc.PasswordHash == "" {
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("admin login rejected", "account_id", acc.ID)
		return Session{}, ErrInvalidCredentials
	}
	return s.session(acc)
}

func (s *Service) AdminProfile(ctx context.Context) (Account, error) {
	acc, err := s.store.FindAdmin(ctx)
	if errors.Is(err, types.ErrNotFound) {
		return Account{}, types.Missing("admin profile not found")
	}
	return acc, err
}

func (s *Service) UpdateAdminProfile(ctx context.Context, upd ProfileUpdate) (Account, error) {
	acc, err := s.AdminProfile(ctx)
	if err != nil {
		return Account{}, err
	}

	name, phone, hash := acc.Name, acc.PhoneNumber, acc.PasswordHash
	if upd.Name != nil {
		name = strings.TrimSpace(*upd.Name)
		if err := validateAdminName(name); err != nil {
			return Account{}, err
		}
	}
	if upd.PhoneNumber != nil {
		phone = strings.TrimSpace(*upd.PhoneNumber)
		if err := validatePhone(phone); err != nil {
			return Account{}, err
		}
	}
	if upd.Password != nil {
		if hash, err = hashPassword(*upd.Password); err != nil {
			return Account{}, err
		}
	}

	acc, err = s.store.UpdateProfile(ctx, acc.ID, name, phone, hash)
	if err != nil {
		return Account{}, err
	}
	s.log.Info("admin profile updated", "account_id", acc.ID, "password_changed", upd.Password != nil)
	return acc, nil
}

// ProvisionAdmin makes sure the admin identity exists with the given
// credential. It is idempotent and runs at deploy time, never during login.
func (s *Service) ProvisionAdmin(ctx context.Context, phone, name, password string) (Account, error) {
	phone, name = strings.TrimSpace(phone), strings.TrimSpace(name)
	if err := validatePhone(phone); err != nil {
		return Account{}, err
	}
	if err := validateAdminName(name); err != nil {
		return Account{}, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return Account{}, err
	}
	acc, err := s.store.UpsertAdmin(ctx, phone, name, hash)
	if err != nil {
		return Account{}, err
	}
	s.log.Info("admin provisioned", "account_id", acc.ID)
	return acc, nil
}

func (s *Service) session(acc Account) (Session, error) {
	out := Session{Account: acc}
	if s.tokens == nil {
		return out, nil
	}
	token, expiresAt, err := s.tokens.Issue(acc.ID, string(acc.Role), acc.PhoneNumber)
	if err != nil {
		return Session{}, err
	}
	out.Token, out.ExpiresAt = token, expiresAt
	return out, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLen {
		return "", types.Invalid("password must be at least %d characters long", minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		// bcrypt rejects passwords longer than 72 bytes.
		return "", types.Invalid("password cannot be used: %v", err)
	}
	return string(hash), nil
}

func validatePhone(phone string) error {
	if phone == "" {
		return types.Invalid("phone number is required")
	}
	if !phonePattern.MatchString(phone) {
		return types.Invalid("phone number must be 10 digits")
	}
	return nil
}

func validateName(name string) error {
	if n := utf8.RuneCountInString(name); n < 2 || n > 50 {
		return types.Invalid("name must be between 2 and 50 characters")
	}
	return nil
}

func validateAdminName(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if !adminNamePattern.MatchString(name) {
		return types.Invalid("name can only contain letters and spaces")
	}
	return nil
}
