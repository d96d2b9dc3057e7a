package services

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"edulab-backend-go/internal/models"
	"edulab-backend-go/internal/store"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

const minPasswordLength = 8

// AccountService owns user lifecycle: registration, login, admin management,
// profile updates. The store handle is injected at construction.
type AccountService struct {
	store  store.Store
	tokens TokenService
}

func NewAccountService(st store.Store, tokens TokenService) *AccountService {
	return &AccountService{store: st, tokens: tokens}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

func (s *AccountService) Register(in RegisterInput) (models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" || in.FirstName == "" || in.LastName == "" {
		return models.User{}, ErrBadRequest("Email, password, first name and last name are required")
	}
	if !emailPattern.MatchString(in.Email) {
		return models.User{}, ErrBadRequest("Invalid email format")
	}
	if len(in.Password) < minPasswordLength {
		return models.User{}, ErrBadRequest("Password must be at least 8 characters")
	}
	role := in.Role
	if role == "" {
		role = models.RoleStudent
	}
	if !models.ValidRole(role) {
		return models.User{}, ErrBadRequest("Invalid role")
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return models.User{}, ErrInternal("Password hashing failed")
	}
	usr := models.User{
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}
	if err := s.store.CreateUser(&usr); err != nil {
		return models.User{}, storeErr(err, "User not found", "Email already registered")
	}
	return usr, nil
}

// Authenticate checks credentials and returns the user with a fresh session
// token. Invalid email and invalid password are indistinguishable to the
// caller.
func (s *AccountService) Authenticate(email, password string) (models.User, string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return models.User{}, "", ErrBadRequest("Authentication credentials are required")
	}
	usr, err := s.store.UserByEmail(email)
	if err != nil {
		return models.User{}, "", ErrUnauthorized("Invalid email or password")
	}
	if !VerifyPassword(password, usr.PasswordHash) {
		return models.User{}, "", ErrUnauthorized("Invalid email or password")
	}
	token, err := s.tokens.Issue(usr)
	if err != nil {
		return models.User{}, "", ErrInternal("Token issuance failed")
	}
	now := time.Now().UTC()
	usr.LastLoginAt = &now
	if err := s.store.UpdateUser(usr); err != nil {
		return models.User{}, "", storeErr(err, "User not found", "Email already in use")
	}
	return usr, token, nil
}

func (s *AccountService) UserByID(id int64) (models.User, error) {
	usr, err := s.store.UserByID(id)
	if err != nil {
		return models.User{}, storeErr(err, "User not found", "")
	}
	return usr, nil
}

func (s *AccountService) ListUsers() ([]models.User, error) {
	users, err := s.store.ListUsers()
	if err != nil {
		return nil, storeErr(err, "User not found", "")
	}
	return users, nil
}

type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// CreateUser is the admin path: role is required, no default.
func (s *AccountService) CreateUser(in CreateUserInput) (models.User, error) {
	if in.Role == "" {
		return models.User{}, ErrBadRequest("Missing required field: role")
	}
	return s.Register(RegisterInput(in))
}

type ProfileUpdateInput struct {
	FirstName       *string
	LastName        *string
	Email           *string
	CurrentPassword *string
	NewPassword     *string
}

func (s *AccountService) UpdateProfile(usr models.User, in ProfileUpdateInput) (models.User, error) {
	if in.FirstName != nil {
		usr.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		usr.LastName = *in.LastName
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if !emailPattern.MatchString(email) {
			return models.User{}, ErrBadRequest("Invalid email format")
		}
		usr.Email = email
	}
	if in.CurrentPassword != nil && in.NewPassword != nil {
		if !VerifyPassword(*in.CurrentPassword, usr.PasswordHash) {
			return models.User{}, ErrBadRequest("Current password is incorrect")
		}
		if len(*in.NewPassword) < minPasswordLength {
			return models.User{}, ErrBadRequest("Password must be at least 8 characters")
		}
		hash, err := HashPassword(*in.NewPassword)
		if err != nil {
			return models.User{}, ErrInternal("Password hashing failed")
		}
		usr.PasswordHash = hash
	}
	if err := s.store.UpdateUser(usr); err != nil {
		return models.User{}, storeErr(err, "User not found", "Email already in use")
	}
	return usr, nil
}

// DeleteUser removes a user atomically with their student membership and
// progress records. It is blocked with a conflict while the user is still
// referenced as a lab creator or an assigned teacher; those references must
// be reassigned or removed first.
func (s *AccountService) DeleteUser(id int64) error {
	usr, err := s.store.UserByID(id)
	if err != nil {
		return storeErr(err, "User not found", "")
	}
	refs, err := s.store.UserReferenceCount(id)
	if err != nil {
		return storeErr(err, "User not found", "")
	}
	if refs > 0 {
		return ErrConflict("User is still referenced by labs or teacher assignments")
	}
	err = s.store.Atomic(func(tx store.Store) error {
		if usr.Role == models.RoleStudent {
			if err := tx.DeleteProgressByStudent(id); err != nil {
				return err
			}
			if _, err := tx.StudentByUserID(id); err == nil {
				if err := tx.DeleteStudent(id); err != nil {
					return err
				}
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}
		return tx.DeleteUser(id)
	})
	if err != nil {
		return storeErr(err, "User not found", "")
	}
	return nil
}
