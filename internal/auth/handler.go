package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"shop-ledger/internal/apperr"
	"shop-ledger/internal/binding"
	"shop-ledger/internal/config"
	"shop-ledger/internal/models"
	"shop-ledger/internal/store"
)

type RegisterOwnerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
}

func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// NewUser hashes the password and stores a user with the given role.
func NewUser(ctx context.Context, st store.Store, name, email, password string, role models.UserRole) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := st.GetUserByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("email already registered")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := st.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// POST /api/auth/register-owner
// Yalnızca hiç owner yokken çalışır.
func RegisterOwnerHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterOwnerRequest
		if err := binding.Body(c, &body); err != nil {
			return err
		}

		count, err := st.CountUsersByRole(c.UserContext(), models.RoleOwner)
		if err != nil {
			return err
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "an owner is already registered")
		}

		user, err := NewUser(c.UserContext(), st, body.Name, body.Email, body.Password, models.RoleOwner)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ToUserResponse(user))
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config, st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := binding.Body(c, &body); err != nil {
			return err
		}

		email := strings.TrimSpace(strings.ToLower(body.Email))
		user, err := st.GetUserByEmail(c.UserContext(), email)
		if err != nil {
			if apperr.IsNotFound(err) {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
			}
			return err
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
		}

		token, err := GenerateToken(cfg.JWTSecret, user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  ToUserResponse(user),
		})
	}
}

// GET /api/auth/me
func MeHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals(CtxUserIDKey).(string)
		user, err := st.GetUser(c.UserContext(), userID)
		if err != nil {
			if apperr.IsNotFound(err) {
				return fiber.NewError(fiber.StatusUnauthorized, "user no longer exists")
			}
			return err
		}
		return c.JSON(ToUserResponse(user))
	}
}
