package admin

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"shop-ledger/internal/audit"
	"shop-ledger/internal/auth"
	"shop-ledger/internal/binding"
	"shop-ledger/internal/models"
	"shop-ledger/internal/store"
)

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=owner clerk"`
}

// ----------------------------------------
// KULLANICI OLUŞTURMA
// POST /api/admin/users
// ----------------------------------------

func CreateUserHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := binding.Body(c, &body); err != nil {
			return err
		}

		role := models.RoleClerk
		if body.Role != "" {
			role = models.UserRole(body.Role)
		}

		var resp auth.UserResponse
		err := st.WithTx(auth.Context(c), func(ctx context.Context, tx store.Store) error {
			user, err := auth.NewUser(ctx, tx, body.Name, body.Email, body.Password, role)
			if err != nil {
				return err
			}
			resp = auth.ToUserResponse(user)
			return audit.Write(ctx, tx, audit.LogOptions{
				EntityType:  "user",
				EntityID:    user.ID,
				Action:      models.AuditActionCreate,
				Description: "user " + user.Email + " created as " + string(user.Role),
				After:       resp,
			})
		})
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}
