package audit

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"shop-ledger/internal/models"
	"shop-ledger/internal/store"
)

const defaultListLimit = 200

type AuditLogResponse struct {
	ID          string             `json:"id"`
	CreatedAt   string             `json:"created_at"`
	UserID      string             `json:"user_id"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    string             `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	BeforeData  string             `json:"before_data,omitempty"`
	AfterData   string             `json:"after_data,omitempty"`
}

func ToAuditLogResponse(l *models.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:          l.ID,
		CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
		UserID:      l.UserID,
		UserName:    l.UserName,
		EntityType:  l.EntityType,
		EntityID:    l.EntityID,
		Action:      l.Action,
		Description: l.Description,
		BeforeData:  l.BeforeData,
		AfterData:   l.AfterData,
	}
}

// GET /api/audit-logs?entity_type=customer_entry&entity_id=...&user_id=...&limit=50
// En yeni kayıt en üstte.
func ListAuditLogsHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := defaultListLimit
		if s := c.Query("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "limit must be a positive number")
			}
			limit = n
		}

		logs, err := st.ListAuditLogs(c.UserContext(), store.AuditFilter{
			EntityType: c.Query("entity_type"),
			EntityID:   c.Query("entity_id"),
			UserID:     c.Query("user_id"),
			Limit:      limit,
		})
		if err != nil {
			return err
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for i := range logs {
			resp = append(resp, ToAuditLogResponse(&logs[i]))
		}
		return c.JSON(resp)
	}
}
