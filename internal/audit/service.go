package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"shop-ledger/internal/models"
	"shop-ledger/internal/store"
)

// Actor is the authenticated user a write is attributed to.
type Actor struct {
	UserID   string
	UserName string
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the zero Actor ("system") when none is attached.
func ActorFrom(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey{}).(Actor)
	return a
}

type LogOptions struct {
	EntityType  string
	EntityID    string
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// Write appends an audit record through tx so that it commits together with
// the change it describes.
func Write(ctx context.Context, tx store.Store, opts LogOptions) error {
	// boş string yerine "null" JSON
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	actor := ActorFrom(ctx)
	userName := actor.UserName
	if userName == "" {
		userName = "system"
	}

	log := models.AuditLog{
		ID:          uuid.NewString(),
		UserID:      actor.UserID,
		UserName:    userName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}
	return tx.CreateAuditLog(ctx, &log)
}
