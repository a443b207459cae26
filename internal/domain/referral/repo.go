package referral

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Direction selects which side of the referral the caller's scope must touch.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
	// DirectionAny matches referrals touching the scope on either side.
	DirectionAny Direction = ""
)

// Filter restricts referral listings. Empty DepartmentIDs means no scope
// restriction (admin view).
type Filter struct {
	DepartmentIDs []uuid.UUID
	Direction     Direction
}

type ReferralRepository interface {
	Create(ctx context.Context, r *Referral) error
	GetByID(ctx context.Context, id uuid.UUID) (*Referral, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]*Referral, int, error)
	// ListAll returns every matching referral without paging; the summary
	// projection scans current state on every call.
	ListAll(ctx context.Context, f Filter) ([]*Referral, error)
	// Resolve writes the decision only while the referral is still pending.
	// It reports false when the row was already decided or is missing.
	Resolve(ctx context.Context, id uuid.UUID, decision Status, decidedBy uuid.UUID, decidedAt time.Time) (bool, error)
}
