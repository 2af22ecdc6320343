package request

import (
	"context"

	id "matchport/pkg/domain"
)

// Filter narrows List; zero values mean "any". Text search, sorting, and
// pagination live in the board service, which owns those read-model rules
// for both storage backends.
type Filter struct {
	Status      Status
	CauseAreaID id.CategoryID
	OrgID       id.OrgID
	DonorID     id.AccountID
}

// Store persists requests and fulfillment records. Implementations return
// sentinel.ErrNotFound for unknown IDs and sentinel.ErrInvalidState when a
// compare-and-swap loses a race.
type Store interface {
	Create(ctx context.Context, r *Request) error
	FindByID(ctx context.Context, requestID id.RequestID) (*Request, error)
	// UpdateFields persists the editable fields of an open request.
	UpdateFields(ctx context.Context, r *Request) error
	// CompareAndSwap persists r's full state only if the stored row still
	// has status `from`. This is the atomic read-modify-write every
	// lifecycle transition goes through: if two donors race to claim the
	// same request, exactly one swap sees status == open.
	CompareAndSwap(ctx context.Context, r *Request, from Status) error
	// Delete hard-deletes a request. Only legal while open; the service
	// enforces that under the transaction lock.
	Delete(ctx context.Context, requestID id.RequestID) error
	List(ctx context.Context, f Filter) ([]*Request, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)

	CreateFulfillment(ctx context.Context, f *FulfillmentRecord) error
	FindFulfillment(ctx context.Context, requestID id.RequestID) (*FulfillmentRecord, error)
}
