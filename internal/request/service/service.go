// Package service implements the request lifecycle engine: authorization,
// transition guards, and the side effects (history, fulfillment record,
// notifications) each command guarantees.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"matchport/internal/account"
	"matchport/internal/catalog"
	"matchport/internal/history"
	"matchport/internal/notify"
	"matchport/internal/platform/metrics"
	"matchport/internal/profile"
	"matchport/internal/request"
	id "matchport/pkg/domain"
	dErrors "matchport/pkg/domain-errors"
	"matchport/pkg/platform/sentinel"
	"matchport/pkg/platform/tx"
	"matchport/pkg/requestcontext"
)

// AccountStore is the slice of the identity store the engine needs to
// authorize actors.
type AccountStore interface {
	FindByID(ctx context.Context, accountID id.AccountID) (*account.Account, error)
}

// OrgStore resolves organizations for ownership checks and notifications.
type OrgStore interface {
	FindOrganizationByAccount(ctx context.Context, accountID id.AccountID) (*profile.Organization, error)
	FindOrganizationByID(ctx context.Context, orgID id.OrgID) (*profile.Organization, error)
}

// CatalogStore validates cause-area references on create/update.
type CatalogStore interface {
	FindByID(ctx context.Context, categoryID id.CategoryID) (*catalog.Category, error)
}

// Notifier is the dispatcher port. Implementations persist the in-app row
// synchronously and deliver email best-effort.
type Notifier interface {
	Notify(ctx context.Context, in notify.Dispatch) (*notify.Notification, error)
}

// Service is the request lifecycle engine. Every command runs its guard
// check, state mutation, history write, and notification insert inside one
// transaction: a failed step leaves no partial effects.
type Service struct {
	requests request.Store
	accounts AccountStore
	orgs     OrgStore
	catalog  CatalogStore
	ledger   *history.Ledger
	notifier Notifier
	tx       tx.Runner
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func New(
	requests request.Store,
	accounts AccountStore,
	orgs OrgStore,
	catalogStore CatalogStore,
	ledger *history.Ledger,
	notifier Notifier,
	txRunner tx.Runner,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		requests: requests,
		accounts: accounts,
		orgs:     orgs,
		catalog:  catalogStore,
		ledger:   ledger,
		notifier: notifier,
		tx:       txRunner,
		logger:   logger,
		metrics:  m,
	}
}

// actor loads the account issuing a command and enforces its role.
func (s *Service) actor(ctx context.Context, actorID id.AccountID, roles ...account.Role) (*account.Account, error) {
	if actorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	a, err := s.accounts.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unknown account")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	for _, role := range roles {
		if a.Role == role {
			return a, nil
		}
	}
	return nil, dErrors.New(dErrors.CodePermissionDenied, "you do not have permission to perform this action")
}

func (s *Service) findRequest(ctx context.Context, requestID id.RequestID) (*request.Request, error) {
	r, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "request not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load request")
	}
	return r, nil
}

// Create posts a new open request for the actor's organization. Only vetted
// CBOs with a profile may post.
func (s *Service) Create(ctx context.Context, actorID id.AccountID, in request.CreateInput) (*request.Request, error) {
	cbo, err := s.actor(ctx, actorID, account.RoleCBO)
	if err != nil {
		return nil, err
	}
	if !cbo.IsVetted {
		return nil, dErrors.New(dErrors.CodeNotEligible, "your organization has not been approved yet")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	org, err := s.orgs.FindOrganizationByAccount(ctx, actorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, "create your organization profile before posting requests")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
	}
	if _, err := s.catalog.FindByID(ctx, in.CauseAreaID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown cause area")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load cause area")
	}

	now := requestcontext.Now(ctx)
	r := &request.Request{
		ID:                   id.NewRequestID(),
		OrgID:                org.ID,
		CauseAreaID:          in.CauseAreaID,
		Description:          in.Description,
		AmountCents:          in.AmountCents,
		Urgency:              in.Urgency,
		Zipcode:              in.Zipcode,
		MetroRegion:          in.MetroRegion,
		County:               in.County,
		IdentityCategoryIDs:  in.IdentityCategoryIDs,
		ChallengeCategoryIDs: in.ChallengeCategoryIDs,
		Status:               request.StatusOpen,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requests.Create(txCtx, r); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create request")
		}
		_, err := s.ledger.Record(txCtx, r.ID, actorID, history.ActionCreated,
			fmt.Sprintf("Request for $%s created by %s", r.AmountDollars(), org.Name))
		return err
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RequestsCreated.Inc()
	}
	return r, nil
}

// Claim moves an open request to claimed on behalf of a vetted donor.
// The compare-and-swap on status guarantees exactly one winner when two
// donors race; the loser gets CodeConflict.
func (s *Service) Claim(ctx context.Context, actorID id.AccountID, requestID id.RequestID, donorNote string) (*request.Request, error) {
	donor, err := s.actor(ctx, actorID, account.RoleDonor)
	if err != nil {
		return nil, err
	}
	if !donor.IsVetted {
		return nil, dErrors.New(dErrors.CodeNotEligible, "your account has not been approved for claiming")
	}

	var claimed *request.Request
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := s.findRequest(txCtx, requestID)
		if err != nil {
			return err
		}
		if r.Status != request.StatusOpen {
			if r.Status == request.StatusClaimed {
				return dErrors.New(dErrors.CodeConflict, "this request is no longer available")
			}
			return dErrors.New(dErrors.CodeInvalidTransition, "only open requests can be claimed")
		}

		now := requestcontext.Now(txCtx)
		r.Status = request.StatusClaimed
		r.DonorID = &actorID
		r.DonorNote = donorNote
		r.ClaimedAt = &now
		r.UpdatedAt = now

		if err := s.requests.CompareAndSwap(txCtx, r, request.StatusOpen); err != nil {
			if errors.Is(err, sentinel.ErrInvalidState) {
				return dErrors.New(dErrors.CodeConflict, "this request is no longer available")
			}
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "request not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to claim request")
		}

		if _, err := s.ledger.Record(txCtx, r.ID, actorID, history.ActionClaimed,
			fmt.Sprintf("Request claimed by %s", donor.Username)); err != nil {
			return err
		}

		org, err := s.orgForRequest(txCtx, r)
		if err != nil {
			return err
		}
		if err := s.notifyClaimed(txCtx, r, org, donor); err != nil {
			return err
		}
		claimed = r
		return nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) && s.metrics != nil {
			s.metrics.ClaimConflicts.Inc()
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RequestsClaimed.Inc()
	}
	return claimed, nil
}

// Fulfill completes a claimed request. Allowed for the claiming donor or an
// admin; creates the one-and-only FulfillmentRecord.
func (s *Service) Fulfill(ctx context.Context, actorID id.AccountID, requestID id.RequestID, in request.FulfillInput) (*request.Request, *request.FulfillmentRecord, error) {
	actor, err := s.actor(ctx, actorID, account.RoleDonor, account.RoleAdmin)
	if err != nil {
		return nil, nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}

	var (
		fulfilled *request.Request
		record    *request.FulfillmentRecord
	)
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := s.findRequest(txCtx, requestID)
		if err != nil {
			return err
		}
		if r.Status != request.StatusClaimed {
			return dErrors.New(dErrors.CodeInvalidTransition, "only claimed requests can be fulfilled")
		}
		if actor.Role == account.RoleDonor && (r.DonorID == nil || *r.DonorID != actorID) {
			return dErrors.New(dErrors.CodePermissionDenied, "only the claiming donor can fulfill this request")
		}

		now := requestcontext.Now(txCtx)
		r.Status = request.StatusFulfilled
		r.FulfilledAt = &now
		r.UpdatedAt = now

		if err := s.requests.CompareAndSwap(txCtx, r, request.StatusClaimed); err != nil {
			if errors.Is(err, sentinel.ErrInvalidState) {
				return dErrors.New(dErrors.CodeInvalidTransition, "only claimed requests can be fulfilled")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to fulfill request")
		}

		record = &request.FulfillmentRecord{
			ID:              id.NewFulfillmentID(),
			RequestID:       r.ID,
			Type:            in.Type,
			DeviceCondition: in.DeviceCondition,
			DonorSatisfied:  true,
			CBOSatisfied:    true,
			DonorNotes:      in.DonorNotes,
			CreatedAt:       now,
		}
		if err := s.requests.CreateFulfillment(txCtx, record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create fulfillment record")
		}

		if _, err := s.ledger.Record(txCtx, r.ID, actorID, history.ActionFulfilled,
			fmt.Sprintf("Request fulfilled (%s)", in.Type)); err != nil {
			return err
		}

		org, err := s.orgForRequest(txCtx, r)
		if err != nil {
			return err
		}
		if err := s.notifyFulfilled(txCtx, r, org); err != nil {
			return err
		}
		fulfilled = r
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if s.metrics != nil {
		s.metrics.RequestsFulfilled.Inc()
	}
	return fulfilled, record, nil
}

// Release returns a claimed request to the open pool, clearing the donor
// binding and the claim timestamp. Allowed for the claiming donor or an
// admin.
func (s *Service) Release(ctx context.Context, actorID id.AccountID, requestID id.RequestID) (*request.Request, error) {
	actor, err := s.actor(ctx, actorID, account.RoleDonor, account.RoleAdmin)
	if err != nil {
		return nil, err
	}

	var released *request.Request
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := s.findRequest(txCtx, requestID)
		if err != nil {
			return err
		}
		if r.Status != request.StatusClaimed {
			return dErrors.New(dErrors.CodeInvalidTransition, "only claimed requests can be released")
		}
		if actor.Role == account.RoleDonor && (r.DonorID == nil || *r.DonorID != actorID) {
			return dErrors.New(dErrors.CodePermissionDenied, "only the claiming donor can release this request")
		}

		now := requestcontext.Now(txCtx)
		r.Status = request.StatusOpen
		r.DonorID = nil
		r.DonorNote = ""
		r.ClaimedAt = nil
		r.UpdatedAt = now

		if err := s.requests.CompareAndSwap(txCtx, r, request.StatusClaimed); err != nil {
			if errors.Is(err, sentinel.ErrInvalidState) {
				return dErrors.New(dErrors.CodeInvalidTransition, "only claimed requests can be released")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to release request")
		}

		_, err = s.ledger.Record(txCtx, r.ID, actorID, history.ActionUpdated,
			fmt.Sprintf("Claim released by %s", actor.Username))
		released = r
		return err
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RequestsReleased.Inc()
	}
	return released, nil
}

// Update edits the fields of an open request. Only the vetted owning CBO
// may edit, and only while the request is open.
func (s *Service) Update(ctx context.Context, actorID id.AccountID, requestID id.RequestID, in request.UpdateInput) (*request.Request, error) {
	cbo, err := s.actor(ctx, actorID, account.RoleCBO)
	if err != nil {
		return nil, err
	}
	if !cbo.IsVetted {
		return nil, dErrors.New(dErrors.CodeNotEligible, "your organization has not been approved yet")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.catalog.FindByID(ctx, in.CauseAreaID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown cause area")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load cause area")
	}

	var updated *request.Request
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := s.findRequest(txCtx, requestID)
		if err != nil {
			return err
		}
		if err := s.requireOwner(txCtx, r, actorID); err != nil {
			return err
		}
		if r.Status != request.StatusOpen {
			return dErrors.New(dErrors.CodeInvalidTransition, "only open requests can be edited")
		}

		r.CauseAreaID = in.CauseAreaID
		r.Description = in.Description
		r.AmountCents = in.AmountCents
		r.Urgency = in.Urgency
		r.Zipcode = in.Zipcode
		r.MetroRegion = in.MetroRegion
		r.County = in.County
		r.IdentityCategoryIDs = in.IdentityCategoryIDs
		r.ChallengeCategoryIDs = in.ChallengeCategoryIDs
		r.UpdatedAt = requestcontext.Now(txCtx)

		if err := s.requests.UpdateFields(txCtx, r); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update request")
		}
		_, err = s.ledger.Record(txCtx, r.ID, actorID, history.ActionUpdated, "Request details updated")
		updated = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddDonorNote lets the claiming donor revise the note on a claim they
// hold. The swap is conditioned on claimed so a concurrent release or
// fulfill wins cleanly.
func (s *Service) AddDonorNote(ctx context.Context, actorID id.AccountID, requestID id.RequestID, note string) (*request.Request, error) {
	donor, err := s.actor(ctx, actorID, account.RoleDonor)
	if err != nil {
		return nil, err
	}

	var updated *request.Request
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := s.findRequest(txCtx, requestID)
		if err != nil {
			return err
		}
		if r.Status != request.StatusClaimed {
			return dErrors.New(dErrors.CodeInvalidTransition, "notes can only be added to claimed requests")
		}
		if r.DonorID == nil || *r.DonorID != actorID {
			return dErrors.New(dErrors.CodePermissionDenied, "only the claiming donor can add a note")
		}

		r.DonorNote = note
		r.UpdatedAt = requestcontext.Now(txCtx)
		if err := s.requests.CompareAndSwap(txCtx, r, request.StatusClaimed); err != nil {
			if errors.Is(err, sentinel.ErrInvalidState) {
				return dErrors.New(dErrors.CodeInvalidTransition, "notes can only be added to claimed requests")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add note")
		}
		_, err = s.ledger.Record(txCtx, r.ID, actorID, history.ActionNoteAdded,
			fmt.Sprintf("Note added by %s", donor.Username))
		updated = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete hard-deletes an open request. Only the owning CBO may delete, and
// only while the request is open; claimed or finished requests are kept
// for audit.
func (s *Service) Delete(ctx context.Context, actorID id.AccountID, requestID id.RequestID) error {
	if _, err := s.actor(ctx, actorID, account.RoleCBO); err != nil {
		return err
	}
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := s.findRequest(txCtx, requestID)
		if err != nil {
			return err
		}
		if err := s.requireOwner(txCtx, r, actorID); err != nil {
			return err
		}
		if r.Status != request.StatusOpen {
			return dErrors.New(dErrors.CodeInvalidTransition, "only open requests can be deleted")
		}
		if _, err := s.ledger.Record(txCtx, r.ID, actorID, history.ActionDeleted, "Request deleted by owner"); err != nil {
			return err
		}
		if err := s.requests.Delete(txCtx, r.ID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete request")
		}
		return nil
	})
}

// Deny moves an open request to denied with a reason. Admin only.
func (s *Service) Deny(ctx context.Context, adminID id.AccountID, requestID id.RequestID, reason string) (*request.Request, error) {
	if _, err := s.actor(ctx, adminID, account.RoleAdmin); err != nil {
		return nil, err
	}

	var denied *request.Request
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := s.findRequest(txCtx, requestID)
		if err != nil {
			return err
		}
		if r.Status != request.StatusOpen {
			return dErrors.New(dErrors.CodeInvalidTransition, "only open requests can be denied")
		}

		now := requestcontext.Now(txCtx)
		r.Status = request.StatusDenied
		r.DenialReason = reason
		r.DeniedAt = &now
		r.UpdatedAt = now

		if err := s.requests.CompareAndSwap(txCtx, r, request.StatusOpen); err != nil {
			if errors.Is(err, sentinel.ErrInvalidState) {
				return dErrors.New(dErrors.CodeInvalidTransition, "only open requests can be denied")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deny request")
		}

		if _, err := s.ledger.Record(txCtx, r.ID, adminID, history.ActionDenied,
			fmt.Sprintf("Request denied: %s", reason)); err != nil {
			return err
		}

		org, err := s.orgForRequest(txCtx, r)
		if err != nil {
			return err
		}
		_, err = s.notifier.Notify(txCtx, notify.Dispatch{
			RecipientID:    org.AccountID,
			RecipientEmail: org.Email,
			RequestID:      &r.ID,
			Type:           notify.TypeDenied,
			Title:          fmt.Sprintf("Request Denied - $%s", r.AmountDollars()),
			Message:        fmt.Sprintf("Your request for $%s has been denied. Reason: %s", r.AmountDollars(), reason),
			TemplateID:     notify.TemplateRequestDenied,
			TemplateData:   map[string]string{"organization": org.Name, "amount": r.AmountDollars(), "reason": reason},
		})
		denied = r
		return err
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RequestsDenied.Inc()
	}
	return denied, nil
}

// Approve re-opens a denied request, or re-notifies the CBO when the
// request is already open. Admin only.
func (s *Service) Approve(ctx context.Context, adminID id.AccountID, requestID id.RequestID) (*request.Request, error) {
	if _, err := s.actor(ctx, adminID, account.RoleAdmin); err != nil {
		return nil, err
	}

	var approved *request.Request
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := s.findRequest(txCtx, requestID)
		if err != nil {
			return err
		}
		switch r.Status {
		case request.StatusOpen:
			// Already visible; just re-notify below.
		case request.StatusDenied:
			now := requestcontext.Now(txCtx)
			r.Status = request.StatusOpen
			r.DenialReason = ""
			r.DeniedAt = nil
			r.UpdatedAt = now
			if err := s.requests.CompareAndSwap(txCtx, r, request.StatusDenied); err != nil {
				if errors.Is(err, sentinel.ErrInvalidState) {
					return dErrors.New(dErrors.CodeInvalidTransition, "request is no longer denied")
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to approve request")
			}
			if _, err := s.ledger.Record(txCtx, r.ID, adminID, history.ActionApproved, "Request approved"); err != nil {
				return err
			}
		default:
			return dErrors.New(dErrors.CodeInvalidTransition, "only open or denied requests can be approved")
		}

		org, err := s.orgForRequest(txCtx, r)
		if err != nil {
			return err
		}
		_, err = s.notifier.Notify(txCtx, notify.Dispatch{
			RecipientID:    org.AccountID,
			RecipientEmail: org.Email,
			RequestID:      &r.ID,
			Type:           notify.TypeApproved,
			Title:          fmt.Sprintf("Request Approved - $%s", r.AmountDollars()),
			Message:        fmt.Sprintf("Your request for $%s has been approved and is now visible to donors.", r.AmountDollars()),
			TemplateID:     notify.TemplateRequestApproved,
			TemplateData:   map[string]string{"organization": org.Name, "amount": r.AmountDollars()},
		})
		approved = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// BulkOutcome reports per-request results of a bulk admin command.
type BulkOutcome struct {
	Succeeded []id.RequestID
	Failed    map[id.RequestID]string
}

// DenyMany applies Deny to each ID, continuing past individual failures.
func (s *Service) DenyMany(ctx context.Context, adminID id.AccountID, ids []id.RequestID, reason string) *BulkOutcome {
	return s.bulk(ids, func(requestID id.RequestID) error {
		_, err := s.Deny(ctx, adminID, requestID, reason)
		return err
	})
}

// ApproveMany applies Approve to each ID, continuing past individual failures.
func (s *Service) ApproveMany(ctx context.Context, adminID id.AccountID, ids []id.RequestID) *BulkOutcome {
	return s.bulk(ids, func(requestID id.RequestID) error {
		_, err := s.Approve(ctx, adminID, requestID)
		return err
	})
}

// DeleteMany hard-deletes requests as admin, regardless of owner. Each
// deletion records a history entry first, like the CBO path.
func (s *Service) DeleteMany(ctx context.Context, adminID id.AccountID, ids []id.RequestID) *BulkOutcome {
	return s.bulk(ids, func(requestID id.RequestID) error {
		return s.AdminDelete(ctx, adminID, requestID)
	})
}

// AdminDelete removes a request on behalf of an admin. Unlike the CBO
// delete it is not limited to open requests.
func (s *Service) AdminDelete(ctx context.Context, adminID id.AccountID, requestID id.RequestID) error {
	if _, err := s.actor(ctx, adminID, account.RoleAdmin); err != nil {
		return err
	}
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := s.findRequest(txCtx, requestID)
		if err != nil {
			return err
		}
		if _, err := s.ledger.Record(txCtx, r.ID, adminID, history.ActionDeleted, "Request deleted by admin"); err != nil {
			return err
		}
		if err := s.requests.Delete(txCtx, r.ID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete request")
		}
		return nil
	})
}

func (s *Service) bulk(ids []id.RequestID, op func(id.RequestID) error) *BulkOutcome {
	out := &BulkOutcome{Failed: make(map[id.RequestID]string)}
	for _, requestID := range ids {
		if err := op(requestID); err != nil {
			s.logger.Warn("bulk request operation failed",
				slog.String("request_id", requestID.String()),
				slog.String("error", err.Error()))
			out.Failed[requestID] = dErrors.MessageOf(err)
			continue
		}
		out.Succeeded = append(out.Succeeded, requestID)
	}
	return out
}

// Mine lists the caller's requests: a CBO sees its organization's posts, a
// donor sees the requests it has claimed or fulfilled.
func (s *Service) Mine(ctx context.Context, actorID id.AccountID) ([]*request.Request, error) {
	a, err := s.actor(ctx, actorID, account.RoleCBO, account.RoleDonor, account.RoleAdmin)
	if err != nil {
		return nil, err
	}

	var filter request.Filter
	switch a.Role {
	case account.RoleCBO:
		org, err := s.orgs.FindOrganizationByAccount(ctx, actorID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, nil
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
		}
		filter.OrgID = org.ID
	default:
		filter.DonorID = actorID
	}

	list, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list requests")
	}
	return list, nil
}

// Fulfillment returns the fulfillment record of a fulfilled request.
func (s *Service) Fulfillment(ctx context.Context, requestID id.RequestID) (*request.FulfillmentRecord, error) {
	f, err := s.requests.FindFulfillment(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "fulfillment record not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load fulfillment record")
	}
	return f, nil
}

func (s *Service) requireOwner(ctx context.Context, r *request.Request, actorID id.AccountID) error {
	org, err := s.orgs.FindOrganizationByID(ctx, r.OrgID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
	}
	if org.AccountID != actorID {
		return dErrors.New(dErrors.CodePermissionDenied, "you do not own this request")
	}
	return nil
}

func (s *Service) orgForRequest(ctx context.Context, r *request.Request) (*profile.Organization, error) {
	org, err := s.orgs.FindOrganizationByID(ctx, r.OrgID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
	}
	return org, nil
}

func (s *Service) notifyClaimed(ctx context.Context, r *request.Request, org *profile.Organization, donor *account.Account) error {
	if _, err := s.notifier.Notify(ctx, notify.Dispatch{
		RecipientID:    org.AccountID,
		RecipientEmail: org.Email,
		RequestID:      &r.ID,
		Type:           notify.TypeClaimed,
		Title:          fmt.Sprintf("Your Request Has Been Claimed - $%s", r.AmountDollars()),
		Message:        fmt.Sprintf("%s has committed to fulfilling your request for $%s.", donor.Username, r.AmountDollars()),
		TemplateID:     notify.TemplateRequestClaimedCBO,
		TemplateData:   map[string]string{"organization": org.Name, "donor": donor.Username, "amount": r.AmountDollars()},
	}); err != nil {
		return err
	}
	_, err := s.notifier.Notify(ctx, notify.Dispatch{
		RecipientID:    donor.ID,
		RecipientEmail: donor.Email,
		RequestID:      &r.ID,
		Type:           notify.TypeClaimed,
		Title:          fmt.Sprintf("Request Claimed Successfully - %s", org.Name),
		Message:        fmt.Sprintf("You claimed %s's request for $%s.", org.Name, r.AmountDollars()),
		TemplateID:     notify.TemplateRequestClaimedDonor,
		TemplateData:   map[string]string{"organization": org.Name, "amount": r.AmountDollars()},
	})
	return err
}

func (s *Service) notifyFulfilled(ctx context.Context, r *request.Request, org *profile.Organization) error {
	if _, err := s.notifier.Notify(ctx, notify.Dispatch{
		RecipientID:    org.AccountID,
		RecipientEmail: org.Email,
		RequestID:      &r.ID,
		Type:           notify.TypeFulfilled,
		Title:          fmt.Sprintf("Request Fulfilled - $%s", r.AmountDollars()),
		Message:        fmt.Sprintf("Your request for $%s has been fulfilled.", r.AmountDollars()),
		TemplateID:     notify.TemplateRequestFulfilledCBO,
		TemplateData:   map[string]string{"organization": org.Name, "amount": r.AmountDollars()},
	}); err != nil {
		return err
	}

	if r.DonorID == nil {
		return nil
	}
	donor, err := s.accounts.FindByID(ctx, *r.DonorID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donor account")
	}
	_, err = s.notifier.Notify(ctx, notify.Dispatch{
		RecipientID:    donor.ID,
		RecipientEmail: donor.Email,
		RequestID:      &r.ID,
		Type:           notify.TypeFulfilled,
		Title:          fmt.Sprintf("Thank You for Your Contribution - %s", org.Name),
		Message:        fmt.Sprintf("Your fulfillment of %s's request for $%s is complete.", org.Name, r.AmountDollars()),
		TemplateID:     notify.TemplateRequestFulfilledDonor,
		TemplateData:   map[string]string{"organization": org.Name, "amount": r.AmountDollars()},
	})
	return err
}
