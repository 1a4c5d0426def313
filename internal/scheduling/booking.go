package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/hackgods/interview-scheduling/internal/config"
	redisclient "github.com/hackgods/interview-scheduling/internal/redis"
)

const (
	defaultReleaseBackoff = 50 * time.Millisecond
	releaseTimeout        = 5 * time.Second
	insertTimeout         = 5 * time.Second
)

type BookingRequest struct {
	InterviewerID   uuid.UUID
	CandidateID     uuid.UUID
	InterviewTypeID uuid.UUID

	// SlotID pins the reservation to one slot, typically taken from a
	// search result. Nil lets the store pick a covering slot.
	SlotID *uuid.UUID

	Date      Date
	StartTime TimeOfDay
	EndTime   TimeOfDay

	PrimarySkillIDs   []uuid.UUID
	SecondarySkillIDs []uuid.UUID

	RequestedBy uuid.UUID
}

type CoordinatorOption func(*Coordinator)

func WithClock(now Clock) CoordinatorOption {
	return func(c *Coordinator) { c.now = now }
}

// WithReleaseBackoff sets the base delay between compensating release attempts.
func WithReleaseBackoff(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) { c.releaseBackoff = d }
}

// Coordinator is the only writer of slot open state and interview status.
type Coordinator struct {
	slots      *SlotStore
	interviews InterviewRepository
	locker     redisclient.Locker
	audit      auditLog
	now        Clock
	loc        *time.Location

	releaseRetries uint64
	releaseBackoff time.Duration

	log *zap.Logger
}

func NewCoordinator(repo Repository, slots *SlotStore, locker redisclient.Locker, cfg config.Config, log *zap.Logger, opts ...CoordinatorOption) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("booking")

	retries := cfg.ReleaseMaxRetries
	if retries < 0 {
		retries = 0
	}

	c := &Coordinator{
		slots:          slots,
		interviews:     repo,
		locker:         locker,
		now:            time.Now,
		loc:            cfg.Location,
		releaseRetries: uint64(retries),
		releaseBackoff: defaultReleaseBackoff,
		log:            log,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.loc == nil {
		c.loc = time.UTC
	}
	c.audit = auditLog{rec: repo, now: c.now, log: log}

	return c
}

// CreateBooking reserves a covering open slot and records a Scheduled
// interview against it. If the interview cannot be stored the slot is
// reopened before returning.
func (c *Coordinator) CreateBooking(ctx context.Context, req BookingRequest) (*Interview, error) {
	if req.InterviewerID == uuid.Nil || req.CandidateID == uuid.Nil || req.InterviewTypeID == uuid.Nil || req.Date.IsZero() {
		return nil, fmt.Errorf("%w: interviewer, candidate, interview type and date are required", ErrInvalidInput)
	}

	window := Window{Start: req.StartTime, End: req.EndTime}
	if !window.Valid() {
		return nil, ErrInvalidWindow
	}
	if req.Date.Before(c.now.today(c.loc)) {
		return nil, ErrPastDate
	}

	var created *Interview

	err := c.withInterviewerLock(ctx, req.InterviewerID, func(lockCtx context.Context) error {
		slot, err := c.slots.reserve(lockCtx, req.InterviewerID, req.Date, window, req.SlotID)
		if err != nil {
			if errors.Is(err, ErrNoMatchingSlot) {
				return ErrSlotUnavailable
			}
			return err
		}

		slotID := slot.ID
		in, err := c.storeInterview(lockCtx, Interview{
			ID:              uuid.New(),
			InterviewerID:   req.InterviewerID,
			CandidateID:     req.CandidateID,
			InterviewTypeID: req.InterviewTypeID,
			SlotID:          &slotID,
			ScheduledDate:   req.Date,
			StartTime:       req.StartTime,
			EndTime:         req.EndTime,
			Status:          StatusScheduled,
			RequiredSkills:  NewSkillRequirements(req.PrimarySkillIDs, req.SecondarySkillIDs),
			CreatedBy:       req.RequestedBy,
		}, slot)
		if err != nil {
			return err
		}

		created = in
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.audit.record(ctx, EventInterviewBooked, &created.ID, created.SlotID, map[string]any{
		"interviewer_id": created.InterviewerID.String(),
		"candidate_id":   created.CandidateID.String(),
		"date":           created.ScheduledDate.String(),
		"window":         created.Window().String(),
		"requested_by":   req.RequestedBy.String(),
	})
	c.log.Info("interview booked",
		zap.Stringer("interview_id", created.ID),
		zap.Stringer("interviewer_id", created.InterviewerID),
		zap.Stringer("date", created.ScheduledDate),
		zap.Stringer("window", created.Window()),
	)

	return created, nil
}

// storeInterview inserts in against an already closed slot. The insert is
// detached from ctx so a request deadline cannot abandon a commit midway.
// When the insert reports an error the row is looked up by id, since a lost
// commit reply can hide a stored interview. The slot is only reopened once
// the interview is known to be absent.
func (c *Coordinator) storeInterview(ctx context.Context, in Interview, slot *AvailabilitySlot) (*Interview, error) {
	ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), insertTimeout)
	defer cancel()

	created, err := c.interviews.CreateInterview(ictx, in)
	if err == nil {
		return created, nil
	}

	stored, lookupErr := c.interviews.GetInterviewByID(ictx, in.ID)
	switch {
	case lookupErr == nil:
		c.log.Warn("interview stored despite insert error",
			zap.Stringer("interview_id", in.ID),
			zap.Error(err),
		)
		return stored, nil
	case errors.Is(lookupErr, ErrInterviewNotFound):
		return nil, c.compensate(ctx, slot, err)
	default:
		// Reopening could double book, so the slot stays closed.
		slotID := slot.ID
		c.log.Error("booking outcome unknown, slot kept closed",
			zap.Stringer("interview_id", in.ID),
			zap.Stringer("slot_id", slotID),
			zap.NamedError("cause", err),
			zap.Error(lookupErr),
		)
		c.audit.record(ctx, EventSlotOrphaned, nil, &slotID, map[string]any{
			"interviewer_id": slot.InterviewerID.String(),
			"interview_id":   in.ID.String(),
			"date":           slot.Date.String(),
			"window":         slot.Window().String(),
			"reason":         "booking_outcome_unknown",
		})
		return nil, fmt.Errorf("%w: slot %s", ErrInconsistentState, slotID)
	}
}

// compensate reopens a slot closed for a booking whose interview was never
// stored. It always returns an error describing the failed booking.
func (c *Coordinator) compensate(ctx context.Context, slot *AvailabilitySlot, cause error) error {
	slotID := slot.ID

	_, err := c.releaseWithRetry(ctx, slot.InterviewerID, slot.Date, slot.Window(), &slotID)
	if err == nil || errors.Is(err, ErrNoMatchingSlot) {
		if err != nil {
			c.log.Warn("slot already open or removed during compensation", zap.Stringer("slot_id", slotID))
		}
		return fmt.Errorf("create interview: %w", cause)
	}

	c.log.Error("slot left closed without an interview",
		zap.Stringer("slot_id", slotID),
		zap.Stringer("interviewer_id", slot.InterviewerID),
		zap.NamedError("cause", cause),
		zap.Error(err),
	)
	c.audit.record(ctx, EventSlotOrphaned, nil, &slotID, map[string]any{
		"interviewer_id": slot.InterviewerID.String(),
		"date":           slot.Date.String(),
		"window":         slot.Window().String(),
		"reason":         "booking_rollback_failed",
	})

	return fmt.Errorf("%w: slot %s", ErrInconsistentState, slotID)
}

// releaseWithRetry reopens a slot, retrying transient failures. It detaches
// from ctx so a request timeout cannot cut the release short.
func (c *Coordinator) releaseWithRetry(ctx context.Context, interviewerID uuid.UUID, date Date, window Window, slotID *uuid.UUID) (*AvailabilitySlot, error) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	var released *AvailabilitySlot
	backoff := retry.WithMaxRetries(c.releaseRetries, retry.NewExponential(c.releaseBackoff))

	err := retry.Do(rctx, backoff, func(ctx context.Context) error {
		slot, err := c.slots.release(ctx, interviewerID, date, window, slotID)
		switch {
		case err == nil:
			released = slot
			return nil
		case errors.Is(err, ErrNoMatchingSlot):
			return err
		default:
			c.log.Warn("release slot attempt failed", zap.Error(err))
			return retry.RetryableError(err)
		}
	})

	return released, err
}

// CancelBooking cancels a Scheduled interview owned by requestedBy and
// reopens its slot. A missing slot is reported but does not fail the call.
func (c *Coordinator) CancelBooking(ctx context.Context, interviewID, requestedBy uuid.UUID) error {
	in, err := c.interviews.GetInterviewByID(ctx, interviewID)
	if err != nil {
		if errors.Is(err, ErrInterviewNotFound) {
			return err
		}
		return fmt.Errorf("load interview: %w", err)
	}
	if in.Status.Terminal() {
		return ErrAlreadyFinalized
	}
	if in.InterviewerID != requestedBy {
		return ErrForbidden
	}

	return c.withInterviewerLock(ctx, in.InterviewerID, func(lockCtx context.Context) error {
		cancelled, err := c.interviews.UpdateInterviewStatus(lockCtx, in.ID, StatusScheduled, StatusCancelled)
		if err != nil {
			if errors.Is(err, ErrInterviewNotFound) {
				// Finalized by someone else since it was loaded.
				return ErrAlreadyFinalized
			}
			return fmt.Errorf("cancel interview: %w", err)
		}

		c.audit.record(lockCtx, EventInterviewCancelled, &cancelled.ID, cancelled.SlotID, map[string]any{
			"requested_by": requestedBy.String(),
		})

		c.reopenForCancelled(lockCtx, cancelled)
		return nil
	})
}

// reopenForCancelled releases the slot the interview was booked on. An
// interview with a stored slot id only ever reopens that slot; a replacement
// slot with the same window may back another booking. The window match is
// left for interviews stored without a slot id.
func (c *Coordinator) reopenForCancelled(ctx context.Context, in *Interview) {
	window := in.Window()

	slot, err := c.releaseWithRetry(ctx, in.InterviewerID, in.ScheduledDate, window, in.SlotID)

	switch {
	case err == nil:
		c.log.Info("interview cancelled",
			zap.Stringer("interview_id", in.ID),
			zap.Stringer("slot_id", slot.ID),
		)
	case errors.Is(err, ErrNoMatchingSlot):
		c.log.Warn("no closed slot to reopen for cancelled interview",
			zap.Stringer("interview_id", in.ID),
			zap.Stringer("interviewer_id", in.InterviewerID),
			zap.Stringer("date", in.ScheduledDate),
			zap.Stringer("window", window),
		)
		c.audit.record(ctx, EventSlotReleaseMissing, &in.ID, in.SlotID, map[string]any{
			"date":   in.ScheduledDate.String(),
			"window": window.String(),
		})
	default:
		c.log.Error("slot left closed after cancellation",
			zap.Stringer("interview_id", in.ID),
			zap.Error(err),
		)
		c.audit.record(ctx, EventSlotOrphaned, &in.ID, in.SlotID, map[string]any{
			"date":   in.ScheduledDate.String(),
			"window": window.String(),
			"reason": "cancel_release_failed",
		})
	}
}

// CompleteElapsed moves every Scheduled interview whose window has ended
// to Completed and returns how many changed.
func (c *Coordinator) CompleteElapsed(ctx context.Context) (int, error) {
	now := c.now().In(c.loc)
	day, at := DateOf(now), TimeOfDayOf(now)

	elapsed, err := c.interviews.FindElapsedScheduled(ctx, day, at)
	if err != nil {
		return 0, fmt.Errorf("find elapsed interviews: %w", err)
	}

	completed := 0
	for _, in := range elapsed {
		updated, err := c.interviews.UpdateInterviewStatus(ctx, in.ID, StatusScheduled, StatusCompleted)
		if err != nil {
			if !errors.Is(err, ErrInterviewNotFound) {
				c.log.Warn("complete interview", zap.Stringer("interview_id", in.ID), zap.Error(err))
			}
			continue
		}
		completed++
		c.audit.record(ctx, EventInterviewCompleted, &updated.ID, updated.SlotID, map[string]any{
			"reason": "worker",
		})
	}

	return completed, nil
}

func (c *Coordinator) withInterviewerLock(ctx context.Context, interviewerID uuid.UUID, fn func(ctx context.Context) error) error {
	if c.locker == nil {
		return fn(ctx)
	}

	err := c.locker.WithInterviewerLock(ctx, interviewerID, fn)
	switch {
	case errors.Is(err, redisclient.ErrLockNotAcquired):
		return fmt.Errorf("%w: %w", ErrRetryable, err)
	case errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrRetryable):
		return fmt.Errorf("%w: %w", ErrRetryable, err)
	default:
		return err
	}
}
