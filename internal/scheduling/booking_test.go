package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingFor(interviewerID uuid.UUID, date Date, start, end TimeOfDay) BookingRequest {
	return BookingRequest{
		InterviewerID:   interviewerID,
		CandidateID:     uuid.New(),
		InterviewTypeID: uuid.New(),
		Date:            date,
		StartTime:       start,
		EndTime:         end,
		RequestedBy:     uuid.New(),
	}
}

func TestBookingRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	interviewer := uuid.New()
	slot := env.addSlot(t, interviewer, "2025-06-01", hm(9, 0), hm(10, 0))

	in, err := env.coord.CreateBooking(ctx, bookingFor(interviewer, slot.Date, hm(9, 0), hm(10, 0)))
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, in.Status)
	require.NotNil(t, in.SlotID)
	assert.Equal(t, slot.ID, *in.SlotID)

	closed, err := env.slots.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.False(t, closed.IsOpen)

	require.NoError(t, env.coord.CancelBooking(ctx, in.ID, interviewer))

	reopened, err := env.slots.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.True(t, reopened.IsOpen)
	assert.Equal(t, slot.Date, reopened.Date)
	assert.Equal(t, slot.Window(), reopened.Window())

	stored, err := env.coord.GetInterview(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)

	assert.Len(t, env.eventsOfType(EventInterviewBooked), 1)
	assert.Len(t, env.eventsOfType(EventInterviewCancelled), 1)
	assert.Empty(t, env.eventsOfType(EventSlotReleaseMissing))
}

func TestBookingSupersetSlot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	react := uuid.New()
	panelist := env.addInterviewer("Ana", skillSet{primary: []uuid.UUID{react}})
	slot := env.addSlot(t, panelist.ID, "2025-06-01", hm(9, 0), hm(12, 0))

	req := bookingFor(panelist.ID, slot.Date, hm(9, 30), hm(10, 30))
	req.PrimarySkillIDs = []uuid.UUID{react}

	in, err := env.coord.CreateBooking(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, []SkillRequirement{{SkillID: react, IsPrimary: true}}, in.RequiredSkills)

	got, err := env.slots.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.False(t, got.IsOpen)

	day := slot.Date
	matches, err := env.matcher.Search(ctx, SearchQuery{PrimarySkillIDs: []uuid.UUID{react}, Date: &day})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestCreateBookingValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	interviewer := uuid.New()
	today := DateOf(testNow)
	yesterday := today.AddDays(-1)

	env.addSlot(t, interviewer, yesterday.String(), hm(9, 0), hm(10, 0))
	env.addSlot(t, interviewer, today.String(), hm(9, 0), hm(10, 0))

	tests := []struct {
		name string
		req  BookingRequest
		want error
	}{
		{
			name: "inverted window",
			req:  bookingFor(interviewer, today, hm(10, 0), hm(9, 0)),
			want: ErrInvalidWindow,
		},
		{
			name: "window checked before date",
			req:  bookingFor(interviewer, yesterday, hm(10, 0), hm(10, 0)),
			want: ErrInvalidWindow,
		},
		{
			name: "yesterday",
			req:  bookingFor(interviewer, yesterday, hm(9, 0), hm(10, 0)),
			want: ErrPastDate,
		},
		{
			name: "not covered",
			req:  bookingFor(interviewer, today, hm(9, 30), hm(10, 30)),
			want: ErrSlotUnavailable,
		},
		{
			name: "other interviewer",
			req:  bookingFor(uuid.New(), today, hm(9, 0), hm(10, 0)),
			want: ErrSlotUnavailable,
		},
		{
			name: "missing candidate",
			req: func() BookingRequest {
				r := bookingFor(interviewer, today, hm(9, 0), hm(10, 0))
				r.CandidateID = uuid.Nil
				return r
			}(),
			want: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.coord.CreateBooking(ctx, tt.req)
			require.ErrorIs(t, err, tt.want)
		})
	}

	schedule, err := env.coord.InterviewerSchedule(ctx, interviewer)
	require.NoError(t, err)
	assert.Empty(t, schedule)

	open, err := env.slots.ListOpenSlots(ctx, interviewer, nil)
	require.NoError(t, err)
	assert.Len(t, open, 2)
}

func TestCreateBookingPinnedSlot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	interviewer := uuid.New()

	narrow := env.addSlot(t, interviewer, "2025-06-01", hm(9, 0), hm(10, 0))
	wide := env.addSlot(t, interviewer, "2025-06-01", hm(9, 0), hm(12, 0))

	req := bookingFor(interviewer, wide.Date, hm(9, 0), hm(10, 0))
	req.SlotID = &wide.ID

	in, err := env.coord.CreateBooking(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, wide.ID, *in.SlotID)

	got, err := env.slots.GetSlot(ctx, narrow.ID)
	require.NoError(t, err)
	assert.True(t, got.IsOpen)

	req = bookingFor(interviewer, wide.Date, hm(9, 0), hm(10, 0))
	req.SlotID = &wide.ID
	_, err = env.coord.CreateBooking(ctx, req)
	require.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestConcurrentBookingsSingleWinner(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	interviewer := uuid.New()
	slot := env.addSlot(t, interviewer, "2025-06-01", hm(9, 0), hm(10, 0))

	const attempts = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		other     []error
	)
	start := make(chan struct{})

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := env.coord.CreateBooking(ctx, bookingFor(interviewer, slot.Date, hm(9, 0), hm(10, 0)))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrSlotUnavailable):
				conflicts++
			default:
				other = append(other, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)

	schedule, err := env.coord.InterviewerSchedule(ctx, interviewer)
	require.NoError(t, err)
	assert.Len(t, schedule, 1)
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	interviewer := uuid.New()
	slot := env.addSlot(t, interviewer, "2025-06-01", hm(9, 0), hm(10, 0))

	in, err := env.coord.CreateBooking(ctx, bookingFor(interviewer, slot.Date, hm(9, 0), hm(10, 0)))
	require.NoError(t, err)

	t.Run("not found", func(t *testing.T) {
		err := env.coord.CancelBooking(ctx, uuid.New(), interviewer)
		require.ErrorIs(t, err, ErrInterviewNotFound)
	})

	t.Run("not the owner", func(t *testing.T) {
		err := env.coord.CancelBooking(ctx, in.ID, uuid.New())
		require.ErrorIs(t, err, ErrForbidden)

		got, err := env.coord.GetInterview(ctx, in.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusScheduled, got.Status)
	})

	t.Run("cancel twice", func(t *testing.T) {
		require.NoError(t, env.coord.CancelBooking(ctx, in.ID, interviewer))
		before, err := env.coord.GetInterview(ctx, in.ID)
		require.NoError(t, err)

		err = env.coord.CancelBooking(ctx, in.ID, interviewer)
		require.ErrorIs(t, err, ErrAlreadyFinalized)

		after, err := env.coord.GetInterview(ctx, in.ID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
		assert.Len(t, env.eventsOfType(EventInterviewCancelled), 1)
	})
}

func TestCancelWithDeletedSlot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	interviewer := uuid.New()
	slot := env.addSlot(t, interviewer, "2025-06-01", hm(9, 0), hm(10, 0))

	in, err := env.coord.CreateBooking(ctx, bookingFor(interviewer, slot.Date, hm(9, 0), hm(10, 0)))
	require.NoError(t, err)

	require.NoError(t, env.slots.DeleteSlot(ctx, slot.ID))
	require.NoError(t, env.coord.CancelBooking(ctx, in.ID, interviewer))

	got, err := env.coord.GetInterview(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Len(t, env.eventsOfType(EventSlotReleaseMissing), 1)
}

func TestCancelLeavesReplacementSlotClosed(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	interviewer := uuid.New()
	original := env.addSlot(t, interviewer, "2025-06-01", hm(9, 0), hm(10, 0))

	first, err := env.coord.CreateBooking(ctx, bookingFor(interviewer, original.Date, hm(9, 0), hm(10, 0)))
	require.NoError(t, err)

	// The slot is recreated under a new id and booked again.
	require.NoError(t, env.slots.DeleteSlot(ctx, original.ID))
	replacement := env.addSlot(t, interviewer, "2025-06-01", hm(9, 0), hm(10, 0))
	second, err := env.coord.CreateBooking(ctx, bookingFor(interviewer, replacement.Date, hm(9, 0), hm(10, 0)))
	require.NoError(t, err)
	require.Equal(t, replacement.ID, *second.SlotID)

	require.NoError(t, env.coord.CancelBooking(ctx, first.ID, interviewer))

	got, err := env.slots.GetSlot(ctx, replacement.ID)
	require.NoError(t, err)
	assert.False(t, got.IsOpen, "replacement slot backs a scheduled interview")
	assert.Len(t, env.eventsOfType(EventSlotReleaseMissing), 1)

	_, err = env.coord.CreateBooking(ctx, bookingFor(interviewer, replacement.Date, hm(9, 0), hm(10, 0)))
	require.ErrorIs(t, err, ErrSlotUnavailable)

	still, err := env.coord.GetInterview(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, still.Status)
}

func TestCancelWithoutSlotIDMatchesWindow(t *testing.T) {
	ctx := context.Background()

	// Interviews stored before slot ids were recorded.
	legacyInterview := func(t *testing.T, env *testEnv, interviewer uuid.UUID) *Interview {
		t.Helper()
		in, err := env.mem.CreateInterview(ctx, Interview{
			InterviewerID:   interviewer,
			CandidateID:     uuid.New(),
			InterviewTypeID: uuid.New(),
			ScheduledDate:   mustDate(t, "2025-06-01"),
			StartTime:       hm(9, 0),
			EndTime:         hm(10, 0),
			Status:          StatusScheduled,
		})
		require.NoError(t, err)
		return in
	}

	t.Run("closed slot reopened", func(t *testing.T) {
		env := newTestEnv(t, nil)
		interviewer := uuid.New()
		slot := env.addSlot(t, interviewer, "2025-06-01", hm(9, 0), hm(10, 0))
		_, err := env.slots.reserve(ctx, interviewer, slot.Date, slot.Window(), &slot.ID)
		require.NoError(t, err)

		legacy := legacyInterview(t, env, interviewer)
		require.NoError(t, env.coord.CancelBooking(ctx, legacy.ID, interviewer))

		got, err := env.slots.GetSlot(ctx, slot.ID)
		require.NoError(t, err)
		assert.True(t, got.IsOpen)
		assert.Empty(t, env.eventsOfType(EventSlotReleaseMissing))
	})

	t.Run("slot backing another booking skipped", func(t *testing.T) {
		env := newTestEnv(t, nil)
		interviewer := uuid.New()
		slot := env.addSlot(t, interviewer, "2025-06-01", hm(9, 0), hm(10, 0))
		booked, err := env.coord.CreateBooking(ctx, bookingFor(interviewer, slot.Date, hm(9, 0), hm(10, 0)))
		require.NoError(t, err)

		legacy := legacyInterview(t, env, interviewer)
		require.NoError(t, env.coord.CancelBooking(ctx, legacy.ID, interviewer))

		got, err := env.slots.GetSlot(ctx, slot.ID)
		require.NoError(t, err)
		assert.False(t, got.IsOpen)
		assert.Len(t, env.eventsOfType(EventSlotReleaseMissing), 1)

		still, err := env.coord.GetInterview(ctx, booked.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusScheduled, still.Status)
	})
}

func TestCreateBookingCompensation(t *testing.T) {
	ctx := context.Background()

	t.Run("slot reopened after failed insert", func(t *testing.T) {
		var flaky *flakyRepository
		env := newTestEnv(t, func(m *MemoryRepository) Repository {
			flaky = &flakyRepository{MemoryRepository: m, createFailures: 1, releaseFailures: 2}
			return flaky
		})
		interviewer := uuid.New()
		slot := env.addSlot(t, interviewer, "2025-06-01", hm(9, 0), hm(10, 0))

		_, err := env.coord.CreateBooking(ctx, bookingFor(interviewer, slot.Date, hm(9, 0), hm(10, 0)))
		require.ErrorIs(t, err, errInjected)
		assert.NotErrorIs(t, err, ErrInconsistentState)
		assert.Equal(t, 3, flaky.releaseAttempts)

		got, err := env.slots.GetSlot(ctx, slot.ID)
		require.NoError(t, err)
		assert.True(t, got.IsOpen)

		// The slot is bookable again.
		_, err = env.coord.CreateBooking(ctx, bookingFor(interviewer, slot.Date, hm(9, 0), hm(10, 0)))
		require.NoError(t, err)
	})

	t.Run("stored interview kept when insert reports failure", func(t *testing.T) {
		var flaky *flakyRepository
		env := newTestEnv(t, func(m *MemoryRepository) Repository {
			flaky = &flakyRepository{MemoryRepository: m, lostCommits: 1}
			return flaky
		})
		interviewer := uuid.New()
		slot := env.addSlot(t, interviewer, "2025-06-01", hm(9, 0), hm(10, 0))

		in, err := env.coord.CreateBooking(ctx, bookingFor(interviewer, slot.Date, hm(9, 0), hm(10, 0)))
		require.NoError(t, err)
		assert.Equal(t, StatusScheduled, in.Status)
		assert.Equal(t, slot.ID, *in.SlotID)
		assert.Zero(t, flaky.releaseAttempts)

		got, err := env.slots.GetSlot(ctx, slot.ID)
		require.NoError(t, err)
		assert.False(t, got.IsOpen)

		_, err = env.coord.CreateBooking(ctx, bookingFor(interviewer, slot.Date, hm(9, 0), hm(10, 0)))
		require.ErrorIs(t, err, ErrSlotUnavailable)
	})

	t.Run("slot kept closed when outcome unknown", func(t *testing.T) {
		var flaky *flakyRepository
		env := newTestEnv(t, func(m *MemoryRepository) Repository {
			flaky = &flakyRepository{MemoryRepository: m, createFailures: 1, lookupFailures: 1}
			return flaky
		})
		interviewer := uuid.New()
		slot := env.addSlot(t, interviewer, "2025-06-01", hm(9, 0), hm(10, 0))

		_, err := env.coord.CreateBooking(ctx, bookingFor(interviewer, slot.Date, hm(9, 0), hm(10, 0)))
		require.ErrorIs(t, err, ErrInconsistentState)
		assert.Zero(t, flaky.releaseAttempts)

		got, err := env.slots.GetSlot(ctx, slot.ID)
		require.NoError(t, err)
		assert.False(t, got.IsOpen)

		orphans := env.eventsOfType(EventSlotOrphaned)
		require.Len(t, orphans, 1)
		assert.Contains(t, string(orphans[0].Payload), "booking_outcome_unknown")
	})

	t.Run("insert survives a cancelled request", func(t *testing.T) {
		env := newTestEnv(t, func(m *MemoryRepository) Repository {
			return &flakyRepository{MemoryRepository: m}
		})
		interviewer := uuid.New()
		slot := env.addSlot(t, interviewer, "2025-06-01", hm(9, 0), hm(10, 0))
		closed, err := env.slots.reserve(ctx, interviewer, slot.Date, slot.Window(), &slot.ID)
		require.NoError(t, err)

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		slotID := closed.ID
		in, err := env.coord.storeInterview(cctx, Interview{
			ID:              uuid.New(),
			InterviewerID:   interviewer,
			CandidateID:     uuid.New(),
			InterviewTypeID: uuid.New(),
			SlotID:          &slotID,
			ScheduledDate:   closed.Date,
			StartTime:       closed.StartTime,
			EndTime:         closed.EndTime,
			Status:          StatusScheduled,
		}, closed)
		require.NoError(t, err)

		stored, err := env.coord.GetInterview(ctx, in.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusScheduled, stored.Status)
	})

	t.Run("orphan reported when release keeps failing", func(t *testing.T) {
		var flaky *flakyRepository
		env := newTestEnv(t, func(m *MemoryRepository) Repository {
			flaky = &flakyRepository{MemoryRepository: m, createFailures: 1, releaseFailures: 100}
			return flaky
		})
		interviewer := uuid.New()
		slot := env.addSlot(t, interviewer, "2025-06-01", hm(9, 0), hm(10, 0))

		_, err := env.coord.CreateBooking(ctx, bookingFor(interviewer, slot.Date, hm(9, 0), hm(10, 0)))
		require.ErrorIs(t, err, ErrInconsistentState)
		assert.Equal(t, CodeInconsistentState, Code(err))
		assert.Equal(t, 4, flaky.releaseAttempts, "first attempt plus three retries")

		orphans := env.eventsOfType(EventSlotOrphaned)
		require.Len(t, orphans, 1)
		require.NotNil(t, orphans[0].SlotID)
		assert.Equal(t, slot.ID, *orphans[0].SlotID)
	})
}

func TestCompleteElapsed(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	interviewer := uuid.New()
	today := DateOf(testNow)

	early := env.addSlot(t, interviewer, today.String(), hm(6, 0), hm(7, 0))
	endsNow := env.addSlot(t, interviewer, today.String(), hm(7, 0), hm(8, 0))
	later := env.addSlot(t, interviewer, today.String(), hm(9, 0), hm(10, 0))
	cancelled := env.addSlot(t, interviewer, today.String(), hm(5, 0), hm(6, 0))

	book := func(s *AvailabilitySlot) *Interview {
		in, err := env.coord.CreateBooking(ctx, bookingFor(interviewer, s.Date, s.StartTime, s.EndTime))
		require.NoError(t, err)
		return in
	}
	a, b, c, d := book(early), book(endsNow), book(later), book(cancelled)
	require.NoError(t, env.coord.CancelBooking(ctx, d.ID, interviewer))

	n, err := env.coord.CompleteElapsed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	statuses := map[uuid.UUID]InterviewStatus{}
	schedule, err := env.coord.InterviewerSchedule(ctx, interviewer)
	require.NoError(t, err)
	for _, in := range schedule {
		statuses[in.ID] = in.Status
	}
	assert.Equal(t, StatusCompleted, statuses[a.ID])
	assert.Equal(t, StatusCompleted, statuses[b.ID])
	assert.Equal(t, StatusScheduled, statuses[c.ID])
	assert.Equal(t, StatusCancelled, statuses[d.ID])

	// Completed interviews can no longer be cancelled.
	err = env.coord.CancelBooking(ctx, a.ID, interviewer)
	require.ErrorIs(t, err, ErrAlreadyFinalized)

	n, err = env.coord.CompleteElapsed(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, env.eventsOfType(EventInterviewCompleted), 2)
}

func TestScheduleOrdering(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	panelist := env.addInterviewer("Fer", skillSet{primary: []uuid.UUID{uuid.New()}})

	for _, s := range []struct {
		date       string
		start, end TimeOfDay
	}{
		{"2025-06-02", hm(9, 0), hm(10, 0)},
		{"2025-06-01", hm(14, 0), hm(15, 0)},
		{"2025-06-01", hm(9, 0), hm(10, 0)},
	} {
		slot := env.addSlot(t, panelist.ID, s.date, s.start, s.end)
		req := bookingFor(panelist.ID, slot.Date, s.start, s.end)
		req.PrimarySkillIDs = []uuid.UUID{panelist.Skills[0].ID}
		_, err := env.coord.CreateBooking(ctx, req)
		require.NoError(t, err)
	}

	schedule, err := env.coord.InterviewerSchedule(ctx, panelist.ID)
	require.NoError(t, err)
	require.Len(t, schedule, 3)
	assert.Equal(t, "2025-06-01", schedule[0].ScheduledDate.String())
	assert.Equal(t, hm(9, 0), schedule[0].StartTime)
	assert.Equal(t, hm(14, 0), schedule[1].StartTime)
	assert.Equal(t, "2025-06-02", schedule[2].ScheduledDate.String())

	all, err := env.coord.AllInterviews(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Fer", all[0].InterviewerName)
	require.Len(t, all[0].Skills, 1)
	assert.Equal(t, panelist.Skills[0].Name, all[0].Skills[0].Name)
	assert.True(t, all[0].Skills[0].IsPrimary)
}

func TestLockTimeoutIsRetryable(t *testing.T) {
	env := newTestEnv(t, nil)
	interviewer := uuid.New()
	slot := env.addSlot(t, interviewer, "2025-06-01", hm(9, 0), hm(10, 0))

	held := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = env.coord.locker.WithInterviewerLock(context.Background(), interviewer, func(context.Context) error {
			close(held)
			<-done
			return nil
		})
	}()
	<-held
	defer close(done)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := env.coord.CreateBooking(ctx, bookingFor(interviewer, slot.Date, hm(9, 0), hm(10, 0)))
	require.ErrorIs(t, err, ErrRetryable)
	assert.Equal(t, CodeRetryable, Code(err))
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	interviewer := uuid.New()
	slot := env.addSlot(t, interviewer, DateOf(testNow).String(), hm(6, 0), hm(7, 0))

	in, err := env.coord.CreateBooking(ctx, bookingFor(interviewer, slot.Date, slot.StartTime, slot.EndTime))
	require.NoError(t, err)
	n, err := env.coord.CompleteElapsed(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	tests := []struct {
		name     string
		from, to InterviewStatus
		want     error
	}{
		{"completed to cancelled", StatusCompleted, StatusCancelled, ErrInvalidTransition},
		{"scheduled to scheduled", StatusScheduled, StatusScheduled, ErrInvalidTransition},
		{"stale from status", StatusScheduled, StatusCancelled, ErrInterviewNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.mem.UpdateInterviewStatus(ctx, in.ID, tt.from, tt.to)
			require.ErrorIs(t, err, tt.want)
		})
	}

	got, err := env.coord.GetInterview(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
}
