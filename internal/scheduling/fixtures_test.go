package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hackgods/interview-scheduling/internal/config"
	redisclient "github.com/hackgods/interview-scheduling/internal/redis"
)

// 08:00 UTC on 2025-05-30.
var testNow = time.Date(2025, time.May, 30, 8, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func hm(h, m int) TimeOfDay {
	return NewTimeOfDay(h, m, 0)
}

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

type testEnv struct {
	mem     *MemoryRepository
	slots   *SlotStore
	matcher *Matcher
	coord   *Coordinator
}

// newTestEnv wires the domain over the memory repository. wrap, when set,
// decorates the repository seen by the coordinator.
func newTestEnv(t *testing.T, wrap func(*MemoryRepository) Repository) *testEnv {
	t.Helper()

	log := zaptest.NewLogger(t)
	clock := fixedClock(testNow)
	mem := NewMemoryRepository(clock)

	var repo Repository = mem
	if wrap != nil {
		repo = wrap(mem)
	}

	cfg := config.Config{
		ReleaseMaxRetries: 3,
		Location:          time.UTC,
	}

	slots := NewSlotStore(repo, log)
	return &testEnv{
		mem:     mem,
		slots:   slots,
		matcher: NewMatcher(repo, repo, clock, time.UTC, log),
		coord: NewCoordinator(repo, slots, redisclient.NewProcessLocker(3*time.Second), cfg, log,
			WithClock(clock),
			WithReleaseBackoff(time.Millisecond),
		),
	}
}

type skillSet struct {
	primary   []uuid.UUID
	secondary []uuid.UUID
}

func (e *testEnv) addInterviewer(name string, skills skillSet, positions ...uuid.UUID) InterviewerProfile {
	p := InterviewerProfile{
		ID:              uuid.New(),
		Name:            name,
		ExperienceYears: 5,
		PositionIDs:     positions,
	}
	for _, id := range skills.primary {
		p.Skills = append(p.Skills, Skill{ID: id, Name: "skill-" + id.String()[:4], IsPrimary: true})
	}
	for _, id := range skills.secondary {
		p.Skills = append(p.Skills, Skill{ID: id, Name: "skill-" + id.String()[:4], IsPrimary: false})
	}
	e.mem.AddInterviewer(p)
	return p
}

func (e *testEnv) addSlot(t *testing.T, interviewerID uuid.UUID, date string, start, end TimeOfDay) *AvailabilitySlot {
	t.Helper()
	s, err := e.slots.CreateSlot(context.Background(), interviewerID, mustDate(t, date), start, end)
	require.NoError(t, err)
	return s
}

func (e *testEnv) eventsOfType(eventType string) []EventLog {
	var out []EventLog
	for _, ev := range e.mem.Events() {
		if ev.EventType == eventType {
			out = append(out, ev)
		}
	}
	return out
}

var errInjected = errors.New("injected failure")

// flakyRepository fails selected operations a fixed number of times.
type flakyRepository struct {
	*MemoryRepository

	mu              sync.Mutex
	createFailures  int
	lostCommits     int // insert stored, error reported anyway
	lookupFailures  int
	releaseFailures int
	releaseAttempts int
	createCalls     int
}

func (f *flakyRepository) CreateInterview(ctx context.Context, in Interview) (*Interview, error) {
	// Like pgx, refuse to run on a finished context.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.createCalls++
	if f.createFailures > 0 {
		f.createFailures--
		f.mu.Unlock()
		return nil, errInjected
	}
	if f.lostCommits > 0 {
		f.lostCommits--
		f.mu.Unlock()
		if _, err := f.MemoryRepository.CreateInterview(ctx, in); err != nil {
			return nil, err
		}
		return nil, errInjected
	}
	f.mu.Unlock()
	return f.MemoryRepository.CreateInterview(ctx, in)
}

func (f *flakyRepository) GetInterviewByID(ctx context.Context, id uuid.UUID) (*Interview, error) {
	f.mu.Lock()
	if f.lookupFailures > 0 {
		f.lookupFailures--
		f.mu.Unlock()
		return nil, ErrRetryable
	}
	f.mu.Unlock()
	return f.MemoryRepository.GetInterviewByID(ctx, id)
}

func (f *flakyRepository) ReleaseSlot(ctx context.Context, interviewerID uuid.UUID, date Date, window Window, slotID *uuid.UUID) (*AvailabilitySlot, error) {
	f.mu.Lock()
	f.releaseAttempts++
	if f.releaseFailures > 0 {
		f.releaseFailures--
		f.mu.Unlock()
		return nil, ErrRetryable
	}
	f.mu.Unlock()
	return f.MemoryRepository.ReleaseSlot(ctx, interviewerID, date, window, slotID)
}
