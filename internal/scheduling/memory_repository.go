package scheduling

import (
	"bytes"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps everything in process. All methods hold one mutex,
// which makes reserve and release trivially atomic. Used for local runs
// (STORAGE_BACKEND=memory) and tests.
type MemoryRepository struct {
	mu           sync.Mutex
	now          Clock
	slots        map[uuid.UUID]AvailabilitySlot
	interviews   map[uuid.UUID]Interview
	interviewers map[uuid.UUID]InterviewerProfile
	skillNames   map[uuid.UUID]string
	events       []EventLog
}

func NewMemoryRepository(now Clock) *MemoryRepository {
	if now == nil {
		now = time.Now
	}
	return &MemoryRepository{
		now:          now,
		slots:        make(map[uuid.UUID]AvailabilitySlot),
		interviews:   make(map[uuid.UUID]Interview),
		interviewers: make(map[uuid.UUID]InterviewerProfile),
		skillNames:   make(map[uuid.UUID]string),
	}
}

// AddInterviewer registers a profile, standing in for the onboarding side.
func (r *MemoryRepository) AddInterviewer(p InterviewerProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.Skills = slices.Clone(p.Skills)
	p.PositionIDs = slices.Clone(p.PositionIDs)
	r.interviewers[p.ID] = p
	for _, s := range p.Skills {
		r.skillNames[s.ID] = s.Name
	}
}

// Events returns a copy of the recorded event log.
func (r *MemoryRepository) Events() []EventLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

func (r *MemoryRepository) GetSlotByID(_ context.Context, id uuid.UUID) (*AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) ListOpenSlots(_ context.Context, interviewerID uuid.UUID, date *Date) ([]AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.openSlotsLocked(interviewerID, date), nil
}

func (r *MemoryRepository) ListOpenSlotsByInterviewer(_ context.Context, interviewerIDs []uuid.UUID, date *Date) (map[uuid.UUID][]AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[uuid.UUID][]AvailabilitySlot, len(interviewerIDs))
	for _, id := range interviewerIDs {
		if slots := r.openSlotsLocked(id, date); len(slots) > 0 {
			out[id] = slots
		}
	}
	return out, nil
}

func (r *MemoryRepository) openSlotsLocked(interviewerID uuid.UUID, date *Date) []AvailabilitySlot {
	out := []AvailabilitySlot{}
	for _, s := range r.slots {
		if s.InterviewerID != interviewerID || !s.IsOpen {
			continue
		}
		if date != nil && s.Date != *date {
			continue
		}
		out = append(out, s)
	}
	sortSlots(out)
	return out
}

func (r *MemoryRepository) InsertSlot(_ context.Context, slot AvailabilitySlot) (*AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.slots {
		if s.InterviewerID == slot.InterviewerID && s.Date == slot.Date && s.Window() == slot.Window() {
			return nil, ErrDuplicateSlot
		}
	}

	now := r.now()
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	slot.CreatedAt = now
	slot.UpdatedAt = now
	r.slots[slot.ID] = slot
	return &slot, nil
}

func (r *MemoryRepository) DeleteSlot(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slots[id]; !ok {
		return ErrSlotNotFound
	}
	delete(r.slots, id)
	return nil
}

func (r *MemoryRepository) ReserveSlot(_ context.Context, interviewerID uuid.UUID, date Date, window Window, slotID *uuid.UUID) (*AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var candidates []AvailabilitySlot
	for _, s := range r.slots {
		if s.InterviewerID != interviewerID || s.Date != date || !s.IsOpen || !s.Window().Covers(window) {
			continue
		}
		if slotID != nil && s.ID != *slotID {
			continue
		}
		candidates = append(candidates, s)
	}
	if len(candidates) == 0 {
		return nil, ErrNoMatchingSlot
	}

	slices.SortFunc(candidates, compareReserveOrder)
	chosen := candidates[0]
	chosen.IsOpen = false
	chosen.UpdatedAt = r.now()
	r.slots[chosen.ID] = chosen
	return &chosen, nil
}

func (r *MemoryRepository) ReleaseSlot(_ context.Context, interviewerID uuid.UUID, date Date, window Window, slotID *uuid.UUID) (*AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var candidates []AvailabilitySlot
	for _, s := range r.slots {
		if s.InterviewerID != interviewerID || s.IsOpen {
			continue
		}
		if slotID != nil {
			if s.ID != *slotID {
				continue
			}
		} else if s.Date != date || s.Window() != window || r.backsScheduledLocked(s.ID) {
			continue
		}
		candidates = append(candidates, s)
	}
	if len(candidates) == 0 {
		return nil, ErrNoMatchingSlot
	}

	slices.SortFunc(candidates, compareReserveOrder)
	chosen := candidates[0]
	chosen.IsOpen = true
	chosen.UpdatedAt = r.now()
	r.slots[chosen.ID] = chosen
	return &chosen, nil
}

func (r *MemoryRepository) backsScheduledLocked(slotID uuid.UUID) bool {
	for _, in := range r.interviews {
		if in.Status == StatusScheduled && in.SlotID != nil && *in.SlotID == slotID {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) CreateInterview(_ context.Context, in Interview) (*Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	in.RequiredSkills = slices.Clone(in.RequiredSkills)
	in.CreatedAt = now
	in.UpdatedAt = now
	r.interviews[in.ID] = in

	out := in
	out.RequiredSkills = slices.Clone(in.RequiredSkills)
	return &out, nil
}

func (r *MemoryRepository) GetInterviewByID(_ context.Context, id uuid.UUID) (*Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	in, ok := r.interviews[id]
	if !ok {
		return nil, ErrInterviewNotFound
	}
	in.RequiredSkills = slices.Clone(in.RequiredSkills)
	return &in, nil
}

func (r *MemoryRepository) UpdateInterviewStatus(_ context.Context, id uuid.UUID, from, to InterviewStatus) (*Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !from.CanTransitionTo(to) {
		return nil, ErrInvalidTransition
	}

	in, ok := r.interviews[id]
	if !ok || in.Status != from {
		return nil, ErrInterviewNotFound
	}
	in.Status = to
	in.UpdatedAt = r.now()
	r.interviews[id] = in

	in.RequiredSkills = slices.Clone(in.RequiredSkills)
	return &in, nil
}

func (r *MemoryRepository) ListInterviewsByInterviewer(_ context.Context, interviewerID uuid.UUID) ([]Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []Interview{}
	for _, in := range r.interviews {
		if in.InterviewerID == interviewerID {
			in.RequiredSkills = slices.Clone(in.RequiredSkills)
			out = append(out, in)
		}
	}
	sortInterviews(out)
	return out, nil
}

func (r *MemoryRepository) ListInterviewDetails(_ context.Context) ([]InterviewDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]Interview, 0, len(r.interviews))
	for _, in := range r.interviews {
		all = append(all, in)
	}
	sortInterviews(all)

	out := make([]InterviewDetail, 0, len(all))
	for _, in := range all {
		d := InterviewDetail{
			Interview:       in,
			InterviewerName: r.interviewers[in.InterviewerID].Name,
			Skills:          make([]Skill, 0, len(in.RequiredSkills)),
		}
		d.RequiredSkills = slices.Clone(in.RequiredSkills)
		for _, req := range in.RequiredSkills {
			d.Skills = append(d.Skills, Skill{ID: req.SkillID, Name: r.skillNames[req.SkillID], IsPrimary: req.IsPrimary})
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *MemoryRepository) FindElapsedScheduled(_ context.Context, day Date, at TimeOfDay) ([]Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Interview
	for _, in := range r.interviews {
		if in.Status != StatusScheduled {
			continue
		}
		if in.ScheduledDate.Before(day) || (in.ScheduledDate == day && in.EndTime <= at) {
			out = append(out, in)
		}
	}
	sortInterviews(out)
	return out, nil
}

func (r *MemoryRepository) ListInterviewers(_ context.Context) ([]InterviewerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]InterviewerProfile, 0, len(r.interviewers))
	for _, p := range r.interviewers {
		p.Skills = slices.Clone(p.Skills)
		p.PositionIDs = slices.Clone(p.PositionIDs)
		out = append(out, p)
	}
	return out, nil
}

func (r *MemoryRepository) GetInterviewer(_ context.Context, id uuid.UUID) (*InterviewerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.interviewers[id]
	if !ok {
		return nil, ErrInterviewerNotFound
	}
	p.Skills = slices.Clone(p.Skills)
	p.PositionIDs = slices.Clone(p.PositionIDs)
	return &p, nil
}

func (r *MemoryRepository) InsertEvent(_ context.Context, ev EventLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev.ID = int64(len(r.events) + 1)
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = r.now()
	}
	r.events = append(r.events, ev)
	return nil
}

func sortSlots(slots []AvailabilitySlot) {
	slices.SortFunc(slots, func(a, b AvailabilitySlot) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if c := cmpInt(int(a.StartTime), int(b.StartTime)); c != 0 {
			return c
		}
		if c := cmpInt(int(a.EndTime), int(b.EndTime)); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
}

func sortInterviews(in []Interview) {
	slices.SortFunc(in, func(a, b Interview) int {
		if c := a.ScheduledDate.Compare(b.ScheduledDate); c != 0 {
			return c
		}
		if c := cmpInt(int(a.StartTime), int(b.StartTime)); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
}

// compareReserveOrder picks the smallest covering window, then the oldest
// slot, then the lowest id.
func compareReserveOrder(a, b AvailabilitySlot) int {
	if c := cmpInt(int(a.EndTime-a.StartTime), int(b.EndTime-b.StartTime)); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}
