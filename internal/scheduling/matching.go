package scheduling

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SearchQuery struct {
	PrimarySkillIDs   []uuid.UUID
	SecondarySkillIDs []uuid.UUID
	Date              *Date
	PositionID        *uuid.UUID

	// Accepted for the booking form round trip, not used as filters.
	CandidateID     *uuid.UUID
	InterviewTypeID *uuid.UUID
}

// Matcher is the read-only interviewer search.
type Matcher struct {
	dir   InterviewerDirectory
	slots SlotRepository
	now   Clock
	loc   *time.Location
	log   *zap.Logger
}

func NewMatcher(dir InterviewerDirectory, slots SlotRepository, now Clock, loc *time.Location, log *zap.Logger) *Matcher {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Matcher{
		dir:   dir,
		slots: slots,
		now:   now,
		loc:   loc,
		log:   log.Named("matching"),
	}
}

// Search returns interviewers holding every requested primary skill as
// primary and every requested secondary skill as secondary. With a date,
// only interviewers with an open slot that day qualify; without one, open
// slots from today onward are listed. Results are ordered
// by match percentage, then name.
func (m *Matcher) Search(ctx context.Context, q SearchQuery) ([]CandidateMatch, error) {
	today := m.now.today(m.loc)
	if q.Date != nil && q.Date.Before(today) {
		return nil, ErrInvalidDate
	}

	profiles, err := m.dir.ListInterviewers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list interviewers: %w", err)
	}

	var eligible []InterviewerProfile
	for _, p := range profiles {
		if q.PositionID != nil && !p.eligibleFor(*q.PositionID) {
			continue
		}
		if !coversTier(p, q.PrimarySkillIDs, true) || !coversTier(p, q.SecondarySkillIDs, false) {
			continue
		}
		eligible = append(eligible, p)
	}

	ids := make([]uuid.UUID, len(eligible))
	for i, p := range eligible {
		ids[i] = p.ID
	}
	openSlots, err := m.slots.ListOpenSlotsByInterviewer(ctx, ids, q.Date)
	if err != nil {
		return nil, fmt.Errorf("list open slots: %w", err)
	}

	out := []CandidateMatch{}
	for _, p := range eligible {
		slots := openSlots[p.ID]
		if q.Date == nil {
			// Past days can no longer be booked.
			slots = slices.DeleteFunc(slots, func(s AvailabilitySlot) bool { return s.Date.Before(today) })
		}
		if q.Date != nil && len(slots) == 0 {
			continue
		}
		if slots == nil {
			slots = []AvailabilitySlot{}
		}
		if p.Skills == nil {
			p.Skills = []Skill{}
		}
		out = append(out, CandidateMatch{
			Interviewer:     p,
			OpenSlots:       slots,
			MatchPercentage: MatchPercentage(p, q.PrimarySkillIDs, q.SecondarySkillIDs),
		})
	}

	slices.SortStableFunc(out, func(a, b CandidateMatch) int {
		if a.MatchPercentage != b.MatchPercentage {
			if a.MatchPercentage > b.MatchPercentage {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Interviewer.Name, b.Interviewer.Name)
	})

	m.log.Debug("search finished",
		zap.Int("profiles", len(profiles)),
		zap.Int("matches", len(out)),
	)
	return out, nil
}

func coversTier(p InterviewerProfile, required []uuid.UUID, primary bool) bool {
	for _, id := range required {
		if !p.hasSkill(id, primary) {
			return false
		}
	}
	return true
}

// MatchPercentage is the share of requested skills the interviewer holds in
// either tier, rounded to two decimals. An empty request matches fully.
func MatchPercentage(p InterviewerProfile, primary, secondary []uuid.UUID) float64 {
	requested := NewSkillRequirements(primary, secondary)
	if len(requested) == 0 {
		return 100
	}

	held := make(map[uuid.UUID]struct{}, len(p.Skills))
	for _, s := range p.Skills {
		held[s.ID] = struct{}{}
	}

	matched := 0
	for _, r := range requested {
		if _, ok := held[r.SkillID]; ok {
			matched++
		}
	}

	pct := float64(matched) / float64(len(requested)) * 100
	return math.Round(pct*100) / 100
}
