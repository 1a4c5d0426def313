package scheduling

import (
	"time"

	"github.com/google/uuid"
)

type InterviewStatus string

const (
	StatusScheduled InterviewStatus = "Scheduled"
	StatusCompleted InterviewStatus = "Completed"
	StatusCancelled InterviewStatus = "Cancelled"
)

// CanTransitionTo reports whether the status machine allows s -> to.
// Only Scheduled moves, and only to a terminal status.
func (s InterviewStatus) CanTransitionTo(to InterviewStatus) bool {
	return s == StatusScheduled && (to == StatusCompleted || to == StatusCancelled)
}

func (s InterviewStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type AvailabilitySlot struct {
	ID            uuid.UUID `json:"id"`
	InterviewerID uuid.UUID `json:"interviewerId"`
	Date          Date      `json:"date"`
	StartTime     TimeOfDay `json:"startTime"`
	EndTime       TimeOfDay `json:"endTime"`
	IsOpen        bool      `json:"isOpen"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (s AvailabilitySlot) Window() Window {
	return Window{Start: s.StartTime, End: s.EndTime}
}

type SkillRequirement struct {
	SkillID   uuid.UUID `json:"skillId"`
	IsPrimary bool      `json:"isPrimary"`
}

// NewSkillRequirements builds the ordered requirement set: primaries first,
// then secondaries, duplicates dropped. A skill listed in both tiers stays
// primary.
func NewSkillRequirements(primary, secondary []uuid.UUID) []SkillRequirement {
	seen := make(map[uuid.UUID]struct{}, len(primary)+len(secondary))
	out := make([]SkillRequirement, 0, len(primary)+len(secondary))

	add := func(ids []uuid.UUID, isPrimary bool) {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, SkillRequirement{SkillID: id, IsPrimary: isPrimary})
		}
	}
	add(primary, true)
	add(secondary, false)

	return out
}

type Interview struct {
	ID              uuid.UUID          `json:"id"`
	InterviewerID   uuid.UUID          `json:"interviewerId"`
	CandidateID     uuid.UUID          `json:"candidateId"`
	InterviewTypeID uuid.UUID          `json:"interviewTypeId"`
	SlotID          *uuid.UUID         `json:"slotId,omitempty"`
	ScheduledDate   Date               `json:"scheduledDate"`
	StartTime       TimeOfDay          `json:"startTime"`
	EndTime         TimeOfDay          `json:"endTime"`
	Status          InterviewStatus    `json:"status"`
	RequiredSkills  []SkillRequirement `json:"requiredSkills"`
	CreatedBy       uuid.UUID          `json:"createdBy"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

func (i Interview) Window() Window {
	return Window{Start: i.StartTime, End: i.EndTime}
}

type Skill struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsPrimary bool      `json:"isPrimary"`
}

// InterviewerProfile is owned by the onboarding side and only read here.
type InterviewerProfile struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	Email           string      `json:"email,omitempty"`
	Level           string      `json:"level,omitempty"`
	ExperienceYears int         `json:"experienceYears"`
	Skills          []Skill     `json:"skills"`
	PositionIDs     []uuid.UUID `json:"positionIds,omitempty"`
}

func (p InterviewerProfile) hasSkill(id uuid.UUID, primary bool) bool {
	for _, s := range p.Skills {
		if s.ID == id && s.IsPrimary == primary {
			return true
		}
	}
	return false
}

func (p InterviewerProfile) eligibleFor(positionID uuid.UUID) bool {
	if len(p.PositionIDs) == 0 {
		return true
	}
	for _, id := range p.PositionIDs {
		if id == positionID {
			return true
		}
	}
	return false
}

type CandidateMatch struct {
	Interviewer     InterviewerProfile `json:"interviewer"`
	OpenSlots       []AvailabilitySlot `json:"openSlots"`
	MatchPercentage float64            `json:"matchPercentage"`
}

// InterviewDetail is the denormalized row served to dashboards.
type InterviewDetail struct {
	Interview
	InterviewerName string  `json:"interviewerName"`
	Skills          []Skill `json:"skills"`
}

type EventLog struct {
	ID          int64
	EventType   string
	InterviewID *uuid.UUID
	SlotID      *uuid.UUID
	Payload     []byte
	CreatedAt   time.Time
}
