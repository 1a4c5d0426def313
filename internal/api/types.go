package api

import (
	"github.com/google/uuid"
)

type CreateSlotRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type SearchRequest struct {
	PrimarySkillIDs   []uuid.UUID `json:"primarySkillIds"`
	SecondarySkillIDs []uuid.UUID `json:"secondarySkillIds"`
	InterviewTypeID   *uuid.UUID  `json:"interviewTypeId"`
	InterviewDate     *string     `json:"interviewDate"`
	PositionID        *uuid.UUID  `json:"positionId"`
	IntervieweeID     *uuid.UUID  `json:"intervieweeId"`
}

type CreateInterviewRequest struct {
	InterviewerProfileID uuid.UUID   `json:"interviewerProfileId"`
	IntervieweeID        uuid.UUID   `json:"intervieweeId"`
	InterviewTypeID      uuid.UUID   `json:"interviewTypeId"`
	SlotID               *uuid.UUID  `json:"slotId"`
	ScheduledDate        string      `json:"scheduledDate"`
	StartTime            string      `json:"startTime"`
	EndTime              string      `json:"endTime"`
	PrimarySkillIDs      []uuid.UUID `json:"primarySkillIds"`
	SecondarySkillIDs    []uuid.UUID `json:"secondarySkillIds"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
