package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// GetInterview retrieves a single interview with its required skills
func (c *Coordinator) GetInterview(ctx context.Context, id uuid.UUID) (*Interview, error) {
	in, err := c.interviews.GetInterviewByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrInterviewNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get interview: %w", err)
	}
	return in, nil
}

// InterviewerSchedule lists an interviewer's interviews ordered by date then start time
func (c *Coordinator) InterviewerSchedule(ctx context.Context, interviewerID uuid.UUID) ([]Interview, error) {
	list, err := c.interviews.ListInterviewsByInterviewer(ctx, interviewerID)
	if err != nil {
		return nil, fmt.Errorf("list interviewer schedule: %w", err)
	}
	if list == nil {
		list = []Interview{}
	}
	return list, nil
}

// AllInterviews is the dashboard listing
func (c *Coordinator) AllInterviews(ctx context.Context) ([]InterviewDetail, error) {
	list, err := c.interviews.ListInterviewDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	if list == nil {
		list = []InterviewDetail{}
	}
	return list, nil
}
