package scheduling

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventInterviewBooked    = "INTERVIEW_BOOKED"
	EventInterviewCancelled = "INTERVIEW_CANCELLED"
	EventInterviewCompleted = "INTERVIEW_COMPLETED"
	EventSlotReleaseMissing = "SLOT_RELEASE_MISSING"
	EventSlotOrphaned       = "SLOT_ORPHANED"
)

// auditLog writes best-effort rows to the event log. A failed insert is
// logged and never fails the calling operation.
type auditLog struct {
	rec EventRecorder
	now Clock
	log *zap.Logger
}

func (a auditLog) record(ctx context.Context, eventType string, interviewID, slotID *uuid.UUID, payload map[string]any) {
	if a.rec == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		a.log.Warn("marshal event payload", zap.String("event", eventType), zap.Error(err))
		data = nil
	}

	ev := EventLog{
		EventType:   eventType,
		InterviewID: interviewID,
		SlotID:      slotID,
		Payload:     data,
		CreatedAt:   a.now(),
	}

	if err := a.rec.InsertEvent(context.WithoutCancel(ctx), ev); err != nil {
		a.log.Warn("insert event log",
			zap.String("event", eventType),
			zap.Stringers("refs", nonNil(interviewID, slotID)),
			zap.Error(err),
		)
	}
}

func nonNil(ids ...*uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != nil {
			out = append(out, *id)
		}
	}
	return out
}
