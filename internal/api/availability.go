package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hackgods/interview-scheduling/internal/scheduling"
)

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a valid UUID", scheduling.ErrInvalidInput, name)
	}
	return id, nil
}

func listSlotsHandler(d handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		interviewerID, err := uuidParam(r, "id")
		if err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}
		if !canView(principal(r), interviewerID) {
			handleDomainError(w, r, d.log, scheduling.ErrForbidden)
			return
		}

		var date *scheduling.Date
		if raw := r.URL.Query().Get("date"); raw != "" {
			parsed, err := scheduling.ParseDate(raw)
			if err != nil {
				handleDomainError(w, r, d.log, err)
				return
			}
			date = &parsed
		}

		slots, err := d.slots.ListOpenSlots(r.Context(), interviewerID, date)
		if err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}

		writeJSON(w, http.StatusOK, slots)
	}
}

func createSlotHandler(d handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		interviewerID, err := uuidParam(r, "id")
		if err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}
		if !canManage(principal(r), interviewerID) {
			handleDomainError(w, r, d.log, scheduling.ErrForbidden)
			return
		}

		var req CreateSlotRequest
		if err := decodeJSON(r, &req); err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}

		date, err := scheduling.ParseDate(req.Date)
		if err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}
		start, end, err := parseWindow(req.StartTime, req.EndTime)
		if err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}

		slot, err := d.slots.CreateSlot(r.Context(), interviewerID, date, start, end)
		if err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}

		writeJSON(w, http.StatusCreated, slot)
	}
}

func deleteSlotHandler(d handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slotID, err := uuidParam(r, "slotId")
		if err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}

		slot, err := d.slots.GetSlot(r.Context(), slotID)
		if err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}
		if !canManage(principal(r), slot.InterviewerID) {
			handleDomainError(w, r, d.log, scheduling.ErrForbidden)
			return
		}

		if err := d.slots.DeleteSlot(r.Context(), slotID); err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func parseWindow(startRaw, endRaw string) (scheduling.TimeOfDay, scheduling.TimeOfDay, error) {
	start, err := scheduling.ParseTimeOfDay(startRaw)
	if err != nil {
		return 0, 0, err
	}
	end, err := scheduling.ParseTimeOfDay(endRaw)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
