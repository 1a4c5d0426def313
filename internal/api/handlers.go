package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hackgods/interview-scheduling/internal/scheduling"
)

type handlerDeps struct {
	slots   *scheduling.SlotStore
	matcher *scheduling.Matcher
	booking *scheduling.Coordinator
	log     *zap.Logger
}

func searchHandler(d handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SearchRequest
		if err := decodeJSON(r, &req); err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}

		q := scheduling.SearchQuery{
			PrimarySkillIDs:   req.PrimarySkillIDs,
			SecondarySkillIDs: req.SecondarySkillIDs,
			PositionID:        req.PositionID,
			CandidateID:       req.IntervieweeID,
			InterviewTypeID:   req.InterviewTypeID,
		}
		if req.InterviewDate != nil && *req.InterviewDate != "" {
			date, err := scheduling.ParseDate(*req.InterviewDate)
			if err != nil {
				handleDomainError(w, r, d.log, err)
				return
			}
			q.Date = &date
		}

		matches, err := d.matcher.Search(r.Context(), q)
		if err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}

		writeJSON(w, http.StatusOK, matches)
	}
}

func createInterviewHandler(d handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateInterviewRequest
		if err := decodeJSON(r, &req); err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}

		date, err := scheduling.ParseDate(req.ScheduledDate)
		if err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}
		start, end, err := parseWindow(req.StartTime, req.EndTime)
		if err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}

		in, err := d.booking.CreateBooking(r.Context(), scheduling.BookingRequest{
			InterviewerID:     req.InterviewerProfileID,
			CandidateID:       req.IntervieweeID,
			InterviewTypeID:   req.InterviewTypeID,
			SlotID:            req.SlotID,
			Date:              date,
			StartTime:         start,
			EndTime:           end,
			PrimarySkillIDs:   req.PrimarySkillIDs,
			SecondarySkillIDs: req.SecondarySkillIDs,
			RequestedBy:       principal(r).Subject,
		})
		if err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}

		writeJSON(w, http.StatusCreated, in)
	}
}

func cancelInterviewHandler(d handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "interviewId")
		if err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}

		if err := d.booking.CancelBooking(r.Context(), id, principal(r).Subject); err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func interviewerScheduleHandler(d handlerDeps) http.HandlerFunc {
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

		list, err := d.booking.InterviewerSchedule(r.Context(), interviewerID)
		if err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}

		writeJSON(w, http.StatusOK, list)
	}
}

func allInterviewsHandler(d handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.booking.AllInterviews(r.Context())
		if err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}

		writeJSON(w, http.StatusOK, list)
	}
}

func getInterviewHandler(d handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "interviewId")
		if err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}

		in, err := d.booking.GetInterview(r.Context(), id)
		if err != nil {
			handleDomainError(w, r, d.log, err)
			return
		}
		if !canView(principal(r), in.InterviewerID) {
			handleDomainError(w, r, d.log, scheduling.ErrForbidden)
			return
		}

		writeJSON(w, http.StatusOK, in)
	}
}
