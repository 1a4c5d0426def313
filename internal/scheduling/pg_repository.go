package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const slotColumns = `id, interviewer_id, slot_date, start_time, end_time, is_open, created_at, updated_at`

const interviewColumns = `id, interviewer_id, candidate_id, interview_type_id, slot_id, scheduled_date,
	start_time, end_time, status, created_by, created_at, updated_at`

// Helpers

func pgDate(d Date) pgtype.Date {
	return pgtype.Date{Time: d.Time(), Valid: true}
}

func pgNullDate(d *Date) pgtype.Date {
	if d == nil {
		return pgtype.Date{}
	}
	return pgDate(*d)
}

func pgTime(t TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t) * 1_000_000, Valid: true}
}

func fromPgTime(t pgtype.Time) TimeOfDay {
	return TimeOfDay(t.Microseconds / 1_000_000)
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// classify turns transient driver failures into ErrRetryable.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", // serialization_failure
			"40P01", // deadlock_detected
			"55P03", // lock_not_available
			"57014", // query_canceled
			"08000", "08003", "08006": // connection failures
			return fmt.Errorf("%w: %w", ErrRetryable, err)
		}
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %w", ErrRetryable, err)
	}
	return err
}

func scanSlot(row pgx.Row) (*AvailabilitySlot, error) {
	var s AvailabilitySlot
	var date time.Time
	var start, end pgtype.Time

	err := row.Scan(
		&s.ID,
		&s.InterviewerID,
		&date,
		&start,
		&end,
		&s.IsOpen,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Date = DateOf(date)
	s.StartTime = fromPgTime(start)
	s.EndTime = fromPgTime(end)
	return &s, nil
}

func collectSlots(rows pgx.Rows) ([]AvailabilitySlot, error) {
	defer rows.Close()

	out := []AvailabilitySlot{}
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func scanInterview(row pgx.Row) (*Interview, error) {
	var in Interview
	var date time.Time
	var start, end pgtype.Time

	err := row.Scan(
		&in.ID,
		&in.InterviewerID,
		&in.CandidateID,
		&in.InterviewTypeID,
		&in.SlotID,
		&date,
		&start,
		&end,
		&in.Status,
		&in.CreatedBy,
		&in.CreatedAt,
		&in.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInterviewNotFound
		}
		return nil, classify(err)
	}

	in.ScheduledDate = DateOf(date)
	in.StartTime = fromPgTime(start)
	in.EndTime = fromPgTime(end)
	in.RequiredSkills = []SkillRequirement{}
	return &in, nil
}

func (r *PgRepository) collectInterviews(ctx context.Context, rows pgx.Rows) ([]Interview, error) {
	out := []Interview{}
	for rows.Next() {
		in, err := scanInterview(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, *in)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	if err := r.attachSkills(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachSkills loads the ordered requirement sets for a batch of interviews.
func (r *PgRepository) attachSkills(ctx context.Context, interviews []Interview) error {
	if len(interviews) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(interviews))
	index := make(map[uuid.UUID]int, len(interviews))
	for i, in := range interviews {
		ids[i] = in.ID
		index[in.ID] = i
	}

	rows, err := r.pool.Query(ctx, `
		SELECT interview_id, skill_id, is_primary
		FROM interview_skills
		WHERE interview_id = ANY($1::uuid[])
		ORDER BY interview_id, ordinal
	`, uuidStrings(ids))
	if err != nil {
		return classify(err)
	}
	defer rows.Close()

	for rows.Next() {
		var interviewID uuid.UUID
		var req SkillRequirement
		if err := rows.Scan(&interviewID, &req.SkillID, &req.IsPrimary); err != nil {
			return classify(err)
		}
		i := index[interviewID]
		interviews[i].RequiredSkills = append(interviews[i].RequiredSkills, req)
	}
	return classify(rows.Err())
}

// Slots

func (r *PgRepository) GetSlotByID(ctx context.Context, id uuid.UUID) (*AvailabilitySlot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM availability_slots
		WHERE id = $1
	`, id)

	s, err := scanSlot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, classify(err)
	}
	return s, nil
}

func (r *PgRepository) ListOpenSlots(ctx context.Context, interviewerID uuid.UUID, date *Date) ([]AvailabilitySlot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+slotColumns+`
		FROM availability_slots
		WHERE interviewer_id = $1
		  AND is_open
		  AND ($2::date IS NULL OR slot_date = $2)
		ORDER BY slot_date, start_time, end_time, id
	`, interviewerID, pgNullDate(date))
	if err != nil {
		return nil, classify(err)
	}
	return collectSlots(rows)
}

func (r *PgRepository) ListOpenSlotsByInterviewer(ctx context.Context, interviewerIDs []uuid.UUID, date *Date) (map[uuid.UUID][]AvailabilitySlot, error) {
	out := make(map[uuid.UUID][]AvailabilitySlot, len(interviewerIDs))
	if len(interviewerIDs) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+slotColumns+`
		FROM availability_slots
		WHERE interviewer_id = ANY($1::uuid[])
		  AND is_open
		  AND ($2::date IS NULL OR slot_date = $2)
		ORDER BY slot_date, start_time, end_time, id
	`, uuidStrings(interviewerIDs), pgNullDate(date))
	if err != nil {
		return nil, classify(err)
	}

	slots, err := collectSlots(rows)
	if err != nil {
		return nil, err
	}
	for _, s := range slots {
		out[s.InterviewerID] = append(out[s.InterviewerID], s)
	}
	return out, nil
}

func (r *PgRepository) InsertSlot(ctx context.Context, slot AvailabilitySlot) (*AvailabilitySlot, error) {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO availability_slots (id, interviewer_id, slot_date, start_time, end_time, is_open, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING `+slotColumns+`
	`, slot.ID, slot.InterviewerID, pgDate(slot.Date), pgTime(slot.StartTime), pgTime(slot.EndTime), slot.IsOpen)

	s, err := scanSlot(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, ErrDuplicateSlot
			case "23514":
				return nil, ErrInvalidWindow
			case "23503":
				return nil, ErrInterviewerNotFound
			}
		}
		return nil, classify(err)
	}
	return s, nil
}

func (r *PgRepository) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM availability_slots WHERE id = $1`, id)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSlotNotFound
	}
	return nil
}

// ReserveSlot selects and closes the slot in one statement. SKIP LOCKED makes
// a concurrent reservation move on to the next candidate instead of waiting,
// and the outer is_open check rejects a row closed since the subquery ran.
func (r *PgRepository) ReserveSlot(ctx context.Context, interviewerID uuid.UUID, date Date, window Window, slotID *uuid.UUID) (*AvailabilitySlot, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE availability_slots
		SET is_open = false,
		    updated_at = now()
		WHERE id = (
			SELECT id
			FROM availability_slots
			WHERE interviewer_id = $1
			  AND slot_date = $2
			  AND is_open
			  AND start_time <= $3
			  AND end_time >= $4
			  AND ($5::uuid IS NULL OR id = $5)
			ORDER BY (end_time - start_time), created_at, id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		  AND is_open
		RETURNING `+slotColumns+`
	`, interviewerID, pgDate(date), pgTime(window.Start), pgTime(window.End), slotID)

	s, err := scanSlot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoMatchingSlot
		}
		return nil, classify(err)
	}
	return s, nil
}

// ReleaseSlot waits for a row lock instead of skipping it, so a concurrent
// statement touching the slot cannot make it look missing. lock_timeout
// bounds the wait.
func (r *PgRepository) ReleaseSlot(ctx context.Context, interviewerID uuid.UUID, date Date, window Window, slotID *uuid.UUID) (*AvailabilitySlot, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE availability_slots
		SET is_open = true,
		    updated_at = now()
		WHERE id = (
			SELECT s.id
			FROM availability_slots s
			WHERE s.interviewer_id = $1
			  AND NOT s.is_open
			  AND (
			    ($5::uuid IS NOT NULL AND s.id = $5)
			    OR ($5::uuid IS NULL AND s.slot_date = $2 AND s.start_time = $3 AND s.end_time = $4
			        AND NOT EXISTS (
			          SELECT 1 FROM interviews i
			          WHERE i.slot_id = s.id AND i.status = 'Scheduled'
			        ))
			  )
			ORDER BY (s.end_time - s.start_time), s.created_at, s.id
			LIMIT 1
			FOR UPDATE OF s
		)
		  AND NOT is_open
		RETURNING `+slotColumns+`
	`, interviewerID, pgDate(date), pgTime(window.Start), pgTime(window.End), slotID)

	s, err := scanSlot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoMatchingSlot
		}
		return nil, classify(err)
	}
	return s, nil
}

// Interviews

func (r *PgRepository) CreateInterview(ctx context.Context, in Interview) (*Interview, error) {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, classify(err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO interviews (id, interviewer_id, candidate_id, interview_type_id, slot_id, scheduled_date,
			start_time, end_time, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		RETURNING `+interviewColumns+`
	`, in.ID, in.InterviewerID, in.CandidateID, in.InterviewTypeID, in.SlotID, pgDate(in.ScheduledDate),
		pgTime(in.StartTime), pgTime(in.EndTime), in.Status, in.CreatedBy)

	created, err := scanInterview(row)
	if err != nil {
		return nil, err
	}

	batch := &pgx.Batch{}
	for i, req := range in.RequiredSkills {
		batch.Queue(`
			INSERT INTO interview_skills (interview_id, skill_id, is_primary, ordinal)
			VALUES ($1, $2, $3, $4)
		`, created.ID, req.SkillID, req.IsPrimary, i)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return nil, classify(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, classify(err)
	}

	created.RequiredSkills = append([]SkillRequirement{}, in.RequiredSkills...)
	return created, nil
}

func (r *PgRepository) GetInterviewByID(ctx context.Context, id uuid.UUID) (*Interview, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+interviewColumns+`
		FROM interviews
		WHERE id = $1
	`, id)

	in, err := scanInterview(row)
	if err != nil {
		return nil, err
	}

	list := []Interview{*in}
	if err := r.attachSkills(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *PgRepository) UpdateInterviewStatus(ctx context.Context, id uuid.UUID, from, to InterviewStatus) (*Interview, error) {
	if !from.CanTransitionTo(to) {
		return nil, ErrInvalidTransition
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE interviews
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+interviewColumns+`
	`, id, to, from)

	in, err := scanInterview(row)
	if err != nil {
		return nil, err
	}

	list := []Interview{*in}
	if err := r.attachSkills(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *PgRepository) ListInterviewsByInterviewer(ctx context.Context, interviewerID uuid.UUID) ([]Interview, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+interviewColumns+`
		FROM interviews
		WHERE interviewer_id = $1
		ORDER BY scheduled_date, start_time, id
	`, interviewerID)
	if err != nil {
		return nil, classify(err)
	}
	return r.collectInterviews(ctx, rows)
}

func (r *PgRepository) FindElapsedScheduled(ctx context.Context, day Date, at TimeOfDay) ([]Interview, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+interviewColumns+`
		FROM interviews
		WHERE status = 'Scheduled'
		  AND (scheduled_date < $1 OR (scheduled_date = $1 AND end_time <= $2))
		ORDER BY scheduled_date, start_time, id
	`, pgDate(day), pgTime(at))
	if err != nil {
		return nil, classify(err)
	}
	return r.collectInterviews(ctx, rows)
}

func (r *PgRepository) ListInterviewDetails(ctx context.Context) ([]InterviewDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+interviewColumns+`
		FROM interviews
		ORDER BY scheduled_date, start_time, id
	`)
	if err != nil {
		return nil, classify(err)
	}
	interviews, err := r.collectInterviews(ctx, rows)
	if err != nil {
		return nil, err
	}

	names := map[uuid.UUID]string{}
	skillNames := map[uuid.UUID]string{}

	nameRows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name FROM interviewer_profiles p
		WHERE p.id IN (SELECT DISTINCT interviewer_id FROM interviews)
	`)
	if err != nil {
		return nil, classify(err)
	}
	if err := scanNames(nameRows, names); err != nil {
		return nil, err
	}

	skillRows, err := r.pool.Query(ctx, `
		SELECT s.id, s.name FROM skills s
		WHERE s.id IN (SELECT DISTINCT skill_id FROM interview_skills)
	`)
	if err != nil {
		return nil, classify(err)
	}
	if err := scanNames(skillRows, skillNames); err != nil {
		return nil, err
	}

	out := make([]InterviewDetail, 0, len(interviews))
	for _, in := range interviews {
		d := InterviewDetail{
			Interview:       in,
			InterviewerName: names[in.InterviewerID],
			Skills:          make([]Skill, 0, len(in.RequiredSkills)),
		}
		for _, req := range in.RequiredSkills {
			d.Skills = append(d.Skills, Skill{ID: req.SkillID, Name: skillNames[req.SkillID], IsPrimary: req.IsPrimary})
		}
		out = append(out, d)
	}
	return out, nil
}

func scanNames(rows pgx.Rows, into map[uuid.UUID]string) error {
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return classify(err)
		}
		into[id] = name
	}
	return classify(rows.Err())
}

// Interviewer directory

func (r *PgRepository) ListInterviewers(ctx context.Context) ([]InterviewerProfile, error) {
	return r.loadInterviewers(ctx, nil)
}

func (r *PgRepository) GetInterviewer(ctx context.Context, id uuid.UUID) (*InterviewerProfile, error) {
	profiles, err := r.loadInterviewers(ctx, &id)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrInterviewerNotFound
	}
	return &profiles[0], nil
}

func (r *PgRepository) loadInterviewers(ctx context.Context, only *uuid.UUID) ([]InterviewerProfile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, COALESCE(email, ''), COALESCE(level, ''), experience_years
		FROM interviewer_profiles
		WHERE ($1::uuid IS NULL OR id = $1)
		ORDER BY name, id
	`, only)
	if err != nil {
		return nil, classify(err)
	}

	var profiles []InterviewerProfile
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var p InterviewerProfile
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Level, &p.ExperienceYears); err != nil {
			rows.Close()
			return nil, classify(err)
		}
		index[p.ID] = len(profiles)
		profiles = append(profiles, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	if len(profiles) == 0 {
		return []InterviewerProfile{}, nil
	}

	skillRows, err := r.pool.Query(ctx, `
		SELECT isk.interviewer_id, s.id, s.name, isk.is_primary
		FROM interviewer_skills isk
		JOIN skills s ON s.id = isk.skill_id
		WHERE ($1::uuid IS NULL OR isk.interviewer_id = $1)
		ORDER BY isk.interviewer_id, isk.is_primary DESC, s.name
	`, only)
	if err != nil {
		return nil, classify(err)
	}
	defer skillRows.Close()
	for skillRows.Next() {
		var interviewerID uuid.UUID
		var s Skill
		if err := skillRows.Scan(&interviewerID, &s.ID, &s.Name, &s.IsPrimary); err != nil {
			return nil, classify(err)
		}
		if i, ok := index[interviewerID]; ok {
			profiles[i].Skills = append(profiles[i].Skills, s)
		}
	}
	if err := skillRows.Err(); err != nil {
		return nil, classify(err)
	}

	posRows, err := r.pool.Query(ctx, `
		SELECT interviewer_id, position_id
		FROM interviewer_positions
		WHERE ($1::uuid IS NULL OR interviewer_id = $1)
	`, only)
	if err != nil {
		return nil, classify(err)
	}
	defer posRows.Close()
	for posRows.Next() {
		var interviewerID, positionID uuid.UUID
		if err := posRows.Scan(&interviewerID, &positionID); err != nil {
			return nil, classify(err)
		}
		if i, ok := index[interviewerID]; ok {
			profiles[i].PositionIDs = append(profiles[i].PositionIDs, positionID)
		}
	}
	if err := posRows.Err(); err != nil {
		return nil, classify(err)
	}

	return profiles, nil
}

// Event logging

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, interview_id, slot_id, payload, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
	`, ev.EventType, ev.InterviewID, ev.SlotID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", classify(err))
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
