package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hackgods/interview-scheduling/internal/db"
	"github.com/hackgods/interview-scheduling/internal/logging"
)

var skillNames = []string{
	"Go", "Java", "Python", "TypeScript", "React", "Kubernetes",
	"PostgreSQL", "System Design", "AWS", "Terraform", "Kafka", "Rust",
}

// Every slot is one hour, starting on the hour.
var slotStartHours = []int{9, 10, 11, 13, 14, 15, 16}

type seedConfig struct {
	Interviewers int
	Positions    int
	Days         int
}

func main() {
	logger, err := logging.New(os.Getenv("APP_ENV"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		logger.Fatal("POSTGRES_DSN is required")
	}

	cfg := seedConfig{
		Interviewers: getInt("SEED_INTERVIEWERS", 50),
		Positions:    getInt("SEED_POSITIONS", 8),
		Days:         getInt("SEED_DAYS", 14),
	}
	logger.Info("seed starting",
		zap.Int("interviewers", cfg.Interviewers),
		zap.Int("positions", cfg.Positions),
		zap.Int("days", cfg.Days),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.ConnectPostgres(ctx, dsn, 4)
	cancel()
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	_ = gofakeit.Seed(time.Now().UnixNano())

	ctx = context.Background()

	skills, err := seedSkills(ctx, pool)
	if err != nil {
		logger.Fatal("seed skills", zap.Error(err))
	}
	logger.Info("skills seeded", zap.Int("count", len(skills)))

	positions, err := seedPositions(ctx, pool, cfg.Positions)
	if err != nil {
		logger.Fatal("seed positions", zap.Error(err))
	}
	logger.Info("positions seeded", zap.Int("count", len(positions)))

	interviewers, err := seedInterviewers(ctx, pool, cfg.Interviewers, skills, positions)
	if err != nil {
		logger.Fatal("seed interviewers", zap.Error(err))
	}
	logger.Info("interviewers seeded", zap.Int("count", len(interviewers)))

	slots, err := seedSlots(ctx, pool, interviewers, cfg.Days)
	if err != nil {
		logger.Fatal("seed slots", zap.Error(err))
	}
	logger.Info("seed complete", zap.Int("slots", slots))
}

func seedSkills(ctx context.Context, pool *pgxpool.Pool) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(skillNames))
	for _, name := range skillNames {
		var id uuid.UUID
		// Skill names are unique, so rerunning reuses the existing rows.
		err := pool.QueryRow(ctx, `
			INSERT INTO skills (id, name)
			VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, uuid.New(), name).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("insert skill %s: %w", name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func seedPositions(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	batch := &pgx.Batch{}
	for i := 0; i < count; i++ {
		id := uuid.New()
		batch.Queue(`INSERT INTO positions (id, title) VALUES ($1, $2)`,
			id, gofakeit.JobLevel()+" "+gofakeit.JobTitle())
		ids = append(ids, id)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, err
	}

	return ids, tx.Commit(ctx)
}

func seedInterviewers(ctx context.Context, pool *pgxpool.Pool, count int, skills, positions []uuid.UUID) ([]uuid.UUID, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	batch := &pgx.Batch{}
	for i := 0; i < count; i++ {
		id := uuid.New()
		batch.Queue(`
			INSERT INTO interviewer_profiles (id, name, email, level, experience_years)
			VALUES ($1, $2, $3, $4, $5)
		`, id, gofakeit.Name(), gofakeit.Email(), gofakeit.JobLevel(), gofakeit.Number(1, 20))

		for j, skillID := range pickDistinct(skills, gofakeit.Number(2, 5)) {
			batch.Queue(`
				INSERT INTO interviewer_skills (interviewer_id, skill_id, is_primary)
				VALUES ($1, $2, $3)
			`, id, skillID, j < 2)
		}
		if len(positions) > 0 {
			for _, positionID := range pickDistinct(positions, gofakeit.Number(1, 2)) {
				batch.Queue(`
					INSERT INTO interviewer_positions (interviewer_id, position_id)
					VALUES ($1, $2)
				`, id, positionID)
			}
		}
		ids = append(ids, id)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, err
	}

	return ids, tx.Commit(ctx)
}

func seedSlots(ctx context.Context, pool *pgxpool.Pool, interviewers []uuid.UUID, days int) (int, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	total := 0

	for d := 1; d <= days; d++ {
		day := today.AddDate(0, 0, d)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return total, err
		}

		batch := &pgx.Batch{}
		n := 0
		for _, interviewerID := range interviewers {
			for _, h := range slotStartHours {
				if !gofakeit.Bool() {
					continue
				}
				batch.Queue(`
					INSERT INTO availability_slots (id, interviewer_id, slot_date, start_time, end_time)
					VALUES ($1, $2, $3, make_time($4, 0, 0), make_time($5, 0, 0))
					ON CONFLICT ON CONSTRAINT availability_slots_window_key DO NOTHING
				`, uuid.New(), interviewerID, day, h, h+1)
				n++
			}
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			_ = tx.Rollback(ctx)
			return total, err
		}
		if err := tx.Commit(ctx); err != nil {
			return total, err
		}
		total += n
	}

	return total, nil
}

// pickDistinct returns up to n distinct elements of from in random order.
func pickDistinct(from []uuid.UUID, n int) []uuid.UUID {
	if n > len(from) {
		n = len(from)
	}
	pool := make([]uuid.UUID, len(from))
	copy(pool, from)
	for i := 0; i < n; i++ {
		j := gofakeit.Number(i, len(pool)-1)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
