package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/studioavelar/booking-backend/internal/adapters/database"
	"github.com/studioavelar/booking-backend/internal/domain/entities"
	"github.com/studioavelar/booking-backend/internal/infrastructure/clients/postgres"
	"github.com/studioavelar/booking-backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()
	db := goqu.New("postgres", pgClient.DB())

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				payments,
				appointments,
				packages,
				services,
				schedule_rules,
				blocked_dates
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	// 1. Seed services
	priceReturn := 180.0
	now := time.Now()
	services := []goqu.Record{
		{
			"id": uuid.New().String(), "name": "Initial Consultation",
			"description": "First session including full assessment",
			"duration":    80, "price": 320.0, "price_return": nil,
			"active": true, "created_at": now, "updated_at": now,
		},
		{
			"id": uuid.New().String(), "name": "Therapy Session",
			"description": "Standard 50-minute session",
			"duration":    50, "price": 250.0, "price_return": priceReturn,
			"active": true, "created_at": now, "updated_at": now,
		},
		{
			"id": uuid.New().String(), "name": "Extended Session",
			"description": "90-minute deep-dive session",
			"duration":    90, "price": 420.0, "price_return": nil,
			"active": true, "created_at": now, "updated_at": now,
		},
	}
	for _, s := range services {
		query, args, err := db.Insert("services").Rows(s).OnConflict(goqu.DoNothing()).ToSQL()
		if err != nil {
			log.Fatalf("Failed to build service insert: %v", err)
		}
		if _, err := pgClient.DB().ExecContext(ctx, query, args...); err != nil {
			log.Printf("Failed to seed service %v: %v", s["name"], err)
		}
	}
	log.Printf("Seeded %d services", len(services))

	// 2. Seed weekday schedule rules (Mon-Fri, lunch break 12:00-14:00)
	scheduleRepo := database.NewScheduleAdapter(pgClient)
	breakStart, breakEnd := "12:00", "14:00"
	for weekday := time.Monday; weekday <= time.Friday; weekday++ {
		rule := &entities.ScheduleRule{
			ID:           uuid.New().String(),
			Weekday:      weekday,
			StartTime:    "08:00",
			EndTime:      "18:00",
			SlotDuration: 60,
			BreakStart:   &breakStart,
			BreakEnd:     &breakEnd,
			Active:       true,
		}
		if err := scheduleRepo.UpsertRule(ctx, rule); err != nil {
			log.Printf("Failed to seed rule for %s: %v", weekday, err)
		}
	}
	log.Println("Seeded weekday schedule rules")

	log.Println("Seeding complete")
}
