package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mauv0809/training-match/internal/club"
	"github.com/mauv0809/training-match/internal/database"
	"github.com/mauv0809/training-match/internal/match"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{"DB_NAME": "training.db"}
	for _, key := range []string{"DB_NAME", "TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"} {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	if err != nil {
		log.Fatalf("Failed to open database: %s", err)
	}
	defer teardown()

	ctx := context.Background()
	store := club.New(db)

	const numMembers = 24
	const maxMatches = 8
	weaponClasses := []match.WeaponClass{match.WeaponClassA, match.WeaponClassB, match.WeaponClassC}
	startTime := time.Now()

	if err := store.AddMember(ctx, "admin", "Seeder Admin", true); err != nil {
		log.Fatalf("Failed to insert admin: %s", err)
	}
	for i := 0; i < numMembers; i++ {
		memberID := uuid.NewString()
		if err := store.AddMember(ctx, memberID, fmt.Sprintf("Seeder Shooter %02d", i+1), false); err != nil {
			log.Fatalf("Failed to insert member: %s", err)
		}

		// Stronger classes shoot higher series on average.
		class := club.ShooterClass(rand.Intn(3) + 1)
		base := 38 + 3*int(class)
		for _, wc := range weaponClasses {
			if err := store.SetShooterClass(ctx, memberID, wc, class); err != nil {
				log.Fatalf("Failed to set shooter class: %s", err)
			}
			for m := rand.Intn(maxMatches + 1); m > 0; m-- {
				series := 4 + rand.Intn(7)
				total := 0
				for s := 0; s < series; s++ {
					total += base + rand.Intn(9) - 4
				}
				if err := store.UpdateAfterMatch(ctx, memberID, wc, series, total); err != nil {
					log.Fatalf("Failed to seed statistics: %s", err)
				}
			}
		}
		log.Info("Seeded member", "memberID", memberID, "class", class)
	}

	log.Info("Successfully seeded members and statistics.", "members", numMembers, "duration", time.Since(startTime))
}
