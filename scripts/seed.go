package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/ridemaps/backend/internal/adapters/database"
	"github.com/zatekoja/ridemaps/backend/internal/adapters/geo"
	"github.com/zatekoja/ridemaps/backend/internal/domain/entities"
	"github.com/zatekoja/ridemaps/backend/internal/domain/repositories"
	"github.com/zatekoja/ridemaps/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/ridemaps/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/ridemaps/backend/internal/infrastructure/observability"
	"github.com/zatekoja/ridemaps/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-seed", cfg.Server.Env)

	ctx := context.Background()
	reset := os.Getenv("RESET_DB") == "true"

	var repo repositories.CaptainRepository
	switch cfg.Captains.Backend {
	case config.CaptainStoreRedis:
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		if reset {
			log.Info().Msg("RESET_DB=true detected, clearing captain keys before seeding")
			if err := redisClient.Client().Del(ctx, "captains:locations", "captains:records").Err(); err != nil {
				log.Fatal().Err(err).Msg("Failed to clear captain keys")
			}
		}
		repo = geo.NewRedisCaptainIndex(redisClient)
	default:
		pgClient, err := postgres.NewClient(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to DB")
		}
		defer pgClient.Close()
		if reset {
			log.Info().Msg("RESET_DB=true detected, truncating captains before seeding")
			if _, err := pgClient.DB().ExecContext(ctx, "TRUNCATE TABLE captains"); err != nil {
				log.Fatal().Err(err).Msg("Failed to truncate captains")
			}
		}
		repo = database.NewCaptainAdapter(pgClient, nil)
	}

	captains := []*entities.Captain{
		{
			FirstName: "Adaeze",
			LastName:  "Okafor",
			Email:     "adaeze.okafor@example.com",
			Status:    entities.CaptainStatusActive,
			Vehicle:   entities.Vehicle{Color: "silver", Plate: "LND-482-KJ", Capacity: 4, Type: "car"},
			Location:  &entities.Location{Latitude: 6.4281, Longitude: 3.4219},
		},
		{
			FirstName: "Tunde",
			LastName:  "Bakare",
			Email:     "tunde.bakare@example.com",
			Status:    entities.CaptainStatusActive,
			Vehicle:   entities.Vehicle{Color: "black", Plate: "KJA-119-AB", Capacity: 1, Type: "motorcycle"},
			Location:  &entities.Location{Latitude: 6.6018, Longitude: 3.3515},
		},
		{
			FirstName: "Ngozi",
			LastName:  "Eze",
			Email:     "ngozi.eze@example.com",
			Status:    entities.CaptainStatusActive,
			Vehicle:   entities.Vehicle{Color: "yellow", Plate: "EPE-730-LG", Capacity: 3, Type: "auto"},
			Location:  &entities.Location{Latitude: 6.4698, Longitude: 3.5852},
		},
		{
			FirstName: "Musa",
			LastName:  "Ibrahim",
			Email:     "musa.ibrahim@example.com",
			Status:    entities.CaptainStatusInactive,
			Vehicle:   entities.Vehicle{Color: "white", Plate: "ABJ-205-FC", Capacity: 4, Type: "car"},
			Location:  &entities.Location{Latitude: 9.0765, Longitude: 7.3986},
		},
		{
			FirstName: "Kemi",
			LastName:  "Adeyemi",
			Email:     "kemi.adeyemi@example.com",
			Vehicle:   entities.Vehicle{Color: "blue", Plate: "IKD-551-XY", Capacity: 4, Type: "car"},
		},
	}

	for _, captain := range captains {
		if err := repo.Save(ctx, captain); err != nil {
			log.Fatal().Err(err).Str("email", captain.Email).Msg("Failed to seed captain")
		}
		log.Info().Str("id", captain.ID).Str("email", captain.Email).Msg("Seeded captain")
	}

	log.Info().Int("count", len(captains)).Msg("Seeding completed")
}
