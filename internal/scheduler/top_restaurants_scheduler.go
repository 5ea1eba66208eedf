package scheduler

import (
	"context"

	"github.com/mlhuang/tastemap-backend/internal/app/service"
	"github.com/mlhuang/tastemap-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// TopRestaurantsScheduler refreshes the cached most-favorited ranking so the
// listing never serves a stale board for long.
type TopRestaurantsScheduler struct {
	cron              *cron.Cron
	restaurantService service.RestaurantService
}

func NewTopRestaurantsScheduler(restaurantService service.RestaurantService) *TopRestaurantsScheduler {
	return &TopRestaurantsScheduler{
		cron:              cron.New(),
		restaurantService: restaurantService,
	}
}

func (s *TopRestaurantsScheduler) Start() error {
	_, err := s.cron.AddFunc("*/10 * * * *", func() {
		logger.Info("Refreshing top restaurants ranking", nil)

		if err := s.restaurantService.RefreshTopRestaurants(context.Background()); err != nil {
			logger.Error("Failed to refresh top restaurants ranking", err, nil)
			return
		}

		logger.Info("Top restaurants ranking refreshed", nil)
	})

	if err != nil {
		logger.Error("Failed to register top restaurants cron job", err, nil)
		return err
	}

	s.cron.Start()
	logger.Info("Top restaurants scheduler started (every 10 minutes)", nil)

	return nil
}

func (s *TopRestaurantsScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Top restaurants scheduler stopped", nil)
}
