package services

import (
	"context"
	"log"
	"time"

	"vipclub-backend/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs scheduled maintenance jobs. Subscription expiry is
// handled lazily on read; the nightly sweep keeps listing queries
// honest for users nobody reads.
type CronService struct {
	cron     *cron.Cron
	userRepo repositories.UserRepository
}

// NewCronService creates a new cron service
func NewCronService(userRepo repositories.UserRepository) *CronService {
	return &CronService{
		cron:     cron.New(),
		userRepo: userRepo,
	}
}

// Start schedules and launches all jobs
func (s *CronService) Start() {
	// Expired-subscription sweep at midnight
	s.cron.AddFunc("0 0 * * *", s.sweepExpiredVip)

	s.cron.Start()
	log.Println("🚀 CronService started")
}

// Stop stops the scheduler
func (s *CronService) Stop() {
	s.cron.Stop()
	log.Println("🛑 CronService stopped")
}

func (s *CronService) sweepExpiredVip() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	affected, err := s.userRepo.DeactivateExpiredVip(ctx, time.Now())
	if err != nil {
		log.Printf("❌ VIP expiry sweep failed: %v", err)
		return
	}
	if affected > 0 {
		log.Printf("✅ VIP expiry sweep: %d subscription(s) deactivated", affected)
	}
}
