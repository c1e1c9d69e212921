package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const sweepTimeout = 30 * time.Second

// Sweeper по расписанию повторяет подбор экипажей для ожидающих инцидентов
type Sweeper struct {
	flow   FlowService
	cron   *cron.Cron
	logger *logrus.Logger
}

// NewSweeper регистрирует задачу по cron-выражению (например "@every 1m")
func NewSweeper(flow FlowService, schedule string, logger *logrus.Logger) (*Sweeper, error) {
	s := &Sweeper{
		flow:   flow,
		cron:   cron.New(cron.WithLocation(time.UTC)),
		logger: logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Sweeper) Start() {
	s.logger.Info("Starting pending incident sweeper")
	s.cron.Start()
}

// Stop останавливает планировщик и ждет завершения текущего прохода
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Pending incident sweeper stopped")
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	dispatched, err := s.flow.RetryPending(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Pending incident sweep failed")
		return
	}
	if dispatched > 0 {
		s.logger.WithField("dispatched", dispatched).Info("Pending incidents dispatched")
	}
}
