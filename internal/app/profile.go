package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	eventqueue "github.com/okian/barberbook/internal/adapters/mq/queue"
	"github.com/okian/barberbook/internal/domain/aggregate"
	"github.com/okian/barberbook/internal/domain/model"
	"github.com/okian/barberbook/pkg/logger"
	"github.com/okian/barberbook/pkg/metrics"
)

// BarberProfile is the profile screen: the stored profile plus live numbers.
type BarberProfile struct {
	Barber  model.Barber             `json:"barber"`
	Summary aggregate.ProfileSummary `json:"summary"`
}

// Profile returns the signed-in barber's profile. It never writes; stored
// achievements are refreshed by PersistAchievements.
func (s *Service) Profile(ctx context.Context) (BarberProfile, error) {
	defer observe("profile", time.Now())
	who, err := s.caller(ctx)
	if err != nil {
		return BarberProfile{}, err
	}
	barber, err := s.findBarber(ctx, who)
	if err != nil {
		return BarberProfile{}, err
	}
	events, err := s.loadEvents(ctx, who)
	if err != nil {
		return BarberProfile{}, err
	}
	return BarberProfile{
		Barber:  barber,
		Summary: s.currentEngine().Profile(events, who, s.now()),
	}, nil
}

// PersistAchievements recomputes the barber's achievements from the best
// month on record and stores them on the profile.
func (s *Service) PersistAchievements(ctx context.Context, barber string) ([]string, error) {
	barber = model.NormalizeEmail(barber)
	profile, err := s.findBarber(ctx, barber)
	if err != nil {
		metrics.RecordAchievementError()
		return nil, err
	}
	events, err := s.loadEvents(ctx, barber)
	if err != nil {
		metrics.RecordAchievementError()
		return nil, err
	}
	buckets := s.currentEngine().MonthlyRevenueBuckets(events, barber)
	achievements := aggregate.AchievementsForPeakMonth(buckets)

	if err := s.store.Update(ctx, model.CollectionBarbers, profile.ID, map[string]any{
		model.FieldAchievements: achievements,
	}); err != nil {
		metrics.RecordAchievementError()
		return nil, fmt.Errorf("store achievements: %w", storeErr(err))
	}
	metrics.RecordAchievementsPersisted()
	return achievements, nil
}

// ScheduleAchievements queues a background PersistAchievements.
func (s *Service) ScheduleAchievements(ctx context.Context, barber string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}
	return s.jobs.TryEnqueue(ctx, eventqueue.Job{Barber: model.NormalizeEmail(barber), RequestedAt: s.now()})
}

// ProfileUpdate changes profile fields; nil leaves a field alone.
type ProfileUpdate struct {
	Name           *string `json:"name"`
	Phone          *string `json:"phone"`
	Unit           *string `json:"unit"`
	ProfilePicture *string `json:"profilePicture"`
}

func (u ProfileUpdate) patch() map[string]any {
	patch := map[string]any{}
	set := func(field string, v *string) {
		if v != nil {
			patch[field] = strings.TrimSpace(*v)
		}
	}
	set(model.FieldName, u.Name)
	set(model.FieldPhone, u.Phone)
	set(model.FieldUnit, u.Unit)
	set(model.FieldPicture, u.ProfilePicture)
	return patch
}

// UpdateProfile edits the signed-in barber's own profile.
func (s *Service) UpdateProfile(ctx context.Context, u ProfileUpdate) (model.Barber, error) {
	who, err := s.caller(ctx)
	if err != nil {
		return model.Barber{}, err
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return model.Barber{}, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}
	barber, err := s.findBarber(ctx, who)
	if err != nil {
		return model.Barber{}, err
	}
	if err := s.store.Update(ctx, model.CollectionBarbers, barber.ID, u.patch()); err != nil {
		return model.Barber{}, storeErr(err)
	}
	s.logger.Info(ctx, "profile updated", logger.String("barber", who))
	return s.findBarber(ctx, who)
}
