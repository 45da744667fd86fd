package application

import (
	"context"
	"log/slog"
	"time"
)

const (
	// DefaultReminderInterval is the tick cadence of the reminder loop.
	DefaultReminderInterval = time.Minute
	// cleaningCadence is how long the house may go without a cleaning session before
	// the overdue nag fires.
	cleaningCadence = 14 * 24 * time.Hour
)

// milestoneOrder lists the reminder milestones from earliest to latest threshold.
var milestoneOrder = []Milestone{
	MilestoneThreeDay,
	MilestoneOneDay,
	MilestoneOneHour,
	MilestoneStarted,
	MilestoneEnded,
}

// ReminderService drives the time-based party reminders and the daily housekeeping
// checks. A single Tick processes every party once; Run serializes ticks so a slow
// pass never overlaps the next one.
type ReminderService struct {
	parties       PartyRepository
	users         UserRepository
	notifications *NotificationService
	now           func() time.Time
	interval      time.Duration
	logger        *slog.Logger

	lastHousekeeping string
}

// NewReminderService wires dependencies for the reminder loop.
func NewReminderService(parties PartyRepository, users UserRepository, notifications *NotificationService, now func() time.Time, interval time.Duration, logger *slog.Logger) *ReminderService {
	if now == nil {
		now = time.Now
	}
	if interval <= 0 {
		interval = DefaultReminderInterval
	}
	return &ReminderService{
		parties:       parties,
		users:         users,
		notifications: notifications,
		now:           now,
		interval:      interval,
		logger:        defaultLogger(logger),
	}
}

// Run ticks until the context is cancelled. Errors are logged, never fatal.
func (s *ReminderService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger := serviceLogger(ctx, s.logger, "reminders", "run")
	logger.Info("reminder loop started", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			logger.Info("reminder loop stopped")
			return
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				logger.Warn("reminder tick failed", "error", err)
			}
		}
	}
}

// Tick performs one reminder pass: refresh derived statuses, fire due milestones, and
// run the once-a-day housekeeping checks.
func (s *ReminderService) Tick(ctx context.Context) error {
	now := s.now()

	parties, err := s.parties.ListParties(ctx)
	if err != nil {
		return mapRepoError(err)
	}

	for i := range parties {
		if err := refreshStatus(ctx, s.parties, &parties[i], now); err != nil {
			serviceLogger(ctx, s.logger, "reminders", "tick").
				Warn("failed to refresh party status", "party_id", parties[i].ID, "error", err)
			continue
		}
		if err := s.remind(ctx, parties[i], now); err != nil {
			serviceLogger(ctx, s.logger, "reminders", "tick").
				Warn("failed to process party reminders", "party_id", parties[i].ID, "error", err)
		}
	}

	s.housekeeping(ctx, parties, now)
	return nil
}

// remind fires at most one milestone notification per party per tick. When several
// thresholds passed at once (downtime, a reschedule into the past), only the latest
// due milestone is announced; the earlier ones are marked silently so they never fire
// out of order later.
func (s *ReminderService) remind(ctx context.Context, party Party, now time.Time) error {
	if party.Status == StatusCancelled {
		return nil
	}

	due := make([]Milestone, 0, len(milestoneOrder))
	for _, milestone := range milestoneOrder {
		if party.Reminders.sent(milestone) {
			continue
		}
		if !now.Before(milestoneThreshold(party, milestone)) {
			due = append(due, milestone)
		}
	}
	if len(due) == 0 {
		return nil
	}

	announce := due[len(due)-1]
	for _, milestone := range due {
		party.Reminders.mark(milestone)
	}
	party.UpdatedAt = now
	if err := mapRepoError(s.parties.UpdateParty(ctx, party)); err != nil {
		return err
	}

	s.notifications.PartyReminder(ctx, party, announce, party.Participants())
	return nil
}

func milestoneThreshold(party Party, milestone Milestone) time.Time {
	switch milestone {
	case MilestoneThreeDay:
		return party.Start.Add(-3 * 24 * time.Hour)
	case MilestoneOneDay:
		return party.Start.Add(-24 * time.Hour)
	case MilestoneOneHour:
		return party.Start.Add(-time.Hour)
	case MilestoneStarted:
		return party.Start
	case MilestoneEnded:
		return party.End
	}
	return party.End
}

func (f ReminderFlags) sent(milestone Milestone) bool {
	switch milestone {
	case MilestoneThreeDay:
		return f.ThreeDay
	case MilestoneOneDay:
		return f.OneDay
	case MilestoneOneHour:
		return f.OneHour
	case MilestoneStarted:
		return f.Started
	case MilestoneEnded:
		return f.Ended
	}
	return true
}

func (f *ReminderFlags) mark(milestone Milestone) {
	switch milestone {
	case MilestoneThreeDay:
		f.ThreeDay = true
	case MilestoneOneDay:
		f.OneDay = true
	case MilestoneOneHour:
		f.OneHour = true
	case MilestoneStarted:
		f.Started = true
	case MilestoneEnded:
		f.Ended = true
	}
}

// housekeeping runs the birthday and cleaning-cadence checks once per calendar day.
func (s *ReminderService) housekeeping(ctx context.Context, parties []Party, now time.Time) {
	day := now.Format("2006-01-02")
	if day == s.lastHousekeeping {
		return
	}
	s.lastHousekeeping = day

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		serviceLogger(ctx, s.logger, "reminders", "housekeeping").
			Warn("failed to list users", "error", err)
		return
	}

	everyone := make([]string, 0, len(users))
	for _, user := range users {
		everyone = append(everyone, user.ID)
	}

	for _, user := range users {
		if user.Birthdate == nil {
			continue
		}
		if user.Birthdate.Month() == now.Month() && user.Birthdate.Day() == now.Day() {
			s.notifications.Birthday(ctx, user, everyone)
		}
	}

	if s.cleaningOverdue(parties, now) {
		// The organizing burden lands on knowledgers and housers; guests are spared
		// the nag.
		residents := make([]string, 0, len(users))
		for _, user := range users {
			if user.Role == RoleKnowledger || user.Role == RoleHouser {
				residents = append(residents, user.ID)
			}
		}
		s.notifications.CleaningOverdue(ctx, residents)
	}
}

// cleaningOverdue reports whether the last cleaning session ended more than the
// cadence ago and no future one is on the books.
func (s *ReminderService) cleaningOverdue(parties []Party, now time.Time) bool {
	cutoff := now.Add(-cleaningCadence)
	for _, party := range parties {
		if party.Category != CategoryCleaning || party.Status == StatusCancelled {
			continue
		}
		if party.End.After(cutoff) {
			return false
		}
	}
	return true
}
