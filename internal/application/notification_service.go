package application

import (
	"context"
	"fmt"
	"log/slog"
)

const inviteTimeLayout = "02/01/2006 15:04"

// Milestone identifies one of the five time-based reminder notifications.
type Milestone string

const (
	MilestoneThreeDay Milestone = "three_day"
	MilestoneOneDay   Milestone = "one_day"
	MilestoneOneHour  Milestone = "one_hour"
	MilestoneStarted  Milestone = "started"
	MilestoneEnded    Milestone = "ended"
)

// NotificationService composes notification copy and fans it out through the sink.
// Delivery failures are logged and absorbed: notifications never fail the triggering
// operation.
type NotificationService struct {
	sink   NotificationSink
	logger *slog.Logger
}

// NewNotificationService wires dependencies for notification dispatch.
func NewNotificationService(sink NotificationSink, logger *slog.Logger) *NotificationService {
	return &NotificationService{sink: sink, logger: defaultLogger(logger)}
}

// Send dispatches a notification, absorbing sink errors.
func (s *NotificationService) Send(ctx context.Context, note Notification) {
	if s == nil || s.sink == nil || len(note.RecipientIDs) == 0 {
		return
	}
	if err := s.sink.Send(ctx, note); err != nil {
		serviceLogger(ctx, s.logger, "notifications", "send").
			Warn("notification delivery failed", "title", note.Title, "recipients", len(note.RecipientIDs), "error", err)
	}
}

// PartyInvitation notifies newly invited guests.
func (s *NotificationService) PartyInvitation(ctx context.Context, party Party, guestIDs []string) {
	when := party.Start.Format(inviteTimeLayout)
	title := "You got an invitation!"
	message := fmt.Sprintf("Invite to '%s' at %s. Check details.", party.Name, when)
	if party.Category == CategoryCleaning {
		title = "URGENT: Cleaning Schedule!"
		message = fmt.Sprintf("Mandatory cleaning session '%s' at %s. Your participation is required!", party.Name, when)
	}
	s.Send(ctx, Notification{
		Title:        title,
		Message:      message,
		RecipientIDs: guestIDs,
		Category:     NotificationParty,
		PartyID:      party.ID,
	})
}

// PartyStatusChanged notifies host and guests about a manual status override.
func (s *NotificationService) PartyStatusChanged(ctx context.Context, party Party, status PartyStatus, recipientIDs []string) {
	cleaning := party.Category == CategoryCleaning
	var statusText string
	switch status {
	case StatusScheduled:
		statusText = "scheduled"
	case StatusInProgress:
		statusText = "in progress"
	case StatusCompleted:
		statusText = "completed"
	case StatusCancelled:
		statusText = "cancelled"
	default:
		statusText = string(status)
	}

	title := "Party status updated"
	message := fmt.Sprintf("The party '%s' is now %s.", party.Name, statusText)
	if cleaning {
		title = "CLEANING UPDATE"
		message = fmt.Sprintf("The cleaning session '%s' is now %s.", party.Name, statusText)
	}
	s.Send(ctx, Notification{
		Title:        title,
		Message:      message,
		RecipientIDs: recipientIDs,
		Category:     NotificationParty,
		PartyID:      party.ID,
	})
}

// PartyRescheduled notifies host and guests about a schedule change.
func (s *NotificationService) PartyRescheduled(ctx context.Context, party Party, recipientIDs []string) {
	s.Send(ctx, Notification{
		Title:        "Party rescheduled",
		Message:      fmt.Sprintf("The party '%s' was moved to %s.", party.Name, party.Start.Format(inviteTimeLayout)),
		RecipientIDs: recipientIDs,
		Category:     NotificationParty,
		PartyID:      party.ID,
	})
}

// PartyReminder sends the milestone reminder with the party-category tone.
func (s *NotificationService) PartyReminder(ctx context.Context, party Party, milestone Milestone, recipientIDs []string) {
	title, message := reminderCopy(party, milestone)
	if title == "" {
		return
	}
	s.Send(ctx, Notification{
		Title:        title,
		Message:      message,
		RecipientIDs: recipientIDs,
		Category:     NotificationParty,
		PartyID:      party.ID,
	})
}

func reminderCopy(party Party, milestone Milestone) (string, string) {
	if party.Category == CategoryCleaning {
		switch milestone {
		case MilestoneThreeDay:
			return "CLEANING REMINDER - 3 Days",
				fmt.Sprintf("Mandatory cleaning session '%s' in 3 days on %s. Prepare your schedule!", party.Name, party.Start.Format(inviteTimeLayout))
		case MilestoneOneDay:
			return "URGENT: Cleaning Tomorrow!",
				fmt.Sprintf("Mandatory cleaning session '%s' tomorrow at %s. Be ready!", party.Name, party.Start.Format("15:04"))
		case MilestoneOneHour:
			return "CLEANING STARTS IN 1 HOUR!",
				fmt.Sprintf("Mandatory cleaning session '%s' starts in 1 hour! Get your supplies ready.", party.Name)
		case MilestoneStarted:
			return "CLEANING SESSION STARTED!",
				fmt.Sprintf("The cleaning session '%s' has started! Please join immediately.", party.Name)
		case MilestoneEnded:
			return "Cleaning Session Completed",
				fmt.Sprintf("The cleaning session '%s' has ended. Thank you for your participation!", party.Name)
		}
		return "", ""
	}

	switch milestone {
	case MilestoneThreeDay:
		return "Party Reminder - 3 Days",
			fmt.Sprintf("Don't forget! The party '%s' is in 3 days on %s.", party.Name, party.Start.Format(inviteTimeLayout))
	case MilestoneOneDay:
		return "Party Reminder - Tomorrow",
			fmt.Sprintf("Tomorrow! The party '%s' is at %s!", party.Name, party.Start.Format("15:04"))
	case MilestoneOneHour:
		return "Party Starting Soon",
			fmt.Sprintf("The party '%s' starts in 1 hour! Time to get ready.", party.Name)
	case MilestoneStarted:
		return "Party Started!",
			fmt.Sprintf("The party '%s' has just started! Join the fun.", party.Name)
	case MilestoneEnded:
		return "Party Ended",
			fmt.Sprintf("The party '%s' has ended. Hope you had a great time!", party.Name)
	}
	return "", ""
}

// DoorOpened notifies stakeholders that a member opened the outer door.
func (s *NotificationService) DoorOpened(ctx context.Context, openerName string, recipientIDs []string) {
	s.Send(ctx, Notification{
		Title:        "Door opened",
		Message:      fmt.Sprintf("%s just opened the front door.", openerName),
		RecipientIDs: recipientIDs,
		Category:     NotificationDoor,
	})
}

// MaintenanceChanged announces a maintenance-mode toggle.
func (s *NotificationService) MaintenanceChanged(ctx context.Context, active bool, recipientIDs []string) {
	title := "Maintenance Mode Deactivated"
	message := "Maintenance mode ended. Door opening is now enabled again!"
	if active {
		title = "Maintenance Mode Activated"
		message = "The system is now in maintenance mode. Door opening is disabled!"
	}
	s.Send(ctx, Notification{
		Title:        title,
		Message:      message,
		RecipientIDs: recipientIDs,
		Category:     NotificationSystem,
	})
}

// RegistrationChanged announces a registration-block toggle to the privileged role.
func (s *NotificationService) RegistrationChanged(ctx context.Context, blocked bool, recipientIDs []string) {
	title := "User Registration Unblocked"
	message := "New user registrations have been unblocked by a knowledger."
	if blocked {
		title = "User Registration Blocked"
		message = "New user registrations have been blocked by a knowledger."
	}
	s.Send(ctx, Notification{
		Title:        title,
		Message:      message,
		RecipientIDs: recipientIDs,
		Category:     NotificationSystem,
	})
}

// Welcome greets a freshly registered member.
func (s *NotificationService) Welcome(ctx context.Context, user User) {
	s.Send(ctx, Notification{
		Title:        "Welcome to the house!",
		Message:      "Your doorbell account has been created successfully!",
		RecipientIDs: []string{user.ID},
		Category:     NotificationSystem,
	})
}

// Birthday announces a member's birthday to the whole house.
func (s *NotificationService) Birthday(ctx context.Context, user User, recipientIDs []string) {
	s.Send(ctx, Notification{
		Title:        "Happy Birthday!",
		Message:      fmt.Sprintf("Congratulations %s! The house wishes you a fantastic day!", user.Username),
		RecipientIDs: recipientIDs,
		Category:     NotificationSystem,
	})
}

// CleaningOverdue nags residents when no cleaning session is on the books.
func (s *NotificationService) CleaningOverdue(ctx context.Context, recipientIDs []string) {
	s.Send(ctx, Notification{
		Title:        "House Cleaning Overdue",
		Message:      "It's been 2 weeks since the last cleaning session and none is scheduled. Organize one!",
		RecipientIDs: recipientIDs,
		Category:     NotificationSystem,
	})
}
