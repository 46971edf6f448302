package service

import (
	"context"
	"log"
)

// Notifier delivers invitation lifecycle notifications. Calls happen
// after the owning transaction commits; a failed delivery is logged
// and never affects the committed state.
type Notifier interface {
	// InvitationCreated notifies the invited user.
	InvitationCreated(ctx context.Context, toEmail, tripName, message string) error
	// InvitationAccepted notifies the inviter and existing members
	// that someone joined.
	InvitationAccepted(ctx context.Context, toEmail, tripName, memberName string) error
	// InvitationRejected notifies the inviter.
	InvitationRejected(ctx context.Context, toEmail, tripName string) error
}

// LogNotifier writes notifications to the process log. It is the
// fallback when no email transport is configured.
type LogNotifier struct{}

func (LogNotifier) InvitationCreated(_ context.Context, toEmail, tripName, _ string) error {
	log.Printf("notify %s: you were invited to trip %q", toEmail, tripName)
	return nil
}

func (LogNotifier) InvitationAccepted(_ context.Context, toEmail, tripName, memberName string) error {
	log.Printf("notify %s: %s joined trip %q", toEmail, memberName, tripName)
	return nil
}

func (LogNotifier) InvitationRejected(_ context.Context, toEmail, tripName string) error {
	log.Printf("notify %s: your invitation to trip %q was declined", toEmail, tripName)
	return nil
}
