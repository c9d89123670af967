package ports

import "context"

const (
	ChannelGovernance = "governance-channel"

	EventComplaintStatusUpdated = "complaint-status-updated"
	EventComplaintRejected      = "complaint-rejected"
	EventComplaintUpdated       = "complaint-updated"
	EventComplaintAssigned      = "complaint-assigned"
	EventNotification           = "notification"
)

// UserChannel is the per-user realtime channel name.
func UserChannel(userID string) string {
	return "user-" + userID
}

type RealtimePublisher interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

type EmailMessage struct {
	To      string
	Subject string
	HTML    string
}

type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

type JobKind string

const (
	JobRealtime JobKind = "realtime"
	JobEmail    JobKind = "email"
)

// Dispatcher runs side effects off the caller's path. Dispatch never blocks;
// it reports false when the job was dropped.
type Dispatcher interface {
	Dispatch(kind JobKind, name string, fn func(ctx context.Context) error) bool
}
