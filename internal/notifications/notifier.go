package notifications

import "context"

type WelcomeInput struct {
	Email string
	Name  string
}

type PasswordChangedInput struct {
	Email string
}

// Notifier delivers account-lifecycle notices. Delivery is best-effort: the
// account service logs failures but never fails the request over them.
type Notifier interface {
	SendWelcome(ctx context.Context, input WelcomeInput) error
	SendPasswordChanged(ctx context.Context, input PasswordChangedInput) error
}
