package usecase

import "context"

// ChangeNotifier broadcasts that a persisted key changed, so dependent
// views can re-fetch. The core only publishes; reactivity is the caller's
// problem.
type ChangeNotifier interface {
	NotifyChanged(ctx context.Context, key string) error
}
