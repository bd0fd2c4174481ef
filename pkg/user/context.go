package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// The authenticated user travels with the request context. The middleware
// puts it there once per request; background jobs that act on behalf of a
// user (the reminder scan, bus subscribers) call WithUser themselves.
type contextKey struct{}

var ErrNoUser = errors.New("user not found")

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// CurrentUser returns the user the context is acting for, or ErrNoUser.
func CurrentUser(ctx context.Context) (User, error) {
	user, ok := ctx.Value(contextKey{}).(User)
	if !ok {
		log.Trace("user not found in context")
		return User{}, ErrNoUser
	}
	return user, nil
}

// CurrentId is a shorthand for callers that only need the user's ID.
func CurrentId(ctx context.Context) (int, error) {
	user, err := CurrentUser(ctx)
	if err != nil {
		return 0, err
	}
	return user.Id, nil
}

// CurrentLocation loads the timezone from the current user's settings. Users
// without a configured timezone get UTC.
func CurrentLocation(ctx context.Context) (*time.Location, error) {
	current, err := CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if current.Settings.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(current.Settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("could not load location for timezone %s", current.Settings.Timezone)
	}
	return loc, nil
}
