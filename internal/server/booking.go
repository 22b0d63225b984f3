package server

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/teemow/calbot/internal/logging"
	"github.com/teemow/calbot/internal/slotlock"
)

// BookSlot locks the slot, checks that it is free and reserves it. A busy
// slot returns false without reserving. slotlock.ErrLocked is returned when
// another booking holds the slot. An empty title falls back to the default.
func (sc *ServerContext) BookSlot(ctx context.Context, date civil.Date, start, end int, title string) (bool, error) {
	if title == "" {
		title = sc.title
	}

	unlock, err := sc.locker.Lock(ctx, slotlock.Key(date.String(), start, end), sc.lockTTL)
	if err != nil {
		return false, err
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			sc.logger.Warn("failed to release slot lock", logging.Err(err))
		}
	}()

	free, err := sc.backend.CheckFree(ctx, date, start, end)
	if err != nil {
		return false, err
	}
	if !free {
		return false, nil
	}
	return sc.backend.Reserve(ctx, date, start, end, title)
}
