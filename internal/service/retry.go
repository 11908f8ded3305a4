package service

import (
	"context"
	"errors"
	"log/slog"

	"friendchat/internal/domain"
)

// retryOnce runs fn and, if the store reported contention, runs it exactly
// one more time. The store operations passed here commit all-or-nothing, so a
// failed first attempt leaves no partial state behind.
func retryOnce[T any](ctx context.Context, log *slog.Logger, op string, fn func(context.Context) (T, error)) (T, error) {
	v, err := fn(ctx)
	if err == nil || !errors.Is(err, domain.ErrTransient) || ctx.Err() != nil {
		return v, err
	}
	log.Warn("retrying after transient store error", "op", op, "error", err)
	return fn(ctx)
}
