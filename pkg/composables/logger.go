package composables

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/hydrosense/hydrosense/pkg/configuration"
	"github.com/hydrosense/hydrosense/pkg/constants"
)

func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, logger)
}

// UseLogger returns the logger from the context, falling back to the
// configuration's root logger when none was attached.
func UseLogger(ctx context.Context) *logrus.Entry {
	logger := ctx.Value(constants.LoggerKey)
	if logger == nil {
		return logrus.NewEntry(configuration.Use().Logger())
	}
	return logger.(*logrus.Entry)
}
