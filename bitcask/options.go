package bitcask

import (
	"github.com/sirupsen/logrus"

	"github.com/0xRadioAc7iv/mini-bitcask/internal"
)

type Option func(*internal.Config)

// WithLogger routes engine events to logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *internal.Config) {
		c.Logger = logger
	}
}

// WithSyncOnWrite fsyncs the log after every write.
func WithSyncOnWrite(sync bool) Option {
	return func(c *internal.Config) {
		c.SyncOnWrite = sync
	}
}

// WithRepairTornTail makes Open truncate an incomplete trailing record left
// by an interrupted write instead of failing.
func WithRepairTornTail(repair bool) Option {
	return func(c *internal.Config) {
		c.RepairTornTail = repair
	}
}
