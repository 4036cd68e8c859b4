package internal

import "github.com/sirupsen/logrus"

// Config carries the knobs shared by the engine and its log files.
type Config struct {
	// Logger receives structured engine events. It is also the only channel
	// through which the implicit teardown flush can report failure.
	Logger *logrus.Logger

	// SyncOnWrite fsyncs the log after every appended record.
	SyncOnWrite bool

	// RepairTornTail truncates an incomplete trailing record found during
	// replay instead of refusing to open.
	RepairTornTail bool
}

const DEFAULT_SYNC_ON_WRITE = false
const DEFAULT_REPAIR_TORN_TAIL = false

func DefaultConfig() *Config {
	return &Config{
		Logger:         logrus.StandardLogger(),
		SyncOnWrite:    DEFAULT_SYNC_ON_WRITE,
		RepairTornTail: DEFAULT_REPAIR_TORN_TAIL,
	}
}

// Norm fills in zero-valued fields of c with defaults. A nil c yields the
// default config.
func (c *Config) Norm() *Config {
	var cc Config
	if c != nil {
		cc = *c
	}

	if cc.Logger == nil {
		cc.Logger = logrus.StandardLogger()
	}

	return &cc
}
