package engine

import "time"

// Options tunes the timing of an Instance. Zero fields fall back to the
// Default* constants.
type Options struct {
	PollInterval time.Duration
	Pace         time.Duration
	SettleDelay  time.Duration
	SetupRetry   time.Duration
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.Pace <= 0 {
		o.Pace = DefaultPace
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = DefaultSettleDelay
	}
	if o.SetupRetry <= 0 {
		o.SetupRetry = DefaultSetupRetry
	}
	return o
}
