package health

import (
	"context"
	"time"
)

// Pinger is anything that can verify connectivity, such as the document
// store or a Redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerChecker runs a bounded Ping against a backing service.
type PingerChecker struct {
	name    string
	pinger  Pinger
	timeout time.Duration
}

// NewPingerChecker creates a checker for a backing service. A zero timeout
// defaults to 5 seconds.
func NewPingerChecker(name string, pinger Pinger, timeout time.Duration) *PingerChecker {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &PingerChecker{name: name, pinger: pinger, timeout: timeout}
}

// Check pings the service within the configured timeout.
func (c *PingerChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.pinger.Ping(checkCtx)
	duration := time.Since(start)

	if err != nil {
		return CheckResult{
			Name:      c.name,
			Status:    StatusUnhealthy,
			Error:     err.Error(),
			Timestamp: time.Now(),
			Duration:  duration,
		}
	}
	return CheckResult{
		Name:      c.name,
		Status:    StatusHealthy,
		Message:   "OK",
		Timestamp: time.Now(),
		Duration:  duration,
	}
}

// Name returns the check's name.
func (c *PingerChecker) Name() string { return c.name }

// LivenessChecker always reports healthy. It answers "is the process up"
// without touching any dependency.
type LivenessChecker struct {
	name string
}

// NewLivenessChecker creates a liveness check.
func NewLivenessChecker(name string) *LivenessChecker {
	return &LivenessChecker{name: name}
}

// Check reports healthy unconditionally.
func (c *LivenessChecker) Check(ctx context.Context) CheckResult {
	return CheckResult{
		Name:      c.name,
		Status:    StatusHealthy,
		Message:   "alive",
		Timestamp: time.Now(),
	}
}

// Name returns the check's name.
func (c *LivenessChecker) Name() string { return c.name }
