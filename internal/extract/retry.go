package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"shelfscan/internal/domain"
	"shelfscan/internal/port"
)

const (
	defaultMaxAttempts = 3
	defaultBackoffBase = time.Second
)

// controllerState is one node of the retry state machine.
type controllerState int

const (
	stateIdle controllerState = iota
	stateAttempting
	stateValidating
	stateBackingOff
	stateSucceeded
	stateFailed
)

// SleepFunc waits for d or until ctx is done. Injected so tests drive the
// state machine without timing the real clock.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Controller drives repeated extraction attempts against a single provider,
// validating each raw response and backing off on transient failures. It is
// the only boundary that converts provider instability into one terminal
// outcome.
type Controller struct {
	extractor   port.VisionExtractor
	maxAttempts int
	baseDelay   time.Duration
	sleep       SleepFunc
}

// NewController creates a retry controller with the given attempt ceiling
// and initial backoff delay. Zero values fall back to 3 attempts and 1s.
func NewController(extractor port.VisionExtractor, maxAttempts int, baseDelay time.Duration) *Controller {
	return NewControllerWithSleep(extractor, maxAttempts, baseDelay, sleepContext)
}

// NewControllerWithSleep creates a controller with an injected sleep
// function (for testing).
func NewControllerWithSleep(extractor port.VisionExtractor, maxAttempts int, baseDelay time.Duration, sleep SleepFunc) *Controller {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = defaultBackoffBase
	}
	return &Controller{
		extractor:   extractor,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		sleep:       sleep,
	}
}

// Run produces a validated raw response or a terminal failure. Attempts are
// strictly ordered; each completes before the next is issued. The backoff
// wait holds no resources beyond the goroutine itself.
func (c *Controller) Run(ctx context.Context, input port.ExtractInput, validate func(json.RawMessage) error) (json.RawMessage, error) {
	if len(input.ImageBytes) == 0 {
		return nil, domain.ErrEmptyPayload
	}

	var (
		st      = stateIdle
		attempt int
		delay   = c.baseDelay
		raw     json.RawMessage
		lastErr error
	)

	for {
		switch st {
		case stateIdle:
			st = stateAttempting

		case stateAttempting:
			attempt++
			raw, lastErr = c.extractor.Extract(ctx, input)
			if lastErr == nil {
				st = stateValidating
				break
			}
			if Classify(lastErr) == KindTransient && attempt < c.maxAttempts {
				log.Printf("extract.Controller: attempt %d/%d transient failure, backing off %s: %v",
					attempt, c.maxAttempts, delay, lastErr)
				st = stateBackingOff
				break
			}
			st = stateFailed

		case stateValidating:
			vErr := validate(raw)
			if vErr == nil {
				st = stateSucceeded
				break
			}
			lastErr = vErr
			// A null/non-object response is a transient shape failure; a
			// well-formed object that misses the schema is the provider's
			// final answer and fails immediately.
			if Classify(vErr) == KindTransient && attempt < c.maxAttempts {
				log.Printf("extract.Controller: attempt %d/%d returned malformed shape, backing off %s",
					attempt, c.maxAttempts, delay)
				st = stateBackingOff
				break
			}
			st = stateFailed

		case stateBackingOff:
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
			delay *= 2
			st = stateAttempting

		case stateSucceeded:
			return raw, nil

		case stateFailed:
			if Classify(lastErr) == KindTransient {
				return nil, fmt.Errorf("%w (last error: %v)", ErrRetryExhausted, lastErr)
			}
			return nil, lastErr
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
