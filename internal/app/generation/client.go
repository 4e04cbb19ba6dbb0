package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PabloGalante/translingua/internal/domain"
	"github.com/PabloGalante/translingua/internal/observability"
)

const maxBackoff = 30 * time.Second

// Options configures a Client. Model is fixed for the life of the client.
type Options struct {
	Model      string
	Timeout    time.Duration // per attempt; zero means no extra deadline
	MaxRetries int
	BaseDelay  time.Duration
}

// Client wraps a single TextGenerator call with a deadline and a bounded
// retry budget, and turns every fault into a failed GenerationResult.
type Client struct {
	gen   domain.TextGenerator
	opts  Options
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewClient(gen domain.TextGenerator, opts Options) *Client {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Client{
		gen:   gen,
		opts:  opts,
		now:   time.Now,
		sleep: sleepContext,
	}
}

func (c *Client) Model() string {
	return c.opts.Model
}

func (c *Client) Provider() string {
	return c.gen.Provider()
}

// Generate sends prompt to the configured model. It never returns an error:
// failures are reported through GenerationResult.Succeeded and Error.
func (c *Client) Generate(ctx context.Context, prompt string) (res domain.GenerationResult) {
	start := c.now()
	log := observability.LoggerFromContext(ctx).With(
		"provider", c.gen.Provider(),
		"model", c.opts.Model,
	)

	res = domain.GenerationResult{Model: c.opts.Model, Prompt: prompt}
	defer func() {
		if r := recover(); r != nil {
			log.Error("generation panicked", "panic", r)
			res.Succeeded = false
			res.Output = ""
			res.Error = fmt.Sprintf("generation failed: %v", r)
		}
		res.Duration = c.now().Sub(start)
	}()

	for {
		res.Attempts++

		text, err := c.attempt(ctx, prompt)
		if err == nil {
			text = strings.TrimSpace(text)
			if text != "" {
				res.Output = text
				res.Succeeded = true
				log.Info("generation succeeded", "attempts", res.Attempts)
				return res
			}
			err = &domain.GenerationError{Provider: c.gen.Provider(), Err: errors.New("empty response from model")}
		}

		if ctx.Err() != nil || !c.retryable(err) || res.Attempts > c.opts.MaxRetries {
			log.Warn("generation failed", "attempts", res.Attempts, "error", err)
			res.Error = err.Error()
			return res
		}

		delay := c.backoff(res.Attempts)
		log.Info("retrying generation", "attempt", res.Attempts, "delay_ms", delay.Milliseconds(), "error", err)
		if err := c.sleep(ctx, delay); err != nil {
			res.Error = fmt.Sprintf("generation cancelled: %v", err)
			return res
		}
	}
}

func (c *Client) attempt(ctx context.Context, prompt string) (string, error) {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}
	return c.gen.GenerateText(ctx, c.opts.Model, prompt)
}

// retryable is called only while the caller's context is still alive, so a
// deadline here comes from the per-attempt timeout.
func (c *Client) retryable(err error) bool {
	return domain.IsTransient(err) || errors.Is(err, context.DeadlineExceeded)
}

// backoff doubles the base delay for each attempt, capped at maxBackoff.
func (c *Client) backoff(attempt int) time.Duration {
	base := c.opts.BaseDelay
	if base <= 0 || attempt <= 0 {
		return 0
	}
	d := base << (attempt - 1)
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
