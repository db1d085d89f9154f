package cc1101

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// PollPolicy bounds every status polling loop. MaxAttempts of 0 polls until
// the context is done.
type PollPolicy struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultPollPolicy gives up after roughly one second.
var DefaultPollPolicy = PollPolicy{MaxAttempts: 1000, Interval: time.Millisecond}

func (p PollPolicy) wait(ctx context.Context) error {
	if p.Interval <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.Interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// poll calls fn until it reports done or fails. It returns ErrTimeout when
// the policy runs out of attempts and ctx.Err() when ctx is done first.
func (d *Dev) poll(ctx context.Context, fn func() (bool, error)) error {
	for i := 0; d.policy.MaxAttempts == 0 || i < d.policy.MaxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := fn()
		if err != nil || done {
			return err
		}
		if err := d.policy.wait(ctx); err != nil {
			return err
		}
	}
	return ErrTimeout
}

// State reads MARCSTATE. The value is never cached.
func (d *Dev) State() (MachineState, error) {
	b, err := d.readStatus(StatusMarcState)
	if err != nil {
		return 0, err
	}
	return MARCSTATE(b).MarcState(), nil
}

// SetRadioMode moves the radio to mode and waits until MARCSTATE reports it.
// Receive and Transmit always pass through IDLE first.
func (d *Dev) SetRadioMode(ctx context.Context, mode RadioMode) error {
	var (
		cmd    Command
		target MachineState
	)
	switch mode {
	case ModeIdle:
		cmd, target = StrobeSIDLE, StateIdle
	case ModeReceive:
		if err := d.SetRadioMode(ctx, ModeIdle); err != nil {
			return err
		}
		cmd, target = StrobeSRX, StateRx
	case ModeTransmit:
		if err := d.SetRadioMode(ctx, ModeIdle); err != nil {
			return err
		}
		cmd, target = StrobeSTX, StateTx
	default:
		return fmt.Errorf("%w: radio mode %v", ErrInvalidConfig, mode)
	}

	d.log.WithField("mode", mode).Debug("set radio mode")
	if err := d.strobe(cmd); err != nil {
		return err
	}
	return d.awaitState(ctx, target)
}

func (d *Dev) awaitState(ctx context.Context, target MachineState) error {
	var last MachineState
	err := d.poll(ctx, func() (bool, error) {
		s, err := d.State()
		if err != nil {
			return false, err
		}
		last = s
		return s == target, nil
	})
	if errors.Is(err, ErrTimeout) {
		return fmt.Errorf("%w: waiting for %s, last state %s", ErrTimeout, target, last)
	}
	return err
}
