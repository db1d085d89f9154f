package cc1101

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestSetRadioModeSequencing(t *testing.T) {
	tests := []struct {
		mode RadioMode
		want []Command
	}{
		{ModeIdle, []Command{StrobeSIDLE}},
		{ModeReceive, []Command{StrobeSIDLE, StrobeSRX}},
		{ModeTransmit, []Command{StrobeSIDLE, StrobeSTX}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			bus := newFakeBus()
			d := newTestDev(t, bus)
			if err := d.SetRadioMode(context.Background(), tt.mode); err != nil {
				t.Fatal(err)
			}
			if got := bus.strobes(); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("strobes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetRadioModeWaitsForState(t *testing.T) {
	bus := newFakeBus()
	bus.onStrobe = func(c Command) {
		switch c {
		case StrobeSIDLE:
			bus.script(StatusMarcState, byte(StateRx), byte(StateIdle))
		case StrobeSRX:
			bus.script(StatusMarcState, byte(StateIdle), byte(StateStartCal), byte(StateFsLock), byte(StateRx))
		}
	}
	d := newTestDev(t, bus)
	if err := d.SetRadioMode(context.Background(), ModeReceive); err != nil {
		t.Fatal(err)
	}
	if len(bus.status[StatusMarcState]) != 1 {
		t.Fatalf("stopped polling early, %d states left", len(bus.status[StatusMarcState]))
	}
}

func TestSetRadioModeTimeout(t *testing.T) {
	bus := newFakeBus()
	bus.onStrobe = nil
	bus.script(StatusMarcState, byte(StateRx))
	d := newTestDev(t, bus)

	err := d.SetRadioMode(context.Background(), ModeIdle)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if !strings.Contains(err.Error(), "IDLE") || !strings.Contains(err.Error(), "RX") {
		t.Errorf("error should name target and last state: %v", err)
	}
	// One strobe plus MaxAttempts status reads.
	if len(bus.txs) != 1+10 {
		t.Errorf("transactions = %d", len(bus.txs))
	}
}

func TestSetRadioModeContext(t *testing.T) {
	bus := newFakeBus()
	bus.onStrobe = nil
	bus.script(StatusMarcState, byte(StateRx))
	d, err := New(bus, nil, &Options{Poll: PollPolicy{Interval: time.Millisecond}})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := d.SetRadioMode(ctx, ModeIdle); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	if err := d.SetRadioMode(ctx, ModeReceive); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestSetRadioModeUnknown(t *testing.T) {
	bus := newFakeBus()
	d := newTestDev(t, bus)
	if err := d.SetRadioMode(context.Background(), RadioMode(7)); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if len(bus.txs) != 0 {
		t.Fatal("unknown mode reached the bus")
	}
}

func TestStateIsNotCached(t *testing.T) {
	bus := newFakeBus()
	bus.script(StatusMarcState, byte(StateIdle), byte(StateRx))
	d := newTestDev(t, bus)
	for _, want := range []MachineState{StateIdle, StateRx} {
		got, err := d.State()
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("State() = %s, want %s", got, want)
		}
	}
}
