package cc1101

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestTransmitVariableLength(t *testing.T) {
	bus := newFakeBus()
	d := newTestDev(t, bus)

	if err := d.Transmit(context.Background(), []byte("hi!")); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(bus.fifo, []byte{3, 'h', 'i', '!'}) {
		t.Errorf("tx fifo = % x", bus.fifo)
	}
	want := []Command{StrobeSIDLE, StrobeSFTX, StrobeSTX}
	if got := bus.strobes(); !reflect.DeepEqual(got, want) {
		t.Errorf("strobes = %v, want %v", got, want)
	}
}

func TestTransmitFixedLength(t *testing.T) {
	bus := newFakeBus()
	bus.regs[RegPktCtrl0] = byte(DefaultPktCtrl0.WithLengthConfig(LengthFixed.Value()))
	d := newTestDev(t, bus)

	if err := d.Transmit(context.Background(), []byte{0xde, 0xad}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(bus.fifo, []byte{0xde, 0xad}) {
		t.Errorf("tx fifo = % x", bus.fifo)
	}
}

func TestTransmitUnderflow(t *testing.T) {
	bus := newFakeBus()
	next := bus.onStrobe
	bus.onStrobe = func(c Command) {
		next(c)
		if c == StrobeSTX {
			bus.script(StatusMarcState, byte(StateTx), byte(StateTxFifoUnderflow))
		}
	}
	d := newTestDev(t, bus)

	if err := d.Transmit(context.Background(), []byte{1}); !errors.Is(err, ErrTxUnderflow) {
		t.Fatalf("expected ErrTxUnderflow, got %v", err)
	}
	s := bus.strobes()
	if s[len(s)-1] != StrobeSFTX {
		t.Fatalf("strobes = %v, want a final SFTX", s)
	}
}

func TestTransmitTooLong(t *testing.T) {
	bus := newFakeBus()
	d := newTestDev(t, bus)
	if err := d.Transmit(context.Background(), make([]byte, FifoSize)); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if len(bus.strobes()) != 0 {
		t.Fatal("oversized frame reached the radio")
	}
}

// headerCount counts transactions starting with h.
func headerCount(b *fakeBus, h byte) int {
	n := 0
	for _, w := range b.txs {
		if w[0] == h {
			n++
		}
	}
	return n
}

func TestTransmitIgnoresIdleBeforeStart(t *testing.T) {
	bus := newFakeBus()
	next := bus.onStrobe
	bus.onStrobe = func(c Command) {
		next(c)
		if c == StrobeSTX {
			bus.script(StatusMarcState, byte(StateIdle), byte(StateManCal), byte(StateTx), byte(StateIdle))
			bus.script(StatusTxBytes, 0x04)
		}
	}
	d := newTestDev(t, bus)

	if err := d.Transmit(context.Background(), []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	// One read while idling before the load, four after STX.
	if got := headerCount(bus, 0xc0|byte(StatusMarcState)); got != 5 {
		t.Errorf("MARCSTATE reads = %d, want 5", got)
	}
	if got := headerCount(bus, 0xc0|byte(StatusTxBytes)); got != 1 {
		t.Errorf("TXBYTES reads = %d, want 1", got)
	}
}

func TestTransmitIdleWithDrainedFifo(t *testing.T) {
	bus := newFakeBus()
	next := bus.onStrobe
	bus.onStrobe = func(c Command) {
		next(c)
		if c == StrobeSTX {
			bus.script(StatusMarcState, byte(StateIdle))
			bus.script(StatusTxBytes, 0x00)
		}
	}
	d := newTestDev(t, bus)

	if err := d.Transmit(context.Background(), []byte{1}); err != nil {
		t.Fatal(err)
	}
	if got := headerCount(bus, 0xc0|byte(StatusTxBytes)); got != 1 {
		t.Errorf("TXBYTES reads = %d, want 1", got)
	}
}

func TestTransmitNeverStarts(t *testing.T) {
	bus := newFakeBus()
	next := bus.onStrobe
	bus.onStrobe = func(c Command) {
		next(c)
		if c == StrobeSTX {
			bus.script(StatusMarcState, byte(StateIdle))
			bus.script(StatusTxBytes, 0x02)
		}
	}
	d := newTestDev(t, bus)

	if err := d.Transmit(context.Background(), []byte{1}); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}
