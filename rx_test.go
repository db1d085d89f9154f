package cc1101

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestBytesAvailableDebounce(t *testing.T) {
	bus := newFakeBus()
	bus.script(StatusRxBytes, 0x00, 0x02, 0x05, 0x05)
	d := newTestDev(t, bus)

	n, err := d.BytesAvailable(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Fatalf("BytesAvailable() = %d, want 5", n)
	}
	if len(bus.txs) != 4 {
		t.Fatalf("status reads = %d, want 4", len(bus.txs))
	}
}

func TestBytesAvailableOverflow(t *testing.T) {
	tests := []struct {
		name   string
		script []byte
	}{
		{"first read", []byte{0x85}},
		{"with zero count", []byte{0x80}},
		{"after stable count", []byte{0x03, 0x83}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := newFakeBus()
			bus.script(StatusRxBytes, tt.script...)
			d := newTestDev(t, bus)
			if _, err := d.BytesAvailable(context.Background()); !errors.Is(err, ErrRxOverflow) {
				t.Fatalf("expected ErrRxOverflow, got %v", err)
			}
		})
	}
}

func TestBytesAvailableTimeout(t *testing.T) {
	bus := newFakeBus()
	bus.script(StatusRxBytes, 0x00)
	d := newTestDev(t, bus)
	if _, err := d.BytesAvailable(context.Background()); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestReceive(t *testing.T) {
	bus := newFakeBus()
	bus.script(StatusRxBytes, 0x03, 0x03)
	bus.script(StatusRssi, 0xe0)
	bus.script(StatusLqi, 0xa5)
	bus.fifo = []byte{0x01, 0x02, 0x03}
	d := newTestDev(t, bus)

	p, err := d.Receive(context.Background(), make([]byte, 3))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(p.Data, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("Data = % x", p.Data)
	}
	if p.RSSI != 0xe0 || p.LQI != 0xa5 {
		t.Errorf("RSSI = 0x%02x LQI = 0x%02x", p.RSSI, p.LQI)
	}
	if p.RSSIdBm() != -90 {
		t.Errorf("RSSIdBm() = %v", p.RSSIdBm())
	}
	if !p.CRCOK() || p.LinkQuality() != 0x25 {
		t.Errorf("CRCOK() = %t LinkQuality() = 0x%02x", p.CRCOK(), p.LinkQuality())
	}

	// FIFO burst, then RSSI, then LQI, then the flush.
	n := len(bus.txs)
	tail := bus.txs[n-4:]
	if tail[0][0] != 0xff || tail[1][0] != 0xf4 || tail[2][0] != 0xf3 || !reflect.DeepEqual(tail[3], []byte{byte(StrobeSFRX)}) {
		t.Errorf("tail transactions = % x", tail)
	}
}

func TestReceiveOverflowSkipsFlush(t *testing.T) {
	bus := newFakeBus()
	bus.script(StatusRxBytes, 0xc0)
	d := newTestDev(t, bus)
	if _, err := d.Receive(context.Background(), make([]byte, 4)); !errors.Is(err, ErrRxOverflow) {
		t.Fatalf("expected ErrRxOverflow, got %v", err)
	}
	if len(bus.strobes()) != 0 {
		t.Fatalf("strobes = %v", bus.strobes())
	}
}

func TestFlushRX(t *testing.T) {
	bus := newFakeBus()
	d := newTestDev(t, bus)
	if err := d.FlushRX(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got, want := bus.strobes(), []Command{StrobeSIDLE, StrobeSFRX}; !reflect.DeepEqual(got, want) {
		t.Fatalf("strobes = %v, want %v", got, want)
	}
}

func TestReceiveEmptyBuffer(t *testing.T) {
	bus := newFakeBus()
	d := newTestDev(t, bus)
	if _, err := d.Receive(context.Background(), nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if len(bus.txs) != 0 {
		t.Fatalf("transactions = % x", bus.txs)
	}
}
