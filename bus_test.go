package cc1101

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// fakeBus decodes headers the way the chip does and serves register reads
// from memory. Status registers return scripted values; the last value of a
// script repeats.
type fakeBus struct {
	regs    [RegTest0 + 1]byte
	status  map[StatusRegister][]byte
	fifo    []byte
	patable []byte
	txs     [][]byte

	// onStrobe runs after a strobe is recorded.
	onStrobe func(Command)
}

func newFakeBus() *fakeBus {
	f := &fakeBus{status: make(map[StatusRegister][]byte)}
	f.reset()
	f.onStrobe = func(c Command) {
		switch c {
		case StrobeSRES:
			f.reset()
			f.script(StatusMarcState, byte(StateIdle))
		case StrobeSIDLE:
			f.script(StatusMarcState, byte(StateIdle))
		case StrobeSRX:
			f.script(StatusMarcState, byte(StateRx))
		case StrobeSTX:
			f.script(StatusMarcState, byte(StateTx), byte(StateIdle))
		}
	}
	return f
}

// reset loads the datasheet reset values of the registers the driver
// touches.
func (f *fakeBus) reset() {
	f.regs = [RegTest0 + 1]byte{}
	f.regs[RegFifoThr] = 0x07
	f.regs[RegSync1] = byte(DefaultSyncWord >> 8)
	f.regs[RegSync0] = byte(DefaultSyncWord & 0xff)
	f.regs[RegPktLen] = DefaultPktLen
	f.regs[RegPktCtrl1] = byte(DefaultPktCtrl1)
	f.regs[RegPktCtrl0] = byte(DefaultPktCtrl0)
	f.regs[RegFsCtrl1] = byte(DefaultFsCtrl1)
	f.regs[RegFreq2] = 0x1e
	f.regs[RegFreq1] = 0xc4
	f.regs[RegFreq0] = 0xec
	f.regs[RegMdmCfg4] = byte(DefaultMdmCfg4)
	f.regs[RegMdmCfg3] = byte(DefaultMdmCfg3)
	f.regs[RegMdmCfg2] = byte(DefaultMdmCfg2)
	f.regs[RegMdmCfg1] = 0x22
	f.regs[RegDeviatn] = byte(DefaultDeviatn)
	f.regs[RegMcsm0] = byte(DefaultMcsm0)
	f.regs[RegAgcCtrl2] = byte(DefaultAgcCtrl2)
	f.regs[RegFrend0] = 0x10
}

func (f *fakeBus) script(reg StatusRegister, values ...byte) {
	f.status[reg] = values
}

func (f *fakeBus) next(reg StatusRegister) byte {
	q := f.status[reg]
	if len(q) == 0 {
		return 0
	}
	if len(q) > 1 {
		f.status[reg] = q[1:]
	}
	return q[0]
}

func (f *fakeBus) Tx(w, r []byte) error {
	f.txs = append(f.txs, append([]byte(nil), w...))
	h := w[0]
	addr := h & 0x3f
	switch {
	case len(w) == 1:
		if f.onStrobe != nil {
			f.onStrobe(Command(h))
		}
	case h&0xc0 == ReadBurst.Offset() && Command(addr) == CmdFIFO:
		n := copy(r[1:], f.fifo)
		f.fifo = f.fifo[n:]
	case h&0xc0 == ReadBurst.Offset() && addr >= byte(StatusPartNum):
		r[1] = f.next(StatusRegister(addr))
	case h&0xc0 == ReadBurst.Offset():
		for i := range w[1:] {
			r[1+i] = f.regs[int(addr)+i]
		}
	case h&0xc0 == ReadSingle.Offset():
		r[1] = f.regs[addr]
	case h&0xc0 == WriteBurst.Offset() && Command(addr) == CmdPATable:
		f.patable = append([]byte(nil), w[1:]...)
	case h&0xc0 == WriteBurst.Offset() && Command(addr) == CmdFIFO:
		f.fifo = append(f.fifo, w[1:]...)
	default:
		f.regs[addr] = w[1]
	}
	return nil
}

// strobes returns the strobe commands seen so far in order.
func (f *fakeBus) strobes() []Command {
	var out []Command
	for _, w := range f.txs {
		if len(w) == 1 {
			out = append(out, Command(w[0]))
		}
	}
	return out
}

func newTestDev(t *testing.T, b Bus) *Dev {
	t.Helper()
	d, err := New(b, nil, &Options{Poll: PollPolicy{MaxAttempts: 10}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestTransactionHeaders(t *testing.T) {
	p := &conntest.Playback{
		Ops: []conntest.IO{
			{W: []byte{0x8d, 0x00}, R: []byte{0x00, 0x10}},
			{W: []byte{0x0e, 0xa7}},
			{W: []byte{0xf1, 0x00}, R: []byte{0x00, 0x14}},
			{W: []byte{0x36}},
			{W: []byte{0x7e, 1, 2, 3, 4, 5, 6, 7, 8}},
			{W: []byte{0xff, 0x00, 0x00, 0x00}, R: []byte{0x00, 0xaa, 0xbb, 0xcc}},
			{W: []byte{0xcd, 0x00, 0x00, 0x00}, R: []byte{0x00, 0x10, 0xa7, 0x62}},
		},
	}
	d := newTestDev(t, p)

	if v, err := d.readConfig(RegFreq2); err != nil || v != 0x10 {
		t.Fatalf("readConfig = 0x%02x, %v", v, err)
	}
	if err := d.writeConfig(RegFreq1, 0xa7); err != nil {
		t.Fatal(err)
	}
	if v, err := d.readStatus(StatusVersion); err != nil || v != 0x14 {
		t.Fatalf("readStatus = 0x%02x, %v", v, err)
	}
	if err := d.strobe(StrobeSIDLE); err != nil {
		t.Fatal(err)
	}
	if err := d.writeBurst(CmdPATable, []byte{1, 2, 3, 4, 5, 6, 7, 8}); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 3)
	if err := d.readBurst(CmdFIFO, buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, []byte{0xaa, 0xbb, 0xcc}) {
		t.Fatalf("readBurst = % x", buf)
	}
	regs, err := d.readConfigBurst(RegFreq2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(regs, []byte{0x10, 0xa7, 0x62}) {
		t.Fatalf("readConfigBurst = % x", regs)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

// levelBus fails every transaction and records the chip select level seen
// while it runs.
type levelBus struct {
	pin    *gpiotest.Pin
	err    error
	levels []gpio.Level
}

func (b *levelBus) Tx(w, r []byte) error {
	b.levels = append(b.levels, b.pin.Read())
	return b.err
}

func TestChipSelectReleasedOnTransportError(t *testing.T) {
	pin := &gpiotest.Pin{N: "CS", L: gpio.Low}
	boom := errors.New("boom")
	bus := &levelBus{pin: pin, err: boom}
	d, err := New(bus, pin, nil)
	if err != nil {
		t.Fatal(err)
	}
	if pin.Read() != gpio.High {
		t.Fatal("New should leave chip select deasserted")
	}

	_, err = d.readConfig(RegPktLen)
	if !errors.Is(err, boom) {
		t.Fatalf("expected transport error, got %v", err)
	}
	var be *BusError
	if !errors.As(err, &be) || be.Header != 0x86 {
		t.Fatalf("expected *BusError with header 0x86, got %#v", err)
	}
	if len(bus.levels) != 1 || bus.levels[0] != gpio.Low {
		t.Fatalf("chip select during transaction = %v", bus.levels)
	}
	if pin.Read() != gpio.High {
		t.Fatal("chip select not released after transport error")
	}

	if err := d.strobe(StrobeSRX); !errors.Is(err, boom) {
		t.Fatalf("strobe: %v", err)
	}
	if pin.Read() != gpio.High {
		t.Fatal("chip select not released after failed strobe")
	}
}

// flakyCS fails Out for one level.
type flakyCS struct {
	fail  gpio.Level
	err   error
	calls []gpio.Level
}

func (c *flakyCS) Out(l gpio.Level) error {
	c.calls = append(c.calls, l)
	if l == c.fail {
		return c.err
	}
	return nil
}

func TestChipSelectAssertFailureSendsNothing(t *testing.T) {
	bus := newFakeBus()
	d := newTestDev(t, bus)
	d.cs = &flakyCS{fail: gpio.Low, err: errors.New("pin busy")}

	if err := d.writeConfig(RegAddr, 0x42); err == nil {
		t.Fatal("expected error")
	}
	if len(bus.txs) != 0 {
		t.Fatalf("bytes sent after failed assert: %v", bus.txs)
	}
}

func TestChipSelectReleaseFailureReported(t *testing.T) {
	bus := newFakeBus()
	d := newTestDev(t, bus)
	cs := &flakyCS{fail: gpio.High, err: errors.New("pin stuck")}
	d.cs = cs

	err := d.writeConfig(RegAddr, 0x42)
	if err == nil || !strings.Contains(err.Error(), "release chip select") {
		t.Fatalf("expected release error, got %v", err)
	}
	if bus.regs[RegAddr] != 0x42 {
		t.Fatal("write did not reach the bus")
	}
	if len(cs.calls) != 2 || cs.calls[0] != gpio.Low || cs.calls[1] != gpio.High {
		t.Fatalf("chip select sequence = %v", cs.calls)
	}
}
