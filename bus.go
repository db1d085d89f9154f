package cc1101

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Bus is the part of spi.Conn the driver uses. A nil r makes Tx write-only.
type Bus interface {
	Tx(w, r []byte) error
}

// ChipSelect drives the CSn line. gpio.PinOut satisfies it.
type ChipSelect interface {
	Out(l gpio.Level) error
}

// BusError is a transport failure during a single bus transaction.
type BusError struct {
	Op     string
	Header byte
	Err    error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("cc1101: %s (header 0x%02x): %v", e.Op, e.Header, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

// hardwareCS is used when the SPI controller toggles CSn itself.
type hardwareCS struct{}

func (hardwareCS) Out(gpio.Level) error { return nil }

// transact runs one select-assert, header+data, select-deassert sequence.
// Deassert is deferred so the line is released on every exit path.
func (d *Dev) transact(op string, w, r []byte) (err error) {
	if err := d.cs.Out(gpio.Low); err != nil {
		return &BusError{Op: op + ": assert chip select", Header: w[0], Err: err}
	}
	defer func() {
		if cerr := d.cs.Out(gpio.High); cerr != nil && err == nil {
			err = &BusError{Op: op + ": release chip select", Header: w[0], Err: cerr}
		}
	}()

	if err := d.bus.Tx(w, r); err != nil {
		return &BusError{Op: op, Header: w[0], Err: err}
	}
	d.log.WithField("op", op).Tracef("tx % x rx % x", w, r)
	return nil
}

func (d *Dev) readConfig(reg ConfigRegister) (byte, error) {
	w := []byte{reg.Addr() | ReadSingle.Offset(), 0x00}
	r := make([]byte, len(w))
	if err := d.transact("read "+reg.String(), w, r); err != nil {
		return 0, err
	}
	return r[1], nil
}

func (d *Dev) writeConfig(reg ConfigRegister, b byte) error {
	return d.transact("write "+reg.String(), []byte{reg.Addr() | WriteSingle.Offset(), b}, nil)
}

func (d *Dev) readStatus(reg StatusRegister) (byte, error) {
	w := []byte{reg.Addr() | ReadBurst.Offset(), 0x00}
	r := make([]byte, len(w))
	if err := d.transact("read "+reg.String(), w, r); err != nil {
		return 0, err
	}
	return r[1], nil
}

// readBurst fills buf with len(buf) bytes read after a single burst header.
func (d *Dev) readBurst(com Command, buf []byte) error {
	w := make([]byte, len(buf)+1)
	w[0] = com.Addr() | ReadBurst.Offset()
	r := make([]byte, len(w))
	if err := d.transact("burst read "+com.String(), w, r); err != nil {
		return err
	}
	copy(buf, r[1:])
	return nil
}

func (d *Dev) writeBurst(com Command, buf []byte) error {
	w := make([]byte, 0, len(buf)+1)
	w = append(w, com.Addr()|WriteBurst.Offset())
	w = append(w, buf...)
	return d.transact("burst write "+com.String(), w, nil)
}

// readConfigBurst reads n consecutive configuration registers starting at
// reg.
func (d *Dev) readConfigBurst(reg ConfigRegister, n int) ([]byte, error) {
	w := make([]byte, n+1)
	w[0] = reg.Addr() | ReadBurst.Offset()
	r := make([]byte, len(w))
	if err := d.transact("burst read "+reg.String(), w, r); err != nil {
		return nil, err
	}
	return r[1:], nil
}

func (d *Dev) strobe(com Command) error {
	return d.transact("strobe "+com.String(), []byte{com.Addr()}, nil)
}
