package cc1101

import (
	"context"
	"errors"
	"fmt"
)

// Packet is one frame drained from the RX FIFO with its signal metadata.
type Packet struct {
	Data []byte
	RSSI byte
	LQI  byte
}

// RSSIdBm converts the raw two's complement RSSI reading to dBm using the
// datasheet's 74 dB offset.
func (p *Packet) RSSIdBm() float64 {
	return float64(int8(p.RSSI))/2 - 74
}

// CRCOK reports the CRC_OK flag carried in bit 7 of LQI.
func (p *Packet) CRCOK() bool { return p.LQI&0x80 != 0 }

// LinkQuality is the LQI estimate without the CRC flag.
func (p *Packet) LinkQuality() byte { return p.LQI & 0x7f }

// BytesAvailable blocks until two consecutive RXBYTES reads agree on a non
// zero count and returns it. An overflow flag on any read fails with
// ErrRxOverflow whatever the count.
func (d *Dev) BytesAvailable(ctx context.Context) (int, error) {
	var last byte
	err := d.poll(ctx, func() (bool, error) {
		b, err := d.readStatus(StatusRxBytes)
		if err != nil {
			return false, err
		}
		rx := RXBYTES(b)
		if rx.Overflow() {
			return false, ErrRxOverflow
		}
		n := rx.NumRxBytes()
		done := n > 0 && n == last
		last = n
		return done, nil
	})
	if errors.Is(err, ErrTimeout) {
		return 0, fmt.Errorf("%w: rx fifo holds %d bytes", ErrTimeout, last)
	}
	if err != nil {
		return 0, err
	}
	return int(last), nil
}

// Receive waits for a complete packet, reads len(buf) bytes from the RX FIFO
// into buf, then RSSI and LQI, and flushes the RX FIFO.
func (d *Dev) Receive(ctx context.Context, buf []byte) (*Packet, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: empty receive buffer", ErrInvalidConfig)
	}
	if _, err := d.BytesAvailable(ctx); err != nil {
		return nil, err
	}
	if err := d.readBurst(CmdFIFO, buf); err != nil {
		return nil, err
	}
	rssi, err := d.readStatus(StatusRssi)
	if err != nil {
		return nil, err
	}
	lqi, err := d.readStatus(StatusLqi)
	if err != nil {
		return nil, err
	}
	if err := d.strobe(StrobeSFRX); err != nil {
		return nil, err
	}
	p := &Packet{Data: buf, RSSI: rssi, LQI: lqi}
	d.log.WithField("len", len(buf)).WithField("rssi", p.RSSIdBm()).Debug("received packet")
	return p, nil
}

// FlushRX idles the radio and empties the RX FIFO. SFRX is only accepted in
// IDLE or RXFIFO_OVERFLOW, so this is the way out after ErrRxOverflow.
func (d *Dev) FlushRX(ctx context.Context) error {
	if err := d.SetRadioMode(ctx, ModeIdle); err != nil {
		return err
	}
	return d.strobe(StrobeSFRX)
}
