package cc1101

import (
	"context"
	"errors"
	"fmt"
)

// Transmit sends one packet and waits until the radio is back in IDLE. When
// the radio is set up for variable length packets the length byte is
// prepended to data. IDLE only counts once the radio has been seen out of it
// or the TX FIFO has drained.
func (d *Dev) Transmit(ctx context.Context, data []byte) error {
	pc, err := d.readConfig(RegPktCtrl0)
	if err != nil {
		return err
	}
	frame := data
	if LengthConfig(PKTCTRL0(pc).LengthConfig()) == LengthVariable {
		frame = append([]byte{byte(len(data))}, data...)
	}
	if len(frame) > FifoSize {
		return fmt.Errorf("%w: %d byte frame does not fit the %d byte tx fifo", ErrInvalidConfig, len(frame), FifoSize)
	}

	if err := d.SetRadioMode(ctx, ModeIdle); err != nil {
		return err
	}
	if err := d.strobe(StrobeSFTX); err != nil {
		return err
	}
	if err := d.writeBurst(CmdFIFO, frame); err != nil {
		return err
	}
	if err := d.strobe(StrobeSTX); err != nil {
		return err
	}

	var (
		last MachineState
		left bool
	)
	err = d.poll(ctx, func() (bool, error) {
		s, err := d.State()
		if err != nil {
			return false, err
		}
		last = s
		switch s {
		case StateTxFifoUnderflow:
			return false, ErrTxUnderflow
		case StateIdle:
			if left {
				return true, nil
			}
			// STX may not have been acted on yet. A drained FIFO means the
			// whole packet went out between two reads.
			return d.txFifoEmpty()
		}
		left = true
		return false, nil
	})
	switch {
	case errors.Is(err, ErrTxUnderflow):
		if ferr := d.strobe(StrobeSFTX); ferr != nil {
			return ferr
		}
		return err
	case errors.Is(err, ErrTimeout):
		return fmt.Errorf("%w: transmit, last state %s", ErrTimeout, last)
	case err != nil:
		return err
	}
	d.log.WithField("len", len(data)).Debug("transmitted packet")
	return nil
}

func (d *Dev) txFifoEmpty() (bool, error) {
	b, err := d.readStatus(StatusTxBytes)
	if err != nil {
		return false, err
	}
	return TXBYTES(b).NumTxBytes() == 0, nil
}
