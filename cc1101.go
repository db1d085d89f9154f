// Package cc1101 drives a TI CC1101 sub-GHz transceiver over SPI.
package cc1101

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/driver/driverreg"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

var (
	ErrRxOverflow    = errors.New("rx fifo overflow")
	ErrTxUnderflow   = errors.New("tx fifo underflow")
	ErrTimeout       = errors.New("poll timeout")
	ErrInvalidConfig = errors.New("invalid config")
)

// DefaultSpeed is the SPI clock used by Open when none is given. The chip
// accepts up to 6.5 MHz for burst access.
const DefaultSpeed = 5 * physic.MegaHertz

// Options tunes a Dev. The zero value is usable.
type Options struct {
	// Logger receives debug and trace entries. Nil discards them.
	Logger logrus.FieldLogger
	// Poll bounds status polling. The zero value selects DefaultPollPolicy.
	// Negative values are rejected.
	Poll PollPolicy
}

// Dev is a handle to one CC1101. It is not safe for concurrent use.
type Dev struct {
	bus    Bus
	cs     ChipSelect
	log    logrus.FieldLogger
	policy PollPolicy
	port   spi.PortCloser
}

// New returns a Dev talking over bus. cs may be nil when the SPI controller
// drives CSn itself.
func New(bus Bus, cs ChipSelect, opts *Options) (*Dev, error) {
	if bus == nil {
		return nil, errors.New("cc1101: nil bus")
	}
	if cs == nil {
		cs = hardwareCS{}
	}
	if opts == nil {
		opts = &Options{}
	}
	d := &Dev{
		bus:    bus,
		cs:     cs,
		log:    opts.Logger,
		policy: opts.Poll,
	}
	if d.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		d.log = l
	}
	if d.policy == (PollPolicy{}) {
		d.policy = DefaultPollPolicy
	}
	if d.policy.MaxAttempts < 0 || d.policy.Interval < 0 {
		return nil, fmt.Errorf("%w: negative poll policy %+v", ErrInvalidConfig, d.policy)
	}
	if err := cs.Out(gpio.High); err != nil {
		return nil, &BusError{Op: "release chip select", Err: err}
	}
	return d, nil
}

// HostConfig names the host resources used by Open.
type HostConfig struct {
	// SPI is the spireg port name. Empty selects the first port.
	SPI string
	// CS is the gpioreg name of a pin driven as chip select. Empty leaves
	// CSn to the SPI controller.
	CS string
	// Speed is the SPI clock. Zero selects DefaultSpeed.
	Speed physic.Frequency

	Options *Options
}

// Open initializes the periph host drivers, opens the SPI port and returns a
// Dev on it. Close releases the port.
func Open(cfg HostConfig) (*Dev, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	if _, err := driverreg.Init(); err != nil {
		return nil, err
	}

	p, err := spireg.Open(cfg.SPI)
	if err != nil {
		return nil, err
	}

	mode := spi.Mode0
	var cs ChipSelect
	if cfg.CS != "" {
		pin := gpioreg.ByName(cfg.CS)
		if pin == nil {
			p.Close()
			return nil, fmt.Errorf("failed to find chip select pin %q", cfg.CS)
		}
		cs = pin
		mode |= spi.NoCS
	}

	speed := cfg.Speed
	if speed == 0 {
		speed = DefaultSpeed
	}
	c, err := p.Connect(speed, mode, 8)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to connect to cc1101 over %s: %w", p, err)
	}

	d, err := New(c, cs, cfg.Options)
	if err != nil {
		p.Close()
		return nil, err
	}
	d.port = p
	return d, nil
}

// Close releases the SPI port opened by Open. It is a no-op for a Dev built
// with New.
func (d *Dev) Close() error {
	if d.port == nil {
		return nil
	}
	err := d.port.Close()
	d.port = nil
	return err
}

// SetFrequency programs the carrier frequency in Hz. FREQ2, FREQ1 and FREQ0
// are written in that order.
func (d *Dev) SetFrequency(hz uint64) error {
	freq0, freq1, freq2 := FrequencyToFields(hz)
	if err := d.writeConfig(RegFreq2, freq2); err != nil {
		return err
	}
	if err := d.writeConfig(RegFreq1, freq1); err != nil {
		return err
	}
	if err := d.writeConfig(RegFreq0, freq0); err != nil {
		return err
	}
	d.log.WithField("hz", hz).Debug("set frequency")
	return nil
}

// Frequency reads back the programmed carrier frequency in Hz.
func (d *Dev) Frequency() (uint64, error) {
	b, err := d.readConfigBurst(RegFreq2, 3)
	if err != nil {
		return 0, fmt.Errorf("failed to read frequency configuration: %w", err)
	}
	return FieldsToFrequency(b[2], b[1], b[0]), nil
}

func (d *Dev) SetModulation(m Modulation) error {
	d.log.WithField("modulation", m).Debug("set modulation")
	return d.modify(RegMdmCfg2, func(r byte) byte {
		return byte(MDMCFG2(r).WithModFormat(m.Value()))
	})
}

// SetSyncMode sets the sync word qualifier and writes the sync word to
// SYNC1 and SYNC0.
func (d *Dev) SetSyncMode(s SyncMode) error {
	if err := d.modify(RegMdmCfg2, func(r byte) byte {
		return byte(MDMCFG2(r).WithSyncMode(s.Check().Value()))
	}); err != nil {
		return err
	}
	if err := d.writeConfig(RegSync1, byte(s.Word()>>8)); err != nil {
		return err
	}
	return d.writeConfig(RegSync0, byte(s.Word()))
}

func (d *Dev) SetAddressFilter(a AddressFilter) error {
	if err := d.modify(RegPktCtrl1, func(r byte) byte {
		return byte(PKTCTRL1(r).WithAdrChk(a.Check().Value()))
	}); err != nil {
		return err
	}
	return d.writeConfig(RegAddr, a.Addr())
}

func (d *Dev) SetPacketLength(p PacketLength) error {
	if err := d.modify(RegPktCtrl0, func(r byte) byte {
		return byte(PKTCTRL0(r).WithLengthConfig(p.Config().Value()))
	}); err != nil {
		return err
	}
	return d.writeConfig(RegPktLen, p.Length())
}

// SetCRC turns CRC calculation in TX and checking in RX on or off.
func (d *Dev) SetCRC(on bool) error {
	var v byte
	if on {
		v = 1
	}
	return d.modify(RegPktCtrl0, func(r byte) byte {
		return byte(PKTCTRL0(r).WithCrcEn(v))
	})
}

// SetPreamble sets the minimum number of preamble bytes sent.
func (d *Dev) SetPreamble(n NumPreamble) error {
	return d.modify(RegMdmCfg1, func(r byte) byte {
		return fieldNumPreamble.set(r, n.Value())
	})
}

func (d *Dev) SetFifoThreshold(t FifoThreshold) error {
	return d.modify(RegFifoThr, func(r byte) byte {
		return fieldFifoThr.set(r, t.Value())
	})
}

// SetDeviation programs the FSK frequency deviation in Hz.
func (d *Dev) SetDeviation(hz uint64) error {
	m, e := DeviationToFields(hz)
	d.log.WithField("hz", FieldsToDeviation(m, e)).Debug("set deviation")
	return d.modify(RegDeviatn, func(r byte) byte {
		return byte(DEVIATN(r).WithDeviationE(e).WithDeviationM(m))
	})
}

// SetDataRate programs the symbol rate in Baud.
func (d *Dev) SetDataRate(baud uint64) error {
	m, e := DataRateToFields(baud)
	d.log.WithField("baud", FieldsToDataRate(m, e)).Debug("set data rate")
	if err := d.modify(RegMdmCfg4, func(r byte) byte {
		return byte(MDMCFG4(r).WithDrateE(e))
	}); err != nil {
		return err
	}
	return d.writeConfig(RegMdmCfg3, byte(MDMCFG3(0).WithDrateM(m)))
}

// SetChannelBandwidth programs the receiver channel filter bandwidth in Hz.
func (d *Dev) SetChannelBandwidth(hz uint64) error {
	m, e := BandwidthToFields(hz)
	d.log.WithField("hz", FieldsToBandwidth(m, e)).Debug("set channel bandwidth")
	return d.modify(RegMdmCfg4, func(r byte) byte {
		return byte(MDMCFG4(r).WithChanBwE(e).WithChanBwM(m))
	})
}

// SetOutputPower loads the PATABLE for the band of hz and points
// FREND0.PA_POWER at the entry for dbm. It returns the PATABLE byte in use.
func (d *Dev) SetOutputPower(hz uint64, dbm int) (byte, error) {
	col := SelectPaColumn(hz)
	payload := col.Payload()
	if err := d.writeBurst(CmdPATable, payload[:]); err != nil {
		return 0, err
	}
	slot := col.PayloadIndex(dbm)
	if err := d.modify(RegFrend0, func(r byte) byte {
		return fieldPaPower.set(r, byte(slot))
	}); err != nil {
		return 0, err
	}
	d.log.WithField("dbm", dbm).WithField("patable", payload[slot]).Debug("set output power")
	return payload[slot], nil
}

// SetDefaults resets the chip and loads the recommended baseline
// configuration on top of the reset values.
func (d *Dev) SetDefaults() error {
	if err := d.strobe(StrobeSRES); err != nil {
		return err
	}
	regs := []struct {
		reg ConfigRegister
		val byte
	}{
		{RegPktCtrl0, byte(DefaultPktCtrl0.WithWhiteData(0))},
		// f_if = FXOSC / 2^10 * FREQ_IF
		{RegFsCtrl1, byte(DefaultFsCtrl1.WithFreqIf(0x08))},
		{RegMdmCfg4, byte(DefaultMdmCfg4.WithChanBwE(0x03).WithChanBwM(0x00).WithDrateE(0x0a))},
		{RegMdmCfg3, byte(DefaultMdmCfg3.WithDrateM(0x83))},
		{RegMdmCfg2, byte(DefaultMdmCfg2.WithDemDcfiltOff(1))},
		{RegDeviatn, byte(DefaultDeviatn.WithDeviationE(0x03).WithDeviationM(0x05))},
		{RegMcsm0, byte(DefaultMcsm0.WithFsAutocal(AutoCalFromIdle.Value()))},
		{RegAgcCtrl2, byte(DefaultAgcCtrl2.WithMaxLnaGain(0x04))},
	}
	for _, r := range regs {
		if err := d.writeConfig(r.reg, r.val); err != nil {
			return fmt.Errorf("failed to configure register %s: %w", r.reg, err)
		}
	}
	d.log.Debug("loaded default configuration")
	return nil
}

// HardwareInfo returns the PARTNUM and VERSION status registers.
func (d *Dev) HardwareInfo() (partnum, version byte, err error) {
	if partnum, err = d.readStatus(StatusPartNum); err != nil {
		return 0, 0, err
	}
	if version, err = d.readStatus(StatusVersion); err != nil {
		return 0, 0, err
	}
	if partnum != PartNumCC1101 || version != VersionCC1101 {
		d.log.WithFields(logrus.Fields{
			"partnum": fmt.Sprintf("0x%02x", partnum),
			"version": fmt.Sprintf("0x%02x", version),
		}).Warn("unexpected chip identification")
	}
	return partnum, version, nil
}

// ConfigDump holds the configuration registers IOCFG2 through TEST0.
type ConfigDump [RegTest0 + 1]byte

func (c *ConfigDump) Get(reg ConfigRegister) byte { return c[reg] }

// Map returns the dump keyed by register name.
func (c *ConfigDump) Map() map[string]byte {
	m := make(map[string]byte, len(c))
	for i, v := range c {
		m[ConfigRegister(i).String()] = v
	}
	return m
}

// ReadConfig reads every configuration register in one burst.
func (d *Dev) ReadConfig() (*ConfigDump, error) {
	b, err := d.readConfigBurst(RegIocfg2, int(RegTest0-RegIocfg2)+1)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var c ConfigDump
	copy(c[:], b)
	return &c, nil
}
