package cc1101

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
	"periph.io/x/conn/v3/physic"
)

// RadioConfig is the YAML form of a complete radio setup. Frequencies and
// rates take periph physic strings such as "433.92MHz" or "38.383kHz".
type RadioConfig struct {
	Frequency     string        `yaml:"frequency"`
	Modulation    string        `yaml:"modulation"`
	DataRate      string        `yaml:"dataRate"`
	Deviation     string        `yaml:"deviation"`
	Bandwidth     string        `yaml:"bandwidth"`
	Sync          SyncConfig    `yaml:"sync"`
	Address       AddressConfig `yaml:"address"`
	Packet        PacketConfig  `yaml:"packet"`
	CRC           bool          `yaml:"crc"`
	PreambleBytes int           `yaml:"preambleBytes"`
	PowerDBm      int           `yaml:"powerDbm"`
	Poll          PollConfig    `yaml:"poll"`
}

// SyncConfig mode is one of disabled, partial, partial-repeated or full,
// optionally followed by "+carrier-sense".
type SyncConfig struct {
	Mode string `yaml:"mode"`
	Word uint16 `yaml:"word"`
}

// AddressConfig filter is one of disabled, device, low-broadcast or
// high-low-broadcast.
type AddressConfig struct {
	Filter string `yaml:"filter"`
	Addr   byte   `yaml:"addr"`
}

// PacketConfig length is one of fixed, variable or infinite.
type PacketConfig struct {
	Length string `yaml:"length"`
	Size   byte   `yaml:"size"`
}

type PollConfig struct {
	MaxAttempts int `yaml:"maxAttempts"`
	IntervalMs  int `yaml:"intervalMs"`
}

var syncModes = map[string]SyncCheck{
	"disabled":                       SyncCheckDisabled,
	"partial":                        SyncCheck15of16,
	"full":                           SyncCheck16of16,
	"partial-repeated":               SyncCheck30of32,
	"disabled+carrier-sense":         SyncCheckCarrier,
	"partial+carrier-sense":          SyncCheck15of16CS,
	"full+carrier-sense":             SyncCheck16of16CS,
	"partial-repeated+carrier-sense": SyncCheck30of32CS,
}

func syncModeFor(c SyncCheck, word uint16) SyncMode {
	var s SyncMode
	switch c &^ SyncCheckCarrier {
	case SyncCheck15of16:
		s = SyncMatchPartial(word)
	case SyncCheck16of16:
		s = SyncMatchFull(word)
	case SyncCheck30of32:
		s = SyncMatchPartialRepeated(word)
	default:
		s = SyncDisabled()
	}
	if c&SyncCheckCarrier != 0 {
		s = s.WithCarrierSense()
	}
	return s
}

var modulationNames = map[string]Modulation{
	"2-fsk": Mod2FSK,
	"gfsk":  ModGFSK,
	"ook":   ModOOK,
	"4-fsk": Mod4FSK,
	"msk":   ModMSK,
}

// DefaultRadioConfig mirrors SetDefaults with a 433.92 MHz carrier and
// variable length packets of up to MaxPacketLength bytes.
func DefaultRadioConfig() *RadioConfig {
	return &RadioConfig{
		Frequency:     "433.92MHz",
		Modulation:    "2-fsk",
		DataRate:      "38.383kHz",
		Deviation:     "20.629kHz",
		Bandwidth:     "101.562kHz",
		Sync:          SyncConfig{Mode: "full", Word: DefaultSyncWord},
		Address:       AddressConfig{Filter: "disabled"},
		Packet:        PacketConfig{Length: "variable", Size: MaxPacketLength},
		CRC:           true,
		PreambleBytes: 4,
		PowerDBm:      0,
		Poll: PollConfig{
			MaxAttempts: DefaultPollPolicy.MaxAttempts,
			IntervalMs:  int(DefaultPollPolicy.Interval / time.Millisecond),
		},
	}
}

// LoadRadioConfig starts from DefaultRadioConfig, overlays the YAML file at
// path when path is not empty, applies CC1101_FREQUENCY and CC1101_POWER_DBM
// from the environment and validates the result.
func LoadRadioConfig(path string) (*RadioConfig, error) {
	cfg := DefaultRadioConfig()
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load radio config from %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(cfg *RadioConfig, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

func applyEnvOverrides(cfg *RadioConfig) error {
	if f := os.Getenv("CC1101_FREQUENCY"); f != "" {
		cfg.Frequency = f
	}
	if p := os.Getenv("CC1101_POWER_DBM"); p != "" {
		dbm, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("%w: CC1101_POWER_DBM %q: %v", ErrInvalidConfig, p, err)
		}
		cfg.PowerDBm = dbm
	}
	return nil
}

// radioSettings is a RadioConfig with every field parsed.
type radioSettings struct {
	frequency  uint64
	modulation Modulation
	dataRate   uint64
	deviation  uint64
	bandwidth  uint64
	sync       SyncMode
	address    AddressFilter
	packet     PacketLength
	crc        bool
	preamble   NumPreamble
	powerDBm   int
}

func parseHz(field, s string) (uint64, error) {
	var f physic.Frequency
	if err := f.Set(s); err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", ErrInvalidConfig, field, s, err)
	}
	if f <= 0 {
		return 0, fmt.Errorf("%w: %s %q must be positive", ErrInvalidConfig, field, s)
	}
	return uint64(f / physic.Hertz), nil
}

// inBand reports whether hz lies in one of the synthesizer's bands.
func inBand(hz uint64) bool {
	return (hz >= 300_000_000 && hz <= 348_000_000) ||
		(hz >= 387_000_000 && hz <= 464_000_000) ||
		(hz >= 779_000_000 && hz <= 928_000_000)
}

func (c *RadioConfig) parse() (*radioSettings, error) {
	var (
		s   radioSettings
		err error
	)
	if s.frequency, err = parseHz("frequency", c.Frequency); err != nil {
		return nil, err
	}
	if !inBand(s.frequency) {
		return nil, fmt.Errorf("%w: frequency %s is outside 300-348, 387-464 and 779-928 MHz", ErrInvalidConfig, c.Frequency)
	}
	if s.dataRate, err = parseHz("dataRate", c.DataRate); err != nil {
		return nil, err
	}
	if s.dataRate < 600 || s.dataRate > 500_000 {
		return nil, fmt.Errorf("%w: dataRate %s is outside 0.6-500 kBaud", ErrInvalidConfig, c.DataRate)
	}
	if s.deviation, err = parseHz("deviation", c.Deviation); err != nil {
		return nil, err
	}
	if s.bandwidth, err = parseHz("bandwidth", c.Bandwidth); err != nil {
		return nil, err
	}

	m, ok := modulationNames[strings.ToLower(c.Modulation)]
	if !ok {
		return nil, fmt.Errorf("%w: modulation %q", ErrInvalidConfig, c.Modulation)
	}
	s.modulation = m

	chk, ok := syncModes[c.Sync.Mode]
	if !ok {
		return nil, fmt.Errorf("%w: sync mode %q", ErrInvalidConfig, c.Sync.Mode)
	}
	s.sync = syncModeFor(chk, c.Sync.Word)

	switch c.Address.Filter {
	case "disabled":
		s.address = AddressDisabled()
	case "device":
		s.address = AddressDevice(c.Address.Addr)
	case "low-broadcast":
		s.address = AddressDeviceLowBroadcast(c.Address.Addr)
	case "high-low-broadcast":
		s.address = AddressDeviceHighLowBroadcast(c.Address.Addr)
	default:
		return nil, fmt.Errorf("%w: address filter %q", ErrInvalidConfig, c.Address.Filter)
	}

	switch c.Packet.Length {
	case "fixed":
		s.packet = PacketFixed(c.Packet.Size)
	case "variable":
		s.packet = PacketVariable(c.Packet.Size)
	case "infinite":
		s.packet = PacketInfinite()
	default:
		return nil, fmt.Errorf("%w: packet length %q", ErrInvalidConfig, c.Packet.Length)
	}
	if s.packet.Config() != LengthInfinite && c.Packet.Size == 0 {
		return nil, fmt.Errorf("%w: %s packets need a non zero size", ErrInvalidConfig, c.Packet.Length)
	}

	if c.PreambleBytes < 2 || c.PreambleBytes > 24 {
		return nil, fmt.Errorf("%w: preambleBytes %d is outside 2-24", ErrInvalidConfig, c.PreambleBytes)
	}
	s.preamble = PreambleFor(c.PreambleBytes)

	if c.PowerDBm > 12 {
		return nil, fmt.Errorf("%w: powerDbm %d is above +12 dBm", ErrInvalidConfig, c.PowerDBm)
	}
	s.powerDBm = c.PowerDBm
	s.crc = c.CRC
	return &s, nil
}

// Validate parses every field and checks it against the chip's limits.
func (c *RadioConfig) Validate() error {
	if c.Poll.MaxAttempts < 0 || c.Poll.IntervalMs < 0 {
		return fmt.Errorf("%w: negative poll settings", ErrInvalidConfig)
	}
	_, err := c.parse()
	return err
}

// PollPolicy returns the configured poll policy.
func (c *RadioConfig) PollPolicy() PollPolicy {
	return PollPolicy{
		MaxAttempts: c.Poll.MaxAttempts,
		Interval:    time.Duration(c.Poll.IntervalMs) * time.Millisecond,
	}
}

// Apply resets the radio with SetDefaults and programs every setting in c.
func (c *RadioConfig) Apply(d *Dev) error {
	s, err := c.parse()
	if err != nil {
		return err
	}
	if err := d.SetDefaults(); err != nil {
		return err
	}
	steps := []struct {
		name string
		fn   func() error
	}{
		{"frequency", func() error { return d.SetFrequency(s.frequency) }},
		{"modulation", func() error { return d.SetModulation(s.modulation) }},
		{"data rate", func() error { return d.SetDataRate(s.dataRate) }},
		{"deviation", func() error { return d.SetDeviation(s.deviation) }},
		{"channel bandwidth", func() error { return d.SetChannelBandwidth(s.bandwidth) }},
		{"sync mode", func() error { return d.SetSyncMode(s.sync) }},
		{"address filter", func() error { return d.SetAddressFilter(s.address) }},
		{"packet length", func() error { return d.SetPacketLength(s.packet) }},
		{"crc", func() error { return d.SetCRC(s.crc) }},
		{"preamble", func() error { return d.SetPreamble(s.preamble) }},
		{"output power", func() error {
			_, err := d.SetOutputPower(s.frequency, s.powerDBm)
			return err
		}},
	}
	for _, st := range steps {
		if err := st.fn(); err != nil {
			return fmt.Errorf("failed to set %s: %w", st.name, err)
		}
	}
	d.policy = c.PollPolicy()
	if d.policy == (PollPolicy{}) {
		d.policy = DefaultPollPolicy
	}
	return nil
}

// DecodeConfig describes the register dump c in RadioConfig terms. Output
// power and polling are not held in configuration registers and are left
// zero.
func DecodeConfig(c *ConfigDump) *RadioConfig {
	hz := func(v uint64) string { return (physic.Frequency(v) * physic.Hertz).String() }

	mdm2 := MDMCFG2(c.Get(RegMdmCfg2))
	mdm4 := MDMCFG4(c.Get(RegMdmCfg4))
	dev := DEVIATN(c.Get(RegDeviatn))
	pc1 := PKTCTRL1(c.Get(RegPktCtrl1))
	pc0 := PKTCTRL0(c.Get(RegPktCtrl0))

	rc := &RadioConfig{
		Frequency:     hz(FieldsToFrequency(c.Get(RegFreq0), c.Get(RegFreq1), c.Get(RegFreq2))),
		Modulation:    Modulation(mdm2.ModFormat()).String(),
		DataRate:      hz(FieldsToDataRate(MDMCFG3(c.Get(RegMdmCfg3)).DrateM(), mdm4.DrateE())),
		Deviation:     hz(FieldsToDeviation(dev.DeviationM(), dev.DeviationE())),
		Bandwidth:     hz(FieldsToBandwidth(mdm4.ChanBwM(), mdm4.ChanBwE())),
		CRC:           pc0.CrcEn() == 1,
		PreambleBytes: NumPreamble(fieldNumPreamble.get(c.Get(RegMdmCfg1))).Bytes(),
	}
	for name, m := range modulationNames {
		if m == Modulation(mdm2.ModFormat()) {
			rc.Modulation = name
		}
	}

	rc.Sync.Word = uint16(c.Get(RegSync1))<<8 | uint16(c.Get(RegSync0))
	for name, chk := range syncModes {
		if chk == SyncCheck(mdm2.SyncMode()) {
			rc.Sync.Mode = name
		}
	}

	rc.Address.Addr = c.Get(RegAddr)
	rc.Address.Filter = [...]string{"disabled", "device", "low-broadcast", "high-low-broadcast"}[pc1.AdrChk()]

	rc.Packet.Size = c.Get(RegPktLen)
	switch LengthConfig(pc0.LengthConfig()) {
	case LengthFixed:
		rc.Packet.Length = "fixed"
	case LengthVariable:
		rc.Packet.Length = "variable"
	default:
		rc.Packet.Length = "infinite"
	}
	return rc
}
