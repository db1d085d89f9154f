package cc1101

import "fmt"

// Modulation is the MDMCFG2.MOD_FORMAT code.
type Modulation byte

const (
	Mod2FSK Modulation = 0b000
	ModGFSK Modulation = 0b001
	ModOOK  Modulation = 0b011
	Mod4FSK Modulation = 0b100
	ModMSK  Modulation = 0b111
)

func (m Modulation) Value() byte { return byte(m) }

func (m Modulation) String() string {
	switch m {
	case Mod2FSK:
		return "2-FSK"
	case ModGFSK:
		return "GFSK"
	case ModOOK:
		return "ASK/OOK"
	case Mod4FSK:
		return "4-FSK"
	case ModMSK:
		return "MSK"
	}
	return fmt.Sprintf("Modulation(%d)", byte(m))
}

// SyncCheck is the MDMCFG2.SYNC_MODE code.
type SyncCheck byte

const (
	SyncCheckDisabled SyncCheck = 0x00
	SyncCheck15of16   SyncCheck = 0x01
	SyncCheck16of16   SyncCheck = 0x02
	SyncCheck30of32   SyncCheck = 0x03
	SyncCheckCarrier  SyncCheck = 0x04
	SyncCheck15of16CS SyncCheck = 0x05
	SyncCheck16of16CS SyncCheck = 0x06
	SyncCheck30of32CS SyncCheck = 0x07
)

func (s SyncCheck) Value() byte { return byte(s) }

// SyncMode selects sync word qualification and the word itself.
type SyncMode struct {
	check SyncCheck
	word  uint16
}

// SyncDisabled turns sync word detection off and restores the reset word.
func SyncDisabled() SyncMode { return SyncMode{SyncCheckDisabled, DefaultSyncWord} }

// SyncMatchPartial accepts 15 of 16 sync word bits.
func SyncMatchPartial(word uint16) SyncMode { return SyncMode{SyncCheck15of16, word} }

// SyncMatchPartialRepeated accepts 30 of 32 bits of the word sent twice.
func SyncMatchPartialRepeated(word uint16) SyncMode { return SyncMode{SyncCheck30of32, word} }

// SyncMatchFull requires all 16 sync word bits.
func SyncMatchFull(word uint16) SyncMode { return SyncMode{SyncCheck16of16, word} }

// WithCarrierSense additionally requires carrier sense above threshold. On
// SyncDisabled it leaves carrier sense as the only qualifier.
func (s SyncMode) WithCarrierSense() SyncMode {
	s.check |= SyncCheckCarrier
	return s
}

func (s SyncMode) Check() SyncCheck { return s.check }
func (s SyncMode) Word() uint16     { return s.word }

// AddressCheck is the PKTCTRL1.ADR_CHK code.
type AddressCheck byte

const (
	AddressCheckDisabled             AddressCheck = 0x00
	AddressCheckSelf                 AddressCheck = 0x01
	AddressCheckSelfLowBroadcast     AddressCheck = 0x02
	AddressCheckSelfHighLowBroadcast AddressCheck = 0x03
)

func (a AddressCheck) Value() byte { return byte(a) }

// AddressFilter selects packet address filtering and the device address.
type AddressFilter struct {
	check AddressCheck
	addr  byte
}

// AddressDisabled turns filtering off and restores the reset address.
func AddressDisabled() AddressFilter { return AddressFilter{AddressCheckDisabled, DefaultAddr} }

// AddressDevice accepts only packets sent to addr.
func AddressDevice(addr byte) AddressFilter { return AddressFilter{AddressCheckSelf, addr} }

// AddressDeviceLowBroadcast also accepts broadcast address 0x00.
func AddressDeviceLowBroadcast(addr byte) AddressFilter {
	return AddressFilter{AddressCheckSelfLowBroadcast, addr}
}

// AddressDeviceHighLowBroadcast also accepts broadcast addresses 0x00 and
// 0xff.
func AddressDeviceHighLowBroadcast(addr byte) AddressFilter {
	return AddressFilter{AddressCheckSelfHighLowBroadcast, addr}
}

func (a AddressFilter) Check() AddressCheck { return a.check }
func (a AddressFilter) Addr() byte          { return a.addr }

// LengthConfig is the PKTCTRL0.LENGTH_CONFIG code.
type LengthConfig byte

const (
	LengthFixed    LengthConfig = 0x00
	LengthVariable LengthConfig = 0x01
	LengthInfinite LengthConfig = 0x02
)

func (l LengthConfig) Value() byte { return byte(l) }

// PacketLength selects the packet length mode and the PKTLEN value.
type PacketLength struct {
	config LengthConfig
	length byte
}

// PacketFixed configures fixed length packets of n bytes.
func PacketFixed(n byte) PacketLength { return PacketLength{LengthFixed, n} }

// PacketVariable takes the length from the first byte after the sync word
// and drops packets longer than n.
func PacketVariable(n byte) PacketLength { return PacketLength{LengthVariable, n} }

// PacketInfinite disables length handling and restores the reset PKTLEN.
func PacketInfinite() PacketLength { return PacketLength{LengthInfinite, DefaultPktLen} }

func (p PacketLength) Config() LengthConfig { return p.config }
func (p PacketLength) Length() byte         { return p.length }

// RadioMode is a driver level operating mode.
type RadioMode int

const (
	ModeIdle RadioMode = iota
	ModeReceive
	ModeTransmit
)

func (m RadioMode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeReceive:
		return "receive"
	case ModeTransmit:
		return "transmit"
	}
	return fmt.Sprintf("RadioMode(%d)", int(m))
}

// AutoCalibration is the MCSM0.FS_AUTOCAL code.
type AutoCalibration byte

const (
	AutoCalDisabled       AutoCalibration = 0x00
	AutoCalFromIdle       AutoCalibration = 0x01
	AutoCalToIdle         AutoCalibration = 0x02
	AutoCalToIdleEvery4th AutoCalibration = 0x03
)

func (a AutoCalibration) Value() byte { return byte(a) }

// PoTimeout is the MCSM0.PO_TIMEOUT code, in XOSC expiry counts.
type PoTimeout byte

const (
	PoTimeout1   PoTimeout = 0x00
	PoTimeout16  PoTimeout = 0x01
	PoTimeout64  PoTimeout = 0x02
	PoTimeout256 PoTimeout = 0x03
)

func (p PoTimeout) Value() byte { return byte(p) }

// NumPreamble is the MDMCFG1.NUM_PREAMBLE code.
type NumPreamble byte

const (
	Preamble2  NumPreamble = 0x00
	Preamble3  NumPreamble = 0x01
	Preamble4  NumPreamble = 0x02
	Preamble6  NumPreamble = 0x03
	Preamble8  NumPreamble = 0x04
	Preamble12 NumPreamble = 0x05
	Preamble16 NumPreamble = 0x06
	Preamble24 NumPreamble = 0x07
)

func (n NumPreamble) Value() byte { return byte(n) }

var preambleBytes = [...]int{2, 3, 4, 6, 8, 12, 16, 24}

// Bytes returns the number of preamble bytes sent.
func (n NumPreamble) Bytes() int { return preambleBytes[n&0x7] }

// PreambleFor returns the shortest setting with at least n bytes.
func PreambleFor(n int) NumPreamble {
	for i, b := range preambleBytes {
		if b >= n {
			return NumPreamble(i)
		}
	}
	return Preamble24
}

// FifoThreshold is the FIFOTHR.FIFO_THR code. The names give the TX and RX
// byte counts at which the threshold is crossed.
type FifoThreshold byte

const (
	FifoTX61RX4 FifoThreshold = iota
	FifoTX57RX8
	FifoTX53RX12
	FifoTX49RX16
	FifoTX45RX20
	FifoTX41RX24
	FifoTX37RX28
	FifoTX33RX32
	FifoTX29RX36
	FifoTX25RX40
	FifoTX21RX44
	FifoTX17RX48
	FifoTX13RX52
	FifoTX9RX56
	FifoTX5RX60
	FifoTX1RX64
)

func (f FifoThreshold) Value() byte { return byte(f) }

// RXBytes is the RX FIFO fill level that crosses the threshold.
func (f FifoThreshold) RXBytes() int { return 4 * (int(f&0xf) + 1) }

// GdoConfig is the IOCFGx.GDOx_CFG signal selection.
type GdoConfig byte

const (
	GdoRxFifoFilled         GdoConfig = 0x00
	GdoRxFifoFilledEndOfPkt GdoConfig = 0x01
	GdoTxFifoFilled         GdoConfig = 0x02
	GdoTxFifoFull           GdoConfig = 0x03
	GdoRxFifoOverflow       GdoConfig = 0x04
	GdoTxFifoUnderflow      GdoConfig = 0x05
	GdoSyncWord             GdoConfig = 0x06
	GdoCrcOk                GdoConfig = 0x07
	GdoPqtReached           GdoConfig = 0x08
	GdoChannelClear         GdoConfig = 0x09
	GdoPllLock              GdoConfig = 0x0a
	GdoSerialClock          GdoConfig = 0x0b
	GdoSerialSyncDataOut    GdoConfig = 0x0c
	GdoSerialDataOut        GdoConfig = 0x0d
	GdoCarrierSense         GdoConfig = 0x0e
	GdoLastCrcOk            GdoConfig = 0x0f
	GdoRxHardData1          GdoConfig = 0x16
	GdoRxHardData0          GdoConfig = 0x17
	GdoPaPd                 GdoConfig = 0x1b
	GdoLnaPd                GdoConfig = 0x1c
	GdoRxSymbolTick         GdoConfig = 0x1d
	GdoWorEvnt0             GdoConfig = 0x24
	GdoWorEvnt1             GdoConfig = 0x25
	GdoClk256               GdoConfig = 0x26
	GdoClk32k               GdoConfig = 0x27
	GdoChipRdyN             GdoConfig = 0x29
	GdoXoscStable           GdoConfig = 0x2b
	GdoHighImpedance        GdoConfig = 0x2e
	GdoHardwireTo0          GdoConfig = 0x2f
	GdoClkXoscDiv1          GdoConfig = 0x30
	GdoClkXoscDiv192        GdoConfig = 0x3f
)

func (g GdoConfig) Value() byte { return byte(g) }

var gdoNames = map[GdoConfig]string{
	GdoRxFifoFilled:         "RX_FIFO_FILLED",
	GdoRxFifoFilledEndOfPkt: "RX_FIFO_FILLED_END_OF_PKT",
	GdoTxFifoFilled:         "TX_FIFO_FILLED",
	GdoTxFifoFull:           "TX_FIFO_FULL",
	GdoRxFifoOverflow:       "RX_FIFO_OVERFLOW",
	GdoTxFifoUnderflow:      "TX_FIFO_UNDERFLOW",
	GdoSyncWord:             "SYNC_WORD",
	GdoCrcOk:                "CRC_OK",
	GdoPqtReached:           "PQT_REACHED",
	GdoChannelClear:         "CHANNEL_CLEAR",
	GdoPllLock:              "PLL_LOCK",
	GdoSerialClock:          "SERIAL_CLOCK",
	GdoSerialSyncDataOut:    "SERIAL_SYNC_DATA_OUT",
	GdoSerialDataOut:        "SERIAL_DATA_OUT",
	GdoCarrierSense:         "CARRIER_SENSE",
	GdoLastCrcOk:            "LAST_CRC_OK",
	GdoRxHardData1:          "RX_HARD_DATA_1",
	GdoRxHardData0:          "RX_HARD_DATA_0",
	GdoPaPd:                 "PA_PD",
	GdoLnaPd:                "LNA_PD",
	GdoRxSymbolTick:         "RX_SYMBOL_TICK",
	GdoWorEvnt0:             "WOR_EVNT0",
	GdoWorEvnt1:             "WOR_EVNT1",
	GdoClk256:               "CLK_256",
	GdoClk32k:               "CLK_32K",
	GdoChipRdyN:             "CHIP_RDYN",
	GdoXoscStable:           "XOSC_STABLE",
	GdoHighImpedance:        "HIGH_IMPEDANCE",
	GdoHardwireTo0:          "HARDWIRE_TO_0",
}

var xoscDividers = [...]string{
	"1", "1.5", "2", "3", "4", "6", "8", "12", "16", "24", "32", "48", "64",
	"96", "128", "192",
}

func (g GdoConfig) String() string {
	g &= 0x3f
	if g >= GdoClkXoscDiv1 {
		return "CLK_XOSC/" + xoscDividers[g-GdoClkXoscDiv1]
	}
	if n, ok := gdoNames[g]; ok {
		return n
	}
	return fmt.Sprintf("GdoConfig(0x%02x)", byte(g))
}
