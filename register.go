package cc1101

// field is a bit range inside a single register byte.
type field struct {
	offset uint8
	width  uint8
}

func (f field) mask() byte { return byte(1<<f.width-1) << f.offset }

func (f field) get(b byte) byte { return (b & f.mask()) >> f.offset }

func (f field) set(b, v byte) byte { return b&^f.mask() | (v<<f.offset)&f.mask() }

var (
	fieldPqt          = field{5, 3}
	fieldCrcAutoflush = field{3, 1}
	fieldAppendStatus = field{2, 1}
	fieldAdrChk       = field{0, 2}

	fieldWhiteData    = field{6, 1}
	fieldPktFormat    = field{4, 2}
	fieldCrcEn        = field{2, 1}
	fieldLengthConfig = field{0, 2}

	fieldFreqIf = field{0, 5}

	fieldChanBwE = field{6, 2}
	fieldChanBwM = field{4, 2}
	fieldDrateE  = field{0, 4}
	fieldDrateM  = field{0, 8}

	fieldDemDcfiltOff = field{7, 1}
	fieldModFormat    = field{4, 3}
	fieldManchesterEn = field{3, 1}
	fieldSyncMode     = field{0, 3}

	fieldDeviationE = field{4, 3}
	fieldDeviationM = field{0, 3}

	fieldFsAutocal   = field{4, 2}
	fieldPoTimeout   = field{2, 2}
	fieldPinCtrlEn   = field{1, 1}
	fieldXoscForceOn = field{0, 1}

	fieldMaxDvgaGain = field{6, 2}
	fieldMaxLnaGain  = field{3, 3}
	fieldMagnTarget  = field{0, 3}

	fieldNumPreamble = field{4, 3}
	fieldFifoThr     = field{0, 4}
	fieldPaPower     = field{0, 3}

	fieldMarcState = field{0, 5}

	fieldRxFifoOverflow = field{7, 1}
	fieldNumRxBytes     = field{0, 7}

	fieldTxFifoUnderflow = field{7, 1}
	fieldNumTxBytes      = field{0, 7}
)

// Reset values from the datasheet register description.
const (
	DefaultPktCtrl1 PKTCTRL1 = 0x04
	DefaultPktCtrl0 PKTCTRL0 = 0x45
	DefaultFsCtrl1  FSCTRL1  = 0x0f
	DefaultMdmCfg4  MDMCFG4  = 0x8c
	DefaultMdmCfg3  MDMCFG3  = 0x22
	DefaultMdmCfg2  MDMCFG2  = 0x02
	DefaultDeviatn  DEVIATN  = 0x47
	DefaultMcsm0    MCSM0    = 0x04
	DefaultAgcCtrl2 AGCCTRL2 = 0x03

	DefaultSyncWord uint16 = 0xd391
	DefaultAddr     byte   = 0x00
	DefaultPktLen   byte   = 0xff
)

// PKTCTRL1 is the packet automation control register.
type PKTCTRL1 byte

func (r PKTCTRL1) Pqt() byte                  { return fieldPqt.get(byte(r)) }
func (r PKTCTRL1) CrcAutoflush() byte         { return fieldCrcAutoflush.get(byte(r)) }
func (r PKTCTRL1) AppendStatus() byte         { return fieldAppendStatus.get(byte(r)) }
func (r PKTCTRL1) AdrChk() byte               { return fieldAdrChk.get(byte(r)) }
func (r PKTCTRL1) WithPqt(v byte) PKTCTRL1    { return PKTCTRL1(fieldPqt.set(byte(r), v)) }
func (r PKTCTRL1) WithAdrChk(v byte) PKTCTRL1 { return PKTCTRL1(fieldAdrChk.set(byte(r), v)) }
func (r PKTCTRL1) WithAppendStatus(v byte) PKTCTRL1 {
	return PKTCTRL1(fieldAppendStatus.set(byte(r), v))
}
func (r PKTCTRL1) WithCrcAutoflush(v byte) PKTCTRL1 {
	return PKTCTRL1(fieldCrcAutoflush.set(byte(r), v))
}

// PKTCTRL0 is the packet automation control register.
type PKTCTRL0 byte

func (r PKTCTRL0) WhiteData() byte               { return fieldWhiteData.get(byte(r)) }
func (r PKTCTRL0) PktFormat() byte               { return fieldPktFormat.get(byte(r)) }
func (r PKTCTRL0) CrcEn() byte                   { return fieldCrcEn.get(byte(r)) }
func (r PKTCTRL0) LengthConfig() byte            { return fieldLengthConfig.get(byte(r)) }
func (r PKTCTRL0) WithWhiteData(v byte) PKTCTRL0 { return PKTCTRL0(fieldWhiteData.set(byte(r), v)) }
func (r PKTCTRL0) WithPktFormat(v byte) PKTCTRL0 { return PKTCTRL0(fieldPktFormat.set(byte(r), v)) }
func (r PKTCTRL0) WithCrcEn(v byte) PKTCTRL0     { return PKTCTRL0(fieldCrcEn.set(byte(r), v)) }
func (r PKTCTRL0) WithLengthConfig(v byte) PKTCTRL0 {
	return PKTCTRL0(fieldLengthConfig.set(byte(r), v))
}

// FSCTRL1 holds the intermediate frequency, f_if = FXOSC / 2^10 * FREQ_IF.
type FSCTRL1 byte

func (r FSCTRL1) FreqIf() byte              { return fieldFreqIf.get(byte(r)) }
func (r FSCTRL1) WithFreqIf(v byte) FSCTRL1 { return FSCTRL1(fieldFreqIf.set(byte(r), v)) }

// MDMCFG4 holds the channel bandwidth and the data rate exponent.
type MDMCFG4 byte

func (r MDMCFG4) ChanBwE() byte              { return fieldChanBwE.get(byte(r)) }
func (r MDMCFG4) ChanBwM() byte              { return fieldChanBwM.get(byte(r)) }
func (r MDMCFG4) DrateE() byte               { return fieldDrateE.get(byte(r)) }
func (r MDMCFG4) WithChanBwE(v byte) MDMCFG4 { return MDMCFG4(fieldChanBwE.set(byte(r), v)) }
func (r MDMCFG4) WithChanBwM(v byte) MDMCFG4 { return MDMCFG4(fieldChanBwM.set(byte(r), v)) }
func (r MDMCFG4) WithDrateE(v byte) MDMCFG4  { return MDMCFG4(fieldDrateE.set(byte(r), v)) }

// MDMCFG3 holds the data rate mantissa.
type MDMCFG3 byte

func (r MDMCFG3) DrateM() byte              { return fieldDrateM.get(byte(r)) }
func (r MDMCFG3) WithDrateM(v byte) MDMCFG3 { return MDMCFG3(fieldDrateM.set(byte(r), v)) }

// MDMCFG2 holds modulation format and sync word qualifier mode.
type MDMCFG2 byte

func (r MDMCFG2) DemDcfiltOff() byte              { return fieldDemDcfiltOff.get(byte(r)) }
func (r MDMCFG2) ModFormat() byte                 { return fieldModFormat.get(byte(r)) }
func (r MDMCFG2) ManchesterEn() byte              { return fieldManchesterEn.get(byte(r)) }
func (r MDMCFG2) SyncMode() byte                  { return fieldSyncMode.get(byte(r)) }
func (r MDMCFG2) WithModFormat(v byte) MDMCFG2    { return MDMCFG2(fieldModFormat.set(byte(r), v)) }
func (r MDMCFG2) WithSyncMode(v byte) MDMCFG2     { return MDMCFG2(fieldSyncMode.set(byte(r), v)) }
func (r MDMCFG2) WithManchesterEn(v byte) MDMCFG2 { return MDMCFG2(fieldManchesterEn.set(byte(r), v)) }
func (r MDMCFG2) WithDemDcfiltOff(v byte) MDMCFG2 {
	return MDMCFG2(fieldDemDcfiltOff.set(byte(r), v))
}

// DEVIATN holds the frequency deviation, f_dev = FXOSC / 2^17 * (8 + M) * 2^E.
type DEVIATN byte

func (r DEVIATN) DeviationE() byte              { return fieldDeviationE.get(byte(r)) }
func (r DEVIATN) DeviationM() byte              { return fieldDeviationM.get(byte(r)) }
func (r DEVIATN) WithDeviationE(v byte) DEVIATN { return DEVIATN(fieldDeviationE.set(byte(r), v)) }
func (r DEVIATN) WithDeviationM(v byte) DEVIATN { return DEVIATN(fieldDeviationM.set(byte(r), v)) }

// MCSM0 is the main radio control state machine configuration.
type MCSM0 byte

func (r MCSM0) FsAutocal() byte              { return fieldFsAutocal.get(byte(r)) }
func (r MCSM0) PoTimeout() byte              { return fieldPoTimeout.get(byte(r)) }
func (r MCSM0) PinCtrlEn() byte              { return fieldPinCtrlEn.get(byte(r)) }
func (r MCSM0) XoscForceOn() byte            { return fieldXoscForceOn.get(byte(r)) }
func (r MCSM0) WithFsAutocal(v byte) MCSM0   { return MCSM0(fieldFsAutocal.set(byte(r), v)) }
func (r MCSM0) WithPoTimeout(v byte) MCSM0   { return MCSM0(fieldPoTimeout.set(byte(r), v)) }
func (r MCSM0) WithPinCtrlEn(v byte) MCSM0   { return MCSM0(fieldPinCtrlEn.set(byte(r), v)) }
func (r MCSM0) WithXoscForceOn(v byte) MCSM0 { return MCSM0(fieldXoscForceOn.set(byte(r), v)) }

// AGCCTRL2 is the AGC control register.
type AGCCTRL2 byte

func (r AGCCTRL2) MaxDvgaGain() byte               { return fieldMaxDvgaGain.get(byte(r)) }
func (r AGCCTRL2) MaxLnaGain() byte                { return fieldMaxLnaGain.get(byte(r)) }
func (r AGCCTRL2) MagnTarget() byte                { return fieldMagnTarget.get(byte(r)) }
func (r AGCCTRL2) WithMaxDvgaGain(v byte) AGCCTRL2 { return AGCCTRL2(fieldMaxDvgaGain.set(byte(r), v)) }
func (r AGCCTRL2) WithMaxLnaGain(v byte) AGCCTRL2  { return AGCCTRL2(fieldMaxLnaGain.set(byte(r), v)) }
func (r AGCCTRL2) WithMagnTarget(v byte) AGCCTRL2  { return AGCCTRL2(fieldMagnTarget.set(byte(r), v)) }

// MARCSTATE is the read-only main radio control state.
type MARCSTATE byte

func (r MARCSTATE) MarcState() MachineState { return MachineState(fieldMarcState.get(byte(r))) }

// RXBYTES is the read-only RX FIFO status.
type RXBYTES byte

func (r RXBYTES) Overflow() bool   { return fieldRxFifoOverflow.get(byte(r)) == 1 }
func (r RXBYTES) NumRxBytes() byte { return fieldNumRxBytes.get(byte(r)) }

// TXBYTES is the read-only TX FIFO status.
type TXBYTES byte

func (r TXBYTES) Underflow() bool  { return fieldTxFifoUnderflow.get(byte(r)) == 1 }
func (r TXBYTES) NumTxBytes() byte { return fieldNumTxBytes.get(byte(r)) }

// modify reads reg, applies fn and writes the result back. It is not atomic
// with respect to anything else on the bus.
func (d *Dev) modify(reg ConfigRegister, fn func(byte) byte) error {
	r, err := d.readConfig(reg)
	if err != nil {
		return err
	}
	return d.writeConfig(reg, fn(r))
}
