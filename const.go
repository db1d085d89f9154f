package cc1101

import "fmt"

type Access byte
type ConfigRegister byte
type StatusRegister byte
type Command byte
type MachineState byte

// FXOSC is the reference crystal frequency in Hz.
const FXOSC uint64 = 26_000_000

const (
	WriteSingle Access = 0x00
	WriteBurst  Access = 0x40
	ReadSingle  Access = 0x80
	ReadBurst   Access = 0xc0
)

const (
	RegIocfg2   ConfigRegister = 0x00
	RegIocfg1   ConfigRegister = 0x01
	RegIocfg0   ConfigRegister = 0x02
	RegFifoThr  ConfigRegister = 0x03
	RegSync1    ConfigRegister = 0x04
	RegSync0    ConfigRegister = 0x05
	RegPktLen   ConfigRegister = 0x06
	RegPktCtrl1 ConfigRegister = 0x07
	RegPktCtrl0 ConfigRegister = 0x08
	RegAddr     ConfigRegister = 0x09
	RegChanNr   ConfigRegister = 0x0a
	RegFsCtrl1  ConfigRegister = 0x0b
	RegFsCtrl0  ConfigRegister = 0x0c
	RegFreq2    ConfigRegister = 0x0d
	RegFreq1    ConfigRegister = 0x0e
	RegFreq0    ConfigRegister = 0x0f
	RegMdmCfg4  ConfigRegister = 0x10
	RegMdmCfg3  ConfigRegister = 0x11
	RegMdmCfg2  ConfigRegister = 0x12
	RegMdmCfg1  ConfigRegister = 0x13
	RegMdmCfg0  ConfigRegister = 0x14
	RegDeviatn  ConfigRegister = 0x15
	RegMcsm2    ConfigRegister = 0x16
	RegMcsm1    ConfigRegister = 0x17
	RegMcsm0    ConfigRegister = 0x18
	RegFocCfg   ConfigRegister = 0x19
	RegBsCfg    ConfigRegister = 0x1a
	RegAgcCtrl2 ConfigRegister = 0x1b
	RegAgcCtrl1 ConfigRegister = 0x1c
	RegAgcCtrl0 ConfigRegister = 0x1d
	RegWorEvt1  ConfigRegister = 0x1e
	RegWorEvt0  ConfigRegister = 0x1f
	RegWorCtrl  ConfigRegister = 0x20
	RegFrend1   ConfigRegister = 0x21
	RegFrend0   ConfigRegister = 0x22
	RegFsCal3   ConfigRegister = 0x23
	RegFsCal2   ConfigRegister = 0x24
	RegFsCal1   ConfigRegister = 0x25
	RegFsCal0   ConfigRegister = 0x26
	RegRcCtrl1  ConfigRegister = 0x27
	RegRcCtrl0  ConfigRegister = 0x28
	RegFsTest   ConfigRegister = 0x29
	RegPTest    ConfigRegister = 0x2a
	RegAgcTest  ConfigRegister = 0x2b
	RegTest2    ConfigRegister = 0x2c
	RegTest1    ConfigRegister = 0x2d
	RegTest0    ConfigRegister = 0x2e
)

// Status registers share addresses with the strobes and are only reachable
// with the burst bit set in the header.
const (
	StatusPartNum   StatusRegister = 0x30
	StatusVersion   StatusRegister = 0x31
	StatusFreqEst   StatusRegister = 0x32
	StatusLqi       StatusRegister = 0x33
	StatusRssi      StatusRegister = 0x34
	StatusMarcState StatusRegister = 0x35
	StatusWorTime1  StatusRegister = 0x36
	StatusWorTime0  StatusRegister = 0x37
	StatusPktStatus StatusRegister = 0x38
	StatusVcoVcDac  StatusRegister = 0x39
	StatusTxBytes   StatusRegister = 0x3a
	StatusRxBytes   StatusRegister = 0x3b
	StatusRcCtrl1   StatusRegister = 0x3c
	StatusRcCtrl0   StatusRegister = 0x3d
)

const (
	StrobeSRES    Command = 0x30 // reset chip
	StrobeSFSTXON Command = 0x31 // enable and calibrate frequency synthesizer
	StrobeSXOFF   Command = 0x32 // turn off crystal oscillator
	StrobeSCAL    Command = 0x33 // calibrate frequency synthesizer and disable
	StrobeSRX     Command = 0x34
	StrobeSTX     Command = 0x35
	StrobeSIDLE   Command = 0x36
	StrobeSAFC    Command = 0x37
	StrobeSWOR    Command = 0x38 // start automatic RX polling sequence
	StrobeSPWD    Command = 0x39 // power down when CSn goes high
	StrobeSFRX    Command = 0x3a
	StrobeSFTX    Command = 0x3b
	StrobeSWORRST Command = 0x3c
	StrobeSNOP    Command = 0x3d
	CmdPATable    Command = 0x3e
	CmdFIFO       Command = 0x3f
)

const (
	StateSleep           MachineState = 0x00
	StateIdle            MachineState = 0x01
	StateXoff            MachineState = 0x02
	StateVcoOnMc         MachineState = 0x03
	StateRegOnMc         MachineState = 0x04
	StateManCal          MachineState = 0x05
	StateVcoOn           MachineState = 0x06
	StateRegOn           MachineState = 0x07
	StateStartCal        MachineState = 0x08
	StateBwBoost         MachineState = 0x09
	StateFsLock          MachineState = 0x0a
	StateIfAdcOn         MachineState = 0x0b
	StateEndCal          MachineState = 0x0c
	StateRx              MachineState = 0x0d
	StateRxEnd           MachineState = 0x0e
	StateRxRst           MachineState = 0x0f
	StateTxRxSwitch      MachineState = 0x10
	StateRxFifoOverflow  MachineState = 0x11
	StateFsTxOn          MachineState = 0x12
	StateTx              MachineState = 0x13
	StateTxEnd           MachineState = 0x14
	StateRxTxSwitch      MachineState = 0x15
	StateTxFifoUnderflow MachineState = 0x16
)

const (
	PartNumCC1101 byte = 0x00
	VersionCC1101 byte = 0x14
	FifoSize           = 64
	PaTableSize        = 8
	// MaxPacketLength leaves room for the length byte and the two
	// appended status bytes.
	MaxPacketLength = FifoSize - 1 - 2
)

func (a Access) Offset() byte { return byte(a) }

func (r ConfigRegister) Addr() byte { return byte(r) }

func (r StatusRegister) Addr() byte { return byte(r) }

func (c Command) Addr() byte { return byte(c) }

func (s MachineState) Value() byte { return byte(s) }

var configNames = [...]string{
	"IOCFG2", "IOCFG1", "IOCFG0", "FIFOTHR", "SYNC1", "SYNC0", "PKTLEN",
	"PKTCTRL1", "PKTCTRL0", "ADDR", "CHANNR", "FSCTRL1", "FSCTRL0", "FREQ2",
	"FREQ1", "FREQ0", "MDMCFG4", "MDMCFG3", "MDMCFG2", "MDMCFG1", "MDMCFG0",
	"DEVIATN", "MCSM2", "MCSM1", "MCSM0", "FOCCFG", "BSCFG", "AGCCTRL2",
	"AGCCTRL1", "AGCCTRL0", "WOREVT1", "WOREVT0", "WORCTRL", "FREND1",
	"FREND0", "FSCAL3", "FSCAL2", "FSCAL1", "FSCAL0", "RCCTRL1", "RCCTRL0",
	"FSTEST", "PTEST", "AGCTEST", "TEST2", "TEST1", "TEST0",
}

func (r ConfigRegister) String() string {
	if int(r) < len(configNames) {
		return configNames[r]
	}
	return fmt.Sprintf("ConfigRegister(0x%02x)", byte(r))
}

var statusNames = [...]string{
	"PARTNUM", "VERSION", "FREQEST", "LQI", "RSSI", "MARCSTATE", "WORTIME1",
	"WORTIME0", "PKTSTATUS", "VCO_VC_DAC", "TXBYTES", "RXBYTES",
	"RCCTRL1_STATUS", "RCCTRL0_STATUS",
}

func (r StatusRegister) String() string {
	if r >= StatusPartNum && int(r-StatusPartNum) < len(statusNames) {
		return statusNames[r-StatusPartNum]
	}
	return fmt.Sprintf("StatusRegister(0x%02x)", byte(r))
}

var commandNames = [...]string{
	"SRES", "SFSTXON", "SXOFF", "SCAL", "SRX", "STX", "SIDLE", "SAFC", "SWOR",
	"SPWD", "SFRX", "SFTX", "SWORRST", "SNOP", "PATABLE", "FIFO",
}

func (c Command) String() string {
	if c >= StrobeSRES && int(c-StrobeSRES) < len(commandNames) {
		return commandNames[c-StrobeSRES]
	}
	return fmt.Sprintf("Command(0x%02x)", byte(c))
}

var stateNames = [...]string{
	"SLEEP", "IDLE", "XOFF", "VCOON_MC", "REGON_MC", "MANCAL", "VCOON",
	"REGON", "STARTCAL", "BWBOOST", "FS_LOCK", "IFADCON", "ENDCAL", "RX",
	"RX_END", "RX_RST", "TXRX_SWITCH", "RXFIFO_OVERFLOW", "FSTXON", "TX",
	"TX_END", "RXTX_SWITCH", "TXFIFO_UNDERFLOW",
}

func (s MachineState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("MachineState(0x%02x)", byte(s))
}
