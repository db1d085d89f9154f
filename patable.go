package cc1101

// PaColumn holds the PATABLE settings for one frequency band, indexed by
// output power from -30 dBm up to +10 dBm or more.
type PaColumn [10]byte

// Values from the datasheet output power programming tables.
var paTable = [4]PaColumn{
	{0x12, 0x0d, 0x1c, 0x34, 0x51, 0x51, 0x85, 0xcb, 0xc2, 0xc2}, // 315 MHz
	{0x12, 0x0e, 0x1d, 0x34, 0x60, 0x60, 0x84, 0xc8, 0xc0, 0xc0}, // 433 MHz
	{0x03, 0x17, 0x1d, 0x26, 0x37, 0x50, 0x86, 0xcd, 0xc5, 0xc0}, // 868 MHz
	{0x03, 0x0e, 0x1e, 0x27, 0x38, 0x8e, 0x84, 0xcc, 0xc3, 0xc0}, // 915 MHz
}

// SelectPaColumn returns the column of the band closest to hz, even when the
// radio cannot operate at that frequency.
func SelectPaColumn(hz uint64) PaColumn {
	switch {
	case hz <= 363_000_000:
		return paTable[0]
	case hz <= 621_500_000:
		return paTable[1]
	case hz <= 899_990_000:
		return paTable[2]
	default:
		return paTable[3]
	}
}

// PowerIndex returns the column index for an output power in dBm. Buckets
// are not evenly spaced: -11..-6 and -5..0 are adjacent buckets, as are
// 8..10 and everything from 11 up.
func PowerIndex(dbm int) int {
	switch {
	case dbm >= 11:
		return 9
	case dbm >= 8:
		return 8
	case dbm >= 6:
		return 7
	case dbm >= 1:
		return 6
	case dbm >= -5:
		return 5
	case dbm >= -11:
		return 4
	case dbm >= -16:
		return 3
	case dbm >= -21:
		return 2
	case dbm >= -31:
		return 1
	default:
		return 0
	}
}

// ValueForPower returns the PATABLE byte for dbm.
func (c PaColumn) ValueForPower(dbm int) byte {
	return c[PowerIndex(dbm)]
}

// Payload returns the eight bytes written to PATABLE. Entries 5 and 9
// duplicate their neighbours' bucket and are dropped.
func (c PaColumn) Payload() [PaTableSize]byte {
	return [PaTableSize]byte{c[0], c[1], c[2], c[3], c[4], c[6], c[7], c[8]}
}

// PayloadIndex returns the position of the dbm entry within Payload. The
// dropped entries share a slot with their lower neighbour.
func (c PaColumn) PayloadIndex(dbm int) int {
	switch i := PowerIndex(dbm); {
	case i <= 4:
		return i
	case i == 5:
		return 4
	case i == 9:
		return 7
	default:
		return i - 1
	}
}
