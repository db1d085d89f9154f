package cc1101

import "math/bits"

// msb returns the index of the highest set bit of v, or 0 when v is 0.
func msb(v uint64) uint {
	if v == 0 {
		return 0
	}
	return uint(bits.Len64(v) - 1)
}

// FrequencyToFields converts a carrier frequency in Hz to the FREQ0, FREQ1
// and FREQ2 register values, low byte first.
//
//	f_carrier = FXOSC / 2^16 * FREQ[23:0]
func FrequencyToFields(hz uint64) (freq0, freq1, freq2 byte) {
	freq := (hz << 16) / FXOSC
	return byte(freq), byte(freq >> 8), byte(freq >> 16)
}

// FieldsToFrequency is the inverse of FrequencyToFields. The 24 bit word is
// taken one step up so that converting back and forth is stable.
func FieldsToFrequency(freq0, freq1, freq2 byte) uint64 {
	freq := uint64(freq2)<<16 | uint64(freq1)<<8 | uint64(freq0)
	return (freq + 1) * FXOSC >> 16
}

// DeviationToFields converts a frequency deviation in Hz to DEVIATION_M and
// DEVIATION_E.
//
//	f_dev = FXOSC / 2^17 * (8 + DEVIATION_M) * 2^DEVIATION_E
func DeviationToFields(hz uint64) (m, e byte) {
	exp := msb((hz << 14) / FXOSC)
	q := (hz << 17) / (FXOSC << exp)
	if q < 7 {
		q = 7
	}
	return byte(q-7) & 0x7, byte(exp) & 0x7
}

// FieldsToDeviation returns the deviation in Hz selected by m and e.
func FieldsToDeviation(m, e byte) uint64 {
	return (FXOSC * (8 + uint64(m&0x7)) << (e & 0x7)) >> 17
}

// DataRateToFields converts a symbol rate in Baud to DRATE_M and DRATE_E.
//
//	R_data = (256 + DRATE_M) * 2^DRATE_E / 2^28 * FXOSC
func DataRateToFields(hz uint64) (m, e byte) {
	exp := uint(bits.Len64((hz << 19) / FXOSC))
	q := (hz << 28) / (FXOSC << exp)
	if q < 255 {
		q = 255
	}
	mant := q - 255
	if mant == 256 {
		return 0, byte(exp + 1)
	}
	return byte(mant), byte(exp)
}

// FieldsToDataRate returns the symbol rate in Baud selected by m and e.
func FieldsToDataRate(m, e byte) uint64 {
	return (FXOSC * (256 + uint64(m)) << (e & 0xf)) >> 28
}

// BandwidthToFields converts a receiver channel filter bandwidth in Hz to
// CHANBW_M and CHANBW_E.
//
//	BW_channel = FXOSC / (8 * (4 + CHANBW_M) * 2^CHANBW_E)
func BandwidthToFields(hz uint64) (m, e byte) {
	if hz == 0 {
		return 0x3, 0x3
	}
	exp := msb(FXOSC / (32 * hz))
	q := FXOSC / (hz * 8 << exp)
	if q < 4 {
		q = 4
	}
	return byte(q-4) & 0x3, byte(exp) & 0x3
}

// FieldsToBandwidth returns the channel filter bandwidth in Hz selected by m
// and e.
func FieldsToBandwidth(m, e byte) uint64 {
	return FXOSC / (8 * (4 + uint64(m&0x3)) << (e & 0x3))
}
