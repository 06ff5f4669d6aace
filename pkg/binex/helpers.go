package binex

import (
	"encoding/binary"

	gbinary "github.com/de-bkg/gnssdata/pkg/binary"
)

func orderOf(bigEndian bool) binary.ByteOrder {
	if bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func putU16(buf []byte, v uint16, order binary.ByteOrder) { _ = gbinary.PutU16(buf, v, order) }
func putI32(buf []byte, v int32, order binary.ByteOrder)  { _ = gbinary.PutI32(buf, v, order) }
func putF32(buf []byte, v float32, order binary.ByteOrder) { _ = gbinary.PutF32(buf, v, order) }
func putF64(buf []byte, v float64, order binary.ByteOrder) { _ = gbinary.PutF64(buf, v, order) }

func getU16(buf []byte, order binary.ByteOrder) uint16 {
	v, _ := gbinary.ReadU16(buf, order)
	return v
}
func getI32(buf []byte, order binary.ByteOrder) int32 {
	v, _ := gbinary.ReadI32(buf, order)
	return v
}
func getF32(buf []byte, order binary.ByteOrder) float32 {
	v, _ := gbinary.ReadF32(buf, order)
	return v
}
func getF64(buf []byte, order binary.ByteOrder) float64 {
	v, _ := gbinary.ReadF64(buf, order)
	return v
}
