// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package device defines the 32-bit register I/O primitive consumed by the
// accessors, and a simulated register file for tests and offline use.
package device

import (
	"fmt"
	"log"
)

const (
	// BAD_READ_MASK selects the bits compared against BAD_READ_VALUE.
	BAD_READ_MASK = 0xffff0000
	// BAD_READ_VALUE is returned by hardware for an access that faulted.
	BAD_READ_VALUE = 0xbadf0000
)

// Device is a synchronous 32-bit register space.
type Device interface {
	Read32(addr uint32) uint32
	Write32(addr uint32, value uint32)
}

// IsBadRead returns true if value is the bad-read sentinel pattern.
func IsBadRead(value uint32) bool {
	return (value & BAD_READ_MASK) == BAD_READ_VALUE
}

// Access is one recorded device write.
type Access struct {
	Address uint32
	Value   uint32
}

func (acc *Access) String() string {
	return fmt.Sprintf("0x%08x <- 0x%08x", acc.Address, acc.Value)
}

// Trace logs every access to an underlying device.
type Trace struct {
	Device Device
	Reads  int
	Writes int
}

var _ Device = (*Trace)(nil)

// Read32 reads from the traced device.
func (tr *Trace) Read32(addr uint32) (value uint32) {
	value = tr.Device.Read32(addr)
	tr.Reads++
	if IsBadRead(value) {
		log.Printf("device: read 0x%08x -> 0x%08x (bad read)", addr, value)
	} else {
		log.Printf("device: read 0x%08x -> 0x%08x", addr, value)
	}
	return
}

// Write32 writes to the traced device.
func (tr *Trace) Write32(addr uint32, value uint32) {
	log.Printf("device: write 0x%08x <- 0x%08x", addr, value)
	tr.Writes++
	tr.Device.Write32(addr, value)
}
