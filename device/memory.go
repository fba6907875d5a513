package device

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"slices"
	"strings"

	"github.com/ezrec/drf/manual"
)

// Memory is a simulated register file. Unmapped addresses read as
// BAD_READ_VALUE, and writes map the address.
type Memory struct {
	Verbose bool
	Writes  []Access // Every write, in order.

	regs    map[uint32]uint32
	scripts map[uint32][]uint32
}

var _ Device = (*Memory)(nil)

// NewMemory returns an empty register file.
func NewMemory() (mem *Memory) {
	mem = &Memory{
		regs:    map[uint32]uint32{},
		scripts: map[uint32][]uint32{},
	}
	return
}

// Map sets the stored value of an address.
func (mem *Memory) Map(addr uint32, value uint32) {
	mem.regs[addr] = value
}

// Unmap removes an address, so it reads as BAD_READ_VALUE.
func (mem *Memory) Unmap(addr uint32) {
	delete(mem.regs, addr)
	delete(mem.scripts, addr)
}

// Peek returns the stored value of an address without side effects.
func (mem *Memory) Peek(addr uint32) (value uint32, ok bool) {
	value, ok = mem.regs[addr]
	return
}

// Script queues values returned by the next reads of addr. Once the queue
// drains, the last scripted value stays stored at the address.
func (mem *Memory) Script(addr uint32, values ...uint32) {
	mem.scripts[addr] = append(mem.scripts[addr], values...)
}

// Read32 returns the next scripted value, or the stored value.
func (mem *Memory) Read32(addr uint32) (value uint32) {
	if queue := mem.scripts[addr]; len(queue) != 0 {
		value = queue[0]
		if len(queue) == 1 {
			delete(mem.scripts, addr)
		} else {
			mem.scripts[addr] = queue[1:]
		}
		mem.regs[addr] = value
	} else {
		var ok bool
		value, ok = mem.regs[addr]
		if !ok {
			value = BAD_READ_VALUE
		}
	}

	if mem.Verbose {
		log.Printf("device: memory 0x%08x -> 0x%08x", addr, value)
	}

	return
}

// Write32 stores value at addr, and records the write.
func (mem *Memory) Write32(addr uint32, value uint32) {
	if mem.Verbose {
		log.Printf("device: memory 0x%08x <- 0x%08x", addr, value)
	}

	mem.regs[addr] = value
	mem.Writes = append(mem.Writes, Access{Address: addr, Value: value})
}

// Reset maps every instance of every register of the manual to its hardware
// init value, or zero when the register has none. Scripts and the write log
// are cleared.
func (mem *Memory) Reset(man *manual.Manual) {
	clear(mem.scripts)
	mem.Writes = nil

	for reg := range man.Registers() {
		value, _ := reg.HwInit()
		for idx := range reg.Indices() {
			addr, err := reg.Address(idx...)
			if err != nil {
				continue
			}
			mem.regs[addr] = value
		}
	}
}

// Marshal writes the stored values as '0xADDR 0xVALUE' lines, by address.
func (mem *Memory) Marshal(file io.Writer) (err error) {
	for _, addr := range slices.Sorted(maps.Keys(mem.regs)) {
		_, err = fmt.Fprintf(file, "0x%08x 0x%08x\n", addr, mem.regs[addr])
		if err != nil {
			return
		}
	}

	return
}

// Unmarshal loads '0xADDR 0xVALUE' lines over the stored values. Blank lines
// and '#' comments are ignored.
func (mem *Memory) Unmarshal(file io.Reader) (err error) {
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		text, _, _ := strings.Cut(line, "#")
		text = strings.TrimSpace(text)
		if len(text) == 0 {
			continue
		}

		var addr, value uint32
		var extra string
		n, _ := fmt.Sscanf(text, "%v %v %s", &addr, &value, &extra)
		if n != 2 {
			err = &ErrSyntax{LineNo: lineNo, Line: line, Err: ErrDumpLine}
			return
		}

		mem.regs[addr] = value
	}

	err = scanner.Err()

	return
}
