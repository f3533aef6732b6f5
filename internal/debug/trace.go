// Package debug provides a nestest-style CPU instruction tracer, built
// entirely on side-effect-free peeks so it can run alongside normal
// emulation without perturbing it.
package debug

import (
	"fmt"
	"strings"

	"nescore/internal/bus"
	"nescore/internal/cpu"
)

// Tracer formats one trace line per CPU instruction boundary, in the
// column layout nestest's log uses: PC, raw opcode bytes, disassembly,
// then registers and cycle count.
type Tracer struct {
	b *bus.Bus
}

// New creates a Tracer over b. The bus must already have a cartridge
// loaded.
func New(b *bus.Bus) *Tracer {
	return &Tracer{b: b}
}

// Line renders the instruction at the CPU's current PC. It must only be
// called at an instruction boundary (b.CPU.AtInstructionBoundary()); calling
// it mid-instruction disassembles whatever opcode happens to sit at PC, not
// the one actually in flight.
func (t *Tracer) Line() string {
	c := t.b.CPU
	pc := c.PC

	opcode := t.b.Peek(pc)
	instr := c.InstructionAt(opcode)

	name := "???"
	var operandLen int
	var mode cpu.AddressingMode
	undoc := false
	if instr != nil {
		name = instr.Name
		mode = instr.Mode
		undoc = instr.Undocumented
		operandLen = cpu.OperandBytes(mode)
	}

	raw := make([]uint8, 1+operandLen)
	raw[0] = opcode
	for i := 0; i < operandLen; i++ {
		raw[1+i] = t.b.Peek(pc + 1 + uint16(i))
	}

	bytesCol := hexBytes(raw)
	disasm := disassemble(name, mode, raw, pc, undoc)

	return fmt.Sprintf("%04X  %-9s %-32s A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d",
		pc, bytesCol, disasm, c.A, c.X, c.Y, c.PeekStatusByte(), c.SP, c.Cycles())
}

func hexBytes(raw []uint8) string {
	parts := make([]string, len(raw))
	for i, b := range raw {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

// disassemble renders the mnemonic and operand in 6502-assembly notation.
// It does not resolve indirect/indexed addresses against live memory, since
// that would require side-effecting reads; it shows the addressing-mode
// syntax only, as nestest's log does for the bytes column's companion text.
func disassemble(name string, mode cpu.AddressingMode, raw []uint8, pc uint16, undoc bool) string {
	var operand string
	switch mode {
	case cpu.Implied:
		operand = ""
	case cpu.Accumulator:
		operand = "A"
	case cpu.Immediate:
		operand = fmt.Sprintf("#$%02X", raw[1])
	case cpu.ZeroPage:
		operand = fmt.Sprintf("$%02X", raw[1])
	case cpu.ZeroPageX:
		operand = fmt.Sprintf("$%02X,X", raw[1])
	case cpu.ZeroPageY:
		operand = fmt.Sprintf("$%02X,Y", raw[1])
	case cpu.Relative:
		target := uint16(int32(pc) + 2 + int32(int8(raw[1])))
		operand = fmt.Sprintf("$%04X", target)
	case cpu.Absolute:
		operand = fmt.Sprintf("$%02X%02X", raw[2], raw[1])
	case cpu.AbsoluteX:
		operand = fmt.Sprintf("$%02X%02X,X", raw[2], raw[1])
	case cpu.AbsoluteY:
		operand = fmt.Sprintf("$%02X%02X,Y", raw[2], raw[1])
	case cpu.Indirect:
		operand = fmt.Sprintf("($%02X%02X)", raw[2], raw[1])
	case cpu.IndexedIndirect:
		operand = fmt.Sprintf("($%02X,X)", raw[1])
	case cpu.IndirectIndexed:
		operand = fmt.Sprintf("($%02X),Y", raw[1])
	}

	text := strings.TrimSpace(name + " " + operand)
	if undoc {
		return "*" + text
	}
	return text
}
