// Package cpu implements the 6502 CPU emulation for the NES.
package cpu

// AddressingMode identifies how an instruction's operand is located.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

// CPU constants
const (
	stackBase = 0x0100

	nFlagMask  = 0x80
	vFlagMask  = 0x40
	unusedMask = 0x20
	bFlagMask  = 0x10
	dFlagMask  = 0x08
	iFlagMask  = 0x04
	zFlagMask  = 0x02
	cFlagMask  = 0x01

	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
)

// SourceKind tags the three shapes an instruction's DataSource can take, per
// the operation table contract: an instruction either has no operand at all
// (Implicit), operates on the accumulator in place, or reads/writes through a
// resolved bus address.
type SourceKind int

const (
	SourceImplicit SourceKind = iota
	SourceAccumulator
	SourceAddress
)

// DataSource is what an addressing mode resolves to before an instruction
// body runs. Instructions never touch memory directly; they always go
// through Load/Store against a DataSource, so the addressing-mode dispatch
// and the instruction body stay fully decoupled.
type DataSource struct {
	Kind SourceKind
	Addr uint16
}

// Load reads the operand named by ds. Reading an Implicit source is a
// programmer error: no instruction in the table should ever attempt it.
func (cpu *CPU) Load(ds DataSource) uint8 {
	switch ds.Kind {
	case SourceAccumulator:
		return cpu.A
	case SourceAddress:
		return cpu.memory.Read(ds.Addr)
	default:
		panic("cpu: Load on Implicit data source")
	}
}

// Store writes the operand named by ds. Storing to Implicit is a programmer
// error for the same reason.
func (cpu *CPU) Store(ds DataSource, value uint8) {
	switch ds.Kind {
	case SourceAccumulator:
		cpu.A = value
	case SourceAddress:
		cpu.memory.Write(ds.Addr, value)
	default:
		panic("cpu: Store on Implicit data source")
	}
}

// Instruction is a fixed opcode-table entry: mnemonic, addressing mode, base
// cycle count, and whether it is one of the historical undocumented opcodes.
type Instruction struct {
	Name        string
	Mode        AddressingMode
	Cycles      uint8
	Undocumented bool
}

// MemoryInterface is the bus as seen by the CPU.
type MemoryInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CPU is the 6502 interpreter.
type CPU struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16

	C bool
	Z bool
	I bool
	D bool
	B bool
	V bool
	N bool

	memory MemoryInterface

	cycles uint64

	instructions [256]*Instruction

	residual uint8

	nmiPending  bool
	nmiPrevious bool
	irqLine     bool

	// deferredIRQ backs the test-only SetIRQPending/ProcessPendingInterrupts
	// pair; Clock() never reads it.
	deferredIRQ bool
}

// New creates a CPU wired to the given bus.
func New(memory MemoryInterface) *CPU {
	cpu := &CPU{
		memory: memory,
		SP:     0xFD,
	}
	cpu.initInstructions()
	return cpu
}

// Reset clears registers, sets SP to 0xFD and status to Unused-only, and
// loads PC from the reset vector. Residual cycles is set to 8 to mirror the
// documented reset timing.
func (cpu *CPU) Reset() {
	cpu.A, cpu.X, cpu.Y = 0, 0, 0
	cpu.SP = 0xFD
	cpu.C, cpu.Z, cpu.D, cpu.B, cpu.V, cpu.N = false, false, false, false, false, false
	cpu.I = true

	lo := uint16(cpu.memory.Read(resetVector))
	hi := uint16(cpu.memory.Read(resetVector + 1))
	cpu.PC = (hi << 8) | lo

	cpu.residual = 8
	cpu.nmiPending = false
	cpu.nmiPrevious = false
	cpu.irqLine = false
}

// SetNMI is edge-triggered: it should be called once per tick with the
// current NMI line level; a 0->1 transition latches a pending NMI.
func (cpu *CPU) SetNMI(level bool) {
	if level && !cpu.nmiPrevious {
		cpu.nmiPending = true
	}
	cpu.nmiPrevious = level
}

// SetIRQ sets the current level of the (maskable) IRQ line. The mapper (or
// APU) is expected to hold this high until its own condition clears.
func (cpu *CPU) SetIRQ(level bool) {
	cpu.irqLine = level
}

// Clock runs one CPU tick: decrementing residual cycles, or, when an
// instruction boundary is reached, servicing pending interrupts and then
// fetching/decoding/executing the next instruction.
func (cpu *CPU) Clock() {
	if cpu.residual > 0 {
		cpu.residual--
		cpu.cycles++
		return
	}

	if cpu.nmiPending {
		cpu.nmiPending = false
		cpu.serviceInterrupt(nmiVector, true)
		cpu.residual--
		cpu.cycles++
		return
	}
	if cpu.irqLine && !cpu.I {
		cpu.serviceInterrupt(irqVector, false)
		cpu.residual--
		cpu.cycles++
		return
	}

	opcode := cpu.memory.Read(cpu.PC)
	cpu.PC++

	instr := cpu.instructions[opcode]
	if instr == nil {
		cpu.residual = 1
		cpu.cycles++
		cpu.residual--
		return
	}

	cpu.residual = instr.Cycles

	ds, modePageCross := cpu.decodeOperand(instr.Mode)
	instrPageCross := cpu.execute(opcode, ds)
	if modePageCross && instrPageCross {
		cpu.residual++
	}

	cpu.residual--
	cpu.cycles++
}

// serviceInterrupt pushes PC and status and vectors to addr. NMI forces
// Break clear / Unused set and then sets InterruptDisable; the caller is
// responsible for only invoking the IRQ path when InterruptDisable is clear.
func (cpu *CPU) serviceInterrupt(addr uint16, isNMI bool) {
	cpu.push(uint8(cpu.PC >> 8))
	cpu.push(uint8(cpu.PC & 0xFF))

	status := cpu.statusByte(false)
	cpu.push(status)
	cpu.I = true

	lo := uint16(cpu.memory.Read(addr))
	hi := uint16(cpu.memory.Read(addr + 1))
	cpu.PC = (hi << 8) | lo

	// NMI takes 8 cycles total and IRQ 7; the caller decrements residual
	// once immediately after this returns, so the total charged equals the
	// value set here.
	if isNMI {
		cpu.residual = 8
	} else {
		cpu.residual = 7
	}
}

func (cpu *CPU) push(v uint8) {
	cpu.memory.Write(stackBase+uint16(cpu.SP), v)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.memory.Read(stackBase + uint16(cpu.SP))
}

func (cpu *CPU) pushWord(v uint16) {
	cpu.push(uint8(v >> 8))
	cpu.push(uint8(v & 0xFF))
}

func (cpu *CPU) popWord() uint16 {
	lo := uint16(cpu.pop())
	hi := uint16(cpu.pop())
	return (hi << 8) | lo
}

// statusByte packs the flags into P. brk controls whether the Break bit is
// set (true for PHP/BRK, false for hardware interrupt pushes).
func (cpu *CPU) statusByte(brk bool) uint8 {
	var p uint8
	if cpu.C {
		p |= cFlagMask
	}
	if cpu.Z {
		p |= zFlagMask
	}
	if cpu.I {
		p |= iFlagMask
	}
	if cpu.D {
		p |= dFlagMask
	}
	if brk {
		p |= bFlagMask
	}
	p |= unusedMask
	if cpu.V {
		p |= vFlagMask
	}
	if cpu.N {
		p |= nFlagMask
	}
	return p
}

func (cpu *CPU) setStatusByte(p uint8) {
	cpu.C = p&cFlagMask != 0
	cpu.Z = p&zFlagMask != 0
	cpu.I = p&iFlagMask != 0
	cpu.D = p&dFlagMask != 0
	cpu.V = p&vFlagMask != 0
	cpu.N = p&nFlagMask != 0
	cpu.B = false
}

func (cpu *CPU) setZN(v uint8) {
	cpu.Z = v == 0
	cpu.N = v&0x80 != 0
}

// Cycles returns the running tick count, used by tests and the orchestrator.
func (cpu *CPU) Cycles() uint64 { return cpu.cycles }

// AtInstructionBoundary reports whether the next Clock() call will fetch a
// fresh opcode rather than continue an in-flight one.
func (cpu *CPU) AtInstructionBoundary() bool { return cpu.residual == 0 }

// PeekStatusByte exposes P for the debugger/tracer without mutating state.
func (cpu *CPU) PeekStatusByte() uint8 { return cpu.statusByte(true) }

// InstructionAt returns the opcode table entry for opcode, or nil if it is
// unmapped, for use by the trace debugger. It does not touch CPU state.
func (cpu *CPU) InstructionAt(opcode uint8) *Instruction { return cpu.instructions[opcode] }

// OperandBytes reports how many operand bytes follow the opcode for the
// given addressing mode.
func OperandBytes(mode AddressingMode) int {
	switch mode {
	case Implied, Accumulator:
		return 0
	case Absolute, AbsoluteX, AbsoluteY, Indirect:
		return 2
	default:
		return 1
	}
}
