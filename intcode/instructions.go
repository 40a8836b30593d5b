package intcode

import "fmt"

func init() {
	initDispatchTable()
}

type Opcode int64

const (
	ADD                  Opcode = 1
	MUL                  Opcode = 2
	IN                   Opcode = 3
	OUT                  Opcode = 4
	JUMP_IF_TRUE         Opcode = 5
	JUMP_IF_FALSE        Opcode = 6
	LESS_THAN            Opcode = 7
	EQUALS               Opcode = 8
	ADJUST_RELATIVE_BASE Opcode = 9
	HALT                 Opcode = 99
)

// OpcodeInfo describes the encoding of one opcode.
type OpcodeInfo struct {
	Name   string
	Params int
	Dest   int  // index of the destination parameter, -1 if none
	Branch bool // may set the instruction pointer
	Halts  bool
}

// Width is the number of cells the instruction occupies, opcode word included.
func (i OpcodeInfo) Width() int {
	return 1 + i.Params
}

var instructionSet = [100]OpcodeInfo{
	ADD:                  {Name: "add", Params: 3, Dest: 2},
	MUL:                  {Name: "mul", Params: 3, Dest: 2},
	IN:                   {Name: "in", Params: 1, Dest: 0},
	OUT:                  {Name: "out", Params: 1, Dest: -1},
	JUMP_IF_TRUE:         {Name: "jt", Params: 2, Dest: -1, Branch: true},
	JUMP_IF_FALSE:        {Name: "jf", Params: 2, Dest: -1, Branch: true},
	LESS_THAN:            {Name: "lt", Params: 3, Dest: 2},
	EQUALS:               {Name: "eq", Params: 3, Dest: 2},
	ADJUST_RELATIVE_BASE: {Name: "arb", Params: 1, Dest: -1},
	HALT:                 {Name: "hlt", Params: 0, Dest: -1, Halts: true},
}

func lookup(op Opcode) (OpcodeInfo, bool) {
	if op < 0 || op >= Opcode(len(instructionSet)) {
		return OpcodeInfo{}, false
	}
	info := instructionSet[op]
	return info, info.Name != ""
}

// Info returns the encoding of op and whether op is defined.
func Info(op Opcode) (OpcodeInfo, bool) {
	return lookup(op)
}

func (op Opcode) String() string {
	if info, ok := lookup(op); ok {
		return info.Name
	}
	return fmt.Sprintf("op(%d)", int64(op))
}

type OpcodeHandler func(vm *VM) error

var dispatchTable [100]OpcodeHandler

func initDispatchTable() {
	dispatchTable[ADD] = handleADD
	dispatchTable[MUL] = handleMUL
	dispatchTable[IN] = handleIN
	dispatchTable[OUT] = handleOUT
	dispatchTable[JUMP_IF_TRUE] = handleJUMP_IF_TRUE
	dispatchTable[JUMP_IF_FALSE] = handleJUMP_IF_FALSE
	dispatchTable[LESS_THAN] = handleLESS_THAN
	dispatchTable[EQUALS] = handleEQUALS
	dispatchTable[ADJUST_RELATIVE_BASE] = handleADJUST_RELATIVE_BASE
	dispatchTable[HALT] = handleHALT
}

func handleADD(vm *VM) error {
	return vm.binary(vm.width.add)
}

func handleMUL(vm *VM) error {
	return vm.binary(vm.width.mul)
}

func handleLESS_THAN(vm *VM) error {
	return vm.binary(func(a, b int64) (int64, error) {
		return boolToWord(a < b), nil
	})
}

func handleEQUALS(vm *VM) error {
	return vm.binary(func(a, b int64) (int64, error) {
		return boolToWord(a == b), nil
	})
}

// binary evaluates dest = f(src1, src2) for the 4-wide instructions.
func (vm *VM) binary(f func(a, b int64) (int64, error)) error {
	a, err := vm.source(0)
	if err != nil {
		return err
	}
	b, err := vm.source(1)
	if err != nil {
		return err
	}
	r, err := f(a, b)
	if err != nil {
		return err
	}
	if err := vm.store(2, r); err != nil {
		return err
	}
	vm.advance(4)
	return nil
}

func handleIN(vm *VM) error {
	if vm.cooperative {
		vm.suspend(BlockedOnInput)
		return nil
	}
	if vm.input == nil {
		return errUninitialized("input")
	}
	v, err := vm.input()
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	return vm.completeInput(v)
}

// completeInput finishes an IN instruction with v. Blocking mode calls it
// from the handler, cooperative mode from ProvideInput.
func (vm *VM) completeInput(v int64) error {
	if err := vm.width.check(v); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if err := vm.store(0, v); err != nil {
		return err
	}
	vm.advance(2)
	return nil
}

func handleOUT(vm *VM) error {
	if vm.cooperative {
		vm.suspend(BlockedOnOutput)
		return nil
	}
	if vm.output == nil {
		return errUninitialized("output")
	}
	v, err := vm.outputValue()
	if err != nil {
		return err
	}
	// a failing sink leaves ip at the out instruction
	if err := vm.output(v); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	vm.advance(2)
	return nil
}

func (vm *VM) outputValue() (int64, error) {
	v, err := vm.source(0)
	if err != nil {
		return 0, err
	}
	if vm.step != nil {
		vm.step.SetResult(v)
	}
	return v, nil
}

// completeOutput finishes a suspended OUT for GetOutput.
func (vm *VM) completeOutput() (int64, error) {
	v, err := vm.outputValue()
	if err != nil {
		return 0, err
	}
	vm.advance(2)
	return v, nil
}

func handleJUMP_IF_TRUE(vm *VM) error {
	return vm.branch(func(v int64) bool { return v != 0 })
}

func handleJUMP_IF_FALSE(vm *VM) error {
	return vm.branch(func(v int64) bool { return v == 0 })
}

func (vm *VM) branch(taken func(v int64) bool) error {
	v, err := vm.source(0)
	if err != nil {
		return err
	}
	target, err := vm.source(1)
	if err != nil {
		return err
	}
	if taken(v) {
		vm.jump(target)
	} else {
		vm.advance(3)
	}
	return nil
}

func handleADJUST_RELATIVE_BASE(vm *VM) error {
	v, err := vm.source(0)
	if err != nil {
		return err
	}
	rb, err := vm.width.add(vm.relBase, v)
	if err != nil {
		return fmt.Errorf("relative base: %w", err)
	}
	vm.relBase = rb
	if vm.step != nil {
		vm.step.SetResult(rb)
	}
	vm.advance(2)
	return nil
}

func handleHALT(vm *VM) error {
	vm.state = Terminated
	vm.steps++
	return nil
}

func boolToWord(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
