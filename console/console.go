// Package console scripts a cooperative VM from JavaScript.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
	"github.com/dop251/goja"
)

// Console binds one VM to a JavaScript runtime as the global `vm`.
type Console struct {
	rt    *goja.Runtime
	image []int64
	opts  []intcode.Option
	vm    *intcode.VM
	out   io.Writer
	trace bool
}

// New loads image into a cooperative VM. opts apply to the VM and to every
// VM created by vm.reset().
func New(image []int64, out io.Writer, opts ...intcode.Option) (*Console, error) {
	c := &Console{
		rt:    goja.New(),
		image: image,
		opts:  append([]intcode.Option{intcode.WithCooperative(), intcode.WithName("console")}, opts...),
		out:   out,
	}
	if err := c.Reset(); err != nil {
		return nil, err
	}
	if err := c.bind(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reset replaces the VM with a fresh one over the original image.
func (c *Console) Reset() error {
	vm, err := intcode.New(c.image, c.opts...)
	if err != nil {
		return err
	}
	c.vm = vm
	return nil
}

// VM is the machine currently bound to the console.
func (c *Console) VM() *intcode.VM {
	return c.vm
}

// Eval runs one line of JavaScript.
func (c *Console) Eval(src string) (goja.Value, error) {
	v, err := c.rt.RunString(src)
	if err != nil {
		log.Debug(log.CLIModule, "console eval failed", "src", src, "err", err)
	}
	return v, err
}

func (c *Console) bind() error {
	obj := c.rt.NewObject()
	methods := map[string]interface{}{
		"run": func() (string, error) {
			if err := c.vm.Run(c.trace); err != nil {
				return "", err
			}
			return c.vm.State().String(), nil
		},
		"state": func() string { return c.vm.State().String() },
		"input": func(v int64) error { return c.vm.ProvideInput(v, c.trace) },
		"output": func() (int64, error) {
			return c.vm.GetOutput(c.trace)
		},
		"drain":  c.drain,
		"send":   c.send,
		"peek":   func(addr int64) (int64, error) { return c.vm.Peek(addr) },
		"poke":   func(addr, v int64) error { return c.vm.Poke(addr, v) },
		"ip":     func() int64 { return c.vm.IP() },
		"rb":     func() int64 { return c.vm.RelativeBase() },
		"steps":  func() uint64 { return c.vm.Steps() },
		"memory": func() []int64 { return c.vm.Memory() },
		"reset":  c.Reset,
		"trace":  func(on bool) { c.trace = on },
	}
	for name, fn := range methods {
		if err := obj.Set(name, fn); err != nil {
			return err
		}
	}
	if err := c.rt.Set("vm", obj); err != nil {
		return err
	}
	return c.rt.Set("print", func(args ...goja.Value) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = fmt.Sprint(a.Export())
		}
		fmt.Fprintln(c.out, strings.Join(parts, " "))
	})
}

// drain runs the VM and collects outputs until it needs input or
// terminates.
func (c *Console) drain() ([]int64, error) {
	var outs []int64
	for {
		switch c.vm.State() {
		case intcode.WaitingToRun:
			if err := c.vm.Run(c.trace); err != nil {
				return outs, err
			}
		case intcode.BlockedOnOutput:
			v, err := c.vm.GetOutput(c.trace)
			if err != nil {
				return outs, err
			}
			outs = append(outs, v)
		default:
			return outs, nil
		}
	}
}

// send feeds each character of s as an input value, draining output
// between characters, and returns everything produced as text.
func (c *Console) send(s string) (string, error) {
	var b strings.Builder
	for _, r := range s {
		outs, err := c.drain()
		writeASCII(&b, outs)
		if err != nil {
			return b.String(), err
		}
		if c.vm.State() != intcode.BlockedOnInput {
			return b.String(), fmt.Errorf("vm %s before input %q", c.vm.State(), r)
		}
		if err := c.vm.ProvideInput(int64(r), c.trace); err != nil {
			return b.String(), err
		}
	}
	outs, err := c.drain()
	writeASCII(&b, outs)
	return b.String(), err
}

func writeASCII(b *strings.Builder, outs []int64) {
	for _, v := range outs {
		if v >= 0 && v < 128 {
			b.WriteByte(byte(v))
		} else {
			fmt.Fprintf(b, "[%d]", v)
		}
	}
}
