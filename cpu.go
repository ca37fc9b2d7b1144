package qcms

import (
	"golang.org/x/sys/cpu"
)

// Kernel is the pixel loop variant a Transform runs
type Kernel int

const (
	// GenericKernel processes one pixel per iteration
	GenericKernel Kernel = iota
	// UnrolledKernel processes blocks of four pixels per iteration, with
	// results identical to GenericKernel
	UnrolledKernel
)

func (k Kernel) String() string {
	switch k {
	case UnrolledKernel:
		return "unrolled"
	default:
		return "generic"
	}
}

// select_kernel reads the CPU capabilities. It is called once per
// transform build and the result stored in the Transform.
func select_kernel(allow_simd bool) Kernel {
	if allow_simd && (cpu.X86.HasSSE41 || cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD) {
		return UnrolledKernel
	}
	return GenericKernel
}
