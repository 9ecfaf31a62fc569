package crasher

import "runtime/debug"

// bombSeed is the initial depth value. It is not a bound: recbomb recurses
// past it indefinitely.
const bombSeed = 16

// maxBombStack caps the goroutine stack so the overflow arrives quickly and
// the resulting core stays small. 64 MiB is still deep enough that the
// harness sees a long, non-collapsed chain of recbomb frames.
const maxBombStack = 64 << 20

// bombSink receives a write per recursion step. The opaque global store keeps
// the compiler from collapsing or eliding frames.
var bombSink int

// Detonate runs the recursive bomb and never returns. The traceback mode is
// raised to "crash" so stack exhaustion ends in SIGABRT with a core dump
// rather than a plain runtime exit, which is what crash harnesses assert on.
func Detonate() int {
	debug.SetTraceback("crash")
	debug.SetMaxStack(maxBombStack)
	return recbomb(bombSeed) + defeatTailOptimization()
}

// recbomb consumes one real stack frame per call until the process faults.
// The local pad array fattens each frame; the sink write and the auxiliary
// call keep the frame live so no call can be turned into a jump.
//
//go:noinline
func recbomb(n int) int {
	var pad [512]byte
	pad[n%len(pad)] = byte(n)
	bombSink += int(pad[n%len(pad)])
	return recbomb(n+1) + defeatTailOptimization()
}

//go:noinline
func defeatTailOptimization() int {
	return 0
}
