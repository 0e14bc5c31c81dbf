// Package profile provides optional runtime profiling for jslight.
//
// Profiling uses [github.com/pkg/profile] and is compiled in only with the
// "pprof" build tag:
//
//	go build -tags pprof -o jslight .
//
// Without the tag, [Profiler.Start] returns a no-op and [Modes] is empty.
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     block (synchronization) profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      heap profiling (live allocations)
//   - mem:       general memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution trace
//
// # Usage
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles"}
//	defer p.Start().Stop()
//
// From the command line:
//
//	jslight --pprof-mode cpu run prog.jsl
//	go tool pprof -http=: ~/.cache/jslight/pprof/cpu.pprof
//
// Profiles are written to the directory given by --pprof-dir, which defaults
// to the "pprof" subdirectory of the user cache directory.
package profile
