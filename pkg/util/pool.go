package util

import "runtime"

// GetOptimalPoolSize returns the concurrency used for parser pools and the
// file worker pool: twice the CPU count, clamped to [4, 32].
//
// Parsing runs in cgo, so two workers per core keep every core busy while
// bounding parser memory on large machines. Parser pools and the worker
// pool must use the same size so workers never wait on a parser.
func GetOptimalPoolSize() int {
	poolSize := runtime.NumCPU() * 2
	if poolSize < 4 {
		poolSize = 4
	}
	if poolSize > 32 {
		poolSize = 32
	}
	return poolSize
}

// GetOptimalPoolSizeWithOverride returns override when positive and
// GetOptimalPoolSize otherwise.
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
