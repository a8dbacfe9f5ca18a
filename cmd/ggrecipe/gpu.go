//go:build !nogpu

package main

// GPU acceleration for vector drawing. Build with -tags nogpu for a pure
// CPU binary.
import _ "github.com/gogpu/gg/gpu"
