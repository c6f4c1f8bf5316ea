package wasmbin

import "math"

func float32bits(v float32) uint32 { return math.Float32bits(v) }
func float64bits(v float64) uint64 { return math.Float64bits(v) }
