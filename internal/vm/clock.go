package vm

import "time"

// nowSeconds reports elapsed seconds since this VM was constructed, giving
// scripts a monotonic timer without exposing wall-clock time.
func (vm *VM) nowSeconds() float64 {
	return time.Since(vm.processStart).Seconds()
}
