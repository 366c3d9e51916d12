package common

import "github.com/nspcc-dev/neo-go/pkg/interop/runtime"

const (
	// ErrUnauthorized appears when the method must be called by the holder
	// of some role (owner or agent) but was not.
	ErrUnauthorized = "unauthorized"
	// ErrWitnessFailed appears when the method must be called
	// using certain account but was not.
	ErrWitnessFailed = "witness check failed"
)

// CheckRoleWitness checks witness of the role holder.
// It panics with ErrUnauthorized message on fail.
func CheckRoleWitness(holder []byte) {
	checkWitnessWithPanic(holder, ErrUnauthorized)
}

// CheckWitness checks witness of the passed caller.
// It panics with ErrWitnessFailed message on fail.
func CheckWitness(caller []byte) {
	checkWitnessWithPanic(caller, ErrWitnessFailed)
}

func checkWitnessWithPanic(caller []byte, panicMsg string) {
	if !runtime.CheckWitness(caller) {
		panic(panicMsg)
	}
}
