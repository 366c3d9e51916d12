package crash

import (
	"github.com/crashledger/crash-contract/contracts/crash/crashconst"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// pullTokens takes amount of token from the user's allowance to the contract
// account and returns the amount that actually arrived. Tokens charging a
// fee on transfer deliver less than requested.
func pullTokens(ctx storage.Context, token, from interop.Hash160, amount int) int {
	self := runtime.GetExecutingScriptHash()

	lockIntake(ctx, token)

	before := tokenBalance(token, self)

	ok := contract.Call(token, "transferFrom", contract.All, from, self, amount, nil).(bool)
	if !ok {
		panic(crashconst.ErrTransferFailed)
	}

	received := tokenBalance(token, self) - before

	unlockIntake(ctx)

	if received <= 0 || received > amount {
		panic(crashconst.ErrTransferFailed)
	}

	return received
}

// pushTokens pays amount of token from the contract account.
func pushTokens(ctx storage.Context, token, to interop.Hash160, amount int) {
	self := runtime.GetExecutingScriptHash()

	lockIntake(ctx, token)

	ok := contract.Call(token, "transfer", contract.All, self, to, amount, nil).(bool)
	if !ok {
		panic(crashconst.ErrTransferFailed)
	}

	unlockIntake(ctx)
}

func tokenBalance(token, account interop.Hash160) int {
	return contract.Call(token, "balanceOf", contract.ReadOnly, account).(int)
}

// checkNoIntake panics if some token transfer is in progress.
func checkNoIntake(ctx storage.Context) {
	if storage.Get(ctx, intakeKey) != nil {
		panic(crashconst.ErrReentrantCall)
	}
}

// lockIntake marks token as the one being moved. Any ledger operation started
// while the mark is set is a reentrant call from the token contract.
func lockIntake(ctx storage.Context, token interop.Hash160) {
	checkNoIntake(ctx)
	storage.Put(ctx, intakeKey, token)
}

func unlockIntake(ctx storage.Context) {
	storage.Delete(ctx, intakeKey)
}
