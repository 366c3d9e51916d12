// Package reentrant is a hostile token used in tests: its transferFrom calls
// deposit of the ledger contract given at deployment.
package reentrant

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const (
	targetKey = 't'
	coinKey   = 'c'
)

func _deploy(data any, isUpdate bool) {
	if isUpdate {
		return
	}

	args := data.(struct {
		target interop.Hash160
		coinID int
	})

	ctx := storage.GetContext()
	storage.Put(ctx, targetKey, args.target)
	storage.Put(ctx, coinKey, args.coinID)
}

func BalanceOf(account interop.Hash160) int {
	return 0
}

func TransferFrom(from, to interop.Hash160, amount int, data any) bool {
	ctx := storage.GetReadOnlyContext()
	target := storage.Get(ctx, targetKey).(interop.Hash160)
	coinID := storage.Get(ctx, coinKey).(int)

	contract.Call(target, "deposit", contract.All, coinID, amount)

	return true
}
