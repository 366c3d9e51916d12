// Package pulltoken is a NEP-17 token with allowance extension used in tests.
// Deploy data is [supply, feeBasisPoints]: the whole supply goes to the
// deployer, every transfer burns feeBasisPoints/10000 of the amount.
package pulltoken

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const (
	symbol   = "WETH"
	decimals = 18

	supplyKey       = 's'
	feeKey          = 'f'
	balancePrefix   = 'b'
	allowancePrefix = 'a'
)

func _deploy(data any, isUpdate bool) {
	if isUpdate {
		return
	}

	args := data.(struct {
		supply         int
		feeBasisPoints int
	})

	ctx := storage.GetContext()
	owner := runtime.GetScriptContainer().Sender

	storage.Put(ctx, []byte{supplyKey}, args.supply)
	storage.Put(ctx, []byte{feeKey}, args.feeBasisPoints)
	storage.Put(ctx, balanceKey(owner), args.supply)
}

func Symbol() string {
	return symbol
}

func Decimals() int {
	return decimals
}

func TotalSupply() int {
	return getInt(storage.GetReadOnlyContext(), []byte{supplyKey})
}

func BalanceOf(account interop.Hash160) int {
	return getInt(storage.GetReadOnlyContext(), balanceKey(account))
}

func Allowance(owner, spender interop.Hash160) int {
	return getInt(storage.GetReadOnlyContext(), allowanceKey(owner, spender))
}

func Transfer(from, to interop.Hash160, amount int, data any) bool {
	checkArgs(from, to, amount)

	if !runtime.CheckWitness(from) && !runtime.GetCallingScriptHash().Equals(from) {
		return false
	}

	return move(storage.GetContext(), from, to, amount, data)
}

func Approve(owner, spender interop.Hash160, amount int) bool {
	checkArgs(owner, spender, amount)

	if !runtime.CheckWitness(owner) {
		return false
	}

	storage.Put(storage.GetContext(), allowanceKey(owner, spender), amount)
	runtime.Notify("Approval", owner, spender, amount)

	return true
}

// TransferFrom moves tokens on behalf of the calling contract.
func TransferFrom(from, to interop.Hash160, amount int, data any) bool {
	checkArgs(from, to, amount)

	var (
		ctx     = storage.GetContext()
		spender = runtime.GetCallingScriptHash()
		key     = allowanceKey(from, spender)
		allowed = getInt(ctx, key)
	)

	if allowed < amount || getInt(ctx, balanceKey(from)) < amount {
		return false
	}

	if allowed == amount {
		storage.Delete(ctx, key)
	} else {
		storage.Put(ctx, key, allowed-amount)
	}

	return move(ctx, from, to, amount, data)
}

func move(ctx storage.Context, from, to interop.Hash160, amount int, data any) bool {
	fromKey := balanceKey(from)
	fromBalance := getInt(ctx, fromKey)
	if fromBalance < amount {
		return false
	}

	fee := amount * getInt(ctx, []byte{feeKey}) / 10000
	received := amount - fee

	storage.Put(ctx, fromKey, fromBalance-amount)

	toKey := balanceKey(to)
	storage.Put(ctx, toKey, getInt(ctx, toKey)+received)

	if fee > 0 {
		storage.Put(ctx, []byte{supplyKey}, getInt(ctx, []byte{supplyKey})-fee)
	}

	runtime.Notify("Transfer", from, to, received)

	if management.GetContract(to) != nil {
		contract.Call(to, "onNEP17Payment", contract.All, from, received, data)
	}

	return true
}

func checkArgs(a, b interop.Hash160, amount int) {
	if len(a) != interop.Hash160Len || len(b) != interop.Hash160Len {
		panic("invalid address")
	}

	if amount < 0 {
		panic("negative amount")
	}
}

func balanceKey(account interop.Hash160) []byte {
	return append([]byte{balancePrefix}, account...)
}

func allowanceKey(owner, spender interop.Hash160) []byte {
	key := append([]byte{allowancePrefix}, owner...)
	return append(key, spender...)
}

func getInt(ctx storage.Context, key []byte) int {
	data := storage.Get(ctx, key)
	if data != nil {
		return data.(int)
	}

	return 0
}
