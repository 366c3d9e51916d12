package crash

import (
	"github.com/crashledger/crash-contract/common"
	"github.com/crashledger/crash-contract/contracts/crash/crashconst"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()

	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		agent          interop.Hash160
		allowOverwrite bool
		maxBalance     int
	})

	if !common.IsValidHash160(args.agent) {
		panic(crashconst.ErrInvalidAddress)
	}

	maxBalance := args.maxBalance
	if maxBalance < 0 {
		panic(crashconst.ErrInvalidMaxBalance)
	} else if maxBalance == 0 {
		maxBalance = std.Atoi(crashconst.DefaultMaxBalance, 10)
	}

	owner := runtime.GetScriptContainer().Sender

	storage.Put(ctx, ownerKey, owner)
	storage.Put(ctx, agentKey, args.agent)
	storage.Put(ctx, overwriteKey, args.allowOverwrite)
	storage.Put(ctx, maxBalanceKey, maxBalance)

	runtime.Log("crash contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by the contract owner.
func Update(nefFile, manifest []byte, data any) {
	common.CheckRoleWitness(getOwner(storage.GetReadOnlyContext()))

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("crash contract updated")
}

// Owner returns the account that deployed the contract. Only the owner can
// change the agent and the coin registry.
func Owner() interop.Hash160 {
	return getOwner(storage.GetReadOnlyContext())
}

// AgentAddress returns the account allowed to settle user balances. It is a
// zero hash until the owner assigns a real agent.
func AgentAddress() interop.Hash160 {
	return getAgent(storage.GetReadOnlyContext())
}

// SetAgentAddress replaces the agent. It can be invoked only by the owner.
// Zero hash is accepted and revokes agent rights.
//
// It produces AgentChanged notification.
func SetAgentAddress(agent interop.Hash160) {
	ctx := storage.GetContext()

	common.CheckRoleWitness(getOwner(ctx))

	if !common.IsValidHash160(agent) {
		panic(crashconst.ErrInvalidAddress)
	}

	prev := getAgent(ctx)
	storage.Put(ctx, agentKey, agent)

	runtime.Notify("AgentChanged", prev, agent)
}

// AddCoin registers token contract under the positive coinID. It can be
// invoked only by the owner.
//
// Registering a taken coinID fails unless coin overwrites were allowed at
// deployment. Even then a coin with outstanding deposits can't be switched
// to another token.
//
// It produces CoinAdded notification.
func AddCoin(coinID int, token interop.Hash160) {
	ctx := storage.GetContext()

	common.CheckRoleWitness(getOwner(ctx))

	if coinID <= 0 {
		panic(crashconst.ErrInvalidCoinID)
	}

	if !common.IsValidHash160(token) || common.IsZeroHash160(token) {
		panic(crashconst.ErrInvalidAddress)
	}

	key := coinKey(coinID)
	registered := storage.Get(ctx, key)
	if registered != nil {
		if !storage.Get(ctx, overwriteKey).(bool) {
			panic(crashconst.ErrCoinAlreadyRegistered)
		}

		if !token.Equals(registered) && getInt(ctx, totalKey(coinID)) != 0 {
			panic(crashconst.ErrCoinInUse)
		}
	}

	storage.Put(ctx, key, token)

	runtime.Notify("CoinAdded", coinID, token)
}

// SupportedCoins returns token contract registered under coinID or zero hash
// if the coin is unknown.
func SupportedCoins(coinID int) interop.Hash160 {
	data := storage.Get(storage.GetReadOnlyContext(), coinKey(coinID))
	if data == nil {
		return common.ZeroHash160()
	}

	return data.(interop.Hash160)
}

// IterateCoins returns iterator over the coin registry. Keys are coin IDs
// (as integer bytes), values are token contract hashes.
func IterateCoins() iterator.Iterator {
	return storage.Find(storage.GetReadOnlyContext(), []byte{coinPrefix}, storage.RemovePrefix)
}

// CoinOverwriteAllowed returns true if AddCoin may replace registered coins.
func CoinOverwriteAllowed() bool {
	return storage.Get(storage.GetReadOnlyContext(), overwriteKey).(bool)
}

// BalanceOf returns ledger balance of the user in the specified coin. Amounts
// are expressed in the smallest units of the coin's token.
func BalanceOf(user interop.Hash160, coinID int) int {
	return getInt(storage.GetReadOnlyContext(), balanceKey(user, coinID))
}

// TotalDeposited returns the sum of all ledger balances in the specified coin.
// The contract's own balance in the token is expected to be not less than it.
func TotalDeposited(coinID int) int {
	return getInt(storage.GetReadOnlyContext(), totalKey(coinID))
}

// MaxBalance returns the upper bound of any ledger balance.
func MaxBalance() int {
	return storage.Get(storage.GetReadOnlyContext(), maxBalanceKey).(int)
}

// Deposit takes amount of the coin from the transaction sender and credits
// the sender's ledger balance. The sender must approve the contract to spend
// at least amount of the token beforehand.
//
// Only the amount that actually arrived to the contract account is credited.
// The transaction fails if the token refuses the transfer, a credited
// balance exceeds the maximum or the token calls back into the ledger.
//
// It produces Deposit notification.
func Deposit(coinID int, amount int) {
	ctx := storage.GetContext()
	checkNoIntake(ctx)

	if amount <= 0 {
		panic(crashconst.ErrInsufficientAmount)
	}

	token := mustGetCoin(ctx, coinID)

	user := runtime.GetScriptContainer().Sender
	common.CheckWitness(user)

	received := pullTokens(ctx, token, user, amount)
	credit(ctx, user, coinID, received)

	runtime.Notify("Deposit", user, coinID, received)
}

// Withdraw debits ledger balance of the transaction sender and transfers
// amount of the coin's token back to it.
//
// It produces Withdraw notification.
func Withdraw(coinID int, amount int) {
	ctx := storage.GetContext()
	checkNoIntake(ctx)

	if amount <= 0 {
		panic(crashconst.ErrInsufficientAmount)
	}

	token := mustGetCoin(ctx, coinID)

	user := runtime.GetScriptContainer().Sender
	common.CheckWitness(user)

	debit(ctx, user, coinID, amount)
	pushTokens(ctx, token, user, amount)

	runtime.Notify("Withdraw", user, coinID, amount)
}

// Settle debits ledger balance of the user and pays amount of the coin's
// token to the recipient. It can be invoked only by the agent.
//
// It produces Settle notification.
func Settle(user interop.Hash160, coinID int, amount int, recipient interop.Hash160) {
	ctx := storage.GetContext()
	checkNoIntake(ctx)

	common.CheckRoleWitness(getAgent(ctx))

	if amount <= 0 {
		panic(crashconst.ErrInsufficientAmount)
	}

	if !common.IsValidHash160(user) || !common.IsValidHash160(recipient) ||
		common.IsZeroHash160(recipient) || recipient.Equals(runtime.GetExecutingScriptHash()) {
		panic(crashconst.ErrInvalidAddress)
	}

	token := mustGetCoin(ctx, coinID)

	debit(ctx, user, coinID, amount)
	pushTokens(ctx, token, recipient, amount)

	runtime.Notify("Settle", user, coinID, amount, recipient)
}

// OnNEP17Payment is a callback for NEP-17 compatible tokens. Tokens are
// accepted only from the token being pulled by Deposit at the moment, such
// payments are accounted by Deposit itself. Any other transfer is rejected.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	pending := storage.Get(storage.GetReadOnlyContext(), intakeKey)
	if pending == nil || !runtime.GetCallingScriptHash().Equals(pending) {
		panic(crashconst.ErrDirectTransferRejected)
	}
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}
