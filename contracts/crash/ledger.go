package crash

import (
	"github.com/crashledger/crash-contract/contracts/crash/crashconst"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/convert"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const (
	ownerKey      = 'o'
	agentKey      = 'a'
	overwriteKey  = 'w'
	maxBalanceKey = 'm'
	intakeKey     = 'l'

	coinPrefix    = 'c'
	balancePrefix = 'b'
	totalPrefix   = 't'
)

func coinKey(coinID int) []byte {
	return append([]byte{coinPrefix}, convert.ToBytes(coinID)...)
}

// balanceKey is a user-first key, so all balances of a user share a prefix.
func balanceKey(user interop.Hash160, coinID int) []byte {
	key := append([]byte{balancePrefix}, user...)
	return append(key, convert.ToBytes(coinID)...)
}

func totalKey(coinID int) []byte {
	return append([]byte{totalPrefix}, convert.ToBytes(coinID)...)
}

func getOwner(ctx storage.Context) interop.Hash160 {
	return storage.Get(ctx, ownerKey).(interop.Hash160)
}

func getAgent(ctx storage.Context) interop.Hash160 {
	return storage.Get(ctx, agentKey).(interop.Hash160)
}

// mustGetCoin returns token registered under coinID and panics if there is
// none.
func mustGetCoin(ctx storage.Context, coinID int) interop.Hash160 {
	data := storage.Get(ctx, coinKey(coinID))
	if data == nil {
		panic(crashconst.ErrUnsupportedCoin)
	}

	return data.(interop.Hash160)
}

func getInt(ctx storage.Context, key []byte) int {
	data := storage.Get(ctx, key)
	if data != nil {
		return data.(int)
	}

	return 0
}

// credit increases user balance and the coin total. Both are bounded by the
// maximum balance set at deployment.
func credit(ctx storage.Context, user interop.Hash160, coinID, amount int) {
	var (
		limit   = storage.Get(ctx, maxBalanceKey).(int)
		bKey    = balanceKey(user, coinID)
		tKey    = totalKey(coinID)
		balance = getInt(ctx, bKey)
		total   = getInt(ctx, tKey)
	)

	if balance > limit-amount || total > limit-amount {
		panic(crashconst.ErrOverflow)
	}

	storage.Put(ctx, bKey, balance+amount)
	storage.Put(ctx, tKey, total+amount)
}

// debit decreases user balance and the coin total. Empty entries are removed.
func debit(ctx storage.Context, user interop.Hash160, coinID, amount int) {
	var (
		bKey    = balanceKey(user, coinID)
		tKey    = totalKey(coinID)
		balance = getInt(ctx, bKey)
		total   = getInt(ctx, tKey)
	)

	if balance < amount {
		panic(crashconst.ErrInsufficientBalance)
	}

	if balance == amount {
		storage.Delete(ctx, bKey)
	} else {
		storage.Put(ctx, bKey, balance-amount)
	}

	if total == amount {
		storage.Delete(ctx, tKey)
	} else {
		storage.Put(ctx, tKey, total-amount)
	}
}
