package crash_test

import (
	"math/big"
	"testing"

	"github.com/crashledger/crash-contract/internal/ledgerdump"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

// storageSnapshot decodes the contract storage items reachable from the
// given users and coins.
func (l *ledger) storageSnapshot(t *testing.T, users []util.Uint160, coins []int64) ledgerdump.Snapshot {
	st := l.e.Chain.GetContractState(l.hash)
	require.NotNil(t, st)

	d := ledgerdump.NewDecoder(l.hash)

	write := func(key []byte) {
		v := l.e.Chain.GetStorageItem(st.ID, key)
		if v == nil {
			return
		}
		require.NoError(t, d.Write(key, v))
	}

	for _, k := range []byte{'o', 'a', 'w', 'm', 'l'} {
		write([]byte{k})
	}

	for _, id := range coins {
		bID := bigint.ToBytes(big.NewInt(id))

		write(append([]byte{'c'}, bID...))
		write(append([]byte{'t'}, bID...))

		for _, u := range users {
			key := append([]byte{'b'}, u.BytesBE()...)
			write(append(key, bID...))
		}
	}

	return d.Snapshot()
}

func TestStorageConsistency(t *testing.T) {
	l := newLedger(t, ledgerPrm{maxBalance: big.NewInt(10_000)})
	token := l.deployToken(t, 5000, 0)

	// the same token under two IDs keeps separate ledgers
	l.owner.Invoke(t, stackitem.Null{}, "addCoin", coinWETH, token.Hash)
	l.owner.Invoke(t, stackitem.Null{}, "addCoin", coinUSDT, token.Hash)

	alice := l.newUser(t, token, 500, 500)
	bob := l.newUser(t, token, 1000, 1000)
	winner := l.e.NewAccount(t)

	l.as(alice).Invoke(t, stackitem.Null{}, "deposit", coinWETH, int64(300))
	l.as(alice).Invoke(t, stackitem.Null{}, "withdraw", coinWETH, int64(50))
	l.as(bob).Invoke(t, stackitem.Null{}, "deposit", coinUSDT, int64(1000))
	l.as(l.agent).Invoke(t, stackitem.Null{}, "settle", bob.ScriptHash(), coinUSDT, int64(90), winner.ScriptHash())

	users := []util.Uint160{alice.ScriptHash(), bob.ScriptHash(), winner.ScriptHash()}
	s := l.storageSnapshot(t, users, []int64{coinWETH, coinUSDT, 3})

	require.NoError(t, s.Check())
	require.Equal(t, l.e.CommitteeHash, s.Owner)
	require.Equal(t, l.agent.ScriptHash(), s.Agent)
	require.False(t, s.AllowCoinOverwrite)
	require.Zero(t, s.MaxBalance.Cmp(big.NewInt(10_000)))
	require.Nil(t, s.Intake)

	require.Len(t, s.Coins, 2)
	require.Equal(t, token.Hash, s.Coins[0].Token)
	require.Equal(t, token.Hash, s.Coins[1].Token)

	require.Len(t, s.Balances, 2)
	require.Len(t, s.Totals, 2)
	require.EqualValues(t, 250, s.Totals[0].Amount.Int64())
	require.EqualValues(t, 910, s.Totals[1].Amount.Int64())
	require.EqualValues(t, 1160, tokenBalance(t, token, l.hash))
}
