package crash

import (
	"errors"
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

type testInv struct {
	err error
	res *result.Invoke

	pages      [][]stackitem.Item
	terminated bool
}

func (t *testInv) Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	return t.res, t.err
}

func (t *testInv) CallAndExpandIterator(contract util.Uint160, operation string, i int, params ...any) (*result.Invoke, error) {
	return t.res, t.err
}

func (t *testInv) TraverseIterator(uuid.UUID, *result.Iterator, int) ([]stackitem.Item, error) {
	if len(t.pages) == 0 {
		return nil, nil
	}
	page := t.pages[0]
	t.pages = t.pages[1:]
	return page, nil
}

func (t *testInv) TerminateSession(uuid.UUID) error {
	t.terminated = true
	return nil
}

func halt(items ...stackitem.Item) *result.Invoke {
	return &result.Invoke{
		State: "HALT",
		Stack: items,
	}
}

func TestReaderErrors(t *testing.T) {
	ti := new(testInv)
	r := NewReader(ti, util.Uint160{1, 2, 3})

	ti.err = errors.New("bad")
	_, err := r.Owner()
	require.Error(t, err)
	_, err = r.BalanceOf(util.Uint160{1}, big.NewInt(1))
	require.Error(t, err)

	ti.err = nil
	ti.res = &result.Invoke{State: "FAULT", FaultException: ErrUnsupportedCoin}
	_, err = r.SupportedCoins(big.NewInt(1))
	require.ErrorContains(t, err, ErrUnsupportedCoin)

	ti.res = halt(stackitem.Make([]stackitem.Item{}))
	_, err = r.AgentAddress()
	require.Error(t, err)
}

func TestReaderValues(t *testing.T) {
	ti := new(testInv)
	r := NewReader(ti, util.Uint160{1, 2, 3})

	h := util.Uint160{1, 2, 3, 4, 5}
	ti.res = halt(stackitem.Make(h.BytesBE()))
	owner, err := r.Owner()
	require.NoError(t, err)
	require.Equal(t, h, owner)

	ti.res = halt(stackitem.Make(100))
	bal, err := r.BalanceOf(h, big.NewInt(1))
	require.NoError(t, err)
	require.EqualValues(t, 100, bal.Int64())

	ti.res = halt(stackitem.Make(true))
	allowed, err := r.CoinOverwriteAllowed()
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestCoins(t *testing.T) {
	weth := util.Uint160{0xee}
	usdt := util.Uint160{0xdd}

	pair := func(id int64, token util.Uint160) stackitem.Item {
		return stackitem.NewStruct([]stackitem.Item{
			stackitem.Make(big.NewInt(id)),
			stackitem.Make(token.BytesBE()),
		})
	}

	t.Run("session", func(t *testing.T) {
		ti := new(testInv)
		r := NewReader(ti, util.Uint160{1, 2, 3})

		sess := uuid.New()
		iter := result.Iterator{ID: &sess}
		ti.res = halt(stackitem.NewInterop(iter))
		ti.res.Session = sess

		ti.pages = [][]stackitem.Item{{pair(1, weth), pair(2, usdt)}}

		coins, err := r.Coins()
		require.NoError(t, err)
		require.Len(t, coins, 2)
		require.EqualValues(t, 1, coins[0].ID.Int64())
		require.Equal(t, weth, coins[0].Token)
		require.EqualValues(t, 2, coins[1].ID.Int64())
		require.Equal(t, usdt, coins[1].Token)
		require.True(t, ti.terminated)
	})

	t.Run("expanded", func(t *testing.T) {
		coins, err := ParseCoins([]stackitem.Item{pair(7, weth)})
		require.NoError(t, err)
		require.Len(t, coins, 1)
		require.EqualValues(t, 7, coins[0].ID.Int64())
		require.Equal(t, weth, coins[0].Token)

		_, err = ParseCoins([]stackitem.Item{stackitem.Make(1)})
		require.Error(t, err)
	})
}

func TestEventsFromApplicationLog(t *testing.T) {
	user := util.Uint160{1}
	recipient := util.Uint160{2}

	_, err := DepositEventsFromApplicationLog(nil)
	require.Error(t, err)

	log := &result.ApplicationLog{
		Executions: []state.Execution{{
			Events: []state.NotificationEvent{
				{
					Name: "Deposit",
					Item: stackitem.NewArray([]stackitem.Item{
						stackitem.Make(user.BytesBE()),
						stackitem.Make(1),
						stackitem.Make(100),
					}),
				},
				{
					Name: "Settle",
					Item: stackitem.NewArray([]stackitem.Item{
						stackitem.Make(user.BytesBE()),
						stackitem.Make(1),
						stackitem.Make(40),
						stackitem.Make(recipient.BytesBE()),
					}),
				},
				{
					Name: "Transfer",
					Item: stackitem.NewArray(nil),
				},
			},
		}},
	}

	deposits, err := DepositEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	require.Equal(t, user, deposits[0].User)
	require.EqualValues(t, 1, deposits[0].CoinID.Int64())
	require.EqualValues(t, 100, deposits[0].Amount.Int64())

	settles, err := SettleEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, settles, 1)
	require.Equal(t, recipient, settles[0].Recipient)
	require.EqualValues(t, 40, settles[0].Amount.Int64())

	withdraws, err := WithdrawEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Empty(t, withdraws)

	log.Executions[0].Events[0].Item = stackitem.NewArray([]stackitem.Item{stackitem.Make(1)})
	_, err = DepositEventsFromApplicationLog(log)
	require.Error(t, err)
}

func TestGetState(t *testing.T) {
	var sg stateGetter

	sg.f = func(util.Uint160) (*state.Contract, error) {
		return nil, errors.New("Unknown contract")
	}
	c, err := GetState(sg, util.Uint160{1})
	require.NoError(t, err)
	require.Nil(t, c)

	sg.f = func(util.Uint160) (*state.Contract, error) {
		return nil, errors.New("connection refused")
	}
	_, err = GetState(sg, util.Uint160{1})
	require.Error(t, err)

	sg.f = func(h util.Uint160) (*state.Contract, error) {
		return &state.Contract{ContractBase: state.ContractBase{Hash: h}}, nil
	}
	c, err = GetState(sg, util.Uint160{1})
	require.NoError(t, err)
	require.Equal(t, util.Uint160{1}, c.Hash)
}

type stateGetter struct {
	f func(util.Uint160) (*state.Contract, error)
}

func (s stateGetter) GetContractStateByHash(h util.Uint160) (*state.Contract, error) {
	return s.f(h)
}
