package crash_test

import (
	"math/big"
	"path"
	"testing"

	"github.com/crashledger/crash-contract/rpc/crash"
	"github.com/nspcc-dev/neo-go/pkg/core/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

const (
	crashPath     = "."
	pullTokenPath = "../../internal/testcontracts/pulltoken"
	reentrantPath = "../../internal/testcontracts/reentrant"
)

const (
	coinWETH int64 = 1
	coinUSDT int64 = 2
)

// ledger is a freshly deployed Crash contract with the accounts around it.
type ledger struct {
	e     *neotest.Executor
	owner *neotest.ContractInvoker // committee signs and deploys
	agent neotest.Signer
	hash  util.Uint160
}

type ledgerPrm struct {
	allowOverwrite bool
	maxBalance     *big.Int
	zeroAgent      bool
}

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

func newLedger(t *testing.T, prm ledgerPrm) *ledger {
	e := newExecutor(t)

	agent := e.NewAccount(t)
	agentHash := agent.ScriptHash()
	if prm.zeroAgent {
		agentHash = util.Uint160{}
	}

	maxBalance := prm.maxBalance
	if maxBalance == nil {
		maxBalance = big.NewInt(0)
	}

	ctr := neotest.CompileFile(t, e.CommitteeHash, crashPath, path.Join(crashPath, "config.yml"))
	e.DeployContract(t, ctr, []any{agentHash, prm.allowOverwrite, maxBalance})

	return &ledger{
		e:     e,
		owner: e.CommitteeInvoker(ctr.Hash),
		agent: agent,
		hash:  ctr.Hash,
	}
}

// deployToken deploys allowance-capable token with the whole supply owned by
// the committee. Every transfer burns feeBasisPoints/10000 of the amount.
func (l *ledger) deployToken(t *testing.T, supply int64, feeBasisPoints int64) *neotest.ContractInvoker {
	return l.deployTokenBig(t, big.NewInt(supply), feeBasisPoints)
}

func (l *ledger) deployTokenBig(t *testing.T, supply *big.Int, feeBasisPoints int64) *neotest.ContractInvoker {
	ctr := neotest.CompileFile(t, l.e.CommitteeHash, pullTokenPath, path.Join(pullTokenPath, "config.yml"))
	l.e.DeployContract(t, ctr, []any{supply, feeBasisPoints})

	return l.e.CommitteeInvoker(ctr.Hash)
}

// newUser creates an account holding amount of the token and allowing the
// ledger to pull allowance of it.
func (l *ledger) newUser(t *testing.T, token *neotest.ContractInvoker, amount, allowance int64) neotest.Signer {
	return l.newUserBig(t, token, big.NewInt(amount), big.NewInt(allowance))
}

func (l *ledger) newUserBig(t *testing.T, token *neotest.ContractInvoker, amount, allowance *big.Int) neotest.Signer {
	user := l.e.NewAccount(t)

	token.Invoke(t, true, "transfer", l.e.CommitteeHash, user.ScriptHash(), amount, nil)
	token.WithSigners(user).Invoke(t, true, "approve", user.ScriptHash(), l.hash, allowance)

	return user
}

func (l *ledger) as(signer neotest.Signer) *neotest.ContractInvoker {
	return l.owner.WithSigners(signer)
}

func (l *ledger) balanceOf(t *testing.T, user util.Uint160, coinID int64) int64 {
	return invokeInt(t, l.owner, "balanceOf", user, coinID)
}

func (l *ledger) totalDeposited(t *testing.T, coinID int64) int64 {
	return invokeInt(t, l.owner, "totalDeposited", coinID)
}

func invokeInt(t *testing.T, c *neotest.ContractInvoker, method string, args ...any) int64 {
	return invokeBigInt(t, c, method, args...).Int64()
}

func invokeBigInt(t *testing.T, c *neotest.ContractInvoker, method string, args ...any) *big.Int {
	s, err := c.TestInvoke(t, method, args...)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	v, err := s.Pop().Item().TryInteger()
	require.NoError(t, err)

	return v
}

func invokeBool(t *testing.T, c *neotest.ContractInvoker, method string, args ...any) bool {
	s, err := c.TestInvoke(t, method, args...)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	v, err := s.Pop().Item().TryBool()
	require.NoError(t, err)

	return v
}

// invokeHash reads Hash160 result. Returned items may be either byte arrays
// or buffers depending on their origin, so bytes are compared.
func invokeHash(t *testing.T, c *neotest.ContractInvoker, method string, args ...any) util.Uint160 {
	s, err := c.TestInvoke(t, method, args...)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	b, err := s.Pop().Item().TryBytes()
	require.NoError(t, err)

	h, err := util.Uint160DecodeBytesBE(b)
	require.NoError(t, err)

	return h
}

func tokenBalance(t *testing.T, token *neotest.ContractInvoker, account util.Uint160) int64 {
	return invokeInt(t, token, "balanceOf", account)
}

func iteratorToArray(iter *storage.Iterator) []stackitem.Item {
	stackItems := make([]stackitem.Item, 0)
	for iter.Next() {
		stackItems = append(stackItems, iter.Value())
	}
	return stackItems
}

func txEvents(t *testing.T, e *neotest.Executor, h util.Uint256, name string) []state.NotificationEvent {
	res := e.GetTxExecResult(t, h)

	var evs []state.NotificationEvent
	for _, ev := range res.Events {
		if ev.Name == name {
			evs = append(evs, ev)
		}
	}
	return evs
}

func depositEvent(t *testing.T, e *neotest.Executor, h util.Uint256) crash.DepositEvent {
	evs := txEvents(t, e, h, "Deposit")
	require.Len(t, evs, 1)

	var ev crash.DepositEvent
	require.NoError(t, ev.FromStackItem(evs[0].Item))
	return ev
}
