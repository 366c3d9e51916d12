package ledgerdump

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Storage layout of the Crash contract.
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

// Coin is a coin registry entry.
type Coin struct {
	ID    *big.Int
	Token util.Uint160
}

// Balance is a ledger entry of a user.
type Balance struct {
	User   util.Uint160
	CoinID *big.Int
	Amount *big.Int
}

// Total is a per-coin sum of ledger entries.
type Total struct {
	CoinID *big.Int
	Amount *big.Int
}

// Snapshot is the decoded state of the Crash contract.
type Snapshot struct {
	Contract           util.Uint160
	Owner              util.Uint160
	Agent              util.Uint160
	AllowCoinOverwrite bool
	MaxBalance         *big.Int
	// Token being moved by an unfinished transfer. Nil in any persisted
	// state.
	Intake *util.Uint160

	Coins    []Coin
	Balances []Balance
	Totals   []Total
}

// Decoder collects storage items of the Crash contract into Snapshot.
type Decoder struct {
	s Snapshot
}

// NewDecoder returns Decoder of the contract storage.
func NewDecoder(contract util.Uint160) *Decoder {
	return &Decoder{s: Snapshot{Contract: contract}}
}

// Write decodes a single storage item. Its signature allows to pass Write
// directly to storage iterating routines.
func (x *Decoder) Write(key, value []byte) error {
	if len(key) == 0 {
		return errors.New("empty storage key")
	}

	var err error

	switch key[0] {
	case ownerKey:
		x.s.Owner, err = util.Uint160DecodeBytesBE(value)
	case agentKey:
		x.s.Agent, err = util.Uint160DecodeBytesBE(value)
	case overwriteKey:
		x.s.AllowCoinOverwrite = bigint.FromBytes(value).Sign() != 0
	case maxBalanceKey:
		x.s.MaxBalance = bigint.FromBytes(value)
	case intakeKey:
		var h util.Uint160
		h, err = util.Uint160DecodeBytesBE(value)
		x.s.Intake = &h
	case coinPrefix:
		c := Coin{ID: bigint.FromBytes(key[1:])}
		c.Token, err = util.Uint160DecodeBytesBE(value)
		x.s.Coins = append(x.s.Coins, c)
	case balancePrefix:
		if len(key) < 1+util.Uint160Size {
			return fmt.Errorf("too short balance key %x", key)
		}

		b := Balance{
			CoinID: bigint.FromBytes(key[1+util.Uint160Size:]),
			Amount: bigint.FromBytes(value),
		}
		b.User, err = util.Uint160DecodeBytesBE(key[1 : 1+util.Uint160Size])
		x.s.Balances = append(x.s.Balances, b)
	case totalPrefix:
		x.s.Totals = append(x.s.Totals, Total{
			CoinID: bigint.FromBytes(key[1:]),
			Amount: bigint.FromBytes(value),
		})
	default:
		return fmt.Errorf("unexpected storage key %x", key)
	}

	if err != nil {
		return fmt.Errorf("decode value of storage key %x: %w", key, err)
	}

	return nil
}

// Snapshot returns collected state with entries ordered by coin ID.
func (x *Decoder) Snapshot() Snapshot {
	s := x.s

	sort.Slice(s.Coins, func(i, j int) bool { return s.Coins[i].ID.Cmp(s.Coins[j].ID) < 0 })
	sort.Slice(s.Totals, func(i, j int) bool { return s.Totals[i].CoinID.Cmp(s.Totals[j].CoinID) < 0 })
	sort.Slice(s.Balances, func(i, j int) bool {
		if c := s.Balances[i].CoinID.Cmp(s.Balances[j].CoinID); c != 0 {
			return c < 0
		}
		return s.Balances[i].User.Less(s.Balances[j].User)
	})

	return s
}

// ErrInconsistent is returned by Check for a ledger violating its
// invariants.
var ErrInconsistent = errors.New("inconsistent ledger")

// Check verifies ledger invariants: every total equals the sum of the coin's
// balances, entries are positive and within the maximum, balances belong to
// registered coins and no transfer is in progress.
func (x Snapshot) Check() error {
	if x.Intake != nil {
		return fmt.Errorf("%w: unfinished transfer of %s", ErrInconsistent, x.Intake.StringLE())
	}

	registered := make(map[string]struct{}, len(x.Coins))
	for i := range x.Coins {
		registered[x.Coins[i].ID.String()] = struct{}{}
	}

	sums := make(map[string]*big.Int)
	for _, b := range x.Balances {
		id := b.CoinID.String()

		if _, ok := registered[id]; !ok {
			return fmt.Errorf("%w: balance of %s in unknown coin %s", ErrInconsistent, b.User.StringLE(), id)
		}

		if err := x.checkAmount(b.Amount); err != nil {
			return fmt.Errorf("%w: balance of %s in coin %s: %w", ErrInconsistent, b.User.StringLE(), id, err)
		}

		sum, ok := sums[id]
		if !ok {
			sum = new(big.Int)
			sums[id] = sum
		}
		sum.Add(sum, b.Amount)
	}

	for _, t := range x.Totals {
		id := t.CoinID.String()

		if err := x.checkAmount(t.Amount); err != nil {
			return fmt.Errorf("%w: total of coin %s: %w", ErrInconsistent, id, err)
		}

		sum, ok := sums[id]
		if !ok || sum.Cmp(t.Amount) != 0 {
			return fmt.Errorf("%w: total of coin %s is %s, balances sum up to %v", ErrInconsistent, id, t.Amount, sum)
		}

		delete(sums, id)
	}

	for _, b := range x.Balances {
		if sum, ok := sums[b.CoinID.String()]; ok {
			return fmt.Errorf("%w: no total for coin %s with balances %s", ErrInconsistent, b.CoinID, sum)
		}
	}

	return nil
}

func (x Snapshot) checkAmount(v *big.Int) error {
	if v.Sign() <= 0 {
		return fmt.Errorf("non-positive amount %s", v)
	}

	if x.MaxBalance != nil && v.Cmp(x.MaxBalance) > 0 {
		return fmt.Errorf("amount %s exceeds maximum %s", v, x.MaxBalance)
	}

	return nil
}
