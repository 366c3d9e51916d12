// Package reconcile compares the Crash ledger with the actual token holdings
// of the contract.
package reconcile

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/crashledger/crash-contract/rpc/crash"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

// Ledger is the part of the Crash contract needed for reconciliation.
type Ledger interface {
	Coins() ([]crash.Coin, error)
	TotalDeposited(coinID *big.Int) (*big.Int, error)
}

// Tokens provides read access to token contracts.
type Tokens interface {
	// Token returns a reader of the token contract at h.
	Token(h util.Uint160) TokenReader
}

// TokenReader is the subset of NEP-17 used for reconciliation.
type TokenReader interface {
	Symbol() (string, error)
	Decimals() (int, error)
	BalanceOf(account util.Uint160) (*big.Int, error)
}

// NEP17Tokens reads tokens through NEP-17 RPC wrappers.
type NEP17Tokens struct {
	Invoker nep17.Invoker
}

// Token implements Tokens.
func (x NEP17Tokens) Token(h util.Uint160) TokenReader {
	return nep17.NewReader(x.Invoker, h)
}

// CoinTotal is the ledger total of a single coin.
type CoinTotal struct {
	ID        *big.Int
	Deposited *big.Int
}

// TokenReport is the reconciliation result of a single token. Several coins
// may be backed by the same token, all of them share its holdings.
type TokenReport struct {
	Token    util.Uint160
	Symbol   string
	Decimals int

	// Coins backed by the token in registry order.
	Coins []CoinTotal
	// Sum of ledger balances of all the coins.
	Deposited *big.Int
	// Token balance of the contract.
	Held *big.Int
}

// Surplus returns tokens held above the ledger total. Negative value is a
// deficit.
func (x TokenReport) Surplus() *big.Int {
	return new(big.Int).Sub(x.Held, x.Deposited)
}

// Deficit checks whether the contract holds less than it owes to users.
func (x TokenReport) Deficit() bool {
	return x.Held.Cmp(x.Deposited) < 0
}

// CoinIDs returns IDs of the coins backed by the token.
func (x TokenReport) CoinIDs() []string {
	ids := make([]string, len(x.Coins))
	for i := range x.Coins {
		ids[i] = x.Coins[i].ID.String()
	}
	return ids
}

// Report is the reconciliation result of all registered coins grouped by
// token.
type Report struct {
	Contract util.Uint160
	Tokens   []TokenReport
}

// Deficit checks whether any token is in deficit.
func (x Report) Deficit() bool {
	for i := range x.Tokens {
		if x.Tokens[i].Deficit() {
			return true
		}
	}
	return false
}

// ErrDeficit is returned by Report.Err when the ledger owes more than the
// contract holds.
var ErrDeficit = errors.New("ledger deficit")

// Err returns ErrDeficit listing the coins of the tokens in deficit, or nil.
func (x Report) Err() error {
	var ids []string
	for i := range x.Tokens {
		if x.Tokens[i].Deficit() {
			ids = append(ids, x.Tokens[i].CoinIDs()...)
		}
	}

	if len(ids) == 0 {
		return nil
	}

	return fmt.Errorf("%w: coins %v", ErrDeficit, ids)
}

// Check sums totalDeposited of the registered coins per token and compares
// it with the token balance of the contract. Surplus means tokens were sent
// around the ledger, deficit means the ledger is under-collateralized.
func Check(l *zap.Logger, contract util.Uint160, ledger Ledger, tokens Tokens) (Report, error) {
	res := Report{Contract: contract}

	coins, err := ledger.Coins()
	if err != nil {
		return res, fmt.Errorf("list coins: %w", err)
	}

	index := make(map[util.Uint160]int)

	for _, coin := range coins {
		deposited, err := ledger.TotalDeposited(coin.ID)
		if err != nil {
			return res, fmt.Errorf("coin %s: get total deposited: %w", coin.ID, err)
		}

		i, ok := index[coin.Token]
		if !ok {
			i = len(res.Tokens)
			index[coin.Token] = i
			res.Tokens = append(res.Tokens, TokenReport{
				Token:     coin.Token,
				Deposited: new(big.Int),
			})
		}

		r := &res.Tokens[i]
		r.Coins = append(r.Coins, CoinTotal{ID: coin.ID, Deposited: deposited})
		r.Deposited.Add(r.Deposited, deposited)
	}

	for i := range res.Tokens {
		r := &res.Tokens[i]

		err = readToken(contract, r, tokens.Token(r.Token))
		if err != nil {
			return res, fmt.Errorf("token %s (coins %v): %w", r.Token.StringLE(), r.CoinIDs(), err)
		}

		fields := []zap.Field{
			zap.Stringer("token", r.Token),
			zap.Strings("coins", r.CoinIDs()),
			zap.Stringer("deposited", r.Deposited),
			zap.Stringer("held", r.Held),
		}
		if r.Deficit() {
			l.Error("ledger deficit", fields...)
		} else {
			l.Debug("token reconciled", fields...)
		}
	}

	return res, nil
}

func readToken(contract util.Uint160, r *TokenReport, token TokenReader) error {
	var err error

	r.Held, err = token.BalanceOf(contract)
	if err != nil {
		return fmt.Errorf("get token balance: %w", err)
	}

	r.Symbol, err = token.Symbol()
	if err != nil {
		return fmt.Errorf("get token symbol: %w", err)
	}

	r.Decimals, err = token.Decimals()
	if err != nil {
		return fmt.Errorf("get token decimals: %w", err)
	}

	return nil
}
