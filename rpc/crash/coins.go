package crash

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// coinsBatch is the number of registry entries fetched per iterator
// traversal request.
const coinsBatch = 100

// Coin is an entry of the coin registry.
type Coin struct {
	ID    *big.Int
	Token util.Uint160
}

// FromStackItem parses a key-value pair returned by the iterateCoins
// iterator.
func (c *Coin) FromStackItem(item stackitem.Item) error {
	kv, ok := item.Value().([]stackitem.Item)
	if !ok || len(kv) != 2 {
		return errors.New("not a key-value pair")
	}

	key, err := kv[0].TryBytes()
	if err != nil {
		return fmt.Errorf("coin ID: %w", err)
	}
	c.ID = bigint.FromBytes(key)

	c.Token, err = uint160FromItem(kv[1])
	if err != nil {
		return fmt.Errorf("token of coin %s: %w", c.ID, err)
	}

	return nil
}

// Coins returns the whole coin registry. It requires RPC server with
// iterator sessions enabled.
func (c *ContractReader) Coins() ([]Coin, error) {
	sess, iter, err := c.IterateCoins()
	if err != nil {
		return nil, fmt.Errorf("open coin iterator: %w", err)
	}
	defer func() {
		_ = c.invoker.TerminateSession(sess)
	}()

	var res []Coin
	for {
		items, err := c.invoker.TraverseIterator(sess, &iter, coinsBatch)
		if err != nil {
			return nil, fmt.Errorf("traverse coin iterator: %w", err)
		}

		for i := range items {
			var coin Coin
			if err := coin.FromStackItem(items[i]); err != nil {
				return nil, err
			}
			res = append(res, coin)
		}

		if len(items) < coinsBatch {
			return res, nil
		}
	}
}

// ParseCoins parses the result of IterateCoinsExpanded.
func ParseCoins(items []stackitem.Item) ([]Coin, error) {
	res := make([]Coin, len(items))
	for i := range items {
		if err := res[i].FromStackItem(items[i]); err != nil {
			return nil, fmt.Errorf("item #%d: %w", i, err)
		}
	}

	return res, nil
}
