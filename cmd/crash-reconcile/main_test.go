package main

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/crashledger/crash-contract/internal/reconcile"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestPrintReport(t *testing.T) {
	rep := reconcile.Report{
		Contract: util.Uint160{1},
		Tokens: []reconcile.TokenReport{
			{
				Token: util.Uint160{2}, Symbol: "WETH", Decimals: 2,
				Coins: []reconcile.CoinTotal{
					{ID: big.NewInt(1), Deposited: big.NewInt(10000)},
					{ID: big.NewInt(4), Deposited: big.NewInt(50)},
				},
				Deposited: big.NewInt(10050), Held: big.NewInt(10100),
			},
			{
				Token: util.Uint160{3}, Symbol: "USDT", Decimals: 0,
				Coins:     []reconcile.CoinTotal{{ID: big.NewInt(2), Deposited: big.NewInt(7)}},
				Deposited: big.NewInt(7), Held: big.NewInt(5),
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printReport(&buf, rep))

	out := buf.String()
	require.Contains(t, out, address.Uint160ToString(util.Uint160{1}))
	require.Contains(t, out, address.Uint160ToString(util.Uint160{2}))
	require.Contains(t, out, "1,4")
	require.Contains(t, out, "100.5")
	require.Contains(t, out, "101")
	require.Contains(t, out, "0.5")
	require.Contains(t, out, "DEFICIT")
	require.Contains(t, out, "-2")
}
