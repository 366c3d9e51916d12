package main

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	p := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
	return p
}

func TestReadConfig(t *testing.T) {
	agent := util.Uint160{1, 2, 3}
	token := util.Uint160{4, 5, 6}
	contract := util.Uint160{7, 8, 9}

	t.Run("full", func(t *testing.T) {
		p := writeConfig(t, `
rpc: http://localhost:30333
wallet: wallet.json
contract: ./crash
address: 0x`+contract.StringLE()+`
agent: `+address.Uint160ToString(agent)+`
allow_coin_overwrite: true
max_balance: "1000000"
timeout: 30s
coins:
  - id: 1
    token: 0x`+token.StringLE()+`
  - id: 2
    token: `+address.Uint160ToString(token)+`
`)

		cfg, err := readConfig(p)
		require.NoError(t, err)
		require.Equal(t, "http://localhost:30333", cfg.RPC)
		require.True(t, cfg.AllowCoinOverwrite)
		require.Equal(t, 30*time.Second, cfg.Timeout)

		addr, err := cfg.contractAddress()
		require.NoError(t, err)
		require.Equal(t, contract, addr)

		a, maxBalance, coins, err := cfg.deployParams()
		require.NoError(t, err)
		require.Equal(t, agent, a)
		require.Zero(t, maxBalance.Cmp(big.NewInt(1_000_000)))
		require.Len(t, coins, 2)
		require.EqualValues(t, 1, coins[0].ID)
		require.Equal(t, token, coins[0].Token)
		require.Equal(t, token, coins[1].Token)
	})

	t.Run("defaults", func(t *testing.T) {
		p := writeConfig(t, "rpc: http://localhost:30333\nwallet: w.json\ncontract: .\n")

		cfg, err := readConfig(p)
		require.NoError(t, err)
		require.Equal(t, defaultTimeout, cfg.Timeout)

		addr, err := cfg.contractAddress()
		require.NoError(t, err)
		require.Equal(t, util.Uint160{}, addr)

		a, maxBalance, coins, err := cfg.deployParams()
		require.NoError(t, err)
		require.Equal(t, util.Uint160{}, a)
		require.Zero(t, maxBalance.Sign())
		require.Empty(t, coins)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readConfig(filepath.Join(t.TempDir(), "none.yml"))
		require.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := readConfig(writeConfig(t, "rpc: [unclosed"))
		require.Error(t, err)
	})

	for _, tc := range []struct {
		name, data string
	}{
		{"no rpc", "wallet: w.json\ncontract: .\n"},
		{"no wallet", "rpc: http://localhost\ncontract: .\n"},
		{"no contract", "rpc: http://localhost\nwallet: w.json\n"},
		{"negative timeout", "rpc: http://localhost\nwallet: w.json\ncontract: .\ntimeout: -1s\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := readConfig(writeConfig(t, tc.data))
			require.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestDeployParamsInvalid(t *testing.T) {
	base := config{RPC: "http://localhost", Wallet: "w.json", Contract: "."}
	token := "0x" + util.Uint160{1}.StringLE()

	for _, tc := range []struct {
		name string
		mod  func(*config)
	}{
		{"agent", func(c *config) { c.Agent = "not an address" }},
		{"max balance", func(c *config) { c.MaxBalance = "ten" }},
		{"negative max balance", func(c *config) { c.MaxBalance = "-1" }},
		{"zero coin ID", func(c *config) { c.Coins = []coinConfig{{ID: 0, Token: token}} }},
		{"duplicated coin", func(c *config) { c.Coins = []coinConfig{{ID: 1, Token: token}, {ID: 1, Token: token}} }},
		{"coin token", func(c *config) { c.Coins = []coinConfig{{ID: 1, Token: "xyz"}} }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mod(&cfg)

			_, _, _, err := cfg.deployParams()
			require.Error(t, err)
		})
	}

	t.Run("contract address", func(t *testing.T) {
		cfg := base
		cfg.Address = "NotAnAddress"

		_, err := cfg.contractAddress()
		require.Error(t, err)
	})
}
