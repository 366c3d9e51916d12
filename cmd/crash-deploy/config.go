package main

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/crashledger/crash-contract/deploy"
	"github.com/crashledger/crash-contract/internal/cliutil"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"gopkg.in/yaml.v3"
)

const defaultTimeout = 2 * time.Minute

// config is the YAML configuration of the command.
//
//	rpc: http://localhost:30333
//	wallet: wallet.json
//	account: NbUgTSFvPmsRxmGeWpuuGeJUoRoi6PErcM
//	contract: ./build
//	address: NfgHwwTi3wHAS8aFAN243C5vGbkYDpqLHP
//	agent: NhVtREi7ZXoYz4Q8BgmhxeGScGFuMFEdCt
//	allow_coin_overwrite: false
//	max_balance: "0"
//	timeout: 2m
//	coins:
//	  - id: 1
//	    token: 0x3a4e5b3e0c7bda6c8c2c5d2d9f1e0a4b5c6d7e8f
type config struct {
	RPC                string        `yaml:"rpc"`
	Wallet             string        `yaml:"wallet"`
	Account            string        `yaml:"account"`
	Contract           string        `yaml:"contract"`
	Address            string        `yaml:"address"`
	Agent              string        `yaml:"agent"`
	AllowCoinOverwrite bool          `yaml:"allow_coin_overwrite"`
	MaxBalance         string        `yaml:"max_balance"`
	Timeout            time.Duration `yaml:"timeout"`
	Coins              []coinConfig  `yaml:"coins"`
}

type coinConfig struct {
	ID    int64  `yaml:"id"`
	Token string `yaml:"token"`
}

func readConfig(p string) (config, error) {
	var cfg config

	data, err := os.ReadFile(p)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("decode config file '%s': %w", p, err)
	}

	err = cfg.validate()
	if err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	return cfg, nil
}

func (c config) validate() error {
	switch {
	case c.RPC == "":
		return errors.New("missing RPC endpoint")
	case c.Wallet == "":
		return errors.New("missing wallet")
	case c.Contract == "":
		return errors.New("missing contract directory")
	case c.Timeout < 0:
		return errors.New("negative timeout")
	}

	return nil
}

// contractAddress returns address of the deployed contract or zero hash
// before the first deployment.
func (c config) contractAddress() (util.Uint160, error) {
	if c.Address == "" {
		return util.Uint160{}, nil
	}

	h, err := cliutil.ParseHash(c.Address)
	if err != nil {
		return h, fmt.Errorf("contract address: %w", err)
	}

	return h, nil
}

// deployParams converts the configuration values to deployment parameters.
func (c config) deployParams() (agent util.Uint160, maxBalance *big.Int, coins []deploy.Coin, err error) {
	if c.Agent != "" {
		agent, err = cliutil.ParseHash(c.Agent)
		if err != nil {
			return agent, nil, nil, fmt.Errorf("agent: %w", err)
		}
	}

	maxBalance = new(big.Int)
	if c.MaxBalance != "" {
		var ok bool
		maxBalance, ok = maxBalance.SetString(c.MaxBalance, 10)
		if !ok || maxBalance.Sign() < 0 {
			return agent, nil, nil, fmt.Errorf("max balance: invalid value '%s'", c.MaxBalance)
		}
	}

	seen := make(map[int64]struct{}, len(c.Coins))
	for _, cc := range c.Coins {
		if cc.ID <= 0 {
			return agent, nil, nil, fmt.Errorf("coin %d: non-positive ID", cc.ID)
		}

		if _, ok := seen[cc.ID]; ok {
			return agent, nil, nil, fmt.Errorf("coin %d: duplicated ID", cc.ID)
		}
		seen[cc.ID] = struct{}{}

		token, err := cliutil.ParseHash(cc.Token)
		if err != nil {
			return agent, nil, nil, fmt.Errorf("coin %d: token: %w", cc.ID, err)
		}

		coins = append(coins, deploy.Coin{ID: cc.ID, Token: token})
	}

	return agent, maxBalance, coins, nil
}
