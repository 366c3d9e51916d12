package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/crashledger/crash-contract/contracts"
	"github.com/crashledger/crash-contract/deploy"
	"github.com/crashledger/crash-contract/internal/cliutil"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const passwordEnv = "CRASH_WALLET_PASSWORD"

func main() {
	configPath := flag.String("config", "crash-deploy.yml", "Path to the YAML configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	l, err := cliutil.NewLogger(*debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = l.Sync() }()

	err = run(l, *configPath)
	if err != nil {
		l.Fatal("deployment failed", zap.Error(err))
	}
}

func run(l *zap.Logger, configPath string) error {
	cfg, err := readConfig(configPath)
	if err != nil {
		return err
	}

	agent, maxBalance, coins, err := cfg.deployParams()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	contractAddr, err := cfg.contractAddress()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctr, err := contracts.ReadCrash(os.DirFS(cfg.Contract))
	if err != nil {
		return err
	}

	acc, err := openAccount(cfg.Wallet, cfg.Account)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	c, err := rpcclient.New(ctx, cfg.RPC, rpcclient.Options{})
	if err != nil {
		return fmt.Errorf("RPC client dial: %w", err)
	}
	defer c.Close()

	err = c.Init()
	if err != nil {
		return fmt.Errorf("RPC client init: %w", err)
	}

	addr, err := deploy.Deploy(ctx, deploy.Prm{
		Logger:             l,
		Blockchain:         c,
		LocalAccount:       acc,
		Contract:           ctr,
		Address:            contractAddr,
		Agent:              agent,
		AllowCoinOverwrite: cfg.AllowCoinOverwrite,
		MaxBalance:         maxBalance,
		Coins:              coins,
	})
	if err != nil {
		return err
	}

	l.Info("Crash contract is ready",
		zap.Stringer("hash", addr), zap.String("address", address.Uint160ToString(addr)))

	return nil
}

// openAccount opens the wallet and decrypts the account with the given
// address or the default one.
func openAccount(walletPath, accAddress string) (*wallet.Account, error) {
	w, err := wallet.NewWalletFromFile(walletPath)
	if err != nil {
		return nil, fmt.Errorf("open wallet: %w", err)
	}
	defer w.Close()

	var acc *wallet.Account

	if accAddress != "" {
		h, err := address.StringToUint160(accAddress)
		if err != nil {
			return nil, fmt.Errorf("account address: %w", err)
		}

		acc = w.GetAccount(h)
		if acc == nil {
			return nil, fmt.Errorf("account %s is missing in the wallet", accAddress)
		}
	} else {
		acc = w.GetAccount(w.GetChangeAddress())
		if acc == nil {
			return nil, errors.New("no default account in the wallet")
		}
	}

	password, err := readPassword(acc.Address)
	if err != nil {
		return nil, err
	}

	err = acc.Decrypt(password, w.Scrypt)
	if err != nil {
		return nil, fmt.Errorf("decrypt account %s: %w", acc.Address, err)
	}

	return acc, nil
}

func readPassword(accAddress string) (string, error) {
	if p, ok := os.LookupEnv(passwordEnv); ok {
		return p, nil
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", accAddress)

	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("password input failed: %w", err)
	}

	return string(pw), nil
}
