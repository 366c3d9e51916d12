package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/crashledger/crash-contract/internal/cliutil"
	"github.com/crashledger/crash-contract/internal/ledgerdump"
	"github.com/crashledger/crash-contract/rpc/crash"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

func main() {
	neoRPCEndpoint := flag.String("rpc", "", "Network address of the Neo RPC server")
	chainLabel := flag.String("label", "", "Label of the blockchain environment (e.g. 'testnet')")
	contractAddress := flag.String("contract", "", "Crash contract address (Neo address or LE hash)")
	rootDir := flag.String("dir", "testdata", "Directory to save the snapshot to")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	l, err := cliutil.NewLogger(*debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = l.Sync() }()

	switch {
	case *neoRPCEndpoint == "":
		l.Fatal("missing Neo RPC endpoint")
	case *chainLabel == "":
		l.Fatal("missing blockchain label")
	case *contractAddress == "":
		l.Fatal("missing contract address")
	}

	contract, err := cliutil.ParseHash(*contractAddress)
	if err != nil {
		l.Fatal("invalid contract address", zap.Error(err))
	}

	err = os.MkdirAll(*rootDir, 0700)
	if err != nil {
		l.Fatal("create root dir", zap.Error(err))
	}

	p, s, err := _dump(context.Background(), *neoRPCEndpoint, *rootDir, *chainLabel, contract)
	if err != nil {
		l.Fatal("dump failed", zap.Error(err))
	}

	l.Info("Crash ledger is successfully dumped", zap.String("file", p),
		zap.Int("coins", len(s.Coins)), zap.Int("balances", len(s.Balances)))

	err = s.Check()
	if err != nil {
		l.Error("ledger check failed", zap.Error(err))
		os.Exit(1)
	}
}

func _dump(ctx context.Context, neoBlockchainRPCEndpoint, rootDir, label string, contract util.Uint160) (string, ledgerdump.Snapshot, error) {
	b, err := newRemoteBlockChain(ctx, neoBlockchainRPCEndpoint)
	if err != nil {
		return "", ledgerdump.Snapshot{}, fmt.Errorf("init remote blockchain: %w", err)
	}

	defer b.close()

	st, err := b.getContract(contract)
	if err != nil {
		return "", ledgerdump.Snapshot{}, err
	}

	if st.Manifest.Name != crash.Name {
		return "", ledgerdump.Snapshot{}, fmt.Errorf("contract %s is %q, not %q", contract.StringLE(), st.Manifest.Name, crash.Name)
	}

	d := ledgerdump.NewDecoder(contract)

	err = b.iterateContractStorage(contract, d.Write)
	if err != nil {
		return "", ledgerdump.Snapshot{}, fmt.Errorf("iterate contract storage: %w", err)
	}

	s := d.Snapshot()

	p, err := ledgerdump.Save(rootDir, ledgerdump.ID{Label: label, Block: b.currentBlock - 1}, s)
	if err != nil {
		return p, s, fmt.Errorf("save snapshot: %w", err)
	}

	return p, s, nil
}
