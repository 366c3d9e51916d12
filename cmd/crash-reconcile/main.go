package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/crashledger/crash-contract/internal/cliutil"
	"github.com/crashledger/crash-contract/internal/reconcile"
	"github.com/crashledger/crash-contract/rpc/crash"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"go.uber.org/zap"
)

var (
	rpcEndpoint = flag.String("rpc", "", "Network RPC address")
	contract    = flag.String("contract", "", "Crash contract address or LE script hash")
	height      = flag.Uint("height", 0, "Historic block height to check at (latest state if zero)")
	debug       = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	l, err := cliutil.NewLogger(*debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = l.Sync() }()

	err = run(l, os.Stdout)
	if errors.Is(err, reconcile.ErrDeficit) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err != nil {
		l.Fatal("reconciliation failed", zap.Error(err))
	}
}

func run(l *zap.Logger, w io.Writer) error {
	if *rpcEndpoint == "" {
		return errors.New("missing RPC endpoint")
	}

	h, err := cliutil.ParseHash(*contract)
	if err != nil {
		return fmt.Errorf("invalid contract: %w", err)
	}

	ctx := context.Background()

	c, err := rpcclient.New(ctx, *rpcEndpoint, rpcclient.Options{})
	if err != nil {
		return fmt.Errorf("RPC client dial: %w", err)
	}
	defer c.Close()

	err = c.Init()
	if err != nil {
		return fmt.Errorf("RPC client init: %w", err)
	}

	var inv *invoker.Invoker
	if *height > 0 {
		inv = invoker.NewHistoricAtHeight(uint32(*height), c, nil)
	} else {
		inv = invoker.New(c, nil)
	}

	rep, err := reconcile.Check(l, h, crash.NewReader(inv, h), reconcile.NEP17Tokens{Invoker: inv})
	if err != nil {
		return err
	}

	err = printReport(w, rep)
	if err != nil {
		return err
	}

	return rep.Err()
}

func printReport(w io.Writer, rep reconcile.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Contract: %s\n\n", address.Uint160ToString(rep.Contract))
	fmt.Fprintln(tw, "TOKEN\tSYMBOL\tCOINS\tDEPOSITED\tHELD\tSURPLUS\tSTATUS")

	for _, r := range rep.Tokens {
		status := "OK"
		if r.Deficit() {
			status = "DEFICIT"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			address.Uint160ToString(r.Token), r.Symbol, strings.Join(r.CoinIDs(), ","),
			fixedn.ToString(r.Deposited, r.Decimals),
			fixedn.ToString(r.Held, r.Decimals),
			fixedn.ToString(r.Surplus(), r.Decimals),
			status)
	}

	return tw.Flush()
}
