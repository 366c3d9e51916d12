package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/crashledger/crash-contract/common"
	"github.com/crashledger/crash-contract/contracts"
	"github.com/crashledger/crash-contract/rpc/crash"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for the Crash contract deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions.
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by
	// its address. It returns error with 'Unknown contract' substring if
	// requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// Coin is a desired coin registry entry.
type Coin struct {
	ID    int64
	Token util.Uint160
}

// Prm groups all parameters of the Crash contract deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance to deploy to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// It becomes the owner of the contract.
	LocalAccount *wallet.Account

	// Compiled Crash contract.
	Contract contracts.Contract

	// Address of the already deployed contract. The contract keeps its
	// address on updates while any rebuild changes the NEF checksum, so it
	// must be set for every run after the first deployment. Zero value means
	// the address derived from LocalAccount and the NEF checksum.
	Address util.Uint160

	// Agent account. Zero value leaves the contract without an agent.
	Agent util.Uint160

	// Coin registry policy, fixed at deployment.
	AllowCoinOverwrite bool

	// Upper bound of any ledger balance. Nil or zero means the maximum
	// NeoVM integer.
	MaxBalance *big.Int

	// Coin registry to be set up. Coins missing in the list are left as is.
	Coins []Coin
}

var (
	errNotOwner        = errors.New("local account is not the contract owner")
	errMissingContract = errors.New("contract is missing on the chain")
	errNotCrash        = errors.New("contract is not Crash")
)

// Deploy deploys the Crash contract into the Neo network represented by
// Prm.Blockchain unless it is already there, updates the contract if the
// on-chain version is older than the local one and synchronizes the agent
// and coin registry with the given parameters. Deploy is idempotent and
// returns the contract address.
//
// Existing contract is looked up at Prm.Address when it is set. Deploy never
// deploys a new contract in this case.
func Deploy(ctx context.Context, prm Prm) (util.Uint160, error) {
	simpleLocalActor, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("init transaction sender from single local account: %w", err)
	}

	var (
		fixedAddr = !prm.Address.Equals(util.Uint160{})
		addr      = prm.Address
		wait      = ctxWaiter(ctx, simpleLocalActor.Wait)
	)

	if !fixedAddr {
		addr = crash.Hash(simpleLocalActor.Sender(), prm.Contract.NEF.Checksum)
	}

	l := prm.Logger.With(zap.Stringer("address", addr))

	st, err := crash.GetState(prm.Blockchain, addr)
	if err != nil {
		return addr, fmt.Errorf("get contract state: %w", err)
	}

	switch {
	case st == nil && fixedAddr:
		return addr, fmt.Errorf("%w: %s", errMissingContract, addr.StringLE())
	case st == nil:
		l.Info("Crash contract is missing on the chain, deploying...")

		err = deployContract(management.New(simpleLocalActor), wait, prm)
		if err != nil {
			return addr, err
		}

		l.Info("Crash contract successfully deployed, set its address for further runs")
	case st.Manifest.Name != crash.Name:
		return addr, fmt.Errorf("%w: %s is %q", errNotCrash, addr.StringLE(), st.Manifest.Name)
	default:
		l.Info("Crash contract is already deployed")
	}

	c := crash.New(simpleLocalActor, addr)

	owner, err := c.Owner()
	if err != nil {
		return addr, fmt.Errorf("get contract owner: %w", err)
	}

	if !owner.Equals(simpleLocalActor.Sender()) {
		return addr, fmt.Errorf("%w: owner %s, local %s", errNotOwner, owner.StringLE(), simpleLocalActor.Sender().StringLE())
	}

	if st != nil {
		err = updateContract(l, c, wait, st.NEF.Checksum, prm.Contract)
		if err != nil {
			return addr, err
		}
	}

	err = syncConfig(ctx, l, c, wait, prm)
	if err != nil {
		return addr, err
	}

	l.Info("Crash contract successfully synchronized")

	return addr, nil
}

// waitFunc awaits transaction acceptance, its signature matches the actor's
// Wait so that results of SendCall can be passed directly.
type waitFunc func(h util.Uint256, vub uint32, err error) (*state.AppExecResult, error)

// ctxWaiter makes wait abort on context cancellation. Abandoned wait keeps
// running in background until the transaction is accepted or expires.
func ctxWaiter(ctx context.Context, wait waitFunc) waitFunc {
	type waitResult struct {
		res *state.AppExecResult
		err error
	}

	return func(h util.Uint256, vub uint32, err error) (*state.AppExecResult, error) {
		if err != nil {
			return nil, err
		}

		if err = ctx.Err(); err != nil {
			return nil, err
		}

		ch := make(chan waitResult, 1)

		go func() {
			res, err := wait(h, vub, nil)
			ch <- waitResult{res, err}
		}()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("await transaction %s: %w", h.StringLE(), ctx.Err())
		case r := <-ch:
			return r.res, r.err
		}
	}
}

func checkHalt(res *state.AppExecResult, err error) error {
	if err != nil {
		return err
	}

	if res.VMState != vmstate.Halt {
		return fmt.Errorf("transaction %s failed: %s", res.Container.StringLE(), res.FaultException)
	}

	return nil
}

type contractDeployer interface {
	Deploy(nefFile *nef.File, manif *manifest.Manifest, data any) (util.Uint256, uint32, error)
}

func deployContract(m contractDeployer, wait waitFunc, prm Prm) error {
	maxBalance := prm.MaxBalance
	if maxBalance == nil {
		maxBalance = big.NewInt(0)
	}

	err := checkHalt(wait(m.Deploy(&prm.Contract.NEF, &prm.Contract.Manifest,
		[]any{prm.Agent, prm.AllowCoinOverwrite, maxBalance})))
	if err != nil {
		return fmt.Errorf("deploy contract: %w", err)
	}

	return nil
}

type contractUpdater interface {
	Version() (*big.Int, error)
	Update(nefFile []byte, manifest []byte, data any) (util.Uint256, uint32, error)
}

func updateContract(l *zap.Logger, c contractUpdater, wait waitFunc, onChainChecksum uint32, ctr contracts.Contract) error {
	onChain, err := c.Version()
	if err != nil {
		return fmt.Errorf("get on-chain contract version: %w", err)
	}

	if onChain.Cmp(big.NewInt(common.Version)) >= 0 {
		if onChainChecksum != ctr.NEF.Checksum {
			l.Warn("local contract differs from the on-chain one of the same version, skip update",
				zap.Stringer("version", onChain),
				zap.Uint32("on-chain checksum", onChainChecksum),
				zap.Uint32("local checksum", ctr.NEF.Checksum))
			return nil
		}

		l.Debug("contract is up to date", zap.Stringer("version", onChain))
		return nil
	}

	bNEF, err := ctr.NEF.Bytes()
	if err != nil {
		return fmt.Errorf("encode NEF: %w", err)
	}

	jManifest, err := json.Marshal(ctr.Manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	l.Info("updating Crash contract...",
		zap.Stringer("from", onChain), zap.Int("to", common.Version))

	err = checkHalt(wait(c.Update(bNEF, jManifest, nil)))
	if err != nil {
		return fmt.Errorf("update contract: %w", err)
	}

	l.Info("Crash contract successfully updated")

	return nil
}

type contractConfigurator interface {
	AgentAddress() (util.Uint160, error)
	CoinOverwriteAllowed() (bool, error)
	SupportedCoins(coinID *big.Int) (util.Uint160, error)
	SetAgentAddress(agent util.Uint160) (util.Uint256, uint32, error)
	AddCoin(coinID *big.Int, token util.Uint160) (util.Uint256, uint32, error)
}

func syncConfig(ctx context.Context, l *zap.Logger, c contractConfigurator, wait waitFunc, prm Prm) error {
	agent, err := c.AgentAddress()
	if err != nil {
		return fmt.Errorf("get agent: %w", err)
	}

	if !agent.Equals(prm.Agent) {
		l.Info("changing agent...",
			zap.Stringer("from", agent), zap.Stringer("to", prm.Agent))

		err = checkHalt(wait(c.SetAgentAddress(prm.Agent)))
		if err != nil {
			return fmt.Errorf("set agent: %w", err)
		}
	} else {
		l.Debug("agent is already set")
	}

	overwrite, err := c.CoinOverwriteAllowed()
	if err != nil {
		return fmt.Errorf("get coin registry policy: %w", err)
	}

	if overwrite != prm.AllowCoinOverwrite {
		l.Warn("coin registry policy can't be changed after deployment",
			zap.Bool("on-chain", overwrite), zap.Bool("requested", prm.AllowCoinOverwrite))
	}

	for _, coin := range prm.Coins {
		if err = ctx.Err(); err != nil {
			return err
		}

		id := big.NewInt(coin.ID)
		cl := l.With(zap.Int64("coin", coin.ID), zap.Stringer("token", coin.Token))

		registered, err := c.SupportedCoins(id)
		if err != nil {
			return fmt.Errorf("get coin %d: %w", coin.ID, err)
		}

		switch {
		case registered.Equals(coin.Token):
			cl.Debug("coin is already registered")
			continue
		case !registered.Equals(util.Uint160{}) && !overwrite:
			return fmt.Errorf("coin %d is bound to %s and overwrites are disabled", coin.ID, registered.StringLE())
		}

		cl.Info("registering coin...")

		err = checkHalt(wait(c.AddCoin(id, coin.Token)))
		if err != nil {
			return fmt.Errorf("register coin %d: %w", coin.ID, err)
		}
	}

	return nil
}
