// Package crash contains RPC wrappers for Crash custody contract.
package crash

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// AgentChangedEvent represents "AgentChanged" event emitted by the contract.
type AgentChangedEvent struct {
	Previous util.Uint160
	Current  util.Uint160
}

// CoinAddedEvent represents "CoinAdded" event emitted by the contract.
type CoinAddedEvent struct {
	CoinID *big.Int
	Token  util.Uint160
}

// DepositEvent represents "Deposit" event emitted by the contract.
type DepositEvent struct {
	User   util.Uint160
	CoinID *big.Int
	Amount *big.Int
}

// WithdrawEvent represents "Withdraw" event emitted by the contract.
type WithdrawEvent struct {
	User   util.Uint160
	CoinID *big.Int
	Amount *big.Int
}

// SettleEvent represents "Settle" event emitted by the contract.
type SettleEvent struct {
	User      util.Uint160
	CoinID    *big.Int
	Amount    *big.Int
	Recipient util.Uint160
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
	CallAndExpandIterator(contract util.Uint160, method string, maxItems int, params ...any) (*result.Invoke, error)
	TerminateSession(sessionID uuid.UUID) error
	TraverseIterator(sessionID uuid.UUID, iterator *result.Iterator, num int) ([]stackitem.Item, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeRun(script []byte) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	MakeUnsignedRun(script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
	SendRun(script []byte) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash    util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
	hash  util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, hash}
}

// Owner invokes `owner` method of contract.
func (c *ContractReader) Owner() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "owner"))
}

// AgentAddress invokes `agentAddress` method of contract.
func (c *ContractReader) AgentAddress() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "agentAddress"))
}

// SupportedCoins invokes `supportedCoins` method of contract.
func (c *ContractReader) SupportedCoins(coinID *big.Int) (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "supportedCoins", coinID))
}

// IterateCoins invokes `iterateCoins` method of contract.
func (c *ContractReader) IterateCoins() (uuid.UUID, result.Iterator, error) {
	return unwrap.SessionIterator(c.invoker.Call(c.hash, "iterateCoins"))
}

// IterateCoinsExpanded is similar to IterateCoins (uses the same contract
// method), but can be useful if the server used doesn't support sessions and
// doesn't expand iterators. It creates a script that will get the specified
// number of result items from the iterator right in the VM and return them to
// you. It's only limited by VM stack and GAS available for RPC invocations.
func (c *ContractReader) IterateCoinsExpanded(_numOfIteratorItems int) ([]stackitem.Item, error) {
	return unwrap.Array(c.invoker.CallAndExpandIterator(c.hash, "iterateCoins", _numOfIteratorItems))
}

// CoinOverwriteAllowed invokes `coinOverwriteAllowed` method of contract.
func (c *ContractReader) CoinOverwriteAllowed() (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "coinOverwriteAllowed"))
}

// BalanceOf invokes `balanceOf` method of contract.
func (c *ContractReader) BalanceOf(user util.Uint160, coinID *big.Int) (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "balanceOf", user, coinID))
}

// TotalDeposited invokes `totalDeposited` method of contract.
func (c *ContractReader) TotalDeposited(coinID *big.Int) (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "totalDeposited", coinID))
}

// MaxBalance invokes `maxBalance` method of contract.
func (c *ContractReader) MaxBalance() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "maxBalance"))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// AddCoin creates a transaction invoking `addCoin` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) AddCoin(coinID *big.Int, token util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "addCoin", coinID, token)
}

// AddCoinTransaction creates a transaction invoking `addCoin` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) AddCoinTransaction(coinID *big.Int, token util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "addCoin", coinID, token)
}

// AddCoinUnsigned creates a transaction invoking `addCoin` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) AddCoinUnsigned(coinID *big.Int, token util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "addCoin", nil, coinID, token)
}

// Deposit creates a transaction invoking `deposit` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Deposit(coinID *big.Int, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "deposit", coinID, amount)
}

// DepositTransaction creates a transaction invoking `deposit` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) DepositTransaction(coinID *big.Int, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "deposit", coinID, amount)
}

// DepositUnsigned creates a transaction invoking `deposit` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) DepositUnsigned(coinID *big.Int, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "deposit", nil, coinID, amount)
}

// SetAgentAddress creates a transaction invoking `setAgentAddress` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) SetAgentAddress(agent util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "setAgentAddress", agent)
}

// SetAgentAddressTransaction creates a transaction invoking `setAgentAddress` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) SetAgentAddressTransaction(agent util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "setAgentAddress", agent)
}

// SetAgentAddressUnsigned creates a transaction invoking `setAgentAddress` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) SetAgentAddressUnsigned(agent util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "setAgentAddress", nil, agent)
}

// Settle creates a transaction invoking `settle` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Settle(user util.Uint160, coinID *big.Int, amount *big.Int, recipient util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "settle", user, coinID, amount, recipient)
}

// SettleTransaction creates a transaction invoking `settle` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) SettleTransaction(user util.Uint160, coinID *big.Int, amount *big.Int, recipient util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "settle", user, coinID, amount, recipient)
}

// SettleUnsigned creates a transaction invoking `settle` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) SettleUnsigned(user util.Uint160, coinID *big.Int, amount *big.Int, recipient util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "settle", nil, user, coinID, amount, recipient)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(nefFile []byte, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", nefFile, manifest, data)
}

// UpdateTransaction creates a transaction invoking `update` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UpdateTransaction(nefFile []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "update", nefFile, manifest, data)
}

// UpdateUnsigned creates a transaction invoking `update` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) UpdateUnsigned(nefFile []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "update", nil, nefFile, manifest, data)
}

// Withdraw creates a transaction invoking `withdraw` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Withdraw(coinID *big.Int, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "withdraw", coinID, amount)
}

// WithdrawTransaction creates a transaction invoking `withdraw` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) WithdrawTransaction(coinID *big.Int, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "withdraw", coinID, amount)
}

// WithdrawUnsigned creates a transaction invoking `withdraw` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) WithdrawUnsigned(coinID *big.Int, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "withdraw", nil, coinID, amount)
}

// AgentChangedEventsFromApplicationLog retrieves a set of all emitted events
// with "AgentChanged" name from the provided [result.ApplicationLog].
func AgentChangedEventsFromApplicationLog(log *result.ApplicationLog) ([]*AgentChangedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*AgentChangedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "AgentChanged" {
				continue
			}
			event := new(AgentChangedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize AgentChangedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to AgentChangedEvent or
// returns an error if it's not possible to do to so.
func (e *AgentChangedEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 2)
	if err != nil {
		return err
	}

	e.Previous, err = uint160FromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field Previous: %w", err)
	}

	e.Current, err = uint160FromItem(arr[1])
	if err != nil {
		return fmt.Errorf("field Current: %w", err)
	}

	return nil
}

// CoinAddedEventsFromApplicationLog retrieves a set of all emitted events
// with "CoinAdded" name from the provided [result.ApplicationLog].
func CoinAddedEventsFromApplicationLog(log *result.ApplicationLog) ([]*CoinAddedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*CoinAddedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "CoinAdded" {
				continue
			}
			event := new(CoinAddedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize CoinAddedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to CoinAddedEvent or
// returns an error if it's not possible to do to so.
func (e *CoinAddedEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 2)
	if err != nil {
		return err
	}

	e.CoinID, err = arr[0].TryInteger()
	if err != nil {
		return fmt.Errorf("field CoinID: %w", err)
	}

	e.Token, err = uint160FromItem(arr[1])
	if err != nil {
		return fmt.Errorf("field Token: %w", err)
	}

	return nil
}

// DepositEventsFromApplicationLog retrieves a set of all emitted events
// with "Deposit" name from the provided [result.ApplicationLog].
func DepositEventsFromApplicationLog(log *result.ApplicationLog) ([]*DepositEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*DepositEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "Deposit" {
				continue
			}
			event := new(DepositEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize DepositEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to DepositEvent or
// returns an error if it's not possible to do to so.
func (e *DepositEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 3)
	if err != nil {
		return err
	}

	e.User, e.CoinID, e.Amount, err = userCoinAmount(arr)
	return err
}

// WithdrawEventsFromApplicationLog retrieves a set of all emitted events
// with "Withdraw" name from the provided [result.ApplicationLog].
func WithdrawEventsFromApplicationLog(log *result.ApplicationLog) ([]*WithdrawEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*WithdrawEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "Withdraw" {
				continue
			}
			event := new(WithdrawEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize WithdrawEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to WithdrawEvent or
// returns an error if it's not possible to do to so.
func (e *WithdrawEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 3)
	if err != nil {
		return err
	}

	e.User, e.CoinID, e.Amount, err = userCoinAmount(arr)
	return err
}

// SettleEventsFromApplicationLog retrieves a set of all emitted events
// with "Settle" name from the provided [result.ApplicationLog].
func SettleEventsFromApplicationLog(log *result.ApplicationLog) ([]*SettleEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*SettleEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "Settle" {
				continue
			}
			event := new(SettleEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize SettleEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to SettleEvent or
// returns an error if it's not possible to do to so.
func (e *SettleEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 4)
	if err != nil {
		return err
	}

	e.User, e.CoinID, e.Amount, err = userCoinAmount(arr[:3])
	if err != nil {
		return err
	}

	e.Recipient, err = uint160FromItem(arr[3])
	if err != nil {
		return fmt.Errorf("field Recipient: %w", err)
	}

	return nil
}

func eventFields(item *stackitem.Array, n int) ([]stackitem.Item, error) {
	if item == nil {
		return nil, errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, errors.New("not an array")
	}
	if len(arr) != n {
		return nil, errors.New("wrong number of structure elements")
	}
	return arr, nil
}

func userCoinAmount(arr []stackitem.Item) (util.Uint160, *big.Int, *big.Int, error) {
	user, err := uint160FromItem(arr[0])
	if err != nil {
		return util.Uint160{}, nil, nil, fmt.Errorf("field User: %w", err)
	}

	coinID, err := arr[1].TryInteger()
	if err != nil {
		return util.Uint160{}, nil, nil, fmt.Errorf("field CoinID: %w", err)
	}

	amount, err := arr[2].TryInteger()
	if err != nil {
		return util.Uint160{}, nil, nil, fmt.Errorf("field Amount: %w", err)
	}

	return user, coinID, amount, nil
}

func uint160FromItem(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	u, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		return util.Uint160{}, err
	}
	return u, nil
}
