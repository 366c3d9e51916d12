// Package crashconst contains constants shared by the Crash contract, its RPC
// wrappers and clients.
package crashconst

import "github.com/crashledger/crash-contract/common"

// Exception messages thrown by the Crash contract. Clients may search for
// them in the fault exception of a failed transaction.
const (
	// ErrUnauthorized is thrown when owner- or agent-only method is called by
	// someone else.
	ErrUnauthorized = common.ErrUnauthorized
	// ErrWitnessFailed is thrown when the transaction sender did not witness
	// an operation on its own balance.
	ErrWitnessFailed = common.ErrWitnessFailed
	// ErrInvalidAddress is thrown when a zero or malformed script hash is
	// given where a real one is required.
	ErrInvalidAddress = "invalid address"
	// ErrInvalidCoinID is thrown for non-positive coin identifiers.
	ErrInvalidCoinID = "invalid coin id"
	// ErrCoinAlreadyRegistered is thrown by addCoin when the coin ID is taken
	// and the registry does not allow overwrites.
	ErrCoinAlreadyRegistered = "coin is already registered"
	// ErrCoinInUse is thrown by addCoin when the coin is switched to another
	// token while the ledger still holds deposits of it.
	ErrCoinInUse = "coin has outstanding deposits"
	// ErrUnsupportedCoin is thrown when the coin ID is not registered.
	ErrUnsupportedCoin = "unsupported coin"
	// ErrInsufficientAmount is thrown for zero or negative amounts.
	ErrInsufficientAmount = "amount must be positive"
	// ErrInsufficientBalance is thrown when a debit exceeds the ledger balance.
	ErrInsufficientBalance = "insufficient balance"
	// ErrTransferFailed is thrown when the token contract refused to move
	// funds or moved an unexpected amount.
	ErrTransferFailed = "token transfer failed"
	// ErrOverflow is thrown when a credit would exceed the maximum balance.
	ErrOverflow = "balance overflow"
	// ErrReentrantCall is thrown when a token calls back into the ledger
	// while a token transfer is in progress.
	ErrReentrantCall = "reentrant call"
	// ErrDirectTransferRejected is thrown by onNEP17Payment for token
	// transfers not initiated by deposit.
	ErrDirectTransferRejected = "direct token transfers are not accepted, use deposit"
	// ErrInvalidMaxBalance is thrown by _deploy for a negative balance bound.
	ErrInvalidMaxBalance = "invalid max balance"
)

// Names of the notifications produced by the Crash contract.
const (
	AgentChangedEvent = "AgentChanged"
	CoinAddedEvent    = "CoinAdded"
	DepositEvent      = "Deposit"
	WithdrawEvent     = "Withdraw"
	SettleEvent       = "Settle"
)

// DefaultMaxBalance is the decimal representation of the largest integer
// NeoVM can hold (2^255-1). It bounds ledger entries when no explicit limit
// is given at deployment.
const DefaultMaxBalance = "57896044618658097711785492504343953926634992332820282019728792003956564819967"
