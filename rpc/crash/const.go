package crash

import (
	"github.com/crashledger/crash-contract/contracts/crash/crashconst"
)

// Failure messages of the contract. They can be matched against the
// exception of a faulted invocation.
const (
	ErrUnauthorized           = crashconst.ErrUnauthorized
	ErrInvalidAddress         = crashconst.ErrInvalidAddress
	ErrInvalidCoinID          = crashconst.ErrInvalidCoinID
	ErrCoinAlreadyRegistered  = crashconst.ErrCoinAlreadyRegistered
	ErrCoinInUse              = crashconst.ErrCoinInUse
	ErrUnsupportedCoin        = crashconst.ErrUnsupportedCoin
	ErrInsufficientAmount     = crashconst.ErrInsufficientAmount
	ErrInsufficientBalance    = crashconst.ErrInsufficientBalance
	ErrTransferFailed         = crashconst.ErrTransferFailed
	ErrOverflow               = crashconst.ErrOverflow
	ErrReentrantCall          = crashconst.ErrReentrantCall
	ErrDirectTransferRejected = crashconst.ErrDirectTransferRejected
)
