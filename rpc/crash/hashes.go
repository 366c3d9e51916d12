package crash

import (
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Name is the contract name from its manifest. Together with the deployer
// and NEF checksum it defines the contract hash.
const Name = "Crash"

// ContractStateGetter is the interface required for contract state resolution
// using a known contract hash. It returns error with 'Unknown contract'
// substring if requested contract is missing.
type ContractStateGetter interface {
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// Hash calculates the hash the contract gets when deployed by the given
// account from the NEF with the given checksum.
func Hash(deployer util.Uint160, nefChecksum uint32) util.Uint160 {
	return state.CreateContractHash(deployer, nefChecksum, Name)
}

// GetState returns the state of the contract deployed at h. Nil state and
// nil error mean there is no such contract.
func GetState(sg ContractStateGetter, h util.Uint160) (*state.Contract, error) {
	c, err := sg.GetContractStateByHash(h)
	if err != nil {
		if IsErrContractNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	return c, nil
}

// IsErrContractNotFound checks whether the error is returned by the node for
// a missing contract.
func IsErrContractNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Unknown contract")
}
