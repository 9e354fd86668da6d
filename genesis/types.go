package genesis

import (
	"github.com/celo-org/genesis-builder/common/decimal/bigintstr"
	"github.com/celo-org/genesis-builder/config"
	"github.com/celo-org/genesis-builder/keys"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Account is one entry of the genesis ledger
type Account struct {
	Address common.Address              `json:"address"`
	Balance *hexutil.Big                `json:"balance"`
	Energy  *hexutil.Big                `json:"energy"`
	Code    hexutil.Bytes               `json:"code,omitempty"`
	Storage map[common.Hash]common.Hash `json:"storage,omitempty"`
}

// AuthorityNode is a genesis validator: master account, endorsor account and off-chain identity
type AuthorityNode struct {
	MasterAddress   common.Address `json:"masterAddress"`
	EndorsorAddress common.Address `json:"endorsorAddress"`
	Identity        keys.Identity  `json:"identity"`
}

// ExecutorApprover is one member of the executor contract
type ExecutorApprover struct {
	Address  common.Address `json:"address"`
	Identity keys.Identity  `json:"identity"`
}

// Executor is the genesis state of the executor contract
type Executor struct {
	Approvers []ExecutorApprover `json:"approvers"`
}

// Params is the "params" object of the genesis file
type Params struct {
	ExecutorAddress     common.Address       `json:"executorAddress"`
	BaseGasPrice        uint64               `json:"baseGasPrice"`
	RewardRatio         *bigintstr.BigIntStr `json:"rewardRatio"`
	ProposerEndorsement *bigintstr.BigIntStr `json:"proposerEndorsement"`
}

// Record is the content of genesis.json
type Record struct {
	GasLimit   uint64               `json:"gasLimit"`
	ExtraData  string               `json:"extraData"`
	ForkConfig config.ForkConfig    `json:"forkConfig"`
	Config     config.RuntimeConfig `json:"config"`
	LaunchTime uint64               `json:"launchTime"`
	Accounts   []Account            `json:"accounts"`
	Authority  []AuthorityNode      `json:"authority"`
	Executor   Executor             `json:"executor"`
	Params     Params               `json:"params"`
}

// Addresses returns the ledger addresses in order
func (r *Record) Addresses() []common.Address {
	res := make([]common.Address, len(r.Accounts))
	for i, acc := range r.Accounts {
		res[i] = acc.Address
	}
	return res
}
