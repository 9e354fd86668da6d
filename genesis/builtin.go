package genesis

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// Well-known addresses of the builtin contracts
var (
	StakerAddress   = common.BytesToAddress([]byte("Staker"))
	ParamsAddress   = common.BytesToAddress([]byte("Params"))
	ExecutorAddress = common.BytesToAddress([]byte("Executor"))
)

// KeyMaxBlockProposers is the params storage slot holding the authority node count
var KeyMaxBlockProposers = common.BytesToHash([]byte("max-block-proposers"))

// stubCode is deployed at the staker and at every endorsor so the node treats them as contracts
var stubCode = hexutil.Bytes(hexutil.MustDecode("0x6060604052600256"))

// endorsor storage: slot 1 set to 2 marks the endorsement as authorized
var (
	endorsedSlot  = common.BigToHash(big.NewInt(1))
	endorsedValue = common.BigToHash(big.NewInt(2))
)

func stakerAccount() Account {
	return Account{
		Address: StakerAddress,
		Balance: new(hexutil.Big),
		Energy:  new(hexutil.Big),
		Code:    common.CopyBytes(stubCode),
	}
}

func endorsorAccount(addr common.Address, balance *big.Int) Account {
	return Account{
		Address: addr,
		Balance: (*hexutil.Big)(new(big.Int).Set(balance)),
		Energy:  (*hexutil.Big)(new(big.Int).Set(balance)),
		Code:    common.CopyBytes(stubCode),
		Storage: map[common.Hash]common.Hash{endorsedSlot: endorsedValue},
	}
}

func paramsAccount(authorities int) Account {
	count := uint256.NewInt(uint64(authorities)).Bytes32()
	return Account{
		Address: ParamsAddress,
		Balance: new(hexutil.Big),
		Energy:  new(hexutil.Big),
		Storage: map[common.Hash]common.Hash{KeyMaxBlockProposers: common.Hash(count)},
	}
}

func plainAccount(addr common.Address, balance *big.Int) Account {
	return Account{
		Address: addr,
		Balance: (*hexutil.Big)(new(big.Int).Set(balance)),
		Energy:  (*hexutil.Big)(new(big.Int).Set(balance)),
	}
}
