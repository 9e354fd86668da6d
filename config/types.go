package config

import (
	"math/big"

	"github.com/celo-org/genesis-builder/common/decimal/bigintstr"
)

// CohortConfig is the size and per account balance of one cohort
type CohortConfig struct {
	Count           int    `json:"count"`
	BalanceMillions uint64 `json:"balanceMillions"` // whole millions of tokens; scaled by 10^6 * 10^18
}

// ForkConfig holds the activation block of every known fork
type ForkConfig struct {
	VIP191      uint32 `json:"VIP191"`
	ETH_CONST   uint32 `json:"ETH_CONST"`
	BLOCKLIST   uint32 `json:"BLOCKLIST"`
	ETH_IST     uint32 `json:"ETH_IST"`
	VIP214      uint32 `json:"VIP214"`
	FINALITY    uint32 `json:"FINALITY"`
	GALACTICA   uint32 `json:"GALACTICA"`
	HAYABUSA    uint32 `json:"HAYABUSA"`
	HAYABUSA_TP uint32 `json:"HAYABUSA_TP"`
}

// RuntimeConfig is copied verbatim into the genesis "config" object
type RuntimeConfig struct {
	BlockInterval              uint64  `json:"blockInterval"`
	EpochLength                uint32  `json:"epochLength"`
	SeederInterval             uint32  `json:"seederInterval"`
	ValidatorEvictionThreshold uint32  `json:"validatorEvictionThreshold"`
	LowStakingPeriod           uint32  `json:"lowStakingPeriod"`
	MediumStakingPeriod        uint32  `json:"mediumStakingPeriod"`
	HighStakingPeriod          uint32  `json:"highStakingPeriod"`
	CooldownPeriod             uint32  `json:"cooldownPeriod"`
	HayabusaTP                 *uint32 `json:"hayabusaTP,omitempty" toml:",omitempty"`
}

// Params are protocol constants passed through to the genesis "params" object
type Params struct {
	BaseGasPrice        uint64               `json:"baseGasPrice"`
	RewardRatio         *bigintstr.BigIntStr `json:"rewardRatio"`
	ProposerEndorsement *bigintstr.BigIntStr `json:"proposerEndorsement"`
}

// Copy returns a deep copy, so a Config value never shares big integers with another
func (p Params) Copy() Params {
	cpy := p
	if p.RewardRatio != nil {
		cpy.RewardRatio = bigintstr.FromBig(p.RewardRatio.BigInt())
	}
	if p.ProposerEndorsement != nil {
		cpy.ProposerEndorsement = bigintstr.FromBig(p.ProposerEndorsement.BigInt())
	}
	return cpy
}

// ProposerEndorsementInt returns the endorsement as big.Int (zero when unset)
func (p Params) ProposerEndorsementInt() *big.Int {
	if p.ProposerEndorsement == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(p.ProposerEndorsement.BigInt())
}
