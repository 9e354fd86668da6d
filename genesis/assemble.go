package genesis

import (
	"fmt"
	"math/big"

	"github.com/celo-org/genesis-builder/cohort"
	"github.com/celo-org/genesis-builder/common/decimal/bigintstr"
	"github.com/celo-org/genesis-builder/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// AuthorityNodes pairs the i-th authority (master) account with the i-th
// endorsor account and the i-th authority identity.
func AuthorityNodes(set *cohort.Set) ([]AuthorityNode, error) {
	masters := set.Get(cohort.Authority)
	if masters == nil {
		return nil, &config.ConfigurationError{Field: "authority.count", Reason: "no authority nodes"}
	}
	endorsors := set.Accounts(cohort.Endorsor)
	if len(endorsors) != masters.Len() {
		return nil, &config.ConfigurationError{
			Field:  "authority.count",
			Reason: fmt.Sprintf("%d master accounts but %d endorsor accounts", masters.Len(), len(endorsors)),
		}
	}
	if len(masters.Identities) != masters.Len() {
		return nil, fmt.Errorf("authority cohort has %d identities for %d accounts", len(masters.Identities), masters.Len())
	}
	nodes := make([]AuthorityNode, masters.Len())
	for i, acc := range masters.Accounts {
		nodes[i] = AuthorityNode{
			MasterAddress:   acc.Address,
			EndorsorAddress: endorsors[i].Address,
			Identity:        masters.Identities[i],
		}
	}
	return nodes, nil
}

// ExecutorApprovers returns one approver per executor account; nil without executors
func ExecutorApprovers(set *cohort.Set) ([]ExecutorApprover, error) {
	executors := set.Get(cohort.Executor)
	if executors == nil {
		return nil, nil
	}
	if len(executors.Identities) != executors.Len() {
		return nil, fmt.Errorf("executor cohort has %d identities for %d accounts", len(executors.Identities), executors.Len())
	}
	approvers := make([]ExecutorApprover, executors.Len())
	for i, acc := range executors.Accounts {
		approvers[i] = ExecutorApprover{Address: acc.Address, Identity: executors.Identities[i]}
	}
	return approvers, nil
}

// Build assembles the genesis record of set, deriving authority nodes and
// executor approvers from the set itself
func Build(set *cohort.Set, cfg config.Config) (*Record, error) {
	nodes, err := AuthorityNodes(set)
	if err != nil {
		return nil, err
	}
	approvers, err := ExecutorApprovers(set)
	if err != nil {
		return nil, err
	}
	return Assemble(set, nodes, approvers, cfg)
}

// Assemble lays out the genesis ledger. Accounts are appended in a fixed order:
// general, faucet, rotating validators, the staker, an (endorsor, master) pair
// per authority node, executors and finally the params account.
func Assemble(set *cohort.Set, nodes []AuthorityNode, approvers []ExecutorApprover, cfg config.Config) (*Record, error) {
	logger := log.New("obj", "assembler")

	if err := cfg.Runtime.Validate(); err != nil {
		return nil, err
	}
	authority := set.Get(cohort.Authority)
	if authority == nil || len(nodes) != authority.Len() || len(set.Accounts(cohort.Endorsor)) != authority.Len() {
		return nil, &config.ConfigurationError{Field: "authority.count", Reason: "authority nodes, master and endorsor accounts must agree"}
	}
	if len(approvers) != len(set.Accounts(cohort.Executor)) {
		return nil, &config.ConfigurationError{Field: "executors", Reason: "executor approvers and accounts must agree"}
	}
	authBalance := authority.Balance

	var accounts []Account
	for _, kind := range []cohort.Kind{cohort.General, cohort.Faucet, cohort.RotatingValidator} {
		c := set.Get(kind)
		if c == nil {
			continue
		}
		for _, acc := range c.Accounts {
			accounts = append(accounts, plainAccount(acc.Address, c.Balance))
		}
	}
	accounts = append(accounts, stakerAccount())
	for _, node := range nodes {
		accounts = append(accounts, endorsorAccount(node.EndorsorAddress, authBalance))
		accounts = append(accounts, plainAccount(node.MasterAddress, authBalance))
	}
	for _, approver := range approvers {
		accounts = append(accounts, plainAccount(approver.Address, authBalance))
	}
	accounts = append(accounts, paramsAccount(len(nodes)))

	if err := checkUnique(accounts); err != nil {
		return nil, err
	}

	if endorsement := cfg.Params.ProposerEndorsementInt(); authBalance.Cmp(endorsement) < 0 {
		logger.Warn("Authority balance below proposer endorsement", "balance", authBalance, "endorsement", endorsement)
	}

	record := &Record{
		GasLimit:   cfg.GasLimit,
		ExtraData:  cfg.ExtraData,
		ForkConfig: cfg.Forks,
		Config:     cfg.Runtime,
		LaunchTime: cfg.LaunchTime,
		Accounts:   accounts,
		Authority:  nodes,
		Executor:   Executor{Approvers: approvers},
		Params: Params{
			ExecutorAddress:     ExecutorAddress,
			BaseGasPrice:        cfg.Params.BaseGasPrice,
			RewardRatio:         copyBigIntStr(cfg.Params.RewardRatio),
			ProposerEndorsement: copyBigIntStr(cfg.Params.ProposerEndorsement),
		},
	}
	if record.Executor.Approvers == nil {
		record.Executor.Approvers = []ExecutorApprover{}
	}
	logger.Info("Assembled genesis", "accounts", len(accounts), "authorities", len(nodes), "approvers", len(approvers))
	return record, nil
}

func checkUnique(accounts []Account) error {
	seen := make(map[common.Address]int, len(accounts))
	for i, acc := range accounts {
		if j, ok := seen[acc.Address]; ok {
			return &config.ConfigurationError{
				Field:  "accounts",
				Reason: fmt.Sprintf("address %s appears at ledger positions %d and %d", acc.Address.Hex(), j, i),
			}
		}
		seen[acc.Address] = i
	}
	return nil
}

func copyBigIntStr(v *bigintstr.BigIntStr) *bigintstr.BigIntStr {
	if v == nil {
		return bigintstr.FromBig(new(big.Int))
	}
	return bigintstr.FromBig(v.BigInt())
}
