package cohort

import (
	"context"
	"fmt"
	"math/big"
	"runtime"

	"github.com/celo-org/genesis-builder/common/decimal/token"
	"github.com/celo-org/genesis-builder/config"
	"github.com/celo-org/genesis-builder/keys"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"
)

// Cohort is a named, seed-backed group of accounts. It is not modified after
// Generate returns.
type Cohort struct {
	Kind       Kind
	Seed       keys.Seed
	Start      uint32 // derivation index of Accounts[0]
	Balance    *big.Int
	Accounts   []keys.Account
	Identities []keys.Identity // one per account for authority and executor cohorts
}

// Len returns the number of accounts
func (c *Cohort) Len() int { return len(c.Accounts) }

// Addresses returns the account addresses in index order
func (c *Cohort) Addresses() []common.Address {
	res := make([]common.Address, len(c.Accounts))
	for i, acc := range c.Accounts {
		res[i] = acc.Address
	}
	return res
}

// BalanceHex renders Balance as minimal hex ("0x0" for zero)
func (c *Cohort) BalanceHex() string {
	return (*token.Token)(c.Balance).Hex()
}

// Entries returns the persisted form of the accounts
func (c *Cohort) Entries() []KeyEntry {
	res := make([]KeyEntry, len(c.Accounts))
	for i := range c.Accounts {
		res[i] = KeyEntry{Address: c.Accounts[i].Address, Key: c.Accounts[i].PrivateKeyHex()}
	}
	return res
}

// Generate derives count accounts of kind from seed over [start, start+count).
// Derivation is spread over workers goroutines (GOMAXPROCS when workers <= 0);
// the result is in index order regardless.
func Generate(ctx context.Context, deriver keys.Deriver, seed keys.Seed, kind Kind, start uint32, count int, balance *big.Int, workers int) (*Cohort, error) {
	if count <= 0 {
		return nil, &config.ConfigurationError{Field: kind.String() + ".count", Reason: fmt.Sprintf("must be positive, have %d", count)}
	}
	if balance == nil || balance.Sign() < 0 {
		return nil, &config.ConfigurationError{Field: kind.String() + ".balance", Reason: "must be a non-negative integer"}
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	accounts := make([]keys.Account, count)
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i := 0; i < count; i++ {
		i := i
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			acc, err := deriver.Derive(seed, start+uint32(i))
			if err != nil {
				return err
			}
			accounts[i] = acc
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	c := &Cohort{
		Kind:     kind,
		Seed:     seed,
		Start:    start,
		Balance:  new(big.Int).Set(balance),
		Accounts: accounts,
	}
	if kind.HasIdentity() {
		ids, err := newIdentities(count)
		if err != nil {
			return nil, err
		}
		c.Identities = ids
	}
	log.Debug("Generated cohort", "cohort", kind, "start", start, "count", count, "balance", c.BalanceHex())
	return c, nil
}

func newIdentities(n int) ([]keys.Identity, error) {
	ids := make([]keys.Identity, n)
	for i := range ids {
		id, err := keys.NewIdentity()
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
