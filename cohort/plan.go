package cohort

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/celo-org/genesis-builder/common/decimal/token"
	"github.com/celo-org/genesis-builder/config"
	"github.com/celo-org/genesis-builder/keys"
	"github.com/ethereum/go-ethereum/log"
)

// Spec describes one cohort of a build
type Spec struct {
	Kind    Kind
	SeedOf  Kind // owner of the seed; equals Kind unless the seed is shared
	Start   uint32
	Count   int
	Balance *big.Int
}

// Plan is the ordered list of cohorts of a build
type Plan []Spec

// NewPlan lays out the cohorts requested by cfg. Cohorts with a zero count are
// left out; in shared seed mode the general, faucet and rotating validator
// cohorts occupy contiguous ranges of the general seed.
func NewPlan(cfg config.Config) (Plan, error) {
	var (
		plan  Plan
		next  uint32
		auth  = token.FromMillions(cfg.Authority.BalanceMillions).BigInt()
		owner = func(k Kind) Kind { return k }
	)
	if cfg.SharedSeed {
		owner = func(k Kind) Kind {
			if k == Faucet || k == RotatingValidator {
				return General
			}
			return k
		}
	}
	add := func(kind Kind, count int, balance *big.Int) {
		if count <= 0 {
			return
		}
		spec := Spec{Kind: kind, SeedOf: owner(kind), Count: count, Balance: balance}
		if spec.SeedOf != kind || kind == General {
			spec.Start = next
			next += uint32(count)
		}
		plan = append(plan, spec)
	}
	add(General, cfg.Accounts.Count, token.FromMillions(cfg.Accounts.BalanceMillions).BigInt())
	add(Faucet, cfg.Faucet.Count, token.FromMillions(cfg.Faucet.BalanceMillions).BigInt())
	add(RotatingValidator, cfg.RotatingValidators.Count, token.FromMillions(cfg.RotatingValidators.BalanceMillions).BigInt())
	add(Authority, cfg.Authority.Count, auth)
	add(Endorsor, cfg.Authority.Count, auth)
	add(Executor, cfg.Executors, auth)

	if err := plan.Check(); err != nil {
		return nil, err
	}
	return plan, nil
}

// Spec returns the spec of kind, if planned
func (p Plan) Spec(kind Kind) (Spec, bool) {
	for _, s := range p {
		if s.Kind == kind {
			return s, true
		}
	}
	return Spec{}, false
}

// Kinds returns the planned kinds in build order
func (p Plan) Kinds() []Kind {
	res := make([]Kind, len(p))
	for i, s := range p {
		res[i] = s.Kind
	}
	return res
}

// Check asserts that cohorts sharing a seed use disjoint index ranges and that
// every seed owner is built before the cohorts borrowing its seed.
func (p Plan) Check() error {
	built := make(map[Kind]bool)
	ranges := make(map[Kind][]Spec)
	for _, s := range p {
		if s.SeedOf != s.Kind && !built[s.SeedOf] {
			return &config.ConfigurationError{Field: "sharedSeed", Reason: fmt.Sprintf("%s borrows the seed of %s which is not built before it", s.Kind, s.SeedOf)}
		}
		built[s.Kind] = true
		ranges[s.SeedOf] = append(ranges[s.SeedOf], s)
	}
	for seedOwner, specs := range ranges {
		sort.Slice(specs, func(i, j int) bool { return specs[i].Start < specs[j].Start })
		for i := 1; i < len(specs); i++ {
			prev := specs[i-1]
			if uint64(prev.Start)+uint64(prev.Count) > uint64(specs[i].Start) {
				return &config.ConfigurationError{
					Field: "sharedSeed",
					Reason: fmt.Sprintf("%s range [%d, %d) overlaps %s range starting at %d on the %s seed",
						prev.Kind, prev.Start, uint64(prev.Start)+uint64(prev.Count), specs[i].Kind, specs[i].Start, seedOwner),
				}
			}
		}
	}
	return nil
}

// Set holds the cohorts of one build
type Set struct {
	cohorts map[Kind]*Cohort
}

// NewSet groups cohorts by kind
func NewSet(cohorts ...*Cohort) *Set {
	s := &Set{cohorts: make(map[Kind]*Cohort, len(cohorts))}
	for _, c := range cohorts {
		s.cohorts[c.Kind] = c
	}
	return s
}

// Get returns the cohort of kind or nil
func (s *Set) Get(kind Kind) *Cohort { return s.cohorts[kind] }

// Accounts returns the accounts of kind (nil when absent)
func (s *Set) Accounts(kind Kind) []keys.Account {
	if c := s.cohorts[kind]; c != nil {
		return c.Accounts
	}
	return nil
}

// Cohorts returns the present cohorts in persistence order
func (s *Set) Cohorts() []*Cohort {
	var res []*Cohort
	for _, k := range Kinds() {
		if c := s.cohorts[k]; c != nil {
			res = append(res, c)
		}
	}
	return res
}

// Build runs plan with strategy, one cohort at a time in plan order
func Build(ctx context.Context, plan Plan, strategy Strategy) (*Set, error) {
	if err := plan.Check(); err != nil {
		return nil, err
	}
	set := NewSet()
	for _, spec := range plan {
		var shared keys.Seed
		if spec.SeedOf != spec.Kind {
			shared = set.Get(spec.SeedOf).Seed
		}
		c, err := strategy.Cohort(ctx, spec, shared)
		if err != nil {
			return nil, fmt.Errorf("%s cohort: %w", spec.Kind, err)
		}
		set.cohorts[c.Kind] = c
		log.Info("Cohort ready", "cohort", c.Kind, "accounts", c.Len(), "start", c.Start)
	}
	return set, nil
}
