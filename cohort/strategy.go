package cohort

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/celo-org/genesis-builder/config"
	"github.com/celo-org/genesis-builder/keys"
	"github.com/ethereum/go-ethereum/log"
)

// Strategy produces the cohort described by spec. seed is the seed of the
// cohort that owns spec's index range when it is shared, zero otherwise.
type Strategy interface {
	Cohort(ctx context.Context, spec Spec, seed keys.Seed) (*Cohort, error)
}

// Source gives read access to previously persisted cohorts
type Source interface {
	LoadSeed(kind Kind) (keys.Seed, error)
	LoadKeys(kind Kind) ([]KeyEntry, error)
}

// Fresh derives new cohorts. Seeds listed in Seeds are reused, every other
// cohort gets a newly minted seed.
type Fresh struct {
	Deriver keys.Deriver
	Workers int
	Seeds   map[Kind]keys.Seed
}

// NewFresh creates a fresh strategy from the build config
func NewFresh(cfg config.Config) (*Fresh, error) {
	deriver, err := keys.NewHDDeriver(cfg.DerivationPath)
	if err != nil {
		return nil, err
	}
	seeds, err := pinnedSeeds(cfg)
	if err != nil {
		return nil, err
	}
	return &Fresh{Deriver: deriver, Workers: cfg.Workers, Seeds: seeds}, nil
}

// Cohort implements Strategy
func (f *Fresh) Cohort(ctx context.Context, spec Spec, seed keys.Seed) (*Cohort, error) {
	if seed.IsZero() {
		if pinned, ok := f.Seeds[spec.Kind]; ok {
			seed = pinned
		} else {
			var err error
			if seed, err = keys.NewSeed(); err != nil {
				return nil, err
			}
		}
	}
	return Generate(ctx, f.Deriver, seed, spec.Kind, spec.Start, spec.Count, spec.Balance, f.Workers)
}

func pinnedSeeds(cfg config.Config) (map[Kind]keys.Seed, error) {
	seeds := make(map[Kind]keys.Seed, len(cfg.Mnemonics))
	for name, phrase := range cfg.Mnemonics {
		kind, err := ParseKind(name)
		if err != nil {
			return nil, &config.ConfigurationError{Field: "mnemonics." + name, Reason: err.Error()}
		}
		if cfg.SharedSeed && (kind == Faucet || kind == RotatingValidator) {
			return nil, &config.ConfigurationError{Field: "mnemonics." + name, Reason: "cohort shares the genesis seed"}
		}
		seed, err := keys.ParseSeed(phrase)
		if err != nil {
			return nil, &config.ConfigurationError{Field: "mnemonics." + name, Reason: err.Error()}
		}
		seeds[kind] = seed
	}
	return seeds, nil
}

// Reload rebuilds cohorts from persisted seeds and key lists, rejecting any
// key list that does not match its seed. Identity keys cannot be recovered
// from a seed and are minted again. The size of a reloaded cohort is the
// length of its persisted key list.
type Reload struct {
	Deriver keys.Deriver
	Source  Source

	entries map[Kind][]KeyEntry
}

// NewReload creates a reload strategy reading from source
func NewReload(cfg config.Config, source Source) (*Reload, error) {
	deriver, err := keys.NewHDDeriver(cfg.DerivationPath)
	if err != nil {
		return nil, err
	}
	return &Reload{Deriver: deriver, Source: source}, nil
}

// Plan lays out the persisted cohorts. Counts come from the key lists; cfg
// only contributes balances and the seed layout. A missing executor key list
// means the build had no executors.
func (r *Reload) Plan(cfg config.Config) (Plan, error) {
	counts := make(map[Kind]int)
	for _, kind := range Kinds() {
		entries, err := r.Source.LoadKeys(kind)
		if kind == Executor && errors.Is(err, fs.ErrNotExist) {
			entries, err = []KeyEntry{}, nil
		}
		if err != nil {
			return nil, err
		}
		r.remember(kind, entries)
		counts[kind] = len(entries)
	}
	if counts[Authority] != counts[Endorsor] {
		return nil, &config.ConfigurationError{
			Field:  "authority.count",
			Reason: fmt.Sprintf("%d authority keys but %d endorsor keys are persisted", counts[Authority], counts[Endorsor]),
		}
	}

	loaded := cfg.Copy()
	loaded.Accounts.Count = counts[General]
	loaded.Faucet.Count = counts[Faucet]
	loaded.RotatingValidators.Count = counts[RotatingValidator]
	loaded.Authority.Count = counts[Authority]
	loaded.Executors = counts[Executor]
	return NewPlan(loaded)
}

func (r *Reload) remember(kind Kind, entries []KeyEntry) {
	if r.entries == nil {
		r.entries = make(map[Kind][]KeyEntry)
	}
	r.entries[kind] = entries
}

func (r *Reload) keyList(kind Kind) ([]KeyEntry, error) {
	if entries, ok := r.entries[kind]; ok {
		return entries, nil
	}
	entries, err := r.Source.LoadKeys(kind)
	if err != nil {
		return nil, err
	}
	r.remember(kind, entries)
	return entries, nil
}

// Cohort implements Strategy
func (r *Reload) Cohort(ctx context.Context, spec Spec, shared keys.Seed) (*Cohort, error) {
	seed, err := r.Source.LoadSeed(spec.Kind)
	if err != nil {
		return nil, err
	}
	if !shared.IsZero() && !seed.Equal(shared) {
		return nil, fmt.Errorf("%s seed differs from the %s seed it shares indexes with", spec.Kind, spec.SeedOf)
	}
	entries, err := r.keyList(spec.Kind)
	if err != nil {
		return nil, err
	}
	if len(entries) != spec.Count {
		log.Warn("Persisted key count differs from plan", "cohort", spec.Kind, "planned", spec.Count, "persisted", len(entries))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	accounts, err := validate(r.Deriver, spec.Kind, entries, seed, spec.Start)
	if err != nil {
		return nil, err
	}
	c := &Cohort{
		Kind:     spec.Kind,
		Seed:     seed,
		Start:    spec.Start,
		Balance:  spec.Balance,
		Accounts: accounts,
	}
	if spec.Kind.HasIdentity() {
		if c.Identities, err = newIdentities(len(accounts)); err != nil {
			return nil, err
		}
	}
	log.Debug("Reloaded cohort", "cohort", spec.Kind, "count", len(accounts))
	return c, nil
}
