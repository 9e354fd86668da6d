package cohort

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"testing"

	"github.com/celo-org/genesis-builder/config"
	"github.com/celo-org/genesis-builder/keys"
	. "github.com/onsi/gomega"
)

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.LaunchTime = 1526400000
	cfg.Accounts.Count = 3
	cfg.Faucet.Count = 2
	cfg.RotatingValidators.Count = 4
	cfg.Authority.Count = 2
	cfg.Executors = 1
	return cfg
}

// memorySource is a Source backed by an earlier build
type memorySource struct {
	seeds map[Kind]keys.Seed
	keys  map[Kind][]KeyEntry
}

func sourceOf(set *Set) *memorySource {
	src := &memorySource{seeds: map[Kind]keys.Seed{}, keys: map[Kind][]KeyEntry{}}
	for _, c := range set.Cohorts() {
		src.seeds[c.Kind] = c.Seed
		src.keys[c.Kind] = c.Entries()
	}
	return src
}

func (m *memorySource) LoadSeed(kind Kind) (keys.Seed, error) {
	seed, ok := m.seeds[kind]
	if !ok {
		return keys.Seed{}, errors.New("no seed")
	}
	return seed, nil
}

func (m *memorySource) LoadKeys(kind Kind) ([]KeyEntry, error) {
	entries, ok := m.keys[kind]
	if !ok {
		return nil, fmt.Errorf("no %s keys: %w", kind, fs.ErrNotExist)
	}
	return entries, nil
}

func TestPlanPerCohortSeeds(t *testing.T) {
	RegisterTestingT(t)

	plan, err := NewPlan(testConfig())
	Ω(err).ShouldNot(HaveOccurred())
	Ω(plan.Kinds()).Should(Equal(Kinds()))
	for _, s := range plan {
		Ω(s.Start).Should(BeZero())
		Ω(s.SeedOf).Should(Equal(s.Kind))
	}

	endorsor, ok := plan.Spec(Endorsor)
	Ω(ok).Should(BeTrue())
	authority, _ := plan.Spec(Authority)
	Ω(endorsor.Balance).Should(Equal(authority.Balance))
	Ω(endorsor.Count).Should(Equal(2))
}

func TestPlanSharedSeedRanges(t *testing.T) {
	RegisterTestingT(t)

	cfg := testConfig()
	cfg.SharedSeed = true
	plan, err := NewPlan(cfg)
	Ω(err).ShouldNot(HaveOccurred())

	faucet, _ := plan.Spec(Faucet)
	validators, _ := plan.Spec(RotatingValidator)
	Ω(faucet.SeedOf).Should(Equal(General))
	Ω(faucet.Start).Should(Equal(uint32(3)))
	Ω(validators.SeedOf).Should(Equal(General))
	Ω(validators.Start).Should(Equal(uint32(5)))

	authority, _ := plan.Spec(Authority)
	Ω(authority.Start).Should(BeZero())
}

func TestPlanSkipsEmptyCohorts(t *testing.T) {
	RegisterTestingT(t)

	cfg := testConfig()
	cfg.Faucet.Count = 0
	cfg.Executors = 0
	cfg.SharedSeed = true
	plan, err := NewPlan(cfg)
	Ω(err).ShouldNot(HaveOccurred())
	Ω(plan.Kinds()).Should(Equal([]Kind{General, RotatingValidator, Authority, Endorsor}))

	validators, _ := plan.Spec(RotatingValidator)
	Ω(validators.Start).Should(Equal(uint32(3)))
}

func TestPlanCheckRejectsOverlap(t *testing.T) {
	RegisterTestingT(t)

	plan := Plan{
		{Kind: General, SeedOf: General, Start: 0, Count: 3, Balance: big.NewInt(0)},
		{Kind: Faucet, SeedOf: General, Start: 2, Count: 2, Balance: big.NewInt(0)},
	}
	var cfgErr *config.ConfigurationError
	Ω(errors.As(plan.Check(), &cfgErr)).Should(BeTrue())
	Ω(cfgErr.Field).Should(Equal("sharedSeed"))
	Ω(cfgErr.Reason).Should(ContainSubstring("overlaps"))
}

func TestPlanCheckRejectsMissingOwner(t *testing.T) {
	RegisterTestingT(t)

	plan := Plan{{Kind: Faucet, SeedOf: General, Start: 0, Count: 2, Balance: big.NewInt(0)}}
	Ω(plan.Check()).ShouldNot(Succeed())
}

func TestBuildSharedSeed(t *testing.T) {
	RegisterTestingT(t)

	cfg := testConfig()
	cfg.SharedSeed = true
	plan, err := NewPlan(cfg)
	Ω(err).ShouldNot(HaveOccurred())
	fresh, err := NewFresh(cfg)
	Ω(err).ShouldNot(HaveOccurred())

	set, err := Build(context.Background(), plan, fresh)
	Ω(err).ShouldNot(HaveOccurred())

	general := set.Get(General)
	faucet := set.Get(Faucet)
	Ω(faucet.Seed.Equal(general.Seed)).Should(BeTrue())
	Ω(faucet.Accounts[0].Index).Should(Equal(uint32(3)))
	Ω(set.Get(Authority).Seed.Equal(general.Seed)).Should(BeFalse())
	Ω(set.Cohorts()).Should(HaveLen(6))
}

func TestFreshUsesPinnedSeeds(t *testing.T) {
	RegisterTestingT(t)

	cfg := testConfig()
	cfg.Mnemonics = map[string]string{"faucet": abandonSeed}
	fresh, err := NewFresh(cfg)
	Ω(err).ShouldNot(HaveOccurred())

	plan, _ := NewPlan(cfg)
	set, err := Build(context.Background(), plan, fresh)
	Ω(err).ShouldNot(HaveOccurred())
	Ω(set.Get(Faucet).Seed.Phrase()).Should(Equal(abandonSeed))
}

func TestFreshRejectsPinnedSharedSeed(t *testing.T) {
	RegisterTestingT(t)

	cfg := testConfig()
	cfg.SharedSeed = true
	cfg.Mnemonics = map[string]string{"faucet": abandonSeed}
	_, err := NewFresh(cfg)
	var cfgErr *config.ConfigurationError
	Ω(errors.As(err, &cfgErr)).Should(BeTrue())
	Ω(cfgErr.Field).Should(Equal("mnemonics.faucet"))

	cfg.SharedSeed = false
	cfg.Mnemonics = map[string]string{"validators": abandonSeed}
	_, err = NewFresh(cfg)
	Ω(errors.As(err, &cfgErr)).Should(BeTrue())
}

func TestReloadReproducesFreshBuild(t *testing.T) {
	RegisterTestingT(t)

	for _, shared := range []bool{false, true} {
		cfg := testConfig()
		cfg.SharedSeed = shared
		plan, err := NewPlan(cfg)
		Ω(err).ShouldNot(HaveOccurred())
		fresh, _ := NewFresh(cfg)
		original, err := Build(context.Background(), plan, fresh)
		Ω(err).ShouldNot(HaveOccurred())

		reload, err := NewReload(cfg, sourceOf(original))
		Ω(err).ShouldNot(HaveOccurred())
		reloaded, err := Build(context.Background(), plan, reload)
		Ω(err).ShouldNot(HaveOccurred())

		for _, k := range plan.Kinds() {
			Ω(reloaded.Get(k).Addresses()).Should(Equal(original.Get(k).Addresses()))
			Ω(reloaded.Get(k).Balance).Should(Equal(original.Get(k).Balance))
		}
		// identities are minted again on reload
		Ω(reloaded.Get(Authority).Identities).Should(HaveLen(2))
		Ω(reloaded.Get(Authority).Identities).ShouldNot(Equal(original.Get(Authority).Identities))
	}
}

func TestReloadRejectsTamperedKeys(t *testing.T) {
	RegisterTestingT(t)

	cfg := testConfig()
	plan, _ := NewPlan(cfg)
	fresh, _ := NewFresh(cfg)
	original, err := Build(context.Background(), plan, fresh)
	Ω(err).ShouldNot(HaveOccurred())

	src := sourceOf(original)
	src.keys[RotatingValidator][3].Address[19] ^= 0x01

	reload, _ := NewReload(cfg, src)
	_, err = Build(context.Background(), plan, reload)
	var mismatch *KeyIntegrityMismatch
	Ω(errors.As(err, &mismatch)).Should(BeTrue())
	Ω(mismatch.Kind).Should(Equal(RotatingValidator))
	Ω(mismatch.Index).Should(Equal(3))
}

func TestReloadPlanTakesCountsFromKeys(t *testing.T) {
	RegisterTestingT(t)

	cfg := testConfig()
	cfg.SharedSeed = true
	plan, _ := NewPlan(cfg)
	fresh, _ := NewFresh(cfg)
	original, err := Build(context.Background(), plan, fresh)
	Ω(err).ShouldNot(HaveOccurred())

	// counts of the reloading config are ignored
	other := config.Defaults()
	other.SharedSeed = true
	reload, err := NewReload(other, sourceOf(original))
	Ω(err).ShouldNot(HaveOccurred())
	loaded, err := reload.Plan(other)
	Ω(err).ShouldNot(HaveOccurred())

	general, _ := loaded.Spec(General)
	faucet, _ := loaded.Spec(Faucet)
	rotating, _ := loaded.Spec(RotatingValidator)
	Ω(general.Count).Should(Equal(3))
	Ω(faucet.Start).Should(BeEquivalentTo(3))
	Ω(faucet.Count).Should(Equal(2))
	Ω(rotating.Start).Should(BeEquivalentTo(5))
	Ω(rotating.Count).Should(Equal(4))

	reloaded, err := Build(context.Background(), loaded, reload)
	Ω(err).ShouldNot(HaveOccurred())
	for _, k := range plan.Kinds() {
		Ω(reloaded.Get(k).Addresses()).Should(Equal(original.Get(k).Addresses()))
	}
	// balances still come from the reloading config
	Ω(reloaded.Get(RotatingValidator).Balance).Should(Equal(rotating.Balance))
}

func TestReloadPlanWithoutExecutors(t *testing.T) {
	RegisterTestingT(t)

	cfg := testConfig()
	cfg.Executors = 0
	plan, _ := NewPlan(cfg)
	fresh, _ := NewFresh(cfg)
	original, err := Build(context.Background(), plan, fresh)
	Ω(err).ShouldNot(HaveOccurred())

	reload, _ := NewReload(cfg, sourceOf(original))
	loaded, err := reload.Plan(testConfig())
	Ω(err).ShouldNot(HaveOccurred())
	_, ok := loaded.Spec(Executor)
	Ω(ok).Should(BeFalse())

	src := sourceOf(original)
	delete(src.keys, Faucet)
	reload, _ = NewReload(cfg, src)
	_, err = reload.Plan(cfg)
	Ω(errors.Is(err, fs.ErrNotExist)).Should(BeTrue())
}

func TestReloadPlanRejectsAuthorityEndorsorMismatch(t *testing.T) {
	RegisterTestingT(t)

	cfg := testConfig()
	plan, _ := NewPlan(cfg)
	fresh, _ := NewFresh(cfg)
	original, err := Build(context.Background(), plan, fresh)
	Ω(err).ShouldNot(HaveOccurred())

	src := sourceOf(original)
	src.keys[Endorsor] = src.keys[Endorsor][:1]
	reload, _ := NewReload(cfg, src)
	_, err = reload.Plan(cfg)

	var cfgErr *config.ConfigurationError
	Ω(errors.As(err, &cfgErr)).Should(BeTrue())
	Ω(cfgErr.Field).Should(Equal("authority.count"))
}
