package seed

import "seedvault/internal/experiment"

const trialTotalProbability = 100

// Default group weights: stable keeps a much smaller experiment
// population than the pre-stable channels.
const (
	defaultStableProbability    = 1
	defaultPreStableProbability = 50
)

// TrialSettings carries the per-channel group weights for the seed file
// trial. Kept as configuration; there is no algorithmic reason behind the
// split beyond limiting the stable population.
type TrialSettings struct {
	StableProbability    int
	PreStableProbability int
}

func (t TrialSettings) orDefaults() TrialSettings {
	if t.StableProbability == 0 {
		t.StableProbability = defaultStableProbability
	}
	if t.PreStableProbability == 0 {
		t.PreStableProbability = defaultPreStableProbability
	}
	return t
}

// eligibleForSeedFileTrial reports whether this process may participate in
// the seed file experiment. Embedders that must stay on the preference
// backend pass an empty seed dir or entropy source.
func eligibleForSeedFileTrial(channel Channel, seedFileDir, entropy string) bool {
	if seedFileDir == "" || entropy == "" {
		return false
	}
	switch channel {
	case ChannelCanary, ChannelDev, ChannelBeta, ChannelStable:
		return true
	}
	return false
}

// registerSeedFileTrial registers the three-group seed file trial. The
// registry keeps the first registration, so the safe and latest stores can
// both call this in either order.
func registerSeedFileTrial(reg *experiment.Registry, channel Channel, settings TrialSettings, entropy string) {
	s := settings.orDefaults()
	p := s.PreStableProbability
	if channel == ChannelStable {
		p = s.StableProbability
	}
	reg.RegisterOnce(SeedFileTrial, DefaultGroup, trialTotalProbability, []experiment.Group{
		{Name: ControlGroup, Weight: p},
		{Name: SeedFilesGroup, Weight: p},
	}, entropy)
}
