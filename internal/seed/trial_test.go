package seed

import (
	"seedvault/internal/experiment"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEligibleForSeedFileTrial(t *testing.T) {
	assert.True(t, eligibleForSeedFileTrial(ChannelCanary, "/data", "client-id"))
	assert.True(t, eligibleForSeedFileTrial(ChannelDev, "/data", "client-id"))
	assert.True(t, eligibleForSeedFileTrial(ChannelBeta, "/data", "client-id"))
	assert.True(t, eligibleForSeedFileTrial(ChannelStable, "/data", "client-id"))

	assert.False(t, eligibleForSeedFileTrial(ChannelUnknown, "/data", "client-id"))
	assert.False(t, eligibleForSeedFileTrial(ChannelBeta, "", "client-id"))
	assert.False(t, eligibleForSeedFileTrial(ChannelBeta, "/data", ""))
}

func TestRegisterSeedFileTrial_AssignsKnownGroup(t *testing.T) {
	reg := experiment.NewRegistry()
	registerSeedFileTrial(reg, ChannelBeta, TrialSettings{}, "client-id")

	group := reg.ActiveGroup(SeedFileTrial)
	assert.Contains(t, []string{DefaultGroup, ControlGroup, SeedFilesGroup}, group)
}

func TestRegisterSeedFileTrial_FirstRegistrationWins(t *testing.T) {
	reg := experiment.NewRegistry()
	registerSeedFileTrial(reg, ChannelBeta, TrialSettings{}, "client-id")
	first := reg.ActiveGroup(SeedFileTrial)

	// The safe store registers after the latest store; the assignment must
	// not move.
	registerSeedFileTrial(reg, ChannelBeta, TrialSettings{}, "client-id")
	assert.Equal(t, first, reg.ActiveGroup(SeedFileTrial))
}

func TestRegisterSeedFileTrial_FullTreatmentWeight(t *testing.T) {
	// Weighting the experiment groups at 50 each leaves no room for the
	// default group, so the assignment is always one of the two.
	reg := experiment.NewRegistry()
	registerSeedFileTrial(reg, ChannelStable, TrialSettings{StableProbability: 50}, "client-id")
	assert.Contains(t, []string{ControlGroup, SeedFilesGroup}, reg.ActiveGroup(SeedFileTrial))
}

func TestTrialSettings_Defaults(t *testing.T) {
	s := TrialSettings{}.orDefaults()
	assert.Equal(t, 1, s.StableProbability)
	assert.Equal(t, 50, s.PreStableProbability)

	custom := TrialSettings{StableProbability: 5, PreStableProbability: 20}.orDefaults()
	assert.Equal(t, 5, custom.StableProbability)
	assert.Equal(t, 20, custom.PreStableProbability)
}

func TestParseChannel(t *testing.T) {
	assert.Equal(t, ChannelStable, ParseChannel("stable"))
	assert.Equal(t, ChannelCanary, ParseChannel("canary"))
	assert.Equal(t, ChannelUnknown, ParseChannel(""))
	assert.Equal(t, ChannelUnknown, ParseChannel("nightly"))
}
