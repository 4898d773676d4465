package experiment

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterOnce_Idempotent(t *testing.T) {
	reg := NewRegistry()
	groups := []Group{{Name: "A", Weight: 50}, {Name: "B", Weight: 50}}

	first := reg.RegisterOnce("MyTrial", "Default", 100, groups, "client-1")
	second := reg.RegisterOnce("MyTrial", "Default", 100, groups, "client-1")
	assert.Equal(t, first, second)

	// Even with different parameters, a registered trial keeps its group.
	third := reg.RegisterOnce("MyTrial", "Other", 100, nil, "client-2")
	assert.Equal(t, first, third)
}

func TestActiveGroup_UnregisteredTrial(t *testing.T) {
	reg := NewRegistry()
	assert.Empty(t, reg.ActiveGroup("NeverRegistered"))
}

func TestAssign_Deterministic(t *testing.T) {
	groups := []Group{{Name: "A", Weight: 50}, {Name: "B", Weight: 50}}

	for _, entropy := range []string{"client-1", "client-2", "client-3"} {
		a := assign("MyTrial", "Default", 100, groups, entropy)
		b := assign("MyTrial", "Default", 100, groups, entropy)
		assert.Equal(t, a, b, "entropy %q", entropy)
	}
}

func TestAssign_TrialNameChangesAssignmentSpace(t *testing.T) {
	// Different trials hash independently, so one client can land in
	// different groups across trials. Assert the hash input includes the
	// trial name by checking the point differs for at least one of many
	// trial names.
	groups := []Group{{Name: "A", Weight: 1}}
	varied := false
	first := assign("Trial0", "Default", 1000, groups, "client-1")
	for i := 1; i < 64 && !varied; i++ {
		varied = assign(fmt.Sprintf("Trial%d", i), "Default", 1000, groups, "client-1") != first
	}
	assert.True(t, varied)
}

func TestAssign_FullWeightGroup(t *testing.T) {
	groups := []Group{{Name: "Everyone", Weight: 100}}
	for _, entropy := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, "Everyone", assign("MyTrial", "Default", 100, groups, entropy))
	}
}

func TestAssign_ZeroWeightFallsToDefault(t *testing.T) {
	groups := []Group{{Name: "A", Weight: 0}, {Name: "B", Weight: 0}}
	for _, entropy := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, "Default", assign("MyTrial", "Default", 100, groups, entropy))
	}
}

func TestAssign_NonPositiveTotal(t *testing.T) {
	assert.Equal(t, "Default", assign("MyTrial", "Default", 0, nil, "client-1"))
	assert.Equal(t, "Default", assign("MyTrial", "Default", -1, nil, "client-1"))
}

func TestAssign_RoughlyBalanced(t *testing.T) {
	groups := []Group{{Name: "A", Weight: 50}, {Name: "B", Weight: 50}}
	counts := map[string]int{}
	for i := 0; i < 1000; i++ {
		counts[assign("MyTrial", "Default", 100, groups, fmt.Sprintf("client-%d", i))]++
	}
	assert.Zero(t, counts["Default"])
	assert.Greater(t, counts["A"], 350)
	assert.Greater(t, counts["B"], 350)
}
