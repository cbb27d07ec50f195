package domain

import "time"

// RunTarget is the category of a run. The string form is the snake_case
// name used on the wire and in storage.
type RunTarget string

const (
	RunTargetPit             RunTarget = "pit"
	RunTargetAndariel        RunTarget = "andariel"
	RunTargetCows            RunTarget = "cows"
	RunTargetCountess        RunTarget = "countess"
	RunTargetArcaneSanctuary RunTarget = "arcane_sanctuary"
	RunTargetAncientTunnels  RunTarget = "ancient_tunnels"
	RunTargetTravincal       RunTarget = "travincal"
	RunTargetMephisto        RunTarget = "mephisto"
	RunTargetChaos           RunTarget = "chaos"
	RunTargetPindle          RunTarget = "pindle"
	RunTargetShenk           RunTarget = "shenk"
	RunTargetEldritch        RunTarget = "eldritch"
	RunTargetWorldstone      RunTarget = "worldstone"
	RunTargetBaal            RunTarget = "baal"
)

// RunTargets lists every run target
var RunTargets = []RunTarget{
	RunTargetPit,
	RunTargetAndariel,
	RunTargetCows,
	RunTargetCountess,
	RunTargetArcaneSanctuary,
	RunTargetAncientTunnels,
	RunTargetTravincal,
	RunTargetMephisto,
	RunTargetChaos,
	RunTargetPindle,
	RunTargetShenk,
	RunTargetEldritch,
	RunTargetWorldstone,
	RunTargetBaal,
}

// IsValid checks if the run target is valid
func (t RunTarget) IsValid() bool {
	switch t {
	case RunTargetPit, RunTargetAndariel, RunTargetCows, RunTargetCountess,
		RunTargetArcaneSanctuary, RunTargetAncientTunnels, RunTargetTravincal,
		RunTargetMephisto, RunTargetChaos, RunTargetPindle, RunTargetShenk,
		RunTargetEldritch, RunTargetWorldstone, RunTargetBaal:
		return true
	}
	return false
}

// ParseRunTarget resolves s against the run targets. Matching is exact and
// case-sensitive.
func ParseRunTarget(s string) (RunTarget, bool) {
	t := RunTarget(s)
	if !t.IsValid() {
		return "", false
	}
	return t, true
}

// Run is a recorded run
type Run struct {
	ID        int64     `json:"id"`
	Category  RunTarget `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}
