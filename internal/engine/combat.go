package engine

import (
	"fmt"
	"math/rand"

	"triviamon/internal/model"
)

// Penalty policy: an incorrect or timed-out answer does not skip the
// action, it halves outgoing damage (rounded down). Skipping entirely
// would make stalling the dominant strategy.
const incorrectAnswerDivisor = 2

// TurnOutcome is the computed result of one side's action. The resolver
// never mutates its inputs; callers apply the deltas inside the match's
// critical section.
type TurnOutcome struct {
	Action          model.ActionKind
	AttackerHPDelta int
	DefenderHPDelta int
	DamageDealt     int
	Skipped         bool // attacker slept through the turn
	WokeUp          bool
	DefenderFaints  bool
	NextTurnOwner   int
	Summary         []string
}

// baseDamage is the deterministic pre-jitter damage for a level
func baseDamage(level int) int {
	return level*2 + 4
}

// attackWithModifiers applies the attacker's active buff window
func attackWithModifiers(e *model.RosterEntry, turn int) int {
	dmg := baseDamage(e.Level)
	if e.AttackBuffPct > 0 && e.BuffExpiryTurn >= turn {
		dmg = dmg * (100 + e.AttackBuffPct) / 100
	}
	return dmg
}

// defenseWithModifiers returns the percent reduction on incoming damage
func defenseWithModifiers(e *model.RosterEntry, turn int) int {
	if e.DefenseBuffPct > 0 && e.BuffExpiryTurn >= turn {
		return e.DefenseBuffPct
	}
	return 0
}

// DamageBand returns the inclusive [min, max] damage an attack can deal
// given the fixed jitter percent, before correctness halving. Exposed for
// tests and client-side preview.
func DamageBand(level, jitterPct int) (int, int) {
	base := baseDamage(level)
	return base * (100 - jitterPct) / 100, base * (100 + jitterPct) / 100
}

// ResolveTurn computes the outcome of a single attack, switch, or forfeit
// action. attackerSide/defenderSide are the match side indexes; the rng
// must be seeded per-turn so replays reproduce byte-identical outcomes.
// Item actions go through ApplyItem instead.
func ResolveTurn(attacker, defender *model.RosterEntry, action model.Action, questionCorrect bool, rng *rand.Rand, jitterPct, turnNumber, attackerSide, defenderSide int) *TurnOutcome {
	out := &TurnOutcome{
		Action:        action.Kind,
		NextTurnOwner: defenderSide,
	}

	if attacker.HasStatus(model.StatusAsleep) {
		out.Skipped = true
		out.WokeUp = true
		out.Summary = append(out.Summary, fmt.Sprintf("%s is asleep and cannot act", attacker.Name))
		return out
	}

	switch action.Kind {
	case model.ActionAttack:
		dmg := attackWithModifiers(attacker, turnNumber)
		// jitter uniformly within ±jitterPct of the modified base
		jitter := rng.Intn(2*jitterPct+1) - jitterPct
		dmg = dmg * (100 + jitter) / 100
		if red := defenseWithModifiers(defender, turnNumber); red > 0 {
			dmg = dmg * (100 - red) / 100
		}
		if !questionCorrect {
			dmg /= incorrectAnswerDivisor
		}
		if dmg < 1 {
			dmg = 1
		}
		if dmg > defender.HP {
			dmg = defender.HP
		}
		out.DamageDealt = dmg
		out.DefenderHPDelta = -dmg
		out.DefenderFaints = defender.HP-dmg <= 0
		verdict := "hits"
		if !questionCorrect {
			verdict = "falters and hits weakly"
		}
		out.Summary = append(out.Summary, fmt.Sprintf("%s %s %s for %d damage", attacker.Name, verdict, defender.Name, dmg))
		if out.DefenderFaints {
			out.Summary = append(out.Summary, fmt.Sprintf("%s fainted", defender.Name))
		}

	case model.ActionSwitch:
		out.Summary = append(out.Summary, fmt.Sprintf("%s was recalled", attacker.Name))

	case model.ActionForfeit:
		out.Summary = append(out.Summary, "forfeit")
	}

	return out
}

// PoisonTick returns the chip damage a poisoned entry takes at the end of
// a turn: 5% of max HP, at least 1. Returns 0 when not poisoned.
func PoisonTick(e *model.RosterEntry) int {
	if !e.HasStatus(model.StatusPoisoned) || e.Fainted() {
		return 0
	}
	chip := e.MaxHP / 20
	if chip < 1 {
		chip = 1
	}
	if chip > e.HP {
		chip = e.HP
	}
	return chip
}
