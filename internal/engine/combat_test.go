package engine

import (
	"math/rand"
	"reflect"
	"testing"

	"triviamon/internal/model"
)

func entry(name string, level, hp, maxHP int) *model.RosterEntry {
	return &model.RosterEntry{
		PokemonID:      "pk_" + name,
		Name:           name,
		Level:          level,
		HP:             hp,
		MaxHP:          maxHP,
		MaxStatusSlots: 2,
	}
}

func TestResolveTurnDeterministic(t *testing.T) {
	action := model.Action{Kind: model.ActionAttack}

	run := func() *TurnOutcome {
		att := entry("Sparky", 5, 40, 40)
		def := entry("Bulby", 5, 44, 44)
		rng := rand.New(rand.NewSource(42))
		return ResolveTurn(att, def, action, true, rng, 15, 1, 0, 1)
	}

	first := run()
	second := run()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same seed produced different outcomes: %+v vs %+v", first, second)
	}
}

func TestResolveTurnDamageWithinBand(t *testing.T) {
	action := model.Action{Kind: model.ActionAttack}
	min, max := DamageBand(5, 15)
	if min <= 0 || max <= min {
		t.Fatalf("degenerate band [%d, %d]", min, max)
	}

	for seed := int64(0); seed < 200; seed++ {
		att := entry("Sparky", 5, 40, 40)
		def := entry("Bulby", 5, 500, 500)
		rng := rand.New(rand.NewSource(seed))
		out := ResolveTurn(att, def, action, true, rng, 15, 1, 0, 1)
		if out.DamageDealt < min || out.DamageDealt > max {
			t.Fatalf("seed %d: damage %d outside band [%d, %d]", seed, out.DamageDealt, min, max)
		}
		if out.DefenderHPDelta != -out.DamageDealt {
			t.Fatalf("hp delta %d does not match damage %d", out.DefenderHPDelta, out.DamageDealt)
		}
	}
}

func TestResolveTurnIncorrectAnswerHalvesDamage(t *testing.T) {
	action := model.Action{Kind: model.ActionAttack}

	att := entry("Sparky", 10, 60, 60)
	def := entry("Bulby", 10, 500, 500)
	correct := ResolveTurn(att, def, action, true, rand.New(rand.NewSource(7)), 15, 1, 0, 1)

	att2 := entry("Sparky", 10, 60, 60)
	def2 := entry("Bulby", 10, 500, 500)
	wrong := ResolveTurn(att2, def2, action, false, rand.New(rand.NewSource(7)), 15, 1, 0, 1)

	if wrong.DamageDealt != correct.DamageDealt/2 {
		t.Fatalf("incorrect answer dealt %d, want %d", wrong.DamageDealt, correct.DamageDealt/2)
	}
}

func TestResolveTurnMinimumOneDamage(t *testing.T) {
	action := model.Action{Kind: model.ActionAttack}
	att := entry("Weakling", 1, 10, 10) // base damage 6, halved and jittered stays >= 1
	def := entry("Tank", 50, 500, 500)
	def.DefenseBuffPct = 99
	def.BuffExpiryTurn = 10

	out := ResolveTurn(att, def, action, false, rand.New(rand.NewSource(1)), 15, 1, 0, 1)
	if out.DamageDealt < 1 {
		t.Fatalf("damage %d below floor", out.DamageDealt)
	}
}

func TestResolveTurnClampsToDefenderHP(t *testing.T) {
	action := model.Action{Kind: model.ActionAttack}
	att := entry("Sparky", 20, 80, 80)
	def := entry("Bulby", 5, 3, 44)

	out := ResolveTurn(att, def, action, true, rand.New(rand.NewSource(3)), 15, 1, 0, 1)
	if out.DamageDealt != 3 {
		t.Fatalf("damage %d, want clamp to remaining 3 HP", out.DamageDealt)
	}
	if !out.DefenderFaints {
		t.Fatal("expected defender to faint")
	}
}

func TestResolveTurnAsleepSkips(t *testing.T) {
	att := entry("Sparky", 5, 40, 40)
	att.AddStatus(model.StatusAsleep)
	def := entry("Bulby", 5, 44, 44)

	out := ResolveTurn(att, def, model.Action{Kind: model.ActionAttack}, true, rand.New(rand.NewSource(1)), 15, 1, 0, 1)
	if !out.Skipped || !out.WokeUp {
		t.Fatalf("asleep attacker: skipped=%v wokeUp=%v", out.Skipped, out.WokeUp)
	}
	if out.DamageDealt != 0 || out.DefenderHPDelta != 0 {
		t.Fatalf("asleep attacker dealt damage: %+v", out)
	}
}

func TestResolveTurnAttackBuffIncreasesDamage(t *testing.T) {
	action := model.Action{Kind: model.ActionAttack}

	plain := entry("Sparky", 10, 60, 60)
	buffed := entry("Sparky", 10, 60, 60)
	buffed.AttackBuffPct = 25
	buffed.BuffExpiryTurn = 3

	defA := entry("Bulby", 10, 500, 500)
	defB := entry("Bulby", 10, 500, 500)

	base := ResolveTurn(plain, defA, action, true, rand.New(rand.NewSource(9)), 15, 2, 0, 1)
	boosted := ResolveTurn(buffed, defB, action, true, rand.New(rand.NewSource(9)), 15, 2, 0, 1)

	if boosted.DamageDealt <= base.DamageDealt {
		t.Fatalf("buffed damage %d not above base %d", boosted.DamageDealt, base.DamageDealt)
	}
}

func TestResolveTurnExpiredBuffIgnored(t *testing.T) {
	action := model.Action{Kind: model.ActionAttack}

	buffed := entry("Sparky", 10, 60, 60)
	buffed.AttackBuffPct = 25
	buffed.BuffExpiryTurn = 3

	plain := entry("Sparky", 10, 60, 60)

	defA := entry("Bulby", 10, 500, 500)
	defB := entry("Bulby", 10, 500, 500)

	// turn 4 is past the expiry window
	expired := ResolveTurn(buffed, defA, action, true, rand.New(rand.NewSource(9)), 15, 4, 0, 1)
	base := ResolveTurn(plain, defB, action, true, rand.New(rand.NewSource(9)), 15, 4, 0, 1)

	if expired.DamageDealt != base.DamageDealt {
		t.Fatalf("expired buff changed damage: %d vs %d", expired.DamageDealt, base.DamageDealt)
	}
}

func TestResolveTurnDefenseBuffReducesDamage(t *testing.T) {
	action := model.Action{Kind: model.ActionAttack}

	att := entry("Sparky", 10, 60, 60)
	def := entry("Bulby", 10, 500, 500)
	def.DefenseBuffPct = 25
	def.BuffExpiryTurn = 5

	att2 := entry("Sparky", 10, 60, 60)
	def2 := entry("Bulby", 10, 500, 500)

	guarded := ResolveTurn(att, def, action, true, rand.New(rand.NewSource(11)), 15, 2, 0, 1)
	open := ResolveTurn(att2, def2, action, true, rand.New(rand.NewSource(11)), 15, 2, 0, 1)

	if guarded.DamageDealt >= open.DamageDealt {
		t.Fatalf("defense buff did not reduce damage: %d vs %d", guarded.DamageDealt, open.DamageDealt)
	}
}

func TestPoisonTick(t *testing.T) {
	healthy := entry("Sparky", 5, 40, 40)
	if got := PoisonTick(healthy); got != 0 {
		t.Fatalf("unpoisoned tick = %d, want 0", got)
	}

	poisoned := entry("Bulby", 5, 44, 100)
	poisoned.AddStatus(model.StatusPoisoned)
	if got := PoisonTick(poisoned); got != 5 {
		t.Fatalf("poison tick = %d, want 5 (5%% of 100)", got)
	}

	tiny := entry("Mite", 1, 8, 10)
	tiny.AddStatus(model.StatusPoisoned)
	if got := PoisonTick(tiny); got != 1 {
		t.Fatalf("small target tick = %d, want floor of 1", got)
	}

	nearly := entry("Fading", 5, 2, 100)
	nearly.AddStatus(model.StatusPoisoned)
	if got := PoisonTick(nearly); got != 2 {
		t.Fatalf("tick %d exceeds remaining HP 2", got)
	}
}
