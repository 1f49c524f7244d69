package engine

import (
	"errors"
	"testing"

	"triviamon/internal/model"
)

func side(playerID string, items map[string]int, roster ...model.RosterEntry) *model.Side {
	if items == nil {
		items = map[string]int{}
	}
	return &model.Side{
		PlayerID: playerID,
		Roster:   roster,
		Items:    items,
	}
}

func combatant(name string, hp, maxHP int) model.RosterEntry {
	return model.RosterEntry{
		PokemonID:      "pk_" + name,
		Name:           name,
		Level:          5,
		HP:             hp,
		MaxHP:          maxHP,
		MaxStatusSlots: 2,
	}
}

func TestApplyItemHealRestoresAndClamps(t *testing.T) {
	caster := side("p1", map[string]int{"heal_r2": 1}, combatant("Sparky", 10, 40))
	opponent := side("p2", nil, combatant("Bulby", 44, 44))

	out, err := ApplyItem("heal_r2", caster, opponent, 1)
	if err != nil {
		t.Fatalf("ApplyItem: %v", err)
	}
	if out.HealedHP != 30 {
		t.Fatalf("healed %d, want 30 (clamped to max)", out.HealedHP)
	}
	if caster.Active().HP != 40 {
		t.Fatalf("active HP %d, want 40", caster.Active().HP)
	}
	if caster.Items["heal_r2"] != 0 {
		t.Fatalf("item not consumed: %d left", caster.Items["heal_r2"])
	}
}

func TestApplyItemHealAtFullHPIsConsumedNoop(t *testing.T) {
	caster := side("p1", map[string]int{"heal_r1": 2}, combatant("Sparky", 40, 40))
	opponent := side("p2", nil, combatant("Bulby", 44, 44))

	out, err := ApplyItem("heal_r1", caster, opponent, 1)
	if err != nil {
		t.Fatalf("ApplyItem: %v", err)
	}
	if out.HealedHP != 0 {
		t.Fatalf("healed %d at full HP, want 0", out.HealedHP)
	}
	if caster.Items["heal_r1"] != 1 {
		t.Fatalf("full-HP heal should still consume: %d left", caster.Items["heal_r1"])
	}
}

func TestApplyItemTeamHealSkipsFainted(t *testing.T) {
	caster := side("p1", map[string]int{"heal_team": 1},
		combatant("Sparky", 10, 40),
		combatant("Bulby", 0, 44),
		combatant("Squirt", 30, 42),
	)
	opponent := side("p2", nil, combatant("Foe", 44, 44))

	out, err := ApplyItem("heal_team", caster, opponent, 1)
	if err != nil {
		t.Fatalf("ApplyItem: %v", err)
	}
	if out.HealedHP != 32 {
		t.Fatalf("team heal restored %d, want 32 (20 + 12, fainted skipped)", out.HealedHP)
	}
	if caster.Roster[1].HP != 0 {
		t.Fatalf("fainted entry was healed to %d", caster.Roster[1].HP)
	}
}

func TestApplyItemNotOwned(t *testing.T) {
	caster := side("p1", map[string]int{}, combatant("Sparky", 40, 40))
	opponent := side("p2", nil, combatant("Bulby", 44, 44))

	if _, err := ApplyItem("heal_r1", caster, opponent, 1); !errors.Is(err, ErrInvalidItem) {
		t.Fatalf("err = %v, want ErrInvalidItem", err)
	}
}

func TestApplyItemUnknownID(t *testing.T) {
	caster := side("p1", map[string]int{"rock": 3}, combatant("Sparky", 40, 40))
	opponent := side("p2", nil, combatant("Bulby", 44, 44))

	if _, err := ApplyItem("rock", caster, opponent, 1); !errors.Is(err, ErrInvalidItem) {
		t.Fatalf("err = %v, want ErrInvalidItem", err)
	}
}

func TestApplyItemHostileNeedsConsciousTarget(t *testing.T) {
	caster := side("p1", map[string]int{"dmg_flat": 1}, combatant("Sparky", 40, 40))
	opponent := side("p2", nil, combatant("Bulby", 0, 44))

	_, err := ApplyItem("dmg_flat", caster, opponent, 1)
	if !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("err = %v, want ErrInvalidTarget", err)
	}
	if caster.Items["dmg_flat"] != 1 {
		t.Fatal("failed validation must not consume the item")
	}
}

func TestApplyItemFlatDamage(t *testing.T) {
	caster := side("p1", map[string]int{"dmg_flat": 1}, combatant("Sparky", 40, 40))
	opponent := side("p2", nil, combatant("Bulby", 10, 44))

	out, err := ApplyItem("dmg_flat", caster, opponent, 1)
	if err != nil {
		t.Fatalf("ApplyItem: %v", err)
	}
	if out.DamageDealt != 10 {
		t.Fatalf("dealt %d, want clamp to remaining 10 HP", out.DamageDealt)
	}
	if !out.TargetFaints {
		t.Fatal("expected target to faint")
	}
}

func TestApplyItemCaptureThreshold(t *testing.T) {
	// 8/44 is below 20% of max, capture succeeds
	caster := side("p1", map[string]int{"pokeball": 2}, combatant("Sparky", 40, 40))
	opponent := side("p2", nil, combatant("Bulby", 8, 44))

	out, err := ApplyItem("pokeball", caster, opponent, 1)
	if err != nil {
		t.Fatalf("ApplyItem: %v", err)
	}
	if !out.CaptureSuccess {
		t.Fatalf("capture failed at %d/%d HP", 8, 44)
	}

	// 20/44 is above the threshold, ball is wasted
	opponent.Active().HP = 20
	out, err = ApplyItem("pokeball", caster, opponent, 2)
	if err != nil {
		t.Fatalf("ApplyItem: %v", err)
	}
	if out.CaptureSuccess {
		t.Fatal("capture succeeded above the HP threshold")
	}
	if caster.Items["pokeball"] != 0 {
		t.Fatalf("failed capture should still consume: %d left", caster.Items["pokeball"])
	}
}

func TestApplyItemBuffsSetWindow(t *testing.T) {
	caster := side("p1", map[string]int{"buff_attack": 1, "buff_defense": 1}, combatant("Sparky", 40, 40))
	opponent := side("p2", nil, combatant("Bulby", 44, 44))

	if _, err := ApplyItem("buff_attack", caster, opponent, 2); err != nil {
		t.Fatalf("ApplyItem: %v", err)
	}
	active := caster.Active()
	if active.AttackBuffPct != 25 || active.BuffExpiryTurn != 5 {
		t.Fatalf("attack buff pct=%d expiry=%d, want 25 and 5", active.AttackBuffPct, active.BuffExpiryTurn)
	}

	if _, err := ApplyItem("buff_defense", caster, opponent, 2); err != nil {
		t.Fatalf("ApplyItem: %v", err)
	}
	if active.DefenseBuffPct != 25 {
		t.Fatalf("defense buff pct=%d, want 25", active.DefenseBuffPct)
	}
}

func TestApplyItemStatusSaturation(t *testing.T) {
	caster := side("p1", map[string]int{"sleep_powder": 2, "poison_vial": 1}, combatant("Sparky", 40, 40))
	target := combatant("Bulby", 44, 44)
	target.MaxStatusSlots = 1
	opponent := side("p2", nil, target)

	out, err := ApplyItem("poison_vial", caster, opponent, 1)
	if err != nil {
		t.Fatalf("ApplyItem: %v", err)
	}
	if out.StatusApplied != model.StatusPoisoned {
		t.Fatalf("status %q, want poisoned", out.StatusApplied)
	}

	// slots full: powder fizzles but is consumed
	out, err = ApplyItem("sleep_powder", caster, opponent, 2)
	if err != nil {
		t.Fatalf("ApplyItem: %v", err)
	}
	if out.StatusApplied != "" {
		t.Fatalf("saturated target took status %q", out.StatusApplied)
	}
	if caster.Items["sleep_powder"] != 1 {
		t.Fatalf("fizzled powder should still consume: %d left", caster.Items["sleep_powder"])
	}
}

func TestApplyItemMirrorReflectsHostile(t *testing.T) {
	attacker := side("p1", map[string]int{"dmg_flat": 1}, combatant("Sparky", 40, 40))
	defender := side("p2", map[string]int{"mirror": 1}, combatant("Bulby", 44, 44))

	if _, err := ApplyItem("mirror", defender, attacker, 1); err != nil {
		t.Fatalf("arming mirror: %v", err)
	}
	if !defender.MirrorArmed {
		t.Fatal("mirror did not arm")
	}

	out, err := ApplyItem("dmg_flat", attacker, defender, 2)
	if err != nil {
		t.Fatalf("ApplyItem: %v", err)
	}
	if !out.Reflected {
		t.Fatal("hostile item was not reflected")
	}
	if attacker.Active().HP != 40-15 {
		t.Fatalf("caster HP %d, want 25 after reflected orb", attacker.Active().HP)
	}
	if defender.Active().HP != 44 {
		t.Fatalf("defender HP %d, want untouched 44", defender.Active().HP)
	}
	if defender.MirrorArmed {
		t.Fatal("mirror should disarm after one reflection")
	}
}

func TestApplyItemTraitorVoidsBeneficial(t *testing.T) {
	caster := side("p1", map[string]int{"heal_r2": 1}, combatant("Sparky", 10, 40))
	opponent := side("p2", map[string]int{"traitor": 1}, combatant("Bulby", 44, 44))

	if _, err := ApplyItem("traitor", opponent, caster, 1); err != nil {
		t.Fatalf("arming traitor: %v", err)
	}

	out, err := ApplyItem("heal_r2", caster, opponent, 2)
	if err != nil {
		t.Fatalf("ApplyItem: %v", err)
	}
	if !out.Voided {
		t.Fatal("heal was not voided by the traitor coin")
	}
	if caster.Active().HP != 10 {
		t.Fatalf("voided heal still restored HP: %d", caster.Active().HP)
	}
	if caster.Items["heal_r2"] != 0 {
		t.Fatal("voided heal should still consume the item")
	}
	if opponent.TraitorArmed {
		t.Fatal("traitor coin should disarm after one void")
	}
}

func TestApplyItemJokerRequestsReroll(t *testing.T) {
	caster := side("p1", map[string]int{"joker": 1}, combatant("Sparky", 40, 40))
	opponent := side("p2", nil, combatant("Bulby", 44, 44))

	out, err := ApplyItem("joker", caster, opponent, 1)
	if err != nil {
		t.Fatalf("ApplyItem: %v", err)
	}
	if !out.RerollQuestion {
		t.Fatal("joker did not request a reroll")
	}
}
