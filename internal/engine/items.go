package engine

import (
	"errors"
	"fmt"

	"triviamon/internal/model"
)

var (
	ErrInvalidItem   = errors.New("item not owned or not usable in combat")
	ErrInvalidTarget = errors.New("item cannot apply to that target")
)

// Capture succeeds only when the target is below this fraction of max HP
const captureHPThresholdPct = 20

// ItemOutcome describes what an item application did
type ItemOutcome struct {
	ItemID         string
	Category       model.ItemCategory
	HealedHP       int
	DamageDealt    int
	StatusApplied  model.StatusEffect
	CaptureSuccess bool
	RerollQuestion bool
	Reflected      bool // hostile effect bounced back by a mirror
	Voided         bool // beneficial effect eaten by a traitor coin
	TargetFaints   bool
	Summary        string
}

func beneficial(cat model.ItemCategory) bool {
	switch cat {
	case model.ItemHealSingle, model.ItemHealTeam, model.ItemAttackBuff, model.ItemDefenseBuff:
		return true
	}
	return false
}

func hostile(cat model.ItemCategory) bool {
	switch cat {
	case model.ItemFlatDamage, model.ItemSleep, model.ItemPoison:
		return true
	}
	return false
}

// ApplyItem consumes one unit of itemID from the caster and applies its
// effect. The caster and opponent sides are mutated in place; callers
// invoke this inside the match's critical section. Healing a full-HP
// target is a no-op, not an error, and the item is still consumed.
func ApplyItem(itemID string, caster, opponent *model.Side, turnNumber int) (*ItemOutcome, error) {
	def, ok := model.ItemCatalog[itemID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidItem, itemID)
	}
	if caster.Items[itemID] <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidItem, itemID)
	}

	out := &ItemOutcome{ItemID: itemID, Category: def.Category}

	// Mirror charm bounces the next hostile effect back at the caster
	target := opponent
	reflected := hostile(def.Category) && opponent.MirrorArmed
	if reflected {
		target = caster
	}

	// Validate targets before consuming anything
	switch def.Category {
	case model.ItemHealSingle, model.ItemAttackBuff, model.ItemDefenseBuff:
		if caster.Active() == nil {
			return nil, fmt.Errorf("%w: no active combatant", ErrInvalidTarget)
		}
	case model.ItemFlatDamage, model.ItemSleep, model.ItemPoison:
		if a := target.Active(); a == nil || a.Fainted() {
			return nil, fmt.Errorf("%w: no conscious target", ErrInvalidTarget)
		}
	case model.ItemCapture:
		if a := opponent.Active(); a == nil || a.Fainted() {
			return nil, fmt.Errorf("%w: no conscious target", ErrInvalidTarget)
		}
	}

	caster.Items[itemID]--
	if reflected {
		opponent.MirrorArmed = false
		out.Reflected = true
	}

	// Traitor coin on the opponent's side eats the next beneficial effect
	if beneficial(def.Category) && opponent.TraitorArmed {
		opponent.TraitorArmed = false
		out.Voided = true
		out.Summary = fmt.Sprintf("%s fizzled: traitor coin", def.Name)
		return out, nil
	}

	switch def.Category {
	case model.ItemHealSingle:
		active := caster.Active()
		before := active.HP
		active.HP += def.Power
		active.ClampHP()
		out.HealedHP = active.HP - before
		out.Summary = fmt.Sprintf("%s restored %d HP to %s", def.Name, out.HealedHP, active.Name)

	case model.ItemHealTeam:
		for i := range caster.Roster {
			e := &caster.Roster[i]
			if e.Fainted() {
				continue
			}
			before := e.HP
			e.HP += def.Power
			e.ClampHP()
			out.HealedHP += e.HP - before
		}
		out.Summary = fmt.Sprintf("%s restored %d HP across the team", def.Name, out.HealedHP)

	case model.ItemFlatDamage:
		active := target.Active()
		dmg := def.Power
		if dmg > active.HP {
			dmg = active.HP
		}
		active.HP -= dmg
		out.DamageDealt = dmg
		out.TargetFaints = active.Fainted()
		out.Summary = fmt.Sprintf("%s dealt %d damage to %s", def.Name, dmg, active.Name)

	case model.ItemAttackBuff:
		active := caster.Active()
		active.AttackBuffPct = def.Power
		active.BuffExpiryTurn = turnNumber + def.Duration
		out.Summary = fmt.Sprintf("%s raised %s's attack by %d%%", def.Name, active.Name, def.Power)

	case model.ItemDefenseBuff:
		active := caster.Active()
		active.DefenseBuffPct = def.Power
		active.BuffExpiryTurn = turnNumber + def.Duration
		out.Summary = fmt.Sprintf("%s raised %s's defense by %d%%", def.Name, active.Name, def.Power)

	case model.ItemSleep, model.ItemPoison:
		active := target.Active()
		status := model.StatusAsleep
		if def.Category == model.ItemPoison {
			status = model.StatusPoisoned
		}
		if active.AddStatus(status) {
			out.StatusApplied = status
			out.Summary = fmt.Sprintf("%s is now %s", active.Name, status)
		} else {
			// status slots saturated: item consumed, no effect
			out.Summary = fmt.Sprintf("%s resisted %s", active.Name, def.Name)
		}

	case model.ItemCapture:
		active := opponent.Active()
		if active.HP*100 <= active.MaxHP*captureHPThresholdPct {
			out.CaptureSuccess = true
			out.Summary = fmt.Sprintf("%s was captured!", active.Name)
		} else {
			out.Summary = fmt.Sprintf("%s broke free", active.Name)
		}

	case model.ItemMirror:
		caster.MirrorArmed = true
		out.Summary = fmt.Sprintf("%s armed a mirror charm", caster.PlayerID)

	case model.ItemTraitor:
		caster.TraitorArmed = true
		out.Summary = fmt.Sprintf("%s armed a traitor coin", caster.PlayerID)

	case model.ItemJoker:
		out.RerollQuestion = true
		out.Summary = "joker card: the question is rerolled"
	}

	return out, nil
}
