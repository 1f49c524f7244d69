package model

// ItemCategory groups items by the state transform they apply
type ItemCategory string

const (
	ItemHealSingle  ItemCategory = "heal_single"
	ItemHealTeam    ItemCategory = "heal_team"
	ItemFlatDamage  ItemCategory = "flat_damage"
	ItemAttackBuff  ItemCategory = "attack_buff"
	ItemDefenseBuff ItemCategory = "defense_buff"
	ItemSleep       ItemCategory = "sleep"
	ItemPoison      ItemCategory = "poison"
	ItemCapture     ItemCategory = "capture"
	ItemMirror      ItemCategory = "mirror"
	ItemTraitor     ItemCategory = "traitor"
	ItemJoker       ItemCategory = "joker"
)

// ItemDef describes a usable consumable. Power is the heal amount,
// damage, or buff percent; Duration is the buff window in turns.
type ItemDef struct {
	ID       string       `json:"id" bson:"_id,omitempty"`
	Name     string       `json:"name" bson:"name"`
	Category ItemCategory `json:"category" bson:"category"`
	Power    int          `json:"power" bson:"power"`
	Duration int          `json:"duration" bson:"duration"`
}

// ItemCatalog is the fixed set of combat-usable items. Power values for
// buffs are percentages, for heals and damage they are HP.
var ItemCatalog = map[string]ItemDef{
	"heal_r1":      {ID: "heal_r1", Name: "Potion", Category: ItemHealSingle, Power: 20},
	"heal_r2":      {ID: "heal_r2", Name: "Super Potion", Category: ItemHealSingle, Power: 50},
	"heal_team":    {ID: "heal_team", Name: "Team Spray", Category: ItemHealTeam, Power: 20},
	"dmg_flat":     {ID: "dmg_flat", Name: "Shock Orb", Category: ItemFlatDamage, Power: 15},
	"buff_attack":  {ID: "buff_attack", Name: "X Attack", Category: ItemAttackBuff, Power: 25, Duration: 3},
	"buff_defense": {ID: "buff_defense", Name: "X Defense", Category: ItemDefenseBuff, Power: 25, Duration: 3},
	"sleep_powder": {ID: "sleep_powder", Name: "Sleep Powder", Category: ItemSleep},
	"poison_vial":  {ID: "poison_vial", Name: "Poison Vial", Category: ItemPoison},
	"pokeball":     {ID: "pokeball", Name: "Capture Ball", Category: ItemCapture},
	"mirror":       {ID: "mirror", Name: "Mirror Charm", Category: ItemMirror},
	"traitor":      {ID: "traitor", Name: "Traitor Coin", Category: ItemTraitor},
	"joker":        {ID: "joker", Name: "Joker Card", Category: ItemJoker},
}
