package engine

import (
	"slices"
	"strings"
)

type Category string

const (
	CategoryTheme Category = "theme"
	CategoryBadge Category = "badge"
	CategoryPet   Category = "pet"
	CategoryHUD   Category = "hud"
)

var Categories = []Category{CategoryTheme, CategoryBadge, CategoryPet, CategoryHUD}

func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	return c, slices.Contains(Categories, c)
}

const (
	// StreakBadgeID is only granted by the streak milestone, never sold.
	StreakBadgeID = "badge_streak_flame"
	DefaultTheme  = "default"
)

type Reward struct {
	ID          string
	Name        string
	Category    Category
	Cost        int
	Description string
	Buff        string
	StreakOnly  bool
}

// Free reports whether the reward is usable without unlocking it.
func (r Reward) Free() bool {
	return r.Cost == 0 && !r.StreakOnly
}

var rewardCatalog = []Reward{
	{ID: DefaultTheme, Name: "Neon Default", Category: CategoryTheme},
	{ID: "jade_echo", Name: "Jade Echo", Category: CategoryTheme, Cost: 100},
	{ID: "fire_red", Name: "Fire Red", Category: CategoryTheme, Cost: 120},
	{ID: "nightwave", Name: "Nightwave", Category: CategoryTheme, Cost: 130},
	{ID: "ice_pulse", Name: "Ice Pulse", Category: CategoryTheme, Cost: 140},
	{ID: "synthcore", Name: "Synthcore", Category: CategoryTheme, Cost: 160},

	{ID: "pet_dog", Name: "Grass Dog", Category: CategoryPet, Cost: 50, Description: "Loyal beta companion. Simple, but always there.", Buff: "+moral support"},
	{ID: "pet_byte", Name: "Tiny Byte", Category: CategoryPet, Cost: 100, Description: "Mini mouse that chews through broken files.", Buff: "+cleans up after every task"},
	{ID: "pet_mucdien", Name: "Volt Squid", Category: CategoryPet, Cost: 120, Description: "Neon octopus that soaks up stress.", Buff: "+creativity"},
	{ID: "pet_bapmach", Name: "Corn Circuit", Category: CategoryPet, Cost: 150, Description: "Cyber rabbit, fast as a 0.1s compile.", Buff: "+task speed"},
	{ID: "pet_meonhieu", Name: "Static Cat", Category: CategoryPet, Cost: 180, Description: "Glitches constantly, distracts enemies.", Buff: "+patience"},
	{ID: "pet_chiplua", Name: "Fire Chip", Category: CategoryPet, Cost: 200, Description: "Tiny sparrow with a huge buff for urgent work.", Buff: "+priority boost"},
	{ID: "pet_domxanh", Name: "Blue Spark", Category: CategoryPet, Cost: 220, Description: "Electric firefly that lights up fuzzy ideas.", Buff: "+light focus"},
	{ID: "pet_caonhapnhay", Name: "Blink Fox", Category: CategoryPet, Cost: 250, Description: "Neon fox with an RGB tail.", Buff: "+stealth and cunning"},
	{ID: "pet_teptia", Name: "Zap Shrimp", Category: CategoryPet, Cost: 180, Description: "Shocks you awake whenever you slack.", Buff: "+shock XP on delay"},
	{ID: "pet_bomach", Name: "Circuit Snail", Category: CategoryPet, Cost: 160, Description: "Fixes bugs wherever it crawls. Slowly.", Buff: "+bug fixes over time"},
	{ID: "pet_banhbao", Name: "Dumpling Bot", Category: CategoryPet, Cost: 300, Description: "Round outside, AI inside.", Buff: "+mood reset"},
	{ID: "pet_lansohoa", Name: "Digital Qilin", Category: CategoryPet, Cost: 100, Description: "Mechanical qilin that dances luck onto good work.", Buff: "+luck on completion"},
	{ID: "pet_rongcapquang", Name: "Fiber Dragon", Category: CategoryPet, Cost: 150, Description: "Sweeps deadlines like a storm in rush mode.", Buff: "+double speed when rushing"},
	{ID: "pet_hobangmach", Name: "Frost Tiger", Category: CategoryPet, Cost: 180, Description: "Cold and precise against hard tasks.", Buff: "+focus on hard tasks"},

	{ID: "badge_glitch", Name: "Glitch", Category: CategoryBadge, Cost: 500},
	{ID: "badge_cyberfox", Name: "Cyber Fox", Category: CategoryBadge, Cost: 100},
	{ID: "badge_neoncat", Name: "Neon Cat", Category: CategoryBadge, Cost: 150},
	{ID: "badge_mechskull", Name: "Mech Skull", Category: CategoryBadge, Cost: 2000},
	{ID: "badge_pixelbot", Name: "Pixel Bot", Category: CategoryBadge, Cost: 2500},
	{ID: "badge_glowslime", Name: "Glow Slime", Category: CategoryBadge, Cost: 3000},
	{ID: "badge_hologram", Name: "Hologram", Category: CategoryBadge, Cost: 40},
	{ID: "badge_darklotus", Name: "Dark Lotus", Category: CategoryBadge, Cost: 5000},
	{ID: "badge_auraflame", Name: "Aura Flame", Category: CategoryBadge, Cost: 60},
	{ID: "badge_neonphoenix", Name: "Neon Phoenix", Category: CategoryBadge, Cost: 75},
	{ID: StreakBadgeID, Name: "Streak Flame", Category: CategoryBadge, StreakOnly: true, Description: "Seven days in a row."},

	{ID: "hud_nightwave", Name: "Nightwave HUD", Category: CategoryHUD, Cost: 200},
	{ID: "hud_scanline", Name: "Scanline HUD", Category: CategoryHUD, Cost: 180},
	{ID: "hud_gridlock", Name: "Gridlock HUD", Category: CategoryHUD, Cost: 240},
}

// Catalog returns every reward, optionally filtered by category.
func Catalog(cats ...Category) []Reward {
	if len(cats) == 0 {
		return slices.Clone(rewardCatalog)
	}
	var out []Reward
	for _, r := range rewardCatalog {
		if slices.Contains(cats, r.Category) {
			out = append(out, r)
		}
	}
	return out
}

func LookupReward(id string) (Reward, bool) {
	i := slices.IndexFunc(rewardCatalog, func(r Reward) bool { return r.ID == id })
	if i < 0 {
		return Reward{}, false
	}
	return rewardCatalog[i], true
}

// RewardLedger records unlocked reward ids and the equipped id per category.
type RewardLedger struct {
	Unlocked []string
	Equipped map[Category]string
}

func NewRewardLedger() RewardLedger {
	return RewardLedger{Equipped: map[Category]string{}}
}

func (l RewardLedger) Has(id string) bool {
	return slices.Contains(l.Unlocked, id)
}

// EquippedID returns the equipped id for c, falling back to the default
// theme when no theme is equipped.
func (l RewardLedger) EquippedID(c Category) string {
	if id := l.Equipped[c]; id != "" {
		return id
	}
	if c == CategoryTheme {
		return DefaultTheme
	}
	return ""
}

type UnlockStatus string

const (
	UnlockSuccess           UnlockStatus = "success"
	UnlockAlreadyUnlocked   UnlockStatus = "alreadyUnlocked"
	UnlockInsufficientFunds UnlockStatus = "insufficientFunds"
	UnlockRejected          UnlockStatus = "rejected"
)

type UnlockResult struct {
	Status    UnlockStatus
	Reward    Reward
	Shortfall int
	Equipped  bool
}

// Unlock buys r with XP from the bank. Buying something already owned is a
// no-op and never spends twice.
func (l *RewardLedger) Unlock(r Reward, p *Progress) UnlockResult {
	res := UnlockResult{Reward: r}
	switch {
	case r.StreakOnly:
		res.Status = UnlockRejected
		return res
	case l.Has(r.ID) || r.Free():
		res.Status = UnlockAlreadyUnlocked
		return res
	}
	if !p.SpendFromBank(r.Cost) {
		res.Status = UnlockInsufficientFunds
		res.Shortfall = r.Cost - p.XPBank
		return res
	}
	l.Unlocked = append(l.Unlocked, r.ID)
	l.equip(r)
	res.Status = UnlockSuccess
	res.Equipped = true
	return res
}

// Grant adds id without charging for it. It reports whether id was new.
func (l *RewardLedger) Grant(id string) bool {
	if l.Has(id) {
		return false
	}
	l.Unlocked = append(l.Unlocked, id)
	return true
}

type EquipStatus string

const (
	EquipSuccess     EquipStatus = "success"
	EquipNotUnlocked EquipStatus = "notUnlocked"
)

type EquipResult struct {
	Status EquipStatus
	Reward Reward
}

// Equip puts r in its category slot. Free rewards skip the unlocked check.
func (l *RewardLedger) Equip(r Reward) EquipResult {
	if !l.Has(r.ID) && !r.Free() {
		return EquipResult{Status: EquipNotUnlocked, Reward: r}
	}
	l.equip(r)
	return EquipResult{Status: EquipSuccess, Reward: r}
}

func (l *RewardLedger) equip(r Reward) {
	if l.Equipped == nil {
		l.Equipped = map[Category]string{}
	}
	l.Equipped[r.Category] = r.ID
}

func (l *RewardLedger) normalize() {
	if l.Equipped == nil {
		l.Equipped = map[Category]string{}
	}
	seen := map[string]bool{}
	out := l.Unlocked[:0]
	for _, id := range l.Unlocked {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	l.Unlocked = out
	for c, id := range l.Equipped {
		if _, ok := ParseCategory(string(c)); !ok || id == "" {
			delete(l.Equipped, c)
		}
	}
}
