// Package catalog holds the static shield reference data: generators,
// boosters, reactors and hull blocks.
//
// A Catalog is built once, validated, and then only read. Validation failures
// are configuration errors meant to stop the process at startup.
package catalog

import (
	"errors"
	"fmt"
	"math"

	"github.com/rsned/shieldcalc-server/pkg/shield"
)

// TierSlot is one searched tier: its shared cap and the capacitor/charger pair.
type TierSlot struct {
	Tier      shield.Tier
	Cap       int
	Capacitor shield.Component
	Charger   shield.Component
}

// Catalog is validated, read-only shield reference data.
type Catalog struct {
	generators []shield.Generator
	components []shield.Component
	blocks     []shield.BlockType

	generatorByID map[string]int
	componentByID map[string]int
	blockByID     map[string]int

	slots [3]TierSlot
}

// New validates the given entries and builds a Catalog.
// Entry order is kept for listings.
func New(generators []shield.Generator, components []shield.Component, blocks []shield.BlockType) (*Catalog, error) {
	c := &Catalog{
		generators:    append([]shield.Generator(nil), generators...),
		components:    append([]shield.Component(nil), components...),
		blocks:        append([]shield.BlockType(nil), blocks...),
		generatorByID: make(map[string]int, len(generators)),
		componentByID: make(map[string]int, len(components)),
		blockByID:     make(map[string]int, len(blocks)),
	}

	var errs []error

	for i, g := range c.generators {
		if err := checkID("generator", g.ID, c.generatorByID); err != nil {
			errs = append(errs, err)
			continue
		}
		c.generatorByID[g.ID] = i
		if !nonNegative(g.BaseCapacity) || !nonNegative(g.BaseRecharge) {
			errs = append(errs, fmt.Errorf("generator %s: base stats must be non-negative", g.ID))
		}
	}
	if len(c.generators) == 0 {
		errs = append(errs, errors.New("catalog has no generators"))
	}

	for i, comp := range c.components {
		if err := checkID("component", comp.ID, c.componentByID); err != nil {
			errs = append(errs, err)
			continue
		}
		c.componentByID[comp.ID] = i
		errs = append(errs, validateComponent(comp)...)
	}

	for i, b := range c.blocks {
		if err := checkID("block type", b.ID, c.blockByID); err != nil {
			errs = append(errs, err)
			continue
		}
		c.blockByID[b.ID] = i
		if !nonNegative(b.CapacityPerBlock) {
			errs = append(errs, fmt.Errorf("block type %s: capacity per block must be non-negative", b.ID))
		}
	}

	errs = append(errs, c.buildSlots()...)

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid catalog: %w", errors.Join(errs...))
	}
	return c, nil
}

func checkID(what, id string, seen map[string]int) error {
	if id == "" {
		return fmt.Errorf("%s with empty id", what)
	}
	if _, dup := seen[id]; dup {
		return fmt.Errorf("duplicate %s id %q", what, id)
	}
	return nil
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

func validateComponent(comp shield.Component) []error {
	var errs []error
	if !comp.Kind.IsValid() {
		errs = append(errs, fmt.Errorf("component %s: unknown kind %q", comp.ID, comp.Kind))
	}
	if !comp.Tier.IsValid() {
		errs = append(errs, fmt.Errorf("component %s: unknown tier %q", comp.ID, comp.Tier))
	}
	if comp.TierCap <= 0 {
		errs = append(errs, fmt.Errorf("component %s: tier cap must be positive, got %d", comp.ID, comp.TierCap))
	}
	if !nonNegative(comp.CPUCost) {
		errs = append(errs, fmt.Errorf("component %s: cpu cost must be non-negative", comp.ID))
	}
	if comp.Kind == shield.KindReactor {
		if comp.CPUCost != 0 || comp.CapacityDelta != 0 {
			errs = append(errs, fmt.Errorf("reactor %s: cpu cost and capacity delta must be zero", comp.ID))
		}
		if comp.Tier != shield.TierUntiered {
			errs = append(errs, fmt.Errorf("reactor %s: must be untiered", comp.ID))
		}
	} else if comp.Kind.IsValid() && comp.Tier == shield.TierUntiered {
		errs = append(errs, fmt.Errorf("%s %s: must belong to a searched tier", comp.Kind, comp.ID))
	}
	return errs
}

// buildSlots pairs one capacitor with one charger for every searched tier.
func (c *Catalog) buildSlots() []error {
	var errs []error
	for i, tier := range shield.SearchTiers() {
		slot := TierSlot{Tier: tier}
		var caps, chargers int
		for _, comp := range c.components {
			if comp.Tier != tier {
				continue
			}
			switch comp.Kind {
			case shield.KindCapacitor:
				caps++
				slot.Capacitor = comp
			case shield.KindCharger:
				chargers++
				slot.Charger = comp
			}
		}
		if caps != 1 || chargers != 1 {
			errs = append(errs, fmt.Errorf("tier %s: need exactly one capacitor and one charger, got %d and %d", tier, caps, chargers))
			continue
		}
		if slot.Capacitor.TierCap != slot.Charger.TierCap {
			errs = append(errs, fmt.Errorf("tier %s: capacitor cap %d differs from charger cap %d",
				tier, slot.Capacitor.TierCap, slot.Charger.TierCap))
			continue
		}
		slot.Cap = slot.Capacitor.TierCap
		c.slots[i] = slot
	}
	return errs
}

// Slots returns the searched tiers in iteration order: basic, improved, advanced.
func (c *Catalog) Slots() [3]TierSlot {
	return c.slots
}

// TierCaps returns the cap for each searched tier.
func (c *Catalog) TierCaps() shield.TierUsage {
	var caps shield.TierUsage
	for _, s := range c.slots {
		caps.Set(s.Tier, s.Cap)
	}
	return caps
}

// Generator looks up a generator by ID.
func (c *Catalog) Generator(id string) (shield.Generator, bool) {
	i, ok := c.generatorByID[id]
	if !ok {
		return shield.Generator{}, false
	}
	return c.generators[i], true
}

// Component looks up a component by ID.
func (c *Catalog) Component(id string) (shield.Component, bool) {
	i, ok := c.componentByID[id]
	if !ok {
		return shield.Component{}, false
	}
	return c.components[i], true
}

// BlockType looks up a block type by ID.
func (c *Catalog) BlockType(id string) (shield.BlockType, bool) {
	i, ok := c.blockByID[id]
	if !ok {
		return shield.BlockType{}, false
	}
	return c.blocks[i], true
}

// Generators returns all generators in catalog order.
func (c *Catalog) Generators() []shield.Generator {
	return append([]shield.Generator(nil), c.generators...)
}

// Components returns all components in catalog order.
func (c *Catalog) Components() []shield.Component {
	return append([]shield.Component(nil), c.components...)
}

// BlockTypes returns all block types in catalog order.
func (c *Catalog) BlockTypes() []shield.BlockType {
	return append([]shield.BlockType(nil), c.blocks...)
}

// Reactors returns the fixed-count components.
func (c *Catalog) Reactors() []shield.Component {
	var out []shield.Component
	for _, comp := range c.components {
		if comp.Kind == shield.KindReactor {
			out = append(out, comp)
		}
	}
	return out
}

// SearchedIDs returns the six searched component IDs in iteration order.
func (c *Catalog) SearchedIDs() []string {
	ids := make([]string, 0, 2*len(c.slots))
	for _, s := range c.slots {
		ids = append(ids, s.Capacitor.ID, s.Charger.ID)
	}
	return ids
}

// Listing returns a copy of the whole catalog.
func (c *Catalog) Listing() shield.CatalogListing {
	return shield.CatalogListing{
		Generators: c.Generators(),
		Components: c.Components(),
		BlockTypes: c.BlockTypes(),
	}
}
