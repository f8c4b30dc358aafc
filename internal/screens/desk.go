package screens

import (
	"context"
	"fmt"

	"assetdesk/internal/collection"
	"assetdesk/internal/seed"
	"assetdesk/pkg/domain"
)

// Desk holds one independent screen per resource kind.
type Desk struct {
	screens map[domain.EntityKind]Screen
}

// DeskOptions configures OpenDesk.
type DeskOptions struct {
	// EnforceReferences makes records that name an asset or block identity
	// fail validation when that identity is not on the corresponding screen.
	EnforceReferences bool
	// Controller options applied to every screen.
	Controller []collection.Option
}

// OpenDesk opens every screen in domain.Kinds order from src.
func (e Env) OpenDesk(ctx context.Context, src seed.Source, o DeskOptions) (*Desk, error) {
	d := &Desk{screens: make(map[domain.EntityKind]Screen, len(domain.Kinds()))}
	// Reference targets open first so dependants can hold them.
	order := []domain.EntityKind{domain.EntityAsset, domain.EntityBlock}
	for _, k := range domain.Kinds() {
		if k != domain.EntityAsset && k != domain.EntityBlock {
			order = append(order, k)
		}
	}
	for _, kind := range order {
		opts := append([]collection.Option{}, o.Controller...)
		if o.EnforceReferences {
			opts = append(opts, d.references(kind)...)
		}
		s, err := e.Open(ctx, kind, src, opts...)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("open %s screen: %w", kind, err)
		}
		d.screens[kind] = s
	}
	return d, nil
}

func (d *Desk) references(kind domain.EntityKind) []collection.Option {
	switch kind {
	case domain.EntityAllocation:
		return []collection.Option{collection.WithReference("asset_id", func(a domain.Allocation) string { return a.AssetID }, d.taken(domain.EntityAsset))}
	case domain.EntityTransfer:
		return []collection.Option{collection.WithReference("asset_id", func(t domain.Transfer) string { return t.AssetID }, d.taken(domain.EntityAsset))}
	case domain.EntityDisposal:
		return []collection.Option{collection.WithReference("asset_id", func(r domain.Disposal) string { return r.AssetID }, d.taken(domain.EntityAsset))}
	case domain.EntityDecommission:
		return []collection.Option{collection.WithReference("asset_id", func(r domain.Decommission) string { return r.AssetID }, d.taken(domain.EntityAsset))}
	case domain.EntityDepartment:
		return []collection.Option{collection.WithReference("block", func(r domain.Department) string { return r.Block }, d.taken(domain.EntityBlock))}
	default:
		return nil
	}
}

func (d *Desk) taken(kind domain.EntityKind) collection.Taken {
	return d.screens[kind].Taken()
}

// Screen returns the screen for kind.
func (d *Desk) Screen(kind domain.EntityKind) (Screen, bool) {
	s, ok := d.screens[kind]
	return s, ok
}

// Close releases every screen's notification timers.
func (d *Desk) Close() {
	for _, s := range d.screens {
		s.Close()
	}
}
