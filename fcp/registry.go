package fcp

import (
	"sync"
)

// ResourceRegistry hands out document-wide resource IDs and deduplicates
// assets by UID.
type ResourceRegistry struct {
	mu sync.RWMutex

	assetsByUID map[string]int // uid -> index in ml.Resources.Assets
	effects     map[string]string

	nextResourceID int
	usedIDs        map[string]bool

	ml *FCPXML
}

// NewResourceRegistry creates a registry for ml and marks its existing
// resources as used.
func NewResourceRegistry(ml *FCPXML) *ResourceRegistry {
	r := &ResourceRegistry{
		assetsByUID: make(map[string]int),
		effects:     make(map[string]string),
		usedIDs:     make(map[string]bool),
		ml:          ml,
	}

	for i, asset := range ml.Resources.Assets {
		r.usedIDs[asset.ID] = true
		r.assetsByUID[asset.UID] = i
	}
	for _, format := range ml.Resources.Formats {
		r.usedIDs[format.ID] = true
	}
	for _, effect := range ml.Resources.Effects {
		r.usedIDs[effect.ID] = true
		r.effects[effect.Name] = effect.ID
	}
	r.nextResourceID = len(r.usedIDs) + 1

	return r
}

// ReserveIDs reserves count IDs, skipping any already in use.
func (r *ResourceRegistry) ReserveIDs(count int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, count)
	for i := 0; i < count; i++ {
		for {
			id := GenerateResourceID(r.nextResourceID)
			r.nextResourceID++
			if !r.usedIDs[id] {
				r.usedIDs[id] = true
				ids[i] = id
				break
			}
		}
	}
	return ids
}

// ReserveNextID reserves a single ID
func (r *ResourceRegistry) ReserveNextID() string {
	return r.ReserveIDs(1)[0]
}

// RegisterFormat appends a format to the document.
func (r *ResourceRegistry) RegisterFormat(format Format) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.usedIDs[format.ID] = true
	r.ml.Resources.Formats = append(r.ml.Resources.Formats, format)
}

// RegisterAsset appends an asset to the document.
func (r *ResourceRegistry) RegisterAsset(asset Asset) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.usedIDs[asset.ID] = true
	r.assetsByUID[asset.UID] = len(r.ml.Resources.Assets)
	r.ml.Resources.Assets = append(r.ml.Resources.Assets, asset)
}

// RegisterEffect appends an effect to the document.
func (r *ResourceRegistry) RegisterEffect(effect Effect) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.usedIDs[effect.ID] = true
	r.effects[effect.Name] = effect.ID
	r.ml.Resources.Effects = append(r.ml.Resources.Effects, effect)
}

// AssetByUID returns the registered asset with the given UID.
func (r *ResourceRegistry) AssetByUID(uid string) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.assetsByUID[uid]
	if !ok {
		return nil, false
	}
	return &r.ml.Resources.Assets[i], true
}

// EffectID returns the ID of a registered effect by name.
func (r *ResourceRegistry) EffectID(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.effects[name]
	return id, ok
}

