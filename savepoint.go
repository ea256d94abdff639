package analysis

// SavePoint captures one bucket's numeric payload, and for securities the
// capital event ledger length, so a replay can be rolled back cheaply.
// Restore overwrites the payload and truncates the ledger; it never copies
// events back.
type SavePoint struct {
	bucket    *Bucket
	payload   any
	ledgerLen int
}

// NewSavePoint snapshots a bucket's current state.
func NewSavePoint(b *Bucket) *SavePoint {
	sp := &SavePoint{bucket: b, payload: b.copyPayload()}
	if l := b.CapitalEvents(); l != nil {
		sp.ledgerLen = l.Len()
	}
	return sp
}

// Bucket returns the bucket this save-point belongs to.
func (sp *SavePoint) Bucket() *Bucket { return sp.bucket }

// Restore rolls the bucket back to the snapshotted state.
func (sp *SavePoint) Restore() {
	sp.bucket.restorePayload(sp.payload)
	if l := sp.bucket.CapitalEvents(); l != nil {
		l.Truncate(sp.ledgerLen)
	}
}

// RegistrySavePoint captures a whole registry: every bucket's payload plus
// the set of keys alive at save time, so buckets created during a replay
// disappear on restore.
type RegistrySavePoint struct {
	registry *Registry
	points   []*SavePoint
	keys     map[bucketKey]bool
}

// SaveRegistry snapshots every bucket in the registry.
func SaveRegistry(r *Registry) *RegistrySavePoint {
	sp := &RegistrySavePoint{
		registry: r,
		keys:     make(map[bucketKey]bool, len(r.buckets)),
	}
	for key, b := range r.buckets {
		sp.keys[key] = true
		sp.points = append(sp.points, NewSavePoint(b))
	}
	return sp
}

// Restore rolls every bucket back and removes buckets created since the
// save.
func (sp *RegistrySavePoint) Restore() {
	for key := range sp.registry.buckets {
		if !sp.keys[key] {
			delete(sp.registry.buckets, key)
		}
	}
	for _, p := range sp.points {
		p.Restore()
	}
}
