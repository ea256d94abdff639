package analysis

import (
	"iter"
	"sort"
)

// Registry is the indexed collection of buckets for one tax year. Lookup is
// deterministic and idempotent: the same (kind, id) pair resolves to the
// same bucket instance for the lifetime of one aggregation run.
type Registry struct {
	year    TaxYear
	prev    *Registry
	buckets map[bucketKey]*Bucket
}

// NewRegistry creates an empty registry for a tax year, chained to the
// prior period's registry (nil for the first year of a run). The prior
// registry must not be mutated once chained.
func NewRegistry(year TaxYear, prev *Registry) *Registry {
	return &Registry{
		year:    year,
		prev:    prev,
		buckets: make(map[bucketKey]*Bucket),
	}
}

// Year returns the tax year the registry aggregates.
func (r *Registry) Year() TaxYear { return r.year }

// GetOrCreate returns the bucket for the composite key, lazily creating it
// on first touch. A newly created bucket opens from the prior period's
// closing bucket with the same key when one exists.
func (r *Registry) GetOrCreate(kind BucketKind, id string) *Bucket {
	key := bucketKey{kind: kind, id: id}
	if b, ok := r.buckets[key]; ok {
		return b
	}
	b := newBucket(kind, id)
	b.openFrom(r.previous(kind, id))
	r.buckets[key] = b
	return b
}

// Get returns the bucket for the key, or nil if the run never touched it.
func (r *Registry) Get(kind BucketKind, id string) *Bucket {
	return r.buckets[bucketKey{kind: kind, id: id}]
}

// previous resolves the prior period's bucket by key lookup, never by a
// live back-reference.
func (r *Registry) previous(kind BucketKind, id string) *Bucket {
	if r.prev == nil {
		return nil
	}
	return r.prev.Get(kind, id)
}

// Len returns the number of buckets.
func (r *Registry) Len() int { return len(r.buckets) }

// Buckets iterates all buckets sorted by (kind, id) for deterministic
// reporting.
func (r *Registry) Buckets() iter.Seq[*Bucket] {
	keys := make([]bucketKey, 0, len(r.buckets))
	for k := range r.buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].kind != keys[j].kind {
			return keys[i].kind < keys[j].kind
		}
		return keys[i].id < keys[j].id
	})
	return func(yield func(*Bucket) bool) {
		for _, k := range keys {
			if !yield(r.buckets[k]) {
				return
			}
		}
	}
}

// OfKind iterates the buckets of one kind, sorted by id.
func (r *Registry) OfKind(kind BucketKind) iter.Seq[*Bucket] {
	return func(yield func(*Bucket) bool) {
		for b := range r.Buckets() {
			if b.kind != kind {
				continue
			}
			if !yield(b) {
				return
			}
		}
	}
}

// Prune drops every bucket that never became relevant: zero in this period
// and zero (or absent) in the previous one. Security detail buckets are
// always retained.
func (r *Registry) Prune() {
	for key, b := range r.buckets {
		if !b.isRelevant() {
			delete(r.buckets, key)
		}
	}
}
