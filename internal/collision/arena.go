package collision

import "sort"

// ID is a stable identifier of a record inside an Arena.
type ID int

type pairKey struct {
	kind     Kind
	src, dst int
}

func keyOf(kind Kind, src, dst int) pairKey {
	if kind == ParticleParticle && src > dst {
		src, dst = dst, src
	}
	return pairKey{kind, src, dst}
}

// Arena owns collision records. Slots of removed records are reused, so ids
// are stable for the lifetime of a contact but not beyond it.
//
// Creation and removal belong to contact detection and must not run while a
// pass is evaluating; during a pass each record is touched by one worker only.
type Arena struct {
	records []Record
	free    []ID
	index   map[pairKey]ID
}

func NewArena() *Arena {
	return &Arena{index: make(map[pairKey]ID)}
}

// Create returns the record for the pair, creating it at contact onset.
// Particle-particle pairs are stored with the lower index as source.
// The returned pointer is valid until the next Create.
func (a *Arena) Create(kind Kind, src, dst int) (ID, *Record) {
	k := keyOf(kind, src, dst)
	if id, ok := a.index[k]; ok {
		return id, &a.records[id]
	}

	var id ID
	if n := len(a.free); n > 0 {
		id = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.records = append(a.records, Record{})
		id = ID(len(a.records) - 1)
	}

	a.records[id] = Record{Kind: kind, SrcID: k.src, DstID: k.dst, Active: true}
	a.index[k] = id
	return id, &a.records[id]
}

func (a *Arena) Find(kind Kind, src, dst int) (ID, bool) {
	id, ok := a.index[keyOf(kind, src, dst)]
	return id, ok
}

// Get returns the record with the given id, or nil when the slot is free.
func (a *Arena) Get(id ID) *Record {
	if int(id) < 0 || int(id) >= len(a.records) || !a.records[id].Active {
		return nil
	}
	return &a.records[id]
}

// Remove resets the record and releases its slot.
func (a *Arena) Remove(id ID) {
	r := a.Get(id)
	if r == nil {
		return
	}
	delete(a.index, keyOf(r.Kind, r.SrcID, r.DstID))
	r.Reset()
	a.free = append(a.free, id)
}

// Len returns the number of live records.
func (a *Arena) Len() int { return len(a.index) }

// Active returns the ids of live records of the given kind in ascending order.
func (a *Arena) Active(kind Kind) []ID {
	ids := make([]ID, 0, len(a.index))
	for k, id := range a.index {
		if k.kind == kind {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Each calls fn for every live record in id order.
func (a *Arena) Each(fn func(ID, *Record)) {
	for i := range a.records {
		if a.records[i].Active {
			fn(ID(i), &a.records[i])
		}
	}
}
