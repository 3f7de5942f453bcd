// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import "fmt"

// QueueIndex is a queue family index that is either assigned or not.
// The zero value is Unassigned.
type QueueIndex struct {
	index    uint32
	assigned bool
}

// Unassigned is a QueueIndex that holds no family.
var Unassigned = QueueIndex{}

// Assigned creates a QueueIndex holding the given family.
func Assigned(index uint32) QueueIndex {
	return QueueIndex{index: index, assigned: true}
}

// Get returns the family index and whether there is one.
func (q QueueIndex) Get() (uint32, bool) {
	return q.index, q.assigned
}

// IsAssigned reports whether a family was found for the role.
func (q QueueIndex) IsAssigned() bool {
	return q.assigned
}

func (q QueueIndex) String() string {
	if !q.assigned {
		return "unassigned"
	}
	return fmt.Sprintf("%d", q.index)
}

// QueueRoles maps the roles the program needs to queue families.
// Graphics and Present may be the same family.
type QueueRoles struct {
	Graphics QueueIndex
	Present  QueueIndex
}

// Complete reports whether every role has a family.
func (r QueueRoles) Complete() bool {
	return r.Graphics.assigned && r.Present.assigned
}

// Families returns the distinct assigned family indices,
// graphics first. One queue is created per returned family.
func (r QueueRoles) Families() []uint32 {
	var families []uint32
	if idx, ok := r.Graphics.Get(); ok {
		families = append(families, idx)
	}
	if idx, ok := r.Present.Get(); ok {
		if len(families) == 0 || families[0] != idx {
			families = append(families, idx)
		}
	}
	return families
}

// ResolveQueueRoles scans the adapter's queue families in index order.
// A later family that qualifies for graphics replaces an earlier one, as does
// one that can present. The scan stops as soon as both roles are assigned, so a
// more specialised family further down is never looked at.
// The returned roles may be incomplete.
func (n *Negotiator) ResolveQueueRoles(adapter Adapter, surface Surface) (QueueRoles, error) {
	families, err := n.backend.QueueFamilies(adapter)
	if err != nil {
		return QueueRoles{}, backendError(adapter, "QueueFamilies", err)
	}

	var roles QueueRoles
	for _, family := range families {
		if family.QueueCount > 0 && family.Graphics {
			roles.Graphics = Assigned(family.Index)
		}

		supported, err := n.backend.SupportsPresent(adapter, family.Index, surface)
		if err != nil {
			return QueueRoles{}, backendError(adapter, "SupportsPresent", err)
		}
		if supported && family.QueueCount > 0 {
			roles.Present = Assigned(family.Index)
		}

		if roles.Complete() {
			break
		}
	}
	return roles, nil
}
