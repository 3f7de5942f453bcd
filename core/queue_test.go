// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/hellovk/core"
)

func TestQueueIndex(t *testing.T) {
	c := qt.New(t)

	idx, ok := core.Unassigned.Get()
	c.Assert(ok, qt.IsFalse)
	c.Assert(idx, qt.Equals, uint32(0))
	c.Assert(core.QueueIndex{}, qt.Equals, core.Unassigned)
	c.Assert(core.Unassigned.String(), qt.Equals, "unassigned")

	idx, ok = core.Assigned(0).Get()
	c.Assert(ok, qt.IsTrue)
	c.Assert(idx, qt.Equals, uint32(0))
	c.Assert(core.Assigned(3).String(), qt.Equals, "3")
}

func TestQueueRolesFamilies(t *testing.T) {
	c := qt.New(t)

	c.Assert(core.QueueRoles{}.Families(), qt.HasLen, 0)
	c.Assert(core.QueueRoles{
		Graphics: core.Assigned(1),
		Present:  core.Assigned(1),
	}.Families(), qt.DeepEquals, []uint32{1})
	c.Assert(core.QueueRoles{
		Graphics: core.Assigned(0),
		Present:  core.Assigned(2),
	}.Families(), qt.DeepEquals, []uint32{0, 2})
}

func TestResolveQueueRoles(t *testing.T) {
	tests := []struct {
		name     string
		families []core.QueueFamily
		present  map[uint32]bool
		graphics core.QueueIndex
		presents core.QueueIndex
	}{{
		name:     "no families",
		graphics: core.Unassigned,
		presents: core.Unassigned,
	}, {
		name: "single family does both",
		families: []core.QueueFamily{
			{Index: 0, QueueCount: 4, Graphics: true},
		},
		present:  map[uint32]bool{0: true},
		graphics: core.Assigned(0),
		presents: core.Assigned(0),
	}, {
		name: "separate present family",
		families: []core.QueueFamily{
			{Index: 0, QueueCount: 1, Graphics: true},
			{Index: 1, QueueCount: 1},
		},
		present:  map[uint32]bool{1: true},
		graphics: core.Assigned(0),
		presents: core.Assigned(1),
	}, {
		name: "last graphics family wins until both roles are found",
		families: []core.QueueFamily{
			{Index: 0, QueueCount: 1, Graphics: true},
			{Index: 1, QueueCount: 1, Graphics: true},
			{Index: 2, QueueCount: 1},
		},
		present:  map[uint32]bool{2: true},
		graphics: core.Assigned(1),
		presents: core.Assigned(2),
	}, {
		name: "scan stops once both roles are assigned",
		families: []core.QueueFamily{
			{Index: 0, QueueCount: 1, Graphics: true},
			{Index: 1, QueueCount: 1, Graphics: true},
		},
		present:  map[uint32]bool{0: true, 1: true},
		graphics: core.Assigned(0),
		presents: core.Assigned(0),
	}, {
		name: "empty families are skipped",
		families: []core.QueueFamily{
			{Index: 0, QueueCount: 0, Graphics: true},
			{Index: 1, QueueCount: 0},
		},
		present:  map[uint32]bool{0: true, 1: true},
		graphics: core.Unassigned,
		presents: core.Unassigned,
	}, {
		name: "no family can present",
		families: []core.QueueFamily{
			{Index: 0, QueueCount: 1, Graphics: true},
		},
		graphics: core.Assigned(0),
		presents: core.Unassigned,
	}}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			c := qt.New(t)
			adapter := &testAdapter{name: "gpu", families: test.families, present: test.present}
			n := core.NewNegotiator(&testBackend{adapters: []*testAdapter{adapter}}, nil)

			roles, err := n.ResolveQueueRoles(adapter, nil)
			c.Assert(err, qt.IsNil)
			c.Assert(roles.Graphics, qt.Equals, test.graphics)
			c.Assert(roles.Present, qt.Equals, test.presents)
			c.Assert(roles.Complete(), qt.Equals, test.graphics.IsAssigned() && test.presents.IsAssigned())
		})
	}
}

func TestResolveQueueRolesStopsQuerying(t *testing.T) {
	c := qt.New(t)
	adapter := &testAdapter{
		name: "gpu",
		families: []core.QueueFamily{
			{Index: 0, QueueCount: 1, Graphics: true},
			{Index: 1, QueueCount: 1, Graphics: true},
			{Index: 2, QueueCount: 1, Graphics: true},
		},
		present: map[uint32]bool{0: true},
	}
	backend := &testBackend{adapters: []*testAdapter{adapter}}

	_, err := core.NewNegotiator(backend, nil).ResolveQueueRoles(adapter, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(backend.calls, qt.DeepEquals, []string{"gpu.QueueFamilies", "gpu.SupportsPresent"})
}

func TestResolveQueueRolesBackendError(t *testing.T) {
	c := qt.New(t)
	queryErr := errors.New("device lost")
	adapter := goodAdapter("gpu")
	adapter.err = map[string]error{"SupportsPresent": queryErr}

	_, err := core.NewNegotiator(&testBackend{adapters: []*testAdapter{adapter}}, nil).ResolveQueueRoles(adapter, nil)

	var startupErr *core.StartupError
	c.Assert(errors.As(err, &startupErr), qt.IsTrue)
	c.Assert(startupErr.Cause, qt.Equals, core.CauseBackend)
	c.Assert(errors.Is(err, queryErr), qt.IsTrue)
	c.Assert(err, qt.ErrorMatches, `startup failed: backend query failed: gpu.SupportsPresent\(\): device lost`)
}
