// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"errors"
	"io/ioutil"
	"testing"

	qt "github.com/frankban/quicktest"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/hellovk/core"
)

var required = []string{core.SwapchainExtension}

func quietLogger() *log.Logger {
	logger := log.New()
	logger.Out = ioutil.Discard
	return logger
}

func startupError(c *qt.C, err error) *core.StartupError {
	var startupErr *core.StartupError
	c.Assert(errors.As(err, &startupErr), qt.IsTrue, qt.Commentf("error %v", err))
	return startupErr
}

func TestNegotiateFirstSuitableAfterExtensionFailures(t *testing.T) {
	c := qt.New(t)

	first := goodAdapter("gpu0")
	first.extensions = []string{"VK_KHR_maintenance1"}
	second := goodAdapter("gpu1")
	second.extensions = []string{"vk_khr_swapchain"}
	third := goodAdapter("gpu2")
	third.families = []core.QueueFamily{
		{Index: 0, QueueCount: 16, Graphics: true},
		{Index: 1, QueueCount: 2},
	}
	third.present = map[uint32]bool{1: true}
	third.capabilities.MinImageCount = 3
	third.capabilities.MaxImageCount = 0
	third.modes = []core.PresentMode{core.PresentModeFIFO, core.PresentModeImmediate}

	backend := &testBackend{adapters: []*testAdapter{first, second, third}}
	plan, err := core.NewNegotiator(backend, quietLogger()).Negotiate(nil, required, core.Extent2D{Width: 800, Height: 600})
	c.Assert(err, qt.IsNil)

	c.Assert(plan.Adapter, qt.Equals, core.Adapter(third))
	c.Assert(plan.Roles.Graphics, qt.Equals, core.Assigned(0))
	c.Assert(plan.Roles.Present, qt.Equals, core.Assigned(1))
	c.Assert(plan.Sharing, qt.Equals, core.SharingModeConcurrent)
	c.Assert(plan.QueueFamilyIndices, qt.DeepEquals, []uint32{0, 1})
	c.Assert(plan.PresentMode, qt.Equals, core.PresentModeImmediate)
	c.Assert(plan.ImageCount, qt.Equals, uint32(4))
	c.Assert(plan.Extent, qt.Equals, core.Extent2D{Width: 1024, Height: 768})

	for _, name := range []string{"gpu0", "gpu1"} {
		c.Assert(backend.called(name+".SurfaceFormats"), qt.IsFalse)
		c.Assert(backend.called(name+".SurfacePresentModes"), qt.IsFalse)
		c.Assert(backend.called(name+".SurfaceCapabilities"), qt.IsFalse)
	}
	c.Assert(backend.called("gpu2.SurfaceCapabilities"), qt.IsTrue)
}

func TestNegotiateFirstMatchWins(t *testing.T) {
	c := qt.New(t)
	integrated := goodAdapter("integrated")
	discrete := goodAdapter("discrete")

	backend := &testBackend{adapters: []*testAdapter{integrated, discrete}}
	plan, err := core.NewNegotiator(backend, quietLogger()).Negotiate(nil, required, core.Extent2D{Width: 800, Height: 600})
	c.Assert(err, qt.IsNil)
	c.Assert(plan.Adapter.Name(), qt.Equals, "integrated")
	c.Assert(backend.called("discrete.QueueFamilies"), qt.IsFalse)
}

func TestNegotiateQueriesSurfaceOnce(t *testing.T) {
	c := qt.New(t)
	gpu := goodAdapter("gpu")
	gpu.formatsOnce = true

	backend := &testBackend{adapters: []*testAdapter{gpu}}
	plan, err := core.NewNegotiator(backend, quietLogger()).Negotiate(nil, required, core.Extent2D{Width: 800, Height: 600})
	c.Assert(err, qt.IsNil)
	c.Assert(plan.Format, qt.Equals, core.DefaultSurfaceFormat)
	c.Assert(backend.callsFor("gpu"), qt.DeepEquals, []string{
		"QueueFamilies",
		"SupportsPresent",
		"Extensions",
		"SurfaceFormats",
		"SurfacePresentModes",
		"SurfaceCapabilities",
	})
}

func TestNegotiateNoAdapters(t *testing.T) {
	c := qt.New(t)

	_, err := core.NewNegotiator(&testBackend{}, quietLogger()).Negotiate(nil, required, core.Extent2D{})
	c.Assert(startupError(c, err).Cause, qt.Equals, core.CauseNoAdapters)
	c.Assert(err, qt.ErrorMatches, "startup failed: no adapters present")
}

func TestNegotiateEnumerationError(t *testing.T) {
	c := qt.New(t)
	enumErr := errors.New("initialization failed")

	_, err := core.NewNegotiator(&testBackend{enumErr: enumErr}, quietLogger()).Negotiate(nil, required, core.Extent2D{})
	c.Assert(startupError(c, err).Cause, qt.Equals, core.CauseBackend)
	c.Assert(errors.Is(err, enumErr), qt.IsTrue)
}

func TestNegotiateNoSuitableAdapter(t *testing.T) {
	c := qt.New(t)

	noQueues := goodAdapter("no-queues")
	noQueues.families = nil
	noExtension := goodAdapter("no-extension")
	noExtension.extensions = nil
	noFormats := goodAdapter("no-formats")
	noFormats.formats = nil
	noModes := goodAdapter("no-modes")
	noModes.modes = nil

	backend := &testBackend{adapters: []*testAdapter{noQueues, noExtension, noFormats, noModes}}
	_, err := core.NewNegotiator(backend, quietLogger()).Negotiate(nil, required, core.Extent2D{})

	startupErr := startupError(c, err)
	c.Assert(startupErr.Cause, qt.Equals, core.CauseNoSuitableAdapter)
	c.Assert(startupErr.Rejections, qt.DeepEquals, []core.Rejection{
		{Adapter: "no-queues", Cause: core.CauseIncompleteQueues},
		{Adapter: "no-extension", Cause: core.CauseMissingExtension, Missing: []string{core.SwapchainExtension}},
		{Adapter: "no-formats", Cause: core.CauseEmptySurfaceSupport},
		{Adapter: "no-modes", Cause: core.CauseEmptySurfaceSupport},
	})
	c.Assert(err, qt.ErrorMatches, `startup failed: no suitable adapter \[no-queues: .*; no-extension: required extension missing \(VK_KHR_swapchain\); .*\]`)
	c.Assert(backend.called("no-queues.Extensions"), qt.IsFalse)
}

func TestNegotiateBackendErrorIsFatal(t *testing.T) {
	c := qt.New(t)
	queryErr := errors.New("surface lost")

	broken := goodAdapter("broken")
	broken.err = map[string]error{"SurfaceCapabilities": queryErr}
	fine := goodAdapter("fine")

	backend := &testBackend{adapters: []*testAdapter{broken, fine}}
	_, err := core.NewNegotiator(backend, quietLogger()).Negotiate(nil, required, core.Extent2D{})

	c.Assert(startupError(c, err).Cause, qt.Equals, core.CauseBackend)
	c.Assert(errors.Is(err, queryErr), qt.IsTrue)
	c.Assert(backend.called("fine.QueueFamilies"), qt.IsFalse)
}

func TestIsSuitable(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*testAdapter)
		required []string
		suitable bool
		cause    core.Cause
		missing  []string
	}{{
		name:     "everything present",
		modify:   func(*testAdapter) {},
		required: required,
		suitable: true,
	}, {
		name:     "no required extensions",
		modify:   func(a *testAdapter) { a.extensions = nil },
		suitable: true,
	}, {
		name:     "extension order does not matter",
		modify:   func(a *testAdapter) { a.extensions = []string{"B", "C", "A"} },
		required: []string{"A", "B"},
		suitable: true,
	}, {
		name:     "missing extensions are reported sorted",
		modify:   func(a *testAdapter) { a.extensions = []string{"B"} },
		required: []string{"D", "B", "A"},
		cause:    core.CauseMissingExtension,
		missing:  []string{"A", "D"},
	}, {
		name: "incomplete queues",
		modify: func(a *testAdapter) {
			a.present = nil
		},
		required: required,
		cause:    core.CauseIncompleteQueues,
	}, {
		name:     "no formats",
		modify:   func(a *testAdapter) { a.formats = []core.SurfaceFormat{} },
		required: required,
		cause:    core.CauseEmptySurfaceSupport,
	}}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			c := qt.New(t)
			adapter := goodAdapter("gpu")
			test.modify(adapter)
			n := core.NewNegotiator(&testBackend{adapters: []*testAdapter{adapter}}, quietLogger())

			suitable, rejection, err := n.IsSuitable(adapter, nil, test.required)
			c.Assert(err, qt.IsNil)
			c.Assert(suitable, qt.Equals, test.suitable)
			if test.suitable {
				return
			}
			c.Assert(rejection.Adapter, qt.Equals, "gpu")
			c.Assert(rejection.Cause, qt.Equals, test.cause)
			if test.missing == nil {
				c.Assert(rejection.Missing, qt.HasLen, 0)
			} else {
				c.Assert(rejection.Missing, qt.DeepEquals, test.missing)
			}
		})
	}
}
