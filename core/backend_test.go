// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"fmt"
	"strings"

	"github.com/devblok/hellovk/core"
)

type testAdapter struct {
	name         string
	families     []core.QueueFamily
	present      map[uint32]bool
	extensions   []string
	capabilities core.SurfaceCapabilities
	formats      []core.SurfaceFormat
	modes        []core.PresentMode
	err          map[string]error

	// formatsOnce makes SurfaceFormats report nothing after the first call
	formatsOnce bool
}

func (a *testAdapter) Name() string {
	return a.name
}

// testBackend serves canned adapter data and records every call.
type testBackend struct {
	adapters []*testAdapter
	enumErr  error
	calls    []string
}

func (b *testBackend) record(a core.Adapter, call string) (*testAdapter, error) {
	ta := a.(*testAdapter)
	b.calls = append(b.calls, fmt.Sprintf("%s.%s", ta.name, call))
	return ta, ta.err[call]
}

func (b *testBackend) called(call string) bool {
	for _, c := range b.calls {
		if c == call {
			return true
		}
	}
	return false
}

// callsFor returns the recorded calls made for one adapter, in order.
func (b *testBackend) callsFor(name string) []string {
	var calls []string
	for _, c := range b.calls {
		if strings.HasPrefix(c, name+".") {
			calls = append(calls, strings.TrimPrefix(c, name+"."))
		}
	}
	return calls
}

func (b *testBackend) EnumerateAdapters() ([]core.Adapter, error) {
	if b.enumErr != nil {
		return nil, b.enumErr
	}
	adapters := make([]core.Adapter, len(b.adapters))
	for i, a := range b.adapters {
		adapters[i] = a
	}
	return adapters, nil
}

func (b *testBackend) QueueFamilies(a core.Adapter) ([]core.QueueFamily, error) {
	ta, err := b.record(a, "QueueFamilies")
	return ta.families, err
}

func (b *testBackend) SupportsPresent(a core.Adapter, idx uint32, _ core.Surface) (bool, error) {
	ta, err := b.record(a, "SupportsPresent")
	return ta.present[idx], err
}

func (b *testBackend) Extensions(a core.Adapter) ([]string, error) {
	ta, err := b.record(a, "Extensions")
	return ta.extensions, err
}

func (b *testBackend) SurfaceCapabilities(a core.Adapter, _ core.Surface) (core.SurfaceCapabilities, error) {
	ta, err := b.record(a, "SurfaceCapabilities")
	return ta.capabilities, err
}

func (b *testBackend) SurfaceFormats(a core.Adapter, _ core.Surface) ([]core.SurfaceFormat, error) {
	ta, err := b.record(a, "SurfaceFormats")
	formats := ta.formats
	if ta.formatsOnce {
		ta.formats = nil
	}
	return formats, err
}

func (b *testBackend) SurfacePresentModes(a core.Adapter, _ core.Surface) ([]core.PresentMode, error) {
	ta, err := b.record(a, "SurfacePresentModes")
	return ta.modes, err
}

// goodAdapter can render and present on family 0 and has the swapchain extension.
func goodAdapter(name string) *testAdapter {
	return &testAdapter{
		name: name,
		families: []core.QueueFamily{
			{Index: 0, QueueCount: 1, Graphics: true},
		},
		present:    map[uint32]bool{0: true},
		extensions: []string{"VK_KHR_maintenance1", core.SwapchainExtension},
		capabilities: core.SurfaceCapabilities{
			MinImageCount:           2,
			MaxImageCount:           8,
			CurrentExtent:           core.Extent2D{Width: 1024, Height: 768},
			MinImageExtent:          core.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:          core.Extent2D{Width: 4096, Height: 4096},
			CurrentTransform:        core.SurfaceTransformIdentity,
			SupportedCompositeAlpha: core.CompositeAlphaOpaque,
		},
		formats: []core.SurfaceFormat{core.DefaultSurfaceFormat},
		modes:   []core.PresentMode{core.PresentModeFIFO},
	}
}
