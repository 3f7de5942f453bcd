// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// NewNegotiator creates a negotiator over the given backend.
// A nil logger means the logrus standard logger.
func NewNegotiator(backend Backend, logger log.FieldLogger) *Negotiator {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Negotiator{
		backend: backend,
		log:     logger,
	}
}

// Negotiator picks an adapter and swapchain parameters.
type Negotiator struct {
	backend Backend
	log     log.FieldLogger
}

// Negotiate returns a plan for the first suitable adapter in enumeration order.
// Adapters are not ranked: a discrete GPU listed after a suitable integrated
// one is never chosen.
func (n *Negotiator) Negotiate(surface Surface, requiredExtensions []string, requested Extent2D) (SwapchainPlan, error) {
	adapters, err := n.backend.EnumerateAdapters()
	if err != nil {
		return SwapchainPlan{}, backendError(nil, "EnumerateAdapters", err)
	}
	if len(adapters) == 0 {
		return SwapchainPlan{}, &StartupError{Cause: CauseNoAdapters}
	}

	var rejections []Rejection
	for _, adapter := range adapters {
		support, rejection, err := n.evaluate(adapter, surface, requiredExtensions)
		if err != nil {
			return SwapchainPlan{}, err
		}
		if rejection != nil {
			n.log.WithFields(log.Fields{
				"adapter": adapter.Name(),
				"reason":  rejection.String(),
			}).Info("adapter rejected")
			rejections = append(rejections, *rejection)
			continue
		}

		caps, err := n.backend.SurfaceCapabilities(adapter, surface)
		if err != nil {
			return SwapchainPlan{}, backendError(adapter, "SurfaceCapabilities", err)
		}
		plan := SelectSwapchainPlan(caps, support.formats, support.modes, requested, support.roles)
		plan.Adapter = adapter

		n.log.WithFields(log.Fields{
			"adapter":     adapter.Name(),
			"graphics":    plan.Roles.Graphics,
			"present":     plan.Roles.Present,
			"format":      plan.Format.Format,
			"presentMode": plan.PresentMode,
			"extent":      plan.Extent,
			"images":      plan.ImageCount,
			"sharing":     plan.Sharing,
		}).Info("adapter selected")
		return plan, nil
	}

	return SwapchainPlan{}, &StartupError{
		Cause:      CauseNoSuitableAdapter,
		Rejections: rejections,
	}
}

// IsSuitable checks queue roles, then extensions, then surface support.
// Surface formats and present modes are only queried once the extensions
// are known to be there. When the adapter is not suitable the rejection
// says why.
func (n *Negotiator) IsSuitable(adapter Adapter, surface Surface, requiredExtensions []string) (bool, Rejection, error) {
	_, rejection, err := n.evaluate(adapter, surface, requiredExtensions)
	if err != nil {
		return false, Rejection{Adapter: adapter.Name()}, err
	}
	if rejection != nil {
		return false, *rejection, nil
	}
	return true, Rejection{}, nil
}

// adapterSupport is what the suitability checks learned about an adapter.
// A plan is built from it without asking the backend again.
type adapterSupport struct {
	roles   QueueRoles
	formats []SurfaceFormat
	modes   []PresentMode
}

// evaluate runs the suitability checks. A nil rejection means the adapter
// is suitable and the returned support is complete.
func (n *Negotiator) evaluate(adapter Adapter, surface Surface, requiredExtensions []string) (adapterSupport, *Rejection, error) {
	rejection := &Rejection{Adapter: adapter.Name()}

	roles, err := n.ResolveQueueRoles(adapter, surface)
	if err != nil {
		return adapterSupport{}, nil, err
	}
	if !roles.Complete() {
		rejection.Cause = CauseIncompleteQueues
		return adapterSupport{}, rejection, nil
	}

	available, err := n.backend.Extensions(adapter)
	if err != nil {
		return adapterSupport{}, nil, backendError(adapter, "Extensions", err)
	}
	if missing := missingExtensions(requiredExtensions, available); len(missing) > 0 {
		rejection.Cause = CauseMissingExtension
		rejection.Missing = missing
		return adapterSupport{}, rejection, nil
	}

	formats, err := n.backend.SurfaceFormats(adapter, surface)
	if err != nil {
		return adapterSupport{}, nil, backendError(adapter, "SurfaceFormats", err)
	}
	modes, err := n.backend.SurfacePresentModes(adapter, surface)
	if err != nil {
		return adapterSupport{}, nil, backendError(adapter, "SurfacePresentModes", err)
	}
	if len(formats) == 0 || len(modes) == 0 {
		rejection.Cause = CauseEmptySurfaceSupport
		return adapterSupport{}, rejection, nil
	}

	return adapterSupport{roles: roles, formats: formats, modes: modes}, nil, nil
}

// missingExtensions returns the required names absent from available,
// sorted. Matching is exact and case sensitive.
func missingExtensions(required, available []string) []string {
	set := make(map[string]struct{}, len(required))
	for _, name := range required {
		set[name] = struct{}{}
	}
	for _, name := range available {
		delete(set, name)
	}
	missing := maps.Keys(set)
	slices.Sort(missing)
	return missing
}
