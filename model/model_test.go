// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package model_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/hellovk/model"
)

func TestVertexLayout(t *testing.T) {
	c := qt.New(t)

	bindings := model.VertexBindingDescriptions()
	c.Assert(bindings, qt.HasLen, 1)
	c.Assert(bindings[0].Stride, qt.Equals, uint32(7*4))

	attributes := model.VertexAttributeDescriptions()
	c.Assert(attributes, qt.HasLen, 2)
	c.Assert(attributes[0].Offset, qt.Equals, uint32(0))
	c.Assert(attributes[0].Format, qt.Equals, vk.FormatR32g32b32Sfloat)
	c.Assert(attributes[1].Location, qt.Equals, uint32(1))
	c.Assert(attributes[1].Offset, qt.Equals, uint32(3*4))

	state := model.VertexInputState()
	c.Assert(state.VertexBindingDescriptionCount, qt.Equals, uint32(1))
	c.Assert(state.VertexAttributeDescriptionCount, qt.Equals, uint32(2))
}
