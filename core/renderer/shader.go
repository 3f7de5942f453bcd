// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"sort"
	"strings"
	"unsafe"

	"github.com/gobuffalo/packd"
	vk "github.com/vulkan-go/vulkan"
)

const shaderSuffix = ".spv"

// ShaderBox is where compiled shaders are read from, usually a packr.Box.
type ShaderBox interface {
	Walk(packd.WalkFunc) error
}

// ShaderStage is the pipeline stage a shader runs in
type ShaderStage int

// Supported shader stages
const (
	VertexStage ShaderStage = iota
	FragmentStage
)

func (s ShaderStage) String() string {
	switch s {
	case VertexStage:
		return "vert"
	case FragmentStage:
		return "frag"
	}
	return fmt.Sprintf("ShaderStage(%d)", int(s))
}

func (s ShaderStage) flagBits() vk.ShaderStageFlagBits {
	if s == FragmentStage {
		return vk.ShaderStageFragmentBit
	}
	return vk.ShaderStageVertexBit
}

// ShaderSource is compiled SPIR-V code read from a box
type ShaderSource struct {
	Name  string
	Stage ShaderStage
	Code  []byte
}

// parseShaderName splits file names like triangle.vert.spv into
// the shader name and its stage. The file name must have exactly three
// parts: the name, the stage and the .spv extension of compiled code.
func parseShaderName(path string) (string, ShaderStage, bool) {
	filename := filepath.Base(path)
	if !strings.HasSuffix(filename, shaderSuffix) {
		return "", 0, false
	}
	nodes := strings.Split(strings.TrimSuffix(filename, shaderSuffix), ".")
	if len(nodes) != 2 || nodes[0] == "" {
		return "", 0, false
	}

	switch nodes[1] {
	case "vert":
		return nodes[0], VertexStage, true
	case "frag":
		return nodes[0], FragmentStage, true
	}
	return "", 0, false
}

// LoadShaderSources reads every compiled shader in the box. Files that are
// not compiled shaders are skipped. A pipeline needs both stages, so a box
// without a vertex or a fragment shader is an error.
func LoadShaderSources(box ShaderBox) ([]ShaderSource, error) {
	var sources []ShaderSource
	if err := box.Walk(func(path string, f packd.File) error {
		name, stage, ok := parseShaderName(path)
		if !ok {
			return nil
		}
		code, err := ioutil.ReadAll(f)
		if err != nil {
			return fmt.Errorf("shader %s: %w", path, err)
		}
		if len(code) == 0 || len(code)%4 != 0 {
			return fmt.Errorf("shader %s: code size %d is not a multiple of 4", path, len(code))
		}
		sources = append(sources, ShaderSource{Name: name, Stage: stage, Code: code})
		return nil
	}); err != nil {
		return nil, err
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Stage < sources[j].Stage
	})
	for _, stage := range []ShaderStage{VertexStage, FragmentStage} {
		if !hasStage(sources, stage) {
			return nil, fmt.Errorf("no %s shader found", stage)
		}
	}
	return sources, nil
}

func hasStage(sources []ShaderSource, stage ShaderStage) bool {
	for _, s := range sources {
		if s.Stage == stage {
			return true
		}
	}
	return false
}

// SliceUint32 reslices bytes into a uint32, that is used
// to submit vulkan shaders for processing
func SliceUint32(data []byte) []uint32 {
	if len(data) < 4 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}

// Shader is a created shader module
type Shader struct {
	name   string
	stage  ShaderStage
	module vk.ShaderModule
}

// NewVulkanShader creates a shader module from compiled code
func NewVulkanShader(device vk.Device, source ShaderSource) (*Shader, error) {
	smci := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(source.Code)),
		PCode:    SliceUint32(source.Code),
	}

	var module vk.ShaderModule
	if err := vk.Error(vk.CreateShaderModule(device, &smci, nil, &module)); err != nil {
		return nil, fmt.Errorf("vk.CreateShaderModule(%s.%s): %s", source.Name, source.Stage, err.Error())
	}
	return &Shader{
		name:   source.Name,
		stage:  source.Stage,
		module: module,
	}, nil
}

// Name returns the shader name without stage and extension
func (s *Shader) Name() string {
	return s.name
}

// Stage returns the stage the shader runs in
func (s *Shader) Stage() ShaderStage {
	return s.stage
}

func (s *Shader) stageCreateInfo() vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  s.stage.flagBits(),
		Module: s.module,
		PName:  "main\x00",
	}
}

// Destroy destroys the shader module
func (s *Shader) Destroy(device vk.Device) {
	vk.DestroyShaderModule(device, s.module, nil)
}
