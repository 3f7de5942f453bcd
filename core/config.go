// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"io/ioutil"
	"strconv"

	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override configuration
const (
	EnvWidth      = "HELLOVK_WIDTH"
	EnvHeight     = "HELLOVK_HEIGHT"
	EnvValidation = "HELLOVK_VALIDATION"
	EnvLogLevel   = "HELLOVK_LOG_LEVEL"
	EnvPollDelay  = "HELLOVK_POLL_DELAY"
)

// SwapchainExtension is the device extension every presenting adapter needs.
const SwapchainExtension = "VK_KHR_swapchain"

// ValidationLayer is enabled when validation is requested.
const ValidationLayer = "VK_LAYER_KHRONOS_validation"

// Configuration defines the whole program configuration.
// It is passed explicitly; nothing reads it from globals.
type Configuration struct {
	LogLevel string                `yaml:"logLevel"`
	Time     TimeConfiguration     `yaml:"time"`
	Window   WindowConfiguration   `yaml:"window"`
	Instance InstanceConfiguration `yaml:"instance"`
	Renderer RendererConfiguration `yaml:"renderer"`
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// EventPollDelay is the delay between window event polls, in milliseconds
	EventPollDelay int `yaml:"eventPollDelay"`
}

// WindowConfiguration describes the window that is opened
type WindowConfiguration struct {
	Title  string `yaml:"title"`
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
}

// InstanceConfiguration is used to create the API instance
type InstanceConfiguration struct {
	// Validation enables validation layers and debug reporting
	Validation bool     `yaml:"validation"`
	Layers     []string `yaml:"layers"`
	Extensions []string `yaml:"extensions"`
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	DeviceExtensions []string `yaml:"deviceExtensions"`

	// ShaderDirectory overrides the compiled-in shader box when set
	ShaderDirectory string `yaml:"shaderDirectory"`
}

// RequestedExtent is the window size as a swapchain extent.
func (c Configuration) RequestedExtent() Extent2D {
	return Extent2D{Width: c.Window.Width, Height: c.Window.Height}
}

// DefaultConfiguration returns the configuration used when nothing overrides it.
func DefaultConfiguration() Configuration {
	return Configuration{
		LogLevel: "info",
		Time: TimeConfiguration{
			EventPollDelay: 16,
		},
		Window: WindowConfiguration{
			Title:  "Vulkan",
			Width:  800,
			Height: 600,
		},
		Renderer: RendererConfiguration{
			DeviceExtensions: []string{SwapchainExtension},
		},
	}
}

// LoadConfiguration reads a YAML file over the defaults.
// Keys missing from the file keep their default values.
func LoadConfiguration(path string) (Configuration, error) {
	cfg := DefaultConfiguration()
	if path == "" {
		return cfg, nil
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// LoadEnvFile makes the variables of a dotenv file visible to ApplyEnvironment.
func LoadEnvFile(path string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("failed to read env file: %w", err)
	}
	for k, v := range vars {
		envy.Set(k, v)
	}
	return nil
}

// ApplyEnvironment overrides configuration values from the environment.
func ApplyEnvironment(cfg Configuration) (Configuration, error) {
	if v := envy.Get(EnvWidth, ""); v != "" {
		width, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvWidth, err)
		}
		cfg.Window.Width = uint32(width)
	}
	if v := envy.Get(EnvHeight, ""); v != "" {
		height, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvHeight, err)
		}
		cfg.Window.Height = uint32(height)
	}
	if v := envy.Get(EnvValidation, ""); v != "" {
		validation, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvValidation, err)
		}
		cfg.Instance.Validation = validation
	}
	if v := envy.Get(EnvPollDelay, ""); v != "" {
		delay, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvPollDelay, err)
		}
		cfg.Time.EventPollDelay = delay
	}
	cfg.LogLevel = envy.Get(EnvLogLevel, cfg.LogLevel)
	return cfg, nil
}
