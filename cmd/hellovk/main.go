// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

//go:generate glslangValidator -V ../../shaders/triangle.vert -o ../../shaders/triangle.vert.spv
//go:generate glslangValidator -V ../../shaders/triangle.frag -o ../../shaders/triangle.frag.spv

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gobuffalo/packr"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/hellovk/core"
	"github.com/devblok/hellovk/core/renderer"
	"github.com/devblok/hellovk/device"
)

func init() {
	runtime.LockOSThread()
}

var (
	configPath = flag.String("config", "", "YAML configuration file")
	envPath    = flag.String("env", "", "dotenv file with HELLOVK_* overrides")
	validation = flag.Bool("validation", false, "enable validation layers")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfiguration() (core.Configuration, error) {
	cfg, err := core.LoadConfiguration(*configPath)
	if err != nil {
		return cfg, err
	}
	if *envPath != "" {
		if err := core.LoadEnvFile(*envPath); err != nil {
			return cfg, err
		}
	}
	if cfg, err = core.ApplyEnvironment(cfg); err != nil {
		return cfg, err
	}
	if *validation {
		cfg.Instance.Validation = true
	}
	return cfg, nil
}

func shaderBox(cfg core.RendererConfiguration) (packr.Box, error) {
	if cfg.ShaderDirectory == "" {
		return packr.NewBox("../../shaders"), nil
	}
	dir, err := filepath.Abs(cfg.ShaderDirectory)
	if err != nil {
		return packr.Box{}, err
	}
	return packr.NewBox(dir), nil
}

func newWindow(cfg core.WindowConfiguration) (*sdl.Window, error) {
	return sdl.CreateWindow(cfg.Title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Width),
		int32(cfg.Height),
		sdl.WINDOW_VULKAN)
}

// drawableExtent is the window size in pixels, which differs from
// the configured size on high density displays
func drawableExtent(window *sdl.Window, cfg core.Configuration) core.Extent2D {
	w, h := window.VulkanGetDrawableSize()
	if w <= 0 || h <= 0 {
		return cfg.RequestedExtent()
	}
	return core.Extent2D{Width: uint32(w), Height: uint32(h)}
}

func run() error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("sdl.Init(): %w", err)
	}
	defer sdl.Quit()

	if err := sdl.VulkanLoadLibrary(""); err != nil {
		return fmt.Errorf("sdl.VulkanLoadLibrary(): %w", err)
	}
	defer sdl.VulkanUnloadLibrary()

	window, err := newWindow(cfg.Window)
	if err != nil {
		return fmt.Errorf("sdl.CreateWindow(): %w", err)
	}
	defer window.Destroy()

	cfg.Instance.Extensions = append(cfg.Instance.Extensions, window.VulkanGetInstanceExtensions()...)
	instance, err := device.NewVulkanInstance(device.DefaultApplicationInfo, sdl.VulkanGetVkGetInstanceProcAddr(), cfg.Instance)
	if err != nil {
		return err
	}
	defer instance.Destroy()

	surface, err := window.VulkanCreateSurface(instance.Instance())
	if err != nil {
		return fmt.Errorf("sdl.VulkanCreateSurface(): %w", err)
	}
	instance.SetSurface(surface)

	negotiator := core.NewNegotiator(instance.Backend(), log.StandardLogger())
	plan, err := negotiator.Negotiate(instance.Surface(), cfg.Renderer.DeviceExtensions, drawableExtent(window, cfg))
	if err != nil {
		return err
	}

	logicalDevice, err := device.NewLogicalDevice(plan, cfg.Renderer.DeviceExtensions, instance.Configuration().Layers)
	if err != nil {
		return err
	}
	defer logicalDevice.Destroy()
	log.Debug(logicalDevice)

	box, err := shaderBox(cfg.Renderer)
	if err != nil {
		return err
	}
	vkRenderer, err := renderer.NewVulkanRenderer(logicalDevice.Device(), instance.Surface(), plan, box)
	if err != nil {
		return err
	}
	defer vkRenderer.Destroy()

	eventLoop(core.NewTime(cfg.Time))
	return nil
}

// eventLoop polls window events until the window is closed or Escape is pressed
func eventLoop(time *core.Time) {
	defer time.Stop()

	for range time.EventTicker().C {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch et := event.(type) {
			case *sdl.KeyboardEvent:
				if et.Keysym.Sym == sdl.K_ESCAPE {
					log.Info("event loop exited")
					return
				}
			case *sdl.QuitEvent:
				log.Info("event loop exited")
				return
			}
		}
	}
}
