package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/df07/go-transient-raytracer/pkg/core"
	"github.com/df07/go-transient-raytracer/pkg/film"
	"github.com/df07/go-transient-raytracer/pkg/integrator"
	"github.com/df07/go-transient-raytracer/pkg/log"
	"github.com/df07/go-transient-raytracer/pkg/renderer"
	"github.com/df07/go-transient-raytracer/pkg/scene"
	"github.com/df07/go-transient-raytracer/pkg/sensor"
)

var logger = log.New("main")

func main() {
	app := cli.NewApp()
	app.Name = "transient-render"
	app.Usage = "render time resolved light transport, including hidden-scene captures"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Before = func(c *cli.Context) error {
		if c.Bool("vv") {
			log.SetLevel(log.Debug)
		} else if c.Bool("v") {
			log.SetLevel(log.Info)
		}
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:        "render",
			Usage:       "render a scene into a steady image and transient frames",
			Description: `Render the selected scene, write the steady state image as PNG and a WebP frame per temporal bin group.`,
			Flags: append(sceneFlags(),
				cli.StringFlag{
					Name:  "out, o",
					Value: "out",
					Usage: "output directory",
				},
				cli.IntFlag{
					Name:  "frame-step",
					Value: 8,
					Usage: "write one transient frame every N bins",
				},
				cli.IntFlag{
					Name:  "upscale",
					Value: 1,
					Usage: "upscale factor for the written images",
				},
				cli.Float64Flag{
					Name:  "exposure",
					Value: 1.0,
					Usage: "linear exposure applied before tone mapping",
				},
			),
			Action: renderAction,
		},
		{
			Name:        "grad",
			Usage:       "backpropagate a uniform film adjoint into the scene parameters",
			Description: `Render the selected scene, then run the backward pass with a uniform adjoint and print the accumulated parameter gradients.`,
			Flags:       sceneFlags(),
			Action:      gradAction,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func sceneFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "scene",
			Value: "nlos",
			Usage: "scene to render: nlos or cornell",
		},
		cli.IntFlag{
			Name:  "width",
			Value: 64,
			Usage: "film width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 64,
			Usage: "film height",
		},
		cli.IntFlag{
			Name:  "spp",
			Value: 64,
			Usage: "samples per pixel",
		},
		cli.IntFlag{
			Name:  "bins",
			Value: 256,
			Usage: "temporal bins",
		},
		cli.Float64Flag{
			Name:  "bin-width",
			Value: 0.03,
			Usage: "optical path length per bin",
		},
		cli.Float64Flag{
			Name:  "start-opl",
			Value: 0,
			Usage: "optical path length at the first bin",
		},
		cli.IntFlag{
			Name:  "max-depth",
			Value: 6,
			Usage: "maximum path depth",
		},
		cli.Int64Flag{
			Name:  "seed",
			Value: 0,
			Usage: "render seed",
		},
		cli.BoolFlag{
			Name:  "account-bounces",
			Usage: "count the calibrated sensor and laser segments toward path length",
		},
		cli.BoolTFlag{
			Name:  "laser-sampling",
			Usage: "connect vertices to the laser's illuminated spot (nlos scene)",
		},
		cli.BoolTFlag{
			Name:  "hg-sampling",
			Usage: "sample scattering directions toward the hidden geometry (nlos scene)",
		},
		cli.BoolFlag{
			Name:  "hg-roulette",
			Usage: "mix hidden geometry and BSDF sampling with a coin flip",
		},
	}
}

// setup builds the scene, sensor, film and renderer from CLI flags
func setup(c *cli.Context, differentiable bool) (*renderer.TransientRenderer, *scene.Scene, *film.TransientFilm, error) {
	width, height := c.Int("width"), c.Int("height")

	filmConfig := film.Config{
		Width:        width,
		Height:       height,
		TemporalBins: c.Int("bins"),
		BinWidth:     c.Float64("bin-width"),
		StartOffset:  c.Float64("start-opl"),
	}
	f, err := film.NewTransientFilm(filmConfig)
	if err != nil {
		return nil, nil, nil, err
	}

	integratorConfig := integrator.DefaultConfig()
	integratorConfig.MaxDepth = c.Int("max-depth")

	var sc *scene.Scene
	var sens sensor.Sensor
	switch c.String("scene") {
	case "nlos":
		nlosScene, meter, err := scene.NewNLOSBoxScene(scene.NLOSBoxOptions{
			Width:                      width,
			Height:                     height,
			AccountFirstAndLastBounces: c.Bool("account-bounces"),
			Differentiable:             differentiable,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		sc, sens = nlosScene, meter
		integratorConfig.LaserSampling = c.BoolT("laser-sampling")
		integratorConfig.HiddenGeometrySampling = c.BoolT("hg-sampling")
		integratorConfig.HGSamplingDoRoulette = c.Bool("hg-roulette")
	case "cornell":
		cornellScene, camera := scene.NewCornellScene(scene.CornellOptions{
			Width:          width,
			Height:         height,
			Differentiable: differentiable,
		})
		sc, sens = cornellScene, camera
	default:
		return nil, nil, nil, fmt.Errorf("unknown scene %q, expected nlos or cornell", c.String("scene"))
	}

	rendererConfig := renderer.DefaultConfig()
	rendererConfig.SamplesPerPixel = c.Int("spp")
	rendererConfig.Seed = c.Int64("seed")

	r, err := renderer.NewTransientRenderer(rendererConfig, integratorConfig, sc, sens, f)
	if err != nil {
		return nil, nil, nil, err
	}
	return r, sc, f, nil
}

func renderAction(c *cli.Context) error {
	r, _, _, err := setup(c, false)
	if err != nil {
		return err
	}

	result, err := r.Render()
	if err != nil {
		return err
	}

	outDir := c.String("out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	writer := outputWriter{
		dir:       outDir,
		upscale:   c.Int("upscale"),
		exposure:  c.Float64("exposure"),
		frameStep: c.Int("frame-step"),
	}
	if err := writer.writeSteady(result); err != nil {
		return err
	}
	n, err := writer.writeTransientFrames(result)
	if err != nil {
		return err
	}

	logger.Noticef("wrote steady image and %d transient frames to %s", n, outDir)
	return nil
}

func gradAction(c *cli.Context) error {
	r, sc, f, err := setup(c, true)
	if err != nil {
		return err
	}
	if len(sc.Params) == 0 {
		return fmt.Errorf("scene %q has no differentiable parameters", c.String("scene"))
	}

	// Uniform adjoint: the gradient of the sum of all steady pixel values
	cfg := f.Config()
	adjoint := make([]core.Vec3, cfg.Width*cfg.Height)
	for i := range adjoint {
		adjoint[i] = core.NewVec3(1, 1, 1)
	}

	if err := r.RenderBackward(adjoint, nil); err != nil {
		return err
	}

	for _, p := range sc.Params {
		fmt.Printf("%s: value=%g grad=%g\n", p.Name(), p.Value(), p.Grad())
	}
	return nil
}
