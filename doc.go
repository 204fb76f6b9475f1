// Package backdrop is an animated 3D background for a portfolio site,
// rendered with [Ebitengine].
//
// The scene is two parallax layers of wireframe spheres on a grid, lines
// between neighbouring spheres, and a field of drifting particles. The
// camera drifts with the pointer and elements near it brighten. Nothing in
// the scene is interactive; it is meant to sit behind foreground content.
//
// # Quick start
//
// [Run] opens a window and drives the loop for you:
//
//	backdrop.Run(backdrop.DefaultConfig(), backdrop.RunConfig{
//		Title: "folio", Width: 1280, Height: 720, Theme: backdrop.ThemeDark,
//	})
//
// For an overlay that lets clicks through to the windows behind it, set
// [RunConfig.Overlay] and [RunConfig.Transparent].
//
// # Lifecycle
//
// A [Background] owns one mounted scene. It needs a [Scheduler] that calls
// back once per display refresh and, optionally, an [EventSource] for
// pointer and resize events. [Host] provides both on top of ebiten; the
// termview package provides both on a terminal.
//
//	bg := backdrop.NewBackground(cfg,
//		backdrop.WithScheduler(s),
//		backdrop.WithEvents(s),
//	)
//	if err := bg.Mount(backdrop.ThemeLight, vp); err != nil { ... }
//	defer bg.Unmount()
//
// Changing the theme with [Background.SetTheme] rebuilds the scene from
// scratch. [Background.Unmount] cancels the pending frame before it
// releases anything.
//
// # Simulation
//
// [Field] is the plain simulation state and can be stepped without any
// renderer: node transforms are closed-form functions of elapsed time, so
// [Field.Step] at the same times yields the same nodes. Only particles carry
// state between frames. [DisplayList] projects a field into depth-sorted
// draw commands for any renderer.
//
// Motion constants live in [Tuning]; the intro fade uses [gween].
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package backdrop
