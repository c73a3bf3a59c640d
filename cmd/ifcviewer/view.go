package main

import (
	"time"

	"github.com/spf13/cobra"

	"ifc-viewer/core"
	"ifc-viewer/editor"
	"ifc-viewer/ifc"
	"ifc-viewer/opengl"
)

var viewCfg = editor.DefaultConfig()
var highlightHex string

var viewCmd = &cobra.Command{
	Use:   "view <model.glb|model.obj>...",
	Short: "Open models in the interactive viewer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		if highlightHex != "" {
			if viewCfg.Highlight, err = editor.ParseColor(highlightHex); err != nil {
				return err
			}
		}

		loader := ifc.NewLoader(logger)
		s, err := loadModels(loader, args)
		if err != nil {
			return err
		}

		window, err := core.NewWindow(viewCfg.Window)
		if err != nil {
			return err
		}
		defer window.Destroy()

		renderer, err := opengl.NewRenderer(logger)
		if err != nil {
			return err
		}
		defer renderer.Destroy()

		ed := editor.NewEditor(window, s, loader, viewCfg, logger)
		status := ""
		last := time.Now()
		for !window.ShouldClose() {
			window.PollEvents()
			now := time.Now()
			ed.Update(float32(now.Sub(last).Seconds()))
			last = now

			if ed.StatusText != status {
				status = ed.StatusText
				window.SetTitle(viewCfg.Window.Title + " - " + status)
				renderer.ReleaseUnused(s)
			}

			w, h := window.GetFramebufferSize()
			renderer.SetViewport(w, h)
			renderer.Render(s)
			window.SwapBuffers()
		}
		return nil
	},
}

func init() {
	f := viewCmd.Flags()
	f.IntVar(&viewCfg.Window.Width, "width", viewCfg.Window.Width, "window width")
	f.IntVar(&viewCfg.Window.Height, "height", viewCfg.Window.Height, "window height")
	f.BoolVar(&viewCfg.Window.VSync, "vsync", viewCfg.Window.VSync, "wait for vertical sync")
	f.BoolVar(&viewCfg.PickOnHover, "hover", viewCfg.PickOnHover, "select the element under the cursor without clicking")
	f.StringVar(&highlightHex, "highlight", "", "highlight color as #rrggbb or #rrggbbaa")
}
