package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"

	"ifc-viewer/editor"
	"ifc-viewer/ifc"
	"ifc-viewer/scene"
	"ifc-viewer/selection"
)

var (
	inspectSelect []string
	inspectRays   []string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <model.glb|model.obj>...",
	Short: "Print model statistics and run selections without a window",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		loader := ifc.NewLoader(logger)
		s, err := loadModels(loader, args)
		if err != nil {
			return err
		}
		return runInspect(cmd.OutOrStdout(), loader, s, inspectSelect, inspectRays, logger)
	},
}

func init() {
	f := inspectCmd.Flags()
	f.StringSliceVar(&inspectSelect, "select", nil, "select an element by id, as model:id (repeatable)")
	f.StringSliceVar(&inspectRays, "ray", nil, "pick along a ray, as ox,oy,oz:dx,dy,dz (repeatable)")
}

type sceneContext struct{ s *scene.Scene }

func (c sceneContext) Scene() *scene.Scene { return c.s }

// runInspect prints one line per model, then applies the --select and --ray
// picks in order and reports the highlight after each.
func runInspect(w io.Writer, loader *ifc.Loader, s *scene.Scene, selects, rays []string, logger *slog.Logger) error {
	for _, m := range loader.Models() {
		fmt.Fprintf(w, "model %d %s: %d elements, %d faces\n", m.ID, m.Name, len(m.Elements), m.Mesh().FaceCount())
	}

	material := scene.HighlightMaterial(editor.DefaultConfig().Highlight)
	ctrl := selection.New(sceneContext{s}, loader, material, logger)
	report := func(el selection.ElementID) {
		faces := 0
		if node := findSubset(s, loader); node != nil {
			faces = node.Mesh.FaceCount()
		}
		fmt.Fprintf(w, "%s, highlight %d faces\n", editor.Describe(loader, el), faces)
	}

	for _, sel := range selects {
		modelID, id, err := parseSelect(sel)
		if err != nil {
			return err
		}
		if _, ok := loader.Model(modelID); !ok {
			return fmt.Errorf("select %q: %w", sel, ifc.ErrUnknownModel)
		}
		report(ctrl.PickByID(modelID, id))
	}
	for _, r := range rays {
		ray, err := parseRay(r)
		if err != nil {
			return err
		}
		el, ok := ctrl.Pick(editor.RaycastScene(ray, s))
		if !ok {
			fmt.Fprintf(w, "ray %s: nothing new selected\n", r)
			continue
		}
		report(el)
	}
	return nil
}

// findSubset returns the one scene node that is not a model node.
func findSubset(s *scene.Scene, loader *ifc.Loader) *scene.Node {
	models := make(map[*scene.Node]bool)
	for _, m := range loader.Models() {
		models[m.Node] = true
	}
	for _, n := range s.Root.Children {
		if !models[n] && n.Mesh != nil {
			return n
		}
	}
	return nil
}

func parseSelect(s string) (int, int, error) {
	modelStr, idStr, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("select %q: want model:id", s)
	}
	modelID, err := strconv.Atoi(modelStr)
	if err != nil {
		return 0, 0, fmt.Errorf("select %q: %w", s, err)
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, 0, fmt.Errorf("select %q: %w", s, err)
	}
	return modelID, id, nil
}

func parseRay(s string) (editor.Ray, error) {
	originStr, dirStr, ok := strings.Cut(s, ":")
	if !ok {
		return editor.Ray{}, fmt.Errorf("ray %q: want ox,oy,oz:dx,dy,dz", s)
	}
	origin, err := parseVec3(originStr)
	if err != nil {
		return editor.Ray{}, fmt.Errorf("ray %q origin: %w", s, err)
	}
	dir, err := parseVec3(dirStr)
	if err != nil {
		return editor.Ray{}, fmt.Errorf("ray %q direction: %w", s, err)
	}
	if dir.Len() == 0 {
		return editor.Ray{}, fmt.Errorf("ray %q: zero direction", s)
	}
	return editor.Ray{Origin: origin, Direction: dir.Normalize()}, nil
}

func parseVec3(s string) (mgl32.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("want 3 components, got %d", len(parts))
	}
	var v mgl32.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return mgl32.Vec3{}, err
		}
		v[i] = float32(f)
	}
	return v, nil
}
