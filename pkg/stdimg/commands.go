// Registry of filter commands.
//
// Commands is the single list the front ends read for menus, help text and
// argument prompts. ApplyCommand dispatches by name; a backend registered with
// Register takes precedence over the built-in Run.

package stdimg

import (
	"fmt"
	"image"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/Fepozopo/tpaint/pkg/tool"
)

// ArgSpec describes a single argument for a command. Fields are textual
// and intended for help/validation UI rather than machine-enforced typing.
type ArgSpec struct {
	Name        string // human name
	Type        string // "int", "float", "string", "path"
	Required    bool
	Default     string // textual default (for help only)
	Description string
}

// CommandFunc transforms src. It must not modify src.
type CommandFunc func(src *image.NRGBA, args []string) (*image.NRGBA, error)

// CommandSpec defines a single command and its expected arguments.
type CommandSpec struct {
	Name        string
	Args        []ArgSpec
	Usage       string // short usage string
	Description string // brief description
	Run         CommandFunc
}

var roiArgs = []ArgSpec{
	{"x", "int", true, "", "region left"},
	{"y", "int", true, "", "region top"},
	{"w", "int", true, "", "region width"},
	{"h", "int", true, "", "region height"},
}

// Commands is the authoritative list of filter commands.
var Commands = []CommandSpec{
	{
		Name:        "blur",
		Args:        roiArgs,
		Usage:       "blur <x> <y> <w> <h>",
		Description: "Box blur (15px) inside a region.",
		Run:         runBlur,
	},
	{
		Name:        "invert",
		Usage:       "invert",
		Description: "Invert colours.",
		Run:         func(src *image.NRGBA, _ []string) (*image.NRGBA, error) { return Invert(src) },
	},
	{
		Name:        "grayscale",
		Usage:       "grayscale",
		Description: "Convert to grey, keeping three channels.",
		Run:         func(src *image.NRGBA, _ []string) (*image.NRGBA, error) { return Grayscale(src) },
	},
	{
		Name:        "perspective",
		Usage:       "perspective",
		Description: "Find the largest quadrilateral outline and warp it flat.",
		Run:         func(src *image.NRGBA, _ []string) (*image.NRGBA, error) { return PerspectiveCorrect(src) },
	},
	{
		Name:        "autoCorrect",
		Usage:       "autoCorrect",
		Description: "Per-channel histogram equalization followed by CLAHE.",
		Run:         func(src *image.NRGBA, _ []string) (*image.NRGBA, error) { return AutoCorrect(src) },
	},
	{
		Name:        "equalize",
		Usage:       "equalize",
		Description: "Per-channel histogram equalization.",
		Run: func(src *image.NRGBA, _ []string) (*image.NRGBA, error) {
			if src == nil {
				return nil, unavailable("no canvas")
			}
			return Equalize(src), nil
		},
	},
	{
		Name:        "backProject",
		Args:        roiArgs,
		Usage:       "backProject <x> <y> <w> <h>",
		Description: "Keep pixels whose hue/saturation match the region.",
		Run:         runBackProject,
	},
	{
		Name: "composite",
		Args: append([]ArgSpec{{"path", "path", true, "", "image to blend in"}}, roiArgs...),
		Usage:       "composite <path> <x> <y> <w> <h>",
		Description: "Seamlessly clone an image, centred on the region.",
		Run:         runComposite,
	},
	{
		Name: "adaptiveThreshold",
		Args: []ArgSpec{
			{"block", "int", false, "11", "odd neighbourhood size"},
			{"c", "float", false, "10", "offset subtracted from the local mean"},
		},
		Usage:       "adaptiveThreshold [block] [c]",
		Description: "Mean adaptive threshold to black and white.",
		Run:         runAdaptiveThreshold,
	},
	{
		Name:        "rotate",
		Args:        []ArgSpec{{"degrees", "float", true, "", "counter-clockwise degrees"}},
		Usage:       "rotate <degrees>",
		Description: "Rotate about the centre, same size, white corners.",
		Run:         runRotate,
	},
	{
		Name: "zoom",
		Args: []ArgSpec{
			{"x", "int", true, "", "centre x"},
			{"y", "int", true, "", "centre y"},
			{"factor", "float", true, "", "scale factor"},
		},
		Usage:       "zoom <x> <y> <factor>",
		Description: "Zoom about a point, cropped to the canvas.",
		Run:         runZoom,
	},
	{
		Name: "lens",
		Args: []ArgSpec{
			{"x", "int", true, "", "centre x"},
			{"y", "int", true, "", "centre y"},
			{"kind", "string", false, "convex", "convex or concave"},
		},
		Usage:       "lens <x> <y> [convex|concave]",
		Description: "Radial lens distortion about a point.",
		Run:         runLens,
	},
	{
		Name:        "sepia",
		Args:        []ArgSpec{{"percent", "float", false, "100", "strength, 0 to 100"}},
		Usage:       "sepia [percent]",
		Description: "Sepia tone blended with the original.",
		Run:         runSepia,
	},
	{
		Name:        "posterize",
		Args:        []ArgSpec{{"levels", "int", false, "4", "values per channel"}},
		Usage:       "posterize [levels]",
		Description: "Reduce each channel to a few levels.",
		Run:         runPosterize,
	},
	{
		Name:        "median",
		Args:        []ArgSpec{{"radius", "float", false, "1", "neighbourhood radius"}},
		Usage:       "median [radius]",
		Description: "Median filter, removes speckles.",
		Run:         runMedian,
	},
	{
		Name:        "sharpen",
		Args:        []ArgSpec{{"sigma", "float", false, "1", "Gaussian sigma of the mask"}},
		Usage:       "sharpen [sigma]",
		Description: "Unsharp mask.",
		Run:         runSharpen,
	},
	{
		Name:        "gamma",
		Args:        []ArgSpec{{"gamma", "float", true, "", "above 1 brightens"}},
		Usage:       "gamma <value>",
		Description: "Gamma correction.",
		Run:         runGamma,
	},
}

var (
	overridesMu sync.RWMutex
	overrides   = map[string]overrideEntry{}
)

type overrideEntry struct {
	backend string
	fn      CommandFunc
}

// Register replaces the implementation of an existing command. backend names
// the implementation for display.
func Register(name, backend string, fn CommandFunc) error {
	if _, ok := FindCommand(name); !ok {
		return fmt.Errorf("register %s: unknown command", name)
	}
	overridesMu.Lock()
	defer overridesMu.Unlock()
	overrides[name] = overrideEntry{backend: backend, fn: fn}
	return nil
}

// Unregister restores the built-in implementation.
func Unregister(name string) {
	overridesMu.Lock()
	defer overridesMu.Unlock()
	delete(overrides, name)
}

// Backend reports which implementation serves name.
func Backend(name string) string {
	overridesMu.RLock()
	defer overridesMu.RUnlock()
	if o, ok := overrides[name]; ok {
		return o.backend
	}
	return "go"
}

func lookupOverride(name string) (CommandFunc, bool) {
	overridesMu.RLock()
	defer overridesMu.RUnlock()
	o, ok := overrides[name]
	return o.fn, ok
}

// FindCommand looks up a command case-insensitively.
func FindCommand(name string) (CommandSpec, bool) {
	for _, c := range Commands {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return CommandSpec{}, false
}

// CommandNames returns all command names sorted.
func CommandNames() []string {
	names := make([]string, 0, len(Commands))
	for _, c := range Commands {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// ApplyCommand runs a named command against a copy of img.
func ApplyCommand(img image.Image, name string, args []string) (*image.NRGBA, error) {
	if img == nil {
		return nil, unavailable("no image loaded")
	}
	spec, ok := FindCommand(name)
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", name)
	}
	if err := checkArgs(spec, args); err != nil {
		return nil, err
	}
	src, ok := img.(*image.NRGBA)
	if !ok {
		src = ToNRGBA(img)
	}
	fn := spec.Run
	if o, ok := lookupOverride(spec.Name); ok {
		fn = o
	}
	out, err := fn(src, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Name, err)
	}
	if out == nil {
		return nil, unavailable("%s produced no image", spec.Name)
	}
	return out, nil
}

func checkArgs(spec CommandSpec, args []string) error {
	required := 0
	for _, a := range spec.Args {
		if a.Required {
			required++
		}
	}
	if len(args) < required {
		return unavailable("%s requires %d args: %s", spec.Name, required, spec.Usage)
	}
	if len(args) > len(spec.Args) {
		return unavailable("%s takes at most %d args: %s", spec.Name, len(spec.Args), spec.Usage)
	}
	return nil
}

func argInt(args []string, i int, name string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(args[i]))
	if err != nil {
		return 0, unavailable("invalid %s %q", name, args[i])
	}
	return v, nil
}

func argFloat(args []string, i int, name string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(args[i]), 64)
	if err != nil {
		return 0, unavailable("invalid %s %q", name, args[i])
	}
	return v, nil
}

// argROI reads x y w h starting at args[i].
func argROI(args []string, i int) (x, y, w, h int, err error) {
	names := [4]string{"x", "y", "w", "h"}
	var v [4]int
	for k := 0; k < 4; k++ {
		if v[k], err = argInt(args, i+k, names[k]); err != nil {
			return
		}
	}
	return v[0], v[1], v[2], v[3], nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func runBlur(src *image.NRGBA, args []string) (*image.NRGBA, error) {
	x, y, w, h, err := argROI(args, 0)
	if err != nil {
		return nil, err
	}
	return BlurRegion(src, x, y, w, h)
}

func runBackProject(src *image.NRGBA, args []string) (*image.NRGBA, error) {
	x, y, w, h, err := argROI(args, 0)
	if err != nil {
		return nil, err
	}
	return BackProject(src, x, y, w, h)
}

func runComposite(src *image.NRGBA, args []string) (*image.NRGBA, error) {
	x, y, w, h, err := argROI(args, 1)
	if err != nil {
		return nil, err
	}
	fg, err := loadImage(args[0])
	if err != nil {
		return nil, wrapUnavailable("composite", err)
	}
	r, err := roiRect(src.Bounds(), x, y, w, h)
	if err != nil {
		return nil, err
	}
	c := image.Pt(x+w/2, y+h/2)
	if !c.In(r) {
		c = image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
	}
	return SeamlessClone(src, ToNRGBA(fg), c)
}

func runAdaptiveThreshold(src *image.NRGBA, args []string) (*image.NRGBA, error) {
	block, offset := DefaultThresholdBlock, DefaultThresholdOffset
	var err error
	if len(args) > 0 {
		if block, err = argInt(args, 0, "block"); err != nil {
			return nil, err
		}
	}
	if len(args) > 1 {
		if offset, err = argFloat(args, 1, "c"); err != nil {
			return nil, err
		}
	}
	return AdaptiveThreshold(src, block, offset)
}

func runRotate(src *image.NRGBA, args []string) (*image.NRGBA, error) {
	deg, err := argFloat(args, 0, "degrees")
	if err != nil {
		return nil, err
	}
	return Rotate(src, deg)
}

func runZoom(src *image.NRGBA, args []string) (*image.NRGBA, error) {
	x, err := argInt(args, 0, "x")
	if err != nil {
		return nil, err
	}
	y, err := argInt(args, 1, "y")
	if err != nil {
		return nil, err
	}
	f, err := argFloat(args, 2, "factor")
	if err != nil {
		return nil, err
	}
	return ZoomAt(src, image.Pt(x, y), f)
}

func runLens(src *image.NRGBA, args []string) (*image.NRGBA, error) {
	x, err := argInt(args, 0, "x")
	if err != nil {
		return nil, err
	}
	y, err := argInt(args, 1, "y")
	if err != nil {
		return nil, err
	}
	kind := tool.Convex
	if len(args) > 2 {
		switch strings.ToLower(args[2]) {
		case "convex":
		case "concave":
			kind = tool.Concave
		default:
			return nil, unavailable("invalid lens kind %q", args[2])
		}
	}
	return LensDistort(src, image.Pt(x, y), kind)
}
