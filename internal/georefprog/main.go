// Public domain.

package georefprog

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"

	"github.com/soniakeys/exit"

	"github.com/solmap/georef/compose"
	"github.com/solmap/georef/geo"
	"github.com/solmap/georef/register"
	"github.com/solmap/georef/scene"
)

const versionString = "georef version 0.2 Go source."
const copyrightString = "Public domain."

func Main() {
	defer exit.Handler()
	cl := parseCommandLine()
	run(cl, geo.NewWGS84Converter())
}

type commandLine struct {
	sceneDir string
	meshFile string
	renderer string
	jsonOut  bool
}

func parseCommandLine() *commandLine {
	var cl commandLine
	dh := flag.Bool("h", false, "")
	dv := flag.Bool("v", false, "")
	flag.StringVar(&cl.renderer, "renderer", "solmap-render", "")
	flag.BoolVar(&cl.jsonOut, "json", false, "")
	flag.Usage = func() {
		os.Stderr.WriteString(`
Usage: georef [options] <scene-dir>              register scene
       georef [options] <scene-dir> <mesh-file>  register, run renderer
       georef -h                                 display help
       georef -v                                 display version

Options:
       -renderer <path>
       -json
`)
	}
	flag.Parse()
	switch {
	case *dh:
		printHelp()
		os.Exit(0)
	case *dv:
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	case flag.NArg() < 1 || flag.NArg() > 2:
		flag.Usage()
		os.Exit(1)
	}
	cl.sceneDir = flag.Arg(0)
	if flag.NArg() == 2 {
		cl.meshFile = flag.Arg(1)
	}
	return &cl
}

func run(cl *commandLine, conv geo.Converter) {
	views, err := scene.Load(cl.sceneDir)
	if err != nil {
		exit.Log(err)
	}
	if len(views) == 2 {
		log.Print("only 2 usable views: " +
			"rotation about their connecting axis is unconstrained")
	}

	pts := make([]geo.Point, len(views))
	cs := make([]register.Correspondence, len(views))
	for i, v := range views {
		pts[i] = v.GPS
		cs[i].Model = v.Camera
	}
	for i, g := range conv.Euclidean(pts) {
		cs[i].Geo = g
	}
	lat, lon := geo.Midpoint(pts)

	register.Normalize(cs)
	fit, err := register.Fit(cs, register.Seed(cs))
	if err != nil {
		exit.Log(err)
	}
	if !fit.Converged {
		log.Print("solver did not meet its convergence criteria; " +
			"reporting best parameters reached")
	}
	pl := compose.Compose(fit, lat, lon)

	if cl.jsonOut {
		b, err := json.MarshalIndent(pl, "", "  ")
		if err != nil {
			exit.Log(err)
		}
		fmt.Println(string(b))
	} else {
		printPlacement(pl)
	}

	if cl.meshFile != "" {
		if err := runRenderer(cl.renderer, pl, cl.meshFile); err != nil {
			exit.Log(err)
		}
	}
}

func printPlacement(pl compose.Placement) {
	fmt.Printf("Reference location: %.6f %.6f\n", pl.RefLat, pl.RefLon)
	fmt.Printf("RMS registration error: %.3f m\n", pl.ResidualRMS)
	fmt.Printf("Scale: %g\n", pl.Scale)
	fmt.Printf("Translation: %g %g %g\n",
		pl.Translation[0], pl.Translation[1], pl.Translation[2])
	fmt.Printf("Orientation (w x y z): %g %g %g %g\n",
		pl.Quaternion[0], pl.Quaternion[1], pl.Quaternion[2], pl.Quaternion[3])
}

// runRenderer hands the placement to the downstream renderer as a
// subprocess and reports its status back, rather than replacing the
// current process.
func runRenderer(bin string, pl compose.Placement, mesh string) error {
	args := []string{
		g(pl.Scale),
		g(pl.Quaternion[0]), g(pl.Quaternion[1]),
		g(pl.Quaternion[2]), g(pl.Quaternion[3]),
		g(pl.RefLat), g(pl.RefLon),
		mesh,
	}
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("renderer %s: %w", bin, err)
	}
	return nil
}

func g(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func printHelp() {
	fmt.Println(`
Georef solves the similarity transform placing a structure-from-motion
reconstruction at its true geographic position and orientation, using
the GPS tags of the source photographs as ground truth.

The scene directory must contain a views/ subdirectory with one
directory per view, each holding a meta.ini camera section and the
original photograph with GPS EXIF tags.  At least two complete views
are required.  With a mesh file argument the solved placement is passed
to the renderer named by -renderer.

For full documentation:
   go doc github.com/solmap/georef`)
}
