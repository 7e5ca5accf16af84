// Public domain.

// Package scene loads camera/GPS correspondences from an mve-style scene
// directory.
//
// A scene directory contains a "views" subdirectory with one
// subdirectory per view.  Each view carries a meta.ini file whose
// [camera] section gives the world-to-camera rotation matrix and
// translation vector, and the source photograph original.jpg whose EXIF
// GPS tags give the geodetic position.  Views with incomplete metadata
// are skipped with a warning; the scene is usable while at least two
// complete views remain.
package scene

import (
	"errors"
	"fmt"
	"log"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	"github.com/soniakeys/coord"
	"github.com/soniakeys/unit"
	"gopkg.in/ini.v1"

	"github.com/solmap/georef/geo"
)

// View is one photograph's camera position in model space together with
// its geodetic position from the photograph's GPS tags.
type View struct {
	Name   string
	Camera coord.Cart // camera center in reconstruction units
	GPS    geo.Point
}

// ErrInsufficientViews is returned by Load when fewer than two views
// with complete metadata remain after filtering.
var ErrInsufficientViews = errors.New("scene: fewer than 2 views with complete metadata")

const (
	metaName  = "meta.ini"
	photoName = "original.jpg"
)

// Load reads all views of the scene directory.  Views are returned in
// sorted name order so the anchor view of a later normalization is
// stable from run to run.  A view that cannot be fully read is skipped
// with a logged warning.
func Load(dir string) ([]View, error) {
	viewsDir := filepath.Join(dir, "views")
	entries, err := os.ReadDir(viewsDir)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	var views []View
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		v, err := loadView(filepath.Join(viewsDir, e.Name()))
		if err != nil {
			log.Printf("skipping view %s: %v", e.Name(), err)
			continue
		}
		v.Name = e.Name()
		views = append(views, v)
	}
	if len(views) < 2 {
		return nil, ErrInsufficientViews
	}
	return views, nil
}

func loadView(dir string) (View, error) {
	cam, err := readCamera(filepath.Join(dir, metaName))
	if err != nil {
		return View{}, err
	}
	gps, err := readGPS(filepath.Join(dir, photoName))
	if err != nil {
		return View{}, err
	}
	return View{Camera: cam, GPS: gps}, nil
}

// readCamera reads the camera extrinsics from a meta.ini file and
// returns the camera center in model space, c = -Rᵀ·t.
func readCamera(path string) (coord.Cart, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return coord.Cart{}, err
	}
	sec := cfg.Section("camera")
	r, err := parseFloats(sec.Key("rotation").String(), 9)
	if err != nil {
		return coord.Cart{}, fmt.Errorf("camera rotation: %w", err)
	}
	t, err := parseFloats(sec.Key("translation").String(), 3)
	if err != nil {
		return coord.Cart{}, fmt.Errorf("camera translation: %w", err)
	}
	// rotation is stored row-major world-to-camera; its transpose is its
	// inverse.
	var m coord.M3
	copy(m[:], r)
	m.Transpose(&m)
	tv := coord.Cart{X: t[0], Y: t[1], Z: t[2]}
	var c coord.Cart
	c.Mult3(&m, &tv)
	c.MulScalar(&c, -1)
	return c, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	fields := strings.Fields(s)
	if len(fields) != n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
	}
	vs := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		vs[i] = v
	}
	return vs, nil
}

// readGPS decodes the geodetic position from a photograph's EXIF tags.
func readGPS(path string) (geo.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return geo.Point{}, err
	}
	defer f.Close()
	x, err := exif.Decode(f)
	if err != nil {
		return geo.Point{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	lat, err := taggedAngle(x, exif.GPSLatitude, exif.GPSLatitudeRef, "N", "S")
	if err != nil {
		return geo.Point{}, err
	}
	lon, err := taggedAngle(x, exif.GPSLongitude, exif.GPSLongitudeRef, "E", "W")
	if err != nil {
		return geo.Point{}, err
	}
	alt, err := taggedAltitude(x)
	if err != nil {
		return geo.Point{}, err
	}
	return geo.Point{Lat: lat, Lon: lon, Alt: alt}, nil
}

// taggedAngle reads a GPS angle stored as degree/minute/second rationals
// plus a hemisphere flag.
func taggedAngle(x *exif.Exif, val, ref exif.FieldName, pos, neg string) (unit.Angle, error) {
	tag, err := x.Get(val)
	if err != nil {
		return 0, err
	}
	deg, err := dmsDegrees(tag)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", val, err)
	}
	rtag, err := x.Get(ref)
	if err != nil {
		return 0, err
	}
	h, err := rtag.StringVal()
	if err != nil {
		return 0, err
	}
	sign, err := flipSign(h, pos, neg)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ref, err)
	}
	return unit.AngleFromDeg(sign * deg), nil
}

func taggedAltitude(x *exif.Exif) (float64, error) {
	tag, err := x.Get(exif.GPSAltitude)
	if err != nil {
		return 0, err
	}
	n, d, err := tag.Rat2(0)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, errors.New("GPSAltitude: zero denominator")
	}
	alt := ratFloat(n, d)
	rtag, err := x.Get(exif.GPSAltitudeRef)
	if err != nil {
		return 0, err
	}
	below, err := rtag.Int(0)
	if err != nil {
		return 0, err
	}
	switch below {
	case 0:
	case 1:
		alt = -alt
	default:
		return 0, fmt.Errorf("GPSAltitudeRef: invalid value %d", below)
	}
	return alt, nil
}

// dmsDegrees combines the three degree/minute/second rationals of a GPS
// angle tag.  The sum is carried in exact rational arithmetic and
// rounded once at the end, as GPS receivers sometimes encode the whole
// angle in the minutes or seconds component with large numerators.
func dmsDegrees(tag *tiff.Tag) (float64, error) {
	divs := [3]int64{1, 60, 3600}
	sum := new(big.Rat)
	for i, div := range divs {
		n, d, err := tag.Rat2(i)
		if err != nil {
			return 0, err
		}
		if d == 0 {
			return 0, errors.New("zero denominator")
		}
		sum.Add(sum, new(big.Rat).SetFrac64(n, d*div))
	}
	f, _ := sum.Float64()
	return f, nil
}

func flipSign(ref, pos, neg string) (float64, error) {
	switch ref {
	case pos:
		return 1, nil
	case neg:
		return -1, nil
	}
	return 0, fmt.Errorf("invalid hemisphere flag %q", ref)
}

// ratFloat converts the rational n/d to float64.
func ratFloat(n, d int64) float64 {
	f, _ := new(big.Rat).SetFrac64(n, d).Float64()
	return f
}
