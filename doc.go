/*
Command georef registers a structure-from-motion reconstruction against
real-world geography.

Contents

  Program overview
  Command line usage
  Scene format
  Output
  Algorithm outline

Program overview

A reconstruction produced by an SfM pipeline lives in an arbitrary
coordinate system: its scale, orientation and position bear no relation
to the real world.  The photographs the reconstruction was built from,
however, usually carry GPS tags.  georef reads the per-view camera
positions from the scene directory together with the geodetic tags of
the source photographs, and solves for the similarity transform (one
positive scale, one rotation, one translation) that places the
reconstruction at its true position and orientation on Earth.

The solved placement is printed for the operator along with the RMS
registration error in meters, and can optionally be handed to a
downstream mesh renderer as a subprocess.

Command line usage

   georef [options] <scene-dir>              register scene, print placement
   georef [options] <scene-dir> <mesh-file>  register, then run the renderer
   georef -h                                 display help
   georef -v                                 display version

Options:

   -renderer <path>   renderer executable to invoke when a mesh file is
                      given (default "solmap-render")
   -json              print the placement as JSON instead of text

Scene format

The scene directory is expected to contain a "views" subdirectory with
one subdirectory per view.  Each view holds a meta.ini file with a
[camera] section giving a 3x3 rotation matrix and a translation vector,
and the original photograph as original.jpg with EXIF GPS tags.  The
camera position in model space is recovered as -Rᵀ·t.

Views missing camera data or GPS tags are skipped with a warning.  At
least two valid views are required.  With exactly two views the rotation
about the axis joining them is geometrically unconstrained; a warning is
printed and an arbitrary consistent rotation is reported.

Output

On success georef prints the geographic reference location, the RMS
registration error in meters, and the scale, translation and orientation
quaternion of the fitted placement.  The quaternion is given as
w x y z, Hamilton convention, expressed in the renderer frame (+Y up,
-Z north, +X east) relative to the local tangent plane at the reference
location.

Non-convergence of the underlying solver is reported but is not fatal:
the achieved parameters and residual are printed and the exit status is
zero.  Missing arguments or an unreadable scene directory exit with
status 1.

Algorithm outline

GPS tags are converted to Cartesian coordinates on the WGS-84 ellipsoid.
The first view is used as an anchor and subtracted from all geodetic
positions, so the fit works near the origin rather than at Earth-radius
magnitudes.  A closed-form initial guess (scale from a point-pair
distance ratio, translation from the anchor, identity rotation) seeds a
quasi-Newton least-squares minimization over the seven transform
parameters.  The fitted orientation is then re-expressed relative to the
local tangent plane at the midpoint of the observed latitudes and
longitudes, adapted to the renderer axis convention, and converted to a
unit quaternion.

-------------
Public domain.
*/
package main
