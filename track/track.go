// Package track reads and writes streamline tractograms in the two
// formats spec.md §6.3 names: MRtrix's TCK and TrackVis's TRK. Points are
// always handed to and returned from this package in world coordinates;
// TRK's voxel-space-plus-0.5 convention is translated at the package
// boundary.
//
// Grounded on
// original_source/src/dMRI/tractography/io/tractogramWriter_tck.cpp and
// tractogramWriter_trk.cpp.
package track

import "github.com/nibrary/nibrary/math/lin"

// Streamline is an ordered sequence of world-space points.
type Streamline []lin.V3
