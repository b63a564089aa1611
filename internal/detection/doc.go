// Package detection locates a license-plate-shaped region in a video frame.
//
// SelectCandidate is the entry point. It runs the frame through grayscale
// conversion, bilateral smoothing and Canny edge detection, extracts contours,
// and greedily accepts the largest contour that approximates to a
// quadrilateral with a plate-like aspect ratio. The numerical routines are
// OpenCV's, reached through gocv.
//
// # Selection Rule
//
// Only the Params.MaxContours largest contours (by enclosed area) are
// examined, largest first. The first contour that passes both gates wins and
// the search stops:
//
//   - Quad gate: the polygon approximation (tolerance ApproxEpsilon × perimeter)
//     has exactly 4 vertices
//   - Aspect gate: bounding box width/height lies in [MinAspectRatio, MaxAspectRatio]
//
// # Results
//
// A successful selection returns a PlateCandidate (bounding box plus 4-point
// polygon) and a deep copy of the frame pixels under the bounding box, ready
// for enhance.Enhance. "No plate" is reported as nil values with a nil error.
//
// # Thread Safety
//
// Every call allocates and releases its own OpenCV matrices and keeps no
// package state, so calls on independent frames may run concurrently.
//
// # Annotation
//
// Annotate draws a candidate onto a copy of its frame for display or
// reporting. It is a convenience for callers and plays no part in selection.
package detection
