// Package imaging provides the pixel buffers and image I/O used around the
// plate detection pipeline.
//
// The central type is Frame, a packed 8-bit BGR buffer matching OpenCV's
// CV_8UC3 layout, and GrayImage, its single-channel counterpart. Both convert
// to and from gocv matrices and standard Go images.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Thread Safety
//
// ImageCache and PlateSaver are safe for concurrent use. Frame and GrayImage
// values are plain data; operations on them never retain references, so
// independent frames can be processed concurrently without locking.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Frames with zero area, the wrong channel count, or a short pixel buffer
//   - Regions outside image bounds or with x1 >= x2 / y1 >= y2
//   - File I/O errors during image loading and saving
//   - Encoding errors during image output
package imaging
