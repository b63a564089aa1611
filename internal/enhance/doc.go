// Package enhance cleans up a cropped plate region for downstream character
// recognition: bicubic upscaling, grayscale conversion, Gaussian adaptive
// thresholding and non-local-means denoising, all through OpenCV.
//
// Enhance keeps no state and releases every intermediate matrix before it
// returns, so it may be called concurrently on independent regions.
package enhance
