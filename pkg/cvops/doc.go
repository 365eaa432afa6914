// Package cvops replaces filter commands with OpenCV implementations. The
// implementations are compiled in with -tags gocv and register themselves on
// import; without the tag the package is empty.
package cvops
