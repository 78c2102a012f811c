// Package util holds small helpers shared by the voxkit packages: size
// parsing for configuration, sanitization of uploaded file names
// and environment overrides, and Coalesce.
package util
