// Package errors provides the structured error type shared by voxkit packages.
// Every failure that crosses a package boundary is an *AppError carrying a
// machine-readable code, an HTTP status hint and a retryable flag.
package errors
