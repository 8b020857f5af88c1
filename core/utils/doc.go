// Package utils provides loose type conversion helpers for rows scanned
// into generic maps, where drivers disagree on whether a column comes back
// as int64, []byte or string.
package utils
