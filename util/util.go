// Package util contains shared helpers for the tdlgen driver.
package util

import (
	"fmt"
	"log"
	"strconv"

	"github.com/Masterminds/semver"
)

// SupportedVersion is the newest TDL protocol version this compiler accepts.
const SupportedVersion = "1.2.0"

// Logf is a shared logging function.
var Logf = log.Printf

// CheckVersion verifies that a declared protocol version is not newer than
// SupportedVersion.
func CheckVersion(major, minor int) error {
	v, err := semver.NewVersion(fmt.Sprintf("%d.%d.0", major, minor))
	if err != nil {
		return err
	}
	c, err := semver.NewConstraint("<= " + SupportedVersion)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("protocol version %d.%d is newer than supported %s", major, minor, SupportedVersion)
	}
	return nil
}

// Pad right pads s with spaces to width n.
func Pad(s string, n int) string {
	return fmt.Sprintf("%-"+strconv.Itoa(n)+"s", s)
}
