package cmd

import (
	"fmt"
	"io"
	"os"
)

// Status lines share one layout: an icon, an optional [name] tag, then the
// message. Error lines go to stderr, everything else to stdout. Tests swap
// these writers to capture output.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

const (
	iconOK   = "✓" // artifact healthy, step done
	iconErr  = "✗"
	iconWarn = "⚠" // stale artifacts, ignored ingredients, sampled results
	iconSkip = "○" // already up to date
	iconMiss = "-" // unknown recipe or ingredient, empty result
	iconInfo = "~"
)

func statusLine(w io.Writer, icon, name, msg string) {
	if name != "" {
		msg = "[" + name + "] " + msg
	}
	fmt.Fprintf(w, "  %s  %s\n", icon, msg)
}

// printSection starts a command report, e.g. "=== vavi doctor ===".
func printSection(title string) {
	fmt.Fprintf(stdout, "\n=== %s ===\n", title)
}

// printBullet starts a group inside a report, such as one search hit.
func printBullet(title string) {
	fmt.Fprintf(stdout, "\n● %s\n", title)
}

func printOK(name, msg string) { statusLine(stdout, iconOK, name, msg) }
func printErr(name, msg string) { statusLine(stderr, iconErr, name, msg) }
func printWarn(name, msg string) { statusLine(stdout, iconWarn, name, msg) }
func printSkip(name, msg string) { statusLine(stdout, iconSkip, name, msg) }
func printMiss(name, msg string) { statusLine(stdout, iconMiss, name, msg) }
func printInfo(name, msg string) { statusLine(stdout, iconInfo, name, msg) }
