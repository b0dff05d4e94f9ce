//go:build ignore

// build.go - licensekey build system
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, test, clean, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

const (
	version = "1.0.0"
	binary  = "licensekey"
)

// releaseTargets lists the GOOS/GOARCH pairs built by the release target.
var releaseTargets = [][2]string{
	{"linux", "amd64"},
	{"linux", "arm64"},
	{"darwin", "amd64"},
	{"darwin", "arm64"},
	{"windows", "amd64"},
}

var (
	rootDir string
	distDir string

	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
	colorCyan  = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); err != nil {
		panic("build.go must be run from the module root")
	}
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	var err error
	switch *target {
	case "all":
		err = buildBinary(runtime.GOOS, runtime.GOARCH, *verbose)
	case "test":
		err = runTests(*verbose)
	case "clean":
		err = clean()
	case "release":
		err = buildRelease(*verbose)
	default:
		showHelp()
		os.Exit(1)
	}
	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "        licensekey - Build System          " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

// buildBinary builds cmd/licensekey for one platform into dist/.
func buildBinary(goos, goarch string, verbose bool) error {
	name := binary
	if goos == "windows" {
		name += ".exe"
	}
	out := filepath.Join(distDir, goos+"-"+goarch, name)
	printInfo(fmt.Sprintf("Building %s for %s/%s...", name, goos, goarch))

	args := []string{"build", "-trimpath", "-ldflags", "-s -w", "-o", out}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./cmd/licensekey")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0", "GOOS="+goos, "GOARCH="+goarch)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build for %s/%s failed: %w", goos, goarch, err)
	}
	return nil
}

func runTests(verbose bool) error {
	printInfo("Running Go tests...")

	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("Go tests failed: %w", err)
	}
	printSuccess("All tests passed")
	return nil
}

func clean() error {
	printInfo("Cleaning build artifacts...")
	if err := os.RemoveAll(distDir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", distDir, err)
	}
	printSuccess("Build artifacts cleaned")
	return nil
}

func buildRelease(verbose bool) error {
	printInfo("Building release version...")

	if err := clean(); err != nil {
		return err
	}
	for _, t := range releaseTargets {
		if err := buildBinary(t[0], t[1], verbose); err != nil {
			return err
		}
	}

	content := fmt.Sprintf("licensekey v%s\nBuilt: %s\n", version, time.Now().Format("2006-01-02 15:04:05"))
	if err := os.WriteFile(filepath.Join(distDir, "VERSION.txt"), []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write version file: %w", err)
	}

	printSuccess("Release build completed")
	return nil
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all      Build licensekey for the current platform (default)")
	fmt.Println("  test     Run all Go tests with the race detector")
	fmt.Println("  clean    Remove the dist directory")
	fmt.Println("  release  Cross-compile every release platform into dist/")
}
