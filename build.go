//go:build ignore

// build.go - radarcli build system
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, server, cli, test, clean, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const module = "radarcli"

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	GOOS    string
	GOARCH  string
}

var (
	rootDir string
	distDir string

	// Executable names (key = source dir name under cmd/, value = output name)
	executables = map[string]string{
		"radar-server": "radar-server",
		"radarctl":     "radarctl",
	}

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

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); os.IsNotExist(err) {
		panic(fmt.Sprintf("go.mod not found in %s. Run build.go from the repository root.", rootDir))
	}
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	goos := flag.String("os", runtime.GOOS, "Target operating system for release builds")
	goarch := flag.String("arch", runtime.GOARCH, "Target architecture for release builds")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	ctx := &BuildContext{
		Verbose: *verbose,
		GOOS:    *goos,
		GOARCH:  *goarch,
	}

	var err error
	switch *target {
	case "all":
		err = buildAll(ctx)
	case "server":
		err = buildExecutable("radar-server", ctx)
	case "cli":
		err = buildExecutable("radarctl", ctx)
	case "test":
		err = runTests(ctx.Verbose)
	case "clean":
		err = clean()
	case "release":
		err = buildRelease(ctx)
	default:
		showHelp()
		os.Exit(1)
	}

	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}

	duration := time.Since(startTime)
	printSuccess(fmt.Sprintf("Build completed in %s", duration.Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "        radarcli - Build System            " + colorReset)
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

// Build all executables
func buildAll(ctx *BuildContext) error {
	printInfo("Building all components...")

	if err := os.MkdirAll(distDir, 0755); err != nil {
		return fmt.Errorf("failed to create dist directory: %w", err)
	}

	for name := range executables {
		if err := buildExecutable(name, ctx); err != nil {
			return err
		}
	}
	return nil
}

// ldflags stamps build metadata into pkg/contracts
func ldflags() string {
	pkg := module + "/pkg/contracts"
	flags := []string{
		"-s", "-w",
		fmt.Sprintf("-X %s.BuildTime=%s", pkg, time.Now().UTC().Format(time.RFC3339)),
	}
	if commit := gitOutput("rev-parse", "--short", "HEAD"); commit != "" {
		flags = append(flags, fmt.Sprintf("-X %s.GitCommit=%s", pkg, commit))
	}
	if branch := gitOutput("rev-parse", "--abbrev-ref", "HEAD"); branch != "" {
		flags = append(flags, fmt.Sprintf("-X %s.GitBranch=%s", pkg, branch))
	}
	return strings.Join(flags, " ")
}

func gitOutput(args ...string) string {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func buildExecutable(name string, ctx *BuildContext) error {
	exeName, ok := executables[name]
	if !ok {
		return fmt.Errorf("unknown executable: %s", name)
	}
	if ctx.GOOS == "windows" {
		exeName += ".exe"
	}

	printInfo(fmt.Sprintf("Building %s for %s/%s...", name, ctx.GOOS, ctx.GOARCH))

	outputPath := filepath.Join(distDir, exeName)
	args := []string{"build", "-trimpath", "-ldflags", ldflags(), "-o", outputPath, "./cmd/" + name}
	if ctx.Verbose {
		args = append([]string{"build", "-v"}, args[1:]...)
	}

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Env = append(os.Environ(), "GOOS="+ctx.GOOS, "GOARCH="+ctx.GOARCH, "CGO_ENABLED=0")
	cmd.Stderr = os.Stderr
	if ctx.Verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to build %s: %w", name, err)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", exeName, sizeMB))
	}
	return nil
}

// Run tests
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
		return fmt.Errorf("go tests failed: %w", err)
	}

	printSuccess("All tests passed")
	return nil
}

func clean() error {
	printInfo("Cleaning build artifacts...")
	if err := os.RemoveAll(distDir); err != nil {
		return fmt.Errorf("failed to clean dist directory: %w", err)
	}
	printSuccess("Build artifacts cleaned")
	return nil
}

// Build release binaries and a VERSION.txt next to them
func buildRelease(ctx *BuildContext) error {
	printInfo("Building release version...")

	if err := clean(); err != nil {
		return err
	}
	if err := buildAll(ctx); err != nil {
		return err
	}

	versionFile := filepath.Join(distDir, "VERSION.txt")
	content := fmt.Sprintf("radarcli %s/%s\nCommit: %s\nBuilt: %s\n",
		ctx.GOOS, ctx.GOARCH, gitOutput("rev-parse", "--short", "HEAD"),
		time.Now().Format("2006-01-02 15:04:05"))
	if err := os.WriteFile(versionFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write VERSION.txt: %w", err)
	}

	printSuccess("Release build completed")
	return nil
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v] [-os=GOOS] [-arch=GOARCH]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all       Build radar-server and radarctl (default)")
	fmt.Println("  server    Build radar-server only")
	fmt.Println("  cli       Build radarctl only")
	fmt.Println("  test      Run all tests with the race detector")
	fmt.Println("  clean     Remove dist/")
	fmt.Println("  release   Clean, build all and write dist/VERSION.txt")
}
