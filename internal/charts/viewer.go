package charts

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	apperrors "laptopstats/internal/errors"
)

// Opener hands a rendered file to something that displays it
type Opener func(ctx context.Context, path string) error

// viewerCommand returns the command that opens path in the desktop's
// default viewer.
func viewerCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		return "xdg-open", []string{path}
	}
}

// viewerCmd builds the viewer process for path. It is not bound to a
// context, so the viewer keeps running after the analyzer exits.
func viewerCmd(goos, path string) *exec.Cmd {
	name, args := viewerCommand(goos, path)
	return exec.Command(name, args...)
}

// OpenInViewer starts the platform viewer for path without waiting for it
// to exit. ctx only guards the start.
func OpenInViewer(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd := viewerCmd(runtime.GOOS, path)
	if err := cmd.Start(); err != nil {
		return apperrors.NewRenderError(fmt.Sprintf("failed to open %s with %s", path, cmd.Args[0]), err)
	}
	go cmd.Wait()
	return nil
}
