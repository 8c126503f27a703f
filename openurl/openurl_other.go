//go:build !windows

package openurl

import (
	"os/exec"
	"runtime"

	"github.com/charmbracelet/log"
)

var command = exec.Command

// openURL opens URL in default browser on non-Windows platforms
func openURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = command("open", url)
	case "linux", "freebsd", "openbsd", "netbsd":
		cmd = command("xdg-open", url)
	default:
		log.Warn("Unsupported OS for opening URL", "os", runtime.GOOS, "url", url)
		return nil
	}
	// The launcher may stay around as long as the browser does.
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}
