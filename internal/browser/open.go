// Package browser hands URLs to the desktop's default browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Open launches url in the default browser without waiting for the
// browser process to exit.
func Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("no browser launcher for %s", runtime.GOOS)
	}
	return cmd.Start()
}
