//go:build windows

package openurl

import (
	"golang.org/x/sys/windows"
)

// openURL opens URL in default browser on Windows using ShellExecute
func openURL(url string) error {
	verb, err := windows.UTF16PtrFromString("open")
	if err != nil {
		return err
	}
	file, err := windows.UTF16PtrFromString(url)
	if err != nil {
		return err
	}
	return windows.ShellExecute(0, verb, file, nil, nil, windows.SW_SHOWNORMAL)
}
