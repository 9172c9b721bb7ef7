//go:build windows

package cmd

import (
	"os"
	"os/exec"
	"syscall"
)

// detach is a no-op on Windows; the child keeps running after the parent exits.
func detach(_ *exec.Cmd) {}

// shutdownSignals are the signals that stop a foreground server.
func shutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

// Windows has no graceful stop signal; both terminate the process.
func stopSignal() syscall.Signal { return syscall.SIGTERM }

func killSignal() syscall.Signal { return syscall.SIGKILL }
