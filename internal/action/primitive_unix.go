//go:build !windows

package action

import "golang.org/x/sys/unix"

// hostPrimitive drives processes with plain signals. Suspend and resume map
// to SIGSTOP/SIGCONT, which unlike the Windows counterparts need no runtime
// resolution and are always available.
type hostPrimitive struct{}

// HostPrimitive returns the real OS-backed primitive.
func HostPrimitive() Primitive { return hostPrimitive{} }

func (hostPrimitive) Terminate(pid int32) error {
	return unix.Kill(int(pid), unix.SIGKILL)
}

func (hostPrimitive) Suspend(pid int32) error {
	return unix.Kill(int(pid), unix.SIGSTOP)
}

func (hostPrimitive) Resume(pid int32) error {
	return unix.Kill(int(pid), unix.SIGCONT)
}
