//go:build windows

package action

import (
	"errors"
	"syscall"
)

var (
	kernel32             = syscall.NewLazyDLL("kernel32.dll")
	procOpenProcess      = kernel32.NewProc("OpenProcess")
	procTerminateProcess = kernel32.NewProc("TerminateProcess")
	procCloseHandle      = kernel32.NewProc("CloseHandle")

	// NtSuspendProcess and NtResumeProcess are undocumented and privilege
	// gated; they are resolved once and stay nil when the lookup fails so
	// every suspend/resume call can fail fast without touching the OS.
	ntdll             = syscall.NewLazyDLL("ntdll.dll")
	procNtSuspend     = ntdll.NewProc("NtSuspendProcess")
	procNtResume      = ntdll.NewProc("NtResumeProcess")
	errNtUnavailable  = errors.New("suspend/resume primitives unavailable")
	suspendResolveErr = procNtSuspend.Find()
	resumeResolveErr  = procNtResume.Find()
)

const (
	processTerminate        = 0x0001
	processQueryInformation = 0x0400
	processSuspendResume    = 0x0800

	// Fixed, non-configurable exit code passed to TerminateProcess.
	terminateExitCode = 1
)

type hostPrimitive struct{}

// HostPrimitive returns the real OS-backed primitive.
func HostPrimitive() Primitive { return hostPrimitive{} }

func (hostPrimitive) Terminate(pid int32) error {
	h, err := openProcess(processTerminate, uint32(pid))
	if err != nil {
		return err
	}
	defer closeHandle(h)
	ret, _, callErr := procTerminateProcess.Call(uintptr(h), uintptr(terminateExitCode))
	if ret == 0 {
		return callErr
	}
	return nil
}

func (hostPrimitive) Suspend(pid int32) error {
	if suspendResolveErr != nil {
		return errNtUnavailable
	}
	return ntCall(procNtSuspend, pid)
}

func (hostPrimitive) Resume(pid int32) error {
	if resumeResolveErr != nil {
		return errNtUnavailable
	}
	return ntCall(procNtResume, pid)
}

func ntCall(proc *syscall.LazyProc, pid int32) error {
	h, err := openProcess(processSuspendResume|processQueryInformation, uint32(pid))
	if err != nil {
		return err
	}
	defer closeHandle(h)
	status, _, _ := proc.Call(uintptr(h))
	if status != 0 {
		return syscall.Errno(status)
	}
	return nil
}

func openProcess(access uint32, pid uint32) (syscall.Handle, error) {
	ret, _, err := procOpenProcess.Call(uintptr(access), 0, uintptr(pid))
	if ret == 0 {
		return 0, err
	}
	return syscall.Handle(ret), nil
}

func closeHandle(h syscall.Handle) {
	_, _, _ = procCloseHandle.Call(uintptr(h))
}
