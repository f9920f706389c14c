// Package hostenv describes the host a stress run executes on, so a failed
// seed can be replayed on a comparable machine.
package hostenv

import (
	"fmt"
	"runtime"

	"go.uber.org/zap/zapcore"
)

var _ zapcore.ObjectMarshaler = Host{}

type Host struct {
	OS          string
	Arch        string
	NumCPU      int
	GOMAXPROCS  int
	Container   bool
	Kubernetes  bool
	ContainerID string
}

func (h Host) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("os", h.OS)
	enc.AddString("arch", h.Arch)
	enc.AddInt("cpus", h.NumCPU)
	enc.AddInt("gomaxprocs", h.GOMAXPROCS)
	enc.AddBool("container", h.Container)
	enc.AddBool("kubernetes", h.Kubernetes)
	if len(h.ContainerID) > 0 {
		enc.AddString("containerID", h.ContainerID)
	}
	return nil
}

func (h Host) String() string {
	s := fmt.Sprintf("%s/%s cpus=%d gomaxprocs=%d", h.OS, h.Arch, h.NumCPU, h.GOMAXPROCS)
	switch {
	case h.Kubernetes:
		s += " kubernetes"
	case h.Container:
		s += " container"
	}
	if len(h.ContainerID) > 0 {
		s += " id=" + h.ContainerID
	}
	return s
}

func Detect() Host {
	return Host{
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		NumCPU:      runtime.NumCPU(),
		GOMAXPROCS:  runtime.GOMAXPROCS(0),
		Container:   inContainer(),
		Kubernetes:  inKubernetes(),
		ContainerID: containerID(),
	}
}
