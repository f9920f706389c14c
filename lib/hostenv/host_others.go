//go:build !linux

package hostenv

func inContainer() bool { return false }

func inKubernetes() bool { return false }

func containerID() string { return "" }
