//go:build linux

package hostenv

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/google/safeopen"
)

// Best effort probes. A container either carries the docker marker file
// or has no block devices.
const (
	dockerEnvPath                = "/.dockerenv"
	dockerBlockPath              = "/dev/block"
	kubernetesServiceAccountPath = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"
)

func inContainer() bool {
	if stat, err := os.Stat(dockerEnvPath); err == nil {
		return !stat.IsDir()
	}
	_, err := os.Stat(dockerBlockPath)
	return os.IsNotExist(err)
}

func inKubernetes() bool {
	stat, err := os.Stat(kubernetesServiceAccountPath)
	if err != nil {
		return false
	}
	return !stat.IsDir() && stat.Size() > 0
}

const (
	uuidSource      = "[0-9a-f]{8}[-_][0-9a-f]{4}[-_][0-9a-f]{4}[-_][0-9a-f]{4}[-_][0-9a-f]{12}|[0-9a-f]{8}(?:-[0-9a-f]{4}){4}$"
	containerSource = "[0-9a-f]{64}"
	taskSource      = "[0-9a-f]{32}-\\d+"
)

var (
	// /proc/self/cgroup line example:
	// 0::/kubepods.slice/kubepods-besteffort.slice/kubepods-besteffort-pode6ac4a8d_1076_453e_9ddb_3976520e3178.slice/cri-containerd-19cd7a809d879d9c855bb93e4d399efe795a769ac856faaa5256cdd8387fe4b1.scope
	cgroupLineRegex  = regexp.MustCompile(`^\d+:[^:]*:(.+)$`)
	containerIDRegex = regexp.MustCompile(fmt.Sprintf(`(%s|%s|%s)(?:.scope)?$`, uuidSource, containerSource, taskSource))
)

func parseContainerID(r io.Reader) string {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		path := cgroupLineRegex.FindStringSubmatch(scanner.Text())
		if len(path) != 2 {
			continue
		}
		if parts := containerIDRegex.FindStringSubmatch(path[1]); len(parts) == 2 {
			return parts[1]
		}
	}
	return ""
}

func containerID() string {
	f, err := safeopen.OpenBeneath("/proc/self", "cgroup")
	if err != nil {
		return ""
	}
	defer func() {
		_ = f.Close()
	}()
	return parseContainerID(f)
}
