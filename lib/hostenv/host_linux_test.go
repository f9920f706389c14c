//go:build linux

package hostenv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseContainerID(t *testing.T) {
	testcases := []struct {
		name   string
		cgroup string
		want   string
	}{
		{
			name:   "containerd in kubernetes",
			cgroup: "0::/kubepods.slice/kubepods-besteffort.slice/kubepods-besteffort-pode6ac4a8d_1076_453e_9ddb_3976520e3178.slice/cri-containerd-19cd7a809d879d9c855bb93e4d399efe795a769ac856faaa5256cdd8387fe4b1.scope",
			want:   "19cd7a809d879d9c855bb93e4d399efe795a769ac856faaa5256cdd8387fe4b1",
		},
		{
			name:   "docker cgroup v1",
			cgroup: "12:memory:/docker/3e9e9a3b5d4c0a4a1b0b4d2f9f1e2c3d4b5a6978e1f2a3b4c5d6e7f8091a2b3c\n1:name=systemd:/init.scope",
			want:   "3e9e9a3b5d4c0a4a1b0b4d2f9f1e2c3d4b5a6978e1f2a3b4c5d6e7f8091a2b3c",
		},
		{
			name:   "ecs task",
			cgroup: "9:perf_event:/ecs/55091c13-b8cf-4801-b527-f4601742204d/432624d2150b349fe35ba397284dea788c2bf66b885d14dfc1569b01890ca7da",
			want:   "432624d2150b349fe35ba397284dea788c2bf66b885d14dfc1569b01890ca7da",
		},
		{
			name:   "bare host",
			cgroup: "0::/user.slice/user-1000.slice/session-2.scope\nmalformed",
			want:   "",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			require.Equal(tt, tc.want, parseContainerID(strings.NewReader(tc.cgroup)))
		})
	}
}
