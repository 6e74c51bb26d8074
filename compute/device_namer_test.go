package compute

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceNamerValidateOrDefault(t *testing.T) {
	namer := NewDeviceNamer(zerolog.Nop())
	sdRoot := CanonicalMapping{"root": "/dev/sda"}
	tests := []struct {
		name      string
		requested string
		mapping   CanonicalMapping
		policy    DeviceNamingPolicy
		want      string
		wantErr   error
	}{
		{name: "synthesize next", mapping: sdRoot, policy: GenericNamingPolicy(), want: "/dev/sdb"},
		{name: "requested free", requested: "/dev/sdb", mapping: sdRoot, policy: GenericNamingPolicy(), want: "/dev/sdb"},
		{name: "requested in use", requested: "/dev/sda", mapping: sdRoot, policy: GenericNamingPolicy(), wantErr: ErrDevicePathInUse},
		{name: "requested partition in use", requested: "/dev/sda1", mapping: sdRoot, policy: GenericNamingPolicy(), wantErr: ErrDevicePathInUse},
		{
			name:    "root prefix wins over policy",
			mapping: CanonicalMapping{"root": "/dev/xvda"},
			policy:  GenericNamingPolicy(),
			want:    "/dev/xvdb",
		},
		{
			name:      "requested rewritten onto root prefix",
			requested: "/dev/sdc",
			mapping:   CanonicalMapping{"root": "/dev/vda", "ebs0": "/dev/vdb"},
			policy:    GenericNamingPolicy(),
			want:      "/dev/vdc",
		},
		{name: "invalid requested", requested: "not-a-path", mapping: sdRoot, policy: GenericNamingPolicy(), wantErr: ErrInvalidDevicePath},
		{name: "invalid root", mapping: CanonicalMapping{"root": "sda"}, policy: GenericNamingPolicy(), wantErr: ErrInvalidDevicePath},
		{name: "missing root", mapping: CanonicalMapping{"ebs0": "/dev/sdb"}, policy: GenericNamingPolicy(), wantErr: ErrMissingRootDevice},
		{
			name:    "root partition counts as used",
			mapping: CanonicalMapping{"root": "/dev/sda1"},
			policy:  GenericNamingPolicy(),
			want:    "/dev/sdb",
		},
		{
			name:    "xen reserved ephemeral and swap",
			mapping: CanonicalMapping{"root": "/dev/xvda"},
			policy:  XenNamingPolicy(Flavor{EphemeralGb: 10, SwapMb: 512}),
			want:    "/dev/xvdd",
		},
		{
			name:      "xen reserved letter requested",
			requested: "/dev/xvdb",
			mapping:   CanonicalMapping{"root": "/dev/xvda"},
			policy:    XenNamingPolicy(Flavor{EphemeralGb: 10}),
			wantErr:   ErrDevicePathInUse,
		},
		{
			name:    "gap reused",
			mapping: CanonicalMapping{"root": "/dev/vda", "ebs0": "/dev/vdc"},
			policy:  DeviceNamingPolicy{Prefix: "/dev/vd"},
			want:    "/dev/vdb",
		},
		{
			name:    "uml synthesize next",
			mapping: CanonicalMapping{"root": "/dev/ubda"},
			policy:  DeviceNamingPolicy{Name: DriverLibvirt, Prefix: "/dev/ubd"},
			want:    "/dev/ubdb",
		},
		{
			name:      "uml requested root",
			requested: "/dev/ubda",
			mapping:   CanonicalMapping{"root": "/dev/ubda"},
			policy:    DeviceNamingPolicy{Name: DriverLibvirt, Prefix: "/dev/ubd"},
			wantErr:   ErrDevicePathInUse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := namer.ValidateOrDefault(tt.requested, tt.mapping, tt.policy)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeviceNamerDeterministic(t *testing.T) {
	namer := NewDeviceNamer(zerolog.Nop())
	mapping := CanonicalMapping{"root": "/dev/vda", "ebs0": "/dev/vdb", "swap": "/dev/vdd"}
	first, err := namer.ValidateOrDefault("", mapping, GenericNamingPolicy())
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		got, err := namer.ValidateOrDefault("", mapping, GenericNamingPolicy())
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
	assert.Equal(t, "/dev/vdc", first)
}

func TestDeviceNamerExhausted(t *testing.T) {
	mapping := CanonicalMapping{"root": "/dev/sda"}
	idx := 0
	for length := 1; length <= MaxLetterSequenceLength; length++ {
		letterSequences(length, func(letters string) bool {
			mapping[fmt.Sprintf("ebs%d", idx)] = "/dev/sd" + letters
			idx++
			return true
		})
	}
	require.Equal(t, 702, idx)

	namer := NewDeviceNamer(zerolog.Nop())
	_, err := namer.ValidateOrDefault("", mapping, GenericNamingPolicy())
	assert.ErrorIs(t, err, ErrNoAvailableDevice)
}

func TestNewNamingPolicy(t *testing.T) {
	policy, err := NewNamingPolicy(DriverLibvirt, DeviceBusIde, Flavor{})
	require.NoError(t, err)
	assert.Equal(t, "/dev/hd", policy.Prefix)

	policy, err = NewNamingPolicy(DriverXen, DeviceBusUnknown, Flavor{SwapMb: 256})
	require.NoError(t, err)
	assert.Equal(t, "/dev/xvd", policy.Prefix)
	assert.Equal(t, []string{"c"}, policy.Reserved)

	policy, err = NewNamingPolicy("", DeviceBusUnknown, Flavor{EphemeralGb: 1})
	require.NoError(t, err)
	assert.Equal(t, GenericNamingPolicy(), policy)

	policy, err = NewNamingPolicy(DriverLibvirt, DeviceBusUml, Flavor{})
	require.NoError(t, err)
	assert.Equal(t, "/dev/ubd", policy.Prefix)

	_, err = NewNamingPolicy(DriverLibvirt, DeviceBusLxc, Flavor{})
	assert.Error(t, err)

	_, err = NewNamingPolicy("hyperv", DeviceBusUnknown, Flavor{})
	assert.Error(t, err)
}
