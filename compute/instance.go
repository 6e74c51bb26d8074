package compute

type Flavor struct {
	Name        string
	VCpus       int
	MemoryMb    uint64
	RootGb      uint64
	EphemeralGb uint64
	SwapMb      uint64
}

type Instance struct {
	Id                     string
	RootDeviceName         string
	DefaultEphemeralDevice string
	DefaultSwapDevice      string
	Flavor                 Flavor
}

type InstanceRepository interface {
	Get(id string) (*Instance, error)
}
