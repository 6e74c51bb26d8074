package compute

import (
	"fmt"
)

type Event interface {
	Name() string
	Plain() map[string]string
}

type EventPublisher interface {
	Publish(event Event) error
}

type EventDeviceAttached struct {
	instance *Instance
	bdm      *BlockDeviceMapping
}

func NewEventDeviceAttached(instance *Instance, bdm *BlockDeviceMapping) *EventDeviceAttached {
	return &EventDeviceAttached{instance: instance, bdm: bdm}
}

func (e *EventDeviceAttached) Name() string {
	return "device_attached"
}

func (e *EventDeviceAttached) Plain() map[string]string {
	return map[string]string{
		"event":            e.Name(),
		"instance_id":      e.instance.Id,
		"device_name":      e.bdm.DeviceName,
		"device_role":      e.bdm.InferRole().String(),
		"volume_id":        e.bdm.VolumeId,
		"flavor":           e.instance.Flavor.Name,
		"flavor_ephemeral": fmt.Sprintf("%d", e.instance.Flavor.EphemeralGb),
		"flavor_swap":      fmt.Sprintf("%d", e.instance.Flavor.SwapMb),
	}
}

type EventDeviceDetached struct {
	instanceId string
	deviceName string
}

func NewEventDeviceDetached(instanceId, deviceName string) *EventDeviceDetached {
	return &EventDeviceDetached{instanceId: instanceId, deviceName: deviceName}
}

func (e *EventDeviceDetached) Name() string {
	return "device_detached"
}

func (e *EventDeviceDetached) Plain() map[string]string {
	return map[string]string{
		"event":       e.Name(),
		"instance_id": e.instanceId,
		"device_name": e.deviceName,
	}
}
