package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"subuk/devname/compute"

	"github.com/gorilla/mux"
)

type deviceNameRequest struct {
	Device string `json:"device"`
}

type deviceNameResponse struct {
	Device string `json:"device"`
}

type volumeAttachRequest struct {
	Device     string `json:"device"`
	VolumeId   string `json:"volume_id"`
	SnapshotId string `json:"snapshot_id"`
	Source     string `json:"source"`
}

func decodeBody(req *http.Request, v interface{}) error {
	err := json.NewDecoder(req.Body).Decode(v)
	if err == io.EOF {
		return nil
	}
	return err
}

func (env *Environ) InstanceMapping(rw http.ResponseWriter, req *http.Request) {
	mapping, err := env.compute.InstanceMapping(mux.Vars(req)["id"])
	if err != nil {
		env.error(rw, req, err, "cannot build instance mapping")
		return
	}
	env.render.JSON(rw, http.StatusOK, mapping)
}

func (env *Environ) DeviceNameAllocate(rw http.ResponseWriter, req *http.Request) {
	body := deviceNameRequest{}
	if err := decodeBody(req, &body); err != nil {
		http.Error(rw, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	device, err := env.compute.AllocateDeviceName(mux.Vars(req)["id"], body.Device)
	if err != nil {
		env.error(rw, req, err, "cannot allocate device name")
		return
	}
	env.render.JSON(rw, http.StatusOK, deviceNameResponse{Device: device})
}

func (env *Environ) VolumeAttach(rw http.ResponseWriter, req *http.Request) {
	body := volumeAttachRequest{}
	if err := decodeBody(req, &body); err != nil {
		http.Error(rw, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	bdm, err := env.compute.AttachVolume(compute.VolumeAttachmentParams{
		InstanceId: mux.Vars(req)["id"],
		DeviceName: body.Device,
		VolumeId:   body.VolumeId,
		SnapshotId: body.SnapshotId,
		Source:     body.Source,
	})
	if err != nil {
		env.error(rw, req, err, "cannot attach volume")
		return
	}
	env.render.JSON(rw, http.StatusCreated, bdm)
}

func (env *Environ) VolumeDetach(rw http.ResponseWriter, req *http.Request) {
	urlvars := mux.Vars(req)
	device := urlvars["device"]
	if !strings.HasPrefix(device, compute.DevicePathRoot) {
		device = compute.DevicePathRoot + device
	}
	if err := env.compute.DetachVolume(urlvars["id"], device); err != nil {
		env.error(rw, req, err, "cannot detach volume")
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}
