package filesystem

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"subuk/devname/compute"
	"subuk/devname/util"
	"sync"
)

// BlockDeviceMappingStorage keeps mappings of all instances in one json file.
type BlockDeviceMappingStorage struct {
	filename string
	mu       *sync.RWMutex
}

func NewBlockDeviceMappingStorage(filename string) (*BlockDeviceMappingStorage, error) {
	filename = util.ExpandHomeDir(filename)
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return nil, util.NewError(err, "cannot create base directory")
	}
	return &BlockDeviceMappingStorage{filename: filename, mu: &sync.RWMutex{}}, nil
}

func (repo *BlockDeviceMappingStorage) load() ([]*compute.BlockDeviceMapping, error) {
	content, err := ioutil.ReadFile(repo.filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*compute.BlockDeviceMapping{}, nil
		}
		return nil, util.NewError(err, "cannot open storage file")
	}
	bdms := []*compute.BlockDeviceMapping{}
	if err := json.Unmarshal(content, &bdms); err != nil {
		return nil, util.NewError(err, "cannot parse mappings file")
	}
	return bdms, nil
}

func (repo *BlockDeviceMappingStorage) save(bdms []*compute.BlockDeviceMapping) error {
	content, err := json.MarshalIndent(&bdms, "", "  ")
	if err != nil {
		return util.NewError(err, "cannot marshal mappings")
	}
	tmpname := repo.filename + ".tmp"
	if err := ioutil.WriteFile(tmpname, content, 0644); err != nil {
		return util.NewError(err, "cannot write mappings file")
	}
	if err := os.Rename(tmpname, repo.filename); err != nil {
		return util.NewError(err, "cannot replace mappings file")
	}
	return nil
}

func (repo *BlockDeviceMappingStorage) List(instanceId string) ([]*compute.BlockDeviceMapping, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	bdms, err := repo.load()
	if err != nil {
		return nil, err
	}
	result := []*compute.BlockDeviceMapping{}
	for _, bdm := range bdms {
		if bdm.InstanceId == instanceId {
			result = append(result, bdm)
		}
	}
	return result, nil
}

// Save adds bdm or replaces the mapping with the same instance and device.
func (repo *BlockDeviceMappingStorage) Save(bdm *compute.BlockDeviceMapping) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	bdms, err := repo.load()
	if err != nil {
		return err
	}
	found := false
	for idx, existing := range bdms {
		if existing.InstanceId == bdm.InstanceId && existing.DeviceName == bdm.DeviceName {
			bdms[idx] = bdm
			found = true
		}
	}
	if !found {
		bdms = append(bdms, bdm)
	}
	return repo.save(bdms)
}

func (repo *BlockDeviceMappingStorage) Delete(instanceId, deviceName string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	bdms, err := repo.load()
	if err != nil {
		return err
	}
	kept := []*compute.BlockDeviceMapping{}
	for _, bdm := range bdms {
		if bdm.InstanceId == instanceId && bdm.DeviceName == deviceName {
			continue
		}
		kept = append(kept, bdm)
	}
	if len(kept) == len(bdms) {
		return compute.ErrMappingNotFound
	}
	return repo.save(kept)
}
