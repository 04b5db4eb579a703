package diskio

import (
	"sort"
	"sync"
)

// assert that Registry implements the BlockDevice interface
var _ BlockDevice = (*Registry)(nil)

// Registry routes diskio calls to the block device registered for the
// physical drive number.
type Registry struct {
	mu      sync.RWMutex
	devices map[uint8]BlockDevice
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{devices: make(map[uint8]BlockDevice)}
}

// Register associates a BlockDevice with a drive number, replacing any
// previous registration.
func (r *Registry) Register(pdrv uint8, dev BlockDevice) {
	r.mu.Lock()
	r.devices[pdrv] = dev
	r.mu.Unlock()
}

func (r *Registry) Unregister(pdrv uint8) {
	r.mu.Lock()
	delete(r.devices, pdrv)
	r.mu.Unlock()
}

// Lookup returns the device registered for pdrv.
func (r *Registry) Lookup(pdrv uint8) (BlockDevice, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dev, ok := r.devices[pdrv]
	return dev, ok
}

// Drives returns the registered drive numbers in ascending order.
func (r *Registry) Drives() []uint8 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	drives := make([]uint8, 0, len(r.devices))
	for pdrv := range r.devices {
		drives = append(drives, pdrv)
	}
	sort.Slice(drives, func(i, j int) bool { return drives[i] < drives[j] })
	return drives
}

func (r *Registry) Status(pdrv uint8) Result {
	bd, ok := r.Lookup(pdrv)
	if !ok {
		return ResultNotReady
	}
	return bd.Status(pdrv)
}

func (r *Registry) Initialize(pdrv uint8) Result {
	bd, ok := r.Lookup(pdrv)
	if !ok {
		return ResultNotReady
	}
	return bd.Initialize(pdrv)
}

func (r *Registry) Read(pdrv uint8, buff []byte, sector uint32, count uint32) Result {
	bd, ok := r.Lookup(pdrv)
	if !ok {
		return ResultParameterError
	}
	return bd.Read(pdrv, buff, sector, count)
}

func (r *Registry) Write(pdrv uint8, buff []byte, sector uint32, count uint32) Result {
	bd, ok := r.Lookup(pdrv)
	if !ok {
		return ResultParameterError
	}
	return bd.Write(pdrv, buff, sector, count)
}

func (r *Registry) Ioctl(pdrv uint8, cmd Command, buff []byte) Result {
	bd, ok := r.Lookup(pdrv)
	if !ok {
		return ResultParameterError
	}
	return bd.Ioctl(pdrv, cmd, buff)
}

var defaultRegistry = NewRegistry()

// Default returns the process wide registry.
func Default() *Registry {
	return defaultRegistry
}

// RegisterBlockDevice associates a BlockDevice with a drive number in the
// default registry.
func RegisterBlockDevice(pdrv uint8, dev BlockDevice) {
	defaultRegistry.Register(pdrv, dev)
}

func UnregisterBlockDevice(pdrv uint8) {
	defaultRegistry.Unregister(pdrv)
}
