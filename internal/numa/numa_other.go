//go:build !linux

package numa

import (
	"go.uber.org/zap"

	cerrors "github.com/abdoElHodaky/tradsys-core/internal/common/errors"
)

// Detect returns Unsupported on non-Linux platforms per §9's
// cross-platform degradation note: the component must compile and
// return Unsupported rather than refusing to link.
func Detect(logger *zap.Logger) (Topology, error) {
	return Topology{}, cerrors.New(cerrors.Unsupported, "NUMA topology discovery requires Linux")
}

func bindCurrentTo(topo Topology, nodeID int) error {
	return cerrors.New(cerrors.Unsupported, "NUMA thread binding requires Linux")
}

// AllocateHuge returns Unsupported on non-Linux platforms.
func AllocateHuge(sizeMB int, nodeID int) ([]byte, error) {
	return nil, cerrors.New(cerrors.Unsupported, "huge page allocation requires Linux")
}

// DeallocateHuge returns Unsupported on non-Linux platforms.
func DeallocateHuge(region []byte) error {
	return cerrors.New(cerrors.Unsupported, "huge page deallocation requires Linux")
}
