//go:build linux

package numa

import (
	"os"
	"sort"
	"strconv"
	"strings"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	cerrors "github.com/abdoElHodaky/tradsys-core/internal/common/errors"
)

const sysNodeDir = "/sys/devices/system/node"

// Detect enumerates /sys/devices/system/node/node* (§4.4 Topology
// discovery), parsing each node's cpulist and meminfo.
func Detect(logger *zap.Logger) (Topology, error) {
	entries, err := os.ReadDir(sysNodeDir)
	if err != nil {
		return Topology{}, cerrors.Wrap(err, cerrors.IoError, "reading "+sysNodeDir)
	}

	var nodes []Node
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "node") {
			continue
		}
		idStr := strings.TrimPrefix(name, "node")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			continue
		}

		cpulistPath := sysNodeDir + "/" + name + "/cpulist"
		raw, err := os.ReadFile(cpulistPath)
		if err != nil {
			return Topology{}, cerrors.Wrap(err, cerrors.IoError, "reading "+cpulistPath)
		}
		cpus, err := parseCPUList(strings.TrimSpace(string(raw)))
		if err != nil {
			return Topology{}, err
		}

		memGB := 0.0
		meminfoPath := sysNodeDir + "/" + name + "/meminfo"
		if raw, err := os.ReadFile(meminfoPath); err == nil {
			memGB = parseMemInfo(string(raw))
		}

		nodes = append(nodes, Node{ID: id, CPUs: cpus, MemoryGB: memGB})
	}

	if len(nodes) == 0 {
		return Topology{}, cerrors.New(cerrors.IoError, "no NUMA nodes detected")
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	current := currentNumaNode()
	return Topology{Nodes: nodes, TotalNodes: len(nodes), CurrentNode: current}, nil
}

// parseCPUList parses a cpulist grammar: range ::= int ("-" int)?;
// list ::= range ("," range)*.
func parseCPUList(s string) ([]int, error) {
	var cpus []int
	if s == "" {
		return cpus, nil
	}
	for _, part := range strings.Split(s, ",") {
		if strings.Contains(part, "-") {
			bounds := strings.SplitN(part, "-", 2)
			start, err1 := strconv.Atoi(bounds[0])
			end, err2 := strconv.Atoi(bounds[1])
			if err1 != nil || err2 != nil {
				return nil, cerrors.Newf(cerrors.InvalidArgument, "invalid cpu range %q", part)
			}
			for c := start; c <= end; c++ {
				cpus = append(cpus, c)
			}
		} else {
			c, err := strconv.Atoi(part)
			if err != nil {
				return nil, cerrors.Newf(cerrors.InvalidArgument, "invalid cpu id %q", part)
			}
			cpus = append(cpus, c)
		}
	}
	return cpus, nil
}

// parseMemInfo extracts MemTotal in KB from a node's meminfo file and
// converts it to GB. Returns 0 if the line is absent or malformed.
func parseMemInfo(content string) float64 {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "Node") && strings.Contains(line, "MemTotal:") {
			fields := strings.Fields(line)
			if len(fields) >= 4 {
				kb, err := strconv.ParseUint(fields[3], 10, 64)
				if err == nil {
					return float64(kb) / 1024.0 / 1024.0
				}
			}
		}
	}
	return 0
}

// currentNumaNode uses the getcpu syscall to find which node the
// calling thread is running on, falling back to node 0.
func currentNumaNode() int {
	var cpu, node uint32
	_, _, errno := unix.Syscall(unix.SYS_GETCPU,
		uintptr(unsafe.Pointer(&cpu)),
		uintptr(unsafe.Pointer(&node)),
		0)
	if errno != 0 {
		return 0
	}
	return int(node)
}

// bindCurrentTo sets the calling thread's memory policy to MPOL_BIND on
// nodeID and its CPU affinity to that node's CPU set.
func bindCurrentTo(topo Topology, nodeID int) error {
	if err := setMemPolicy(nodeID); err != nil {
		return err
	}
	return setCPUAffinity(topo, nodeID)
}

func setMemPolicy(nodeID int) error {
	var mask uint64 = 1 << uint(nodeID)
	_, _, errno := unix.Syscall(unix.SYS_SET_MEMPOLICY,
		uintptr(unix.MPOL_BIND),
		uintptr(unsafe.Pointer(&mask)),
		uintptr(64))
	if errno != 0 {
		return cerrors.Newf(cerrors.IoError, "set_mempolicy failed: %v", errno)
	}
	return nil
}

func setCPUAffinity(topo Topology, nodeID int) error {
	var target Node
	found := false
	for _, n := range topo.Nodes {
		if n.ID == nodeID {
			target = n
			found = true
			break
		}
	}
	if !found || len(target.CPUs) == 0 {
		return cerrors.Newf(cerrors.IoError, "no CPUs available on node %d", nodeID)
	}

	var set unix.CPUSet
	set.Zero()
	for _, cpu := range target.CPUs {
		set.Set(cpu)
	}
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return cerrors.Wrap(err, cerrors.IoError, "sched_setaffinity failed")
	}
	return nil
}

// AllocateHuge requests an anonymous, private, huge-page-backed mapping
// of sizeMB and binds it to nodeID.
func AllocateHuge(sizeMB int, nodeID int) ([]byte, error) {
	if sizeMB <= 0 {
		return nil, cerrors.New(cerrors.InvalidArgument, "huge page size must be positive")
	}
	size := sizeMB * 1024 * 1024

	data, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS|unix.MAP_HUGETLB)
	if err != nil {
		return nil, cerrors.Wrap(err, cerrors.IoError, "huge page mmap failed")
	}

	var mask uint64 = 1 << uint(nodeID)
	unix.Syscall6(unix.SYS_MBIND,
		uintptr(unsafe.Pointer(&data[0])),
		uintptr(size),
		uintptr(unix.MPOL_BIND),
		uintptr(unsafe.Pointer(&mask)),
		64, 0)
	// The mbind result is discarded: the pages stay huge-page backed even
	// if node binding did not take effect, and a binding failure is not
	// reported to the caller.

	return data, nil
}

// DeallocateHuge unmaps a region returned by AllocateHuge.
func DeallocateHuge(region []byte) error {
	if err := unix.Munmap(region); err != nil {
		return cerrors.Wrap(err, cerrors.IoError, "munmap failed")
	}
	return nil
}
