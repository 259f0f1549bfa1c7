// Package numa implements the NUMA-aware thread placement facility
// from §4.4: topology discovery, a static service-to-node placement
// policy, affinity/memory-policy binding, and huge-page allocation.
// Grounded on the original Rust NumaScheduler/NumaAllocator
// (services/calculation-engine/src/numa_optimizer.rs): this package
// keeps the same topology model and service table but reaches for
// golang.org/x/sys/unix instead of cgo+libc for the underlying
// syscalls.
package numa

import (
	"runtime"

	"go.uber.org/zap"

	cerrors "github.com/abdoElHodaky/tradsys-core/internal/common/errors"
)

// Node describes one NUMA node's CPUs and memory capacity.
type Node struct {
	ID       int
	CPUs     []int
	MemoryGB float64
}

// Topology is the discovered node layout and the caller's current node.
type Topology struct {
	Nodes       []Node
	TotalNodes  int
	CurrentNode int
}

// serviceTable is the ordered list used for the round-robin case (3
// nodes, or more than 4);
// order matches the original's vec! literal exactly.
var serviceTable = []string{
	"market_data_ingestion",
	"order_processing",
	"risk_calculation",
	"portfolio_calculation",
	"technical_analysis",
	"news_processing",
}

// Scheduler binds the service placement policy to a discovered Topology.
type Scheduler struct {
	topology    Topology
	assignments map[string]int
	logger      *zap.Logger
}

// NewScheduler detects the local topology and computes the static
// service-to-node assignment table from its cardinality (§4.4 Service
// placement policy).
func NewScheduler(logger *zap.Logger) (*Scheduler, error) {
	topo, err := Detect(logger)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		topology:    topo,
		assignments: buildAssignments(topo.TotalNodes),
		logger:      logger,
	}, nil
}

func buildAssignments(totalNodes int) map[string]int {
	assignments := make(map[string]int)
	switch {
	case totalNodes < 2:
		// Single node: all services run unconstrained.
	case totalNodes == 2:
		assignments["market_data_ingestion"] = 0
		assignments["order_processing"] = 0
		assignments["risk_calculation"] = 1
		assignments["portfolio_calculation"] = 1
	case totalNodes == 4:
		assignments["market_data_ingestion"] = 0
		assignments["order_processing"] = 1
		assignments["risk_calculation"] = 2
		assignments["portfolio_calculation"] = 3
	default:
		for i, svc := range serviceTable {
			assignments[svc] = i % totalNodes
		}
	}
	return assignments
}

// Topology returns the discovered node layout.
func (s *Scheduler) Topology() Topology {
	return s.topology
}

// NodeForService returns the node assigned to a well-known service
// name, falling back to the caller's current node for unknown services
// or single-node systems.
func (s *Scheduler) NodeForService(service string) int {
	if node, ok := s.assignments[service]; ok {
		return node
	}
	return s.topology.CurrentNode
}

// SpawnOn runs fn on a new goroutine pinned (via LockOSThread) to a
// native thread bound to nodeID.
func (s *Scheduler) SpawnOn(nodeID int, fn func()) error {
	if nodeID < 0 || nodeID >= s.topology.TotalNodes {
		return cerrors.Newf(cerrors.InvalidArgument, "invalid numa node %d", nodeID)
	}
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := s.BindCurrentTo(nodeID); err != nil && s.logger != nil {
			s.logger.Warn("failed to bind thread to numa node", zap.Int("node", nodeID), zap.Error(err))
		}
		fn()
	}()
	return nil
}

// BindCurrentTo sets the calling OS thread's CPU affinity and memory
// policy to nodeID. Implemented per-platform; see numa_linux.go and
// numa_other.go.
func (s *Scheduler) BindCurrentTo(nodeID int) error {
	if nodeID < 0 || nodeID >= s.topology.TotalNodes {
		return cerrors.Newf(cerrors.InvalidArgument, "invalid numa node %d", nodeID)
	}
	return bindCurrentTo(s.topology, nodeID)
}
