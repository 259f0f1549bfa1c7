package numa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildAssignmentsSingleNode(t *testing.T) {
	assert.Empty(t, buildAssignments(1))
}

func TestBuildAssignmentsTwoNodes(t *testing.T) {
	a := buildAssignments(2)
	assert.Equal(t, 0, a["market_data_ingestion"])
	assert.Equal(t, 0, a["order_processing"])
	assert.Equal(t, 1, a["risk_calculation"])
	assert.Equal(t, 1, a["portfolio_calculation"])
}

func TestBuildAssignmentsFourNodes(t *testing.T) {
	a := buildAssignments(4)
	assert.Equal(t, 0, a["market_data_ingestion"])
	assert.Equal(t, 1, a["order_processing"])
	assert.Equal(t, 2, a["risk_calculation"])
	assert.Equal(t, 3, a["portfolio_calculation"])
}

func TestBuildAssignmentsRoundRobinAboveFour(t *testing.T) {
	a := buildAssignments(6)
	for i, svc := range serviceTable {
		assert.Equal(t, i%6, a[svc])
	}
}

func TestNodeForServiceFallsBackToCurrentNode(t *testing.T) {
	s := &Scheduler{
		topology:    Topology{TotalNodes: 2, CurrentNode: 1},
		assignments: buildAssignments(2),
	}
	assert.Equal(t, 1, s.NodeForService("unknown_service"))
	assert.Equal(t, 0, s.NodeForService("market_data_ingestion"))
}
