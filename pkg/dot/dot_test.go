package dot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veyra-ai/hypercore/pkg/hypergraph"
)

func TestExportContainsDiamondAndEdges(t *testing.T) {
	s := hypergraph.NewStore()
	s.AddEdge([]string{"A", "B"}, "composes", []string{"C"}, hypergraph.Provenance{})

	out := Export(s)
	assert.True(t, strings.Contains(out, "digraph hypergraph"))
	assert.True(t, strings.Contains(out, "shape=diamond"))
	assert.True(t, strings.Contains(out, `label="composes"`))
}
