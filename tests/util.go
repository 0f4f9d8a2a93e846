package tests

import (
	"math/rand"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

func iteratorToArray(iter *storage.Iterator) []stackitem.Item {
	stackItems := make([]stackitem.Item, 0)
	for iter.Next() {
		stackItems = append(stackItems, iter.Value())
	}
	return stackItems
}

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

func randomBytes(n int) []byte {
	a := make([]byte, n)
	rand.Read(a) //nolint:staticcheck // SA1019: rand.Read has been deprecated since Go 1.20
	return a
}

func randomOrgID() []byte {
	return randomBytes(32)
}

// advanceChainTime adds an empty block whose timestamp lies the given number
// of milliseconds after the current top block, moving runtime.GetTime forward
// for subsequent transactions.
func advanceChainTime(t *testing.T, e *neotest.Executor, ms uint64) {
	b := e.NewUnsignedBlock(t)
	b.Timestamp = e.TopBlock(t).Timestamp + ms
	require.NoError(t, e.Chain.AddBlock(e.SignBlock(b)))
}
