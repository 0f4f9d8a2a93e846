package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/util"
	rpcdirectory "github.com/unknownunknown1/org.id-directories/rpc/directory"
)

// wrapper over the Neo RPC client providing read-only access to the deployed
// directory contract.
type remoteBlockchain struct {
	rpc    *rpcclient.Client
	reader *rpcdirectory.ContractReader
}

// newRemoteBlockchain dials Neo RPC server and returns remoteBlockchain based
// on the opened connection. Connection and all requests are done within 15s
// timeout.
func newRemoteBlockchain(blockChainRPCEndpoint, contractHash string) (*remoteBlockchain, error) {
	h, err := util.Uint160DecodeStringLE(contractHash)
	if err != nil {
		return nil, fmt.Errorf("decode contract hash: %w", err)
	}

	c, err := rpcclient.New(context.Background(), blockChainRPCEndpoint, rpcclient.Options{
		DialTimeout:    15 * time.Second,
		RequestTimeout: 15 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	err = c.Init()
	if err != nil {
		return nil, fmt.Errorf("RPC client init: %w", err)
	}

	return &remoteBlockchain{
		rpc:    c,
		reader: rpcdirectory.NewReader(invoker.New(c, nil), h),
	}, nil
}

func (x *remoteBlockchain) close() {
	x.rpc.Close()
}
