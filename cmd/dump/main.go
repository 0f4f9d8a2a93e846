package main

import (
	"flag"
	"fmt"
	"log"
	"math/big"

	"github.com/mr-tron/base58"
	"github.com/unknownunknown1/org.id-directories/directory"
	rpcdirectory "github.com/unknownunknown1/org.id-directories/rpc/directory"
)

const pageSize = 50

func main() {
	neoRPCEndpoint := flag.String("rpc", "", "Network address of the Neo RPC server")
	contractHash := flag.String("contract", "", "Hash of the directory contract (LE hex)")

	flag.Parse()

	switch {
	case *neoRPCEndpoint == "":
		log.Fatal("missing Neo RPC endpoint")
	case *contractHash == "":
		log.Fatal("missing directory contract hash")
	}

	b, err := newRemoteBlockchain(*neoRPCEndpoint, *contractHash)
	if err != nil {
		log.Fatal(fmt.Errorf("init remote blockchain: %w", err))
	}

	defer b.close()

	err = dumpDirectory(b.reader)
	if err != nil {
		log.Fatal(err)
	}
}

func dumpDirectory(reader *rpcdirectory.ContractReader) error {
	version, err := reader.Version()
	if err != nil {
		return fmt.Errorf("get contract version: %w", err)
	}

	fmt.Printf("directory contract version %d\n", version)

	registered, err := reader.RegisteredCount()
	if err != nil {
		return fmt.Errorf("get number of registered organizations: %w", err)
	}

	fmt.Printf("registered organizations: %d\n", registered)

	err = dumpSegment(reader, "registered", reader.RegisteredOrganizations)
	if err != nil {
		return err
	}

	requested, err := reader.RequestedCount()
	if err != nil {
		return fmt.Errorf("get number of requested organizations: %w", err)
	}

	fmt.Printf("pending registration requests: %d\n", requested)

	return dumpSegment(reader, "requested", reader.RequestedOrganizations)
}

// dumpSegment pages through one of the two membership lists and prints every
// organization with its current state.
func dumpSegment(reader *rpcdirectory.ContractReader, label string, list func(offset, limit *big.Int) ([][]byte, error)) error {
	for offset := int64(0); ; offset += pageSize {
		page, err := list(big.NewInt(offset), big.NewInt(pageSize))
		if err != nil {
			return fmt.Errorf("list %s organizations at offset %d: %w", label, offset, err)
		}

		for _, id := range page {
			org, err := reader.GetOrganization(id)
			if err != nil {
				return fmt.Errorf("get organization '%s': %w", base58.Encode(id), err)
			}

			fmt.Printf("  [%s] %s status=%s stake=%d challenges=%d\n",
				label, base58.Encode(id), statusString(org.Status), org.Stake, org.ChallengeCount)
		}

		if len(page) < pageSize {
			return nil
		}
	}
}

func statusString(status *big.Int) string {
	switch status.Int64() {
	case directory.StatusAbsent:
		return "Absent"
	case directory.StatusRegistrationRequested:
		return "RegistrationRequested"
	case directory.StatusWithdrawalRequested:
		return "WithdrawalRequested"
	case directory.StatusChallenged:
		return "Challenged"
	case directory.StatusDisputed:
		return "Disputed"
	case directory.StatusRegistered:
		return "Registered"
	default:
		return "Unknown"
	}
}
