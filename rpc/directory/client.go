// Package directory contains RPC wrappers for the Organization Directory
// contract.
package directory

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Organization is a contract-specific directory.Organization type used by its
// methods.
type Organization struct {
	ID                    []byte
	Status                *big.Int
	Requester             util.Uint160
	LastStatusChange      *big.Int
	Stake                 *big.Int
	WithdrawalRequestTime *big.Int
	ActiveChallenge       *big.Int
	ChallengeCount        *big.Int
}

// Challenge is a contract-specific directory.Challenge type used by its
// methods.
type Challenge struct {
	Challenger          util.Uint160
	Arbitrator          util.Uint160
	ArbitratorExtraData []byte
	MetaEvidenceID      *big.Int
	Disputed            bool
	DisputeID           *big.Int
	Resolved            bool
	Ruling              *big.Int
	RoundCount          *big.Int
}

// Round is a contract-specific directory.Round type used by its methods.
type Round struct {
	RequesterFees  *big.Int
	ChallengerFees *big.Int
	RequesterPaid  bool
	ChallengerPaid bool
	FeeRewards     *big.Int
}

// Contribution is a contract-specific directory.Contribution type used by its
// methods.
type Contribution struct {
	Requester  *big.Int
	Challenger *big.Int
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
	CallAndExpandIterator(contract util.Uint160, method string, maxItems int, params ...any) (*result.Invoke, error)
	TerminateSession(sessionID uuid.UUID) error
	TraverseIterator(sessionID uuid.UUID, iterator *result.Iterator, num int) ([]stackitem.Item, error)
}

// ContractReader provides an interface to call read-only methods of the
// Organization Directory contract.
type ContractReader struct {
	invoker Invoker
	hash    util.Uint160
}

// NewReader creates an instance of ContractReader using the provided contract
// hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker: invoker, hash: hash}
}

// Version invokes `version` method of the contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// GetOrganization invokes `getOrganization` method of the contract.
func (c *ContractReader) GetOrganization(id []byte) (*Organization, error) {
	return itemToOrganization(unwrap.Item(c.invoker.Call(c.hash, "getOrganization", id)))
}

// GetChallenge invokes `getChallenge` method of the contract.
func (c *ContractReader) GetChallenge(id []byte, challenge *big.Int) (*Challenge, error) {
	return itemToChallenge(unwrap.Item(c.invoker.Call(c.hash, "getChallenge", id, challenge)))
}

// GetRound invokes `getRound` method of the contract.
func (c *ContractReader) GetRound(id []byte, challenge, round *big.Int) (*Round, error) {
	return itemToRound(unwrap.Item(c.invoker.Call(c.hash, "getRound", id, challenge, round)))
}

// GetContributions invokes `getContributions` method of the contract.
func (c *ContractReader) GetContributions(id []byte, challenge, round *big.Int, contributor util.Uint160) (*Contribution, error) {
	return itemToContribution(unwrap.Item(c.invoker.Call(c.hash, "getContributions", id, challenge, round, contributor)))
}

// RegisteredCount invokes `registeredCount` method of the contract.
func (c *ContractReader) RegisteredCount() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "registeredCount"))
}

// RequestedCount invokes `requestedCount` method of the contract.
func (c *ContractReader) RequestedCount() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "requestedCount"))
}

// RegisteredOrganizations invokes `registeredOrganizations` method of the
// contract.
func (c *ContractReader) RegisteredOrganizations(offset, limit *big.Int) ([][]byte, error) {
	return unwrap.ArrayOfBytes(c.invoker.Call(c.hash, "registeredOrganizations", offset, limit))
}

// RequestedOrganizations invokes `requestedOrganizations` method of the
// contract.
func (c *ContractReader) RequestedOrganizations(offset, limit *big.Int) ([][]byte, error) {
	return unwrap.ArrayOfBytes(c.invoker.Call(c.hash, "requestedOrganizations", offset, limit))
}

// Organizations invokes `organizations` method of the contract. The returned
// iterator is traversed via TraverseIterator and closed via TerminateSession
// of the reader's Invoker.
func (c *ContractReader) Organizations() (uuid.UUID, result.Iterator, error) {
	return unwrap.SessionIterator(c.invoker.Call(c.hash, "organizations"))
}

// OrganizationsExpanded is similar to Organizations (uses the same contract
// method), but can be useful if the server used doesn't support sessions and
// doesn't expand iterators. It creates a script that iterates over the
// iterator values and returns values up to the limit.
func (c *ContractReader) OrganizationsExpanded(limit int) ([]stackitem.Item, error) {
	return unwrap.Array(c.invoker.CallAndExpandIterator(c.hash, "organizations", limit))
}

func itemToOrganization(item stackitem.Item, err error) (*Organization, error) {
	if err != nil {
		return nil, err
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, errors.New("not an array")
	}
	if len(arr) != 8 {
		return nil, errors.New("wrong number of structure elements")
	}

	var res Organization
	if res.ID, err = arr[0].TryBytes(); err != nil {
		return nil, fmt.Errorf("field ID: %w", err)
	}
	if res.Status, err = arr[1].TryInteger(); err != nil {
		return nil, fmt.Errorf("field Status: %w", err)
	}
	if res.Requester, err = itemToUint160(arr[2]); err != nil {
		return nil, fmt.Errorf("field Requester: %w", err)
	}
	if res.LastStatusChange, err = arr[3].TryInteger(); err != nil {
		return nil, fmt.Errorf("field LastStatusChange: %w", err)
	}
	if res.Stake, err = arr[4].TryInteger(); err != nil {
		return nil, fmt.Errorf("field Stake: %w", err)
	}
	if res.WithdrawalRequestTime, err = arr[5].TryInteger(); err != nil {
		return nil, fmt.Errorf("field WithdrawalRequestTime: %w", err)
	}
	if res.ActiveChallenge, err = arr[6].TryInteger(); err != nil {
		return nil, fmt.Errorf("field ActiveChallenge: %w", err)
	}
	if res.ChallengeCount, err = arr[7].TryInteger(); err != nil {
		return nil, fmt.Errorf("field ChallengeCount: %w", err)
	}
	return &res, nil
}

func itemToChallenge(item stackitem.Item, err error) (*Challenge, error) {
	if err != nil {
		return nil, err
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, errors.New("not an array")
	}
	if len(arr) != 9 {
		return nil, errors.New("wrong number of structure elements")
	}

	var res Challenge
	if res.Challenger, err = itemToUint160(arr[0]); err != nil {
		return nil, fmt.Errorf("field Challenger: %w", err)
	}
	if res.Arbitrator, err = itemToUint160(arr[1]); err != nil {
		return nil, fmt.Errorf("field Arbitrator: %w", err)
	}
	if res.ArbitratorExtraData, err = arr[2].TryBytes(); err != nil {
		return nil, fmt.Errorf("field ArbitratorExtraData: %w", err)
	}
	if res.MetaEvidenceID, err = arr[3].TryInteger(); err != nil {
		return nil, fmt.Errorf("field MetaEvidenceID: %w", err)
	}
	if res.Disputed, err = arr[4].TryBool(); err != nil {
		return nil, fmt.Errorf("field Disputed: %w", err)
	}
	if res.DisputeID, err = arr[5].TryInteger(); err != nil {
		return nil, fmt.Errorf("field DisputeID: %w", err)
	}
	if res.Resolved, err = arr[6].TryBool(); err != nil {
		return nil, fmt.Errorf("field Resolved: %w", err)
	}
	if res.Ruling, err = arr[7].TryInteger(); err != nil {
		return nil, fmt.Errorf("field Ruling: %w", err)
	}
	if res.RoundCount, err = arr[8].TryInteger(); err != nil {
		return nil, fmt.Errorf("field RoundCount: %w", err)
	}
	return &res, nil
}

func itemToRound(item stackitem.Item, err error) (*Round, error) {
	if err != nil {
		return nil, err
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, errors.New("not an array")
	}
	if len(arr) != 5 {
		return nil, errors.New("wrong number of structure elements")
	}

	var res Round
	if res.RequesterFees, err = arr[0].TryInteger(); err != nil {
		return nil, fmt.Errorf("field RequesterFees: %w", err)
	}
	if res.ChallengerFees, err = arr[1].TryInteger(); err != nil {
		return nil, fmt.Errorf("field ChallengerFees: %w", err)
	}
	if res.RequesterPaid, err = arr[2].TryBool(); err != nil {
		return nil, fmt.Errorf("field RequesterPaid: %w", err)
	}
	if res.ChallengerPaid, err = arr[3].TryBool(); err != nil {
		return nil, fmt.Errorf("field ChallengerPaid: %w", err)
	}
	if res.FeeRewards, err = arr[4].TryInteger(); err != nil {
		return nil, fmt.Errorf("field FeeRewards: %w", err)
	}
	return &res, nil
}

func itemToContribution(item stackitem.Item, err error) (*Contribution, error) {
	if err != nil {
		return nil, err
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, errors.New("not an array")
	}
	if len(arr) != 2 {
		return nil, errors.New("wrong number of structure elements")
	}

	var res Contribution
	if res.Requester, err = arr[0].TryInteger(); err != nil {
		return nil, fmt.Errorf("field Requester: %w", err)
	}
	if res.Challenger, err = arr[1].TryInteger(); err != nil {
		return nil, fmt.Errorf("field Challenger: %w", err)
	}
	return &res, nil
}

func itemToUint160(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	return util.Uint160DecodeBytesBE(b)
}
