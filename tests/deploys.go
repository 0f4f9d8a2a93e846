package tests

import (
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

const (
	orgIDPath      = "../orgid"
	tokenPath      = "../token"
	arbitratorPath = "../arbitrator"
	directoryPath  = "../directory"
)

// Deployment parameters shared by the behavioral tests. Timeouts and windows
// are in milliseconds, fees in GAS fractions, deposits in stake token
// fractions, multipliers in basis points.
const (
	arbitrationFee = 1000
	appealFee      = 3000
	appealWindow   = 10_000

	requesterDeposit      = 1_000_000
	challengeBaseDeposit  = 5000
	executionTimeout      = 10_000
	responseTimeout       = 10_000
	withdrawTimeout       = 10_000
	sharedStakeMultiplier = 5000
	winnerStakeMultiplier = 5000
	loserStakeMultiplier  = 10_000

	// Fully funding one side of the first round of a challenge.
	challengeTotal = arbitrationFee + challengeBaseDeposit
)

// Party and status constants as the directory contract reports them.
const (
	partyNone       = 0
	partyRequester  = 1
	partyChallenger = 2

	statusAbsent                = 0
	statusRegistrationRequested = 1
	statusWithdrawalRequested   = 2
	statusChallenged            = 3
	statusDisputed              = 4
	statusRegistered            = 5
)

type directorySuite struct {
	*neotest.Executor

	orgID      *neotest.ContractInvoker
	token      *neotest.ContractInvoker
	arbitrator *neotest.ContractInvoker
	directory  *neotest.ContractInvoker

	directoryHash util.Uint160
}

func deployOrgIDContract(t *testing.T, e *neotest.Executor) util.Uint160 {
	ctr := neotest.CompileFile(t, e.CommitteeHash, orgIDPath, path.Join(orgIDPath, "config.yml"))
	e.DeployContract(t, ctr, nil)
	return ctr.Hash
}

func deployTokenContract(t *testing.T, e *neotest.Executor) util.Uint160 {
	ctr := neotest.CompileFile(t, e.CommitteeHash, tokenPath, path.Join(tokenPath, "config.yml"))
	e.DeployContract(t, ctr, nil)
	return ctr.Hash
}

func deployArbitratorContract(t *testing.T, e *neotest.Executor) util.Uint160 {
	ctr := neotest.CompileFile(t, e.CommitteeHash, arbitratorPath, path.Join(arbitratorPath, "config.yml"))
	e.DeployContract(t, ctr, []any{
		int64(arbitrationFee), int64(appealFee), int64(appealWindow),
	})
	return ctr.Hash
}

func deployDirectoryContract(t *testing.T, e *neotest.Executor, addrOrgID, addrToken, addrArbitrator util.Uint160) util.Uint160 {
	ctr := neotest.CompileFile(t, e.CommitteeHash, directoryPath, path.Join(directoryPath, "config.yml"))
	e.DeployContract(t, ctr, []any{
		addrOrgID, addrToken, addrArbitrator, []byte{},
		int64(requesterDeposit), int64(challengeBaseDeposit),
		int64(executionTimeout), int64(responseTimeout), int64(withdrawTimeout),
		int64(sharedStakeMultiplier), int64(winnerStakeMultiplier), int64(loserStakeMultiplier),
	})
	return ctr.Hash
}

func newDirectorySuite(t *testing.T) *directorySuite {
	e := newExecutor(t)

	orgIDHash := deployOrgIDContract(t, e)
	tokenHash := deployTokenContract(t, e)
	arbitratorHash := deployArbitratorContract(t, e)
	directoryHash := deployDirectoryContract(t, e, orgIDHash, tokenHash, arbitratorHash)

	return &directorySuite{
		Executor:      e,
		orgID:         e.CommitteeInvoker(orgIDHash),
		token:         e.CommitteeInvoker(tokenHash),
		arbitrator:    e.CommitteeInvoker(arbitratorHash),
		directory:     e.CommitteeInvoker(directoryHash),
		directoryHash: directoryHash,
	}
}

// newOrganization creates an identity owned by a fresh account funded with
// GAS and enough stake tokens for one registration.
func (s *directorySuite) newOrganization(t *testing.T) ([]byte, neotest.Signer) {
	owner := s.directory.NewAccount(t)
	id := randomOrgID()

	s.orgID.WithSigners(owner).Invoke(t, stackitem.Null{}, "createOrganization", id, owner.ScriptHash())
	s.token.Invoke(t, stackitem.Null{}, "mint", owner.ScriptHash(), int64(requesterDeposit))
	return id, owner
}

func (s *directorySuite) requestToAdd(t *testing.T, id []byte, owner neotest.Signer) {
	s.directory.WithSigners(owner).Invoke(t, stackitem.Null{}, "requestToAdd", id, owner.ScriptHash())
}

// registerOrganization drives a fresh organization through an unchallenged
// registration request and the execution timeout.
func (s *directorySuite) registerOrganization(t *testing.T) ([]byte, neotest.Signer) {
	id, owner := s.newOrganization(t)
	s.requestToAdd(t, id, owner)
	advanceChainTime(t, s.Executor, executionTimeout+100)
	s.directory.Invoke(t, stackitem.Null{}, "executeTimeout", id)
	return id, owner
}

func (s *directorySuite) organizationItems(t *testing.T, id []byte) []stackitem.Item {
	res, err := s.directory.TestInvoke(t, "getOrganization", id)
	require.NoError(t, err)
	return res.Pop().Array()
}

func (s *directorySuite) organizationStatus(t *testing.T, id []byte) int64 {
	return itemInt(t, s.organizationItems(t, id)[1])
}

func (s *directorySuite) organizationStake(t *testing.T, id []byte) int64 {
	return itemInt(t, s.organizationItems(t, id)[4])
}

// newDispute drives a fresh registration request into a disputed challenge:
// a challenger contests it and the owner answers, both fully funding their
// side of the first round.
func (s *directorySuite) newDispute(t *testing.T) ([]byte, neotest.Signer, neotest.Signer, int64) {
	id, owner := s.newOrganization(t)
	s.requestToAdd(t, id, owner)
	challenger := s.disputeOver(t, id, owner)
	return id, owner, challenger, s.disputeID(t, id, 1)
}

// newRegisteredDispute is newDispute over an already registered organization.
func (s *directorySuite) newRegisteredDispute(t *testing.T) ([]byte, neotest.Signer, neotest.Signer, int64) {
	id, owner := s.registerOrganization(t)
	challenger := s.disputeOver(t, id, owner)
	return id, owner, challenger, s.disputeID(t, id, 1)
}

func (s *directorySuite) disputeOver(t *testing.T, id []byte, owner neotest.Signer) neotest.Signer {
	challenger := s.directory.NewAccount(t)
	s.directory.WithSigners(challenger).Invoke(t, stackitem.Null{}, "challengeOrganization",
		id, challenger.ScriptHash(), "", int64(challengeTotal))
	s.directory.WithSigners(owner).Invoke(t, stackitem.Null{}, "acceptChallenge",
		id, owner.ScriptHash(), "", int64(challengeTotal))
	return challenger
}

func (s *directorySuite) challengeItems(t *testing.T, id []byte, cIdx int64) []stackitem.Item {
	res, err := s.directory.TestInvoke(t, "getChallenge", id, cIdx)
	require.NoError(t, err)
	return res.Pop().Array()
}

func (s *directorySuite) disputeID(t *testing.T, id []byte, cIdx int64) int64 {
	return itemInt(t, s.challengeItems(t, id, cIdx)[5])
}

func (s *directorySuite) roundItems(t *testing.T, id []byte, cIdx, rIdx int64) []stackitem.Item {
	res, err := s.directory.TestInvoke(t, "getRound", id, cIdx, rIdx)
	require.NoError(t, err)
	return res.Pop().Array()
}

func (s *directorySuite) contributionItems(t *testing.T, id []byte, cIdx, rIdx int64, acc util.Uint160) []stackitem.Item {
	res, err := s.directory.TestInvoke(t, "getContributions", id, cIdx, rIdx, acc)
	require.NoError(t, err)
	return res.Pop().Array()
}

func (s *directorySuite) tokenBalance(t *testing.T, acc util.Uint160) int64 {
	res, err := s.token.TestInvoke(t, "balanceOf", acc)
	require.NoError(t, err)
	return res.Pop().BigInt().Int64()
}

func (s *directorySuite) registeredCount(t *testing.T) int64 {
	res, err := s.directory.TestInvoke(t, "registeredCount")
	require.NoError(t, err)
	return res.Pop().BigInt().Int64()
}

func (s *directorySuite) requestedCount(t *testing.T) int64 {
	res, err := s.directory.TestInvoke(t, "requestedCount")
	require.NoError(t, err)
	return res.Pop().BigInt().Int64()
}

func itemInt(t *testing.T, item stackitem.Item) int64 {
	v, err := item.TryInteger()
	require.NoError(t, err)
	return v.Int64()
}

func itemBool(t *testing.T, item stackitem.Item) bool {
	v, err := item.TryBool()
	require.NoError(t, err)
	return v
}

