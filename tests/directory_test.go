package tests

import (
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

func TestDirectoryDeployValidation(t *testing.T) {
	e := newExecutor(t)

	orgIDHash := deployOrgIDContract(t, e)
	tokenHash := deployTokenContract(t, e)
	arbitratorHash := deployArbitratorContract(t, e)

	ctr := neotest.CompileFile(t, e.CommitteeHash, directoryPath, path.Join(directoryPath, "config.yml"))
	e.DeployContractCheckFAULT(t, ctr, []any{
		orgIDHash, tokenHash, []byte{1, 2, 3}, []byte{},
		int64(requesterDeposit), int64(challengeBaseDeposit),
		int64(executionTimeout), int64(responseTimeout), int64(withdrawTimeout),
		int64(sharedStakeMultiplier), int64(winnerStakeMultiplier), int64(loserStakeMultiplier),
	}, "incorrect length of contract script hash")

	e.DeployContractCheckFAULT(t, ctr, []any{
		orgIDHash, tokenHash, arbitratorHash, []byte{},
		int64(0), int64(challengeBaseDeposit),
		int64(executionTimeout), int64(responseTimeout), int64(withdrawTimeout),
		int64(sharedStakeMultiplier), int64(winnerStakeMultiplier), int64(loserStakeMultiplier),
	}, "requester deposit must be positive")
}

func TestDirectoryRequestToAdd(t *testing.T) {
	s := newDirectorySuite(t)

	id, owner := s.newOrganization(t)
	cOwner := s.directory.WithSigners(owner)

	cOwner.InvokeFail(t, "incorrect length of organization ID", "requestToAdd", []byte{1, 2, 3}, owner.ScriptHash())
	cOwner.InvokeFail(t, "unknown or inactive organization", "requestToAdd", randomOrgID(), owner.ScriptHash())

	stranger := s.directory.NewAccount(t)
	s.directory.WithSigners(stranger).InvokeFail(t, "requester is not the owner or an accepted director",
		"requestToAdd", id, stranger.ScriptHash())

	s.orgID.WithSigners(owner).Invoke(t, stackitem.Null{}, "toggleActiveState", id)
	cOwner.InvokeFail(t, "unknown or inactive organization", "requestToAdd", id, owner.ScriptHash())
	s.orgID.WithSigners(owner).Invoke(t, stackitem.Null{}, "toggleActiveState", id)

	cOwner.Invoke(t, stackitem.Null{}, "requestToAdd", id, owner.ScriptHash())
	require.EqualValues(t, statusRegistrationRequested, s.organizationStatus(t, id))
	require.EqualValues(t, requesterDeposit, s.organizationStake(t, id))
	require.EqualValues(t, 0, s.tokenBalance(t, owner.ScriptHash()))
	require.EqualValues(t, requesterDeposit, s.tokenBalance(t, s.directoryHash))
	require.EqualValues(t, 1, s.requestedCount(t))
	require.EqualValues(t, 0, s.registeredCount(t))

	cOwner.InvokeFail(t, "status prohibits the registration request", "requestToAdd", id, owner.ScriptHash())
}

func TestDirectoryRequestToAddByDirector(t *testing.T) {
	s := newDirectorySuite(t)

	id, owner := s.newOrganization(t)
	director := s.directory.NewAccount(t)
	s.token.Invoke(t, stackitem.Null{}, "mint", director.ScriptHash(), int64(requesterDeposit))

	// Designated but unaccepted directors have no authority yet.
	s.orgID.WithSigners(owner).Invoke(t, stackitem.Null{}, "transferDirectorship", id, director.ScriptHash())
	s.directory.WithSigners(director).InvokeFail(t, "requester is not the owner or an accepted director",
		"requestToAdd", id, director.ScriptHash())

	s.orgID.WithSigners(director).Invoke(t, stackitem.Null{}, "acceptDirectorship", id)
	s.directory.WithSigners(director).Invoke(t, stackitem.Null{}, "requestToAdd", id, director.ScriptHash())
	require.EqualValues(t, statusRegistrationRequested, s.organizationStatus(t, id))
}

func TestDirectoryExecuteTimeout(t *testing.T) {
	s := newDirectorySuite(t)

	id, owner := s.newOrganization(t)
	s.requestToAdd(t, id, owner)

	s.directory.InvokeFail(t, "timeout has not passed yet", "executeTimeout", id)

	advanceChainTime(t, s.Executor, executionTimeout+100)
	s.directory.Invoke(t, stackitem.Null{}, "executeTimeout", id)

	require.EqualValues(t, statusRegistered, s.organizationStatus(t, id))
	require.EqualValues(t, 1, s.registeredCount(t))
	require.EqualValues(t, 0, s.requestedCount(t))
	// The stake stays escrowed while the organization is listed.
	require.EqualValues(t, requesterDeposit, s.organizationStake(t, id))

	s.directory.InvokeFail(t, "status prohibits the timeout execution", "executeTimeout", id)
}

func TestDirectoryUnansweredChallenge(t *testing.T) {
	s := newDirectorySuite(t)

	id, owner := s.newOrganization(t)
	s.requestToAdd(t, id, owner)

	challenger := s.directory.NewAccount(t)
	cChallenger := s.directory.WithSigners(challenger)

	cChallenger.InvokeFail(t, "insufficient funding of the challenge",
		"challengeOrganization", id, challenger.ScriptHash(), "", int64(100))

	// Overpayment is accepted, only the required total is retained.
	cChallenger.Invoke(t, stackitem.Null{}, "challengeOrganization",
		id, challenger.ScriptHash(), "", int64(challengeTotal+1000))
	require.EqualValues(t, statusChallenged, s.organizationStatus(t, id))

	round := s.roundItems(t, id, 1, 0)
	require.EqualValues(t, 0, itemInt(t, round[0]))
	require.EqualValues(t, challengeTotal, itemInt(t, round[1]))
	require.True(t, itemBool(t, round[3]))
	require.EqualValues(t, challengeTotal, itemInt(t, round[4]))

	s.directory.InvokeFail(t, "timeout has not passed yet", "executeTimeout", id)

	advanceChainTime(t, s.Executor, responseTimeout+100)
	s.directory.WithSigners(owner).InvokeFail(t, "response window is closed",
		"acceptChallenge", id, owner.ScriptHash(), "", int64(challengeTotal))

	s.directory.Invoke(t, stackitem.Null{}, "executeTimeout", id)
	require.EqualValues(t, statusAbsent, s.organizationStatus(t, id))
	require.EqualValues(t, requesterDeposit, s.tokenBalance(t, challenger.ScriptHash()))
	require.EqualValues(t, 0, s.requestedCount(t))
	require.EqualValues(t, 0, s.registeredCount(t))

	ch := s.challengeItems(t, id, 1)
	require.True(t, itemBool(t, ch[6]))
	require.EqualValues(t, partyNone, itemInt(t, ch[7]))

	// The requester side never paid, so the challenger's contribution is
	// refunded unreduced.
	s.directory.Invoke(t, challengeTotal, "withdrawFeesAndRewards", challenger.ScriptHash(), id, 1, 0)
	s.directory.Invoke(t, 0, "withdrawFeesAndRewards", challenger.ScriptHash(), id, 1, 0)
}

func TestDirectoryDisputeChallengerWins(t *testing.T) {
	s := newDirectorySuite(t)

	id, owner, challenger, disputeID := s.newDispute(t)
	require.EqualValues(t, 1, disputeID)
	require.EqualValues(t, statusDisputed, s.organizationStatus(t, id))

	round := s.roundItems(t, id, 1, 0)
	require.EqualValues(t, challengeTotal, itemInt(t, round[0]))
	require.EqualValues(t, challengeTotal, itemInt(t, round[1]))
	require.EqualValues(t, 2*challengeTotal-arbitrationFee, itemInt(t, round[4]))

	s.directory.WithSigners(owner).InvokeFail(t, "no challenge to accept",
		"acceptChallenge", id, owner.ScriptHash(), "", int64(challengeTotal))

	s.arbitrator.Invoke(t, stackitem.Null{}, "giveRuling", disputeID, int64(partyChallenger))

	// Loser total: appealFee + 100% loser multiplier. Winner total:
	// appealFee + 50% winner multiplier.
	loserTotal := int64(appealFee + appealFee*loserStakeMultiplier/10000)
	winnerTotal := int64(appealFee + appealFee*winnerStakeMultiplier/10000)

	s.directory.WithSigners(owner).Invoke(t, stackitem.Null{}, "fundAppeal",
		id, owner.ScriptHash(), int64(partyRequester), loserTotal)
	s.directory.WithSigners(challenger).Invoke(t, stackitem.Null{}, "fundAppeal",
		id, challenger.ScriptHash(), int64(partyChallenger), winnerTotal)

	// Both sides fully funded: the dispute went back to the arbitrator and a
	// fresh round was appended.
	require.EqualValues(t, 3, itemInt(t, s.challengeItems(t, id, 1)[8]))
	round = s.roundItems(t, id, 1, 1)
	require.True(t, itemBool(t, round[2]))
	require.True(t, itemBool(t, round[3]))
	require.EqualValues(t, loserTotal+winnerTotal-appealFee, itemInt(t, round[4]))

	s.arbitrator.Invoke(t, stackitem.Null{}, "giveRuling", disputeID, int64(partyChallenger))
	advanceChainTime(t, s.Executor, appealWindow+100)
	s.arbitrator.Invoke(t, stackitem.Null{}, "executeRuling", disputeID)

	require.EqualValues(t, statusAbsent, s.organizationStatus(t, id))
	require.EqualValues(t, requesterDeposit, s.tokenBalance(t, challenger.ScriptHash()))
	require.EqualValues(t, 0, s.registeredCount(t))
	require.EqualValues(t, 0, s.requestedCount(t))

	ch := s.challengeItems(t, id, 1)
	require.True(t, itemBool(t, ch[6]))
	require.EqualValues(t, partyChallenger, itemInt(t, ch[7]))

	// Winning-side backers split the whole reward pool of each round.
	s.directory.Invoke(t, 2*challengeTotal-arbitrationFee, "withdrawFeesAndRewards",
		challenger.ScriptHash(), id, 1, 0)
	s.directory.Invoke(t, loserTotal+winnerTotal-appealFee, "withdrawFeesAndRewards",
		challenger.ScriptHash(), id, 1, 1)
	s.directory.Invoke(t, 0, "withdrawFeesAndRewards", owner.ScriptHash(), id, 1, 0)
	s.directory.Invoke(t, 0, "withdrawFeesAndRewards", challenger.ScriptHash(), id, 1, 0)
}

func TestDirectoryAppealWindowGating(t *testing.T) {
	s := newDirectorySuite(t)

	id, owner, challenger, disputeID := s.newDispute(t)

	s.directory.WithSigners(owner).InvokeFail(t, "appeal window is closed", "fundAppeal",
		id, owner.ScriptHash(), int64(partyRequester), int64(appealFee))

	s.arbitrator.Invoke(t, stackitem.Null{}, "giveRuling", disputeID, int64(partyChallenger))

	s.directory.WithSigners(owner).InvokeFail(t, "invalid party", "fundAppeal",
		id, owner.ScriptHash(), int64(partyNone), int64(appealFee))

	// Second half of the window: only the provisional winner may still fund.
	advanceChainTime(t, s.Executor, appealWindow/2+100)
	s.directory.WithSigners(owner).InvokeFail(t, "losing side is out of time", "fundAppeal",
		id, owner.ScriptHash(), int64(partyRequester), int64(appealFee))
	s.directory.WithSigners(challenger).Invoke(t, stackitem.Null{}, "fundAppeal",
		id, challenger.ScriptHash(), int64(partyChallenger), int64(1000))

	advanceChainTime(t, s.Executor, appealWindow)
	s.directory.WithSigners(challenger).InvokeFail(t, "appeal window is closed", "fundAppeal",
		id, challenger.ScriptHash(), int64(partyChallenger), int64(1000))
}

func TestDirectoryForcedRuling(t *testing.T) {
	s := newDirectorySuite(t)

	id, owner, _, disputeID := s.newDispute(t)

	s.arbitrator.Invoke(t, stackitem.Null{}, "giveRuling", disputeID, int64(partyNone))

	// No winner yet: both sides pay the shared multiplier. Only the
	// requester side funds its appeal fees in full.
	sharedTotal := int64(appealFee + appealFee*sharedStakeMultiplier/10000)
	s.directory.WithSigners(owner).Invoke(t, stackitem.Null{}, "fundAppeal",
		id, owner.ScriptHash(), int64(partyRequester), sharedTotal)

	advanceChainTime(t, s.Executor, appealWindow+100)
	s.arbitrator.Invoke(t, stackitem.Null{}, "executeRuling", disputeID)

	// The arbitrator reported no ruling, but the single-sided fully funded
	// final round forces the ruling to the requester.
	ch := s.challengeItems(t, id, 1)
	require.True(t, itemBool(t, ch[6]))
	require.EqualValues(t, partyRequester, itemInt(t, ch[7]))
	require.EqualValues(t, statusRegistered, s.organizationStatus(t, id))
	require.EqualValues(t, 1, s.registeredCount(t))

	// The final round never reached full funding on both sides: refund.
	s.directory.Invoke(t, sharedTotal, "withdrawFeesAndRewards", owner.ScriptHash(), id, 1, 1)
	// Round 0 pays the whole pool to the winning requester side.
	s.directory.Invoke(t, 2*challengeTotal-arbitrationFee, "withdrawFeesAndRewards",
		owner.ScriptHash(), id, 1, 0)
}

func TestDirectoryNoRulingSettlement(t *testing.T) {
	s := newDirectorySuite(t)

	t.Run("registered organization stays", func(t *testing.T) {
		id, owner, challenger, disputeID := s.newRegisteredDispute(t)

		s.arbitrator.Invoke(t, stackitem.Null{}, "giveRuling", disputeID, int64(partyNone))
		advanceChainTime(t, s.Executor, appealWindow+100)
		s.arbitrator.Invoke(t, stackitem.Null{}, "executeRuling", disputeID)

		require.EqualValues(t, statusRegistered, s.organizationStatus(t, id))
		require.EqualValues(t, requesterDeposit, s.organizationStake(t, id))
		require.EqualValues(t, 1, s.registeredCount(t))

		// Inconclusive ruling: the pool is split proportionally between both
		// sides' backers.
		half := int64(challengeTotal) * (2*challengeTotal - arbitrationFee) / (2 * challengeTotal)
		s.directory.Invoke(t, half, "withdrawFeesAndRewards", owner.ScriptHash(), id, 1, 0)
		s.directory.Invoke(t, half, "withdrawFeesAndRewards", challenger.ScriptHash(), id, 1, 0)
		s.directory.Invoke(t, 0, "withdrawFeesAndRewards", owner.ScriptHash(), id, 1, 0)
	})

	t.Run("pending request is refused", func(t *testing.T) {
		id, owner, _, disputeID := s.newDispute(t)

		s.arbitrator.Invoke(t, stackitem.Null{}, "giveRuling", disputeID, int64(partyNone))
		advanceChainTime(t, s.Executor, appealWindow+100)
		s.arbitrator.Invoke(t, stackitem.Null{}, "executeRuling", disputeID)

		// Not listed yet: the request is dropped and the stake returns home.
		require.EqualValues(t, statusAbsent, s.organizationStatus(t, id))
		require.EqualValues(t, requesterDeposit, s.tokenBalance(t, owner.ScriptHash()))
		require.EqualValues(t, 0, s.requestedCount(t))
	})
}

func TestDirectoryWithdrawalFlow(t *testing.T) {
	s := newDirectorySuite(t)

	id, owner := s.registerOrganization(t)

	stranger := s.directory.NewAccount(t)
	s.directory.WithSigners(stranger).InvokeFail(t, "account is not the owner or an accepted director",
		"makeWithdrawalRequest", id, stranger.ScriptHash())

	s.directory.WithSigners(owner).Invoke(t, stackitem.Null{}, "makeWithdrawalRequest", id, owner.ScriptHash())
	require.EqualValues(t, statusWithdrawalRequested, s.organizationStatus(t, id))
	require.EqualValues(t, 0, s.registeredCount(t))
	require.EqualValues(t, 0, s.requestedCount(t))

	s.directory.InvokeFail(t, "timeout has not passed yet", "withdrawTokens", id)

	advanceChainTime(t, s.Executor, withdrawTimeout+100)
	s.directory.Invoke(t, stackitem.Null{}, "withdrawTokens", id)
	require.EqualValues(t, statusAbsent, s.organizationStatus(t, id))
	require.EqualValues(t, requesterDeposit, s.tokenBalance(t, owner.ScriptHash()))

	s.directory.InvokeFail(t, "no withdrawal requested", "withdrawTokens", id)
}

func TestDirectoryWithdrawalChallenged(t *testing.T) {
	s := newDirectorySuite(t)

	id, owner := s.registerOrganization(t)
	s.directory.WithSigners(owner).Invoke(t, stackitem.Null{}, "makeWithdrawalRequest", id, owner.ScriptHash())

	challenger := s.directory.NewAccount(t)
	cChallenger := s.directory.WithSigners(challenger)

	t.Run("too late to block", func(t *testing.T) {
		advanceChainTime(t, s.Executor, withdrawTimeout+100)
		cChallenger.InvokeFail(t, "withdrawal can no longer be blocked",
			"challengeOrganization", id, challenger.ScriptHash(), "", int64(challengeTotal))
		s.directory.Invoke(t, stackitem.Null{}, "withdrawTokens", id)
	})
}

func TestDirectoryWithdrawalBlockedByChallenge(t *testing.T) {
	s := newDirectorySuite(t)

	id, owner := s.registerOrganization(t)
	s.directory.WithSigners(owner).Invoke(t, stackitem.Null{}, "makeWithdrawalRequest", id, owner.ScriptHash())

	challenger := s.directory.NewAccount(t)
	s.directory.WithSigners(challenger).Invoke(t, stackitem.Null{}, "challengeOrganization",
		id, challenger.ScriptHash(), "", int64(challengeTotal))
	s.directory.WithSigners(owner).Invoke(t, stackitem.Null{}, "acceptChallenge",
		id, owner.ScriptHash(), "", int64(challengeTotal))

	disputeID := s.disputeID(t, id, 1)
	s.arbitrator.Invoke(t, stackitem.Null{}, "giveRuling", disputeID, int64(partyRequester))
	advanceChainTime(t, s.Executor, appealWindow+100)
	s.arbitrator.Invoke(t, stackitem.Null{}, "executeRuling", disputeID)

	// The requester won, but a withdrawal was pending: the organization
	// leaves the directory with its stake instead of being re-listed.
	require.EqualValues(t, statusAbsent, s.organizationStatus(t, id))
	require.EqualValues(t, requesterDeposit, s.tokenBalance(t, owner.ScriptHash()))
	require.EqualValues(t, 0, s.registeredCount(t))
}

func TestDirectorySubmitEvidence(t *testing.T) {
	s := newDirectorySuite(t)

	id, owner := s.newOrganization(t)
	s.requestToAdd(t, id, owner)
	cOwner := s.directory.WithSigners(owner)

	cOwner.InvokeFail(t, "no challenge to attach evidence to", "submitEvidence",
		id, owner.ScriptHash(), "ipfs://evidence")

	challenger := s.directory.NewAccount(t)
	s.directory.WithSigners(challenger).Invoke(t, stackitem.Null{}, "challengeOrganization",
		id, challenger.ScriptHash(), "ipfs://challenge", int64(challengeTotal))

	cOwner.Invoke(t, stackitem.Null{}, "submitEvidence", id, owner.ScriptHash(), "ipfs://defense")

	advanceChainTime(t, s.Executor, responseTimeout+100)
	s.directory.Invoke(t, stackitem.Null{}, "executeTimeout", id)
	cOwner.InvokeFail(t, "challenge already resolved", "submitEvidence",
		id, owner.ScriptHash(), "ipfs://too-late")
}

func TestDirectoryRuleAuthorization(t *testing.T) {
	s := newDirectorySuite(t)

	id, _, _, disputeID := s.newDispute(t)

	// The rule callback is accepted from the recorded arbitrator only;
	// a direct transaction never matches a stored dispute.
	s.directory.InvokeFail(t, "unknown dispute", "rule", disputeID, int64(partyChallenger))

	require.EqualValues(t, statusDisputed, s.organizationStatus(t, id))
}

func TestDirectoryRewardWithdrawalValidation(t *testing.T) {
	s := newDirectorySuite(t)

	id, owner, _, _ := s.newDispute(t)

	s.directory.InvokeFail(t, "invalid challenge index", "withdrawFeesAndRewards",
		owner.ScriptHash(), id, 0, 0)
	s.directory.InvokeFail(t, "invalid challenge index", "withdrawFeesAndRewards",
		owner.ScriptHash(), id, 2, 0)
	s.directory.InvokeFail(t, "challenge is not resolved yet", "withdrawFeesAndRewards",
		owner.ScriptHash(), id, 1, 0)
}

func TestDirectoryListAccessors(t *testing.T) {
	s := newDirectorySuite(t)

	ids := make(map[string]bool)
	for i := 0; i < 3; i++ {
		id, _ := s.registerOrganization(t)
		ids[string(id)] = true
	}
	pendingID, pendingOwner := s.newOrganization(t)
	s.requestToAdd(t, pendingID, pendingOwner)

	res, err := s.directory.TestInvoke(t, "registeredOrganizations", 0, 10)
	require.NoError(t, err)
	listed := res.Pop().Array()
	require.Len(t, listed, 3)
	for _, item := range listed {
		raw, err := item.TryBytes()
		require.NoError(t, err)
		require.True(t, ids[string(raw)])
	}

	res, err = s.directory.TestInvoke(t, "registeredOrganizations", 1, 1)
	require.NoError(t, err)
	require.Len(t, res.Pop().Array(), 1)

	res, err = s.directory.TestInvoke(t, "requestedOrganizations", 0, 10)
	require.NoError(t, err)
	listed = res.Pop().Array()
	require.Len(t, listed, 1)
	raw, err := listed[0].TryBytes()
	require.NoError(t, err)
	require.Equal(t, pendingID, raw)

	s.directory.InvokeFail(t, "invalid pagination arguments", "registeredOrganizations", -1, 10)
	s.directory.InvokeFail(t, "invalid pagination arguments", "registeredOrganizations", 0, 0)

	res, err = s.directory.TestInvoke(t, "organizations")
	require.NoError(t, err)
	iter, ok := res.Pop().Value().(*storage.Iterator)
	require.True(t, ok)
	require.Len(t, iteratorToArray(iter), 4)
}

func TestDirectoryListRemovalReshuffle(t *testing.T) {
	s := newDirectorySuite(t)

	type member struct {
		id    []byte
		owner neotest.Signer
	}
	members := make([]member, 3)
	for i := range members {
		id, owner := s.registerOrganization(t)
		members[i] = member{id: id, owner: owner}
	}

	listed := func() map[string]bool {
		res, err := s.directory.TestInvoke(t, "registeredOrganizations", 0, 10)
		require.NoError(t, err)
		set := make(map[string]bool)
		for _, item := range res.Pop().Array() {
			raw, err := item.TryBytes()
			require.NoError(t, err)
			set[string(raw)] = true
		}
		return set
	}
	remove := func(m member) {
		s.directory.WithSigners(m.owner).Invoke(t, stackitem.Null{},
			"makeWithdrawalRequest", m.id, m.owner.ScriptHash())
		advanceChainTime(t, s.Executor, withdrawTimeout+100)
		s.directory.Invoke(t, stackitem.Null{}, "withdrawTokens", m.id)
	}

	// Removing the middle entry relocates the last one into its slot.
	remove(members[1])
	set := listed()
	require.Len(t, set, 2)
	require.True(t, set[string(members[0].id)])
	require.True(t, set[string(members[2].id)])
	require.False(t, set[string(members[1].id)])
	require.EqualValues(t, 2, s.registeredCount(t))
	require.EqualValues(t, statusRegistered, s.organizationStatus(t, members[0].id))
	require.EqualValues(t, statusRegistered, s.organizationStatus(t, members[2].id))

	// The relocated entry must still be removable through its new position.
	remove(members[2])
	set = listed()
	require.Len(t, set, 1)
	require.True(t, set[string(members[0].id)])
	require.EqualValues(t, 1, s.registeredCount(t))

	remove(members[0])
	require.Empty(t, listed())
	require.EqualValues(t, 0, s.registeredCount(t))
}

func TestDirectorySplitAppealFunding(t *testing.T) {
	s := newDirectorySuite(t)

	id, owner, challenger, disputeID := s.newDispute(t)
	friend := s.directory.NewAccount(t)

	s.arbitrator.Invoke(t, stackitem.Null{}, "giveRuling", disputeID, int64(partyChallenger))

	loserTotal := int64(appealFee + appealFee*loserStakeMultiplier/10000)
	winnerTotal := int64(appealFee + appealFee*winnerStakeMultiplier/10000)

	s.directory.WithSigners(owner).Invoke(t, stackitem.Null{}, "fundAppeal",
		id, owner.ScriptHash(), int64(partyRequester), loserTotal)

	// The winner side is crowdfunded: a partial contribution first, then an
	// overpayment of which only the missing part is retained.
	s.directory.WithSigners(challenger).Invoke(t, stackitem.Null{}, "fundAppeal",
		id, challenger.ScriptHash(), int64(partyChallenger), int64(3000))
	s.directory.WithSigners(friend).Invoke(t, stackitem.Null{}, "fundAppeal",
		id, friend.ScriptHash(), int64(partyChallenger), winnerTotal-3000+500)

	require.EqualValues(t, 3, itemInt(t, s.challengeItems(t, id, 1)[8]))

	round := s.roundItems(t, id, 1, 1)
	require.EqualValues(t, loserTotal, itemInt(t, round[0]))
	require.EqualValues(t, winnerTotal, itemInt(t, round[1]))
	require.EqualValues(t, loserTotal+winnerTotal-appealFee, itemInt(t, round[4]))

	ownerC := s.contributionItems(t, id, 1, 1, owner.ScriptHash())
	challengerC := s.contributionItems(t, id, 1, 1, challenger.ScriptHash())
	friendC := s.contributionItems(t, id, 1, 1, friend.ScriptHash())
	require.EqualValues(t, loserTotal, itemInt(t, ownerC[0]))
	require.EqualValues(t, 0, itemInt(t, ownerC[1]))
	require.EqualValues(t, 3000, itemInt(t, challengerC[1]))
	require.EqualValues(t, winnerTotal-3000, itemInt(t, friendC[1]))

	// Every fee in the round is attributed to exactly one contributor.
	require.EqualValues(t,
		itemInt(t, round[0])+itemInt(t, round[1]),
		itemInt(t, ownerC[0])+itemInt(t, challengerC[1])+itemInt(t, friendC[1]))

	s.arbitrator.Invoke(t, stackitem.Null{}, "giveRuling", disputeID, int64(partyChallenger))
	advanceChainTime(t, s.Executor, appealWindow+100)
	s.arbitrator.Invoke(t, stackitem.Null{}, "executeRuling", disputeID)

	// Winning-side backers split the appeal round pool proportionally to
	// their contributions.
	pool := loserTotal + winnerTotal - appealFee
	s.directory.Invoke(t, 3000*pool/winnerTotal, "withdrawFeesAndRewards",
		challenger.ScriptHash(), id, 1, 1)
	s.directory.Invoke(t, (winnerTotal-3000)*pool/winnerTotal, "withdrawFeesAndRewards",
		friend.ScriptHash(), id, 1, 1)
	s.directory.Invoke(t, 0, "withdrawFeesAndRewards", owner.ScriptHash(), id, 1, 1)

	friendC = s.contributionItems(t, id, 1, 1, friend.ScriptHash())
	require.EqualValues(t, 0, itemInt(t, friendC[0]))
	require.EqualValues(t, 0, itemInt(t, friendC[1]))
}

func TestDirectoryRepeatedChallenges(t *testing.T) {
	s := newDirectorySuite(t)

	id, owner, challenger1, disputeID1 := s.newRegisteredDispute(t)

	s.arbitrator.Invoke(t, stackitem.Null{}, "giveRuling", disputeID1, int64(partyRequester))
	advanceChainTime(t, s.Executor, appealWindow+100)
	s.arbitrator.Invoke(t, stackitem.Null{}, "executeRuling", disputeID1)
	require.EqualValues(t, statusRegistered, s.organizationStatus(t, id))

	// A second challenge opens a fresh episode with its own dispute, rounds
	// and contributions.
	challenger2 := s.disputeOver(t, id, owner)
	disputeID2 := s.disputeID(t, id, 2)
	require.NotEqual(t, disputeID1, disputeID2)
	require.EqualValues(t, 2, itemInt(t, s.organizationItems(t, id)[7]))
	require.EqualValues(t, 2*challengeTotal-arbitrationFee, itemInt(t, s.roundItems(t, id, 1, 0)[4]))
	require.EqualValues(t, 2*challengeTotal-arbitrationFee, itemInt(t, s.roundItems(t, id, 2, 0)[4]))

	s.arbitrator.Invoke(t, stackitem.Null{}, "giveRuling", disputeID2, int64(partyChallenger))
	advanceChainTime(t, s.Executor, appealWindow+100)
	s.arbitrator.Invoke(t, stackitem.Null{}, "executeRuling", disputeID2)

	require.EqualValues(t, statusAbsent, s.organizationStatus(t, id))
	require.EqualValues(t, requesterDeposit, s.tokenBalance(t, challenger2.ScriptHash()))

	// Each episode pays out of its own round ledger.
	s.directory.Invoke(t, 2*challengeTotal-arbitrationFee, "withdrawFeesAndRewards",
		owner.ScriptHash(), id, 1, 0)
	s.directory.Invoke(t, 2*challengeTotal-arbitrationFee, "withdrawFeesAndRewards",
		challenger2.ScriptHash(), id, 2, 0)
	s.directory.Invoke(t, 0, "withdrawFeesAndRewards", challenger1.ScriptHash(), id, 1, 0)
	s.directory.Invoke(t, 0, "withdrawFeesAndRewards", challenger1.ScriptHash(), id, 2, 0)
}

func TestDirectoryVersion(t *testing.T) {
	s := newDirectorySuite(t)
	res, err := s.directory.TestInvoke(t, "version")
	require.NoError(t, err)
	require.True(t, res.Pop().BigInt().Int64() > 0)
}
