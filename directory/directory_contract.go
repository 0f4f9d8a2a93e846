package directory

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/crypto"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/unknownunknown1/org.id-directories/common"
)

type (
	// Organization is a directory membership record. It persists across
	// challenge episodes; only its status, stake and timing fields mutate.
	Organization struct {
		// Organization identifier in the identity registry.
		ID []byte
		// One of the Status* constants.
		Status int
		// Account that escrowed the stake for the latest registration request.
		Requester interop.Hash160
		// Timestamp of the last status transition, drives execution and
		// response timeouts.
		LastStatusChange int
		// Stake token amount currently escrowed for this organization.
		Stake int
		// Timestamp of the pending withdrawal request, zero otherwise.
		WithdrawalRequestTime int
		// 1-based index of the open challenge, zero when there is none.
		ActiveChallenge int
		// Total number of challenges ever raised, open or resolved.
		ChallengeCount int
	}

	// Challenge is one episode contesting an organization. Only Resolved,
	// Ruling, Disputed, DisputeID and RoundCount mutate after creation.
	Challenge struct {
		Challenger interop.Hash160
		// Arbitration service this challenge is permanently bound to.
		Arbitrator          interop.Hash160
		ArbitratorExtraData []byte
		// Version of the dispute policy in force when the challenge opened.
		MetaEvidenceID int
		Disputed       bool
		DisputeID      int
		Resolved       bool
		// Final ruling, valid only once Resolved is set.
		Ruling     int
		RoundCount int
	}

	// Round is one funding cycle within a challenge.
	Round struct {
		RequesterFees  int
		ChallengerFees int
		RequesterPaid  bool
		ChallengerPaid bool
		// Collected fees minus whatever was forwarded to the arbitrator.
		FeeRewards int
	}

	// Contribution accumulates a single backer's spending towards each side
	// of a round. Zeroed out when the reward is withdrawn.
	Contribution struct {
		Requester  int
		Challenger int
	}
)

// Organization statuses.
const (
	StatusAbsent                = 0
	StatusRegistrationRequested = 1
	StatusWithdrawalRequested   = 2
	StatusChallenged            = 3
	StatusDisputed              = 4
	StatusRegistered            = 5
)

// Dispute parties.
const (
	PartyNone       = 0
	PartyRequester  = 1
	PartyChallenger = 2
)

const (
	identityContractKey   = "identityScriptHash"
	tokenContractKey      = "tokenScriptHash"
	arbitratorContractKey = "arbitratorScriptHash"
	arbitratorExtraKey    = "arbitratorExtraData"

	requesterDepositKey     = "requesterDeposit"
	challengeBaseDepositKey = "challengeBaseDeposit"
	executionTimeoutKey     = "executionTimeout"
	responseTimeoutKey      = "responseTimeout"
	withdrawTimeoutKey      = "withdrawTimeout"
	sharedMultiplierKey     = "sharedStakeMultiplier"
	winnerMultiplierKey     = "winnerStakeMultiplier"
	loserMultiplierKey      = "loserStakeMultiplier"
	metaEvidenceUpdatesKey  = "metaEvidenceUpdates"

	registeredListKey = "registeredList"
	requestedListKey  = "requestedList"

	orgPrefix             = 'o'
	challengePrefix       = 'c'
	roundPrefix           = 'r'
	contributionPrefix    = 'b'
	disputePrefix         = 'd'
	registeredIndexPrefix = 'x'
	requestedIndexPrefix  = 'y'

	// Multipliers are expressed in basis points over this divisor.
	multiplierDivisor = 10000

	orgIDSize     = 32
	rulingChoices = 2
)

// nolint:deadcode,unused
func _deploy(data interface{}, isUpdate bool) {
	ctx := storage.GetContext()

	if isUpdate {
		args := data.([]interface{})
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		addrIdentity          interop.Hash160
		addrToken             interop.Hash160
		addrArbitrator        interop.Hash160
		arbitratorExtraData   []byte
		requesterDeposit      int
		challengeBaseDeposit  int
		executionTimeout      int
		responseTimeout       int
		withdrawTimeout       int
		sharedStakeMultiplier int
		winnerStakeMultiplier int
		loserStakeMultiplier  int
	})

	if len(args.addrIdentity) != interop.Hash160Len ||
		len(args.addrToken) != interop.Hash160Len ||
		len(args.addrArbitrator) != interop.Hash160Len {
		panic("incorrect length of contract script hash")
	}

	if args.requesterDeposit <= 0 {
		panic("requester deposit must be positive")
	}

	storage.Put(ctx, identityContractKey, args.addrIdentity)
	storage.Put(ctx, tokenContractKey, args.addrToken)
	storage.Put(ctx, arbitratorContractKey, args.addrArbitrator)
	storage.Put(ctx, arbitratorExtraKey, args.arbitratorExtraData)
	storage.Put(ctx, requesterDepositKey, args.requesterDeposit)
	storage.Put(ctx, challengeBaseDepositKey, args.challengeBaseDeposit)
	storage.Put(ctx, executionTimeoutKey, args.executionTimeout)
	storage.Put(ctx, responseTimeoutKey, args.responseTimeout)
	storage.Put(ctx, withdrawTimeoutKey, args.withdrawTimeout)
	storage.Put(ctx, sharedMultiplierKey, args.sharedStakeMultiplier)
	storage.Put(ctx, winnerMultiplierKey, args.winnerStakeMultiplier)
	storage.Put(ctx, loserMultiplierKey, args.loserStakeMultiplier)
	storage.Put(ctx, metaEvidenceUpdatesKey, 0)

	// Both membership lists are pre-seeded with a placeholder entry so that
	// real entries never occupy position 0, which the index maps reserve as
	// the "not present" sentinel.
	common.SetSerialized(ctx, registeredListKey, [][]byte{{}})
	common.SetSerialized(ctx, requestedListKey, [][]byte{{}})

	runtime.Log("directory contract initialized")
}

// Update method updates contract source code and manifest. Can be invoked
// only by committee.
func Update(script []byte, manifest []byte, data interface{}) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("directory contract updated")
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// OnNEP17Payment accepts native GAS payments and stake token deposits pulled
// by the directory's own operations. Anything else is rejected.
func OnNEP17Payment(from interop.Hash160, amount int, data interface{}) {
	ctx := storage.GetReadOnlyContext()
	caller := runtime.GetCallingScriptHash()
	if caller.Equals(gas.Hash) {
		return
	}
	if !caller.Equals(storage.Get(ctx, tokenContractKey).(interop.Hash160)) {
		panic("unsupported token")
	}
}

// RequestToAdd asks the directory to list an organization. The requester must
// be the organization's owner or its accepted director in the identity
// registry, and escrows the configured stake token deposit.
func RequestToAdd(id []byte, requester interop.Hash160) {
	ctx := storage.GetContext()
	checkOrgID(id)
	common.CheckWitness(requester)

	org := getOrganizationOrNew(ctx, id)
	if org.Status != StatusAbsent {
		panic("status prohibits the registration request")
	}

	exists, owner, director, directorAccepted, active := lookupIdentity(ctx, id)
	if !exists || !active {
		panic("unknown or inactive organization")
	}
	if !owner.Equals(requester) && !(directorAccepted && director.Equals(requester)) {
		panic("requester is not the owner or an accepted director")
	}

	deposit := storage.Get(ctx, requesterDepositKey).(int)
	transferStake(ctx, requester, runtime.GetExecutingScriptHash(), deposit)

	org.ID = id
	org.Status = StatusRegistrationRequested
	org.Requester = requester
	org.LastStatusChange = int(runtime.GetTime())
	org.Stake = deposit
	putOrganization(ctx, org)
	addToList(ctx, requestedListKey, requestedIndexPrefix, id)

	runtime.Notify("OrganizationSubmitted", id, requester)
}

// ChallengeOrganization contests a pending or existing membership. The
// challenger must fully fund their side of the new challenge's first round
// (arbitration cost plus base deposit) within this single call; any leftover
// payment is returned.
func ChallengeOrganization(id []byte, challenger interop.Hash160, evidence string, payment int) {
	ctx := storage.GetContext()
	org := getOrganization(ctx, id)
	common.CheckWitness(challenger)

	now := int(runtime.GetTime())
	switch org.Status {
	case StatusRegistrationRequested, StatusRegistered:
	case StatusWithdrawalRequested:
		if now-org.WithdrawalRequestTime > storage.Get(ctx, withdrawTimeoutKey).(int) {
			panic("withdrawal can no longer be blocked")
		}
	default:
		panic("status prohibits the challenge")
	}

	arbitrator := storage.Get(ctx, arbitratorContractKey).(interop.Hash160)
	extraData := storage.Get(ctx, arbitratorExtraKey).([]byte)
	cost := arbitrationCost(arbitrator, extraData)
	total := common.SaturatingAdd(cost, storage.Get(ctx, challengeBaseDepositKey).(int))

	org.ChallengeCount++
	cIdx := org.ChallengeCount
	ch := Challenge{
		Challenger:          challenger,
		Arbitrator:          arbitrator,
		ArbitratorExtraData: extraData,
		MetaEvidenceID:      storage.Get(ctx, metaEvidenceUpdatesKey).(int),
		RoundCount:          1,
	}

	collectPayment(challenger, payment)
	round, _ := contribute(ctx, id, cIdx, 0, Round{}, PartyChallenger, challenger, payment, total)
	if !round.ChallengerPaid {
		panic("insufficient funding of the challenge")
	}

	putChallenge(ctx, id, cIdx, ch)
	putRound(ctx, id, cIdx, 0, round)

	org.Status = StatusChallenged
	org.ActiveChallenge = cIdx
	org.LastStatusChange = now
	putOrganization(ctx, org)

	runtime.Notify("OrganizationChallenged", id, challenger, cIdx)
	if evidence != "" {
		runtime.Notify("Evidence", arbitrator, evidenceGroupID(id, cIdx), challenger, evidence)
	}
}

// AcceptChallenge answers an open challenge by fully funding the requester
// side of its first round. On success a dispute is opened with the
// arbitration service and a fresh appeal round is appended. Any account may
// pay, not only the original requester.
func AcceptChallenge(id []byte, payer interop.Hash160, evidence string, payment int) {
	ctx := storage.GetContext()
	org := getOrganization(ctx, id)
	common.CheckWitness(payer)

	if org.Status != StatusChallenged {
		panic("no challenge to accept")
	}
	now := int(runtime.GetTime())
	if now-org.LastStatusChange > storage.Get(ctx, responseTimeoutKey).(int) {
		panic("response window is closed")
	}

	cIdx := org.ActiveChallenge
	ch := getChallenge(ctx, id, cIdx)
	cost := arbitrationCost(ch.Arbitrator, ch.ArbitratorExtraData)
	total := common.SaturatingAdd(cost, storage.Get(ctx, challengeBaseDepositKey).(int))

	collectPayment(payer, payment)
	round := getRound(ctx, id, cIdx, 0)
	round, _ = contribute(ctx, id, cIdx, 0, round, PartyRequester, payer, payment, total)
	if !round.RequesterPaid {
		panic("insufficient funding of the defense")
	}

	me := runtime.GetExecutingScriptHash()
	if !gas.Transfer(me, ch.Arbitrator, cost, nil) {
		panic("failed to cover arbitration cost")
	}
	disputeID := contract.Call(ch.Arbitrator, "createDispute", contract.All,
		rulingChoices, ch.ArbitratorExtraData, cost).(int)

	ch.Disputed = true
	ch.DisputeID = disputeID
	ch.RoundCount = 2
	round.FeeRewards = common.SaturatingSub(round.FeeRewards, cost)

	putRound(ctx, id, cIdx, 0, round)
	putRound(ctx, id, cIdx, 1, Round{})
	putChallenge(ctx, id, cIdx, ch)
	storage.Put(ctx, disputeKey(ch.Arbitrator, disputeID), id)

	org.Status = StatusDisputed
	org.LastStatusChange = now
	putOrganization(ctx, org)

	runtime.Notify("Dispute", ch.Arbitrator, disputeID, ch.MetaEvidenceID, evidenceGroupID(id, cIdx))
	if evidence != "" {
		runtime.Notify("Evidence", ch.Arbitrator, evidenceGroupID(id, cIdx), payer, evidence)
	}
}

// ExecuteTimeout finalizes a lapsed window: it promotes an unchallenged
// registration request after the execution timeout, or resolves an unanswered
// challenge in the challenger's favor after the response timeout. Anyone may
// call it, timeouts are evaluated lazily.
func ExecuteTimeout(id []byte) {
	ctx := storage.GetContext()
	org := getOrganization(ctx, id)
	now := int(runtime.GetTime())

	switch org.Status {
	case StatusRegistrationRequested:
		if now-org.LastStatusChange <= storage.Get(ctx, executionTimeoutKey).(int) {
			panic("timeout has not passed yet")
		}

		org.Status = StatusRegistered
		org.LastStatusChange = now
		putOrganization(ctx, org)
		removeFromList(ctx, requestedListKey, requestedIndexPrefix, id)
		addToList(ctx, registeredListKey, registeredIndexPrefix, id)

		runtime.Notify("OrganizationRegistered", id)
	case StatusChallenged:
		if now-org.LastStatusChange <= storage.Get(ctx, responseTimeoutKey).(int) {
			panic("timeout has not passed yet")
		}

		cIdx := org.ActiveChallenge
		ch := getChallenge(ctx, id, cIdx)
		// The challenge lapsed unanswered: resolved with no ruling, the
		// stake still forfeits to the challenger.
		ch.Resolved = true
		putChallenge(ctx, id, cIdx, ch)

		stake := org.Stake
		org = resetOrganization(org, now)
		putOrganization(ctx, org)
		removeFromList(ctx, requestedListKey, requestedIndexPrefix, id)
		removeFromList(ctx, registeredListKey, registeredIndexPrefix, id)

		transferStake(ctx, runtime.GetExecutingScriptHash(), ch.Challenger, stake)

		runtime.Notify("ChallengeResolved", id, cIdx, PartyNone)
		runtime.Notify("OrganizationRemoved", id)
	default:
		panic("status prohibits the timeout execution")
	}
}

// FundAppeal contributes towards one side of the current appeal round of a
// disputed organization. Callable strictly inside the arbitrator-reported
// appeal window; the provisionally losing side may only contribute during the
// first half of it. When both sides reach full funding, an appeal is
// requested and a new round is appended.
func FundAppeal(id []byte, funder interop.Hash160, side int, payment int) {
	ctx := storage.GetContext()
	org := getOrganization(ctx, id)
	common.CheckWitness(funder)

	if org.Status != StatusDisputed {
		panic("no dispute to appeal")
	}
	if side != PartyRequester && side != PartyChallenger {
		panic("invalid party")
	}

	cIdx := org.ActiveChallenge
	ch := getChallenge(ctx, id, cIdx)

	period := contract.Call(ch.Arbitrator, "appealPeriod", contract.ReadOnly, ch.DisputeID).([]interface{})
	start := period[0].(int)
	end := period[1].(int)
	now := int(runtime.GetTime())
	if now < start || now >= end {
		panic("appeal window is closed")
	}

	winner := contract.Call(ch.Arbitrator, "currentRuling", contract.ReadOnly, ch.DisputeID).(int)
	var multiplier int
	switch {
	case winner == PartyNone:
		multiplier = storage.Get(ctx, sharedMultiplierKey).(int)
	case winner == side:
		multiplier = storage.Get(ctx, winnerMultiplierKey).(int)
	default:
		// The losing side must commit early, it cannot wait the winner out
		// and snipe a late contribution.
		if now-start >= (end-start)/2 {
			panic("losing side is out of time")
		}
		multiplier = storage.Get(ctx, loserMultiplierKey).(int)
	}

	appealCost := contract.Call(ch.Arbitrator, "appealCost", contract.ReadOnly,
		ch.DisputeID, ch.ArbitratorExtraData).(int)
	total := common.SaturatingAdd(appealCost,
		common.SaturatingMul(appealCost, multiplier)/multiplierDivisor)

	rIdx := ch.RoundCount - 1
	round := getRound(ctx, id, cIdx, rIdx)
	alreadyPaid := sidePaid(round, side)

	collectPayment(funder, payment)
	round, taken := contribute(ctx, id, cIdx, rIdx, round, side, funder, payment, total)

	runtime.Notify("AppealContribution", id, cIdx, side, funder, taken)
	if !alreadyPaid && sidePaid(round, side) {
		runtime.Notify("HasPaidAppealFee", id, cIdx, side)
	}

	if round.RequesterPaid && round.ChallengerPaid {
		me := runtime.GetExecutingScriptHash()
		if !gas.Transfer(me, ch.Arbitrator, appealCost, nil) {
			panic("failed to cover appeal cost")
		}
		contract.Call(ch.Arbitrator, "appeal", contract.All, ch.DisputeID, ch.ArbitratorExtraData, appealCost)

		round.FeeRewards = common.SaturatingSub(round.FeeRewards, appealCost)
		putRound(ctx, id, cIdx, rIdx, round)

		ch.RoundCount++
		putChallenge(ctx, id, cIdx, ch)
		putRound(ctx, id, cIdx, ch.RoundCount-1, Round{})
		return
	}

	putRound(ctx, id, cIdx, rIdx, round)
}

// Rule is the arbitration service callback delivering the final ruling of a
// dispute. Only the arbitrator recorded in the challenge is accepted. If
// exactly one side fully funded the final round, the effective ruling is
// forced to that side regardless of the reported value.
func Rule(disputeID int, ruling int) {
	ctx := storage.GetContext()
	arbitrator := runtime.GetCallingScriptHash()

	data := storage.Get(ctx, disputeKey(arbitrator, disputeID))
	if data == nil {
		panic("unknown dispute")
	}
	id := data.([]byte)

	org := getOrganization(ctx, id)
	if org.Status != StatusDisputed || org.ActiveChallenge == 0 {
		panic("no dispute in progress")
	}

	cIdx := org.ActiveChallenge
	ch := getChallenge(ctx, id, cIdx)
	if ch.Resolved {
		panic("challenge already resolved")
	}
	if !ch.Arbitrator.Equals(arbitrator) || ch.DisputeID != disputeID {
		panic("unknown dispute")
	}
	if ruling < PartyNone || ruling > PartyChallenger {
		panic("invalid ruling")
	}

	// A single-sided fully funded final round means the other side
	// defaulted, otherwise an appeal would have been created already.
	last := getRound(ctx, id, cIdx, ch.RoundCount-1)
	effective := ruling
	if last.RequesterPaid && !last.ChallengerPaid {
		effective = PartyRequester
	} else if last.ChallengerPaid && !last.RequesterPaid {
		effective = PartyChallenger
	}

	org = executeRuling(ctx, org, ch, effective)

	ch.Resolved = true
	ch.Ruling = effective
	putChallenge(ctx, id, cIdx, ch)
	putOrganization(ctx, org)

	runtime.Notify("Ruling", arbitrator, disputeID, effective)
}

func executeRuling(ctx storage.Context, org Organization, ch Challenge, effective int) Organization {
	me := runtime.GetExecutingScriptHash()
	now := int(runtime.GetTime())
	id := org.ID
	stake := org.Stake

	switch effective {
	case PartyRequester:
		if org.WithdrawalRequestTime != 0 {
			// The challenge voided the withdrawal, not the registration:
			// the organization leaves with its stake.
			owner := organizationOwner(ctx, id)
			org = resetOrganization(org, now)
			removeFromList(ctx, requestedListKey, requestedIndexPrefix, id)
			removeFromList(ctx, registeredListKey, registeredIndexPrefix, id)
			transferStake(ctx, me, owner, stake)
			runtime.Notify("OrganizationRemoved", id)
			return org
		}

		org.Status = StatusRegistered
		org.LastStatusChange = now
		org.ActiveChallenge = 0
		removeFromList(ctx, requestedListKey, requestedIndexPrefix, id)
		addToList(ctx, registeredListKey, registeredIndexPrefix, id)
		runtime.Notify("OrganizationRegistered", id)
	case PartyChallenger:
		challenger := ch.Challenger
		org = resetOrganization(org, now)
		removeFromList(ctx, requestedListKey, requestedIndexPrefix, id)
		removeFromList(ctx, registeredListKey, registeredIndexPrefix, id)
		transferStake(ctx, me, challenger, stake)
		runtime.Notify("OrganizationRemoved", id)
	default:
		if listIndex(ctx, registeredIndexPrefix, id) != 0 {
			// Already registered: keep the listing, the stake stays
			// escrowed with the directory.
			org.Status = StatusRegistered
			org.LastStatusChange = now
			org.ActiveChallenge = 0
			return org
		}

		owner := organizationOwner(ctx, id)
		org = resetOrganization(org, now)
		removeFromList(ctx, requestedListKey, requestedIndexPrefix, id)
		transferStake(ctx, me, owner, stake)
		runtime.Notify("OrganizationRemoved", id)
	}
	return org
}

// MakeWithdrawalRequest starts a voluntary exit from the directory. The
// organization is removed from both membership lists immediately while its
// stake remains escrowed for the withdraw timeout, during which it can still
// be challenged.
func MakeWithdrawalRequest(id []byte, account interop.Hash160) {
	ctx := storage.GetContext()
	org := getOrganization(ctx, id)
	common.CheckWitness(account)

	if org.Status != StatusRegistrationRequested && org.Status != StatusRegistered {
		panic("status prohibits the withdrawal request")
	}

	_, owner, director, directorAccepted, _ := lookupIdentity(ctx, id)
	if !owner.Equals(account) && !(directorAccepted && director.Equals(account)) {
		panic("account is not the owner or an accepted director")
	}

	now := int(runtime.GetTime())
	org.Status = StatusWithdrawalRequested
	org.WithdrawalRequestTime = now
	org.LastStatusChange = now
	putOrganization(ctx, org)
	removeFromList(ctx, requestedListKey, requestedIndexPrefix, id)
	removeFromList(ctx, registeredListKey, registeredIndexPrefix, id)

	runtime.Notify("WithdrawalRequested", id)
}

// WithdrawTokens completes a withdrawal once the withdraw timeout has elapsed
// with no challenge intervening, releasing the full stake to the organization
// owner. Anyone may trigger it.
func WithdrawTokens(id []byte) {
	ctx := storage.GetContext()
	org := getOrganization(ctx, id)

	if org.Status != StatusWithdrawalRequested {
		panic("no withdrawal requested")
	}
	now := int(runtime.GetTime())
	if now-org.WithdrawalRequestTime <= storage.Get(ctx, withdrawTimeoutKey).(int) {
		panic("timeout has not passed yet")
	}

	owner := organizationOwner(ctx, id)
	stake := org.Stake
	org = resetOrganization(org, now)
	putOrganization(ctx, org)

	transferStake(ctx, runtime.GetExecutingScriptHash(), owner, stake)

	runtime.Notify("OrganizationRemoved", id)
}

// SubmitEvidence attaches an evidence reference to the latest challenge of an
// organization. The challenge must not be resolved yet.
func SubmitEvidence(id []byte, submitter interop.Hash160, evidence string) {
	ctx := storage.GetContext()
	org := getOrganization(ctx, id)
	common.CheckWitness(submitter)

	if org.ChallengeCount == 0 {
		panic("no challenge to attach evidence to")
	}
	cIdx := org.ChallengeCount
	ch := getChallenge(ctx, id, cIdx)
	if ch.Resolved {
		panic("challenge already resolved")
	}

	runtime.Notify("Evidence", ch.Arbitrator, evidenceGroupID(id, cIdx), submitter, evidence)
}

// WithdrawFeesAndRewards pays out the beneficiary's share of a resolved
// challenge round: a full refund if the round never reached full funding on
// both sides, a proportional split of the reward pool between both sides if
// the ruling was inconclusive, and a proportional share of the pool for
// winning-side backers otherwise. Idempotent, a second call yields zero.
func WithdrawFeesAndRewards(beneficiary interop.Hash160, id []byte, cIdx, rIdx int) int {
	ctx := storage.GetContext()
	org := getOrganization(ctx, id)

	if cIdx < 1 || cIdx > org.ChallengeCount {
		panic("invalid challenge index")
	}
	ch := getChallenge(ctx, id, cIdx)
	if !ch.Resolved {
		panic("challenge is not resolved yet")
	}
	if rIdx < 0 || rIdx >= ch.RoundCount {
		panic("invalid round index")
	}

	round := getRound(ctx, id, cIdx, rIdx)
	contrib := getContribution(ctx, id, cIdx, rIdx, beneficiary)

	var reward int
	switch {
	case !round.RequesterPaid || !round.ChallengerPaid:
		// Underfunded round: refund contributions to either side unreduced.
		reward = common.SaturatingAdd(contrib.Requester, contrib.Challenger)
	case ch.Ruling == PartyNone:
		total := common.SaturatingAdd(round.RequesterFees, round.ChallengerFees)
		if total > 0 {
			reward = common.SaturatingAdd(contrib.Requester, contrib.Challenger) *
				round.FeeRewards / total
		}
	case ch.Ruling == PartyRequester:
		if round.RequesterFees > 0 {
			reward = contrib.Requester * round.FeeRewards / round.RequesterFees
		}
	default:
		if round.ChallengerFees > 0 {
			reward = contrib.Challenger * round.FeeRewards / round.ChallengerFees
		}
	}

	contrib.Requester = 0
	contrib.Challenger = 0
	putContribution(ctx, id, cIdx, rIdx, beneficiary, contrib)

	if reward > 0 {
		// Send-and-forget: a hostile beneficiary must not poison the round.
		gas.Transfer(runtime.GetExecutingScriptHash(), beneficiary, reward, nil)
	}

	return reward
}

// GetOrganization returns the directory record of an organization.
func GetOrganization(id []byte) Organization {
	ctx := storage.GetReadOnlyContext()
	return getOrganization(ctx, id)
}

// GetChallenge returns a challenge of an organization by its 1-based index.
func GetChallenge(id []byte, cIdx int) Challenge {
	ctx := storage.GetReadOnlyContext()
	return getChallenge(ctx, id, cIdx)
}

// GetRound returns a round of a challenge by its 0-based index.
func GetRound(id []byte, cIdx, rIdx int) Round {
	ctx := storage.GetReadOnlyContext()
	return getRound(ctx, id, cIdx, rIdx)
}

// GetContributions returns the cumulative contributions of an account towards
// both sides of a round. Both counters are zero once the account has
// withdrawn its rewards.
func GetContributions(id []byte, cIdx, rIdx int, contributor interop.Hash160) Contribution {
	ctx := storage.GetReadOnlyContext()
	return getContribution(ctx, id, cIdx, rIdx, contributor)
}

// RegisteredOrganizations returns a page of the registered membership list.
// The list is an unordered set: removal reshuffles positions.
func RegisteredOrganizations(offset, limit int) [][]byte {
	ctx := storage.GetReadOnlyContext()
	return paginate(common.GetList(ctx, registeredListKey), offset, limit)
}

// RequestedOrganizations returns a page of the pending registration list.
func RequestedOrganizations(offset, limit int) [][]byte {
	ctx := storage.GetReadOnlyContext()
	return paginate(common.GetList(ctx, requestedListKey), offset, limit)
}

// RegisteredCount returns the number of registered organizations.
func RegisteredCount() int {
	ctx := storage.GetReadOnlyContext()
	return len(common.GetList(ctx, registeredListKey)) - 1
}

// RequestedCount returns the number of pending registration requests.
func RequestedCount() int {
	ctx := storage.GetReadOnlyContext()
	return len(common.GetList(ctx, requestedListKey)) - 1
}

// Organizations returns an iterator over all directory records ever created,
// including historical ones retained for reward withdrawal.
func Organizations() iterator.Iterator {
	ctx := storage.GetReadOnlyContext()
	return storage.Find(ctx, []byte{orgPrefix}, storage.ValuesOnly|storage.DeserializeValues)
}

// contribute routes a payment into one side of a round. It takes only what is
// still owed towards totalRequired, records the taken amount into the round,
// the reward pool and the contributor's history, marks the side fully paid
// when the target is reached and best-effort returns the remainder.
func contribute(ctx storage.Context, id []byte, cIdx, rIdx int, round Round,
	side int, contributor interop.Hash160, amount, totalRequired int) (Round, int) {
	paid := round.RequesterFees
	if side == PartyChallenger {
		paid = round.ChallengerFees
	}

	taken, remainder := common.CalculateContribution(amount, common.SaturatingSub(totalRequired, paid))

	if taken > 0 {
		contrib := getContribution(ctx, id, cIdx, rIdx, contributor)
		if side == PartyRequester {
			contrib.Requester = common.SaturatingAdd(contrib.Requester, taken)
			round.RequesterFees = common.SaturatingAdd(round.RequesterFees, taken)
		} else {
			contrib.Challenger = common.SaturatingAdd(contrib.Challenger, taken)
			round.ChallengerFees = common.SaturatingAdd(round.ChallengerFees, taken)
		}
		round.FeeRewards = common.SaturatingAdd(round.FeeRewards, taken)
		putContribution(ctx, id, cIdx, rIdx, contributor, contrib)
	}

	if totalRequired > 0 {
		if side == PartyRequester && round.RequesterFees >= totalRequired {
			round.RequesterPaid = true
		}
		if side == PartyChallenger && round.ChallengerFees >= totalRequired {
			round.ChallengerPaid = true
		}
	}

	if remainder > 0 {
		// Send-and-forget: a hostile contributor must not block the
		// funding flow of unrelated parties.
		gas.Transfer(runtime.GetExecutingScriptHash(), contributor, remainder, nil)
	}

	return round, taken
}

func sidePaid(round Round, side int) bool {
	if side == PartyRequester {
		return round.RequesterPaid
	}
	return round.ChallengerPaid
}

// resetOrganization reverts a record to the absent state, releasing nothing
// by itself. Challenge history and counters are retained.
func resetOrganization(org Organization, now int) Organization {
	org.Status = StatusAbsent
	org.Stake = 0
	org.WithdrawalRequestTime = 0
	org.ActiveChallenge = 0
	org.LastStatusChange = now
	return org
}

func checkOrgID(id []byte) {
	if len(id) != orgIDSize {
		panic("incorrect length of organization ID")
	}
}

func lookupIdentity(ctx storage.Context, id []byte) (bool, interop.Hash160, interop.Hash160, bool, bool) {
	identity := storage.Get(ctx, identityContractKey).(interop.Hash160)
	info := contract.Call(identity, "lookup", contract.ReadOnly, id).([]interface{})
	return info[0].(bool),
		info[1].(interop.Hash160),
		info[2].(interop.Hash160),
		info[3].(bool),
		info[4].(bool)
}

func organizationOwner(ctx storage.Context, id []byte) interop.Hash160 {
	_, owner, _, _, _ := lookupIdentity(ctx, id)
	return owner
}

func arbitrationCost(arbitrator interop.Hash160, extraData []byte) int {
	return contract.Call(arbitrator, "arbitrationCost", contract.ReadOnly, extraData).(int)
}

// transferStake moves stake tokens and treats failure as fatal: a failed
// token transfer indicates an accounting inconsistency.
func transferStake(ctx storage.Context, from, to interop.Hash160, amount int) {
	if amount == 0 {
		return
	}
	token := storage.Get(ctx, tokenContractKey).(interop.Hash160)
	if !contract.Call(token, "transfer", contract.All, from, to, amount, nil).(bool) {
		panic("stake token transfer failed")
	}
}

// collectPayment pulls native GAS from the payer into the contract, fatal on
// failure.
func collectPayment(from interop.Hash160, amount int) {
	if amount <= 0 {
		panic("payment must be positive")
	}
	if !gas.Transfer(from, runtime.GetExecutingScriptHash(), amount, nil) {
		panic("failed to collect payment")
	}
}

func evidenceGroupID(id []byte, cIdx int) []byte {
	data := append([]byte{}, id...)
	data = append(data, []byte(std.Itoa(cIdx, 10))...)
	return crypto.Sha256(data)
}

func paginate(list [][]byte, offset, limit int) [][]byte {
	if offset < 0 || limit <= 0 {
		panic("invalid pagination arguments")
	}

	result := [][]byte{}
	for i := offset + 1; i < len(list) && len(result) < limit; i++ {
		result = append(result, list[i])
	}
	return result
}

// Membership lists use swap-with-last removal, so they are cheap to mutate
// but unordered. Index maps hold 1-based positions, position 0 is occupied by
// the placeholder seeded at deploy.

func listIndex(ctx storage.Context, indexPrefix byte, id []byte) int {
	data := storage.Get(ctx, indexKey(indexPrefix, id))
	if data == nil {
		return 0
	}
	return data.(int)
}

func addToList(ctx storage.Context, listKey string, indexPrefix byte, id []byte) {
	if listIndex(ctx, indexPrefix, id) != 0 {
		return
	}

	list := common.GetList(ctx, listKey)
	list = append(list, id)
	common.SetSerialized(ctx, listKey, list)
	storage.Put(ctx, indexKey(indexPrefix, id), len(list)-1)
}

func removeFromList(ctx storage.Context, listKey string, indexPrefix byte, id []byte) {
	idx := listIndex(ctx, indexPrefix, id)
	if idx == 0 {
		return
	}

	list := common.GetList(ctx, listKey)
	last := len(list) - 1
	if idx != last {
		moved := list[last]
		list[idx] = moved
		storage.Put(ctx, indexKey(indexPrefix, moved), idx)
	}
	// The compiler supports subslices only for []byte, so truncation of the
	// [][]byte list is spelled out as a copy of the first `last` elements.
	trimmed := [][]byte{}
	for i := 0; i < last; i++ {
		trimmed = append(trimmed, list[i])
	}
	list = trimmed
	common.SetSerialized(ctx, listKey, list)
	storage.Delete(ctx, indexKey(indexPrefix, id))
}

func indexKey(prefix byte, id []byte) []byte {
	return append([]byte{prefix}, id...)
}

func orgKey(id []byte) []byte {
	return append([]byte{orgPrefix}, id...)
}

func challengeKey(id []byte, cIdx int) []byte {
	key := append([]byte{challengePrefix}, id...)
	return append(key, []byte(std.Itoa(cIdx, 10))...)
}

func roundKey(id []byte, cIdx, rIdx int) []byte {
	key := append([]byte{roundPrefix}, id...)
	key = append(key, []byte(std.Itoa(cIdx, 10)+":"+std.Itoa(rIdx, 10))...)
	return key
}

func contributionKey(id []byte, cIdx, rIdx int, contributor interop.Hash160) []byte {
	key := append([]byte{contributionPrefix}, id...)
	key = append(key, []byte(std.Itoa(cIdx, 10)+":"+std.Itoa(rIdx, 10)+":")...)
	return append(key, contributor...)
}

func disputeKey(arbitrator interop.Hash160, disputeID int) []byte {
	key := append([]byte{disputePrefix}, arbitrator...)
	return append(key, []byte(std.Itoa(disputeID, 10))...)
}

func getOrganization(ctx storage.Context, id []byte) Organization {
	data := storage.Get(ctx, orgKey(id))
	if data == nil {
		panic("organization not found")
	}
	return std.Deserialize(data.([]byte)).(Organization)
}

func getOrganizationOrNew(ctx storage.Context, id []byte) Organization {
	data := storage.Get(ctx, orgKey(id))
	if data == nil {
		return Organization{ID: id}
	}
	return std.Deserialize(data.([]byte)).(Organization)
}

func putOrganization(ctx storage.Context, org Organization) {
	common.SetSerialized(ctx, orgKey(org.ID), org)
}

func getChallenge(ctx storage.Context, id []byte, cIdx int) Challenge {
	data := storage.Get(ctx, challengeKey(id, cIdx))
	if data == nil {
		panic("challenge not found")
	}
	return std.Deserialize(data.([]byte)).(Challenge)
}

func putChallenge(ctx storage.Context, id []byte, cIdx int, ch Challenge) {
	common.SetSerialized(ctx, challengeKey(id, cIdx), ch)
}

func getRound(ctx storage.Context, id []byte, cIdx, rIdx int) Round {
	data := storage.Get(ctx, roundKey(id, cIdx, rIdx))
	if data == nil {
		panic("round not found")
	}
	return std.Deserialize(data.([]byte)).(Round)
}

func putRound(ctx storage.Context, id []byte, cIdx, rIdx int, round Round) {
	common.SetSerialized(ctx, roundKey(id, cIdx, rIdx), round)
}

func getContribution(ctx storage.Context, id []byte, cIdx, rIdx int, contributor interop.Hash160) Contribution {
	data := storage.Get(ctx, contributionKey(id, cIdx, rIdx, contributor))
	if data == nil {
		return Contribution{}
	}
	return std.Deserialize(data.([]byte)).(Contribution)
}

func putContribution(ctx storage.Context, id []byte, cIdx, rIdx int, contributor interop.Hash160, c Contribution) {
	common.SetSerialized(ctx, contributionKey(id, cIdx, rIdx, contributor), c)
}
