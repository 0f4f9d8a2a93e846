/*
Directory contract is a staked, arbitrated membership registry of
organizations.

Third parties ask the directory to list an organization from the OrgID
contract by escrowing a stake token deposit. Unchallenged requests become
registrations once the execution timeout lapses. Any account may challenge a
pending or existing membership by fully funding the challenger side of a new
challenge round with native GAS; an unanswered challenge lapses in the
challenger's favor and forfeits the stake. Answered challenges escalate to a
dispute at the arbitrator contract, whose rulings may be appealed through
crowdfunded appeal rounds: both sides of the current round must collect the
appeal cost adjusted by the winner/loser/shared fee multiplier, the
provisionally losing side only during the first half of the appeal window.
After the final ruling, backers of the winning side withdraw their share of
the collected fees; rounds that never reached full funding refund their
contributors in full.

Membership is tracked in two swap-remove lists (registered and requested)
consumed as unordered paginated sets. Organization, challenge and round
records are retained forever so that fee withdrawal stays available for
historical rounds.

# Contract notifications

OrganizationSubmitted notification. Produced when a registration request is
escrowed.

	OrganizationSubmitted:
	  - name: organization
	    type: ByteArray
	  - name: requester
	    type: Hash160

OrganizationChallenged notification. Produced when a new challenge opens.

	OrganizationChallenged:
	  - name: organization
	    type: ByteArray
	  - name: challenger
	    type: Hash160
	  - name: challenge
	    type: Integer

Dispute notification. Produced when an accepted challenge opens a dispute at
the arbitrator.

	Dispute:
	  - name: arbitrator
	    type: Hash160
	  - name: disputeID
	    type: Integer
	  - name: metaEvidenceID
	    type: Integer
	  - name: evidenceGroup
	    type: ByteArray

Evidence notification. Produced when a party attaches an evidence reference
to an open challenge.

	Evidence:
	  - name: arbitrator
	    type: Hash160
	  - name: evidenceGroup
	    type: ByteArray
	  - name: submitter
	    type: Hash160
	  - name: evidence
	    type: String

AppealContribution notification. Produced for every accepted appeal round
contribution.

	AppealContribution:
	  - name: organization
	    type: ByteArray
	  - name: challenge
	    type: Integer
	  - name: side
	    type: Integer
	  - name: contributor
	    type: Hash160
	  - name: amount
	    type: Integer

HasPaidAppealFee notification. Produced when one side of the current round
reaches full funding.

	HasPaidAppealFee:
	  - name: organization
	    type: ByteArray
	  - name: challenge
	    type: Integer
	  - name: side
	    type: Integer

Ruling notification. Produced when the arbitrator's ruling is executed
against the directory.

	Ruling:
	  - name: arbitrator
	    type: Hash160
	  - name: disputeID
	    type: Integer
	  - name: ruling
	    type: Integer

ChallengeResolved notification. Produced when a challenge lapses unanswered.

	ChallengeResolved:
	  - name: organization
	    type: ByteArray
	  - name: challenge
	    type: Integer
	  - name: ruling
	    type: Integer

OrganizationRegistered notification. Produced when an organization enters the
registered list.

	OrganizationRegistered:
	  - name: organization
	    type: ByteArray

OrganizationRemoved notification. Produced when an organization leaves the
directory and its stake is settled.

	OrganizationRemoved:
	  - name: organization
	    type: ByteArray

WithdrawalRequested notification. Produced when a voluntary exit starts.

	WithdrawalRequested:
	  - name: organization
	    type: ByteArray
*/
package directory
