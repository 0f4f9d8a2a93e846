/*
Arbitrator contract is an appealable arbitration service for arbitrable
contracts such as the organization directory.

Arbitrable contracts open disputes by covering the configured arbitration
fee. Every committee ruling is provisional first: it opens an appeal window
during which the arbitrable contract may appeal by covering the appeal fee,
sending the dispute back to the waiting state. A ruling whose window lapses
without an appeal is finalized by anyone via executeRuling, which delivers
it to the arbitrable contract's rule method.

# Contract notifications

DisputeCreation notification. Produced when a new dispute is opened.

	DisputeCreation:
	  - name: disputeID
	    type: Integer
	  - name: arbitrable
	    type: Hash160

AppealPossible notification. Produced when a provisional ruling opens an
appeal window.

	AppealPossible:
	  - name: disputeID
	    type: Integer
	  - name: arbitrable
	    type: Hash160

AppealDecision notification. Produced when a dispute is appealed.

	AppealDecision:
	  - name: disputeID
	    type: Integer
	  - name: arbitrable
	    type: Hash160
*/
package arbitrator
