/*
Token contract is the stake token of the organization directory.

It is a NEP-17 compatible fungible token. Registration requesters escrow a
deposit of it with the directory contract; the deposit is either returned on
a clean exit or forfeited to the winning challenger. Tokens are minted by the
committee, transfers are authorized by the owner's witness or, for contract
accounts, by the contract moving funds out of its own balance.

# Contract notifications

Transfer notification. This is the NEP-17 standard notification.

	Transfer:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package token
