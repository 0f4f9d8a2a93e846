/*
OrgID contract is the identity registry behind the organization directory.

It answers the one question the directory asks before accepting a
registration request: does this organization exist, who owns it, who directs
it and is it active. Records are owned by the account that created them;
directorship is a two-step designation that only counts once the designated
director accepts it.

# Contract notifications

OrganizationCreated notification. Produced when a new identity is registered.

	OrganizationCreated:
	  - name: organization
	    type: ByteArray
	  - name: owner
	    type: Hash160

DirectorshipTransferred notification. Produced when the owner designates a
new director.

	DirectorshipTransferred:
	  - name: organization
	    type: ByteArray
	  - name: director
	    type: Hash160

DirectorshipAccepted notification. Produced when the designated director
confirms.

	DirectorshipAccepted:
	  - name: organization
	    type: ByteArray
	  - name: director
	    type: Hash160

ActiveStateChanged notification. Produced when the owner toggles the active
flag.

	ActiveStateChanged:
	  - name: organization
	    type: ByteArray
	  - name: active
	    type: Boolean
*/
package orgid
