package orgid

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/unknownunknown1/org.id-directories/common"
)

type (
	// OrganizationRecord stores the identity and ownership data of a single
	// organization.
	OrganizationRecord struct {
		ID    []byte
		Owner interop.Hash160
		// Designated director, meaningful only once accepted.
		Director         interop.Hash160
		DirectorAccepted bool
		Active           bool
	}

	// LookupResult is the answer this registry gives to other contracts.
	LookupResult struct {
		Exists           bool
		Owner            interop.Hash160
		Director         interop.Hash160
		DirectorAccepted bool
		Active           bool
	}
)

const (
	recordPrefix = 'i'

	orgIDSize = 32
)

// nolint:deadcode,unused
func _deploy(data interface{}, isUpdate bool) {
	if isUpdate {
		args := data.([]interface{})
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	runtime.Log("orgid contract initialized")
}

// Update method updates contract source code and manifest. Can be invoked
// only by committee.
func Update(script []byte, manifest []byte, data interface{}) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("orgid contract updated")
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// CreateOrganization registers a new organization identity owned by the
// given account. The identifier must be unused.
func CreateOrganization(id []byte, owner interop.Hash160) {
	checkOrgID(id)
	if len(owner) != interop.Hash160Len {
		panic("incorrect owner length")
	}
	common.CheckOwnerWitness(owner)

	ctx := storage.GetContext()
	if storage.Get(ctx, recordKey(id)) != nil {
		panic("organization already exists")
	}

	record := OrganizationRecord{
		ID:     id,
		Owner:  owner,
		Active: true,
	}
	common.SetSerialized(ctx, recordKey(id), record)

	runtime.Notify("OrganizationCreated", id, owner)
}

// TransferDirectorship designates a new director for the organization. Only
// the owner may call it; the directorship stays unaccepted until the new
// director confirms it.
func TransferDirectorship(id []byte, director interop.Hash160) {
	ctx := storage.GetContext()
	record := getRecord(ctx, id)
	common.CheckOwnerWitness(record.Owner)

	record.Director = director
	record.DirectorAccepted = false
	common.SetSerialized(ctx, recordKey(id), record)

	runtime.Notify("DirectorshipTransferred", id, director)
}

// AcceptDirectorship confirms the pending directorship. Only the designated
// director may call it.
func AcceptDirectorship(id []byte) {
	ctx := storage.GetContext()
	record := getRecord(ctx, id)

	if len(record.Director) != interop.Hash160Len {
		panic("no director designated")
	}
	common.CheckWitness(record.Director)

	record.DirectorAccepted = true
	common.SetSerialized(ctx, recordKey(id), record)

	runtime.Notify("DirectorshipAccepted", id, record.Director)
}

// ToggleActiveState flips the active flag of the organization. Only the owner
// may call it.
func ToggleActiveState(id []byte) {
	ctx := storage.GetContext()
	record := getRecord(ctx, id)
	common.CheckOwnerWitness(record.Owner)

	record.Active = !record.Active
	common.SetSerialized(ctx, recordKey(id), record)

	runtime.Notify("ActiveStateChanged", id, record.Active)
}

// Lookup answers the existence, ownership and activity question about an
// organization. Unknown identifiers yield a zero result with Exists unset
// rather than a panic, callers decide how strict to be.
func Lookup(id []byte) LookupResult {
	ctx := storage.GetReadOnlyContext()

	data := storage.Get(ctx, recordKey(id))
	if data == nil {
		return LookupResult{}
	}

	record := std.Deserialize(data.([]byte)).(OrganizationRecord)
	return LookupResult{
		Exists:           true,
		Owner:            record.Owner,
		Director:         record.Director,
		DirectorAccepted: record.DirectorAccepted,
		Active:           record.Active,
	}
}

// GetOrganization returns the full record of a known organization.
func GetOrganization(id []byte) OrganizationRecord {
	ctx := storage.GetReadOnlyContext()
	return getRecord(ctx, id)
}

// Organizations returns an iterator over all registered identity records.
func Organizations() iterator.Iterator {
	ctx := storage.GetReadOnlyContext()
	return storage.Find(ctx, []byte{recordPrefix}, storage.ValuesOnly|storage.DeserializeValues)
}

func getRecord(ctx storage.Context, id []byte) OrganizationRecord {
	data := storage.Get(ctx, recordKey(id))
	if data == nil {
		panic("organization not found")
	}
	return std.Deserialize(data.([]byte)).(OrganizationRecord)
}

func checkOrgID(id []byte) {
	if len(id) != orgIDSize {
		panic("incorrect length of organization ID")
	}
}

func recordKey(id []byte) []byte {
	return append([]byte{recordPrefix}, id...)
}
