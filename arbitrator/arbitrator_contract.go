package arbitrator

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/unknownunknown1/org.id-directories/common"
)

// Dispute is a single arbitration case opened by an arbitrable contract.
type Dispute struct {
	ID int
	// Contract that receives the rule callback.
	Arbitrable interop.Hash160
	Choices    int
	// Provisional ruling while appealable, final once solved.
	Ruling int
	Status int
	// Appeal window bounds, meaningful only while appealable.
	AppealPeriodStart int
	AppealPeriodEnd   int
	// Number of appeals funded so far.
	Appeals int
}

// Dispute statuses.
const (
	StatusWaiting    = 0
	StatusAppealable = 1
	StatusSolved     = 2
)

const (
	arbitrationFeeKey = "arbitrationFee"
	appealFeeKey      = "appealFee"
	appealWindowKey   = "appealWindow"
	disputeCountKey   = "disputeCount"

	disputePrefix = 'd'
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
		arbitrationFee int
		appealFee      int
		appealWindow   int
	})

	if args.arbitrationFee <= 0 || args.appealFee <= 0 || args.appealWindow <= 0 {
		panic("fees and appeal window must be positive")
	}

	storage.Put(ctx, arbitrationFeeKey, args.arbitrationFee)
	storage.Put(ctx, appealFeeKey, args.appealFee)
	storage.Put(ctx, appealWindowKey, args.appealWindow)
	storage.Put(ctx, disputeCountKey, 0)

	runtime.Log("arbitrator contract initialized")
}

// Update method updates contract source code and manifest. Can be invoked
// only by committee.
func Update(script []byte, manifest []byte, data interface{}) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("arbitrator contract updated")
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// OnNEP17Payment accepts native GAS covering dispute and appeal fees.
func OnNEP17Payment(from interop.Hash160, amount int, data interface{}) {
	if !runtime.GetCallingScriptHash().Equals(gas.Hash) {
		panic("only GAS is accepted")
	}
}

// ArbitrationCost returns the fee required to open a dispute.
func ArbitrationCost(extraData []byte) int {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, arbitrationFeeKey).(int)
}

// AppealCost returns the fee required to appeal the current ruling of a
// dispute.
func AppealCost(disputeID int, extraData []byte) int {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, appealFeeKey).(int)
}

// CreateDispute opens a new case on behalf of the calling arbitrable
// contract, which must have covered the arbitration fee. Returns the dispute
// identifier used in all subsequent calls and in the rule callback.
func CreateDispute(choices int, extraData []byte, payment int) int {
	ctx := storage.GetContext()

	arbitrable := runtime.GetCallingScriptHash()
	if management.GetContract(arbitrable) == nil {
		panic("disputes can be opened by contracts only")
	}
	if choices < 2 {
		panic("at least two ruling choices required")
	}
	if payment < storage.Get(ctx, arbitrationFeeKey).(int) {
		panic("arbitration fee not covered")
	}

	id := storage.Get(ctx, disputeCountKey).(int) + 1
	storage.Put(ctx, disputeCountKey, id)

	d := Dispute{
		ID:         id,
		Arbitrable: arbitrable,
		Choices:    choices,
	}
	common.SetSerialized(ctx, disputeKey(id), d)

	runtime.Notify("DisputeCreation", id, arbitrable)

	return id
}

// GiveRuling records a ruling and opens the appeal window. Can be invoked
// only by committee. The ruling becomes final via ExecuteRuling once the
// window lapses without an appeal.
func GiveRuling(disputeID int, ruling int) {
	if !runtime.CheckWitness(common.CommitteeAddress()) {
		panic("only committee can rule")
	}

	ctx := storage.GetContext()
	d := getDispute(ctx, disputeID)

	if d.Status != StatusWaiting {
		panic("dispute is not awaiting a ruling")
	}
	if ruling < 0 || ruling > d.Choices {
		panic("invalid ruling")
	}

	now := int(runtime.GetTime())
	d.Ruling = ruling
	d.Status = StatusAppealable
	d.AppealPeriodStart = now
	d.AppealPeriodEnd = now + storage.Get(ctx, appealWindowKey).(int)
	common.SetSerialized(ctx, disputeKey(disputeID), d)

	runtime.Notify("AppealPossible", disputeID, d.Arbitrable)
}

// Appeal contests the provisional ruling. Only the arbitrable contract that
// opened the dispute may appeal, strictly inside the appeal window, covering
// the appeal fee. The dispute returns to the waiting state for a new ruling.
func Appeal(disputeID int, extraData []byte, payment int) {
	ctx := storage.GetContext()
	d := getDispute(ctx, disputeID)

	if !d.Arbitrable.Equals(runtime.GetCallingScriptHash()) {
		panic("only the arbitrable contract can appeal")
	}
	if d.Status != StatusAppealable {
		panic("dispute is not appealable")
	}
	now := int(runtime.GetTime())
	if now < d.AppealPeriodStart || now >= d.AppealPeriodEnd {
		panic("appeal window is closed")
	}
	if payment < storage.Get(ctx, appealFeeKey).(int) {
		panic("appeal fee not covered")
	}

	d.Status = StatusWaiting
	d.AppealPeriodStart = 0
	d.AppealPeriodEnd = 0
	d.Appeals++
	common.SetSerialized(ctx, disputeKey(disputeID), d)

	runtime.Notify("AppealDecision", disputeID, d.Arbitrable)
}

// ExecuteRuling finalizes a dispute whose appeal window lapsed without an
// appeal and delivers the ruling to the arbitrable contract. Anyone may
// trigger it.
func ExecuteRuling(disputeID int) {
	ctx := storage.GetContext()
	d := getDispute(ctx, disputeID)

	if d.Status != StatusAppealable {
		panic("dispute is not appealable")
	}
	if int(runtime.GetTime()) < d.AppealPeriodEnd {
		panic("appeal window is still open")
	}

	d.Status = StatusSolved
	common.SetSerialized(ctx, disputeKey(disputeID), d)

	contract.Call(d.Arbitrable, "rule", contract.All, disputeID, d.Ruling)
}

// AppealPeriod returns the appeal window bounds of a dispute, both zero when
// the dispute is not currently appealable.
func AppealPeriod(disputeID int) []int {
	ctx := storage.GetReadOnlyContext()
	d := getDispute(ctx, disputeID)

	if d.Status != StatusAppealable {
		return []int{0, 0}
	}
	return []int{d.AppealPeriodStart, d.AppealPeriodEnd}
}

// CurrentRuling returns the latest ruling of a dispute, provisional or final.
func CurrentRuling(disputeID int) int {
	ctx := storage.GetReadOnlyContext()
	return getDispute(ctx, disputeID).Ruling
}

// GetDispute returns the full dispute record.
func GetDispute(disputeID int) Dispute {
	ctx := storage.GetReadOnlyContext()
	return getDispute(ctx, disputeID)
}

// WithdrawFees moves collected arbitration fees out of the contract. Can be
// invoked only by committee.
func WithdrawFees(to interop.Hash160, amount int) {
	if !runtime.CheckWitness(common.CommitteeAddress()) {
		panic("only committee can withdraw fees")
	}

	if !gas.Transfer(runtime.GetExecutingScriptHash(), to, amount, nil) {
		panic("fee withdrawal failed")
	}
}

func getDispute(ctx storage.Context, disputeID int) Dispute {
	data := storage.Get(ctx, disputeKey(disputeID))
	if data == nil {
		panic("dispute not found")
	}
	return std.Deserialize(data.([]byte)).(Dispute)
}

func disputeKey(disputeID int) []byte {
	return append([]byte{disputePrefix}, []byte(std.Itoa(disputeID, 10))...)
}
