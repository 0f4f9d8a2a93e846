package token

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/unknownunknown1/org.id-directories/common"
)

// Token holds all token info.
type Token struct {
	// Ticker symbol
	Symbol string
	// Amount of decimals
	Decimals int
	// Storage key for circulation value
	CirculationKey string
}

const (
	symbol      = "ORGT"
	decimals    = 8
	circulation = "TotalSupply"

	accPrefix = 'a'
)

var token Token

func createToken() Token {
	return Token{
		Symbol:         symbol,
		Decimals:       decimals,
		CirculationKey: circulation,
	}
}

func init() {
	token = createToken()
}

// nolint:deadcode,unused
func _deploy(data interface{}, isUpdate bool) {
	if isUpdate {
		args := data.([]interface{})
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	ctx := storage.GetContext()
	storage.Put(ctx, token.CirculationKey, 0)

	runtime.Log("token contract initialized")
}

// Update method updates contract source code and manifest. Can be invoked
// only by committee.
func Update(script []byte, manifest []byte, data interface{}) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("token contract updated")
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// Symbol is a NEP-17 standard method that returns the token symbol.
func Symbol() string {
	return token.Symbol
}

// Decimals is a NEP-17 standard method that returns the precision of the
// token.
func Decimals() int {
	return token.Decimals
}

// TotalSupply is a NEP-17 standard method that returns the total amount of
// minted tokens.
func TotalSupply() int {
	ctx := storage.GetReadOnlyContext()
	return token.getSupply(ctx)
}

// BalanceOf is a NEP-17 standard method that returns the token balance of the
// specified account.
func BalanceOf(account interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return token.balanceOf(ctx, account)
}

// Transfer is a NEP-17 standard method that moves tokens between accounts.
// It can be invoked by the account owner or by a contract moving funds out of
// its own account.
//
// Produces Transfer notification on success.
func Transfer(from, to interop.Hash160, amount int, data interface{}) bool {
	ctx := storage.GetContext()
	return token.transfer(ctx, from, to, amount, data)
}

// Mint creates tokens on the specified account. Can be invoked only by
// committee.
//
// Produces Transfer notification with empty sender.
func Mint(to interop.Hash160, amount int) {
	if !runtime.CheckWitness(common.CommitteeAddress()) {
		panic("only committee can mint tokens")
	}
	if amount <= 0 {
		panic("amount must be positive")
	}

	ctx := storage.GetContext()
	balance := token.balanceOf(ctx, to)
	storage.Put(ctx, accountKey(to), balance+amount)
	storage.Put(ctx, token.CirculationKey, token.getSupply(ctx)+amount)

	runtime.Notify("Transfer", interop.Hash160(nil), to, amount)
	runtime.Log("tokens minted")
}

func (t Token) getSupply(ctx storage.Context) int {
	return storage.Get(ctx, t.CirculationKey).(int)
}

func (t Token) balanceOf(ctx storage.Context, account interop.Hash160) int {
	data := storage.Get(ctx, accountKey(account))
	if data == nil {
		return 0
	}
	return data.(int)
}

func (t Token) transfer(ctx storage.Context, from, to interop.Hash160, amount int, data interface{}) bool {
	if len(from) != interop.Hash160Len || len(to) != interop.Hash160Len {
		panic("incorrect account length")
	}
	if amount < 0 {
		panic("amount must not be negative")
	}

	if !from.Equals(runtime.GetCallingScriptHash()) && !runtime.CheckWitness(from) {
		return false
	}

	fromBalance := t.balanceOf(ctx, from)
	if fromBalance < amount {
		return false
	}

	if !from.Equals(to) && amount != 0 {
		if fromBalance == amount {
			storage.Delete(ctx, accountKey(from))
		} else {
			storage.Put(ctx, accountKey(from), fromBalance-amount)
		}
		storage.Put(ctx, accountKey(to), t.balanceOf(ctx, to)+amount)
	}

	runtime.Notify("Transfer", from, to, amount)

	if management.GetContract(to) != nil {
		contract.Call(to, "onNEP17Payment", contract.All, from, amount, data)
	}

	return true
}

func accountKey(account interop.Hash160) []byte {
	return append([]byte{accPrefix}, account...)
}
