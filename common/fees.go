package common

// MaxAmount is the ceiling of all fee arithmetic. It is far above any
// realistic stake or arbitration fee, so hitting it means a misbehaving
// cost oracle rather than a legitimate payment.
const MaxAmount = 1 << 62

// SaturatingAdd returns a+b capped at MaxAmount. Negative arguments are
// treated as zero, amounts never go below it.
func SaturatingAdd(a, b int) int {
	if a < 0 {
		a = 0
	}
	if b < 0 {
		b = 0
	}
	if a > MaxAmount-b {
		return MaxAmount
	}
	return a + b
}

// SaturatingSub returns a-b floored at zero.
func SaturatingSub(a, b int) int {
	if b >= a {
		return 0
	}
	return a - b
}

// SaturatingMul returns a*b capped at MaxAmount.
func SaturatingMul(a, b int) int {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > MaxAmount/b {
		return MaxAmount
	}
	return a * b
}

// CalculateContribution takes only the required part of an available payment
// and reports the remainder to return to the payer. It never fails, the
// remainder is simply zero when the whole payment is consumed.
func CalculateContribution(available, required int) (int, int) {
	if available < 0 {
		available = 0
	}
	if required < 0 {
		required = 0
	}
	if available > required {
		return required, available - required
	}
	return available, 0
}
