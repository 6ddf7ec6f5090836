package btc

// FeeThresholdFunc computes the acceptable-fee ceiling for a transaction
// shape. Above the ceiling the user gets an extra high-fee warning. The
// formula is swappable policy, not part of the flow contract.
type FeeThresholdFunc func(inputCount, outputCount int, totalInputValue uint64) uint64

// defaultFeeThreshold bounds the fee at maxFeeRate (sat/vB) times a
// conservative size estimate of the final signed transaction.
func defaultFeeThreshold(maxFeeRate uint64) FeeThresholdFunc {
	return func(inputCount, outputCount int, _ uint64) uint64 {
		return maxFeeRate * estimateTxnSize(inputCount, outputCount)
	}
}

// estimateTxnSize approximates the serialized size in bytes of a signed
// transaction: 148 per P2PKH input, 34 per output, 10 of framing.
func estimateTxnSize(inputCount, outputCount int) uint64 {
	return uint64(inputCount)*148 + uint64(outputCount)*34 + 10
}
