package utils

import (
	"fmt"
	"math/big"
	"strings"
)

// FormatBigInt converts a base-unit amount to a decimal string with trailing zeros trimmed.
// Example: amount=1500000000000000000, decimals=18 => "1.5"
func FormatBigInt(amount *big.Int, decimals uint8) (string, error) {
	if amount == nil {
		return "0.0", nil
	}
	if decimals == 0 {
		return amount.String(), nil
	}

	amountFloat := new(big.Float).SetInt(amount)
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value := new(big.Float).Quo(amountFloat, divisor)

	formattedStr := value.Text('f', int(decimals))
	if strings.Contains(formattedStr, ".") {
		formattedStr = strings.TrimRight(formattedStr, "0")
		formattedStr = strings.TrimRight(formattedStr, ".")
	}
	if strings.HasPrefix(formattedStr, ".") {
		formattedStr = "0" + formattedStr
	}
	if formattedStr == "" && amount.Sign() == 0 {
		return "0", nil
	}
	if formattedStr == "" {
		return value.Text('f', 2), fmt.Errorf("formatting resulted in empty string for non-zero value")
	}
	return formattedStr, nil
}
