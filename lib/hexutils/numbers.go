package hexutils

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/go-errors/errors"
)

func IntFromHex(hexNumber string) (int64, error) {
	// Empty string is OK
	if len(hexNumber) == 0 {
		return 0, nil
	}
	if len(hexNumber) < 2 || hexNumber[:2] != "0x" {
		return 0, errors.Errorf("couldn't parse '%s' as number, must start with '0x'", hexNumber)
	}
	n, err := strconv.ParseInt(hexNumber[2:], 16, 64)
	if err != nil {
		return 0, errors.Errorf("failed to parse '%s' as int: %w", hexNumber, err)
	}
	return n, nil
}

// ToQuantity renders n as a JSON-RPC quantity (0x-prefixed, no leading zeros).
func ToQuantity(n int64) string {
	return fmt.Sprintf("0x%x", n)
}

// PaddedHex renders n as 0x followed by exactly 2*size hex digits.
// Values wider than size bytes are rendered in full.
func PaddedHex(n *big.Int, size int) string {
	digits := n.Text(16)
	if pad := 2*size - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	return "0x" + digits
}
