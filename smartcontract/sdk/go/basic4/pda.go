package basic4

import (
	"github.com/gagliardetto/solana-go"
)

const CounterSeed = "counter"

// DeriveCounterPDA derives the program's single counter account.
// Seeds: ["counter"]
func DeriveCounterPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(CounterSeed)}, programID)
}
