package optional

import (
	"github.com/gagliardetto/solana-go"
)

const DataPDASeed = "data_pda"

// DeriveDataPDA derives the optional PDA tied to a data account.
// Seeds: ["data_pda", data_account]
func DeriveDataPDA(programID, dataAccount solana.PublicKey) (solana.PublicKey, uint8, error) {
	seeds := [][]byte{
		[]byte(DataPDASeed),
		dataAccount.Bytes(),
	}
	return solana.FindProgramAddress(seeds, programID)
}
