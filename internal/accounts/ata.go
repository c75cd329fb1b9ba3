package accounts

import (
	"github.com/gagliardetto/solana-go"

	"github.com/aman-zulfiqar/solana-swap-terminal/internal/constants"
)

var associatedTokenProgramID = solana.MustPublicKeyFromBase58(constants.AssociatedTokenProgramID)

// FindAssociatedTokenAddress derives the canonical ATA PDA for (owner, mint).
// Seeds: [owner, token_program, mint]. The legacy token program is always
// used in the seeds: only the standard ATA counts as the canonical holding
// account for a mint, auxiliary accounts do not.
func FindAssociatedTokenAddress(owner, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			owner.Bytes(),
			solana.TokenProgramID.Bytes(),
			mint.Bytes(),
		},
		associatedTokenProgramID,
	)
}
