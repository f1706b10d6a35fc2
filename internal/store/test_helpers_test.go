package store

import "github.com/proofcarrying/roadmap/internal/model"

// testProof builds a minimal VERIFIED proof for a claim at commitID,
// used across tests that just need "a proof exists".
func testProof(claimID int64, commitID string) model.Proof {
	return model.Proof{
		ClaimID:  claimID,
		Cmd:      "true",
		ExitCode: 0,
		CommitID: commitID,
		Kind:     model.KindVerified,
	}
}
