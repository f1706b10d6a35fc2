package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proofcarrying/roadmap/internal/model"
)

func renderClaim(opts *RootOptions, cmd *cobra.Command, claim model.Claim, status model.Status, latest *model.Proof) error {
	dto := toClaimDTO(claim, status, latest)
	if opts.JSON {
		return writeJSON(cmd.OutOrStdout(), dto)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "[%s] #%d %s (%s)\n", dto.Status, dto.ID, dto.Slug, dto.Statement)
	return nil
}

func renderClaims(opts *RootOptions, cmd *cobra.Command, dtos []ClaimDTO) error {
	if opts.JSON {
		if dtos == nil {
			dtos = []ClaimDTO{}
		}
		return writeJSON(cmd.OutOrStdout(), dtos)
	}
	for _, dto := range dtos {
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] #%d %s (%s)\n", dto.Status, dto.ID, dto.Slug, dto.Statement)
	}
	return nil
}

func renderProofs(opts *RootOptions, cmd *cobra.Command, proofs []model.Proof) error {
	dtos := make([]*ProofDTO, 0, len(proofs))
	for _, p := range proofs {
		dtos = append(dtos, toProofDTO(p))
	}
	if opts.JSON {
		return writeJSON(cmd.OutOrStdout(), dtos)
	}
	for _, p := range dtos {
		fmt.Fprintf(cmd.OutOrStdout(), "#%d claim=%d exit=%d commit=%s kind=%s\n", p.ID, p.ClaimID, p.ExitCode, p.CommitID, p.Kind)
	}
	return nil
}

// renderError renders err in the format opts requests and returns the
// *ExitError the entrypoint should surface, so callers can `return
// renderError(...)` directly from a RunE.
func renderError(opts *RootOptions, cmd *cobra.Command, action string, err error) error {
	exitErr := WrapExitError(action, err)
	if opts.JSON {
		_ = writeJSON(cmd.ErrOrStderr(), toErrorDTO(err))
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %s: %v\n", action, err)
	}
	return exitErr
}
