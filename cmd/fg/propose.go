package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/featuregraph/fg/internal/mutation"
	"github.com/featuregraph/fg/internal/types"
)

var (
	proposeType      string
	proposeRationale string
)

var proposeCmd = &cobra.Command{
	Use:   "propose <feature-id> <summary...>",
	Short: "Propose a change to a feature",
	Long: `File a change proposal for a feature. Proposals are resolved later
with 'fg approve' or 'fg reject'; a create-type proposal for a feature
that doesn't exist yet stages it in status proposed.

Examples:
  fg propose auth "Split password reset into its own feature"
  fg propose billing "New billing module" --type create`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runMutation(mutation.Request{
			Type:         mutation.RequestProposeChange,
			FeatureID:    args[0],
			Summary:      strings.Join(args[1:], " "),
			ProposalType: types.ProposalType(proposeType),
			Rationale:    proposeRationale,
		})
	},
}

var (
	resolveProposalID string
	resolveRationale  string
)

var approveCmd = &cobra.Command{
	Use:   "approve [feature-id]",
	Short: "Approve a pending proposal",
	Long: `Approve a proposal, activating its feature where the lifecycle
allows. Lookup is by --proposal id when given, otherwise by the
feature's newest unresolved proposal.

Examples:
  fg approve auth
  fg approve --proposal prop-1a2b3c`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runResolve(mutation.RequestApproveChange, args)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject [feature-id]",
	Short: "Reject a pending proposal",
	Long: `Reject a proposal. A proposed feature moves to status rejected;
re-proposing it later requires a fresh proposal.

Examples:
  fg reject auth --rationale "Out of scope for this quarter"
  fg reject --proposal prop-1a2b3c`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runResolve(mutation.RequestRejectChange, args)
	},
}

func runResolve(typ mutation.RequestType, args []string) {
	req := mutation.Request{
		Type:       typ,
		ProposalID: resolveProposalID,
		Rationale:  resolveRationale,
	}
	if len(args) == 1 {
		req.FeatureID = args[0]
	}
	runMutation(req)
}

var proposalsStatus string

var proposalsCmd = &cobra.Command{
	Use:   "proposals",
	Short: "List change proposals",
	Long: `List proposals, newest first.

Examples:
  fg proposals
  fg proposals --status proposed`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s, err := openSession(ctx)
		if err != nil {
			fatal(err)
		}
		defer s.Close()

		proposals, err := s.audit.ListProposals(ctx, types.ProposalStatus(proposalsStatus))
		if err != nil {
			fatal(err)
		}
		if len(proposals) == 0 {
			fmt.Println("No proposals.")
			return
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("\n%s\n\n", cyan("Proposals"))
		for _, p := range proposals {
			fmt.Printf("  %-16s %-10s %-10s %-20s %s\n",
				p.ID, p.Type, renderProposalStatus(p.Status), p.FeatureID, p.Summary)
		}
		fmt.Println()
	},
}

func renderProposalStatus(s types.ProposalStatus) string {
	switch s {
	case types.ProposalApproved:
		return color.GreenString(string(s))
	case types.ProposalRejected:
		return color.RedString(string(s))
	default:
		return color.YellowString(string(s))
	}
}

func init() {
	proposeCmd.Flags().StringVarP(&proposeType, "type", "t", "", "proposal type (create, update, connect, disconnect, mark_ready)")
	proposeCmd.Flags().StringVar(&proposeRationale, "rationale", "", "why this change is proposed")
	rootCmd.AddCommand(proposeCmd)

	approveCmd.Flags().StringVarP(&resolveProposalID, "proposal", "p", "", "proposal id")
	approveCmd.Flags().StringVar(&resolveRationale, "rationale", "", "resolution rationale")
	rootCmd.AddCommand(approveCmd)

	rejectCmd.Flags().StringVarP(&resolveProposalID, "proposal", "p", "", "proposal id")
	rejectCmd.Flags().StringVar(&resolveRationale, "rationale", "", "resolution rationale")
	rootCmd.AddCommand(rejectCmd)

	proposalsCmd.Flags().StringVar(&proposalsStatus, "status", "", "filter by status")
	rootCmd.AddCommand(proposalsCmd)
}
