package main

import (
	"github.com/spf13/cobra"

	"github.com/featuregraph/fg/internal/mutation"
	"github.com/featuregraph/fg/internal/types"
)

var connectType string

var connectCmd = &cobra.Command{
	Use:   "connect <source-id> <target-id>",
	Short: "Connect two features",
	Long: `Add a directed edge from source to target. The edge type defaults
to depends_on; connecting an already-connected pair is a no-op that
reports the existing connection.

Examples:
  fg connect checkout payment
  fg connect dark-mode theming --type extends`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runMutation(mutation.Request{
			Type:            mutation.RequestConnectFeatures,
			SourceFeatureID: args[0],
			TargetFeatureID: args[1],
			ConnectionType:  types.EdgeType(connectType),
		})
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect <source-id> <target-id>",
	Short: "Remove the connection between two features",
	Long: `Remove the edge from source to target. Disconnecting a pair that is
not connected is a no-op that says so.

Example:
  fg disconnect checkout legacy-payment`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runMutation(mutation.Request{
			Type:            mutation.RequestDisconnectFeatures,
			SourceFeatureID: args[0],
			TargetFeatureID: args[1],
		})
	},
}

var readyCmd = &cobra.Command{
	Use:   "ready <feature-id...>",
	Short: "Mark features ready for development",
	Long: `Transition features to status active. The batch is best-effort:
unknown or rejected features are reported and the rest still
transition.

Example:
  fg ready auth auth-oauth`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runMutation(mutation.Request{
			Type:       mutation.RequestMarkReady,
			FeatureIDs: args,
		})
	},
}

func init() {
	connectCmd.Flags().StringVarP(&connectType, "type", "t", "", "edge type (depends_on, extends, related_to)")
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(disconnectCmd)
	rootCmd.AddCommand(readyCmd)
}
