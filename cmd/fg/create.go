package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/featuregraph/fg/internal/mutation"
)

var (
	createDescription string
	createGroup       string
	createRationale   string
)

var createCmd = &cobra.Command{
	Use:   "create <feature-id> <name...>",
	Short: "Create a new feature",
	Long: `Create a new feature node in status proposed.

Examples:
  fg create auth "Authentication"
  fg create auth-oauth "OAuth login" --group auth --description "Social sign-in"`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runMutation(mutation.Request{
			Type:        mutation.RequestCreateFeature,
			FeatureID:   args[0],
			Name:        strings.Join(args[1:], " "),
			Description: createDescription,
			Group:       createGroup,
			Rationale:   createRationale,
		})
	},
}

var (
	updateName        string
	updateDescription string
	updateGroup       string
)

var updateCmd = &cobra.Command{
	Use:   "update <feature-id>",
	Short: "Update a feature's name, description, or group",
	Long: `Update fields of an existing feature. Only the provided flags change;
everything else is left as is.

Example:
  fg update auth --description "Login, sessions, and password reset"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runMutation(mutation.Request{
			Type:        mutation.RequestUpdateFeature,
			FeatureID:   args[0],
			Name:        updateName,
			Description: updateDescription,
			Group:       updateGroup,
		})
	},
}

// runMutation opens a session, applies one request, and reports the
// outcome in the standard ✓/· form.
func runMutation(req mutation.Request) {
	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	results, err := s.apply(ctx, req)
	if err != nil {
		fatal(err)
	}
	reportResult(results[0])
}

func init() {
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "feature description")
	createCmd.Flags().StringVarP(&createGroup, "group", "g", "", "feature group")
	createCmd.Flags().StringVar(&createRationale, "rationale", "", "why this feature is being added")
	rootCmd.AddCommand(createCmd)

	updateCmd.Flags().StringVar(&updateName, "name", "", "new name")
	updateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "new description")
	updateCmd.Flags().StringVarP(&updateGroup, "group", "g", "", "new group")
	rootCmd.AddCommand(updateCmd)
}
