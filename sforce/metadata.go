package main

import (
	sfrest "github.com/natserract/sfrest/pkg/salesforce/rest"
	"github.com/spf13/cobra"
)

var (
	modifiedSince   string
	unmodifiedSince string
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List the REST resources of the discovered API version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := authenticatedSession(cmd.Context())
		if err != nil {
			return err
		}
		resp, err := s.GetResources(cmd.Context())
		if err != nil {
			return err
		}
		return printResponse(cmd.OutOrStdout(), resp)
	},
}

var objectsCmd = &cobra.Command{
	Use:   "objects",
	Short: "List the sObjects available to the user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := authenticatedSession(cmd.Context())
		if err != nil {
			return err
		}
		resp, err := s.GetObjects(cmd.Context(), conditionalFromFlags())
		if err != nil {
			return err
		}
		return printResponse(cmd.OutOrStdout(), resp)
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe OBJECT_NAME",
	Short: "Describe the fields and metadata of an sObject",
	Long: `Describe the fields and metadata of an sObject.

Examples:
  # Describe the Account object
  sforce describe Account

  # Describe only if it changed since a date
  sforce describe Invoice__c --modified-since "Fri, 01 Mar 2024 00:00:00 GMT"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := authenticatedSession(cmd.Context())
		if err != nil {
			return err
		}
		resp, err := s.DescribeObject(cmd.Context(), args[0], conditionalFromFlags())
		if err != nil {
			return err
		}
		return printResponse(cmd.OutOrStdout(), resp)
	},
}

func conditionalFromFlags() sfrest.ConditionalOptions {
	return sfrest.ConditionalOptions{
		ModifiedSince:   modifiedSince,
		UnmodifiedSince: unmodifiedSince,
	}
}

func init() {
	for _, c := range []*cobra.Command{objectsCmd, describeCmd} {
		c.Flags().StringVar(&modifiedSince, "modified-since", "", "Only return metadata modified after this date (EEE, dd MMM yyyy HH:mm:ss z)")
		c.Flags().StringVar(&unmodifiedSince, "unmodified-since", "", "Only return metadata not modified after this date (EEE, dd MMM yyyy HH:mm:ss z)")
	}

	rootCmd.AddCommand(resourcesCmd, objectsCmd, describeCmd)
}
