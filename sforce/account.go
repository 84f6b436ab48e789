package main

import (
	"github.com/natserract/sfrest/pkg/salesforce/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var accountFlags struct {
	name               string
	employees          int
	shippingState      string
	shippingPostalCode string
	shippingCity       string
	shippingStreet     string
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Create, read, update and delete Account records",
}

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an Account from the given field flags",
	Long: `Create an Account from the given field flags.
Only the flags that are passed are sent.

Examples:
  sforce account create --name Fostech --employees 1 --shipping-city Denpasar`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := accountFromFlags(cmd.Flags()).JSON(true)
		if err != nil {
			return err
		}
		s, err := authenticatedSession(cmd.Context())
		if err != nil {
			return err
		}
		resp, err := s.CreateAccount(cmd.Context(), body)
		if err != nil {
			return err
		}
		return printResponse(cmd.OutOrStdout(), resp)
	},
}

var accountGetCmd = &cobra.Command{
	Use:   "get ACCOUNT_ID",
	Short: "Fetch an Account record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := authenticatedSession(cmd.Context())
		if err != nil {
			return err
		}
		resp, err := s.QueryAccount(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printResponse(cmd.OutOrStdout(), resp)
	},
}

var accountUpdateCmd = &cobra.Command{
	Use:   "update ACCOUNT_ID",
	Short: "Update the fields of an Account given by the field flags",
	Long: `Update the fields of an Account given by the field flags.
Fields whose flags are not passed are left untouched.

Examples:
  sforce account update 001xx000003DGb2AAG --employees 3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := accountFromFlags(cmd.Flags()).JSON(true)
		if err != nil {
			return err
		}
		s, err := authenticatedSession(cmd.Context())
		if err != nil {
			return err
		}
		resp, err := s.UpdateAccount(cmd.Context(), args[0], body)
		if err != nil {
			return err
		}
		return printResponse(cmd.OutOrStdout(), resp)
	},
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete ACCOUNT_ID",
	Short: "Delete an Account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := authenticatedSession(cmd.Context())
		if err != nil {
			return err
		}
		resp, err := s.DeleteAccount(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printResponse(cmd.OutOrStdout(), resp)
	},
}

// accountFromFlags builds an Account holding only the fields whose flags
// were passed on the command line.
func accountFromFlags(flags *pflag.FlagSet) *schema.Account {
	var fields []schema.AccountField
	if flags.Changed("name") {
		fields = append(fields, schema.WithName(accountFlags.name))
	}
	if flags.Changed("employees") {
		fields = append(fields, schema.WithNumberOfEmployees(accountFlags.employees))
	}
	if flags.Changed("shipping-state") {
		fields = append(fields, schema.WithShippingState(accountFlags.shippingState))
	}
	if flags.Changed("shipping-postal-code") {
		fields = append(fields, schema.WithShippingPostalCode(accountFlags.shippingPostalCode))
	}
	if flags.Changed("shipping-city") {
		fields = append(fields, schema.WithShippingCity(accountFlags.shippingCity))
	}
	if flags.Changed("shipping-street") {
		fields = append(fields, schema.WithShippingStreet(accountFlags.shippingStreet))
	}
	return schema.NewAccount(fields...)
}

func addAccountFieldFlags(flags *pflag.FlagSet) {
	flags.StringVar(&accountFlags.name, "name", "", "Account name")
	flags.IntVar(&accountFlags.employees, "employees", 0, "Number of employees")
	flags.StringVar(&accountFlags.shippingState, "shipping-state", "", "Shipping state")
	flags.StringVar(&accountFlags.shippingPostalCode, "shipping-postal-code", "", "Shipping postal code")
	flags.StringVar(&accountFlags.shippingCity, "shipping-city", "", "Shipping city")
	flags.StringVar(&accountFlags.shippingStreet, "shipping-street", "", "Shipping street")
}

func init() {
	addAccountFieldFlags(accountCreateCmd.Flags())
	addAccountFieldFlags(accountUpdateCmd.Flags())

	accountCmd.AddCommand(accountCreateCmd, accountGetCmd, accountUpdateCmd, accountDeleteCmd)
	rootCmd.AddCommand(accountCmd)
}
