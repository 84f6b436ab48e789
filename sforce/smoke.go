package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	sfrest "github.com/natserract/sfrest/pkg/salesforce/rest"
	"github.com/natserract/sfrest/pkg/salesforce/schema"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Run an Account create, query, update, query, delete round trip",
	Long: `Run an Account create, query, update, query, delete round trip
against the configured org and check every status code.

The account is named "Fostech", created with 1 employee and updated to 3.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := authenticatedSession(cmd.Context())
		if err != nil {
			return err
		}
		return runSmoke(cmd.Context(), s, cmd.OutOrStdout(), current.logger)
	},
}

const smokeAccountName = "Fostech"

type smokeStep struct {
	name string
	want int
}

// AccountClient is the part of the session the smoke run drives.
type AccountClient interface {
	CreateAccount(ctx context.Context, data []byte) (*sfrest.Response, error)
	QueryAccount(ctx context.Context, id string) (*sfrest.Response, error)
	UpdateAccount(ctx context.Context, id string, data []byte) (*sfrest.Response, error)
	DeleteAccount(ctx context.Context, id string) (*sfrest.Response, error)
}

func runSmoke(ctx context.Context, c AccountClient, w io.Writer, logger *zap.Logger) error {
	check := func(step smokeStep, resp *sfrest.Response, err error) error {
		if err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
		if resp.StatusCode != step.want {
			return fmt.Errorf("%s: expected status %d, got %d: %s", step.name, step.want, resp.StatusCode, string(resp.Body))
		}
		okLabel.Fprintf(w, "ok   ")
		fmt.Fprintf(w, "%-8s %d\n", step.name, resp.StatusCode)
		return nil
	}

	created, err := schema.NewAccount(schema.WithName(smokeAccountName), schema.WithNumberOfEmployees(1)).JSON(true)
	if err != nil {
		return err
	}
	resp, err := c.CreateAccount(ctx, created)
	if err := check(smokeStep{"create", http.StatusCreated}, resp, err); err != nil {
		return err
	}
	id, err := sfrest.CreatedID(resp)
	if err != nil {
		return err
	}
	logger.Info("Smoke account created", zap.String("account_id", id))

	resp, err = c.QueryAccount(ctx, id)
	if err := check(smokeStep{"query", http.StatusOK}, resp, err); err != nil {
		return err
	}
	if got := resp.Get("NumberOfEmployees").Int(); got != 1 {
		return fmt.Errorf("query: expected NumberOfEmployees 1, got %d", got)
	}

	updated, err := schema.NewAccount(schema.WithNumberOfEmployees(3)).JSON(true)
	if err != nil {
		return err
	}
	resp, err = c.UpdateAccount(ctx, id, updated)
	if err := check(smokeStep{"update", http.StatusNoContent}, resp, err); err != nil {
		return err
	}

	resp, err = c.QueryAccount(ctx, id)
	if err := check(smokeStep{"requery", http.StatusOK}, resp, err); err != nil {
		return err
	}
	if got := resp.Get("NumberOfEmployees").Int(); got != 3 {
		return fmt.Errorf("requery: expected NumberOfEmployees 3, got %d", got)
	}
	if got := resp.Get("Name").String(); got != smokeAccountName {
		return fmt.Errorf("requery: expected Name %q, got %q", smokeAccountName, got)
	}

	resp, err = c.DeleteAccount(ctx, id)
	if err := check(smokeStep{"delete", http.StatusNoContent}, resp, err); err != nil {
		return err
	}

	logger.Info("Smoke run passed", zap.String("account_id", id))
	return nil
}

func init() {
	rootCmd.AddCommand(smokeCmd)
}
