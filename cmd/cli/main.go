package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var errInconsistent = errors.New("ledger is inconsistent")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// apiClient talks to the loan service over HTTP.
type apiClient struct {
	baseURL string
	timeout time.Duration
}

// apiError is a non-2xx response from the service.
type apiError struct {
	Status  int
	Code    string `json:"error"`
	Message string `json:"message"`
	Balance string `json:"current_balance,omitempty"`
}

func (e *apiError) Error() string {
	msg := fmt.Sprintf("request failed (%d %s): %s", e.Status, e.Code, e.Message)
	if e.Balance != "" {
		msg += fmt.Sprintf(" (current balance %s)", e.Balance)
	}
	return msg
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, strings.TrimRight(c.baseURL, "/")+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	client := &http.Client{Timeout: c.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &apiError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil || apiErr.Code == "" {
			apiErr.Code = http.StatusText(resp.StatusCode)
			apiErr.Message = truncate(strings.TrimSpace(string(data)), 200)
		}
		return nil, apiErr
	}

	return data, nil
}

func newRootCmd() *cobra.Command {
	client := &apiClient{}

	rootCmd := &cobra.Command{
		Use:           "goloan-cli",
		Short:         "GoLoan CLI tool",
		Long:          `A command line interface for interacting with the GoLoan API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&client.baseURL, "url", "http://localhost:8080", "Base URL of the GoLoan API")
	rootCmd.PersistentFlags().DurationVar(&client.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(loanCmd(client), customerCmd(client))
	return rootCmd
}

func loanCmd(client *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Loan operations",
	}

	cmd.AddCommand(
		loanCreateCmd(client),
		loanQuoteCmd(client),
		getCmd(client, "get", "Show a loan", "/api/v1/loans/%s"),
		getCmd(client, "schedule", "Show the projected EMI schedule of a loan", "/api/v1/loans/%s/schedule"),
		getCmd(client, "ledger", "Show the payment ledger of a loan", "/api/v1/loans/%s/ledger"),
		loanPayCmd(client),
		loanVerifyCmd(client),
	)
	return cmd
}

type termsFlags struct {
	principal string
	years     int
	rate      string
}

func (f *termsFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.principal, "principal", "", "Loan principal")
	cmd.Flags().IntVar(&f.years, "years", 0, "Loan period in years")
	cmd.Flags().StringVar(&f.rate, "rate", "", "Annual interest rate in percent")
	_ = cmd.MarkFlagRequired("principal")
	_ = cmd.MarkFlagRequired("years")
	_ = cmd.MarkFlagRequired("rate")
}

func (f *termsFlags) body(customerID string) (map[string]any, error) {
	principal, err := decimal.NewFromString(f.principal)
	if err != nil {
		return nil, fmt.Errorf("invalid --principal %q: %w", f.principal, err)
	}
	rate, err := decimal.NewFromString(f.rate)
	if err != nil {
		return nil, fmt.Errorf("invalid --rate %q: %w", f.rate, err)
	}

	body := map[string]any{
		"principal":           principal.String(),
		"period_years":        f.years,
		"annual_rate_percent": rate.String(),
	}
	if customerID != "" {
		body["customer_id"] = customerID
	}
	return body, nil
}

func loanCreateCmd(client *apiClient) *cobra.Command {
	var terms termsFlags
	var customerID, idempotencyKey string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue a new loan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := terms.body(customerID)
			if err != nil {
				return err
			}
			data, err := client.do(http.MethodPost, "/api/v1/loans", body, map[string]string{"Idempotency-Key": idempotencyKey})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}

	terms.register(cmd)
	cmd.Flags().StringVar(&customerID, "customer", "", "Customer ID")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key for safe retries")
	_ = cmd.MarkFlagRequired("customer")
	return cmd
}

func loanQuoteCmd(client *apiClient) *cobra.Command {
	var terms termsFlags

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a loan without creating it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := terms.body("")
			if err != nil {
				return err
			}
			data, err := client.do(http.MethodPost, "/api/v1/loans/quote", body, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}

	terms.register(cmd)
	return cmd
}

func loanPayCmd(client *apiClient) *cobra.Command {
	var amount, paymentType, idempotencyKey string

	cmd := &cobra.Command{
		Use:   "pay LOAN_ID",
		Short: "Record a payment against a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}
			body := map[string]any{"amount": value.String(), "type": paymentType}
			data, err := client.do(http.MethodPost, "/api/v1/loans/"+url.PathEscape(args[0])+"/payments", body,
				map[string]string{"Idempotency-Key": idempotencyKey})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Payment amount")
	cmd.Flags().StringVar(&paymentType, "type", "EMI", "Payment type (EMI or LUMP_SUM)")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key for safe retries")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func loanVerifyCmd(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "verify LOAN_ID",
		Short: "Check that a loan agrees with its payment history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := client.do(http.MethodGet, "/api/v1/loans/"+url.PathEscape(args[0])+"/verify", nil, nil)
			if err != nil {
				return err
			}

			var result struct {
				Consistent bool     `json:"consistent"`
				Violations []string `json:"violations"`
			}
			if err := json.Unmarshal(data, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			out := cmd.OutOrStdout()
			if !result.Consistent {
				fmt.Fprintln(out, "Consistency check FAILED")
				for _, v := range result.Violations {
					fmt.Fprintf(out, "  - %s\n", v)
				}
				return errInconsistent
			}

			fmt.Fprintln(out, "Consistency check PASSED")
			return nil
		},
	}
}

func customerCmd(client *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Customer operations",
	}

	cmd.AddCommand(
		customerRegisterCmd(client),
		getCmd(client, "overview", "Show every loan of a customer", "/api/v1/customers/%s/overview"),
	)
	return cmd
}

func customerRegisterCmd(client *apiClient) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "register CUSTOMER_ID",
		Short: "Register a customer or rename an existing one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"id": args[0], "name": name}
			data, err := client.do(http.MethodPost, "/api/v1/customers", body, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	return cmd
}

// getCmd builds a command that fetches pathFormat with its single ID argument.
func getCmd(client *apiClient, use, short, pathFormat string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := client.do(http.MethodGet, fmt.Sprintf(pathFormat, url.PathEscape(args[0])), nil, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
}

func printJSON(w io.Writer, data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
