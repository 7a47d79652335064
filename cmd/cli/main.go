package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	ownerID string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "buffet-cli",
		Short: "Better Call Buffet CLI tool",
		Long:  `A command line interface for interacting with the Better Call Buffet API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the API")
	rootCmd.PersistentFlags().StringVar(&ownerID, "owner", "", "Owner ID to act as (required)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	var fix bool
	reconcileCmd := &cobra.Command{
		Use:   "reconcile [account-id]",
		Short: "Check cached balances against the ledger",
		Long: `Recalculates balances from the ledger and compares them to the cached
values. Without an account ID every account is checked. With --fix the
cached balance is overwritten by the recalculated one and the correction
is recorded in the audit trail.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			accountID := ""
			if len(args) > 0 {
				accountID = args[0]
			}
			reconcile(accountID, fix)
		},
	}
	reconcileCmd.Flags().BoolVar(&fix, "fix", false, "Overwrite drifted cached balances")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger as CSV to stdout",
		Run: func(cmd *cobra.Command, args []string) {
			exportCSV()
		},
	}

	importCmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a CSV ledger export",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			skipErrors, _ := cmd.Flags().GetBool("skip-errors")
			importCSV(args[0], skipErrors)
		},
	}
	importCmd.Flags().Bool("skip-errors", false, "Skip bad rows instead of aborting")

	recomputeCmd := &cobra.Command{
		Use:   "recompute [account-id]",
		Short: "Run pending balance-point recomputation for an account now",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			recompute(args[0])
		},
	}

	rootCmd.AddCommand(reconcileCmd, exportCmd, importCmd, recomputeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func doRequest(method, path string, body io.Reader) (*http.Response, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("--owner is required")
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Owner-ID", ownerID)

	client := &http.Client{Timeout: timeout}
	return client.Do(req)
}

func reconcile(accountID string, fix bool) {
	path := "/api/v1/accounts/reconcile"
	if accountID != "" {
		path = "/api/v1/accounts/" + accountID + "/reconcile"
		if fix {
			path += "/fix"
		}
	}

	resp, err := doRequest(http.MethodPost, path, nil)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Reconciliation FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var results []map[string]any
	if accountID != "" {
		var single map[string]any
		if err := json.Unmarshal(body, &single); err != nil {
			fmt.Printf("Failed to parse response: %v\n", err)
			os.Exit(1)
		}
		results = append(results, single)
	} else if err := json.Unmarshal(body, &results); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	drifted := 0
	for _, r := range results {
		balanced, _ := r["is_balanced"].(bool)
		status := "OK"
		if !balanced {
			status = "DRIFT"
			drifted++
		}
		fmt.Printf("%-7s account=%v cached=%v calculated=%v discrepancy=%v\n",
			status, r["account_id"], r["cached_balance"], r["calculated_balance"], r["discrepancy"])
	}

	if drifted > 0 && !fix {
		fmt.Printf("\n%d account(s) drifted; rerun with --fix on each to correct\n", drifted)
		os.Exit(1)
	}
}

func recompute(accountID string) {
	resp, err := doRequest(http.MethodPost, "/api/v1/accounts/"+accountID+"/timeline/recompute", nil)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Recompute FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("account=%v status=%v\n", result["account_id"], result["status"])
}

func exportCSV() {
	resp, err := doRequest(http.MethodGet, "/api/v1/csv/export", nil)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		fmt.Printf("Export FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	if _, err := io.Copy(os.Stdout, resp.Body); err != nil {
		fmt.Printf("Error reading export: %v\n", err)
		os.Exit(1)
	}
}

func importCSV(path string, skipErrors bool) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("Error opening file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	target := "/api/v1/csv/import"
	if skipErrors {
		target += "?skip_errors=true"
	}

	resp, err := doRequest(http.MethodPost, target, f)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Import FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var summary map[string]any
	if err := json.Unmarshal(body, &summary); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Imported: %v  Skipped: %v  Failed: %v\n",
		summary["imported"], summary["skipped"], summary["failed"])
}
