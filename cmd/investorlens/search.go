package investorlens

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/zeus1292/investorlens/pkg/config"
	"github.com/zeus1292/investorlens/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run one search query from the command line",
	Long: `Run a single natural-language query against the configured graph and
print the ranked results.

Examples:
  investorlens search "Who competes with Snowflake?"
  investorlens search "Compare Databricks vs Snowflake" --persona pe_firm
  investorlens search "Best acquisition target for Salesforce to counter Databricks" --all-personas --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var (
	searchPersona     string
	searchAllPersonas bool
	searchJSON        bool
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchPersona, "persona", "", "Scoring persona (value_investor, pe_firm, growth_vc, strategic_acquirer, enterprise_buyer)")
	searchCmd.Flags().BoolVar(&searchAllPersonas, "all-personas", false, "Rank under every persona")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print the full response as JSON")
	searchCmd.Flags().String("dataset", "", "Company dataset YAML for the memory driver")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("dataset") {
		cfg.Database.DatasetPath, _ = cmd.Flags().GetString("dataset")
	}

	log, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := buildClient(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize search core: %w", err)
	}
	defer client.Close(ctx)

	resp, err := client.Search(ctx, args[0], searchPersona, searchAllPersonas)
	if err != nil {
		return err
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	printResponse(resp)
	return nil
}

func printResponse(resp *types.SearchResponse) {
	fmt.Printf("Query type: %s\n", resp.Query.Type)
	fmt.Printf("Persona:    %s\n\n", resp.PersonaDisplay)

	printResults(resp.Results)

	if resp.Compare != nil {
		fmt.Println()
		printCompare(resp.Compare)
	}

	if len(resp.AllPersonas) > 0 {
		names := make([]string, 0, len(resp.AllPersonas))
		for name := range resp.AllPersonas {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			pr := resp.AllPersonas[name]
			if pr.Persona == resp.Persona {
				continue
			}
			fmt.Printf("\nAs %s:\n", pr.PersonaDisplay)
			printResults(pr.Results)
		}
	}

	fmt.Printf("\n%d candidates in %dms (request %s)\n",
		resp.Metadata.CandidateCount, resp.Metadata.ElapsedMS, resp.Metadata.RequestID)
}

func printResults(results []types.ScoredResult) {
	if len(results) == 0 {
		fmt.Println("No matching companies.")
		return
	}
	for _, r := range results {
		fmt.Printf("%3d. %-24s %.3f\n", r.Rank, r.Name, r.CompositeScore)
		for _, factor := range topFactors(r.Breakdown, 3) {
			fmt.Printf("       %-28s %.2f\n", factor, r.Breakdown[factor])
		}
	}
}

func printCompare(cd *types.CompareData) {
	fmt.Printf("Direct relationships: %d\n", len(cd.DirectEdges))
	for _, e := range cd.DirectEdges {
		fmt.Printf("  %s -[%s %.1f]-> %s\n", e.SourceID, e.Type, e.Strength, e.TargetID)
	}
	if len(cd.CommonCompetitors) > 0 {
		fmt.Printf("Common competitors: %v\n", cd.CommonCompetitors)
	}
	fmt.Printf("Shared market segments: %v, shared investment themes: %v\n",
		cd.SharedSegments, cd.SharedThemes)
}

// topFactors returns the n largest breakdown factors, largest first.
func topFactors(breakdown types.FactorVector, n int) []string {
	factors := make([]string, 0, len(breakdown))
	for factor := range breakdown {
		factors = append(factors, factor)
	}
	sort.Slice(factors, func(i, j int) bool {
		if breakdown[factors[i]] != breakdown[factors[j]] {
			return breakdown[factors[i]] > breakdown[factors[j]]
		}
		return factors[i] < factors[j]
	})
	if len(factors) > n {
		factors = factors[:n]
	}
	return factors
}
