package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"facegreeter/internal/model"
	"facegreeter/internal/repository/sqlite"

	"github.com/spf13/cobra"
)

var visitsCmd = &cobra.Command{
	Use:   "visits",
	Short: "List recorded greetings",
	RunE:  runVisits,
}

func init() {
	visitsCmd.Flags().String("name", "", "Only show visits of this person")
	visitsCmd.Flags().Int("limit", 20, "Maximum number of visits")
	visitsCmd.Flags().Bool("stats", false, "Print aggregate counts instead")
	visitsCmd.Flags().Bool("json", false, "Output as JSON")
	rootCmd.AddCommand(visitsCmd)
}

func runVisits(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	name, _ := cmd.Flags().GetString("name")
	limit, _ := cmd.Flags().GetInt("limit")
	showStats, _ := cmd.Flags().GetBool("stats")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	repo := sqlite.NewVisitRepository(db)

	var result interface{}
	if showStats {
		stats, err := repo.GetStats()
		if err != nil {
			return err
		}
		result = stats
		if !jsonOutput {
			printStats(stats)
			return nil
		}
	} else {
		visits, err := repo.GetAll(&model.VisitFilter{Name: name, Limit: limit})
		if err != nil {
			return err
		}
		result = visits
		if !jsonOutput {
			printVisits(visits)
			return nil
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func printVisits(visits []model.Visit) {
	if len(visits) == 0 {
		fmt.Println("No visits recorded")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tNAME\tGREETING")
	for _, v := range visits {
		greeting := v.Greeting
		if v.Degraded {
			greeting += " (fallback)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", v.Timestamp.Local().Format(time.DateTime), v.Name, greeting)
	}
	w.Flush()
}

func printStats(stats *model.VisitStats) {
	fmt.Printf("Total visits:   %d\n", stats.TotalVisits)
	fmt.Printf("Unknown:        %d\n", stats.UnknownVisits)
	fmt.Printf("Fallback texts: %d\n", stats.Degraded)
	for name, count := range stats.PerName {
		fmt.Printf("  %-20s %d\n", name, count)
	}
}
