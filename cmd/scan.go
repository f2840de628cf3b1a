package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/namvh1209/posture-cli/internal/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Run all posture checks against a target URL",
	Long: `Run the full passive check suite against one target and print the findings.

Only safe, unauthenticated GET/HEAD probes are issued: response headers,
cookie and CORS posture, and a bounded set of well-known discovery paths.
No crawling, no exploitation, one attempt per probe.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		showEvidence, _ := cmd.Flags().GetBool("evidence")

		s, err := newScannerFromFlags(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		scan, err := s.RunScan(ctx, args[0])
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(scan)
		}
		printScan(scan, showEvidence)
		return nil
	},
}

// newScannerFromFlags assembles a scanner from flags merged with config-file
// defaults. Shared by scan and serve.
func newScannerFromFlags(cmd *cobra.Command) (*scanner.Scanner, error) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	userAgent, _ := cmd.Flags().GetString("user-agent")
	probeRate, _ := cmd.Flags().GetInt("probe-rate")
	pathsFile, _ := cmd.Flags().GetString("paths-file")

	if userAgent == "" {
		userAgent = viper.GetString("user_agent")
	}
	if pathsFile == "" {
		pathsFile = viper.GetString("paths_file")
	}

	cfg := scanner.Config{
		Timeout:         timeout,
		UserAgent:       userAgent,
		ProbesPerSecond: probeRate,
		Logger:          logger,
	}
	if pathsFile != "" {
		extra, err := scanner.LoadExtraPaths(pathsFile)
		if err != nil {
			return nil, err
		}
		cfg.ExtraDocPaths = extra.APIDocs
		cfg.ExtraArtifacts = extra.Artifacts
	}
	return scanner.New(cfg)
}

func printScan(scan *scanner.Scan, showEvidence bool) {
	fmt.Printf("Target: %s\n", scan.URL)
	fmt.Printf("Score:  %s/100\n\n", formatScoreWithColor(scan.Score))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tCHECK\tTITLE")
	for _, f := range scan.Findings {
		fmt.Fprintf(w, "%s\t%s\t%s\n", formatStatusWithColor(string(f.Status)), f.Key, f.Title)
	}
	w.Flush()

	printed := false
	for _, f := range scan.Findings {
		if f.Status != scanner.StatusWarn && f.Status != scanner.StatusFail {
			continue
		}
		if !printed {
			fmt.Println("\nRemediation:")
			printed = true
		}
		fmt.Printf("  %s %s: %s\n", formatStatusWithColor(string(f.Status)), f.Key, f.Recommendation)
	}

	if showEvidence {
		fmt.Println("\nEvidence:")
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		for _, f := range scan.Findings {
			fmt.Printf("  %s:\n", f.Key)
			_ = enc.Encode(f.Evidence)
		}
	}
}

// addScannerFlags registers the probe-tuning flags shared by scan and serve.
func addScannerFlags(fs *pflag.FlagSet) {
	fs.Duration("timeout", 10*time.Second, "Overall timeout per HTTP probe")
	fs.String("user-agent", "", "Override the identifying User-Agent string")
	fs.Int("probe-rate", 0, "Discovery probes per second (0 = default)")
	fs.String("paths-file", "", "YAML file with extra discovery paths (api_docs/artifacts lists)")
}

func init() {
	addScannerFlags(scanCmd.Flags())
	scanCmd.Flags().Bool("json", false, "Print the raw scan JSON")
	scanCmd.Flags().Bool("evidence", false, "Print per-finding evidence")
}
