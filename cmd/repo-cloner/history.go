package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Hila-Propack/eto-manufacturing-dashboard/config"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/db"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/domain"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/relevance"
)

var (
	HistoryLimit      int
	HistoryCandidates bool
	HistoryPurge      bool

	ScoreDescription string
	ScoreTopics      []string
	ScoreKeywords    []string
)

func init() {
	historyCmd.Flags().IntVarP(&HistoryLimit, "limit", "n", 0, "Only show the most recent N runs (<=0 signifies all)")
	historyCmd.Flags().BoolVarP(&HistoryCandidates, "candidates", "a", false, "Include candidate records in output")
	historyCmd.Flags().BoolVarP(&HistoryPurge, "purge", "", false, "Delete every recorded run from the ledger")

	scoreCmd.Flags().StringVarP(&ScoreDescription, "description", "d", "", "Repository description")
	scoreCmd.Flags().StringSliceVarP(&ScoreTopics, "topics", "t", nil, "Comma-separated repository topics")
	scoreCmd.Flags().StringSliceVarP(&ScoreKeywords, "keywords", "k", nil, "Comma-separated keywords (overrides config file)")
}

var historyCmd = &cobra.Command{
	Use:   "history [run-id..]",
	Short: "List recorded runs from the ledger",
	Long:  "Emits the runs recorded in the bolt run ledger as JSON, or only the named run IDs",
	PreRun: func(_ *cobra.Command, _ []string) {
		initLogging()
	},
	Run: func(cmd *cobra.Command, args []string) {
		ledgerFile := LedgerFile
		if !cmd.Flags().Changed("ledger") {
			ledgerFile = loadConfig().Ledger.File
		}
		if ledgerFile == "" {
			log.Fatal("main: no ledger configured (set ledger.file or pass --ledger)")
		}

		if err := db.WithClient(db.NewBoltConfig(ledgerFile), func(client *db.Client) error {
			if HistoryPurge {
				return purgeRuns(client)
			}
			runs, err := selectRuns(client, args)
			if err != nil {
				return err
			}
			if !HistoryCandidates {
				for _, run := range runs {
					run.Candidates = nil
				}
			}
			return emitJSON(runs)
		}); err != nil {
			log.Fatalf("main: %s", err)
		}
	},
}

// purgeRuns empties the ledger.
func purgeRuns(client *db.Client) error {
	n, err := client.RunsLen()
	if err != nil {
		return err
	}
	if err := client.Purge(); err != nil {
		return fmt.Errorf("purging ledger: %s", err)
	}
	log.WithField("runs", n).Info("Purged ledger")
	return nil
}

func selectRuns(client *db.Client, ids []string) ([]*domain.Run, error) {
	runs := []*domain.Run{}
	if len(ids) > 0 {
		for _, arg := range ids {
			id, err := strconv.ParseUint(arg, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid run id %q: %s", arg, err)
			}
			run, err := client.Run(id)
			if err != nil {
				return nil, fmt.Errorf("run %v: %s", id, err)
			}
			runs = append(runs, run)
		}
		return runs, nil
	}

	if err := client.Runs(func(run *domain.Run) {
		runs = append(runs, run)
	}); err != nil {
		return nil, err
	}
	if HistoryLimit > 0 && len(runs) > HistoryLimit {
		runs = runs[len(runs)-HistoryLimit:]
	}
	return runs, nil
}

var scoreCmd = &cobra.Command{
	Use:   "score [name]",
	Short: "Score a repository against the configured industry keywords",
	Long:  "Computes the industry relevance score for an ad-hoc name, description and topic list; useful for tuning keyword sets",
	Args:  cobra.ExactArgs(1),
	PreRun: func(_ *cobra.Command, _ []string) {
		initLogging()
	},
	Run: func(cmd *cobra.Command, args []string) {
		var kw relevance.Keywords
		if cmd.Flags().Changed("keywords") {
			kw = relevance.NewKeywords(ScoreKeywords...)
		} else {
			cfg, err := config.LoadOptional(ConfigFile)
			if err != nil {
				log.Fatalf("main: %s", err)
			}
			kw = cfg.Keywords()
		}

		score := relevance.Score(args[0], ScoreDescription, ScoreTopics, kw)
		if err := emitJSON(map[string]interface{}{
			"name":               args[0],
			"description":        ScoreDescription,
			"topics":             ScoreTopics,
			"keywords":           kw.Terms(),
			"industry_relevance": score,
		}); err != nil {
			log.Fatalf("main: %s", err)
		}
	},
}

func emitJSON(x interface{}) error {
	bs, err := json.MarshalIndent(x, "", "    ")
	if err != nil {
		return err
	}
	fmt.Printf("%v\n", string(bs))
	return nil
}
