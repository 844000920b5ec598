package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"nastrun/internal/archive"
	"nastrun/internal/report"
)

var archiveLimit int

// archiveCmd groups archive inspection subcommands.
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect archived run outcomes",
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	RunE:  archiveList,
}

var archiveShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print one archived run's report text",
	Args:  cobra.ExactArgs(1),
	RunE:  archiveShow,
}

var archiveDecodeCmd = &cobra.Command{
	Use:   "decode [id]",
	Short: "Re-decode an archived report with the current decoder",
	Args:  cobra.ExactArgs(1),
	RunE:  archiveDecode,
}

func init() {
	archiveListCmd.Flags().IntVar(&archiveLimit, "limit", 20, "Maximum runs to list (0 = all)")
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveShowCmd)
	archiveCmd.AddCommand(archiveDecodeCmd)
}

func openArchive() (*archive.Store, error) {
	if _, err := os.Stat(cfg.Archive.Path); err != nil {
		return nil, fmt.Errorf("no archive at %s", cfg.Archive.Path)
	}
	return archive.Open(cfg.Archive.Path)
}

func archiveList(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(archiveLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("archive is empty")
		return nil
	}
	for _, rec := range records {
		status := "failed"
		if rec.Completed {
			status = "completed"
		}
		if rec.TimedOut {
			status = "timed out"
		}
		fmt.Printf("%4d  %s  %-10s %-10s exit %-3d %8s  %s\n",
			rec.ID, rec.CreatedAt.Format(time.DateTime), status, rec.Strategy,
			rec.ExitCode, rec.WallTime.Round(time.Millisecond), rec.Deck)
	}
	return nil
}

func archiveShow(cmd *cobra.Command, args []string) error {
	rec, err := loadArchivedRun(args[0])
	if err != nil {
		return err
	}
	fmt.Print(rec.Report)
	return nil
}

func archiveDecode(cmd *cobra.Command, args []string) error {
	rec, err := loadArchivedRun(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report.Decode(rec.Report))
}

func loadArchivedRun(arg string) (*archive.RunRecord, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q", arg)
	}
	store, err := openArchive()
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Get(id)
}
