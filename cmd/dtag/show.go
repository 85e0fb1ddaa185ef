package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/discogs-tagger/internal/album"
	"github.com/franz/discogs-tagger/internal/discogs"
	"github.com/franz/discogs-tagger/internal/util"
)

var showCmd = &cobra.Command{
	Use:   "show <release-id>",
	Short: "Show how a Discogs release is mapped",
	Long: `Fetch a release and print the album information and the numbered
track list exactly as 'dtag tag' would write them.

Use this to check a release id before tagging.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().Bool("refresh", false, "bypass the release cache")
}

func runShow(cmd *cobra.Command, args []string) error {
	releaseID, err := strconv.Atoi(args[0])
	if err != nil || releaseID <= 0 {
		return fmt.Errorf("%w: %q is not a release id", util.ErrInvalidConfig, args[0])
	}
	refresh, _ := cmd.Flags().GetBool("refresh")

	db, err := openStore(viper.GetString("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	_, cache, err := newCatalog(db)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var rel *discogs.Release
	if refresh {
		rel, err = cache.Refresh(ctx, releaseID)
	} else {
		rel, err = cache.GetRelease(ctx, releaseID)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch release %d: %w", releaseID, err)
	}

	a, err := album.Map(rel)
	if err != nil {
		return err
	}

	fmt.Print(a.Info())
	fmt.Println()

	sep := GetConfigString("details.split_artists", album.DefaultArtistSeparator)
	rows := make([][]string, 0, len(a.Tracks))
	for _, t := range a.Tracks {
		rows = append(rows, []string{
			strconv.Itoa(t.Position), strconv.Itoa(t.Disc),
			fmt.Sprintf("%02d/%02d", t.Number, a.TrackTotalOnDisc(t.Disc)),
			t.Artist(sep), t.Title, t.Duration,
		})
	}
	fmt.Println(renderTable([]string{"Pos", "Disc", "Track", "Artist", "Title", "Length"}, rows, 0, 1, 5))

	fmt.Println()
	for d := 1; d <= a.DiscTotal; d++ {
		subtitle := ""
		if tracks := a.Disc(d); len(tracks) > 0 && tracks[0].DiscSubtitle != "" {
			subtitle = " (" + tracks[0].DiscSubtitle + ")"
		}
		fmt.Printf("Disc %d%s: %d tracks\n", d, subtitle, a.TrackTotalOnDisc(d))
	}

	return nil
}
