// package formatter renders transfer reports (CSV, Markdown, plain text), reads song lists and prints tables
package formatter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/desertthunder/tunetx/internal/models"
	"github.com/desertthunder/tunetx/internal/services"
	"github.com/desertthunder/tunetx/internal/shared"
	"github.com/desertthunder/tunetx/internal/tasks"
)

// Report is the outcome of one run, ready to be written out.
type Report struct {
	From    string // origin service name
	To      string // destination service name
	DryRun  bool
	Results []tasks.PlaylistResult
}

// ReportToCSV lists every unmatched song with columns: Playlist, Name, Artist, ID
func ReportToCSV(r Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Playlist", "Name", "Artist", "ID"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, res := range r.Results {
		for _, song := range res.Unmatched {
			if err := writer.Write([]string{res.Playlist.Name, song.Name, song.Artist, song.ID}); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ReportToMarkdown renders a section per playlist with its unmatched songs.
func ReportToMarkdown(r Report) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Transfer: %s → %s\n\n", r.From, r.To)
	if r.DryRun {
		buf.WriteString("_Dry run: nothing was written._\n\n")
	}

	for _, res := range r.Results {
		fmt.Fprintf(&buf, "## %s\n\n", res.Playlist.Name)
		if res.Err != nil {
			fmt.Fprintf(&buf, "**Skipped**: %v\n\n", res.Err)
			continue
		}
		fmt.Fprintf(&buf, "**Matched**: %d/%d\n\n", res.Matched(), res.Total)
		for i, song := range res.Unmatched {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, song)
		}
		if len(res.Unmatched) > 0 {
			buf.WriteString("\n")
		}
	}
	return buf.Bytes()
}

// ReportToText renders the report as plain text.
func ReportToText(r Report) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Transfer: %s -> %s\n", r.From, r.To)
	if r.DryRun {
		buf.WriteString("Dry run\n")
	}

	for _, res := range r.Results {
		buf.WriteString("\n")
		if res.Err != nil {
			fmt.Fprintf(&buf, "%s: skipped (%v)\n", res.Playlist.Name, res.Err)
			continue
		}
		fmt.Fprintf(&buf, "%s: %d/%d matched\n", res.Playlist.Name, res.Matched(), res.Total)
		WriteUnmatched(&buf, res.Unmatched)
	}
	return buf.Bytes()
}

// WriteUnmatched prints a numbered list of songs.
func WriteUnmatched(w io.Writer, songs []models.Song) {
	for i, song := range songs {
		fmt.Fprintf(w, "  %d. %s\n", i+1, song)
	}
}

// WriteReport writes r to path, picking the format from the extension (.csv, .md, .txt).
func WriteReport(r Report, path string) error {
	var (
		data []byte
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		data, err = ReportToCSV(r)
	case ".md", ".markdown":
		data = ReportToMarkdown(r)
	case ".txt":
		data = ReportToText(r)
	default:
		return fmt.Errorf("%w: unknown report format %q (want .csv, .md or .txt)", shared.ErrInvalidArgument, filepath.Ext(path))
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// ReadSongsCSV reads songs from CSV with a header row.
//
// The name column may be called "name" or "title"; "artist" and "id" are optional.
func ReadSongsCSV(r io.Reader) ([]models.Song, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty CSV", shared.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	nameCol, ok := cols["name"]
	if !ok {
		if nameCol, ok = cols["title"]; !ok {
			return nil, fmt.Errorf("%w: CSV needs a name or title column", shared.ErrInvalidInput)
		}
	}
	field := func(record []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	songs := []models.Song{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", shared.ErrInvalidInput, line, err)
		}
		if nameCol >= len(record) || strings.TrimSpace(record[nameCol]) == "" {
			continue
		}
		songs = append(songs, models.Song{
			ID:     field(record, "id"),
			Name:   strings.TrimSpace(record[nameCol]),
			Artist: field(record, "artist"),
		})
	}
	return songs, nil
}

// ServicesTable prints the backends and their capabilities.
func ServicesTable(w io.Writer, descs []services.Descriptor) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Token", "Service", "Origin", "Destination", "Bulk Add"})
	table.SetRowLine(false)
	table.SetAutoWrapText(false)
	for _, d := range descs {
		table.Append([]string{d.Token, d.Name, "yes", yesNo(d.SupportsAuth), yesNo(d.CanBulkAdd)})
	}
	table.Render()
}

// PlaylistsTable prints numbered playlists.
func PlaylistsTable(w io.Writer, playlists []models.Playlist) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"", "Name", "ID"})
	table.SetRowLine(false)
	table.SetAutoWrapText(false)
	for i, pl := range playlists {
		table.Append([]string{strconv.Itoa(i + 1), pl.Name, pl.ID})
	}
	table.Render()
}

// SummaryTable prints one row per playlist result.
func SummaryTable(w io.Writer, results []tasks.PlaylistResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Playlist", "Matched", "Unmatched", "Status"})
	table.SetAutoWrapText(false)
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		table.Append([]string{r.Playlist.Name, fmt.Sprintf("%d/%d", r.Matched(), r.Total), strconv.Itoa(len(r.Unmatched)), status})
	}
	table.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
