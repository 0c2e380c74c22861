// Package report renders run summaries from a finished or in-progress
// checkpoint: a machine-readable summary document and a human-readable tree
// view grouped by depth.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/discochess/bookminer/internal/record"
	"github.com/discochess/bookminer/internal/state"
)

// DepthStats summarizes the evaluations of all lines at one ply depth.
type DepthStats struct {
	Plies    int     `json:"plies"`
	Lines    int     `json:"lines"`
	MeanCp   float64 `json:"mean_cp"`
	StddevCp float64 `json:"stddev_cp"`
}

// Summary is the exported analysis document for a run.
type Summary struct {
	StartingLine  string             `json:"starting_line"`
	MinGames      int                `json:"min_games_threshold"`
	Breadth       int                `json:"breadth"`
	TotalLines    int                `json:"total_lines"`
	CachedReplies int                `json:"cached_replies"`
	ExploredCount int                `json:"explored_positions"`
	ByDepth       []DepthStats       `json:"by_depth"`
	Lines         []state.LineRecord `json:"lines"`
}

// Build assembles a Summary from a state snapshot.
func Build(s *state.State, startingLine string, minGames, breadth int) *Summary {
	lines := s.Lines()

	summary := &Summary{
		StartingLine:  startingLine,
		MinGames:      minGames,
		Breadth:       breadth,
		TotalLines:    len(lines),
		CachedReplies: s.ReplyCount(),
		ExploredCount: s.ExploredCount(),
		Lines:         lines,
	}

	byDepth := make(map[int][]float64)
	for _, line := range lines {
		byDepth[line.Plies] = append(byDepth[line.Plies], float64(line.Centipawns))
	}

	depths := make([]int, 0, len(byDepth))
	for d := range byDepth {
		depths = append(depths, d)
	}
	sort.Ints(depths)

	for _, d := range depths {
		evals := byDepth[d]
		mean, std := stat.MeanStdDev(evals, nil)
		if len(evals) < 2 {
			std = 0
		}
		summary.ByDepth = append(summary.ByDepth, DepthStats{
			Plies:    d,
			Lines:    len(evals),
			MeanCp:   mean,
			StddevCp: std,
		})
	}

	return summary
}

// WriteJSON writes the summary as an indented JSON document.
func (s *Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	return nil
}

// WriteTree writes a depth-grouped view of every line.
func (s *Summary) WriteTree(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Opening tree for: %s\n", s.StartingLine)
	b.WriteString(strings.Repeat("=", 60) + "\n")

	byDepth := make(map[int][]state.LineRecord)
	var depths []int
	for _, line := range s.Lines {
		if _, ok := byDepth[line.Plies]; !ok {
			depths = append(depths, line.Plies)
		}
		byDepth[line.Plies] = append(byDepth[line.Plies], line)
	}
	sort.Ints(depths)

	for _, d := range depths {
		fmt.Fprintf(&b, "\nDepth %d moves (%d plies):\n", d/2, d)
		b.WriteString(strings.Repeat("-", 40) + "\n")
		for _, line := range byDepth[d] {
			fmt.Fprintf(&b, "Line %3d: %s (eval: %s, %d games)\n",
				line.ID, line.Moves, record.FormatScore(line.Centipawns), line.Games)
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing tree view: %w", err)
	}
	return nil
}
