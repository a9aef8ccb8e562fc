package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reasontree/pkg/errors"
	"github.com/matzehuels/reasontree/pkg/reasoning"
)

// growCommand creates the grow command.
func (c *CLI) growCommand() *cobra.Command {
	var (
		task     string
		dir      string
		maxIter  int
		echo     bool
		snapshot bool
	)

	cmd := &cobra.Command{
		Use:   "grow [actions.ndjson]",
		Short: "Grow a reasoning tree from a recorded action stream",
		Long: `Grow a reasoning tree by replaying actions, one JSON object per line:

  {"action": "continue", "brief": "...", "reasoning": "..."}
  {"action": "move", "node_id": 0}
  {"action": "finish"}

Before each action the compressed tree is written to
<snapshot-dir>/<run>/<size>.json, and every action is appended to
<snapshot-dir>/<run>/actions.log. Use "-" to read actions from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := openActions(args[0])
			if err != nil {
				return err
			}
			defer closeIn()

			if dir == "" {
				dir = c.Config.Reasoning.SnapshotDir
			}
			if maxIter == 0 {
				maxIter = c.Config.Reasoning.MaxIterations
			}

			m := reasoning.New()
			r := &reasoning.Replayer{
				Manager:       m,
				Task:          task,
				MaxIterations: maxIter,
				Logger:        c.Logger,
			}
			snaps := &reasoning.Snapshotter{Dir: dir}
			if snapshot {
				r.Snapshots = snaps
			}

			var mirror io.Writer
			if echo {
				mirror = os.Stdout
			}
			journal, err := reasoning.OpenJournal(snaps.RunDir(m.ID()), mirror)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer journal.Close()
			r.Journal = journal

			c.Logger.Info("growing tree", "run", m.ID(), "max_iterations", maxIter)
			res, err := r.Run(cmd.Context(), in)
			if err != nil {
				return err
			}

			if res.Finished {
				printSuccess("Finished run %s", StyleValue.Render(res.RunID))
			} else {
				printInfo("Stopped run %s before finish", StyleValue.Render(res.RunID))
			}
			printKeyValue("iterations", strconv.Itoa(res.Iterations))
			printKeyValue("nodes", strconv.Itoa(res.Size+1))
			printKeyValue("directory", snaps.RunDir(res.RunID))
			if n := len(res.Snapshots); n > 0 {
				printNextStep("Browse the last snapshot", appName+" browse "+res.Snapshots[n-1])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&task, "task", "", "task description recorded in the journal")
	cmd.Flags().StringVar(&dir, "snapshot-dir", "", "snapshot directory (default from config, "+c.Config.Reasoning.SnapshotDir+")")
	cmd.Flags().IntVar(&maxIter, "max-iterations", 0, "stop after this many actions (default from config)")
	cmd.Flags().BoolVar(&echo, "echo", false, "print journal entries as they are written")
	cmd.Flags().BoolVar(&snapshot, "snapshots", true, "write tree snapshots")

	return cmd
}

func openActions(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil, errors.New(errors.ErrCodeFileNotFound, "file not found: %s", path)
	}
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
